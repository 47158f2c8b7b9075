package crawler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/IamRajen/PriceTracker/pkg/errors"
)

var (
	priceRegex  = regexp.MustCompile(`\d+(,\d+)*`)
	ratingRegex = regexp.MustCompile(`\d(\.\d)?`)
)

// SelectorParser implements HTMLParser for a source described by CSS
// selectors. Every field is extracted independently; a selector miss or
// unparsable text resolves the field to absent, never to an error.
type SelectorParser struct {
	cfg          SourceConfig
	fetcher      Fetcher
	reviewsRegex *regexp.Regexp
}

// NewSelectorParser creates a parser for one source
func NewSelectorParser(cfg SourceConfig, fetcher Fetcher) *SelectorParser {
	word := cfg.ReviewsWord
	if word == "" {
		word = "Reviews"
	}
	return &SelectorParser{
		cfg:          cfg,
		fetcher:      fetcher,
		reviewsRegex: regexp.MustCompile(`\b\d[\d,]*\s+` + regexp.QuoteMeta(word) + `\b`),
	}
}

// ExtractLinks returns the product detail URLs on a search-results page,
// in document order. Query strings are stripped and relative hrefs are
// resolved against the source base URL. A page with zero matches yields
// an empty list, not an error.
func (p *SelectorParser) ExtractLinks(markup string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find(p.cfg.Selectors.ProductLink).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}
		href = strings.SplitN(href, "?", 2)[0]
		if strings.HasPrefix(href, "/") {
			href = p.cfg.BaseURL + href
		}
		links = append(links, href)
	})
	return links
}

// ExtractDetails fetches a product detail page and extracts its fields.
// The returned record always carries the link and source id, even when
// the fetch fails.
func (p *SelectorParser) ExtractDetails(link string) (ProductRecord, error) {
	record := ProductRecord{Link: link, Source: p.cfg.Name}

	body, err := p.fetcher.Fetch(link)
	if err != nil {
		return record, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return record, apperrors.NewExtraction(p.cfg.Name, "parse detail page", err)
	}

	record.Title = p.extractText(doc, p.cfg.Selectors.Title)
	record.Price = p.extractPrice(doc)
	record.Rating = p.extractRating(doc)
	record.Reviews = p.extractReviews(doc)
	record.Seller = p.extractText(doc, p.cfg.Selectors.Seller)

	return record, nil
}

// extractText returns the trimmed text of the first match, or nil when the
// selector misses or the text is empty
func (p *SelectorParser) extractText(doc *goquery.Document, selector string) *string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return nil
	}
	return &text
}

// extractPrice takes the first digit run (thousands separators allowed)
// from the price element and parses it as an integer
func (p *SelectorParser) extractPrice(doc *goquery.Document) *int {
	sel := doc.Find(p.cfg.Selectors.Price).First()
	if sel.Length() == 0 {
		return nil
	}
	match := priceRegex.FindString(sel.Text())
	if match == "" {
		return nil
	}
	amount, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return nil
	}
	return &amount
}

// extractRating returns the d or d.d pattern from the rating element as a
// string, preserving the source's formatting
func (p *SelectorParser) extractRating(doc *goquery.Document) *string {
	sel := doc.Find(p.cfg.Selectors.Rating).First()
	if sel.Length() == 0 {
		return nil
	}
	match := ratingRegex.FindString(sel.Text())
	if match == "" {
		return nil
	}
	return &match
}

// extractReviews finds the "<count> <word>" pattern in the reviews element
// and parses the leading digit run
func (p *SelectorParser) extractReviews(doc *goquery.Document) *int {
	sel := doc.Find(p.cfg.Selectors.Reviews).First()
	if sel.Length() == 0 {
		return nil
	}
	match := p.reviewsRegex.FindString(separatedText(sel))
	if match == "" {
		return nil
	}
	count, err := strconv.Atoi(strings.ReplaceAll(strings.Fields(match)[0], ",", ""))
	if err != nil {
		return nil
	}
	return &count
}

// separatedText joins the trimmed text nodes under a selection with single
// spaces, so counts and their label match even when split across elements
func separatedText(s *goquery.Selection) string {
	return strings.Join(textParts(s), " ")
}

func textParts(s *goquery.Selection) []string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if text := strings.TrimSpace(c.Text()); text != "" {
				parts = append(parts, text)
			}
			return
		}
		parts = append(parts, textParts(c)...)
	})
	return parts
}
