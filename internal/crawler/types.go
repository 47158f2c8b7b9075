package crawler

import (
	"io"
	"time"
)

// ProductRecord is the transient result of extracting one product detail
// page. Every field that depends on the page markup is optional; Link and
// Source are always set. A record is persisted only when Complete reports
// true.
type ProductRecord struct {
	Title   *string
	Price   *int
	Rating  *string
	Reviews *int
	Seller  *string
	Link    string
	Source  string
}

// Complete reports whether the record passes the validation gate:
// title, price and seller must all be present.
func (r ProductRecord) Complete() bool {
	return r.Title != nil && r.Price != nil && r.Seller != nil
}

// Fetcher retrieves the raw markup of one URL
type Fetcher interface {
	Fetch(url string) (io.Reader, error)
}

// SearchCrawler produces the search-result pages for a query, in order.
// Fetch failures end pagination; a failing first page yields zero pages.
type SearchCrawler interface {
	CrawlPages(query string) []string
}

// HTMLParser converts source markup into product links and records
type HTMLParser interface {
	// ExtractLinks returns the product detail URLs found on a
	// search-results page, in document order
	ExtractLinks(markup string) []string

	// ExtractDetails fetches a product detail page and extracts its fields
	ExtractDetails(link string) (ProductRecord, error)
}

// Selectors contains CSS selectors for the elements extracted from a source
type Selectors struct {
	ProductLink string // anchor identifying a product tile on a results page
	Title       string
	Price       string
	Rating      string
	Reviews     string
	Seller      string
}

// SourceConfig contains configuration for one retailer source
type SourceConfig struct {
	Name        string
	BaseURL     string
	SearchPath  string // search path template, e.g. "/search?q=%s"
	PageParam   string // query parameter carrying the page index
	MaxPages    int
	PageDelay   time.Duration // delay between search-result page fetches
	DetailDelay time.Duration // delay between detail page fetches
	ReviewsWord string        // literal token following the review count
	CacheKey    string
	BlockTime   time.Duration
	Selectors   Selectors
}

// SourceEntry pairs the crawler and parser registered for one source
type SourceEntry struct {
	Config  SourceConfig
	Crawler SearchCrawler
	Parser  HTMLParser
}

// Registry maps a source id to its registered implementations
type Registry map[string]SourceEntry

// ParserFor returns the detail parser registered for a source
func (r Registry) ParserFor(source string) (HTMLParser, bool) {
	entry, ok := r[source]
	if !ok {
		return nil, false
	}
	return entry.Parser, true
}
