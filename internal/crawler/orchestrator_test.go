package crawler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubCrawler returns canned search pages
type stubCrawler struct {
	pages []string
}

var _ SearchCrawler = (*stubCrawler)(nil)

func (c *stubCrawler) CrawlPages(string) []string { return c.pages }

// stubParser maps markup to links and links to records
type stubParser struct {
	links   map[string][]string
	records map[string]ProductRecord
	errs    map[string]error
}

var _ HTMLParser = (*stubParser)(nil)

func (p *stubParser) ExtractLinks(markup string) []string { return p.links[markup] }

func (p *stubParser) ExtractDetails(link string) (ProductRecord, error) {
	if err := p.errs[link]; err != nil {
		return ProductRecord{Link: link}, err
	}
	return p.records[link], nil
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func completeRecord(link, source string, price int) ProductRecord {
	return ProductRecord{
		Title:  strptr("Acme Phone"),
		Price:  intptr(price),
		Seller: strptr("RetailNet"),
		Link:   link,
		Source: source,
	}
}

func TestCrawlValidationGate(t *testing.T) {
	registry := Registry{
		"flipkart": {
			Crawler: &stubCrawler{pages: []string{"page1"}},
			Parser: &stubParser{
				links: map[string][]string{"page1": {"l1", "l2", "l3", "l4"}},
				records: map[string]ProductRecord{
					"l1": completeRecord("l1", "flipkart", 12999),
					// no price: dropped by the gate
					"l2": {Title: strptr("Acme Tab"), Seller: strptr("RetailNet"), Link: "l2", Source: "flipkart"},
					// no seller: dropped by the gate
					"l3": {Title: strptr("Acme Buds"), Price: intptr(1999), Link: "l3", Source: "flipkart"},
					"l4": completeRecord("l4", "flipkart", 4999),
				},
			},
		},
	}

	results := NewOrchestrator(registry).Crawl("acme")
	records := results["flipkart"]
	assert.Len(t, records, 2)
	assert.Equal(t, "l1", records[0].Link)
	assert.Equal(t, "l4", records[1].Link)
}

func TestCrawlLinkProcessedOncePerOccurrence(t *testing.T) {
	registry := Registry{
		"flipkart": {
			Crawler: &stubCrawler{pages: []string{"page1"}},
			Parser: &stubParser{
				// duplicate links pass through, no dedup guarantee
				links: map[string][]string{"page1": {"l1", "l1"}},
				records: map[string]ProductRecord{
					"l1": completeRecord("l1", "flipkart", 12999),
				},
			},
		},
	}

	results := NewOrchestrator(registry).Crawl("acme")
	assert.Len(t, results["flipkart"], 2)
}

func TestCrawlSourceIsolation(t *testing.T) {
	registry := Registry{
		"flipkart": {
			Crawler: &stubCrawler{pages: []string{"page1"}},
			Parser: &stubParser{
				links: map[string][]string{"page1": {"l1"}},
				errs:  map[string]error{"l1": errors.New("connection reset")},
			},
		},
		"amazon": {
			Crawler: &stubCrawler{pages: []string{"pageA"}},
			Parser: &stubParser{
				links: map[string][]string{"pageA": {"a1"}},
				records: map[string]ProductRecord{
					"a1": completeRecord("a1", "amazon", 8999),
				},
			},
		},
	}

	results := NewOrchestrator(registry).Crawl("acme")
	assert.Empty(t, results["flipkart"])
	assert.Len(t, results["amazon"], 1)
}

func TestCrawlNoPages(t *testing.T) {
	registry := Registry{
		"flipkart": {
			Crawler: &stubCrawler{},
			Parser:  &stubParser{},
		},
	}

	results := NewOrchestrator(registry).Crawl("acme")
	records, ok := results["flipkart"]
	assert.True(t, ok)
	assert.Empty(t, records)
}
