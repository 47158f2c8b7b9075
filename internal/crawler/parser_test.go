package crawler

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeFetcher serves canned markup per URL and records every fetch
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

// Ensure fakeFetcher implements Fetcher
var _ Fetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) Fetch(url string) (io.Reader, error) {
	f.calls = append(f.calls, url)
	markup, ok := f.pages[url]
	if !ok {
		return nil, errors.New("fetch failed: " + url)
	}
	return strings.NewReader(markup), nil
}

func testSourceConfig() SourceConfig {
	return SourceConfig{
		Name:        "flipkart",
		BaseURL:     "https://www.flipkart.com",
		SearchPath:  "/search?q=%s",
		PageParam:   "page",
		MaxPages:    2,
		PageDelay:   time.Millisecond,
		DetailDelay: 0,
		ReviewsWord: "Reviews",
		CacheKey:    "flipkart_rate_limited",
		BlockTime:   time.Minute,
		Selectors: Selectors{
			ProductLink: "a.CGtC98",
			Title:       "span.VU-ZEz",
			Price:       "div.Nx9bqj.CxhGGd",
			Rating:      "div.XQDdHH",
			Reviews:     "span.Wphh3N",
			Seller:      "div#sellerName span span",
		},
	}
}

const detailPage = `<html><body>
	<span class="VU-ZEz"> Acme Phone 5G (128 GB) </span>
	<div class="Nx9bqj CxhGGd">₹12,999 only</div>
	<div class="XQDdHH">4.3 ★</div>
	<span class="Wphh3N"><span>87,432 Ratings</span><span>&amp;</span><span>1,234 Reviews</span></span>
	<div id="sellerName"><span><span>RetailNet</span><span>4.8</span></span></div>
</body></html>`

func TestExtractLinks(t *testing.T) {
	parser := NewSelectorParser(testSourceConfig(), &fakeFetcher{})

	markup := `<html><body>
		<a class="CGtC98" href="/acme-phone/p/itm1?pid=MOB123&lid=x">tile 1</a>
		<a class="CGtC98" href="https://www.flipkart.com/acme-tab/p/itm2?pid=TAB9">tile 2</a>
		<a class="CGtC98">no href</a>
		<a class="other" href="/not-a-product">other anchor</a>
	</body></html>`

	links := parser.ExtractLinks(markup)
	assert.Equal(t, []string{
		"https://www.flipkart.com/acme-phone/p/itm1",
		"https://www.flipkart.com/acme-tab/p/itm2",
	}, links)
}

func TestExtractLinksEmptyPage(t *testing.T) {
	parser := NewSelectorParser(testSourceConfig(), &fakeFetcher{})
	assert.Empty(t, parser.ExtractLinks("<html><body><p>no results</p></body></html>"))
}

func TestExtractDetails(t *testing.T) {
	link := "https://www.flipkart.com/acme-phone/p/itm1"
	fetcher := &fakeFetcher{pages: map[string]string{link: detailPage}}
	parser := NewSelectorParser(testSourceConfig(), fetcher)

	record, err := parser.ExtractDetails(link)
	assert.NoError(t, err)

	assert.Equal(t, link, record.Link)
	assert.Equal(t, "flipkart", record.Source)
	assert.Equal(t, "Acme Phone 5G (128 GB)", *record.Title)
	assert.Equal(t, 12999, *record.Price)
	assert.Equal(t, "4.3", *record.Rating)
	assert.Equal(t, 1234, *record.Reviews)
	assert.Equal(t, "RetailNet", *record.Seller)
	assert.True(t, record.Complete())
}

func TestExtractDetailsMissingFields(t *testing.T) {
	link := "https://www.flipkart.com/acme-phone/p/itm1"
	fetcher := &fakeFetcher{pages: map[string]string{
		link: `<html><body><span class="VU-ZEz">Acme Phone</span></body></html>`,
	}}
	parser := NewSelectorParser(testSourceConfig(), fetcher)

	record, err := parser.ExtractDetails(link)
	assert.NoError(t, err)

	assert.NotNil(t, record.Title)
	assert.Nil(t, record.Price)
	assert.Nil(t, record.Rating)
	assert.Nil(t, record.Reviews)
	assert.Nil(t, record.Seller)
	assert.False(t, record.Complete())
}

func TestExtractDetailsMalformedFields(t *testing.T) {
	link := "https://www.flipkart.com/acme-phone/p/itm1"
	fetcher := &fakeFetcher{pages: map[string]string{
		link: `<html><body>
			<div class="Nx9bqj CxhGGd">Call for price</div>
			<div class="XQDdHH">unrated</div>
			<span class="Wphh3N">No Reviews yet</span>
		</body></html>`,
	}}
	parser := NewSelectorParser(testSourceConfig(), fetcher)

	record, err := parser.ExtractDetails(link)
	assert.NoError(t, err)
	assert.Nil(t, record.Price)
	assert.Nil(t, record.Rating)
	assert.Nil(t, record.Reviews)
}

func TestExtractDetailsFetchFailure(t *testing.T) {
	parser := NewSelectorParser(testSourceConfig(), &fakeFetcher{})

	record, err := parser.ExtractDetails("https://www.flipkart.com/gone/p/itm9")
	assert.Error(t, err)
	// link and source are carried even on failure
	assert.Equal(t, "https://www.flipkart.com/gone/p/itm9", record.Link)
	assert.Equal(t, "flipkart", record.Source)
}

func TestSeparatedText(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"u": `<html><body><span class="Wphh3N"><span>12 Ratings</span><span>&amp;</span><span>3 Reviews</span></span></body></html>`,
	}}
	parser := NewSelectorParser(testSourceConfig(), fetcher)

	record, err := parser.ExtractDetails("u")
	assert.NoError(t, err)
	assert.Equal(t, 3, *record.Reviews)
}
