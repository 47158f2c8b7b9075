package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/IamRajen/PriceTracker/logger"
)

// PagedCrawler walks a source's search results page by page. Pages are
// fetched strictly sequentially with a fixed delay between requests; the
// delay is the rate-limit strategy against the live site, not an
// optimization. Pagination stops at the source's page cap or on the first
// fetch failure, whichever comes first.
type PagedCrawler struct {
	cfg     SourceConfig
	fetcher Fetcher
	log     *logger.Logger
}

// NewPagedCrawler creates a crawler for one source
func NewPagedCrawler(cfg SourceConfig, fetcher Fetcher) *PagedCrawler {
	return &PagedCrawler{
		cfg:     cfg,
		fetcher: fetcher,
		log:     logger.ForSource(cfg.Name),
	}
}

// SearchURL builds the search-results URL for a query and page index
func (c *PagedCrawler) SearchURL(query string, page int) string {
	base := c.cfg.BaseURL + fmt.Sprintf(c.cfg.SearchPath, url.QueryEscape(query))
	return base + "&" + c.cfg.PageParam + "=" + strconv.Itoa(page)
}

// CrawlPages fetches all search-result pages for a query, in order
func (c *PagedCrawler) CrawlPages(query string) []string {
	var pages []string
	for page := 1; page <= c.cfg.MaxPages; page++ {
		pageURL := c.SearchURL(query, page)
		c.log.Debug().Str("url", pageURL).Msg("Crawling search page")

		body, err := c.fetcher.Fetch(pageURL)
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("Search page fetch failed, stopping pagination")
			break
		}

		markup, err := io.ReadAll(body)
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("Search page read failed, stopping pagination")
			break
		}
		pages = append(pages, string(markup))

		if page < c.cfg.MaxPages {
			time.Sleep(c.cfg.PageDelay)
		}
	}
	return pages
}
