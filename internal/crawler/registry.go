package crawler

import (
	"time"

	"github.com/IamRajen/PriceTracker/config"
	"github.com/IamRajen/PriceTracker/logger"
	"github.com/IamRajen/PriceTracker/services/cache"
)

// NewRegistry builds the source registry from the configuration. Adding a
// retailer means adding a SourceConfig entry and listing its name in the
// SOURCES config; the orchestrator never changes.
func NewRegistry(cfg *config.Config, cacheSvc cache.CacheService) Registry {
	configurations := []SourceConfig{
		{
			Name:        "flipkart",
			BaseURL:     cfg.FlipkartURL,
			SearchPath:  "/search?q=%s",
			PageParam:   "page",
			MaxPages:    cfg.MaxPages,
			PageDelay:   cfg.PageDelay,
			DetailDelay: cfg.DetailDelay,
			ReviewsWord: "Reviews",
			CacheKey:    "flipkart_rate_limited",
			BlockTime:   500 * time.Second,
			Selectors: Selectors{
				ProductLink: "a.CGtC98",
				Title:       "span.VU-ZEz",
				Price:       "div.Nx9bqj.CxhGGd",
				Rating:      "div.XQDdHH",
				Reviews:     "span.Wphh3N",
				Seller:      "div#sellerName span span",
			},
		},
		{
			Name:        "amazon",
			BaseURL:     cfg.AmazonURL,
			SearchPath:  "/s?k=%s",
			PageParam:   "page",
			MaxPages:    cfg.MaxPages,
			PageDelay:   cfg.PageDelay,
			DetailDelay: cfg.DetailDelay,
			ReviewsWord: "ratings",
			CacheKey:    "amazon_rate_limited",
			BlockTime:   500 * time.Second,
			Selectors: Selectors{
				ProductLink: "a.a-link-normal.s-no-outline",
				Title:       "span#productTitle",
				Price:       "span.a-price-whole",
				Rating:      "span.a-icon-alt",
				Reviews:     "span#acrCustomerReviewText",
				Seller:      "a#sellerProfileTriggerId",
			},
		},
	}

	registry := Registry{}
	for _, sc := range configurations {
		if !cfg.SourceEnabled(sc.Name) {
			continue
		}
		fetcher := NewPageFetcher(sc, cacheSvc)
		registry[sc.Name] = SourceEntry{
			Config:  sc,
			Crawler: NewPagedCrawler(sc, fetcher),
			Parser:  NewSelectorParser(sc, fetcher),
		}
	}

	logger.Info("Registered %d crawl sources", len(registry))
	return registry
}
