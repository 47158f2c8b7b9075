package crawler

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/IamRajen/PriceTracker/helpers"
	apperrors "github.com/IamRajen/PriceTracker/pkg/errors"
	"github.com/IamRajen/PriceTracker/services/cache"
)

// PageFetcher performs one rate-limit-aware HTTP GET. When the remote site
// throttles us a block marker is written to the cache and every fetch for
// the source short-circuits until it expires.
type PageFetcher struct {
	Source    string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// NewPageFetcher creates a fetcher for one source
func NewPageFetcher(cfg SourceConfig, cacheSvc cache.CacheService) *PageFetcher {
	return &PageFetcher{
		Source:    cfg.Name,
		CacheKey:  cfg.CacheKey,
		CacheSvc:  cacheSvc,
		BlockTime: cfg.BlockTime,
	}
}

// Fetch retrieves the raw markup of a URL
func (f *PageFetcher) Fetch(url string) (io.Reader, error) {
	if f.CacheSvc != nil && f.CacheKey != "" {
		if _, err := f.CacheSvc.Get(f.CacheKey); err == nil {
			return nil, apperrors.NewRateLimit(f.Source, f.BlockTime)
		}
	}

	body, err := helpers.FetchWithBrowserHeaders(url)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			if f.CacheSvc != nil && f.CacheKey != "" {
				f.CacheSvc.Set(f.CacheKey, []byte(fmt.Sprintf("%d", f.BlockTime/time.Second)), f.BlockTime)
			}
			return nil, apperrors.NewRateLimit(f.Source, f.BlockTime)
		}
		return nil, apperrors.NewNetwork(f.Source, fmt.Sprintf("fetch %s", url), err)
	}

	return body, nil
}
