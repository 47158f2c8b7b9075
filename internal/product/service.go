package product

import (
	"context"

	"github.com/IamRajen/PriceTracker/helpers"
	"github.com/IamRajen/PriceTracker/internal/crawler"
	"github.com/IamRajen/PriceTracker/internal/store"
	"github.com/IamRajen/PriceTracker/logger"
)

// Crawler is the subset of the orchestrator the service depends on
type Crawler interface {
	Crawl(query string) map[string][]crawler.ProductRecord
}

// Service answers product searches. A query already crawled is served from
// the store via its title identifier; only a miss triggers a live crawl,
// whose validated records are persisted stamped with the identifier.
type Service struct {
	store        store.Store
	orchestrator Crawler
	log          *logger.Logger
}

// NewService creates a search service
func NewService(st store.Store, orchestrator Crawler) *Service {
	return &Service{
		store:        st,
		orchestrator: orchestrator,
		log:          logger.ForCrawler(),
	}
}

// Search returns the stored products matching the query, crawling the
// registered sources first when the query has never been crawled
func (s *Service) Search(ctx context.Context, query string) ([]store.Product, error) {
	identifier := helpers.NormalizeIdentifier(query)
	if identifier == "" {
		return nil, nil
	}

	existing, err := s.store.ProductsByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.log.Debug().Str("query", query).Int("products", len(existing)).Msg("Serving search from store")
		return existing, nil
	}

	results := s.orchestrator.Crawl(query)

	var saved []store.Product
	for source, records := range results {
		for _, record := range records {
			p := recordToProduct(record, identifier)
			if err := s.store.UpsertProduct(ctx, p); err != nil {
				s.log.Error().Err(err).Str("source", source).Str("link", record.Link).Msg("Failed to persist crawled product")
				continue
			}
			saved = append(saved, *p)
		}
	}
	return saved, nil
}

// recordToProduct converts a validated crawl record to a store product.
// The caller must have applied the validation gate already.
func recordToProduct(record crawler.ProductRecord, identifier string) *store.Product {
	return &store.Product{
		Title:           *record.Title,
		TitleIdentifier: identifier,
		Price:           *record.Price,
		Rating:          record.Rating,
		Reviews:         record.Reviews,
		Seller:          *record.Seller,
		Link:            record.Link,
		Source:          record.Source,
	}
}
