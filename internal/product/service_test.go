package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IamRajen/PriceTracker/internal/crawler"
	"github.com/IamRajen/PriceTracker/internal/store"
)

// stubOrchestrator returns canned crawl results and counts invocations
type stubOrchestrator struct {
	results map[string][]crawler.ProductRecord
	calls   int
}

var _ Crawler = (*stubOrchestrator)(nil)

func (o *stubOrchestrator) Crawl(string) map[string][]crawler.ProductRecord {
	o.calls++
	return o.results
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func TestSearchCrawlsOnMiss(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	orchestrator := &stubOrchestrator{
		results: map[string][]crawler.ProductRecord{
			"flipkart": {
				{
					Title:  strptr("Acme Phone 5G"),
					Price:  intptr(12999),
					Rating: strptr("4.3"),
					Seller: strptr("RetailNet"),
					Link:   "https://www.flipkart.com/p/itm1",
					Source: "flipkart",
				},
			},
		},
	}
	service := NewService(st, orchestrator)

	products, err := service.Search(ctx, "Acme  Phone")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, orchestrator.calls)
	assert.Equal(t, "Acme Phone 5G", products[0].Title)
	assert.Equal(t, "acme phone", products[0].TitleIdentifier)
	assert.Equal(t, 12999, products[0].Price)
	assert.NotZero(t, products[0].ID)
}

func TestSearchServedFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	orchestrator := &stubOrchestrator{
		results: map[string][]crawler.ProductRecord{
			"flipkart": {
				{
					Title:  strptr("Acme Phone 5G"),
					Price:  intptr(12999),
					Seller: strptr("RetailNet"),
					Link:   "https://www.flipkart.com/p/itm1",
					Source: "flipkart",
				},
			},
		},
	}
	service := NewService(st, orchestrator)

	_, err := service.Search(ctx, "acme phone")
	require.NoError(t, err)

	// second search for the same query never hits the network
	products, err := service.Search(ctx, "acme phone")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, orchestrator.calls)
}

func TestSearchEmptyQuery(t *testing.T) {
	service := NewService(store.NewMemoryStore(), &stubOrchestrator{})

	products, err := service.Search(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearchEmptyCrawl(t *testing.T) {
	st := store.NewMemoryStore()
	orchestrator := &stubOrchestrator{results: map[string][]crawler.ProductRecord{"flipkart": {}}}
	service := NewService(st, orchestrator)

	// zero extractable records is an empty result, not an error
	products, err := service.Search(context.Background(), "no such thing")
	assert.NoError(t, err)
	assert.Empty(t, products)
}
