package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IamRajen/PriceTracker/internal/crawler"
	"github.com/IamRajen/PriceTracker/internal/store"
	"github.com/IamRajen/PriceTracker/logger"
	apperrors "github.com/IamRajen/PriceTracker/pkg/errors"
	"github.com/IamRajen/PriceTracker/services/notifier"
)

// Tracker re-checks every actively tracked product against its source,
// persists price changes and fans price drops out to subscribers. One run
// processes products strictly sequentially with a fixed delay, as the
// rate-limit strategy against the retailer sites.
type Tracker struct {
	store    store.Store
	registry crawler.Registry
	sink     notifier.Sink
	delay    time.Duration
	log      *logger.Logger
}

// priceDrop accumulates one product's confirmed drop during a run
type priceDrop struct {
	product  store.Product
	oldPrice int
	newPrice int
}

// NewTracker creates a price tracker
func NewTracker(st store.Store, registry crawler.Registry, sink notifier.Sink, delay time.Duration) *Tracker {
	return &Tracker{
		store:    st,
		registry: registry,
		sink:     sink,
		delay:    delay,
		log:      logger.ForTracker(),
	}
}

// Run executes one tracking pass. Only a failure to load the tracked
// product set aborts the run; per-product and notification failures are
// logged and skipped. Price persistence and notification dispatch are
// independent failure domains.
func (t *Tracker) Run(ctx context.Context) error {
	log := t.log.WithField("run_id", uuid.NewString())

	products, err := t.store.ActivelyTracked(ctx)
	if err != nil {
		return apperrors.NewStorage("", "load tracked products", err)
	}
	log.Info().Int("products", len(products)).Msg("Starting price tracking run")

	var drops []priceDrop
	for i, p := range products {
		if i > 0 && t.delay > 0 {
			time.Sleep(t.delay)
		}

		drop, err := t.refresh(ctx, p)
		if err != nil {
			log.Warn().Err(err).Int64("product_id", p.ID).Str("link", p.Link).Msg("Price re-check failed, skipping product")
			continue
		}
		if drop != nil {
			drops = append(drops, *drop)
		}
	}

	t.fanout(ctx, log, drops)
	log.Info().Int("drops", len(drops)).Msg("Price tracking run finished")
	return nil
}

// refresh re-fetches one product's detail page and persists a price
// change. Returns a non-nil drop when the price strictly decreased.
func (t *Tracker) refresh(ctx context.Context, p store.Product) (*priceDrop, error) {
	parser, ok := t.registry.ParserFor(p.Source)
	if !ok {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("no parser registered for source %q", p.Source), nil)
	}

	record, err := parser.ExtractDetails(p.Link)
	if err != nil {
		return nil, err
	}
	// Equal or unextractable price short-circuits: no history point, no
	// notification. This is what makes overlapping runs harmless.
	if record.Price == nil || *record.Price == p.Price {
		return nil, nil
	}
	newPrice := *record.Price

	if err := t.store.UpdateProductPrice(ctx, p.ID, newPrice); err != nil {
		return nil, apperrors.NewStorage(p.Source, "update product price", err)
	}

	point := &store.PricePoint{
		ProductID: p.ID,
		Price:     decimal.NewFromInt(int64(newPrice)),
		Date:      time.Now(),
	}
	if err := t.store.AddPricePoint(ctx, point); err != nil {
		// The price update is already committed; losing one history
		// point must not stop the run or the drop notification.
		t.log.Error().Err(err).Int64("product_id", p.ID).Msg("Failed to append price history point")
	}

	if newPrice < p.Price {
		return &priceDrop{product: p, oldPrice: p.Price, newPrice: newPrice}, nil
	}
	return nil, nil
}

// fanout inverts the accumulated drops through the subscription rows into
// one batch per subscriber email and hands each batch to the sink
func (t *Tracker) fanout(ctx context.Context, log *logger.Logger, drops []priceDrop) {
	batches := make(map[string][]notifier.ProductDrop)
	var order []string

	for _, drop := range drops {
		subscribers, err := t.store.Subscribers(ctx, drop.product.ID)
		if err != nil {
			log.Error().Err(err).Int64("product_id", drop.product.ID).Msg("Failed to load subscribers")
			continue
		}
		for _, sub := range subscribers {
			if _, seen := batches[sub.Email]; !seen {
				order = append(order, sub.Email)
			}
			batches[sub.Email] = append(batches[sub.Email], notifier.ProductDrop{
				ProductName: drop.product.Title,
				Link:        drop.product.Link,
				OldPrice:    drop.oldPrice,
				NewPrice:    drop.newPrice,
			})
		}
	}

	for _, email := range order {
		if err := t.sink.Notify(email, batches[email]); err != nil {
			log.Error().Err(err).Str("recipient", email).Msg("Failed to dispatch price drop notification")
		}
	}
}
