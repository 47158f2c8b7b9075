package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyTracked is returned when a (user, product) pair is
	// tracked a second time
	ErrAlreadyTracked = errors.New("product already tracked")
)

// Product is the authoritative current-state record of a retailer listing.
// A product is uniquely identified by (source, link).
type Product struct {
	ID              int64
	Title           string
	TitleIdentifier string
	Price           int
	Rating          *string
	Reviews         *int
	Seller          string
	Link            string
	Source          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PricePoint is one immutable price observation, appended exactly when a
// re-fetch yields a price different from the stored product price.
type PricePoint struct {
	ID        int64
	ProductID int64
	Price     decimal.Decimal
	Date      time.Time
}

// TrackedProduct is a user's subscription to a product's price
type TrackedProduct struct {
	ID        int64
	ProductID int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is the minimal account record needed for notification fanout
type User struct {
	ID    int64
	Email string
}

// Subscriber identifies one recipient of a product's price-drop alerts
type Subscriber struct {
	UserID int64
	Email  string
}

// Store is the persistence boundary for products, price history and
// tracking subscriptions.
type Store interface {
	// UpsertProduct inserts a product or, when (source, link) already
	// exists, refreshes its crawlable fields. Sets p.ID.
	UpsertProduct(ctx context.Context, p *Product) error

	// ProductsByIdentifier returns products whose title identifier
	// contains the given normalized query
	ProductsByIdentifier(ctx context.Context, identifier string) ([]Product, error)

	// ProductByID returns one product or ErrNotFound
	ProductByID(ctx context.Context, id int64) (*Product, error)

	// UpdateProductPrice overwrites the stored current price
	UpdateProductPrice(ctx context.Context, id int64, price int) error

	// AddPricePoint appends one history observation. Sets pt.ID.
	AddPricePoint(ctx context.Context, pt *PricePoint) error

	// PricePoints returns a product's history, newest first
	PricePoints(ctx context.Context, productID int64) ([]PricePoint, error)

	// CreateUser inserts a user by email
	CreateUser(ctx context.Context, email string) (*User, error)

	// Track subscribes a user to a product; ErrAlreadyTracked when the
	// pair exists
	Track(ctx context.Context, userID, productID int64) (*TrackedProduct, error)

	// TrackedByUser lists a user's subscriptions
	TrackedByUser(ctx context.Context, userID int64) ([]TrackedProduct, error)

	// ActivelyTracked returns the distinct products having at least one
	// subscription
	ActivelyTracked(ctx context.Context) ([]Product, error)

	// Subscribers returns the users subscribed to a product
	Subscribers(ctx context.Context, productID int64) ([]Subscriber, error)

	// Close releases the underlying connections
	Close()
}
