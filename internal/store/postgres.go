package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IamRajen/PriceTracker/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         BIGSERIAL PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id               BIGSERIAL PRIMARY KEY,
    title            TEXT NOT NULL,
    title_identifier TEXT NOT NULL DEFAULT '',
    price            INTEGER NOT NULL,
    rating           TEXT,
    reviews          INTEGER,
    seller           TEXT NOT NULL,
    link             TEXT NOT NULL,
    source           TEXT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (source, link)
);

CREATE TABLE IF NOT EXISTS price_points (
    id         BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    price      NUMERIC(10,2) NOT NULL,
    date       DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS tracked_products (
    id         BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, product_id)
);
`

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresStore connects to postgres, verifies the connection and
// bootstraps the schema
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, log: logger.ForStore()}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return s, nil
}

// UpsertProduct inserts or refreshes a product keyed by (source, link)
func (s *PostgresStore) UpsertProduct(ctx context.Context, p *Product) error {
	const q = `
INSERT INTO products (title, title_identifier, price, rating, reviews, seller, link, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (source, link) DO UPDATE SET
    title            = EXCLUDED.title,
    title_identifier = EXCLUDED.title_identifier,
    price            = EXCLUDED.price,
    rating           = EXCLUDED.rating,
    reviews          = EXCLUDED.reviews,
    seller           = EXCLUDED.seller,
    updated_at       = now()
RETURNING id, created_at, updated_at;
`
	return s.pool.QueryRow(ctx, q,
		p.Title, p.TitleIdentifier, p.Price, p.Rating, p.Reviews, p.Seller, p.Link, p.Source,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// ProductsByIdentifier returns products whose title identifier contains
// the normalized query
func (s *PostgresStore) ProductsByIdentifier(ctx context.Context, identifier string) ([]Product, error) {
	const q = `
SELECT id, title, title_identifier, price, rating, reviews, seller, link, source, created_at, updated_at
FROM products
WHERE title_identifier <> '' AND title_identifier ILIKE '%' || $1 || '%'
ORDER BY id;
`
	rows, err := s.pool.Query(ctx, q, identifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ProductByID returns one product
func (s *PostgresStore) ProductByID(ctx context.Context, id int64) (*Product, error) {
	const q = `
SELECT id, title, title_identifier, price, rating, reviews, seller, link, source, created_at, updated_at
FROM products WHERE id = $1;
`
	var p Product
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Title, &p.TitleIdentifier, &p.Price, &p.Rating, &p.Reviews,
		&p.Seller, &p.Link, &p.Source, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProductPrice overwrites the stored current price
func (s *PostgresStore) UpdateProductPrice(ctx context.Context, id int64, price int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET price = $1, updated_at = now() WHERE id = $2`, price, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPricePoint appends one history observation
func (s *PostgresStore) AddPricePoint(ctx context.Context, pt *PricePoint) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO price_points (product_id, price, date) VALUES ($1, $2, $3) RETURNING id`,
		pt.ProductID, pt.Price, pt.Date,
	).Scan(&pt.ID)
}

// PricePoints returns a product's history, newest first
func (s *PostgresStore) PricePoints(ctx context.Context, productID int64) ([]PricePoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, price, date FROM price_points WHERE product_id = $1 ORDER BY date DESC, id DESC`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var pt PricePoint
		if err := rows.Scan(&pt.ID, &pt.ProductID, &pt.Price, &pt.Date); err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

// CreateUser inserts a user by email
func (s *PostgresStore) CreateUser(ctx context.Context, email string) (*User, error) {
	u := &User{Email: email}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ($1) RETURNING id`, email).Scan(&u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Track subscribes a user to a product
func (s *PostgresStore) Track(ctx context.Context, userID, productID int64) (*TrackedProduct, error) {
	tp := &TrackedProduct{UserID: userID, ProductID: productID}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tracked_products (user_id, product_id) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		userID, productID,
	).Scan(&tp.ID, &tp.CreatedAt, &tp.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyTracked
		}
		return nil, err
	}
	return tp, nil
}

// TrackedByUser lists a user's subscriptions
func (s *PostgresStore) TrackedByUser(ctx context.Context, userID int64) ([]TrackedProduct, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, user_id, created_at, updated_at FROM tracked_products WHERE user_id = $1 ORDER BY id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracked []TrackedProduct
	for rows.Next() {
		var tp TrackedProduct
		if err := rows.Scan(&tp.ID, &tp.ProductID, &tp.UserID, &tp.CreatedAt, &tp.UpdatedAt); err != nil {
			return nil, err
		}
		tracked = append(tracked, tp)
	}
	return tracked, rows.Err()
}

// ActivelyTracked returns the distinct products with at least one
// subscription
func (s *PostgresStore) ActivelyTracked(ctx context.Context) ([]Product, error) {
	const q = `
SELECT DISTINCT p.id, p.title, p.title_identifier, p.price, p.rating, p.reviews,
       p.seller, p.link, p.source, p.created_at, p.updated_at
FROM products p
JOIN tracked_products tp ON tp.product_id = p.id
ORDER BY p.id;
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Subscribers returns the users subscribed to a product
func (s *PostgresStore) Subscribers(ctx context.Context, productID int64) ([]Subscriber, error) {
	const q = `
SELECT u.id, u.email
FROM tracked_products tp
JOIN users u ON u.id = tp.user_id
WHERE tp.product_id = $1
ORDER BY u.id;
`
	rows, err := s.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.UserID, &sub.Email); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Close releases the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.TitleIdentifier, &p.Price, &p.Rating, &p.Reviews,
			&p.Seller, &p.Link, &p.Source, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
