package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. It backs tests and
// database-less development runs; data does not survive a restart.
type MemoryStore struct {
	mu sync.Mutex

	nextID   int64
	products map[int64]*Product
	points   []PricePoint
	tracked  []TrackedProduct
	users    map[int64]*User
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]*Product),
		users:    make(map[int64]*User),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// UpsertProduct inserts or refreshes a product keyed by (source, link)
func (s *MemoryStore) UpsertProduct(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, existing := range s.products {
		if existing.Source == p.Source && existing.Link == p.Link {
			existing.Title = p.Title
			existing.TitleIdentifier = p.TitleIdentifier
			existing.Price = p.Price
			existing.Rating = p.Rating
			existing.Reviews = p.Reviews
			existing.Seller = p.Seller
			existing.UpdatedAt = now
			*p = *existing
			return nil
		}
	}

	p.ID = s.id()
	p.CreatedAt = now
	p.UpdatedAt = now
	clone := *p
	s.products[p.ID] = &clone
	return nil
}

// ProductsByIdentifier returns products whose title identifier contains
// the normalized query
func (s *MemoryStore) ProductsByIdentifier(_ context.Context, identifier string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Product
	for _, p := range s.products {
		if p.TitleIdentifier != "" && strings.Contains(strings.ToLower(p.TitleIdentifier), strings.ToLower(identifier)) {
			out = append(out, *p)
		}
	}
	sortProducts(out)
	return out, nil
}

// ProductByID returns one product
func (s *MemoryStore) ProductByID(_ context.Context, id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

// UpdateProductPrice overwrites the stored current price
func (s *MemoryStore) UpdateProductPrice(_ context.Context, id int64, price int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// AddPricePoint appends one history observation
func (s *MemoryStore) AddPricePoint(_ context.Context, pt *PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt.ID = s.id()
	s.points = append(s.points, *pt)
	return nil
}

// PricePoints returns a product's history, newest first
func (s *MemoryStore) PricePoints(_ context.Context, productID int64) ([]PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PricePoint
	for _, pt := range s.points {
		if pt.ProductID == productID {
			out = append(out, pt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// CreateUser inserts a user by email
func (s *MemoryStore) CreateUser(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &User{ID: s.id(), Email: email}
	s.users[u.ID] = u
	clone := *u
	return &clone, nil
}

// Track subscribes a user to a product
func (s *MemoryStore) Track(_ context.Context, userID, productID int64) (*TrackedProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tp := range s.tracked {
		if tp.UserID == userID && tp.ProductID == productID {
			return nil, ErrAlreadyTracked
		}
	}
	if _, ok := s.products[productID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return nil, ErrNotFound
	}

	now := time.Now()
	tp := TrackedProduct{ID: s.id(), ProductID: productID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	s.tracked = append(s.tracked, tp)
	clone := tp
	return &clone, nil
}

// TrackedByUser lists a user's subscriptions
func (s *MemoryStore) TrackedByUser(_ context.Context, userID int64) ([]TrackedProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []TrackedProduct
	for _, tp := range s.tracked {
		if tp.UserID == userID {
			out = append(out, tp)
		}
	}
	return out, nil
}

// ActivelyTracked returns the distinct products with at least one
// subscription
func (s *MemoryStore) ActivelyTracked(_ context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool)
	var out []Product
	for _, tp := range s.tracked {
		if seen[tp.ProductID] {
			continue
		}
		seen[tp.ProductID] = true
		if p, ok := s.products[tp.ProductID]; ok {
			out = append(out, *p)
		}
	}
	sortProducts(out)
	return out, nil
}

// Subscribers returns the users subscribed to a product
func (s *MemoryStore) Subscribers(_ context.Context, productID int64) ([]Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Subscriber
	for _, tp := range s.tracked {
		if tp.ProductID != productID {
			continue
		}
		if u, ok := s.users[tp.UserID]; ok {
			out = append(out, Subscriber{UserID: u.ID, Email: u.Email})
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() {}

func sortProducts(products []Product) {
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
}
