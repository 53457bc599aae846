package store

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfscan/shelfscan/internal/compliance"
)

// Product is a known retail product, referenced by planograms through its
// name and variants.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput is the caller-supplied part of a product.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Brand       string `json:"brand,omitempty"`
}

// ProductStore is a file-backed product catalog.
type ProductStore struct {
	dir string
	mu  sync.RWMutex
}

// NewProductStore creates the storage directory if needed.
func NewProductStore(dir string) (*ProductStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create product directory: %w", err)
	}
	return &ProductStore{dir: dir}, nil
}

// Create persists a new product under a random ID.
func (s *ProductStore) Create(in ProductInput) (*Product, error) {
	if in.Name == "" {
		return nil, &compliance.ValidationError{Field: "name", Msg: "must not be empty"}
	}

	now := time.Now().UTC()
	p := &Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Brand:       in.Brand,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeRecord(s.dir, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a product by ID. Returns ErrNotFound when it does not exist.
func (s *ProductStore) Get(id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Product
	if err := readRecord(s.dir, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all stored products.
func (s *ProductStore) List() ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := listIDs(s.dir)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(ids))
	for _, id := range ids {
		var p Product
		if err := readRecord(s.dir, id, &p); err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Update replaces a product's content, preserving ID and creation time.
func (s *ProductStore) Update(id string, in ProductInput) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing Product
	if err := readRecord(s.dir, id, &existing); err != nil {
		return nil, err
	}

	p := &Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Brand:       in.Brand,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := writeRecord(s.dir, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product. Returns ErrNotFound when it does not exist.
func (s *ProductStore) Delete(id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(recordPath(s.dir, id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}
