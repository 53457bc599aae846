package store

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfscan/shelfscan/internal/compliance"
)

// PlanogramInput is the caller-supplied part of a planogram; the store
// assigns the ID and timestamps.
type PlanogramInput struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description,omitempty"`
	Shelves     []compliance.PlanogramShelf `json:"shelves"`
}

// PlanogramStore is a file-backed planogram repository.
type PlanogramStore struct {
	dir string
	mu  sync.RWMutex
}

// NewPlanogramStore creates the storage directory if needed.
func NewPlanogramStore(dir string) (*PlanogramStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create planogram directory: %w", err)
	}
	return &PlanogramStore{dir: dir}, nil
}

// Create persists a new planogram under a name-derived ID with a short
// unique suffix (e.g. "front-cooler-3fa84c21").
func (s *PlanogramStore) Create(in PlanogramInput) (*compliance.Planogram, error) {
	if in.Name == "" {
		return nil, &compliance.ValidationError{Field: "name", Msg: "must not be empty"}
	}

	now := time.Now().UTC()
	p := &compliance.Planogram{
		ID:          fmt.Sprintf("%s-%s", slugify(in.Name), uuid.NewString()[:8]),
		Name:        in.Name,
		Description: in.Description,
		Shelves:     in.Shelves,
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

// Get loads a planogram by ID. Returns ErrNotFound when it does not exist.
func (s *PlanogramStore) Get(id string) (*compliance.Planogram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p compliance.Planogram
	if err := readRecord(s.dir, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all stored planograms.
func (s *PlanogramStore) List() ([]compliance.Planogram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := listIDs(s.dir)
	if err != nil {
		return nil, err
	}
	planograms := make([]compliance.Planogram, 0, len(ids))
	for _, id := range ids {
		var p compliance.Planogram
		if err := readRecord(s.dir, id, &p); err != nil {
			// A record deleted between listing and reading is not an error.
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		planograms = append(planograms, p)
	}
	return planograms, nil
}

// Update replaces a planogram's content, preserving its ID and creation
// time. Returns ErrNotFound when the planogram does not exist.
func (s *PlanogramStore) Update(id string, in PlanogramInput) (*compliance.Planogram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing compliance.Planogram
	if err := readRecord(s.dir, id, &existing); err != nil {
		return nil, err
	}

	p := &compliance.Planogram{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Shelves:     in.Shelves,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := writeRecord(s.dir, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a planogram. Returns ErrNotFound when it does not exist.
func (s *PlanogramStore) Delete(id string) error {
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
