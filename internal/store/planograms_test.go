package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/shelfscan/shelfscan/internal/compliance"
)

func newTestPlanogramStore(t *testing.T) *PlanogramStore {
	t.Helper()
	s, err := NewPlanogramStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPlanogramStore failed: %v", err)
	}
	return s
}

func testPlanogramInput() PlanogramInput {
	return PlanogramInput{
		Name:        "Front Cooler",
		Description: "Entry cooler, drinks",
		Shelves: []compliance.PlanogramShelf{
			{Row: 0, Sections: []compliance.PlanogramSection{
				{Column: 0, ExpectedProduct: "Coca-Cola"},
				{Column: 1, ExpectedProduct: "Sprite"},
			}},
		},
	}
}

func TestPlanogramStore_CreateAndGet(t *testing.T) {
	s := newTestPlanogramStore(t)

	created, err := s.Create(testPlanogramInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(created.ID, "front-cooler-") {
		t.Errorf("ID: got %s, want front-cooler- prefix", created.ID)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps: created=%v updated=%v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Front Cooler" || len(got.Shelves) != 1 {
		t.Errorf("round trip: got %+v", got)
	}
	if got.Shelves[0].Sections[1].ExpectedProduct != "Sprite" {
		t.Errorf("sections: got %+v", got.Shelves[0].Sections)
	}
}

func TestPlanogramStore_CreateRequiresName(t *testing.T) {
	s := newTestPlanogramStore(t)

	_, err := s.Create(PlanogramInput{})
	var verr *compliance.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field != "name" {
		t.Errorf("field: got %s, want name", verr.Field)
	}
}

func TestPlanogramStore_GetMissing(t *testing.T) {
	s := newTestPlanogramStore(t)

	if _, err := s.Get("does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	// Path-escaping IDs never touch the filesystem.
	if _, err := s.Get("../outside"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for invalid ID, got %v", err)
	}
}

func TestPlanogramStore_List(t *testing.T) {
	s := newTestPlanogramStore(t)

	if planograms, err := s.List(); err != nil || len(planograms) != 0 {
		t.Fatalf("empty store: got %v, %v", planograms, err)
	}

	for _, name := range []string{"Cooler A", "Cooler B", "Snack Aisle"} {
		in := testPlanogramInput()
		in.Name = name
		if _, err := s.Create(in); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	planograms, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(planograms) != 3 {
		t.Errorf("count: got %d, want 3", len(planograms))
	}
}

func TestPlanogramStore_Update(t *testing.T) {
	s := newTestPlanogramStore(t)

	created, err := s.Create(testPlanogramInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	in := testPlanogramInput()
	in.Name = "Front Cooler v2"
	updated, err := s.Update(created.ID, in)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("ID changed on update: %s -> %s", created.ID, updated.ID)
	}
	if updated.Name != "Front Cooler v2" {
		t.Errorf("name: got %s", updated.Name)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update must preserve CreatedAt")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("update must advance UpdatedAt")
	}
}

func TestPlanogramStore_UpdateMissing(t *testing.T) {
	s := newTestPlanogramStore(t)

	if _, err := s.Update("ghost", testPlanogramInput()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanogramStore_Delete(t *testing.T) {
	s := newTestPlanogramStore(t)

	created, err := s.Create(testPlanogramInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Front Cooler", "front-cooler"},
		{"  Snack_Aisle 2  ", "snack-aisle-2"},
		{"Überkühl!", "berkhl"},
		{"---", "untitled"},
		{"", "untitled"},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
