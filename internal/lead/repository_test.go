package lead

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/houzzhunt/hh/internal/db"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return d
}

func TestInsertAndGetByID(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	saved, err := repo.Insert(ctx, &Lead{
		Type:          TypeBrochure,
		PropertyID:    12,
		PropertyTitle: "Marina Vista",
		Name:          "Ana",
		Email:         "ana@example.com",
		Phone:         "+971 50 000",
		Country:       "UAE",
		BrochureURL:   "/uploads/b.pdf",
		IPAddress:     "203.0.113.9",
		UserAgent:     "test-agent",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected generated id")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := repo.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != TypeBrochure || got.BrochureURL != "/uploads/b.pdf" || got.PropertyID != 12 {
		t.Errorf("unexpected lead: %+v", got)
	}
}

func TestInsertStampsCreatedAt(t *testing.T) {
	repo := NewRepository(testDB(t))
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 890, time.FixedZone("GST", 4*3600))
	repo.now = func() time.Time { return fixed }

	in := &Lead{Type: TypePopup, Name: "Ana", Email: "ana@example.com", Phone: "1", Country: "UAE"}
	saved, err := repo.Insert(context.Background(), in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	want := time.Date(2026, 3, 4, 1, 6, 7, 0, time.UTC)
	if !saved.CreatedAt.Equal(want) {
		t.Errorf("created_at = %v, want %v", saved.CreatedAt, want)
	}
	if in.ID != 0 || !in.CreatedAt.IsZero() {
		t.Error("insert must not modify its argument")
	}

	got, err := repo.GetByID(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(want) {
		t.Errorf("stored created_at = %v, want %v", got.CreatedAt, want)
	}
}

// A committed insert reports success even when the row could not be read
// back afterwards.
func TestInsertDoesNotDependOnReadBack(t *testing.T) {
	d := testDB(t)
	if _, err := d.Exec(`CREATE TRIGGER unreadable_lead AFTER INSERT ON offplan_leads
		BEGIN UPDATE offplan_leads SET created_at = NULL WHERE id = NEW.id; END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	repo := NewRepository(d)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, &Lead{Type: TypePopup, Name: "Ana", Email: "ana@example.com", Phone: "1", Country: "UAE"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected generated id")
	}
	if _, err := repo.GetByID(ctx, saved.ID); err == nil {
		t.Fatal("expected read back of the altered row to fail")
	}
	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count = %d, %v; want 1", n, err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	_, err := NewRepository(testDB(t)).GetByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertRejectsUnknownType(t *testing.T) {
	_, err := NewRepository(testDB(t)).Insert(context.Background(), &Lead{
		Type: "walk-in", Name: "a", Email: "a@b.co", Phone: "1", Country: "x",
	})
	if err == nil {
		t.Fatal("expected constraint error for unknown lead type")
	}
}

func TestPage(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	for i := 1; i <= 23; i++ {
		_, err := repo.Insert(ctx, &Lead{
			Type: TypePopup, Name: fmt.Sprintf("lead %d", i), Email: "a@b.co", Phone: "1", Country: "x",
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantCount int
		wantFirst string
	}{
		{"first page", 1, 1, 10, "lead 23"},
		{"last page", 3, 3, 3, "lead 3"},
		{"below range", -4, 1, 10, "lead 23"},
		{"above range", 99, 3, 3, "lead 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := repo.Page(ctx, tt.page)
			if err != nil {
				t.Fatalf("page: %v", err)
			}
			if p.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.TotalPages != 3 || p.Total != 23 {
				t.Errorf("totals = %d pages / %d leads, want 3 / 23", p.TotalPages, p.Total)
			}
			if len(p.Leads) != tt.wantCount {
				t.Fatalf("got %d leads, want %d", len(p.Leads), tt.wantCount)
			}
			if p.Leads[0].Name != tt.wantFirst {
				t.Errorf("first = %q, want %q", p.Leads[0].Name, tt.wantFirst)
			}
		})
	}
}

func TestPageEmpty(t *testing.T) {
	p, err := NewRepository(testDB(t)).Page(context.Background(), 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if p.Page != 1 || p.TotalPages != 1 || len(p.Leads) != 0 || p.Leads == nil {
		t.Errorf("unexpected empty page: %+v", p)
	}
}
