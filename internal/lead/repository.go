package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PerPage is the admin lead listing page size.
const PerPage = 10

// Repository stores leads in offplan_leads.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository creates a lead repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

const insertSQL = `INSERT INTO offplan_leads
	(lead_type, property_id, property_title, name, email, phone, country, brochure_url, ip_address, user_agent, created_at)
	VALUES (:lead_type, :property_id, :property_title, :name, :email, :phone, :country, :brochure_url, :ip_address, :user_agent, :created_at)`

const selectColumns = `id, lead_type, property_id, property_title, name, email, phone, country, brochure_url, ip_address, user_agent, created_at`

// Insert stores a copy of l and returns it with its ID and creation time
// set. The row is not read back.
func (r *Repository) Insert(ctx context.Context, l *Lead) (*Lead, error) {
	saved := *l
	saved.CreatedAt = r.now().UTC().Truncate(time.Second)

	result, err := r.db.NamedExecContext(ctx, insertSQL, &saved)
	if err != nil {
		return nil, fmt.Errorf("inserting lead: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}
	saved.ID = id

	return &saved, nil
}

// GetByID returns a lead by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Lead, error) {
	var l Lead
	err := r.db.GetContext(ctx, &l, "SELECT "+selectColumns+" FROM offplan_leads WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying lead %d: %w", id, err)
	}
	return &l, nil
}

// Count returns the number of stored leads.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM offplan_leads"); err != nil {
		return 0, fmt.Errorf("counting leads: %w", err)
	}
	return n, nil
}

// List returns up to limit leads, newest first, skipping offset rows.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Lead, error) {
	var leads []*Lead
	err := r.db.SelectContext(ctx, &leads,
		"SELECT "+selectColumns+" FROM offplan_leads ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return leads, nil
}

// LeadPage is one page of the admin lead listing.
type LeadPage struct {
	Leads      []*Lead `json:"leads"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Total      int     `json:"total"`
}

// Page returns page n of the lead listing. Out-of-range pages are clamped
// to the first or last page.
func (r *Repository) Page(ctx context.Context, n int) (*LeadPage, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (total + PerPage - 1) / PerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > totalPages {
		n = totalPages
	}

	leads, err := r.List(ctx, PerPage, (n-1)*PerPage)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []*Lead{}
	}

	return &LeadPage{Leads: leads, Page: n, TotalPages: totalPages, Total: total}, nil
}
