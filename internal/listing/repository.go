package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/houzzhunt/hh/internal/db"
)

// baseColumns exist on every listing table.
var baseColumns = []string{"id", "property_title", "property_location", "location_map", "starting_price", "bedroom", "property_type"}

// optionalColumns are selected only when the table carries them.
var (
	optionalColumns = []string{"location_highlight", "project_name", "completion_year"}
	imageColumns    = []string{"hero_banner", "gallery_images"}
)

// Repository provides read access to listings plus the admin delete.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a listing repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListOptions controls which optional columns List selects.
type ListOptions struct {
	IncludeImages bool
}

// List returns every row of src, newest first. Only columns present on the
// table are selected.
func (r *Repository) List(ctx context.Context, src Source, schema *Schema, opts ListOptions) ([]*Listing, error) {
	columns := append([]string{}, baseColumns...)
	columns = append(columns, schema.Present(ctx, src.Table, optionalColumns)...)
	if opts.IncludeImages {
		columns = append(columns, schema.Present(ctx, src.Table, imageColumns)...)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", quoteAll(columns), db.QuoteIdent(src.Table))
	if schema.Has(ctx, src.Table, "created_at") {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY id DESC"
	}

	var listings []*Listing
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("listing %s: %w", src.Table, err)
	}

	return listings, nil
}

// ResolveTitle looks up a display title for id across the off-plan, buy and
// rent tables in that order, returning the first non-empty candidate column.
// Lookup failures move on to the next table; "" means nothing was found.
func (r *Repository) ResolveTitle(ctx context.Context, id int64) string {
	if id <= 0 {
		return ""
	}

	schema := NewSchema(r.db)
	for _, src := range sources {
		cols := schema.Present(ctx, src.Table, src.TitleColumns)
		if len(cols) == 0 {
			continue
		}

		query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", quoteAll(cols), db.QuoteIdent(src.Table))
		values, err := r.db.QueryRowxContext(ctx, query, id).SliceScan()
		if err != nil {
			slog.Debug("title lookup skipped", "table", src.Table, "property_id", id, "error", err)
			continue
		}

		for _, v := range values {
			if title := strings.TrimSpace(asString(v)); title != "" {
				return title
			}
		}
	}

	return ""
}

// Brochure is a downloadable brochure attached to a listing.
type Brochure struct {
	PropertyID int64
	Title      string
	// Path is the stored brochure value, relative to the uploads directory
	// or an absolute URL.
	Path string
}

// FindBrochure returns the brochure of listing id, searching the tables
// that carry a brochure column in source order. ErrNotFound means no
// listing with that id has one.
func (r *Repository) FindBrochure(ctx context.Context, id int64) (*Brochure, error) {
	if id <= 0 {
		return nil, fmt.Errorf("listing %d: %w", id, ErrNotFound)
	}

	schema := NewSchema(r.db)
	for _, src := range sources {
		if !schema.Has(ctx, src.Table, "brochure") {
			continue
		}
		cols := append([]string{"brochure"}, schema.Present(ctx, src.Table, src.TitleColumns)...)

		query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", quoteAll(cols), db.QuoteIdent(src.Table))
		values, err := r.db.QueryRowxContext(ctx, query, id).SliceScan()
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				slog.Warn("brochure lookup failed", "table", src.Table, "property_id", id, "error", err)
			}
			continue
		}

		path := strings.TrimSpace(asString(values[0]))
		if path == "" {
			continue
		}
		b := &Brochure{PropertyID: id, Path: path}
		for _, v := range values[1:] {
			if title := strings.TrimSpace(asString(v)); title != "" {
				b.Title = title
				break
			}
		}
		return b, nil
	}

	return nil, fmt.Errorf("brochure for listing %d: %w", id, ErrNotFound)
}

// Summaries returns the admin overview of src, newest first.
func (r *Repository) Summaries(ctx context.Context, src Source) ([]*Summary, error) {
	schema := NewSchema(r.db)
	columns := append([]string{"id"}, schema.Present(ctx, src.Table,
		[]string{"project_name", "property_title", "property_location", "property_type", "created_at"})...)

	query := fmt.Sprintf("SELECT %s FROM %s", quoteAll(columns), db.QuoteIdent(src.Table))
	if schema.Has(ctx, src.Table, "created_at") {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY id DESC"
	}

	var out []*Summary
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("listing %s: %w", src.Table, err)
	}
	return out, nil
}

// Delete removes listing id from src.
func (r *Repository) Delete(ctx context.Context, src Source, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid listing id %d", id)
	}

	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", db.QuoteIdent(src.Table)), id)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s listing %d: %w", src.Category, id, ErrNotFound)
	}

	return nil
}

func quoteAll(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = db.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
