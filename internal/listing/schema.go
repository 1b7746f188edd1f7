package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/houzzhunt/hh/internal/db"
)

// Schema answers column-existence questions, reading each table's metadata
// at most once. Create one per request; columns are additive across
// deployments so a stale answer only lasts as long as the request.
type Schema struct {
	q      sqlx.QueryerContext
	mu     sync.Mutex
	tables map[string]map[string]bool
}

// NewSchema creates an empty schema cache over q.
func NewSchema(q sqlx.QueryerContext) *Schema {
	return &Schema{q: q, tables: make(map[string]map[string]bool)}
}

// Columns returns the column set for table. Missing tables yield an empty set.
func (s *Schema) Columns(ctx context.Context, table string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cols, ok := s.tables[table]; ok {
		return cols, nil
	}

	cols, err := db.TableColumns(ctx, s.q, table)
	if err != nil {
		return nil, err
	}
	s.tables[table] = cols
	return cols, nil
}

// Has reports whether table has column. Metadata errors count as absent.
func (s *Schema) Has(ctx context.Context, table, column string) bool {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		slog.Warn("probing table schema", "table", table, "error", err)
		return false
	}
	return cols[column]
}

// Present filters candidates down to the columns table actually has,
// preserving order.
func (s *Schema) Present(ctx context.Context, table string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if s.Has(ctx, table, c) {
			out = append(out, c)
		}
	}
	return out
}
