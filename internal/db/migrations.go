package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS offplan_leads (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		lead_type      TEXT    NOT NULL DEFAULT 'popup' CHECK (lead_type IN ('popup', 'brochure')),
		property_id    INTEGER NOT NULL DEFAULT 0,
		property_title TEXT    NOT NULL DEFAULT '',
		name           TEXT    NOT NULL,
		email          TEXT    NOT NULL,
		phone          TEXT    NOT NULL,
		country        TEXT    NOT NULL,
		brochure_url   TEXT    NOT NULL DEFAULT '',
		ip_address     TEXT    NOT NULL DEFAULT '',
		user_agent     TEXT    NOT NULL DEFAULT '',
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties_list (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		hero_banner        TEXT,
		brochure           TEXT,
		gallery_images     TEXT,
		property_type      TEXT,
		project_name       TEXT,
		property_title     TEXT,
		property_location  TEXT,
		location_highlight TEXT,
		starting_price     TEXT,
		bedroom            TEXT,
		bathroom           TEXT,
		completion_year    TEXT,
		location_map       TEXT,
		created_at         DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS buy_properties_list (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		hero_banner       TEXT,
		brochure          TEXT,
		gallery_images    TEXT,
		property_type     TEXT,
		project_name      TEXT,
		property_title    TEXT,
		property_location TEXT,
		starting_price    TEXT,
		bedroom           TEXT,
		bathroom          TEXT,
		completion_date   DATE,
		location_map      TEXT,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS rent_properties_list (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		hero_banner       TEXT,
		gallery_images    TEXT,
		property_type     TEXT,
		project_name      TEXT,
		property_title    TEXT,
		property_location TEXT,
		starting_price    TEXT,
		bedroom           TEXT,
		bathroom          TEXT,
		location_map      TEXT,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS flash_messages (
		session_id TEXT     NOT NULL,
		flash_key  TEXT     NOT NULL,
		value      TEXT     NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, flash_key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offplan_leads_created ON offplan_leads (created_at DESC, id DESC)`,
}

// migrate runs all migrations in order.
func migrate(db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent — checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"buy_properties_list", "meta_title", "TEXT"},
		{"buy_properties_list", "meta_description", "TEXT"},
		{"rent_properties_list", "meta_title", "TEXT"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// TableColumns returns the set of column names on table, read from
// PRAGMA table_info. A table that does not exist yields an empty set.
func TableColumns(ctx context.Context, db sqlx.QueryerContext, table string) (map[string]bool, error) {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("checking table info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}

	return cols, nil
}

// QuoteIdent quotes a table or column name for interpolation into SQL.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sqlx.DB, table, column, definition string) error {
	cols, err := TableColumns(context.Background(), db, table)
	if err != nil {
		return err
	}
	if cols[column] {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", QuoteIdent(table), QuoteIdent(column), definition))
	return err
}
