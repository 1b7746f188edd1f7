// Package session keeps one-shot flash values between a redirect and the
// page it lands on.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const cookieName = "hh_flash"

// Flash keys.
const (
	KeyLeadError           = "lead_error"
	KeyDownloadBrochureURL = "download_brochure_url"
)

// FlashStore stores flash values in SQLite, keyed by a cookie-held id.
type FlashStore struct {
	db *sqlx.DB
}

// NewFlashStore creates a flash store.
func NewFlashStore(db *sqlx.DB) *FlashStore {
	return &FlashStore{db: db}
}

// Set stores value under key for the visitor, issuing a session cookie if
// the request has none.
func (s *FlashStore) Set(w http.ResponseWriter, r *http.Request, key, value string) error {
	id := sessionID(r)
	if id == "" {
		id = uuid.NewString()
		c := &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		http.SetCookie(w, c)
		// Later calls in the same request reuse the new id.
		r.AddCookie(c)
	}

	_, err := s.db.ExecContext(r.Context(),
		`INSERT INTO flash_messages (session_id, flash_key, value, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, flash_key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		id, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing flash %s: %w", key, err)
	}
	return nil
}

// Pop returns and removes the value under key. A visitor without a session
// or without the key gets "".
func (s *FlashStore) Pop(r *http.Request, key string) (string, error) {
	id := sessionID(r)
	if id == "" {
		return "", nil
	}

	tx, err := s.db.BeginTxx(r.Context(), nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var value string
	err = tx.GetContext(r.Context(), &value,
		"SELECT value FROM flash_messages WHERE session_id = ? AND flash_key = ?", id, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading flash %s: %w", key, err)
	}

	if _, err := tx.ExecContext(r.Context(),
		"DELETE FROM flash_messages WHERE session_id = ? AND flash_key = ?", id, key); err != nil {
		return "", fmt.Errorf("deleting flash %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing flash pop: %w", err)
	}
	return value, nil
}

// Clear removes key for the visitor.
func (s *FlashStore) Clear(r *http.Request, key string) error {
	id := sessionID(r)
	if id == "" {
		return nil
	}
	if _, err := s.db.ExecContext(r.Context(),
		"DELETE FROM flash_messages WHERE session_id = ? AND flash_key = ?", id, key); err != nil {
		return fmt.Errorf("clearing flash %s: %w", key, err)
	}
	return nil
}

// Cleanup removes flash values older than maxAge.
func (s *FlashStore) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM flash_messages WHERE created_at < ?", time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("cleaning up flash messages: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// sessionID returns the visitor's flash session id, or "" when no cookie
// holds an id we could have issued.
func sessionID(r *http.Request) string {
	for _, c := range r.Cookies() {
		if c.Name != cookieName {
			continue
		}
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	return ""
}
