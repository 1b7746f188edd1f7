// Package web serves the public site: lead forms, the thank-you page and
// the map-data feed.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/houzzhunt/hh/internal/captcha"
	"github.com/houzzhunt/hh/internal/config"
	"github.com/houzzhunt/hh/internal/email"
	"github.com/houzzhunt/hh/internal/lead"
	"github.com/houzzhunt/hh/internal/listing"
	"github.com/houzzhunt/hh/internal/logging"
	"github.com/houzzhunt/hh/internal/mapdata"
	"github.com/houzzhunt/hh/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server is the public site HTTP server.
type Server struct {
	leads     *lead.Service
	listings  *listing.Repository
	flashes   *session.FlashStore
	maps      *mapdata.Aggregator
	siteKey   string
	templates *template.Template
	router    chi.Router
}

// NewServer wires the site's services over db according to cfg.
func NewServer(db *sqlx.DB, cfg config.Config) (*Server, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	verifier := captcha.NewVerifier(cfg.Recaptcha.SecretKey, cfg.Recaptcha.VerifyURL, cfg.Recaptcha.Timeout)

	var notifier lead.Notifier
	smtpCfg := email.SMTPConfig{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	}
	if n := email.NewLeadNotifier(smtpCfg, cfg.LeadNotifyTo, cfg.BaseURL); n != nil {
		notifier = n
	}

	listings := listing.NewRepository(db)
	s := &Server{
		leads:    lead.NewService(lead.NewRepository(db), verifier, listings, notifier),
		listings: listings,
		flashes:  session.NewFlashStore(db),
		maps: mapdata.NewAggregator(db, mapdata.Options{
			IncludeGallery:     cfg.Map.IncludeGallery,
			IncludeMapboxToken: cfg.Map.IncludeMapbox,
			GoogleMapsAPIKey:   cfg.Map.GoogleMapsAPIKey,
			MapboxAccessToken:  cfg.Map.MapboxAccessToken,
		}),
		siteKey:   cfg.Recaptcha.SiteKey,
		templates: tmpl,
	}

	if !verifier.Configured() {
		slog.Warn("recaptcha secret key is not set; lead forms will be rejected")
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Post("/leads", s.handleLeadSubmit)
	r.Post("/process-offplan-lead", s.handleLeadSubmit)
	r.Get("/thankyou", s.handleThankYou)
	r.Get("/property-map-data", s.handleMapData)
	r.Get("/api/property-map-data", s.handleMapData)

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting web server", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}
