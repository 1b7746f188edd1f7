package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/houzzhunt/hh/internal/lead"
	"github.com/houzzhunt/hh/internal/listing"
	"github.com/houzzhunt/hh/internal/mapdata"
	"github.com/houzzhunt/hh/internal/session"
)

const mapDBError = "Unable to connect to the database."

type indexData struct {
	SiteKey   string
	LeadError string
	Redirect  string
	Brochure  *brochureData
}

// brochureData fills the brochure form for one listing.
type brochureData struct {
	PropertyID int64
	Title      string
	URL        string
}

type thankYouData struct {
	LeadError   string
	BrochureURL string
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleIndex renders the enquiry form, plus the brochure form when
// ?property_id names a listing with a brochure.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	msg, err := s.flashes.Pop(r, session.KeyLeadError)
	if err != nil {
		slog.Warn("reading lead error flash", "error", err)
	}

	data := indexData{
		SiteKey:   s.siteKey,
		LeadError: msg,
		Redirect:  r.URL.RequestURI(),
	}

	if id, err := strconv.ParseInt(r.URL.Query().Get("property_id"), 10, 64); err == nil && id > 0 {
		b, err := s.listings.FindBrochure(r.Context(), id)
		switch {
		case err == nil:
			data.Brochure = &brochureData{
				PropertyID: b.PropertyID,
				Title:      b.Title,
				URL:        mapdata.FormatImageURL(mapdata.NormalizeImagePath(b.Path)),
			}
		case !errors.Is(err, listing.ErrNotFound):
			slog.Warn("loading brochure", "property_id", id, "error", err)
		}
	}

	s.render(w, "index.html", data)
}

// handleLeadSubmit stores a popup or brochure lead and redirects.
func (s *Server) handleLeadSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	out := s.leads.Submit(r.Context(), lead.Submission{
		Form:      r.PostForm,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	})

	if !out.OK() {
		if err := s.flashes.Set(w, r, session.KeyLeadError, out.Error); err != nil {
			slog.Error("storing lead error flash", "error", err)
		}
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}

	if err := s.flashes.Clear(r, session.KeyLeadError); err != nil {
		slog.Warn("clearing lead error flash", "error", err)
	}
	if out.BrochureURL != "" {
		if err := s.flashes.Set(w, r, session.KeyDownloadBrochureURL, out.BrochureURL); err != nil {
			slog.Error("storing brochure flash", "error", err)
		}
	}

	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

// handleThankYou renders the confirmation page, starting any pending
// brochure download.
func (s *Server) handleThankYou(w http.ResponseWriter, r *http.Request) {
	msg, err := s.flashes.Pop(r, session.KeyLeadError)
	if err != nil {
		slog.Warn("reading lead error flash", "error", err)
	}
	brochure, err := s.flashes.Pop(r, session.KeyDownloadBrochureURL)
	if err != nil {
		slog.Warn("reading brochure flash", "error", err)
	}

	s.render(w, "thankyou.html", thankYouData{LeadError: msg, BrochureURL: brochure})
}

// handleMapData serves the map markers.
func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

	doc, err := s.maps.Build(r.Context())
	if err != nil {
		slog.Error("building map data", "error", err)
		mapJSON(w, map[string]interface{}{
			"properties": []interface{}{},
			"error":      mapDBError,
		}, http.StatusInternalServerError)
		return
	}

	mapJSON(w, doc, http.StatusOK)
}

// clientIP returns the request's remote address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// mapJSON writes the map feed, which declares its charset.
func mapJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding map data", "error", err)
	}
}

// render executes a page template.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering template", "template", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
	}
}
