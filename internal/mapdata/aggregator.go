package mapdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/houzzhunt/hh/internal/listing"
)

// Options switches the optional parts of the document.
type Options struct {
	IncludeGallery     bool
	IncludeMapboxToken bool
	GoogleMapsAPIKey   string
	MapboxAccessToken  string
}

// Document is the map-data response body.
type Document struct {
	Properties        []*Marker `json:"properties"`
	GeneratedAt       string    `json:"generated_at"`
	GoogleMapsAPIKey  string    `json:"google_maps_api_key"`
	MapboxAccessToken *string   `json:"mapbox_access_token,omitempty"`
}

// Marker is one map pin.
type Marker struct {
	ID                int64    `json:"id"`
	CategoryKey       string   `json:"category_key"`
	CategoryLabel     string   `json:"category_label"`
	Title             string   `json:"title"`
	PropertyTitle     string   `json:"property_title"`
	ProjectName       string   `json:"project_name"`
	ProjectTitle      string   `json:"project_title"`
	DisplayName       string   `json:"display_name"`
	Location          string   `json:"location"`
	LocationHighlight string   `json:"location_highlight"`
	Price             string   `json:"price"`
	Bedrooms          string   `json:"bedrooms"`
	PropertyType      string   `json:"property_type"`
	CompletionYear    string   `json:"completion_year"`
	DetailsURL        string   `json:"details_url"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	LocationEmbedURL  *string  `json:"location_embed_url"`

	// Images is nil when the gallery is switched off, which drops its keys.
	*Images
}

// Images are the picture fields of a marker.
type Images struct {
	ImageURL      *string  `json:"image_url"`
	PrimaryImage  *string  `json:"primary_image"`
	HeroBanner    *string  `json:"hero_banner"`
	GalleryImages []string `json:"gallery_images"`
}

// Aggregator builds the map-data document from the listing tables.
type Aggregator struct {
	db   *sqlx.DB
	repo *listing.Repository
	opts Options
	now  func() time.Time
}

// NewAggregator creates an aggregator.
func NewAggregator(db *sqlx.DB, opts Options) *Aggregator {
	return &Aggregator{
		db:   db,
		repo: listing.NewRepository(db),
		opts: opts,
		now:  time.Now,
	}
}

// Build reads every listing table and returns the markers. It fails only
// when the database is unreachable; a table that cannot be read is logged
// and left out.
func (a *Aggregator) Build(ctx context.Context) (*Document, error) {
	if err := a.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	schema := listing.NewSchema(a.db)
	markers := []*Marker{}

	for _, src := range listing.Sources() {
		rows, err := a.repo.List(ctx, src, schema, listing.ListOptions{IncludeImages: a.opts.IncludeGallery})
		if err != nil {
			slog.Warn("skipping listing table", "table", src.Table, "error", err)
			continue
		}

		for _, row := range rows {
			if m := a.marker(src, row); m != nil {
				markers = append(markers, m)
			}
		}
	}

	doc := &Document{
		Properties:       markers,
		GeneratedAt:      a.now().UTC().Format(time.RFC3339),
		GoogleMapsAPIKey: a.opts.GoogleMapsAPIKey,
	}
	if a.opts.IncludeMapboxToken {
		token := a.opts.MapboxAccessToken
		doc.MapboxAccessToken = &token
	}

	return doc, nil
}

// marker converts one row, returning nil for rows with no usable geography.
func (a *Aggregator) marker(src listing.Source, row *listing.Listing) *Marker {
	if row.ID <= 0 {
		return nil
	}

	title := listing.Clean(row.PropertyTitle)
	projectName := listing.Clean(row.ProjectName)
	displayName := title
	if projectName != "" {
		displayName = projectName
	}

	location := listing.Clean(row.PropertyLocation)
	highlight := listing.Clean(row.LocationHighlight)
	if location == "" && highlight != "" {
		location = highlight
	} else if highlight == "" && location != "" {
		highlight = location
	}

	locationMap := listing.Clean(row.LocationMap)
	coords := ExtractCoordinates(locationMap)
	embed := EmbedURL(locationMap, location, coords)

	if location == "" && coords == nil {
		return nil
	}

	m := &Marker{
		ID:                row.ID,
		CategoryKey:       string(src.Category),
		CategoryLabel:     src.Label,
		Title:             title,
		PropertyTitle:     title,
		ProjectName:       projectName,
		ProjectTitle:      displayName,
		DisplayName:       displayName,
		Location:          location,
		LocationHighlight: highlight,
		Price:             listing.Clean(row.StartingPrice),
		Bedrooms:          listing.Clean(row.Bedroom),
		PropertyType:      listing.Clean(row.PropertyType),
		CompletionYear:    listing.Clean(row.CompletionYear),
		DetailsURL:        DetailsURL(src.DetailsPage, row.ID),
		LocationEmbedURL:  embed,
	}
	if coords != nil {
		lat, lng := coords.Lat, coords.Lng
		m.Latitude, m.Longitude = &lat, &lng
	}
	if a.opts.IncludeGallery {
		m.Images = images(row)
	}

	return m
}

// images resolves the hero banner and gallery of a row.
func images(row *listing.Listing) *Images {
	hero := NormalizeImagePath(listing.Clean(row.HeroBanner))

	var paths []string
	for _, item := range DecodeGallery(row.GalleryImages.String) {
		if p := NormalizeImagePath(item); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 && hero != "" {
		paths = []string{hero}
	}

	gallery := []string{}
	for _, p := range paths {
		if u := FormatImageURL(p); u != "" {
			gallery = append(gallery, u)
		}
	}

	img := &Images{GalleryImages: gallery}
	if u := FormatImageURL(hero); u != "" {
		img.HeroBanner = &u
	}
	primary := img.HeroBanner
	if primary == nil && len(gallery) > 0 {
		first := gallery[0]
		primary = &first
	}
	img.ImageURL = primary
	img.PrimaryImage = primary

	return img
}
