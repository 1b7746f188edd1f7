// Package listing reads property listings from the off-plan, buy and rent tables.
package listing

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Category identifies which listing table a record lives in.
type Category string

const (
	CategoryOffPlan Category = "offplan"
	CategoryBuy     Category = "buy"
	CategoryRent    Category = "rent"
)

var (
	// ErrUnknownCategory is returned for a category outside offplan/buy/rent.
	ErrUnknownCategory = errors.New("unknown listing category")
	// ErrNotFound is returned when a listing id does not exist.
	ErrNotFound = errors.New("listing not found")
)

// Source describes one physical listing table.
type Source struct {
	Table       string
	Category    Category
	Label       string
	DetailsPage string
	// TitleColumns are tried in order when resolving a display title.
	TitleColumns []string
}

var sources = []Source{
	{
		Table:        "properties_list",
		Category:     CategoryOffPlan,
		Label:        "Off-Plan",
		DetailsPage:  "/property-details",
		TitleColumns: []string{"project_name", "property_title", "title"},
	},
	{
		Table:        "buy_properties_list",
		Category:     CategoryBuy,
		Label:        "Buy",
		DetailsPage:  "buy-properties-details.php",
		TitleColumns: []string{"property_title", "project_name", "title"},
	},
	{
		Table:        "rent_properties_list",
		Category:     CategoryRent,
		Label:        "Rent",
		DetailsPage:  "rent-properties-details.php",
		TitleColumns: []string{"property_title", "project_name", "title"},
	},
}

// Sources returns the listing tables in lookup order: off-plan, buy, rent.
func Sources() []Source {
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

// SourceFor returns the source for a category key.
func SourceFor(category string) (Source, error) {
	for _, s := range sources {
		if string(s.Category) == category {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// Listing is the subset of a listing row consumed by the site. Optional
// columns stay invalid when the table does not carry them.
type Listing struct {
	ID                int64          `db:"id"`
	PropertyTitle     sql.NullString `db:"property_title"`
	ProjectName       sql.NullString `db:"project_name"`
	PropertyLocation  sql.NullString `db:"property_location"`
	LocationHighlight sql.NullString `db:"location_highlight"`
	LocationMap       sql.NullString `db:"location_map"`
	StartingPrice     sql.NullString `db:"starting_price"`
	Bedroom           sql.NullString `db:"bedroom"`
	PropertyType      sql.NullString `db:"property_type"`
	CompletionYear    sql.NullString `db:"completion_year"`
	HeroBanner        sql.NullString `db:"hero_banner"`
	GalleryImages     sql.NullString `db:"gallery_images"`
}

// Summary is a row of the admin listing table.
type Summary struct {
	ID               int64          `db:"id" json:"id"`
	ProjectName      sql.NullString `db:"project_name" json:"-"`
	PropertyTitle    sql.NullString `db:"property_title" json:"-"`
	PropertyLocation sql.NullString `db:"property_location" json:"-"`
	PropertyType     sql.NullString `db:"property_type" json:"-"`
	CreatedAt        sql.NullTime   `db:"created_at" json:"-"`
}

// Name returns the project name, falling back to the property title.
func (s *Summary) Name() string {
	if name := Clean(s.ProjectName); name != "" {
		return name
	}
	return Clean(s.PropertyTitle)
}

// Clean returns the trimmed string value, or "" for NULL.
func Clean(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return strings.TrimSpace(ns.String)
}
