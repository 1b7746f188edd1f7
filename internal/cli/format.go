package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/houzzhunt/hh/internal/lead"
	"github.com/houzzhunt/hh/internal/listing"
	"github.com/houzzhunt/hh/internal/mapdata"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printLeadTable prints one page of leads as a formatted table.
func printLeadTable(out io.Writer, page *lead.LeadPage) error {
	if page.Total == 0 {
		_, err := fmt.Fprintln(out, "No leads found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTYPE\tNAME\tEMAIL\tPHONE\tCOUNTRY\tPROPERTY\tRECEIVED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t----\t-----\t-----\t-------\t--------\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, l := range page.Leads {
		property := l.DisplayTitle()
		if property == "" {
			property = "-"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Type.Label(), truncate(l.Name, 24), truncate(l.Email, 32), l.Phone,
			truncate(l.Country, 16), truncate(property, 32), l.CreatedAt.Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nPage %d of %d (%d leads)\n", page.Page, page.TotalPages, page.Total)
	return err
}

// printListingTable prints listing summaries for one category.
func printListingTable(out io.Writer, src listing.Source, rows []*listing.Summary) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(out, "No %s listings found.\n", src.Label)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tLOCATION\tTYPE\tCREATED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t--------\t----\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, r := range rows {
		created := "-"
		if r.CreatedAt.Valid {
			created = r.CreatedAt.Time.Format("2006-01-02")
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, dash(truncate(r.Name(), 40)), dash(truncate(listing.Clean(r.PropertyLocation), 30)),
			dash(listing.Clean(r.PropertyType)), created); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d %s listings\n", len(rows), src.Label)
	return err
}

// printMarkerTable prints the map markers a map-data request would return.
func printMarkerTable(out io.Writer, doc *mapdata.Document) error {
	if len(doc.Properties) == 0 {
		_, err := fmt.Fprintln(out, "No mappable listings.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tCATEGORY\tNAME\tLOCATION\tCOORDINATES"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t--------\t----\t--------\t-----------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, m := range doc.Properties {
		coords := "-"
		if m.Latitude != nil && m.Longitude != nil {
			coords = fmt.Sprintf("%.6f,%.6f", *m.Latitude, *m.Longitude)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			m.ID, m.CategoryLabel, dash(truncate(m.DisplayName, 40)), dash(truncate(m.Location, 30)), coords); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d markers (generated %s)\n", len(doc.Properties), doc.GeneratedAt)
	return err
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
