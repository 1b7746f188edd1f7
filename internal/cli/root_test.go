package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/houzzhunt/hh/internal/db"
	"github.com/houzzhunt/hh/internal/lead"
	"github.com/houzzhunt/hh/internal/listing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	flagFormat, flagDB, flagEnvFile = "text", "", ".env"

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// testDBPath creates a migrated database and returns its path along with
// the flags that point a command at it.
func testDBPath(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "site.db")
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatalf("closing test db: %v", err)
	}
	return path, []string{"--db", path, "--env-file", filepath.Join(dir, "missing.env")}
}

func seed(t *testing.T, path string, queries ...string) {
	t.Helper()
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	defer database.Close()
	for _, q := range queries {
		if _, err := database.Exec(q); err != nil {
			t.Fatalf("seeding %q: %v", q, err)
		}
	}
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	dbFlag := root.PersistentFlags().Lookup("db")
	if dbFlag == nil {
		t.Fatal("expected --db flag to exist")
	}

	if root.PersistentFlags().Lookup("env-file") == nil {
		t.Fatal("expected --env-file flag to exist")
	}
}

func TestSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"serve", "leads", "listings", "map-data", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q", name)
		}
	}

	serve, _, _ := root.Find([]string{"serve"})
	if serve.Flags().Lookup("port") == nil {
		t.Error("expected serve --port flag")
	}

	remove, _, err := root.Find([]string{"listings", "remove"})
	if err != nil || remove.Name() != "remove" {
		t.Error("expected listings remove subcommand")
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != Version {
		t.Errorf("got %q, want %q", out, Version)
	}
}

func TestLeadsEmpty(t *testing.T) {
	_, flags := testDBPath(t)

	out, err := executeCommand(append([]string{"leads"}, flags...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No leads found.") {
		t.Errorf("expected empty message, got %q", out)
	}
}

func TestLeadsJSON(t *testing.T) {
	path, flags := testDBPath(t)

	database, err := db.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	repo := lead.NewRepository(database)
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := repo.Insert(context.Background(), &lead.Lead{
			Type:    lead.TypePopup,
			Name:    name,
			Email:   strings.ToLower(name) + "@example.com",
			Phone:   "+971 50 123 4567",
			Country: "UAE",
		}); err != nil {
			t.Fatalf("inserting lead: %v", err)
		}
	}
	database.Close()

	out, err := executeCommand(append([]string{"leads", "--format", "json"}, flags...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var page lead.LeadPage
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if page.Total != 2 || len(page.Leads) != 2 {
		t.Fatalf("expected 2 leads, got total=%d len=%d", page.Total, len(page.Leads))
	}
	if page.Leads[0].Name != "Bob" {
		t.Errorf("expected newest lead first, got %q", page.Leads[0].Name)
	}
}

func TestListingsText(t *testing.T) {
	path, flags := testDBPath(t)
	seed(t, path,
		`INSERT INTO buy_properties_list (project_name, property_location, property_type) VALUES ('Marina Heights', 'Dubai Marina', 'Apartment')`,
	)

	out, err := executeCommand(append([]string{"listings", "--category", "buy"}, flags...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Marina Heights") {
		t.Errorf("expected listing name in output, got %q", out)
	}
	if !strings.Contains(out, "Total: 1 Buy listings") {
		t.Errorf("expected total footer, got %q", out)
	}
}

func TestListingsUnknownCategory(t *testing.T) {
	_, flags := testDBPath(t)

	_, err := executeCommand(append([]string{"listings", "--category", "lease"}, flags...)...)
	if !errors.Is(err, listing.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestListingsRemove(t *testing.T) {
	path, flags := testDBPath(t)
	seed(t, path, `INSERT INTO rent_properties_list (id, project_name) VALUES (7, 'Creek View')`)

	out, err := executeCommand(append([]string{"listings", "remove", "--category", "rent", "--format", "json", "7"}, flags...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
		Removed  bool   `json:"removed"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if result.ID != 7 || result.Category != "rent" || !result.Removed {
		t.Errorf("unexpected result %+v", result)
	}

	_, err = executeCommand(append([]string{"listings", "remove", "--category", "rent", "7"}, flags...)...)
	if !errors.Is(err, listing.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestListingsRemoveInvalidID(t *testing.T) {
	_, flags := testDBPath(t)

	_, err := executeCommand(append([]string{"listings", "remove", "abc"}, flags...)...)
	if err == nil || !strings.Contains(err.Error(), "invalid listing ID") {
		t.Fatalf("expected invalid ID error, got %v", err)
	}
}

func TestMapDataJSON(t *testing.T) {
	path, flags := testDBPath(t)
	seed(t, path,
		`INSERT INTO properties_list (project_name, property_location, location_map) VALUES ('Palm Vista', 'Palm Jumeirah', '25.112233,55.138899')`,
	)

	out, err := executeCommand(append([]string{"map-data", "--format", "json"}, flags...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Properties []struct {
			DisplayName string   `json:"display_name"`
			CategoryKey string   `json:"category_key"`
			Latitude    *float64 `json:"latitude"`
		} `json:"properties"`
		GeneratedAt string `json:"generated_at"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if len(doc.Properties) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(doc.Properties))
	}
	m := doc.Properties[0]
	if m.DisplayName != "Palm Vista" || m.CategoryKey != "offplan" {
		t.Errorf("unexpected marker %+v", m)
	}
	if m.Latitude == nil || *m.Latitude != 25.112233 {
		t.Errorf("expected latitude 25.112233, got %v", m.Latitude)
	}
	if doc.GeneratedAt == "" {
		t.Error("expected generated_at")
	}
}

func TestMapDataText(t *testing.T) {
	_, flags := testDBPath(t)

	out, err := executeCommand(append([]string{"map-data"}, flags...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No mappable listings.") {
		t.Errorf("expected empty message, got %q", out)
	}
}
