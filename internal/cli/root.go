// Package cli defines the cobra command tree for the houzzhunt site.
package cli

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/houzzhunt/hh/internal/config"
	"github.com/houzzhunt/hh/internal/db"
)

var (
	flagFormat  string
	flagDB      string
	flagEnvFile string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hh",
		Short:         "Run and administer the houzzhunt property site",
		Long:          "Serve the houzzhunt site (lead forms and the property map feed) and inspect its leads and listings from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: $HH_DB_PATH or ~/.houzzhunt/site.db)")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to load before reading HH_* variables")

	root.AddCommand(
		newServeCmd(),
		newLeadsCmd(),
		newListingsCmd(),
		newMapDataCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig resolves configuration, letting --db override HH_DB_PATH.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return config.Config{}, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if cfg.DBPath == "" {
		path, err := db.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		cfg.DBPath = path
	}
	return cfg, nil
}

// openDB opens the SQLite database named by the configuration.
func openDB() (*sqlx.DB, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	return database, cfg, nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sqlx.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
