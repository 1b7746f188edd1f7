package cli

import (
	"github.com/spf13/cobra"

	"github.com/houzzhunt/hh/internal/mapdata"
)

func newMapDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map-data",
		Short: "Print the property map feed",
		Long:  "Build the same document the /property-map-data endpoint serves and print it.",
		Args:  cobra.NoArgs,
		RunE:  runMapData,
	}
}

func runMapData(cmd *cobra.Command, args []string) error {
	database, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	doc, err := mapdata.NewAggregator(database, mapdata.Options{
		IncludeGallery:     cfg.Map.IncludeGallery,
		IncludeMapboxToken: cfg.Map.IncludeMapbox,
		GoogleMapsAPIKey:   cfg.Map.GoogleMapsAPIKey,
		MapboxAccessToken:  cfg.Map.MapboxAccessToken,
	}).Build(cmd.Context())
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), doc)
	}

	return printMarkerTable(cmd.OutOrStdout(), doc)
}
