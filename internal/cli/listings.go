package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/houzzhunt/hh/internal/listing"
)

func newListingsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "List property listings",
		Long:  "List the off-plan, buy or rent listings, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListings(cmd, category)
		},
	}

	cmd.PersistentFlags().StringVar(&category, "category", "offplan", "listing category (offplan|buy|rent)")
	cmd.AddCommand(newListingsRemoveCmd(&category))

	return cmd
}

func newListingsRemoveCmd(category *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListingsRemove(cmd, *category, args[0])
		},
	}
}

func runListings(cmd *cobra.Command, category string) error {
	src, err := listing.SourceFor(category)
	if err != nil {
		return err
	}

	database, _, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	rows, err := listing.NewRepository(database).Summaries(cmd.Context(), src)
	if err != nil {
		return err
	}

	if isJSON() {
		out := make([]map[string]interface{}, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]interface{}{
				"id":                r.ID,
				"category":          src.Category,
				"name":              r.Name(),
				"property_location": listing.Clean(r.PropertyLocation),
				"property_type":     listing.Clean(r.PropertyType),
			})
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	return printListingTable(cmd.OutOrStdout(), src, rows)
}

func runListingsRemove(cmd *cobra.Command, category, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid listing ID: %s", rawID)
	}

	src, err := listing.SourceFor(category)
	if err != nil {
		return err
	}

	database, _, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	if err := listing.NewRepository(database).Delete(cmd.Context(), src, id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"id":       id,
			"category": src.Category,
			"removed":  true,
		})
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s listing #%d removed.\n", src.Label, id)
	return err
}
