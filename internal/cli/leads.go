package cli

import (
	"github.com/spf13/cobra"

	"github.com/houzzhunt/hh/internal/lead"
)

func newLeadsCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List captured leads",
		Long:  "List popup enquiries and brochure downloads, newest first, ten per page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeads(cmd, page)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")

	return cmd
}

func runLeads(cmd *cobra.Command, page int) error {
	database, _, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	result, err := lead.NewRepository(database).Page(cmd.Context(), page)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), result)
	}

	return printLeadTable(cmd.OutOrStdout(), result)
}
