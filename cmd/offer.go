package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkonowrocki/allegro-cli/internal/scrape"
)

// newOfferCmd creates and configures the 'offer' subcommand.
func newOfferCmd() *cobra.Command {
	var columns string

	cmd := &cobra.Command{
		Use:   "offer <id-or-url>",
		Short: "Show one offer with its parameters",
		Long: `Fetches a single offer page and prints the extracted record,
including product parameters. Accepts either a bare numeric offer id or
a full offer URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			offerID := args[0]
			if id := scrape.ExtractOfferID(offerID); id != "" {
				offerID = id
			}

			offer, err := state.client.Offer(cmd.Context(), offerID)
			if err != nil {
				return fmt.Errorf("offer %s: %w", offerID, err)
			}

			return renderOne(cmd.OutOrStdout(), state.format, offer, splitColumns(columns))
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated column paths for text/tsv output")
	return cmd
}
