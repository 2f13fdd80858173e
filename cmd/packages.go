package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkonowrocki/allegro-cli/internal/output"
)

// newPackagesCmd creates the 'packages' subcommand.
func newPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "Show the packages/delivery summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := state.client.PackagesSummary(cmd.Context())
			if err != nil {
				return fmt.Errorf("packages summary: %w", err)
			}

			w := cmd.OutOrStdout()
			switch state.format {
			case "json":
				return output.JSON(w, summary)
			case "tsv":
				row := map[string]any{
					"total":            docScalar(summary["total"]),
					"parcelsForPickup": docScalar(summary["parcelsForPickup"]),
				}
				output.TSV(w, []map[string]any{row}, []string{"total", "parcelsForPickup"})
				return nil
			default:
				fmt.Fprintf(w, "Total packages:    %s\n", zeroIfEmpty(docScalar(summary["total"])))
				fmt.Fprintf(w, "Ready for pickup:  %s\n", zeroIfEmpty(docScalar(summary["parcelsForPickup"])))
				if msg := docString(summary, "message"); msg != "" {
					fmt.Fprintf(w, "Message:           %s\n", msg)
				}
				return nil
			}
		},
	}
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
