package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkonowrocki/allegro-cli/internal/allegro"
	"github.com/pkonowrocki/allegro-cli/internal/model"
)

// newSearchCmd creates and configures the 'search' subcommand.
func newSearchCmd() *cobra.Command {
	var (
		page     int
		category string
		sort     string
		priceMin string
		priceMax string
		seller   string
		columns  string
	)

	cmd := &cobra.Command{
		Use:   "search <phrase>",
		Short: "Search marketplace listings",
		Long: `Fetches one listing page for the phrase and prints the extracted
offers. Category accepts a numeric id or a slug; seller searches on the
seller's own listing page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			offers, err := state.client.Search(cmd.Context(), allegro.SearchQuery{
				Phrase:   args[0],
				Page:     page,
				Category: category,
				Sort:     sort,
				PriceMin: priceMin,
				PriceMax: priceMax,
				Seller:   seller,
			})
			if err != nil {
				return fmt.Errorf("search %q: %w", args[0], err)
			}
			if offers == nil {
				offers = []model.Offer{}
			}

			return render(cmd.OutOrStdout(), state.format, offers, splitColumns(columns))
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page number")
	cmd.Flags().StringVar(&category, "category", "", "category id or slug to search within")
	cmd.Flags().StringVar(&sort, "sort", "", "sort order (e.g. p for price ascending)")
	cmd.Flags().StringVar(&priceMin, "price-min", "", "minimum price filter")
	cmd.Flags().StringVar(&priceMax, "price-max", "", "maximum price filter")
	cmd.Flags().StringVar(&seller, "seller", "", "seller login (searches on the seller's page)")
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated column paths for text/tsv output")
	return cmd
}
