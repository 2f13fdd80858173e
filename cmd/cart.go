package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkonowrocki/allegro-cli/internal/allegro"
	"github.com/pkonowrocki/allegro-cli/internal/output"
)

var cartColumns = []string{
	"selected", "offer_id", "name", "seller", "qty", "unit_price", "currency", "total",
}

// newCartCmd creates the 'cart' command group.
func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}
	cmd.AddCommand(newCartListCmd(), newCartAddCmd(), newCartRemoveCmd())
	return cmd
}

func newCartListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}
			cart, err := state.client.Cart(cmd.Context())
			if err != nil {
				return fmt.Errorf("list cart: %w", err)
			}
			return renderCart(cmd.OutOrStdout(), state.format, cart)
		},
	}
}

func newCartAddCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <offer-id> [seller-id]",
		Short: "Add an item to the cart (increase quantity)",
		Long: `Increases the quantity of the offer in the cart. When the seller id
is not given the offer page is scraped to resolve it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			offerID := args[0]
			var sellerID, categoryID string
			if len(args) > 1 {
				sellerID = args[1]
			}
			if sellerID == "" {
				offer, err := state.client.Offer(cmd.Context(), offerID)
				if err != nil {
					return fmt.Errorf("resolve seller for %s: %w", offerID, err)
				}
				sellerID = offer.Seller.ID
				categoryID = offer.Category.ID
			}

			err = state.client.ChangeCartQuantity(cmd.Context(), allegro.CartChange{
				ItemID:        offerID,
				Delta:         quantity,
				SellerID:      sellerID,
				NavCategoryID: categoryID,
			})
			if err != nil {
				return fmt.Errorf("add %s to cart: %w", offerID, err)
			}

			cart, err := state.client.Cart(cmd.Context())
			if err != nil {
				return fmt.Errorf("list cart: %w", err)
			}
			return renderCart(cmd.OutOrStdout(), state.format, cart)
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "quantity to add")
	return cmd
}

func newCartRemoveCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "remove <offer-id> [seller-id]",
		Short: "Remove an item from the cart (decrease quantity)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := resolveState(cmd.Context())
			if err != nil {
				return err
			}

			offerID := args[0]
			var sellerID string
			if len(args) > 1 {
				sellerID = args[1]
			}
			if sellerID == "" {
				sellerID, err = findCartSeller(cmd.Context(), state.client, offerID)
				if err != nil {
					return err
				}
			}

			err = state.client.ChangeCartQuantity(cmd.Context(), allegro.CartChange{
				ItemID:   offerID,
				Delta:    -quantity,
				SellerID: sellerID,
			})
			if err != nil {
				return fmt.Errorf("remove %s from cart: %w", offerID, err)
			}

			cart, err := state.client.Cart(cmd.Context())
			if err != nil {
				return fmt.Errorf("list cart: %w", err)
			}
			return renderCart(cmd.OutOrStdout(), state.format, cart)
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "quantity to remove")
	return cmd
}

// findCartSeller looks the offer up in the current cart; only when it is
// not there does it fall back to scraping the offer page.
func findCartSeller(ctx context.Context, client *allegro.Client, offerID string) (string, error) {
	cart, err := client.Cart(ctx)
	if err != nil {
		return "", fmt.Errorf("list cart: %w", err)
	}
	for _, group := range docSlice(cart, "cart", "groups") {
		g, ok := group.(map[string]any)
		if !ok {
			continue
		}
		for _, item := range docSlice(g, "items") {
			it, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for _, o := range docSlice(it, "offers") {
				om, ok := o.(map[string]any)
				if !ok {
					continue
				}
				if docString(om, "id") == offerID {
					if id := docString(g, "seller", "id"); id != "" {
						return id, nil
					}
				}
			}
		}
	}

	offer, err := client.Offer(ctx, offerID)
	if err != nil {
		return "", fmt.Errorf("resolve seller for %s: %w", offerID, err)
	}
	return offer.Seller.ID, nil
}

// renderCart prints the raw document as JSON, or a flat row per cart item
// for text and tsv. Text output gets a cart total footer.
func renderCart(w io.Writer, format string, cart map[string]any) error {
	if format == "json" {
		return output.JSON(w, cart)
	}

	rows := flattenCart(cart)
	if format == "tsv" {
		output.TSV(w, rows, cartColumns)
		return nil
	}
	output.Text(w, rows, cartColumns)
	if amount := docString(cart, "cart", "prices", "amount"); amount != "" {
		currency := docString(cart, "cart", "prices", "currency")
		if currency == "" {
			currency = "PLN"
		}
		fmt.Fprintf(w, "\nTotal: %s %s\n", amount, currency)
	}
	return nil
}

// flattenCart turns the nested groups/items document into table rows.
func flattenCart(cart map[string]any) []map[string]any {
	var rows []map[string]any
	for _, group := range docSlice(cart, "cart", "groups") {
		g, ok := group.(map[string]any)
		if !ok {
			continue
		}
		sellerLogin := docString(g, "seller", "login")
		for _, item := range docSlice(g, "items") {
			it, ok := item.(map[string]any)
			if !ok {
				continue
			}
			offers := docSlice(it, "offers")
			var offer map[string]any
			if len(offers) > 0 {
				offer, _ = offers[0].(map[string]any)
			}

			currency := docString(it, "unitPrice", "currency")
			if currency == "" {
				currency = "PLN"
			}
			qty := docString(it, "quantity", "selected")
			if qty == "" {
				qty = docScalar(it["quantity"])
			}
			selected := "no"
			if sel, ok := it["selected"].(bool); ok && sel {
				selected = "yes"
			}

			rows = append(rows, map[string]any{
				"selected":   selected,
				"offer_id":   docString(offer, "id"),
				"name":       docString(offer, "name"),
				"seller":     sellerLogin,
				"qty":        qty,
				"unit_price": docString(it, "unitPrice", "amount"),
				"currency":   currency,
				"total":      docString(it, "price", "amount"),
			})
		}
	}
	return rows
}

// docSlice walks nested map keys and returns the slice at the end, or nil.
func docSlice(doc map[string]any, keys ...string) []any {
	var node any = doc
	for _, key := range keys {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[key]
	}
	s, _ := node.([]any)
	return s
}

// docString walks nested map keys and returns the scalar at the end as a
// string, or "".
func docString(doc map[string]any, keys ...string) string {
	var node any = doc
	for _, key := range keys {
		m, ok := node.(map[string]any)
		if !ok {
			return ""
		}
		node = m[key]
	}
	return docScalar(node)
}

func docScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
