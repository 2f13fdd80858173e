package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() map[string]any {
	return map[string]any{
		"cart": map[string]any{
			"groups": []any{
				map[string]any{
					"seller": map[string]any{"id": "98765", "login": "laptopshop"},
					"items": []any{
						map[string]any{
							"selected": true,
							"offers": []any{
								map[string]any{"id": "12345678", "name": "Laptop Dell 15"},
							},
							"unitPrice": map[string]any{"amount": "1299.00", "currency": "PLN"},
							"quantity":  map[string]any{"selected": float64(2)},
							"price":     map[string]any{"amount": "2598.00"},
						},
					},
				},
			},
			"prices": map[string]any{"amount": "2598.00", "currency": "PLN"},
		},
	}
}

func TestFlattenCart(t *testing.T) {
	rows := flattenCart(sampleCart())
	require.Len(t, rows, 1)

	assert.Equal(t, "yes", rows[0]["selected"])
	assert.Equal(t, "12345678", rows[0]["offer_id"])
	assert.Equal(t, "Laptop Dell 15", rows[0]["name"])
	assert.Equal(t, "laptopshop", rows[0]["seller"])
	assert.Equal(t, "2", rows[0]["qty"])
	assert.Equal(t, "1299.00", rows[0]["unit_price"])
	assert.Equal(t, "PLN", rows[0]["currency"])
	assert.Equal(t, "2598.00", rows[0]["total"])
}

func TestFlattenCartScalarQuantity(t *testing.T) {
	cart := sampleCart()
	group := cart["cart"].(map[string]any)["groups"].([]any)[0].(map[string]any)
	item := group["items"].([]any)[0].(map[string]any)
	item["quantity"] = float64(3)
	item["selected"] = false

	rows := flattenCart(cart)
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0]["qty"])
	assert.Equal(t, "no", rows[0]["selected"])
}

func TestFlattenCartEmpty(t *testing.T) {
	assert.Empty(t, flattenCart(map[string]any{}))
	assert.Empty(t, flattenCart(map[string]any{"cart": map[string]any{}}))
}

func TestRenderCartTextTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderCart(&buf, "text", sampleCart()))

	out := buf.String()
	assert.Contains(t, out, "Laptop Dell 15")
	assert.Contains(t, out, "\nTotal: 2598.00 PLN\n")
}

func TestRenderCartJSONKeepsDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderCart(&buf, "json", sampleCart()))
	assert.Contains(t, buf.String(), `"groups"`)
	assert.NotContains(t, buf.String(), "Total:")
}
