package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkonowrocki/allegro-cli/internal/model"
)

func sampleOffers() []model.Offer {
	return []model.Offer{
		{
			ID:          "12345678",
			Name:        "Laptop Dell 15",
			Seller:      model.Seller{ID: "98765", Name: "laptopshop"},
			SellingMode: model.SellingMode{Format: model.FormatBuyNow, Price: model.NewPrice("1299.00")},
		},
		{
			ID:          "87654321",
			Name:        "Laptop Lenovo 14",
			SellingMode: model.SellingMode{Format: model.FormatBuyNow, Price: model.NewPrice("899.99")},
		},
	}
}

func TestFieldDottedPaths(t *testing.T) {
	row, err := Row(sampleOffers()[0])
	require.NoError(t, err)

	assert.Equal(t, "12345678", Field(row, "id"))
	assert.Equal(t, "1299.00", Field(row, "sellingMode.price.amount"))
	assert.Equal(t, "laptopshop", Field(row, "seller.name"))
	assert.Equal(t, "", Field(row, "missing.path"))
	assert.Equal(t, "", Field(row, "id.too.deep"))
}

func TestTextTable(t *testing.T) {
	rows, err := Rows(sampleOffers())
	require.NoError(t, err)

	var buf bytes.Buffer
	Text(&buf, rows, strings.Split(DefaultColumns, ","))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "id")
	assert.Contains(t, lines[0], "sellingMode.price.amount")
	assert.True(t, strings.HasPrefix(lines[1], "--------"))
	assert.Contains(t, lines[2], "12345678")
	assert.Contains(t, lines[2], "laptopshop")
	assert.Contains(t, lines[3], "899.99")
}

func TestTextNoResults(t *testing.T) {
	var buf bytes.Buffer
	Text(&buf, nil, []string{"id", "name"})
	assert.Equal(t, "(no results)\n", buf.String())
}

func TestTSV(t *testing.T) {
	rows, err := Rows(sampleOffers())
	require.NoError(t, err)

	var buf bytes.Buffer
	TSV(&buf, rows, []string{"id", "name"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id\tname", lines[0])
	assert.Equal(t, "12345678\tLaptop Dell 15", lines[1])
}

func TestTSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	TSV(&buf, nil, []string{"id"})
	assert.Empty(t, buf.String())
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleOffers()))

	out := buf.String()
	assert.Contains(t, out, `"id": "12345678"`)
	assert.Contains(t, out, `"amount": "1299.00"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestErrorsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Errors(&buf, []ErrorEntry{{
		Message:     "session expired (401)",
		Code:        "Unauthorized",
		UserMessage: "session expired (401)",
	}}))

	out := buf.String()
	assert.Contains(t, out, `"errors"`)
	assert.Contains(t, out, `"code": "Unauthorized"`)
	assert.NotContains(t, out, `"details"`)
}
