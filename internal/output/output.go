// Package output renders command results as text tables, JSON, or
// tab-separated values. Columns are addressed by dotted paths over the
// record's JSON form (e.g. "sellingMode.price.amount").
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultColumns used by the search and offer commands.
const DefaultColumns = "id,name,sellingMode.price.amount,seller.name"

// Rows converts any JSON-serializable value (a slice of records) into
// generic row maps suitable for column lookup.
func Rows(v any) ([]map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// Row converts a single record into a row map.
func Row(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}

// Field resolves a dotted column path against a row. Missing paths and
// nils yield ""; nested maps render as compact JSON.
func Field(row map[string]any, path string) string {
	var node any = row
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return ""
		}
		node = m[part]
	}
	switch v := node.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Text renders rows as an aligned column table with a header rule.
func Text(w io.Writer, rows []map[string]any, columns []string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no results)")
		return
	}

	widths := make(map[string]int, len(columns))
	for _, col := range columns {
		widths[col] = len(col)
	}
	strRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		sr := make(map[string]string, len(columns))
		for _, col := range columns {
			val := Field(row, col)
			sr[col] = val
			if len(val) > widths[col] {
				widths[col] = len(val)
			}
		}
		strRows = append(strRows, sr)
	}

	header := make([]string, len(columns))
	rule := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(col, widths[col])
		rule[i] = strings.Repeat("-", widths[col])
	}
	fmt.Fprintln(w, strings.Join(header, "  "))
	fmt.Fprintln(w, strings.Join(rule, "  "))

	for _, sr := range strRows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = pad(sr[col], widths[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}

// TSV renders rows as tab-separated values with a header line. Empty row
// sets produce no output at all.
func TSV(w io.Writer, rows []map[string]any, columns []string) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = Field(row, col)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ErrorEntry is one element of the error envelope printed on failure.
type ErrorEntry struct {
	Message     string `json:"message"`
	Code        string `json:"code"`
	Details     string `json:"details,omitempty"`
	Path        string `json:"path,omitempty"`
	UserMessage string `json:"userMessage"`
}

// Errors writes the {"errors": [...]} envelope.
func Errors(w io.Writer, entries []ErrorEntry) error {
	return JSON(w, map[string][]ErrorEntry{"errors": entries})
}
