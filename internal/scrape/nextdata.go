package scrape

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nextData decodes the page-initialization JSON payload embedded in the
// __NEXT_DATA__ script block, or nil when absent or malformed. Numbers are
// kept as json.Number so numeric ids survive stringification.
func nextData(doc *goquery.Document) map[string]any {
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return decodeJSONMap(raw)
}

func decodeJSONMap(raw string) map[string]any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil
	}
	return data
}

// dig walks nested maps by key, returning nil when any step is missing.
func dig(node any, keys ...string) any {
	for _, key := range keys {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[key]
	}
	return node
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// stringify renders scalar JSON values the way the output layer expects:
// numbers without float formatting artifacts, nil as the empty string.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
