package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pkonowrocki/allegro-cli/internal/model"
)

// serializedBlockSelector matches the script blocks the site uses to
// hydrate UI components; each carries a standalone JSON payload.
const serializedBlockSelector = "script[data-serialize-box-id]"

var paramsHeading = regexp.MustCompile(`(?i)parametr|specyfik`)

// paramsFromSerializedBlocks parses every serialization-marker script on
// the page and collects parameters from any payload carrying a groups
// list. First value per name wins across blocks.
func paramsFromSerializedBlocks(doc *goquery.Document) model.Parameters {
	params := model.Parameters{}
	doc.Find(serializedBlockSelector).Each(func(_ int, s *goquery.Selection) {
		payload := decodeJSONMap(s.Text())
		if payload == nil {
			return
		}
		collectGroups(payload["groups"], params)
	})
	return params
}

// paramsFromNextData reads parameters out of the embedded JSON state,
// trying the known nested locations in order.
func paramsFromNextData(doc *goquery.Document) model.Parameters {
	data := nextData(doc)
	if data == nil {
		return model.Parameters{}
	}
	props := dig(data, "props", "pageProps")

	var list []any
	for _, path := range [][]string{
		{"parameters"},
		{"offer", "parameters"},
		{"product", "parameters"},
	} {
		if list = asSlice(dig(props, path...)); len(list) > 0 {
			break
		}
	}

	params := model.Parameters{}
	for _, raw := range list {
		item := asMap(raw)
		if item == nil {
			continue
		}
		name := stringify(item["name"])
		value := item["value"]
		if value == nil {
			value = item["values"]
		}
		params.Set(name, joinValues(value))
	}
	return params
}

func joinValues(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, entry := range list {
			parts = append(parts, stringify(entry))
		}
		return strings.Join(parts, ", ")
	}
	return stringify(v)
}

// collectGroups folds a groups list (the serialized-block and subtree
// response shape) into params. Single-value entries carry the value under
// value.name with a long-form description alongside; multi-value entries
// are comma-joined.
func collectGroups(groups any, params model.Parameters) {
	for _, rawGroup := range asSlice(groups) {
		group := asMap(rawGroup)
		if group == nil {
			continue
		}
		for _, rawParam := range asSlice(group["singleValueParams"]) {
			param := asMap(rawParam)
			if param == nil {
				continue
			}
			params.Set(stringify(param["name"]), paramValueName(param["value"]))
		}
		for _, rawParam := range asSlice(group["multiValueParams"]) {
			param := asMap(rawParam)
			if param == nil {
				continue
			}
			values := make([]string, 0)
			for _, rawValue := range asSlice(param["values"]) {
				if v := paramValueName(rawValue); v != "" {
					values = append(values, v)
				}
			}
			params.Set(stringify(param["name"]), strings.Join(values, ", "))
		}
	}
}

func paramValueName(v any) string {
	if m := asMap(v); m != nil {
		return stringify(m["name"])
	}
	return stringify(v)
}

// paramsFromTables is the last-resort HTML strategy: locate every heading
// announcing a parameter/specification section, take the next table in
// document order, and keep the table yielding the most rows (first found
// on ties). With no qualifying table, the first definition list after the
// first matching heading is used.
func paramsFromTables(doc *goquery.Document) model.Parameters {
	headings := doc.Find("h1,h2,h3,h4,h5,h6").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return paramsHeading.MatchString(s.Text())
	})

	best := model.Parameters{}
	headings.Each(func(_ int, heading *goquery.Selection) {
		table := followingNode(heading, "table")
		if table == nil {
			return
		}
		params := paramsFromTable(goquery.NewDocumentFromNode(table).Selection)
		if len(params) > len(best) {
			best = params
		}
	})
	if len(best) > 0 {
		return best
	}

	if first := headings.First(); first.Length() > 0 {
		if dl := followingNode(first, "dl"); dl != nil {
			return paramsFromDefinitionList(goquery.NewDocumentFromNode(dl).Selection)
		}
	}
	return model.Parameters{}
}

func paramsFromTable(table *goquery.Selection) model.Parameters {
	params := model.Parameters{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td,th")
		if cells.Length() < 2 {
			return
		}
		key := strings.TrimSpace(cells.Eq(0).Text())
		params.Set(key, cellValue(cells.Eq(1)))
	})
	return params
}

// cellValue prefers the text of a nested link over the whole cell: detail
// pages embed a long free-text description next to the concise value.
func cellValue(cell *goquery.Selection) string {
	if link := cell.Find("a").First(); link.Length() > 0 {
		if v := strings.TrimSpace(link.Text()); v != "" {
			return v
		}
	}
	return strings.TrimSpace(cell.Text())
}

func paramsFromDefinitionList(dl *goquery.Selection) model.Parameters {
	params := model.Parameters{}
	terms := dl.Find("dt")
	values := dl.Find("dd")
	terms.Each(func(i int, term *goquery.Selection) {
		if i >= values.Length() {
			return
		}
		key := strings.TrimSpace(term.Text())
		params.Set(key, strings.TrimSpace(values.Eq(i).Text()))
	})
	return params
}

// followingNode returns the first element named tag that appears after sel
// in document order. Siblings alone are not enough: the table regularly
// lives under a different ancestor than the heading.
func followingNode(sel *goquery.Selection, tag string) *html.Node {
	if len(sel.Nodes) == 0 {
		return nil
	}
	for n := nextInDocument(sel.Nodes[0]); n != nil; n = nextInDocument(n) {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}
