package scrape

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pkonowrocki/allegro-cli/internal/model"
)

// TabContentCorrelation marks lazily loaded blocks belonging to the detail
// tab, which is where attribute tables live. "corellationId" is the wire
// format's own spelling.
const TabContentCorrelation = "tab content"

// LazyContext describes one deferred-content block referenced from the
// initial page by an opaque context token.
type LazyContext struct {
	BoxID         string
	Value         string
	Cardinal      int
	CorellationID string
}

type lazyPayload struct {
	ContextURLParamName  string `json:"contextUrlParamName"`
	ContextURLParamValue string `json:"contextUrlParamValue"`
	Cardinal             int    `json:"cardinal"`
	CorellationID        string `json:"corellationId"`
}

// ExtractLazyContexts collects deferred-load markers from the serialized
// blocks of a detail page, sorted so that tab-content blocks come first
// and ties break by ascending cardinal.
func ExtractLazyContexts(htmlText string) []LazyContext {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	var contexts []LazyContext
	doc.Find(serializedBlockSelector).Each(func(_ int, s *goquery.Selection) {
		var payload lazyPayload
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return
		}
		if payload.ContextURLParamName == "" || payload.ContextURLParamValue == "" {
			return
		}
		contexts = append(contexts, LazyContext{
			BoxID:         s.AttrOr("data-serialize-box-id", ""),
			Value:         payload.ContextURLParamValue,
			Cardinal:      payload.Cardinal,
			CorellationID: payload.CorellationID,
		})
	})

	sort.SliceStable(contexts, func(i, j int) bool {
		iTab := contexts[i].CorellationID == TabContentCorrelation
		jTab := contexts[j].CorellationID == TabContentCorrelation
		if iTab != jTab {
			return iTab
		}
		return contexts[i].Cardinal < contexts[j].Cardinal
	})
	return contexts
}

// ParseOpboxParameters walks a decoded subtree response for parameter
// groups. The response shape varies per block, so no path is assumed:
// any mapping carrying a groups list contributes, at any depth. First
// value per name wins.
func ParseOpboxParameters(data any) model.Parameters {
	params := model.Parameters{}
	walkForGroups(data, params)
	return params
}

func walkForGroups(node any, params model.Parameters) {
	switch v := node.(type) {
	case map[string]any:
		if groups, ok := v["groups"]; ok {
			collectGroups(groups, params)
		}
		// Sorted keys keep first-wins deterministic across sibling subtrees.
		keys := make([]string, 0, len(v))
		for key := range v {
			if key != "groups" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			walkForGroups(v[key], params)
		}
	case []any:
		for _, child := range v {
			walkForGroups(child, params)
		}
	}
}
