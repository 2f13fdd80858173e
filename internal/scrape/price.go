package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const currencyMarker = "zł"

var (
	decimalPrice = regexp.MustCompile(`^\d+(\.\d+)?$`)
	labeledPrice = regexp.MustCompile(`([\d\s\x{00a0}.,]+)\s*zł`)
)

// NormalizePrice turns a display price like "1 299,56 zł" into "1299.56".
// It returns "" when the remainder is not a plain decimal number.
func NormalizePrice(raw string) string {
	cleaned := strings.ReplaceAll(raw, currencyMarker, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if decimalPrice.MatchString(cleaned) {
		return cleaned
	}
	return ""
}

// priceFromAria reads the price out of aria-label attributes within sel.
// Labels carrying both the currency marker and a price-like wording
// ("cena") are tried first, then any label with the currency marker.
// Each pass commits to its first matching element: when that label does
// not normalize, the pass yields nothing rather than scanning on.
func priceFromAria(sel *goquery.Selection) string {
	if label, ok := firstAriaLabel(sel, func(label string) bool {
		return strings.Contains(strings.ToLower(label), "cena")
	}); ok {
		if m := labeledPrice.FindStringSubmatch(label); m != nil {
			if p := NormalizePrice(m[1]); p != "" {
				return p
			}
		}
	}
	if label, ok := firstAriaLabel(sel, func(string) bool { return true }); ok {
		return NormalizePrice(label)
	}
	return ""
}

// firstAriaLabel returns the first aria-label within sel that carries the
// currency marker and satisfies match.
func firstAriaLabel(sel *goquery.Selection, match func(string) bool) (string, bool) {
	label := ""
	found := false
	sel.Find("[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		l := s.AttrOr("aria-label", "")
		if !strings.Contains(l, currencyMarker) || !match(l) {
			return true
		}
		label = l
		found = true
		return false
	})
	return label, found
}

// priceFromText commits to the first element with a direct text node
// containing the currency marker and normalizes that element's full text.
// A first hit that does not normalize ends the scan empty-handed.
func priceFromText(sel *goquery.Selection) string {
	result := ""
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !hasDirectText(s, currencyMarker) {
			return true
		}
		result = NormalizePrice(strings.TrimSpace(s.Text()))
		return false
	})
	return result
}

func hasDirectText(s *goquery.Selection, needle string) bool {
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.Contains(c.Data, needle) {
				return true
			}
		}
	}
	return false
}
