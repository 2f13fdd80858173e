package scrape

import (
	"regexp"
	"strings"
)

var (
	offerIDTrailing = regexp.MustCompile(`-(\d{6,})$`)
	offerIDLoose    = regexp.MustCompile(`[/-]i?(\d{8,})`)
)

// ExtractOfferID pulls the numeric offer id out of an offer URL. Standard
// links end in "-<digits>"; older layouts use "/i<digits>.html" or bury a
// long digit run elsewhere in the path.
func ExtractOfferID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	path := rawURL
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if m := offerIDTrailing.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	if m := offerIDLoose.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}
