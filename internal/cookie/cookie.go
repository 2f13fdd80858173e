// Package cookie converts pasted browser cookies into a Cookie header
// string. Sessions are established by copying cookies out of a logged-in
// browser, either as the DevTools table or as a raw header line.
package cookie

import (
	"regexp"
	"strings"
)

var columnSplit = regexp.MustCompile(`\t+|\s{2,}`)

// ParseTable parses a Chrome DevTools cookie table (tab or multi-space
// separated; name and value in the first two columns) into a Cookie
// header string. Comment lines and malformed rows are skipped.
func ParseTable(text string) string {
	var pairs []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := columnSplit.Split(line, -1)
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; ")
}

// FromPaste auto-detects the paste format: tabs or doubled spaces mean a
// DevTools table, anything else is treated as a raw Cookie header string.
func FromPaste(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "\t") || strings.Contains(text, "  ") {
		return ParseTable(text)
	}
	return text
}
