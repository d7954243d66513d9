package parser

import (
	"html"
	"strings"
)

// Normalize decodes HTML entities and splits raw text into trimmed,
// non-empty lines in their original order. Empty input yields nil.
func Normalize(raw string) []string {
	var lines []string
	for _, ln := range strings.Split(html.UnescapeString(raw), "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// cleanValue entity-decodes a captured value and trims whitespace plus
// trailing sentence punctuation.
func cleanValue(s string) string {
	s = strings.TrimSpace(html.UnescapeString(s))
	return strings.TrimRight(s, ".,;")
}
