// Package citation parses citation references and renders aggregated
// source lists for answers.
package citation

import (
	"regexp"
	"strings"
)

// refPattern splits "title, <page marker> N" citation references.
// The page marker is recognized in several locales (Page / Стор), with or
// without a trailing dot and with varying whitespace.
var refPattern = regexp.MustCompile(`(?i)(.*),\s*(?:стор|page)\.?\s*(.*)`)

// Parse extracts the clean title and the page token from a citation
// reference. When the reference carries no page marker, the whole string is
// the title and the page is empty. Unmatched input is a normal outcome, not
// an error.
func Parse(ref string) (title, page string) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return ref, ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
