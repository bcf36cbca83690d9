// Package ingest turns raw extracted fragments into citation-tagged,
// retrieval-ready chunks.
package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// hyphenBreak matches a word split across a line break by a hyphen.
var hyphenBreak = regexp.MustCompile(`([\p{L}\p{N}_]+)-\n\s*([\p{L}\p{N}_]+)`)

// multiSpace collapses any whitespace run (including newlines) to one space.
var multiSpace = regexp.MustCompile(`\s+`)

// garbagePhrases are boilerplate markers that disqualify a fragment from
// indexing: rights notices, publisher and ToC markers, URL prefixes,
// ISBN/classification codes. Matched case-insensitively as substrings.
var garbagePhrases = []string{
	"всі права захищені",
	"all rights reserved",
	"видавництво",
	"зміст",
	"table of contents",
	"передмова",
	"foreword",
	"www.",
	"http",
	"isbn",
	"удк",
	"ббк",
	"©",
}

// Normalize cleans raw extracted text: joins hyphen-broken words, replaces
// non-breaking spaces, collapses whitespace, and trims. Empty input yields
// an empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = strings.ReplaceAll(text, " ", " ")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// IsGarbage reports whether a fragment carries no informational value:
// too short, digits only (bare page numbers), or containing a boilerplate
// phrase. Garbage fragments are dropped before section tracking so they
// cannot disturb the current citation context.
func IsGarbage(text string) bool {
	if utf8.RuneCountInString(text) < 5 {
		return true
	}
	if isAllDigits(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, phrase := range garbagePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
