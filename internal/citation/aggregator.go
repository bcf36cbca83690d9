package citation

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// Defaults used when a chunk is missing provenance metadata.
const (
	DefaultCitationRef = "General context"
	DefaultSource      = "Unknown file"
)

const sourcesHeader = "Sources:"

type groupKey struct {
	title    string
	filename string
}

// Aggregate groups the chunks by (citation title, source filename), collects
// their page tokens as a set, and renders a numbered source list. Returns the
// empty string for an empty chunk slice so callers can append the result
// verbatim.
func Aggregate(chunks []*models.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	groups := make(map[groupKey]map[string]struct{})
	for _, ch := range chunks {
		ref := ch.Metadata.CitationRef
		if ref == "" {
			ref = DefaultCitationRef
		}
		source := ch.Metadata.Source
		if source == "" {
			source = DefaultSource
		}
		title, page := Parse(ref)
		key := groupKey{title: title, filename: filepath.Base(source)}
		if _, ok := groups[key]; !ok {
			groups[key] = make(map[string]struct{})
		}
		if page != "" {
			groups[key][page] = struct{}{}
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].filename != keys[j].filename {
			return keys[i].filename < keys[j].filename
		}
		return keys[i].title < keys[j].title
	})

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		pages := sortPages(groups[key])
		if len(pages) > 0 {
			lines = append(lines, fmt.Sprintf("%s (Page %s) — [%s]", key.title, strings.Join(pages, ", "), key.filename))
		} else {
			lines = append(lines, fmt.Sprintf("%s — [%s]", key.title, key.filename))
		}
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("=", 30))
	b.WriteString("\n")
	b.WriteString(sourcesHeader)
	b.WriteString("\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%d. %s", i+1, line))
	}
	return b.String()
}

// Merge appends the aggregated source block to the answer. With no chunks the
// answer is returned verbatim, without any separator.
func Merge(answer string, chunks []*models.Chunk) string {
	return answer + Aggregate(chunks)
}

// sortPages orders page tokens: purely numeric tokens first, by integer
// value, then everything else lexically. One comparator keeps mixed sets in
// a total order.
func sortPages(set map[string]struct{}) []string {
	pages := make([]string, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		vi, okI := pageValue(pages[i])
		vj, okJ := pageValue(pages[j])
		switch {
		case okI && okJ:
			return vi < vj
		case okI:
			return true
		case okJ:
			return false
		default:
			return pages[i] < pages[j]
		}
	})
	return pages
}

// pageValue parses a token composed entirely of ASCII digits. Signed or
// mixed tokens ("iv", "A-3") are treated as opaque strings.
func pageValue(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
