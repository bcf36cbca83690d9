package ingest

import (
	"regexp"
	"strconv"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// Sentinels used before the first heading is seen in a document pass.
const (
	DefaultSection     = "Introduction"
	DefaultCitationRef = "General context"
)

// headingPattern is one rule identifying a fragment as a section boundary.
// Patterns are anchored at the start of the fragment and case-insensitive;
// the locale tag documents which language variant each rule covers.
type headingPattern struct {
	re     *regexp.Regexp
	locale string
}

// headingPatterns is the ordered rule table. The first match wins and the
// fragment's full text becomes the new section label.
var headingPatterns = []headingPattern{
	{regexp.MustCompile(`(?i)^§\s?\d+`), "any"},
	{regexp.MustCompile(`(?i)^Розділ`), "uk"},
	{regexp.MustCompile(`(?i)^Глава`), "uk"},
	{regexp.MustCompile(`(?i)^Тема`), "uk"},
	{regexp.MustCompile(`(?i)^Chapter`), "en"},
	{regexp.MustCompile(`(?i)^Section`), "en"},
	{regexp.MustCompile(`(?i)^Topic`), "en"},
}

// ExtractHeading returns the full fragment text as the new section label when
// the text matches a heading rule, and "" otherwise. A non-match is a normal
// outcome.
func ExtractHeading(text string) string {
	for _, p := range headingPatterns {
		if p.re.MatchString(text) {
			return text
		}
	}
	return ""
}

// Tracker carries the running citation context across one sequential pass
// over a document's fragments. It must not be shared between passes; create
// a fresh Tracker per document.
type Tracker struct {
	section     string
	citationRef string
	source      string
}

// NewTracker returns a tracker initialized to the sentinels for the given
// source file path.
func NewTracker(source string) *Tracker {
	return &Tracker{
		section:     DefaultSection,
		citationRef: DefaultCitationRef,
		source:      source,
	}
}

// Tag stamps one normalized, non-garbage fragment with the current citation
// context and returns the tagged result. A fragment matching a heading rule
// updates the context first, so the heading is attributed to itself. Page is
// the loader's zero-based page number, nil when unknown; citations render it
// 1-based.
func (t *Tracker) Tag(text string, page *int) models.TaggedFragment {
	if label := ExtractHeading(text); label != "" {
		t.section = label
		t.citationRef = label
	}

	var pageDisplay, pageSuffix string
	if page != nil {
		pageDisplay = strconv.Itoa(*page + 1)
		pageSuffix = ", Page " + pageDisplay
	}

	return models.TaggedFragment{
		Content:     "Section: " + t.section + "\nText: " + text,
		Section:     t.section,
		CitationRef: t.citationRef + pageSuffix,
		PageNumber:  pageDisplay,
		Source:      t.source,
	}
}
