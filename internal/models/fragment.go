// Package models defines core data structures for fragments, chunks, and answers.
package models

// RawFragment is one piece of extracted document text in original order,
// as produced by a format extractor. Page is zero-based when the source
// format knows pages (PDF), nil otherwise (DOCX paragraphs, plain text).
type RawFragment struct {
	Text string
	Page *int
}

// TaggedFragment is a retained fragment stamped with its citation context.
// CitationRef is always non-empty: it carries the current section label and,
// when the fragment has a page, a human-readable 1-based page suffix.
type TaggedFragment struct {
	Content     string `json:"content"`
	Section     string `json:"section"`
	CitationRef string `json:"citation_ref"`
	PageNumber  string `json:"page_number,omitempty"` // 1-based display page, empty when unknown
	Source      string `json:"source"`
}
