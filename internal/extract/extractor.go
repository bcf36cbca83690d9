// Package extract loads document files into ordered raw fragments.
//
// Each format extractor yields fragments at the finest natural boundary the
// format offers: pages for PDF, paragraphs for DOCX, blocks for Markdown and
// HTML, rows for XLSX, blank-line paragraphs for plain text. Page numbers
// are zero-based and only present where the format knows them.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// ErrNoText means the file was decoded but produced no usable text. Callers
// must surface this distinctly from "no results".
var ErrNoText = errors.New("no text extracted")

// ErrUnsupported means the file extension has no extractor.
var ErrUnsupported = errors.New("unsupported document format")

// Extractor loads document files into raw fragments.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its fragments in document order.
// Returns ErrUnsupported for unknown extensions and ErrNoText when the file
// decodes to nothing.
func (e *Extractor) Extract(path string) ([]models.RawFragment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts fragments from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) ([]models.RawFragment, error) {
	var (
		fragments []models.RawFragment
		err       error
	)
	switch ext {
	case ".pdf":
		fragments, err = extractPDF(content)
	case ".docx", ".doc":
		fragments, err = extractDOCX(content)
	case ".md", ".markdown":
		fragments, err = extractMarkdown(content)
	case ".html", ".htm":
		fragments, err = extractHTML(content)
	case ".xlsx":
		fragments, err = extractExcel(content)
	case ".txt", ".rst", "":
		fragments, err = extractPlain(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, ErrNoText
	}
	return fragments, nil
}

// Supported reports whether ext (with leading dot) has an extractor.
func (e *Extractor) Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".doc", ".md", ".markdown", ".html", ".htm", ".xlsx", ".txt", ".rst":
		return true
	}
	return false
}
