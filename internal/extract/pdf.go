package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// extractPDF yields one fragment per page carrying the zero-based page
// number, so pages can be cited 1-based downstream. Empty pages are skipped.
func extractPDF(content []byte) ([]models.RawFragment, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	numPages := r.NumPage()
	fragments := make([]models.RawFragment, 0, numPages)
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i+1, err)
		}
		if text == "" {
			continue
		}
		pageNum := i
		fragments = append(fragments, models.RawFragment{Text: text, Page: &pageNum})
	}
	return fragments, nil
}
