package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// extractDOCX yields one fragment per paragraph, preserving document order so
// heading paragraphs precede their body text. DOCX carries no page layout, so
// fragments have no page number.
func extractDOCX(content []byte) ([]models.RawFragment, error) {
	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("parse DOCX: %w", err)
	}
	var fragments []models.RawFragment
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		fragments = append(fragments, models.RawFragment{Text: text})
	}
	return fragments, nil
}

func paragraphText(para *docx.Paragraph) string {
	var b strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				b.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
