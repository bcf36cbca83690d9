package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// extractPlain validates UTF-8 (replacing invalid sequences) and yields one
// fragment per blank-line-separated paragraph.
func extractPlain(content []byte) ([]models.RawFragment, error) {
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	var fragments []models.RawFragment
	for _, para := range blankLines.Split(text, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		fragments = append(fragments, models.RawFragment{Text: para})
	}
	return fragments, nil
}
