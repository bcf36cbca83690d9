package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// extractExcel yields one fragment per non-empty row, prefixed with the sheet
// name so tabular content keeps some context after chunking.
func extractExcel(content []byte) ([]models.RawFragment, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var fragments []models.RawFragment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			text := strings.TrimSpace(strings.Join(row, "\t"))
			if text == "" {
				continue
			}
			fragments = append(fragments, models.RawFragment{Text: sheet + ": " + text})
		}
	}
	return fragments, nil
}
