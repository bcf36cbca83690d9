// Package cli provides output formatting for the StudyRAG command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer to w in the given format. The answer text
// already carries the citation block, so text mode prints it as is.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}
	fmt.Fprintf(w, "%s\n", answer.Text)
	fmt.Fprintf(w, "\n(%d source chunks, %dms)\n", len(answer.Sources), answer.QueryMs)
	return nil
}

// WriteDocuments writes a document listing to w.
func WriteDocuments(w io.Writer, docs []*models.Document, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents ingested.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s  %s  (%s)\n", d.ID, filepath.Base(d.Source), d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
