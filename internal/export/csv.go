package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nao1215/onionharvest/internal/model"
)

// csvHeader is the fixed column order of the CSV export.
var csvHeader = []string{"text", "link", "tag", "source"}

// CSVWriter outputs session records as CSV rows.
// This format is designed for spreadsheets and ad-hoc analysis.
//
// Design decision: We use standard encoding/csv because it handles
// quoting and embedded newlines correctly, which record text frequently
// contains.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the session records as CSV with a header row.
// Sessions without records still produce the header so consumers can
// distinguish an empty crawl from a failed export.
func (w *CSVWriter) Write(session *model.Session) (int, error) {
	// Rows are staged in a buffer so a mid-record encoding failure
	// never leaves a half-written file behind.
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range session.Records {
		if err := cw.Write([]string{r.Text, r.Link, r.Tag, r.Source}); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv output: %w", err)
	}

	return w.output.Write(buf.Bytes())
}
