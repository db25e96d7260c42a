package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/pogen/internal/momdoc"
)

// CSVParser reads MOM rows from a CSV export: column 0 is the section
// number column, the remaining columns are content.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*momdoc.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := &momdoc.Document{SourceName: filename}
	for _, record := range records {
		if rowEmpty(record) {
			continue
		}
		out.Rows = append(out.Rows, momdoc.Row{Cells: record})
	}

	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, momdoc.ErrNotMOM)
	}
	return out, nil
}
