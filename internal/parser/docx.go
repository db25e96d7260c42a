package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/pogen/internal/momdoc"
)

// DOCXParser reads MOM tables from .docx files. This is the primary
// format: MOM documents are a single Word table with the section number
// in the first column.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*momdoc.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "pogen-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &momdoc.Document{SourceName: filename}

	for _, item := range doc.Document.Body.Items {
		tbl, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		for _, tr := range tbl.TableRows {
			var cells []string
			for _, tc := range tr.TableCells {
				cells = append(cells, cellText(tc))
			}
			if rowEmpty(cells) {
				continue
			}
			out.Rows = append(out.Rows, momdoc.Row{Cells: cells})
		}
	}

	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, momdoc.ErrNotMOM)
	}
	return out, nil
}

// cellText joins a cell's paragraphs with newlines.
func cellText(tc *docx.WTableCell) string {
	var buf strings.Builder
	for _, para := range tc.Paragraphs {
		t := paragraphText(para)
		if t == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(t)
	}
	return strings.TrimSpace(buf.String())
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
