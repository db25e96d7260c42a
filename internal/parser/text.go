package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/pogen/internal/momdoc"
)

// TextParser reads MOM rows from plain text, one row per line. A line
// beginning with a dotted section number ("2.1 Advance payment...")
// splits into number and content cells; anything else becomes a
// continuation row.
type TextParser struct{}

// leadingNumberRe matches a dotted section number at the start of a
// line, with an optional "." or ")" after it.
var leadingNumberRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+(.*)$`)

func (p *TextParser) Parse(r io.Reader, filename string) (*momdoc.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out := &momdoc.Document{SourceName: filename}
	for scanner.Scan() {
		row, ok := rowFromLine(scanner.Text())
		if ok {
			out.Rows = append(out.Rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, momdoc.ErrNotMOM)
	}
	return out, nil
}

// rowFromLine splits one text line into a MOM row. Tab-separated lines
// keep their columns; otherwise a leading dotted number is recognized.
func rowFromLine(line string) (momdoc.Row, bool) {
	if strings.TrimSpace(line) == "" {
		return momdoc.Row{}, false
	}

	if strings.Contains(line, "\t") {
		cells := strings.Split(line, "\t")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		return momdoc.Row{Cells: cells}, true
	}

	line = strings.TrimSpace(line)
	if m := leadingNumberRe.FindStringSubmatch(line); m != nil {
		return momdoc.Row{Cells: []string{m[1], strings.TrimSpace(m[2])}}, true
	}
	return momdoc.Row{Cells: []string{"", line}}, true
}
