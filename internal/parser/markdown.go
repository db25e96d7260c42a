package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/pogen/internal/momdoc"
)

// MarkdownParser reads MOM tables from Markdown pipe tables, the shape
// produced by docx-to-markdown converters.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*momdoc.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	out := &momdoc.Document{SourceName: filename}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		tbl, ok := n.(*east.Table)
		if !ok {
			continue
		}
		for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
			switch row.(type) {
			case *east.TableHeader, *east.TableRow:
			default:
				continue
			}
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, cellString(cell, src))
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

// cellString gets the text content of a table cell node.
func cellString(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
