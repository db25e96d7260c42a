package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/pogen/internal/momdoc"
)

// HTMLParser reads MOM tables from HTML exports (e.g. "save as web
// page" from Word). Every <tr> in the document becomes a row.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*momdoc.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &momdoc.Document{SourceName: filename}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "tr":
				cells := rowCells(n)
				if !rowEmpty(cells) {
					out.Rows = append(out.Rows, momdoc.Row{Cells: cells})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, momdoc.ErrNotMOM)
	}
	return out, nil
}

// rowCells collects the text of each <td>/<th> under a <tr>.
func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
