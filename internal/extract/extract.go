// Package extract maps a parsed MOM document onto the flat field set
// used for placeholder substitution. Resolution is rule-driven: every
// declared field is always present in the result, and a section missing
// from a particular document yields an empty value rather than an error.
package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/pogen/internal/mapping"
	"github.com/dgallion1/pogen/internal/momdoc"
	"github.com/dgallion1/pogen/internal/section"
)

// FieldSet is the flat extraction output: field name to resolved text.
// Every declared field name is present; absent sections resolve to "".
type FieldSet map[string]string

// Get returns the value for a field, or "" when not declared.
func (f FieldSet) Get(name string) string { return f[name] }

// NonEmpty returns the number of fields with a non-empty value.
func (f FieldSet) NonEmpty() int {
	n := 0
	for _, v := range f {
		if v != "" {
			n++
		}
	}
	return n
}

// Result carries everything extraction produces from one document.
type Result struct {
	Fields FieldSet
	Header momdoc.Header
	Tree   *section.Tree
}

// Extractor resolves a rule set against MOM documents.
type Extractor struct {
	rules *mapping.RuleSet
	log   *slog.Logger
}

// New creates an extractor. A nil rule set means mapping.Defaults().
func New(rules *mapping.RuleSet, log *slog.Logger) *Extractor {
	if rules == nil {
		rules = mapping.Defaults()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{rules: rules, log: log}
}

// Rules returns the extractor's rule set.
func (e *Extractor) Rules() *mapping.RuleSet { return e.rules }

// Extract builds the section tree and resolves every rule. It fails
// only when the document as a whole does not look like a MOM: rows that
// carry neither a header row nor a single numbered section.
func (e *Extractor) Extract(doc *momdoc.Document) (*Result, error) {
	if len(doc.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.SourceName, momdoc.ErrNotMOM)
	}

	header := ParseHeader(doc.Rows)
	tree := section.Build(doc.Rows)

	if tree.Sections() == 0 && header.Empty() {
		return nil, fmt.Errorf("%s: %w", doc.SourceName, momdoc.ErrNotMOM)
	}
	for _, w := range tree.Warnings {
		e.log.Warn("structural ambiguity", "source", doc.SourceName, "detail", w)
	}

	fields := make(FieldSet, e.rules.Len())

	// Two passes: compose rules read other fields' resolved values.
	for _, r := range e.rules.Rules() {
		if r.Kind != mapping.KindCompose {
			fields[r.Field] = resolve(r, tree, header)
		}
	}
	for _, r := range e.rules.Rules() {
		if r.Kind == mapping.KindCompose {
			fields[r.Field] = compose(r, fields)
		}
	}

	return &Result{Fields: fields, Header: header, Tree: tree}, nil
}

func resolve(r *mapping.Rule, tree *section.Tree, header momdoc.Header) string {
	switch r.Kind {
	case mapping.KindHeader:
		switch r.Header {
		case mapping.HeaderMOMNo:
			return header.MOMNo
		case mapping.HeaderDate:
			return header.Date
		case mapping.HeaderSubject:
			return header.Subject
		}
	case mapping.KindSection:
		node := tree.Lookup(r.Section)
		if node == nil {
			return ""
		}
		return joinSection(node, r.Subtree, r.Join)
	case mapping.KindPattern:
		node := tree.Lookup(r.Section)
		if node == nil {
			return ""
		}
		content := joinSection(node, false, mapping.JoinSpace)
		m := r.Regexp().FindStringSubmatch(content)
		if m == nil || r.Group >= len(m) {
			return ""
		}
		return strings.TrimSpace(m[r.Group])
	}
	return ""
}

func compose(r *mapping.Rule, fields FieldSet) string {
	src := fields[r.Source]
	if src == "" {
		return ""
	}
	return src + r.Suffix
}

// joinSection renders a node per the join policy. With subtree set, the
// node's own body is followed by each descendant in document order.
func joinSection(node *section.Node, subtree bool, join mapping.Join) string {
	sep := "\n"
	if join == mapping.JoinSpace {
		sep = " "
	}

	if !subtree {
		return node.BodyText(sep)
	}

	parts := make([]string, 0, 1+len(node.Children))
	if b := node.BodyText(sep); b != "" {
		parts = append(parts, b)
	}
	for _, child := range node.Children {
		child.Walk(func(n *section.Node) {
			switch {
			case join == mapping.JoinLabeled:
				block := n.Title + "\n" + n.BodyText("\n")
				parts = append(parts, strings.TrimSpace(block))
			default:
				if b := n.BodyText(sep); b != "" {
					parts = append(parts, b)
				}
			}
		})
	}
	return strings.Join(parts, sep)
}

// ParseHeader scans rows for the MOM header block: a "MOM NO" row that
// also carries the meeting date, and a "SUBJECT" row. The "MOM-" prefix
// on the number is dropped, matching the PO numbering convention.
func ParseHeader(rows []momdoc.Row) momdoc.Header {
	var h momdoc.Header
	for _, row := range rows {
		if len(row.Cells) == 0 {
			continue
		}
		switch strings.TrimSpace(row.Cells[0]) {
		case mapping.HeaderMOMNo:
			// Skip spacer cells, but stop at the DATE label: a blank
			// number cell must yield "", not the next header's text.
			for _, cell := range row.Cells[1:] {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if cell != mapping.HeaderDate {
					h.MOMNo = strings.TrimPrefix(cell, "MOM-")
				}
				break
			}
			for i, cell := range row.Cells {
				if strings.TrimSpace(cell) == mapping.HeaderDate && i+1 < len(row.Cells) {
					h.Date = strings.TrimSpace(row.Cells[i+1])
					break
				}
			}
		case mapping.HeaderSubject:
			h.Subject = strings.TrimSpace(row.Content())
		}
	}
	return h
}
