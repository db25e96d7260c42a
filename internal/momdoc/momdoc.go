package momdoc

import "errors"

// ErrNotMOM reports that the input does not look like a MOM document at
// all: either the container yields no table rows, or the rows carry
// neither a MOM header nor a single numbered section. Per-field misses
// are not errors; this is the only whole-document failure.
var ErrNotMOM = errors.New("document does not contain a recognizable MOM table")

// Row is one table row from the source document. Cell 0 holds the
// section number text (possibly empty), cells 1+ hold content.
type Row struct {
	Cells []string
}

// Number returns the section-number cell, or "" for a short row.
func (r Row) Number() string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0]
}

// Content returns the first non-empty content cell after the number
// column. MOM tables occasionally carry empty spacer cells between the
// number and the clause text.
func (r Row) Content() string {
	for _, c := range r.Cells[min(1, len(r.Cells)):] {
		if c != "" {
			return c
		}
	}
	return ""
}

// Document is a source MOM document reduced to its table rows.
type Document struct {
	SourceName string // Original filename (for logs and history)
	Rows       []Row  // Table rows in document order
}

// Header holds the MOM header fields parsed from the rows above the
// numbered sections.
type Header struct {
	MOMNo   string // "MOM NO" value with any "MOM-" prefix stripped
	Date    string // "DATE" value
	Subject string // "SUBJECT" value
}

// Empty reports whether no header row was found.
func (h Header) Empty() bool {
	return h.MOMNo == "" && h.Date == "" && h.Subject == ""
}
