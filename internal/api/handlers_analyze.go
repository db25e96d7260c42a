package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pogen/internal/docxfile"
	"github.com/dgallion1/pogen/internal/momdoc"
	"github.com/dgallion1/pogen/internal/parser"
	"github.com/dgallion1/pogen/internal/section"
)

// outlineEntry is one section in the analyze response.
type outlineEntry struct {
	Number   string         `json:"number"`
	Title    string         `json:"title"`
	Body     string         `json:"body,omitempty"`
	Children []outlineEntry `json:"children,omitempty"`
}

// handleAnalyze extracts fields from an uploaded MOM synchronously and
// returns header, section outline and field values for inspection.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	momName, momData, err := s.formFile(r, "mom")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := parser.ForFile(momName)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	doc, err := p.Parse(bytes.NewReader(momData), momName)
	if err != nil {
		s.analyzeError(w, err)
		return
	}

	result, err := s.orchestrator.Extractor().Extract(doc)
	if err != nil {
		s.analyzeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"source":   momName,
		"header":   result.Header,
		"sections": outline(result.Tree.Root),
		"fields":   result.Fields,
		"warnings": result.Tree.Warnings,
	})
}

func (s *Server) analyzeError(w http.ResponseWriter, err error) {
	if errors.Is(err, momdoc.ErrNotMOM) {
		jsonError(w, "this does not look like a MOM document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func outline(root *section.Node) []outlineEntry {
	entries := make([]outlineEntry, 0, len(root.Children))
	for _, c := range root.Children {
		entries = append(entries, outlineEntry{
			Number:   c.Number.String(),
			Title:    c.Title,
			Body:     c.BodyText("\n"),
			Children: outline(c),
		})
	}
	return entries
}

// handlePlaceholders lists the placeholder tokens used by an uploaded
// PO template.
func (s *Server) handlePlaceholders(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	tmplName, tmplData, err := s.formFile(r, "template")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(filepath.Ext(tmplName), ".docx") {
		jsonError(w, "template must be a .docx file", http.StatusBadRequest)
		return
	}

	names, err := docxfile.Placeholders(tmplData)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	declared := make(map[string]bool)
	for _, f := range s.orchestrator.Extractor().Rules().FieldNames() {
		declared[f] = true
	}
	var unknown []string
	for _, n := range names {
		if !declared[n] {
			unknown = append(unknown, n)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"template":     tmplName,
		"placeholders": names,
		"unknown":      unknown,
	})
}
