package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/pogen/internal/momdoc"
)

func TestTextParser_NumberedLines(t *testing.T) {
	input := `MOM NO	MOM-2024-001	DATE	January 5, 2024
1 Inquiry per MR-2024-117
2 Payment Terms
2.1 Advance: 10%
net 30 days
`
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "mom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(doc.Rows))
	}

	// Tab-separated header keeps its columns.
	want := []string{"MOM NO", "MOM-2024-001", "DATE", "January 5, 2024"}
	if !reflect.DeepEqual(doc.Rows[0].Cells, want) {
		t.Errorf("header row = %v, want %v", doc.Rows[0].Cells, want)
	}

	// Leading dotted number splits into number and content cells.
	if doc.Rows[3].Number() != "2.1" || doc.Rows[3].Content() != "Advance: 10%" {
		t.Errorf("unexpected numbered row: %v", doc.Rows[3].Cells)
	}

	// Plain prose becomes a continuation row.
	if doc.Rows[4].Number() != "" || doc.Rows[4].Content() != "net 30 days" {
		t.Errorf("unexpected continuation row: %v", doc.Rows[4].Cells)
	}
}

func TestTextParser_NumberWithTrailingDot(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader("2.1. Advance payment\n"), "mom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Rows[0].Number() != "2.1" {
		t.Errorf("expected number 2.1, got %q", doc.Rows[0].Number())
	}
}

func TestTextParser_SkipsBlankLines(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader("1 Inquiry\n\n\n2 Payment\n"), "mom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(doc.Rows))
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	_, err := (&TextParser{}).Parse(strings.NewReader("  \n \n"), "empty.txt")
	if !errors.Is(err, momdoc.ErrNotMOM) {
		t.Errorf("expected ErrNotMOM, got %v", err)
	}
}

func TestForFile_Dispatch(t *testing.T) {
	cases := []struct {
		name string
		want any
	}{
		{"mom.docx", &DOCXParser{}},
		{"mom.HTML", &HTMLParser{}},
		{"mom.md", &MarkdownParser{}},
		{"mom.markdown", &MarkdownParser{}},
		{"mom.csv", &CSVParser{}},
		{"mom.txt", &TextParser{}},
		{"mom.pdf", &PDFParser{}},
	}
	for _, c := range cases {
		p, err := ForFile(c.name)
		if err != nil {
			t.Errorf("ForFile(%q): %v", c.name, err)
			continue
		}
		if reflect.TypeOf(p) != reflect.TypeOf(c.want) {
			t.Errorf("ForFile(%q) = %T, want %T", c.name, p, c.want)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	if _, err := ForFile("mom.xlsx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.docx") || !IsSupportedExtension("b.PDF") {
		t.Error("expected docx and pdf to be supported")
	}
	// Every extension ForFile dispatches must also pass the upload check.
	if !IsSupportedExtension("c.markdown") {
		t.Error("expected markdown to be supported")
	}
	if IsSupportedExtension("c.xlsx") {
		t.Error("expected xlsx to be unsupported")
	}
}
