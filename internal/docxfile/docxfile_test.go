package docxfile

import (
	"archive/zip"
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/pogen/internal/extract"
	"github.com/dgallion1/pogen/internal/template"
)

// buildDocx assembles a minimal docx zip around the given document.xml
// body, plus one sidecar entry that must survive repacking untouched.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	doc := `<?xml version="1.0"?><w:document><w:body>` + body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":   doc,
		"word/styles.xml":     "<w:styles/>",
		"[Content_Types].xml": "<Types/>",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open output zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("entry %s missing from output", name)
	return ""
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	tmpl := buildDocx(t, `<w:p><w:r><w:t>PO No: {{PO_NO}}</w:t></w:r></w:p>`)
	fields := extract.FieldSet{"PO_NO": "2024-001-A01"}

	out, report, err := Render(tmpl, fields, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := readEntry(t, out, "word/document.xml")
	if !strings.Contains(doc, "PO No: 2024-001-A01") {
		t.Errorf("expected substituted value in document.xml, got %q", doc)
	}
	if report.Replaced() != 1 {
		t.Errorf("expected 1 replacement, got %d", report.Replaced())
	}
}

func TestRender_HealsSplitRuns(t *testing.T) {
	// Word often fragments a token across runs mid-edit.
	body := `<w:p><w:r><w:t>{{PO_</w:t></w:r><w:r><w:t>NO}}</w:t></w:r></w:p>`
	tmpl := buildDocx(t, body)

	out, report, err := Render(tmpl, extract.FieldSet{"PO_NO": "2024-001-A01"}, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := readEntry(t, out, "word/document.xml")
	if !strings.Contains(doc, "2024-001-A01") {
		t.Errorf("expected split token healed and substituted, got %q", doc)
	}
	if report.Replaced() != 1 {
		t.Errorf("expected 1 replacement, got %d", report.Replaced())
	}
}

func TestRender_HealsDoublySplitToken(t *testing.T) {
	body := `<w:p><w:r><w:t>{{PAY</w:t></w:r><w:r><w:t>MEN</w:t></w:r><w:r><w:t>T}}</w:t></w:r></w:p>`
	tmpl := buildDocx(t, body)

	out, _, err := Render(tmpl, extract.FieldSet{"PAYMENT": "net 30"}, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc := readEntry(t, out, "word/document.xml"); !strings.Contains(doc, "net 30") {
		t.Errorf("expected doubly split token substituted, got %q", doc)
	}
}

func TestRender_EscapesFieldValues(t *testing.T) {
	tmpl := buildDocx(t, `<w:p><w:r><w:t>{{SPECIAL_NOTE}}</w:t></w:r></w:p>`)
	fields := extract.FieldSet{"SPECIAL_NOTE": `Pressure < 10 bar & temp > 40 "C"`}

	out, _, err := Render(tmpl, fields, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := readEntry(t, out, "word/document.xml")
	if !strings.Contains(doc, "Pressure &lt; 10 bar &amp; temp &gt; 40 &quot;C&quot;") {
		t.Errorf("expected escaped value, got %q", doc)
	}
}

func TestRender_NewlinesBecomeBreaks(t *testing.T) {
	tmpl := buildDocx(t, `<w:p><w:r><w:t>{{PAYMENT}}</w:t></w:r></w:p>`)
	fields := extract.FieldSet{"PAYMENT": "Advance: 10%\nFinal: balance"}

	out, _, err := Render(tmpl, fields, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := readEntry(t, out, "word/document.xml")
	want := `Advance: 10%</w:t><w:br/><w:t xml:space="preserve">Final: balance`
	if !strings.Contains(doc, want) {
		t.Errorf("expected break run between lines, got %q", doc)
	}
}

func TestRender_PreservesOtherEntries(t *testing.T) {
	tmpl := buildDocx(t, `<w:p><w:r><w:t>{{PO_NO}}</w:t></w:r></w:p>`)

	out, _, err := Render(tmpl, extract.FieldSet{"PO_NO": "X"}, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := readEntry(t, out, "word/styles.xml"); got != "<w:styles/>" {
		t.Errorf("styles.xml altered: %q", got)
	}
	if got := readEntry(t, out, "[Content_Types].xml"); got != "<Types/>" {
		t.Errorf("[Content_Types].xml altered: %q", got)
	}
}

func TestRender_UnresolvedReported(t *testing.T) {
	tmpl := buildDocx(t, `<w:p><w:r><w:t>{{VENDOR_NAME}}</w:t></w:r></w:p>`)

	out, report, err := Render(tmpl, extract.FieldSet{}, template.FallbackKeep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := report.Unresolved(); !reflect.DeepEqual(got, []string{"VENDOR_NAME"}) {
		t.Errorf("expected [VENDOR_NAME] unresolved, got %v", got)
	}
	if doc := readEntry(t, out, "word/document.xml"); !strings.Contains(doc, "{{VENDOR_NAME}}") {
		t.Errorf("expected token kept in output, got %q", doc)
	}
}

func TestRender_NotADocx(t *testing.T) {
	if _, _, err := Render([]byte("not a zip"), extract.FieldSet{}, template.FallbackKeep); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestRender_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	io.WriteString(w, "<w:styles/>")
	zw.Close()

	if _, _, err := Render(buf.Bytes(), extract.FieldSet{}, template.FallbackKeep); err == nil {
		t.Error("expected error when word/document.xml is missing")
	}
}

func TestPlaceholders_ListsSplitTokens(t *testing.T) {
	body := `<w:p><w:r><w:t>{{PO_NO}} {{PAY</w:t></w:r><w:r><w:t>MENT}}</w:t></w:r></w:p>`
	tmpl := buildDocx(t, body)

	got, err := Placeholders(tmpl)
	if err != nil {
		t.Fatalf("Placeholders: %v", err)
	}
	want := []string{"PAYMENT", "PO_NO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
