package extract

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/pogen/internal/mapping"
	"github.com/dgallion1/pogen/internal/momdoc"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func row(cells ...string) momdoc.Row {
	return momdoc.Row{Cells: cells}
}

// sampleMOM is a small but complete MOM document touching every rule
// kind: header rows, numbered sections with children, pattern sources.
func sampleMOM() *momdoc.Document {
	return &momdoc.Document{
		SourceName: "MOM-2024-001.docx",
		Rows: []momdoc.Row{
			row("MOM NO", "MOM-2024-001", "DATE", "January 5, 2024"),
			row("SUBJECT", "Slurry Pump Package"),
			row("1", "Inquiry per MR-2024-117 dated December 12th, 2023 / Slurry Pumps"),
			row("2", "Payment Terms"),
			row("2.1", "Advance: 10%"),
			row("2.2", "Final: balance"),
			row("3", "Warranty: 24 months from startup"),
			row("8", "FCA Incheon port, within 16 weeks after PO"),
		},
	}
}

func TestExtract_Scenario_PaymentSubtree(t *testing.T) {
	result, err := New(nil, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := "Payment Terms\nAdvance: 10%\nFinal: balance"
	if got := result.Fields.Get("PAYMENT_FULL"); got != want {
		t.Errorf("PAYMENT_FULL = %q, want %q", got, want)
	}
	// The non-subtree variant stops at the parent body.
	if got := result.Fields.Get("PAYMENT"); got != "Payment Terms" {
		t.Errorf("PAYMENT = %q, want %q", got, "Payment Terms")
	}
	if got := result.Fields.Get("ADVANCE_PAYMENT"); got != "Advance: 10%" {
		t.Errorf("ADVANCE_PAYMENT = %q, want %q", got, "Advance: 10%")
	}
}

func TestExtract_MissingSectionYieldsEmpty(t *testing.T) {
	result, err := New(nil, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// Section 10 is absent from the sample; no error, empty value.
	if got := result.Fields.Get("SPECIAL_NOTE"); got != "" {
		t.Errorf("SPECIAL_NOTE = %q, want empty", got)
	}
}

func TestExtract_AllDeclaredFieldsPresent(t *testing.T) {
	rules := mapping.Defaults()
	result, err := New(rules, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Fields) != rules.Len() {
		t.Fatalf("expected %d fields, got %d", rules.Len(), len(result.Fields))
	}
	for _, name := range rules.FieldNames() {
		if _, ok := result.Fields[name]; !ok {
			t.Errorf("field %q missing from result", name)
		}
	}
}

func TestExtract_HeaderFields(t *testing.T) {
	result, err := New(nil, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("MOM_NO"); got != "2024-001" {
		t.Errorf("MOM_NO = %q, want %q", got, "2024-001")
	}
	if got := result.Fields.Get("MOM_DATE"); got != "January 5, 2024" {
		t.Errorf("MOM_DATE = %q, want %q", got, "January 5, 2024")
	}
	if got := result.Fields.Get("SUBJECT"); got != "Slurry Pump Package" {
		t.Errorf("SUBJECT = %q, want %q", got, "Slurry Pump Package")
	}
}

func TestExtract_ComposePONo(t *testing.T) {
	result, err := New(nil, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("PO_NO"); got != "2024-001-A01" {
		t.Errorf("PO_NO = %q, want %q", got, "2024-001-A01")
	}
}

func TestExtract_ComposeEmptyWhenSourceEmpty(t *testing.T) {
	doc := &momdoc.Document{
		SourceName: "headless.docx",
		Rows: []momdoc.Row{
			row("1", "Inquiry only"),
		},
	}
	result, err := New(nil, quietLogger()).Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("PO_NO"); got != "" {
		t.Errorf("PO_NO = %q, want empty when MOM_NO is empty", got)
	}
}

func TestExtract_PatternFields(t *testing.T) {
	result, err := New(nil, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("MR_NO"); got != "MR-2024-117" {
		t.Errorf("MR_NO = %q, want %q", got, "MR-2024-117")
	}
	if got := result.Fields.Get("MR_DATE"); got != "December 12th, 2023" {
		t.Errorf("MR_DATE = %q, want %q", got, "December 12th, 2023")
	}
	if got := result.Fields.Get("ITEM_DESC"); got != "Slurry Pumps" {
		t.Errorf("ITEM_DESC = %q, want %q", got, "Slurry Pumps")
	}
	if got := result.Fields.Get("INCOTERMS"); !strings.HasPrefix(got, "FCA Incheon port") {
		t.Errorf("INCOTERMS = %q, want FCA clause", got)
	}
}

func TestExtract_PatternNoMatchYieldsEmpty(t *testing.T) {
	doc := &momdoc.Document{
		SourceName: "no-mr.docx",
		Rows: []momdoc.Row{
			row("1", "Inquiry with no reference number"),
		},
	}
	result, err := New(nil, quietLogger()).Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("MR_NO"); got != "" {
		t.Errorf("MR_NO = %q, want empty", got)
	}
}

func TestExtract_NotMOM_NoRows(t *testing.T) {
	doc := &momdoc.Document{SourceName: "empty.docx"}
	_, err := New(nil, quietLogger()).Extract(doc)
	if !errors.Is(err, momdoc.ErrNotMOM) {
		t.Errorf("expected ErrNotMOM, got %v", err)
	}
}

func TestExtract_NotMOM_NoHeaderNoSections(t *testing.T) {
	doc := &momdoc.Document{
		SourceName: "prose.docx",
		Rows: []momdoc.Row{
			row("", "Random prose in a table"),
			row("Notes", "More prose"),
		},
	}
	_, err := New(nil, quietLogger()).Extract(doc)
	if !errors.Is(err, momdoc.ErrNotMOM) {
		t.Errorf("expected ErrNotMOM, got %v", err)
	}
}

func TestExtract_HeaderOnlyIsEnough(t *testing.T) {
	doc := &momdoc.Document{
		SourceName: "header-only.docx",
		Rows: []momdoc.Row{
			row("MOM NO", "MOM-2024-009"),
		},
	}
	result, err := New(nil, quietLogger()).Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("MOM_NO"); got != "2024-009" {
		t.Errorf("MOM_NO = %q, want %q", got, "2024-009")
	}
}

func TestParseHeader_SpacerCells(t *testing.T) {
	rows := []momdoc.Row{
		row("MOM NO", "", "MOM-2024-002", "DATE", "March 1, 2024"),
		row("SUBJECT", "", "Heat Exchanger"),
	}
	h := ParseHeader(rows)
	if h.MOMNo != "2024-002" {
		t.Errorf("MOMNo = %q, want %q", h.MOMNo, "2024-002")
	}
	if h.Date != "March 1, 2024" {
		t.Errorf("Date = %q, want %q", h.Date, "March 1, 2024")
	}
	if h.Subject != "Heat Exchanger" {
		t.Errorf("Subject = %q, want %q", h.Subject, "Heat Exchanger")
	}
}

func TestParseHeader_BlankMOMNumberCell(t *testing.T) {
	rows := []momdoc.Row{
		row("MOM NO", "", "DATE", "January 5, 2024"),
	}
	h := ParseHeader(rows)
	if h.MOMNo != "" {
		t.Errorf("MOMNo = %q, want empty for a blank number cell", h.MOMNo)
	}
	if h.Date != "January 5, 2024" {
		t.Errorf("Date = %q, want %q", h.Date, "January 5, 2024")
	}
}

func TestExtract_BlankMOMNumberComposesNothing(t *testing.T) {
	doc := &momdoc.Document{
		SourceName: "blank-no.docx",
		Rows: []momdoc.Row{
			row("MOM NO", "", "DATE", "January 5, 2024"),
			row("1", "Inquiry"),
		},
	}
	result, err := New(nil, quietLogger()).Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Fields.Get("PO_NO"); got != "" {
		t.Errorf("PO_NO = %q, want empty when the MOM number cell is blank", got)
	}
}

func TestExtract_LabeledJoin(t *testing.T) {
	rules, err := mapping.NewRuleSet([]mapping.Rule{
		{Field: "PAYMENT_BLOCKS", Kind: mapping.KindSection, Section: "2", Subtree: true, Join: mapping.JoinLabeled},
	})
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	result, err := New(rules, quietLogger()).Extract(sampleMOM())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got := result.Fields.Get("PAYMENT_BLOCKS")
	if !strings.Contains(got, "Advance\nAdvance: 10%") {
		t.Errorf("expected labeled child block, got %q", got)
	}
}
