package template

import (
	"reflect"
	"testing"

	"github.com/dgallion1/pogen/internal/extract"
)

func sampleFields() extract.FieldSet {
	return extract.FieldSet{
		"PO_NO":   "2024-001-A01",
		"PAYMENT": "Advance: 10%\nFinal: balance",
		"SUBJECT": "",
	}
}

func TestSubstitute_ReplacesKnownFields(t *testing.T) {
	eng := &Engine{Fields: sampleFields()}
	out, report := eng.SubstituteText("PO No: {{PO_NO}} / Terms: {{PAYMENT}}")

	want := "PO No: 2024-001-A01 / Terms: Advance: 10%\nFinal: balance"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if report.Replaced() != 2 {
		t.Errorf("expected 2 replacements, got %d", report.Replaced())
	}
	if unresolved := report.Unresolved(); len(unresolved) != 0 {
		t.Errorf("expected no unresolved placeholders, got %v", unresolved)
	}
}

func TestSubstitute_EmptyFieldStillResolves(t *testing.T) {
	eng := &Engine{Fields: sampleFields()}
	out, report := eng.SubstituteText("Subject: {{SUBJECT}}.")

	if out != "Subject: ." {
		t.Errorf("got %q", out)
	}
	// Declared-but-empty is a substitution, not an unresolved token.
	if len(report.Unresolved()) != 0 {
		t.Errorf("expected empty field to count as resolved, got %v", report.Unresolved())
	}
}

func TestSubstitute_FallbackKeep(t *testing.T) {
	eng := &Engine{Fields: sampleFields(), Fallback: FallbackKeep}
	out, report := eng.SubstituteText("Vendor: {{VENDOR_NAME}}")

	if out != "Vendor: {{VENDOR_NAME}}" {
		t.Errorf("expected token kept, got %q", out)
	}
	if got := report.Unresolved(); !reflect.DeepEqual(got, []string{"VENDOR_NAME"}) {
		t.Errorf("expected [VENDOR_NAME] unresolved, got %v", got)
	}
}

func TestSubstitute_FallbackEmpty(t *testing.T) {
	eng := &Engine{Fields: sampleFields(), Fallback: FallbackEmpty}
	out, _ := eng.SubstituteText("Vendor: {{VENDOR_NAME}}!")

	if out != "Vendor: !" {
		t.Errorf("expected token removed, got %q", out)
	}
}

func TestSubstitute_NoPlaceholders(t *testing.T) {
	eng := &Engine{Fields: sampleFields()}
	in := "Plain paragraph with {single} braces and {{lowercase}} noise."
	out, report := eng.SubstituteText(in)

	if out != in {
		t.Errorf("expected verbatim output, got %q", out)
	}
	if len(report.Replacements) != 0 {
		t.Errorf("expected no replacements, got %v", report.Replacements)
	}
}

func TestSubstitute_Idempotent(t *testing.T) {
	eng := &Engine{Fields: sampleFields()}
	once, _ := eng.SubstituteText("{{PO_NO}} / {{PAYMENT}}")
	twice, report := eng.SubstituteText(once)

	if twice != once {
		t.Errorf("second pass changed output: %q vs %q", twice, once)
	}
	if report.Replaced() != 0 {
		t.Errorf("expected nothing to replace on second pass, got %d", report.Replaced())
	}
}

func TestSubstitute_InputNotModified(t *testing.T) {
	runs := []string{"{{PO_NO}}"}
	eng := &Engine{Fields: sampleFields()}
	out, _ := eng.Substitute(runs)

	if runs[0] != "{{PO_NO}}" {
		t.Errorf("input slice was modified: %q", runs[0])
	}
	if out[0] != "2024-001-A01" {
		t.Errorf("got %q", out[0])
	}
}

func TestSubstitute_RepeatedToken(t *testing.T) {
	eng := &Engine{Fields: sampleFields()}
	_, report := eng.SubstituteText("{{PO_NO}} {{PO_NO}} {{PO_NO}}")

	if report.Replaced() != 3 {
		t.Errorf("expected 3 replacements, got %d", report.Replaced())
	}
	if len(report.Replacements) != 1 {
		t.Errorf("expected one distinct placeholder, got %d", len(report.Replacements))
	}
}

func TestPlaceholders_SortedDistinct(t *testing.T) {
	runs := []string{
		"{{PO_NO}} and {{PAYMENT}}",
		"{{PAYMENT}} again, plus {{ADVANCE_PAYMENT}}",
	}
	got := Placeholders(runs)
	want := []string{"ADVANCE_PAYMENT", "PAYMENT", "PO_NO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPlaceholders_IgnoresMalformedTokens(t *testing.T) {
	got := Placeholders([]string{"{{lower}} {{1NUM}} {{OK_1}} {{}}"})
	want := []string{"OK_1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
