// Package template substitutes {{FIELD_NAME}} placeholders in template
// text runs. It is pure text-in/text-out; container formats (DOCX) are
// handled by the docxfile package on top of it.
package template

import (
	"regexp"
	"sort"

	"github.com/dgallion1/pogen/internal/extract"
)

// placeholderRe matches {{NAME}} tokens. Field names are upper-case
// with digits and underscores, same alphabet the mapping package
// enforces.
var placeholderRe = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// Fallback selects what happens to a placeholder whose field is
// missing from the field set (not merely empty).
type Fallback int

const (
	// FallbackKeep leaves the token in place so an unresolved
	// placeholder stays visible for manual review. Default.
	FallbackKeep Fallback = iota
	// FallbackEmpty removes the token.
	FallbackEmpty
)

// Replacement records one placeholder's substitution for reporting.
type Replacement struct {
	Placeholder string `json:"placeholder"`
	Count       int    `json:"count"`
	Resolved    bool   `json:"resolved"`
}

// Report summarizes a substitution pass.
type Report struct {
	Replacements []Replacement `json:"replacements"`
}

// Replaced returns the total count of substituted tokens.
func (r Report) Replaced() int {
	n := 0
	for _, rep := range r.Replacements {
		if rep.Resolved {
			n += rep.Count
		}
	}
	return n
}

// Unresolved returns the names of placeholders with no matching field.
func (r Report) Unresolved() []string {
	var names []string
	for _, rep := range r.Replacements {
		if !rep.Resolved {
			names = append(names, rep.Placeholder)
		}
	}
	return names
}

// Engine substitutes one field set into template text.
type Engine struct {
	Fields   extract.FieldSet
	Fallback Fallback
}

// Substitute replaces every placeholder in the given text runs. The
// input is not modified; a template without placeholders comes back
// verbatim. Substitution is idempotent: field values are inserted as
// plain text, so a second pass finds nothing to replace unless a field
// value itself spells a placeholder.
func (e *Engine) Substitute(runs []string) ([]string, Report) {
	out := make([]string, len(runs))
	counts := make(map[string]int)
	for i, run := range runs {
		out[i] = placeholderRe.ReplaceAllStringFunc(run, func(tok string) string {
			name := tok[2 : len(tok)-2]
			counts[name]++
			value, ok := e.Fields[name]
			if !ok {
				if e.Fallback == FallbackEmpty {
					return ""
				}
				return tok
			}
			return value
		})
	}

	report := Report{}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, ok := e.Fields[name]
		report.Replacements = append(report.Replacements, Replacement{
			Placeholder: name,
			Count:       counts[name],
			Resolved:    ok,
		})
	}
	return out, report
}

// SubstituteText is Substitute for a single text blob.
func (e *Engine) SubstituteText(text string) (string, Report) {
	out, report := e.Substitute([]string{text})
	return out[0], report
}

// Placeholders lists the distinct placeholder names in the runs,
// sorted.
func Placeholders(runs []string) []string {
	seen := make(map[string]bool)
	for _, run := range runs {
		for _, m := range placeholderRe.FindAllStringSubmatch(run, -1) {
			seen[m[1]] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
