// Package mapping defines the declarative field-mapping rule set that
// drives extraction: which section (or header row, or pattern within a
// section) each output field is copied from, and how multi-line content
// is joined. The default set carries the 36 PO fields; rule files can
// swap it or extend it without code changes.
package mapping

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/dgallion1/pogen/internal/section"
)

// Kind selects how a rule resolves its value.
type Kind string

const (
	// KindSection copies a section's body (optionally with all
	// descendants) from the tree.
	KindSection Kind = "section"
	// KindHeader copies a MOM header value (MOM NO, DATE, SUBJECT).
	KindHeader Kind = "header"
	// KindPattern applies a regexp to a resolved section's content.
	KindPattern Kind = "pattern"
	// KindCompose derives the value from another field plus a suffix.
	KindCompose Kind = "compose"
)

// Join selects how contributing lines and subsections are concatenated.
type Join string

const (
	JoinNewline Join = "newline" // body lines and descendant bodies, "\n"-joined
	JoinSpace   Join = "space"   // single line, " "-joined
	JoinLabeled Join = "labeled" // descendant title + body blocks
)

// Header row keys recognized by KindHeader rules.
const (
	HeaderMOMNo   = "MOM NO"
	HeaderDate    = "DATE"
	HeaderSubject = "SUBJECT"
)

// Rule declares how one output field is derived.
type Rule struct {
	Field string `json:"field" yaml:"field"`
	Kind  Kind   `json:"kind" yaml:"kind"`

	// KindSection / KindPattern: dotted section path, e.g. "2.1".
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
	// KindSection: include all descendants (document order).
	Subtree bool `json:"subtree,omitempty" yaml:"subtree,omitempty"`
	// Join policy; empty means newline.
	Join Join `json:"join,omitempty" yaml:"join,omitempty"`

	// KindHeader: header key.
	Header string `json:"header,omitempty" yaml:"header,omitempty"`

	// KindPattern: regexp and capture group (0 = whole match).
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Group   int    `json:"group,omitempty" yaml:"group,omitempty"`

	// KindCompose: source field name and literal suffix.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern. Valid only after Validate.
func (r *Rule) Regexp() *regexp.Regexp { return r.re }

// RuleSet is an ordered, validated collection of rules.
type RuleSet struct {
	rules  []*Rule
	byName map[string]*Rule
}

// NewRuleSet validates rules and returns the set. Compose rules are
// ordered after their source so single-pass resolution works.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{byName: make(map[string]*Rule, len(rules))}
	for i := range rules {
		r := rules[i]
		if err := validate(&r); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Field, err)
		}
		if _, dup := rs.byName[r.Field]; dup {
			return nil, fmt.Errorf("duplicate field name %q", r.Field)
		}
		rs.rules = append(rs.rules, &r)
		rs.byName[r.Field] = &r
	}
	// Compose sources must exist.
	for _, r := range rs.rules {
		if r.Kind == KindCompose {
			src, ok := rs.byName[r.Source]
			if !ok {
				return nil, fmt.Errorf("rule %q: compose source %q not declared", r.Field, r.Source)
			}
			if src.Kind == KindCompose {
				return nil, fmt.Errorf("rule %q: compose source %q is itself composed", r.Field, r.Source)
			}
		}
	}
	return rs, nil
}

func validate(r *Rule) error {
	if r.Field == "" {
		return fmt.Errorf("missing field name")
	}
	if !fieldNameRe.MatchString(r.Field) {
		return fmt.Errorf("field name must match %s", fieldNameRe)
	}
	switch r.Join {
	case "", JoinNewline, JoinSpace, JoinLabeled:
	default:
		return fmt.Errorf("unknown join policy %q", r.Join)
	}
	switch r.Kind {
	case KindSection:
		if _, ok := section.ParseNumber(r.Section); !ok {
			return fmt.Errorf("invalid section path %q", r.Section)
		}
	case KindHeader:
		switch r.Header {
		case HeaderMOMNo, HeaderDate, HeaderSubject:
		default:
			return fmt.Errorf("unknown header key %q", r.Header)
		}
	case KindPattern:
		if _, ok := section.ParseNumber(r.Section); !ok {
			return fmt.Errorf("invalid section path %q", r.Section)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		if r.Group < 0 || r.Group > re.NumSubexp() {
			return fmt.Errorf("capture group %d out of range", r.Group)
		}
		r.re = re
	case KindCompose:
		if r.Source == "" {
			return fmt.Errorf("compose rule needs a source field")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}

var fieldNameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Rules returns the rules in declaration order.
func (rs *RuleSet) Rules() []*Rule { return rs.rules }

// Get returns the rule for a field name, or nil.
func (rs *RuleSet) Get(field string) *Rule { return rs.byName[field] }

// Len returns the number of declared fields.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// FieldNames returns the declared field names, sorted.
func (rs *RuleSet) FieldNames() []string {
	names := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		names = append(names, r.Field)
	}
	sort.Strings(names)
	return names
}
