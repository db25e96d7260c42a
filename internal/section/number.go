package section

import (
	"strconv"
	"strings"
)

// Number is a dotted section identifier, e.g. [2,1] for "2.1".
type Number []int

// ParseNumber parses a section-number cell. It accepts "2", "2.1",
// "2.1.3" with an optional trailing "." or ")" as seen in real MOM
// tables. The second return is false for anything else, which makes the
// row a continuation row.
func ParseNumber(s string) (Number, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".)")
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	n := make(Number, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return nil, false
		}
		n = append(n, v)
	}
	return n, true
}

func (n Number) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Depth is the number of components; "2.1" has depth 2.
func (n Number) Depth() int { return len(n) }

// Parent returns the number with the last component removed, or nil for
// a top-level number.
func (n Number) Parent() Number {
	if len(n) <= 1 {
		return nil
	}
	p := make(Number, len(n)-1)
	copy(p, n[:len(n)-1])
	return p
}

// Child reports whether c is n with exactly one extra component.
func (n Number) Child(c Number) bool {
	if len(c) != len(n)+1 {
		return false
	}
	for i, v := range n {
		if c[i] != v {
			return false
		}
	}
	return true
}
