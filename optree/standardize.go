package optree

import (
	"unicode"
	"unicode/utf8"
)

// Code points that look like variables but name constants and must keep
// their identity through standardization.
var commonConstants = map[rune]struct{}{
	0x03C0: {}, // pi
}

// IsVariable reports whether a leaf label is a variable: exactly one code
// point, alphabetic, and not a known constant.
func IsVariable(name string) bool {
	if utf8.RuneCountInString(name) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(r) {
		return false
	}
	_, constant := commonConstants[r]
	return !constant
}

// Standardize returns a copy of the graph with variable leaves renamed to
// canonical sequential names a, b, c, ... assigned on first occurrence in
// topological order. Repeated occurrences of the same variable reuse the
// prior substitution. Topology and non-variable labels are untouched.
func Standardize(g *Graph) *Graph {
	varNodes := make(map[int64]struct{})
	for _, id := range g.Nodes() {
		if g.OutDegree(id) == 0 && IsVariable(g.Data(id)) {
			varNodes[id] = struct{}{}
		}
	}

	s := g.Clone()
	substitutions := make(map[string]string)
	next := 'a'
	for _, id := range g.TopoSort() {
		if _, ok := varNodes[id]; !ok {
			continue
		}
		name := g.Data(id)
		sub, seen := substitutions[name]
		if !seen {
			sub = string(next)
			substitutions[name] = sub
			next++
		}
		s.data[id] = sub
	}
	return s
}
