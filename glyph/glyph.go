// Package glyph substitutes mathematical alphanumeric code points that most
// fonts cannot render with plain ASCII or Greek equivalents.
//
// MathML content markup produced from LaTeX articles encodes identifiers in
// the Unicode Mathematical Alphanumeric Symbols block (U+1D400..U+1D7FF).
// Leaf labels in an operator tree are passed through Sub so that downstream
// consumers (the standardizer, the renderer collaborator) only ever see
// renderable characters. Code points outside the mapped ranges pass through
// unchanged, so Sub is total and idempotent outside its ranges.
package glyph

// Inclusive source ranges and the base of the block they map onto.
var ranges = []struct {
	lo, hi, base rune
}{
	{0x1D434, 0x1D44D, 'A'},    // mathematical italic capital
	{0x1D44E, 0x1D467, 'a'},    // mathematical italic small
	{0x1D7BC, 0x1D7D4, 0x03B1}, // Greek
	{0x1D41A, 0x1D433, 'a'},    // mathematical bold small
	{0x1D49C, 0x1D4B5, 'A'},    // mathematical script capital
	{0x1D400, 0x1D419, 'A'},    // mathematical bold capital
}

// Sub returns a renderable substitute for r. Code points outside the mapped
// ranges are returned unchanged.
func Sub(r rune) rune {
	for _, m := range ranges {
		if r >= m.lo && r <= m.hi {
			return r - m.lo + m.base
		}
	}
	return r
}

// SubString applies Sub to every code point of s.
func SubString(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, Sub(r))
	}
	return string(out)
}
