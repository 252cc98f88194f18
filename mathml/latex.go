package mathml

import "strings"

// LaTeX commands the rendering collaborator cannot typeset; they are
// stripped from alttext titles.
var badCommands = []string{
	"\\cal", "\\text", "\\hbox", "\\nolimits", "\\mathop", "\\mathrmsl",
}

// Replacements applied after stripping, in order.
var replaceCommands = []struct{ old, new string }{
	{"\\tfrac", "\\frac"},
	{"scal", "\\mathrm{scal}"},
	{"  ", " "},
	{"'\\mathrm", "\\mathrm"}, // misplaced single quote
}

// CleanAltText rewrites a LaTeX alttext string into a form a renderer can
// typeset: newlines and percent signs become spaces, unsupported commands
// are removed, and the result is wrapped in math-mode delimiters.
func CleanAltText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "%", " ")
	for _, cmd := range badCommands {
		s = strings.ReplaceAll(s, cmd, "")
	}
	for _, r := range replaceCommands {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return "$" + s + "$"
}
