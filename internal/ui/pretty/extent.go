package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/pyextent/pkg/runner"
)

// sourceIndent prefixes every line of a printed extent.
const sourceIndent = "    "

// FormatFileHeader formats the header line printed before a file's extents.
func (s *Styles) FormatFileHeader(path string, count int) string {
	word := "extents"
	if count == 1 {
		word = "extent"
	}
	return s.FilePath.Render(path) + " " + s.Dim.Render(fmt.Sprintf("(%d %s)", count, word))
}

// FormatRecord formats one resolved or failed fragment.
func (s *Styles) FormatRecord(label string, rec runner.Record) string {
	var b strings.Builder

	location := s.Location.Render(fmt.Sprintf("%s:%d:%d", label, rec.Line, rec.Col))
	b.WriteString("  " + location + "  " + s.Kind.Render(rec.Kind.String()))

	switch {
	case rec.Err != nil:
		b.WriteString("  " + s.Error.Render("unresolved") + "  " + rec.Err.Error() + "\n")
		return b.String()
	case rec.Approximate:
		b.WriteString("  " + s.Warning.Render("approximate"))
	}
	b.WriteString("\n")

	b.WriteString(s.FormatSource(rec.Text))
	return b.String()
}

// FormatSource indents extent text for display under its heading.
func (s *Styles) FormatSource(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(s.Gutter.Render(sourceIndent) + s.Source.Render(line) + "\n")
	}
	return b.String()
}

// FormatError formats a file or unit level error.
func (s *Styles) FormatError(label string, err error) string {
	return s.FilePath.Render(label) + ": " + s.Error.Render(fmt.Sprintf("error: %v", err)) + "\n"
}
