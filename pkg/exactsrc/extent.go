package exactsrc

import (
	"fmt"
	"strconv"
	"strings"
)

// Extent is the recovered source of a fragment.
type Extent struct {
	// Text is the matched source, normalised as the fragment requires:
	// dedented for statements, re-wrapped for comprehensions.
	Text string
	// Start and End are the linear offsets of the matched slice.
	Start int
	End   int
	// Line is the line of the fragment's first positioned node.
	Line int
	// Approximate is set when no candidate matched and the text is a guess.
	Approximate bool
}

// Numbered returns Text with each line prefixed by its source line number.
func (e Extent) Numbered() string {
	lines := strings.Split(e.Text, "\n")
	width := len(strconv.Itoa(e.Line + len(lines) - 1))

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d | %s", width, e.Line+i, line)
	}
	return b.String()
}
