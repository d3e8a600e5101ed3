package exactsrc

import (
	"strings"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// shape captures what the resolver needs to know about a fragment to turn a
// raw source slice into a candidate.
type shape struct {
	node   bool
	kind   pyast.Kind
	col    int
	elif   bool
	block  bool
	margin int
}

func shapeOf(frag pyast.Fragment) shape {
	switch f := frag.(type) {
	case *pyast.Node:
		return shape{node: true, kind: f.Kind, col: f.Col, elif: f.Elif}
	case pyast.Block:
		s := shape{block: true}
		if len(f) > 0 && f[0] != nil {
			s.margin = f[0].Col
		}
		return s
	}
	return shape{}
}

func (s shape) label() string {
	if s.block {
		return "block"
	}
	return s.kind.String()
}

// candidate is one normalised source slice.
type candidate struct {
	// text is what a match returns.
	text string
	// probe is what gets reparsed.
	probe string
	elif  bool
}

func (c candidate) result() string {
	if c.elif {
		return "elif " + c.text
	}
	return c.text
}

// key turns the canonical text of the fragment into the text its probe is
// expected to render as.
func (s shape) key(want string) string {
	if s.node && s.kind == pyast.Starred {
		return "(" + want + ",)"
	}
	return want
}

func (s shape) normalize(raw string) candidate {
	switch {
	case s.block:
		text := dedent(raw, s.margin)
		return candidate{text: text, probe: text}

	case s.kind.IsComprehension():
		text := wrapComprehension(s.kind, raw)
		return candidate{text: text, probe: "(" + text + ")"}

	case s.kind == pyast.Starred:
		return candidate{text: raw, probe: "(" + raw + ",)"}

	case s.kind.IsExpr():
		return candidate{text: raw, probe: "(" + raw + ")"}

	case s.kind == pyast.If && (s.elif || !startsWithIf(raw)):
		text := dedent(raw, max(s.col-elifMargin, 0))
		return candidate{text: text, probe: "if " + text, elif: true}

	case s.kind.IsStmt():
		text := dedent(raw, s.col)
		return candidate{text: text, probe: text}

	default:
		return candidate{text: raw, probe: raw}
	}
}

// wrapComprehension restores the delimiters of a comprehension, whose
// position is that of its element.
func wrapComprehension(kind pyast.Kind, raw string) string {
	switch kind {
	case pyast.ListComp:
		return "[" + raw + "]"
	case pyast.SetComp, pyast.DictComp:
		return "{" + raw + "}"
	default:
		return "(" + raw + ")"
	}
}

// dedent removes margin spaces from the start of every line but the first.
func dedent(text string, margin int) string {
	if margin <= 0 {
		return text
	}
	return strings.ReplaceAll(text, "\n"+strings.Repeat(" ", margin), "\n")
}

func startsWithIf(text string) bool {
	if !strings.HasPrefix(text, "if") {
		return false
	}
	if len(text) == 2 {
		return true
	}
	c := text[2]
	return c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9')
}
