// Package unparse renders Python syntax trees back to canonical source text.
//
// The rendering is deterministic: two trees that differ only in formatting,
// redundant parentheses or comments render to the same string. That makes the
// output usable as an equivalence key between a fragment and a reparse of its
// candidate source.
package unparse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

var (
	// ErrNotStandalone is returned for nodes that have no source form on
	// their own, such as a bare operator or a comprehension clause.
	ErrNotStandalone = errors.New("node has no standalone rendering")

	// ErrMalformed is returned for nodes whose slots do not match their kind.
	ErrMalformed = errors.New("malformed node")
)

const indentUnit = "    "

// Render returns the canonical text of a node or a block of statements.
// Statements in a block or module are joined by newlines and nested blocks
// are indented by four spaces. Expressions render as they would in an
// expression statement.
func Render(frag pyast.Fragment) (string, error) {
	switch f := frag.(type) {
	case *pyast.Node:
		if f == nil {
			return "", fmt.Errorf("%w: nil node", ErrMalformed)
		}
		return renderNode(f)
	case pyast.Block:
		return renderBlock(f)
	default:
		return "", fmt.Errorf("%w: unknown fragment %T", ErrMalformed, frag)
	}
}

// Standalone reports whether n can be rendered on its own and records a source
// position. Only standalone nodes take part in extent resolution.
func Standalone(n *pyast.Node) (bool, error) {
	if !n.HasPos() {
		return false, nil
	}

	if _, err := renderNode(n); err != nil {
		if errors.Is(err, ErrNotStandalone) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func renderNode(n *pyast.Node) (string, error) {
	switch {
	case n.Kind == pyast.Module:
		return renderBlock(n.Body)
	case n.Kind.IsStmt(), n.Kind == pyast.ExceptHandler:
		var w writer
		if err := w.stmt(n, 0); err != nil {
			return "", err
		}
		return w.String(), nil
	case n.Kind.IsExpr():
		return expr(n, precYield)
	case n.Kind == pyast.Arg:
		return arg(n)
	default:
		return "", fmt.Errorf("%w: %s", ErrNotStandalone, n.Kind)
	}
}

func renderBlock(stmts []*pyast.Node) (string, error) {
	var w writer
	for _, s := range stmts {
		if s == nil {
			return "", fmt.Errorf("%w: nil statement", ErrMalformed)
		}
		if err := w.stmt(s, 0); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

// writer accumulates statement lines.
type writer struct {
	lines []string
}

func (w *writer) line(depth int, text string) {
	w.lines = append(w.lines, strings.Repeat(indentUnit, depth)+text)
}

func (w *writer) String() string {
	return strings.Join(w.lines, "\n")
}

func malformed(n *pyast.Node, format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d:%d: %s", ErrMalformed, n.Kind, n.Line, n.Col, fmt.Sprintf(format, args...))
}

// slots checks that n carries at least count argument slots.
func slots(n *pyast.Node, count int) error {
	if len(n.Args) < count {
		return malformed(n, "want %d slots, have %d", count, len(n.Args))
	}
	return nil
}

// required checks that the listed slots are present.
func required(n *pyast.Node, idx ...int) error {
	for _, i := range idx {
		if n.Arg(i) == nil {
			return malformed(n, "slot %d is empty", i)
		}
	}
	return nil
}
