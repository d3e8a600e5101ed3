package runner

import (
	"errors"
	"fmt"

	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/pyast"
)

// ErrUnknownKind is returned for a kind name that is not a node kind.
var ErrUnknownKind = errors.New("unknown node kind")

// Selector picks the fragments of a tree to resolve.
type Selector struct {
	// Kinds restricts selection to these kinds. Empty selects statements.
	Kinds []pyast.Kind
	// Line restricts selection to nodes starting on this line of the input
	// file, when positive.
	Line int
	// Col restricts selection to nodes starting at this column offset, when
	// Line is positive and Col is not negative.
	Col int
}

// NewSelector builds the selector described by cfg.
func NewSelector(cfg *config.Config) (Selector, error) {
	sel := Selector{Line: cfg.Line, Col: cfg.Col}
	for _, name := range cfg.Resolve.Kinds {
		kind, ok := pyast.ParseKind(name)
		if !ok {
			return Selector{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
		}
		sel.Kinds = append(sel.Kinds, kind)
	}
	return sel, nil
}

// Select returns the selected nodes of root in tree order. lineOffset is
// added to node lines before comparing them with Line, so that a unit cut
// from a larger file is selected by its lines in that file.
func (s Selector) Select(root *pyast.Node, lineOffset int) []*pyast.Node {
	return pyast.FindAll(root, func(n *pyast.Node) bool {
		return s.matches(n, lineOffset)
	})
}

func (s Selector) matches(n *pyast.Node, lineOffset int) bool {
	if !n.HasPos() {
		return false
	}
	if s.Line > 0 {
		if n.Line+lineOffset != s.Line {
			return false
		}
		if s.Col >= 0 && n.Col != s.Col {
			return false
		}
	}

	if len(s.Kinds) == 0 {
		return n.Kind.IsStmt()
	}
	for _, kind := range s.Kinds {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
