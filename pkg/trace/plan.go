// Package trace lists the statements and expressions of a fragment together
// with their recovered source, in the order a tracer would report them.
package trace

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/pyextent/pkg/exactsrc"
	"github.com/yaklabco/pyextent/pkg/pyast"
)

// Locator recovers the source extent of a fragment.
type Locator interface {
	Locate(ctx context.Context, frag pyast.Fragment) (exactsrc.Extent, error)
}

// Entry is one traced node.
type Entry struct {
	Kind  pyast.Kind
	Line  int
	Col   int
	Depth int

	Text        string
	Approximate bool

	// Err is set when the node's source could not be recovered.
	Err error
}

// Plan walks frag and returns an entry for every statement and every
// expression that is neither a bare name nor a literal. Literals are not
// descended into. Names bound by assignment, deletion or loops are skipped,
// but the subscripts and attribute owners inside those targets are traced.
//
// A node whose source cannot be recovered still gets an entry, with Err set.
// Plan only fails when ctx is cancelled.
func Plan(ctx context.Context, loc Locator, frag pyast.Fragment) ([]Entry, error) {
	p := &planner{ctx: ctx, loc: loc}

	switch f := frag.(type) {
	case *pyast.Node:
		p.visit(f, 0)
	case pyast.Block:
		for _, stmt := range f {
			p.visit(stmt, 0)
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return p.entries, nil
}

type planner struct {
	ctx     context.Context //nolint:containedctx // scoped to a single Plan call
	loc     Locator
	entries []Entry
	err     error
}

func (p *planner) visit(n *pyast.Node, depth int) {
	if n == nil || p.err != nil {
		return
	}

	switch {
	case n.Kind.IsStmt():
		p.record(n, depth)
		p.children(n, depth+1)
	case n.Kind.IsExpr() && n.Kind != pyast.Name:
		if isLiteral(n) {
			return
		}
		p.record(n, depth)
		p.children(n, depth+1)
	default:
		p.children(n, depth)
	}
}

// visitTarget handles an assignment target: bound names are skipped, but the
// expressions that select what gets bound are traced.
func (p *planner) visitTarget(n *pyast.Node, depth int) {
	if n == nil {
		return
	}

	switch n.Kind {
	case pyast.Subscript:
		p.visitIndex(n.Arg(1), depth)
	case pyast.Attribute:
		p.visit(n.Arg(0), depth)
	case pyast.Tuple, pyast.List, pyast.Starred:
		for _, elt := range n.Args {
			p.visitTarget(elt, depth)
		}
	}
}

func (p *planner) visitIndex(n *pyast.Node, depth int) {
	if n == nil {
		return
	}
	switch n.Kind {
	case pyast.Slice:
		for _, part := range n.Args {
			p.visit(part, depth)
		}
	case pyast.Tuple:
		if !hasSlice(n) {
			p.visit(n, depth)
			return
		}
		// A tuple holding slices only exists inside the brackets.
		for _, elt := range n.Args {
			p.visitIndex(elt, depth)
		}
	default:
		p.visit(n, depth)
	}
}

func hasSlice(n *pyast.Node) bool {
	for _, elt := range n.Args {
		if elt != nil && elt.Kind == pyast.Slice {
			return true
		}
	}
	return false
}

func (p *planner) children(n *pyast.Node, depth int) {
	targets := targetSlots(n)

	for _, d := range n.Decorators {
		p.visit(d, depth)
	}
	for i, arg := range n.Args {
		switch {
		case targets(i):
			p.visitTarget(arg, depth)
		case n.Kind == pyast.Subscript && i == 1:
			p.visitIndex(arg, depth)
		default:
			p.visit(arg, depth)
		}
	}
	for _, list := range [][]*pyast.Node{n.Body, n.Handlers, n.Else, n.Final} {
		for _, child := range list {
			p.visit(child, depth)
		}
	}
}

// targetSlots reports which Args slots of n hold binding targets.
func targetSlots(n *pyast.Node) func(int) bool {
	switch n.Kind {
	case pyast.Assign:
		last := len(n.Args) - 1
		return func(i int) bool { return i < last }
	case pyast.Delete:
		return func(int) bool { return true }
	case pyast.AugAssign, pyast.AnnAssign, pyast.For, pyast.Comprehension:
		return func(i int) bool { return i == 0 }
	case pyast.WithItem:
		return func(i int) bool { return i == 1 }
	default:
		return func(int) bool { return false }
	}
}

func (p *planner) record(n *pyast.Node, depth int) {
	if err := p.ctx.Err(); err != nil {
		p.err = fmt.Errorf("trace cancelled: %w", err)
		return
	}

	entry := Entry{Kind: n.Kind, Line: n.Line, Col: n.Col, Depth: depth}
	ext, err := p.loc.Locate(p.ctx, n)
	if err != nil {
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			p.err = fmt.Errorf("trace cancelled: %w", ctxErr)
			return
		}
		entry.Err = err
	} else {
		entry.Text = ext.Text
		entry.Approximate = ext.Approximate
	}

	p.entries = append(p.entries, entry)
}

// isLiteral reports whether n is a constant, a signed number, or a container
// display built only from literals.
func isLiteral(n *pyast.Node) bool {
	if n == nil {
		return false
	}

	switch n.Kind {
	case pyast.Constant:
		return true
	case pyast.UnaryOp:
		op := n.Arg(0)
		return op != nil && (op.Text == "-" || op.Text == "+") && isNumber(n.Arg(1))
	case pyast.BinOp:
		// Complex literals such as 1+2j.
		op := n.Arg(1)
		return op != nil && (op.Text == "+" || op.Text == "-") &&
			isNumber(n.Arg(0)) && isImaginary(n.Arg(2))
	case pyast.Tuple, pyast.List, pyast.Set:
		for _, elt := range n.Args {
			if !isLiteral(elt) {
				return false
			}
		}
		return true
	case pyast.Dict:
		for i := 0; i+1 < len(n.Args); i += 2 {
			if n.Args[i] == nil || !isLiteral(n.Args[i]) || !isLiteral(n.Args[i+1]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumber(n *pyast.Node) bool {
	if n == nil || n.Kind != pyast.Constant || n.Text == "" {
		return false
	}
	c := n.Text[0]
	return ('0' <= c && c <= '9') || c == '.'
}

func isImaginary(n *pyast.Node) bool {
	return isNumber(n) && strings.ContainsAny(n.Text[len(n.Text)-1:], "jJ")
}
