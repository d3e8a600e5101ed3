package unparse

import (
	"fmt"
	"strings"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

//nolint:gocyclo,cyclop,funlen // one case per statement kind
func (w *writer) stmt(n *pyast.Node, depth int) error {
	if n == nil {
		return fmt.Errorf("%w: missing statement", ErrMalformed)
	}

	switch n.Kind {
	case pyast.Pass:
		w.line(depth, "pass")
	case pyast.Break:
		w.line(depth, "break")
	case pyast.Continue:
		w.line(depth, "continue")

	case pyast.Expr:
		if err := required(n, 0); err != nil {
			return err
		}
		value, err := expr(n.Args[0], precYield)
		if err != nil {
			return err
		}
		w.line(depth, value)

	case pyast.Return:
		text := "return"
		if v := n.Arg(0); v != nil {
			value, err := expr(v, precTuple)
			if err != nil {
				return err
			}
			text += " " + value
		}
		w.line(depth, text)

	case pyast.Delete:
		if len(n.Args) == 0 {
			return malformed(n, "nothing to delete")
		}
		targets, err := exprList(n.Args, precTest)
		if err != nil {
			return err
		}
		w.line(depth, "del "+targets)

	case pyast.Assign:
		if err := slots(n, 2); err != nil {
			return err
		}
		parts := make([]string, 0, len(n.Args))
		for _, target := range n.Args[:len(n.Args)-1] {
			s, err := expr(target, precTuple)
			if err != nil {
				return err
			}
			parts = append(parts, s)
		}
		value, err := expr(n.Args[len(n.Args)-1], precYield)
		if err != nil {
			return err
		}
		parts = append(parts, value)
		w.line(depth, strings.Join(parts, " = "))

	case pyast.AugAssign:
		if err := required(n, 0, 1, 2); err != nil {
			return err
		}
		target, err := expr(n.Args[0], precTuple)
		if err != nil {
			return err
		}
		op, err := operator(n.Args[1])
		if err != nil {
			return err
		}
		value, err := expr(n.Args[2], precYield)
		if err != nil {
			return err
		}
		w.line(depth, target+" "+op+" "+value)

	case pyast.AnnAssign:
		if err := required(n, 0, 1); err != nil {
			return err
		}
		target, err := expr(n.Args[0], precTuple)
		if err != nil {
			return err
		}
		ann, err := expr(n.Args[1], precTest)
		if err != nil {
			return err
		}
		text := target + ": " + ann
		if v := n.Arg(2); v != nil {
			value, err := expr(v, precYield)
			if err != nil {
				return err
			}
			text += " = " + value
		}
		w.line(depth, text)

	case pyast.Raise:
		text := "raise"
		if exc := n.Arg(0); exc != nil {
			s, err := expr(exc, precTest)
			if err != nil {
				return err
			}
			text += " " + s
			if cause := n.Arg(1); cause != nil {
				c, err := expr(cause, precTest)
				if err != nil {
					return err
				}
				text += " from " + c
			}
		}
		w.line(depth, text)

	case pyast.Assert:
		if err := required(n, 0); err != nil {
			return err
		}
		test, err := expr(n.Args[0], precTest)
		if err != nil {
			return err
		}
		text := "assert " + test
		if msg := n.Arg(1); msg != nil {
			m, err := expr(msg, precTest)
			if err != nil {
				return err
			}
			text += ", " + m
		}
		w.line(depth, text)

	case pyast.Global, pyast.Nonlocal:
		if n.Name == "" {
			return malformed(n, "no names")
		}
		w.line(depth, strings.ToLower(n.Kind.String())+" "+n.Name)

	case pyast.Import:
		names, err := aliases(n)
		if err != nil {
			return err
		}
		w.line(depth, "import "+names)

	case pyast.ImportFrom:
		if n.Name == "" {
			return malformed(n, "missing module")
		}
		names, err := aliases(n)
		if err != nil {
			return err
		}
		w.line(depth, "from "+n.Name+" import "+names)

	case pyast.If:
		return w.ifStmt(n, depth, "if ")

	case pyast.While:
		if err := required(n, 0); err != nil {
			return err
		}
		test, err := expr(n.Args[0], precTest)
		if err != nil {
			return err
		}
		return w.compound(n, depth, "while "+test+":")

	case pyast.For:
		if err := required(n, 0, 1); err != nil {
			return err
		}
		target, err := expr(n.Args[0], precTuple)
		if err != nil {
			return err
		}
		iter, err := expr(n.Args[1], precTest)
		if err != nil {
			return err
		}
		return w.compound(n, depth, asyncPrefix(n)+"for "+target+" in "+iter+":")

	case pyast.With:
		items, err := withItems(n)
		if err != nil {
			return err
		}
		return w.compound(n, depth, asyncPrefix(n)+"with "+items+":")

	case pyast.Try:
		return w.try(n, depth)

	case pyast.ExceptHandler:
		return w.handler(n, depth)

	case pyast.FunctionDef:
		return w.function(n, depth)

	case pyast.ClassDef:
		return w.class(n, depth)

	default:
		return malformed(n, "not a statement")
	}

	return nil
}

func asyncPrefix(n *pyast.Node) string {
	if n.Async {
		return "async "
	}
	return ""
}

func (w *writer) body(n *pyast.Node, stmts []*pyast.Node, depth int) error {
	if len(stmts) == 0 {
		return malformed(n, "empty block")
	}
	for _, s := range stmts {
		if err := w.stmt(s, depth); err != nil {
			return err
		}
	}
	return nil
}

// compound writes a header, the body and an optional else branch.
func (w *writer) compound(n *pyast.Node, depth int, header string) error {
	w.line(depth, header)
	if err := w.body(n, n.Body, depth+1); err != nil {
		return err
	}
	if len(n.Else) > 0 {
		w.line(depth, "else:")
		return w.body(n, n.Else, depth+1)
	}
	return nil
}

func (w *writer) ifStmt(n *pyast.Node, depth int, keyword string) error {
	if err := required(n, 0); err != nil {
		return err
	}
	test, err := expr(n.Args[0], precTest)
	if err != nil {
		return err
	}

	w.line(depth, keyword+test+":")
	if err := w.body(n, n.Body, depth+1); err != nil {
		return err
	}

	switch {
	case len(n.Else) == 1 && n.Else[0] != nil && n.Else[0].Kind == pyast.If:
		return w.ifStmt(n.Else[0], depth, "elif ")
	case len(n.Else) > 0:
		w.line(depth, "else:")
		return w.body(n, n.Else, depth+1)
	}
	return nil
}

func (w *writer) try(n *pyast.Node, depth int) error {
	w.line(depth, "try:")
	if err := w.body(n, n.Body, depth+1); err != nil {
		return err
	}
	for _, h := range n.Handlers {
		if err := w.handler(h, depth); err != nil {
			return err
		}
	}
	if len(n.Handlers) == 0 && len(n.Final) == 0 {
		return malformed(n, "try without except or finally")
	}
	if len(n.Else) > 0 {
		w.line(depth, "else:")
		if err := w.body(n, n.Else, depth+1); err != nil {
			return err
		}
	}
	if len(n.Final) > 0 {
		w.line(depth, "finally:")
		if err := w.body(n, n.Final, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) handler(n *pyast.Node, depth int) error {
	if n == nil || n.Kind != pyast.ExceptHandler {
		return fmt.Errorf("%w: expected except clause", ErrMalformed)
	}

	header := "except"
	if n.Async {
		header = "except*"
	}
	if typ := n.Arg(0); typ != nil {
		s, err := expr(typ, precTest)
		if err != nil {
			return err
		}
		header += " " + s
		if n.Name != "" {
			header += " as " + n.Name
		}
	}

	w.line(depth, header+":")
	return w.body(n, n.Body, depth+1)
}

func (w *writer) decorators(n *pyast.Node, depth int) error {
	for _, d := range n.Decorators {
		s, err := expr(d, precTest)
		if err != nil {
			return err
		}
		w.line(depth, "@"+s)
	}
	return nil
}

func (w *writer) function(n *pyast.Node, depth int) error {
	if n.Name == "" {
		return malformed(n, "missing name")
	}
	if err := w.decorators(n, depth); err != nil {
		return err
	}

	params := ""
	if a := n.Arg(0); a != nil {
		s, err := arguments(a)
		if err != nil {
			return err
		}
		params = s
	}

	header := asyncPrefix(n) + "def " + n.Name + "(" + params + ")"
	if ret := n.Arg(1); ret != nil {
		s, err := expr(ret, precTest)
		if err != nil {
			return err
		}
		header += " -> " + s
	}

	w.line(depth, header+":")
	return w.body(n, n.Body, depth+1)
}

func (w *writer) class(n *pyast.Node, depth int) error {
	if n.Name == "" {
		return malformed(n, "missing name")
	}
	if err := w.decorators(n, depth); err != nil {
		return err
	}

	header := "class " + n.Name
	if len(n.Args) > 0 {
		parts := make([]string, 0, len(n.Args))
		for _, base := range n.Args {
			var (
				s   string
				err error
			)
			if base != nil && base.Kind == pyast.Keyword {
				s, err = keyword(base)
			} else {
				s, err = expr(base, precTest)
			}
			if err != nil {
				return err
			}
			parts = append(parts, s)
		}
		header += "(" + strings.Join(parts, ", ") + ")"
	}

	w.line(depth, header+":")
	return w.body(n, n.Body, depth+1)
}

func aliases(n *pyast.Node) (string, error) {
	if len(n.Args) == 0 {
		return "", malformed(n, "no imported names")
	}
	parts := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		if a == nil || a.Kind != pyast.Alias || a.Text == "" {
			return "", malformed(n, "expected import alias")
		}
		s := a.Text
		if a.Name != "" {
			s += " as " + a.Name
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func withItems(n *pyast.Node) (string, error) {
	if len(n.Args) == 0 {
		return "", malformed(n, "with statement without items")
	}
	parts := make([]string, 0, len(n.Args))
	for _, item := range n.Args {
		if item == nil || item.Kind != pyast.WithItem {
			return "", malformed(n, "expected with item")
		}
		if err := required(item, 0); err != nil {
			return "", err
		}
		s, err := expr(item.Args[0], precTest)
		if err != nil {
			return "", err
		}
		if vars := item.Arg(1); vars != nil {
			v, err := expr(vars, precTuple)
			if err != nil {
				return "", err
			}
			s += " as " + v
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}
