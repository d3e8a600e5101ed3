package unparse

import (
	"fmt"
	"strings"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

//nolint:gocyclo,cyclop,funlen // one case per expression kind
func expr(n *pyast.Node, want precedence) (string, error) {
	if n == nil {
		return "", fmt.Errorf("%w: missing expression", ErrMalformed)
	}

	switch n.Kind {
	case pyast.Name, pyast.Constant:
		if n.Text == "" {
			return "", malformed(n, "empty text")
		}
		return n.Text, nil

	case pyast.Tuple:
		items, err := exprList(n.Args, precTest)
		if err != nil {
			return "", err
		}
		if len(n.Args) == 1 {
			return "(" + items + ",)", nil
		}
		return "(" + items + ")", nil

	case pyast.List:
		items, err := exprList(n.Args, precTest)
		if err != nil {
			return "", err
		}
		return "[" + items + "]", nil

	case pyast.Set:
		if len(n.Args) == 0 {
			return "", malformed(n, "empty set display")
		}
		items, err := exprList(n.Args, precTest)
		if err != nil {
			return "", err
		}
		return "{" + items + "}", nil

	case pyast.Dict:
		return dict(n)

	case pyast.Slice:
		// Slices only render inside a subscript, so a tuple of indexes
		// holding one has no form of its own either.
		return "", fmt.Errorf("%w: slice outside a subscript", ErrNotStandalone)

	case pyast.Starred:
		if err := required(n, 0); err != nil {
			return "", err
		}
		value, err := expr(n.Args[0], precExpr)
		if err != nil {
			return "", err
		}
		return "*" + value, nil

	case pyast.NamedExpr:
		if err := required(n, 0, 1); err != nil {
			return "", err
		}
		target, err := expr(n.Args[0], precAtom)
		if err != nil {
			return "", err
		}
		value, err := expr(n.Args[1], precTest)
		if err != nil {
			return "", err
		}
		return parens(target+" := "+value, precNamedExpr, want), nil

	case pyast.BoolOp:
		return boolOp(n, want)

	case pyast.BinOp:
		return binOp(n, want)

	case pyast.UnaryOp:
		return unaryOp(n, want)

	case pyast.Compare:
		return compare(n, want)

	case pyast.Lambda:
		if err := required(n, 1); err != nil {
			return "", err
		}
		params := ""
		if a := n.Arg(0); a != nil {
			s, err := arguments(a)
			if err != nil {
				return "", err
			}
			if s != "" {
				params = " " + s
			}
		}
		body, err := expr(n.Args[1], precTest)
		if err != nil {
			return "", err
		}
		return parens("lambda"+params+": "+body, precTest, want), nil

	case pyast.IfExp:
		if err := required(n, 0, 1, 2); err != nil {
			return "", err
		}
		body, err := expr(n.Args[0], precOr)
		if err != nil {
			return "", err
		}
		test, err := expr(n.Args[1], precOr)
		if err != nil {
			return "", err
		}
		orelse, err := expr(n.Args[2], precTest)
		if err != nil {
			return "", err
		}
		return parens(body+" if "+test+" else "+orelse, precTest, want), nil

	case pyast.Await:
		if err := required(n, 0); err != nil {
			return "", err
		}
		value, err := expr(n.Args[0], precAtom)
		if err != nil {
			return "", err
		}
		return parens("await "+value, precAwait, want), nil

	case pyast.Yield:
		text := "yield"
		if v := n.Arg(0); v != nil {
			value, err := expr(v, precTuple)
			if err != nil {
				return "", err
			}
			text += " " + value
		}
		return parens(text, precYield, want), nil

	case pyast.YieldFrom:
		if err := required(n, 0); err != nil {
			return "", err
		}
		value, err := expr(n.Args[0], precTest)
		if err != nil {
			return "", err
		}
		return parens("yield from "+value, precYield, want), nil

	case pyast.Call:
		return call(n)

	case pyast.Attribute:
		if err := required(n, 0); err != nil {
			return "", err
		}
		if n.Name == "" {
			return "", malformed(n, "missing attribute name")
		}
		value, err := expr(n.Args[0], precAtom)
		if err != nil {
			return "", err
		}
		if n.Args[0].Kind == pyast.Constant && isDecimalInt(n.Args[0].Text) {
			value = "(" + value + ")"
		}
		return value + "." + n.Name, nil

	case pyast.Subscript:
		if err := required(n, 0, 1); err != nil {
			return "", err
		}
		value, err := expr(n.Args[0], precAtom)
		if err != nil {
			return "", err
		}
		idx, err := index(n.Args[1])
		if err != nil {
			return "", err
		}
		return value + "[" + idx + "]", nil

	case pyast.ListComp, pyast.SetComp, pyast.GeneratorExp, pyast.DictComp:
		return comprehension(n)

	default:
		return "", malformed(n, "not an expression")
	}
}

func exprList(nodes []*pyast.Node, want precedence) (string, error) {
	parts := make([]string, 0, len(nodes))
	for _, item := range nodes {
		s, err := expr(item, want)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func dict(n *pyast.Node) (string, error) {
	if len(n.Args)%2 != 0 {
		return "", malformed(n, "odd number of key/value slots")
	}

	parts := make([]string, 0, len(n.Args)/2)
	for i := 0; i < len(n.Args); i += 2 {
		key, value := n.Args[i], n.Args[i+1]
		if key == nil {
			v, err := expr(value, precExpr)
			if err != nil {
				return "", err
			}
			parts = append(parts, "**"+v)
			continue
		}
		k, err := expr(key, precTest)
		if err != nil {
			return "", err
		}
		v, err := expr(value, precTest)
		if err != nil {
			return "", err
		}
		parts = append(parts, k+": "+v)
	}

	return "{" + strings.Join(parts, ", ") + "}", nil
}

func operator(n *pyast.Node) (string, error) {
	if n == nil || n.Kind != pyast.Operator || n.Text == "" {
		return "", fmt.Errorf("%w: expected operator", ErrMalformed)
	}
	return n.Text, nil
}

func boolOp(n *pyast.Node, want precedence) (string, error) {
	if err := required(n, 0, 1, 2); err != nil {
		return "", err
	}
	op, err := operator(n.Args[1])
	if err != nil {
		return "", err
	}

	var own precedence
	switch op {
	case "and":
		own = precAnd
	case "or":
		own = precOr
	default:
		return "", malformed(n, "unknown boolean operator %q", op)
	}

	left, err := expr(n.Args[0], own)
	if err != nil {
		return "", err
	}
	right, err := expr(n.Args[2], own+1)
	if err != nil {
		return "", err
	}

	return parens(left+" "+op+" "+right, own, want), nil
}

func binOp(n *pyast.Node, want precedence) (string, error) {
	if err := required(n, 0, 1, 2); err != nil {
		return "", err
	}
	op, err := operator(n.Args[1])
	if err != nil {
		return "", err
	}
	own, ok := binOpPrec[op]
	if !ok {
		return "", malformed(n, "unknown binary operator %q", op)
	}

	leftPrec, rightPrec := own, own+1
	if op == "**" {
		leftPrec, rightPrec = own+1, own
	}

	left, err := expr(n.Args[0], leftPrec)
	if err != nil {
		return "", err
	}
	right, err := expr(n.Args[2], rightPrec)
	if err != nil {
		return "", err
	}

	return parens(left+" "+op+" "+right, own, want), nil
}

func unaryOp(n *pyast.Node, want precedence) (string, error) {
	if err := required(n, 0, 1); err != nil {
		return "", err
	}
	op, err := operator(n.Args[0])
	if err != nil {
		return "", err
	}

	if op == "not" {
		operand, err := expr(n.Args[1], precNot)
		if err != nil {
			return "", err
		}
		return parens("not "+operand, precNot, want), nil
	}

	switch op {
	case "-", "+", "~":
	default:
		return "", malformed(n, "unknown unary operator %q", op)
	}

	operand, err := expr(n.Args[1], precFactor)
	if err != nil {
		return "", err
	}
	return parens(op+operand, precFactor, want), nil
}

func compare(n *pyast.Node, want precedence) (string, error) {
	if len(n.Args) < 3 || len(n.Args)%2 == 0 {
		return "", malformed(n, "comparison needs operands around each operator")
	}

	var b strings.Builder
	first, err := expr(n.Args[0], precCmp+1)
	if err != nil {
		return "", err
	}
	b.WriteString(first)

	for i := 1; i < len(n.Args); i += 2 {
		op, err := operator(n.Args[i])
		if err != nil {
			return "", err
		}
		operand, err := expr(n.Args[i+1], precCmp+1)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + op + " " + operand)
	}

	return parens(b.String(), precCmp, want), nil
}

func call(n *pyast.Node) (string, error) {
	if err := required(n, 0); err != nil {
		return "", err
	}
	fn, err := expr(n.Args[0], precAtom)
	if err != nil {
		return "", err
	}

	args := n.Args[1:]
	if len(args) == 1 && args[0] != nil && args[0].Kind == pyast.GeneratorExp {
		gen, err := expr(args[0], precAtom)
		if err != nil {
			return "", err
		}
		return fn + gen, nil
	}

	parts := make([]string, 0, len(args))
	for _, a := range args {
		var (
			s   string
			err error
		)
		if a != nil && a.Kind == pyast.Keyword {
			s, err = keyword(a)
		} else {
			s, err = expr(a, precTest)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	return fn + "(" + strings.Join(parts, ", ") + ")", nil
}

func keyword(n *pyast.Node) (string, error) {
	if err := required(n, 0); err != nil {
		return "", err
	}
	if n.Name == "" {
		value, err := expr(n.Args[0], precExpr)
		if err != nil {
			return "", err
		}
		return "**" + value, nil
	}
	value, err := expr(n.Args[0], precTest)
	if err != nil {
		return "", err
	}
	return n.Name + "=" + value, nil
}

func index(n *pyast.Node) (string, error) {
	if n.Kind == pyast.Tuple && len(n.Args) > 0 {
		parts := make([]string, 0, len(n.Args))
		for _, item := range n.Args {
			s, err := sliceOrExpr(item, precTest)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		if len(parts) == 1 {
			return parts[0] + ",", nil
		}
		return strings.Join(parts, ", "), nil
	}
	return sliceOrExpr(n, precTuple)
}

func sliceOrExpr(n *pyast.Node, want precedence) (string, error) {
	if n == nil || n.Kind != pyast.Slice {
		return expr(n, want)
	}

	part := func(i int) (string, error) {
		if c := n.Arg(i); c != nil {
			return expr(c, precTest)
		}
		return "", nil
	}

	lower, err := part(0)
	if err != nil {
		return "", err
	}
	upper, err := part(1)
	if err != nil {
		return "", err
	}
	text := lower + ":" + upper
	if n.Arg(2) != nil {
		step, err := part(2)
		if err != nil {
			return "", err
		}
		text += ":" + step
	}
	return text, nil
}

func comprehension(n *pyast.Node) (string, error) {
	open, closing := "[", "]"
	switch n.Kind {
	case pyast.SetComp, pyast.DictComp:
		open, closing = "{", "}"
	case pyast.GeneratorExp:
		open, closing = "(", ")"
	}

	eltSlots := 1
	if n.Kind == pyast.DictComp {
		eltSlots = 2
	}
	if len(n.Args) <= eltSlots {
		return "", malformed(n, "comprehension without a for clause")
	}

	var (
		elt string
		err error
	)
	if n.Kind == pyast.DictComp {
		key, err := expr(n.Args[0], precTest)
		if err != nil {
			return "", err
		}
		value, err := expr(n.Args[1], precTest)
		if err != nil {
			return "", err
		}
		elt = key + ": " + value
	} else {
		elt, err = expr(n.Args[0], precTest)
		if err != nil {
			return "", err
		}
	}

	var b strings.Builder
	b.WriteString(open + elt)
	for _, gen := range n.Args[eltSlots:] {
		clause, err := generator(gen)
		if err != nil {
			return "", err
		}
		b.WriteString(clause)
	}
	b.WriteString(closing)

	return b.String(), nil
}

func generator(n *pyast.Node) (string, error) {
	if n == nil || n.Kind != pyast.Comprehension {
		return "", fmt.Errorf("%w: expected comprehension clause", ErrMalformed)
	}
	if err := required(n, 0, 1); err != nil {
		return "", err
	}

	target, err := expr(n.Args[0], precTuple)
	if err != nil {
		return "", err
	}
	iter, err := expr(n.Args[1], precOr)
	if err != nil {
		return "", err
	}

	text := " for " + target + " in " + iter
	if n.Async {
		text = " async" + text
	}
	for _, cond := range n.Args[2:] {
		c, err := expr(cond, precOr)
		if err != nil {
			return "", err
		}
		text += " if " + c
	}

	return text, nil
}

func arguments(n *pyast.Node) (string, error) {
	if n.Kind != pyast.Arguments {
		return "", malformed(n, "expected parameter list")
	}
	parts := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		if a == nil {
			return "", malformed(n, "empty parameter slot")
		}
		s, err := arg(a)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func arg(n *pyast.Node) (string, error) {
	if n.Kind != pyast.Arg || n.Name == "" {
		return "", malformed(n, "expected named parameter")
	}

	text := n.Name
	annotated := false
	if ann := n.Arg(0); ann != nil {
		s, err := expr(ann, precTest)
		if err != nil {
			return "", err
		}
		text += ": " + s
		annotated = true
	}
	if def := n.Arg(1); def != nil {
		s, err := expr(def, precTest)
		if err != nil {
			return "", err
		}
		if annotated {
			text += " = " + s
		} else {
			text += "=" + s
		}
	}

	return text, nil
}

func isDecimalInt(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
