package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// exprs maps an expression list into its items, or a single expression into a
// one-element slice.
func (m *mapper) exprs(n *sitter.Node) ([]*pyast.Node, error) {
	if n.Type() != "expression_list" {
		e, err := m.expr(n)
		if err != nil {
			return nil, err
		}
		return []*pyast.Node{e}, nil
	}
	return m.items(n)
}

func (m *mapper) items(n *sitter.Node) ([]*pyast.Node, error) {
	children := namedChildren(n)
	out := make([]*pyast.Node, 0, len(children))
	for _, child := range children {
		e, err := m.expr(child)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mapper) sequence(kind pyast.Kind, n *sitter.Node) (*pyast.Node, error) {
	items, err := m.items(n)
	if err != nil {
		return nil, err
	}
	out := at(kind, n)
	out.Args = items
	return out, nil
}

// operator returns the operator token stored in the named field.
func (m *mapper) operator(n *sitter.Node, field string) (*pyast.Node, error) {
	op := n.ChildByFieldName(field)
	if op == nil {
		return nil, unsupported(n)
	}
	return &pyast.Node{Kind: pyast.Operator, Text: m.text(op)}, nil
}

// unwrap maps the only named child of n.
func (m *mapper) unwrap(n *sitter.Node) (*pyast.Node, error) {
	children := namedChildren(n)
	if len(children) != 1 {
		return nil, unsupported(n)
	}
	return m.expr(children[0])
}

//nolint:gocyclo,cyclop,funlen // one case per expression type
func (m *mapper) expr(n *sitter.Node) (*pyast.Node, error) {
	switch n.Type() {
	case "identifier", "keyword_identifier":
		out := at(pyast.Name, n)
		out.Text = m.text(n)
		return out, nil

	case "integer", "float", "string", "true", "false", "none", "ellipsis":
		out := at(pyast.Constant, n)
		out.Text = m.text(n)
		return out, nil

	case "concatenated_string":
		parts := namedChildren(n)
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			texts = append(texts, m.text(p))
		}
		out := at(pyast.Constant, n)
		out.Text = strings.Join(texts, " ")
		return out, nil

	case "parenthesized_expression", "parenthesized_list_splat", "type", "as_pattern_target":
		return m.unwrap(n)

	case "tuple", "expression_list", "pattern_list", "tuple_pattern":
		return m.sequence(pyast.Tuple, n)
	case "list", "list_pattern":
		return m.sequence(pyast.List, n)
	case "set":
		return m.sequence(pyast.Set, n)
	case "dictionary":
		return m.dict(n)

	case "list_splat", "list_splat_pattern":
		value, err := m.unwrap(n)
		if err != nil {
			return nil, err
		}
		out := at(pyast.Starred, n)
		out.Args = []*pyast.Node{value}
		return out, nil

	case "named_expression":
		name, value := n.ChildByFieldName("name"), n.ChildByFieldName("value")
		if name == nil || value == nil {
			return nil, unsupported(n)
		}
		return m.node(pyast.NamedExpr, n, name, value)

	case "boolean_operator", "binary_operator":
		kind := pyast.BinOp
		if n.Type() == "boolean_operator" {
			kind = pyast.BoolOp
		}
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		if left == nil || right == nil {
			return nil, unsupported(n)
		}
		l, err := m.expr(left)
		if err != nil {
			return nil, err
		}
		op, err := m.operator(n, "operator")
		if err != nil {
			return nil, err
		}
		r, err := m.expr(right)
		if err != nil {
			return nil, err
		}
		out := at(kind, n)
		out.Args = []*pyast.Node{l, op, r}
		return out, nil

	case "unary_operator":
		arg := n.ChildByFieldName("argument")
		if arg == nil {
			return nil, unsupported(n)
		}
		op, err := m.operator(n, "operator")
		if err != nil {
			return nil, err
		}
		operand, err := m.expr(arg)
		if err != nil {
			return nil, err
		}
		out := at(pyast.UnaryOp, n)
		out.Args = []*pyast.Node{op, operand}
		return out, nil

	case "not_operator":
		arg := n.ChildByFieldName("argument")
		if arg == nil {
			return nil, unsupported(n)
		}
		operand, err := m.expr(arg)
		if err != nil {
			return nil, err
		}
		out := at(pyast.UnaryOp, n)
		out.Args = []*pyast.Node{{Kind: pyast.Operator, Text: "not"}, operand}
		return out, nil

	case "comparison_operator":
		return m.compare(n)

	case "lambda":
		return m.lambda(n)

	case "conditional_expression":
		parts := namedChildren(n)
		if len(parts) != 3 {
			return nil, unsupported(n)
		}
		return m.node(pyast.IfExp, n, parts...)

	case "await":
		value, err := m.unwrap(n)
		if err != nil {
			return nil, err
		}
		out := at(pyast.Await, n)
		out.Args = []*pyast.Node{value}
		return out, nil

	case "yield":
		return m.yield(n)

	case "call":
		return m.call(n)

	case "attribute":
		object, attr := n.ChildByFieldName("object"), n.ChildByFieldName("attribute")
		if object == nil || attr == nil {
			return nil, unsupported(n)
		}
		value, err := m.expr(object)
		if err != nil {
			return nil, err
		}
		out := at(pyast.Attribute, n)
		out.Name = m.text(attr)
		out.Args = []*pyast.Node{value}
		return out, nil

	case "subscript":
		return m.subscript(n)

	case "list_comprehension":
		return m.comprehension(pyast.ListComp, n)
	case "set_comprehension":
		return m.comprehension(pyast.SetComp, n)
	case "dictionary_comprehension":
		return m.comprehension(pyast.DictComp, n)
	case "generator_expression":
		return m.comprehension(pyast.GeneratorExp, n)

	default:
		return nil, unsupported(n)
	}
}

// node builds a node of kind at pos whose slots are the mapped children.
func (m *mapper) node(kind pyast.Kind, pos *sitter.Node, children ...*sitter.Node) (*pyast.Node, error) {
	out := at(kind, pos)
	for _, child := range children {
		e, err := m.expr(child)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, e)
	}
	return out, nil
}

func (m *mapper) dict(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.Dict, n)
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "pair":
			key, value := child.ChildByFieldName("key"), child.ChildByFieldName("value")
			if key == nil || value == nil {
				return nil, unsupported(child)
			}
			k, err := m.expr(key)
			if err != nil {
				return nil, err
			}
			v, err := m.expr(value)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, k, v)
		case "dictionary_splat":
			v, err := m.unwrap(child)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, nil, v)
		default:
			return nil, unsupported(child)
		}
	}
	return out, nil
}

// compare collects operands and operators in order. Multi-word operators such
// as "not in" and "is not" arrive as separate tokens and are joined.
func (m *mapper) compare(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.Compare, n)
	var pending []string

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if skipped(child) {
			continue
		}
		if !child.IsNamed() {
			pending = append(pending, child.Type())
			continue
		}
		if len(pending) > 0 {
			out.Args = append(out.Args, &pyast.Node{Kind: pyast.Operator, Text: strings.Join(pending, " ")})
			pending = pending[:0]
		}
		operand, err := m.expr(child)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, operand)
	}

	if len(out.Args) < 3 || len(pending) > 0 {
		return nil, unsupported(n)
	}
	return out, nil
}

func (m *mapper) lambda(n *sitter.Node) (*pyast.Node, error) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil, unsupported(n)
	}

	out := at(pyast.Lambda, n)
	out.Args = []*pyast.Node{nil, nil}

	if params := n.ChildByFieldName("parameters"); params != nil {
		a, err := m.parameters(params)
		if err != nil {
			return nil, err
		}
		out.Args[0] = a
	}

	b, err := m.expr(body)
	if err != nil {
		return nil, err
	}
	out.Args[1] = b
	return out, nil
}

func (m *mapper) yield(n *sitter.Node) (*pyast.Node, error) {
	children := namedChildren(n)
	if hasToken(n, "from") {
		if len(children) != 1 {
			return nil, unsupported(n)
		}
		return m.node(pyast.YieldFrom, n, children[0])
	}

	out := at(pyast.Yield, n)
	out.Args = []*pyast.Node{nil}
	switch len(children) {
	case 0:
	case 1:
		v, err := m.expr(children[0])
		if err != nil {
			return nil, err
		}
		out.Args[0] = v
	default:
		tuple := at(pyast.Tuple, children[0])
		items, err := m.items(n)
		if err != nil {
			return nil, err
		}
		tuple.Args = items
		out.Args[0] = tuple
	}
	return out, nil
}

func (m *mapper) call(n *sitter.Node) (*pyast.Node, error) {
	fn, args := n.ChildByFieldName("function"), n.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return nil, unsupported(n)
	}

	f, err := m.expr(fn)
	if err != nil {
		return nil, err
	}
	out := at(pyast.Call, n)
	out.Args = []*pyast.Node{f}

	if args.Type() == "generator_expression" {
		gen, err := m.expr(args)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, gen)
		return out, nil
	}

	rest, err := m.callArgs(args)
	if err != nil {
		return nil, err
	}
	out.Args = append(out.Args, rest...)
	return out, nil
}

// callArgs maps an argument_list into positional values and Keyword nodes.
func (m *mapper) callArgs(n *sitter.Node) ([]*pyast.Node, error) {
	var out []*pyast.Node
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "keyword_argument":
			name, value := child.ChildByFieldName("name"), child.ChildByFieldName("value")
			if name == nil || value == nil {
				return nil, unsupported(child)
			}
			v, err := m.expr(value)
			if err != nil {
				return nil, err
			}
			out = append(out, &pyast.Node{Kind: pyast.Keyword, Name: m.text(name), Args: []*pyast.Node{v}})
		case "dictionary_splat":
			v, err := m.unwrap(child)
			if err != nil {
				return nil, err
			}
			out = append(out, &pyast.Node{Kind: pyast.Keyword, Args: []*pyast.Node{v}})
		default:
			e, err := m.expr(child)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mapper) subscript(n *sitter.Node) (*pyast.Node, error) {
	value := n.ChildByFieldName("value")
	indexes := fieldChildren(n, "subscript")
	if value == nil || len(indexes) == 0 {
		return nil, unsupported(n)
	}

	v, err := m.expr(value)
	if err != nil {
		return nil, err
	}

	items := make([]*pyast.Node, 0, len(indexes))
	for _, idx := range indexes {
		var item *pyast.Node
		if idx.Type() == "slice" {
			item, err = m.slice(idx)
		} else {
			item, err = m.expr(idx)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	index := items[0]
	if len(items) > 1 || hasToken(n, ",") {
		index = at(pyast.Tuple, indexes[0])
		index.Args = items
	}

	out := at(pyast.Subscript, n)
	out.Args = []*pyast.Node{v, index}
	return out, nil
}

// slice splits the children of a slice node at each colon.
func (m *mapper) slice(n *sitter.Node) (*pyast.Node, error) {
	out := &pyast.Node{Kind: pyast.Slice, Args: []*pyast.Node{nil, nil, nil}}
	slot := 0
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if skipped(child) {
			continue
		}
		if !child.IsNamed() {
			if child.Type() == ":" {
				slot++
			}
			continue
		}
		if slot > 2 {
			return nil, unsupported(n)
		}
		e, err := m.expr(child)
		if err != nil {
			return nil, err
		}
		out.Args[slot] = e
	}
	return out, nil
}

// comprehension positions the result at its element, inside the delimiters.
func (m *mapper) comprehension(kind pyast.Kind, n *sitter.Node) (*pyast.Node, error) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil, unsupported(n)
	}

	out := at(kind, body)
	if kind == pyast.DictComp {
		key, value := body.ChildByFieldName("key"), body.ChildByFieldName("value")
		if body.Type() != "pair" || key == nil || value == nil {
			return nil, unsupported(body)
		}
		k, err := m.expr(key)
		if err != nil {
			return nil, err
		}
		v, err := m.expr(value)
		if err != nil {
			return nil, err
		}
		out.Args = []*pyast.Node{k, v}
	} else {
		elt, err := m.expr(body)
		if err != nil {
			return nil, err
		}
		out.Args = []*pyast.Node{elt}
	}

	var current *pyast.Node
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "for_in_clause":
			clause, err := m.forIn(child)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, clause)
			current = clause
		case "if_clause":
			if current == nil {
				return nil, unsupported(child)
			}
			cond, err := m.unwrap(child)
			if err != nil {
				return nil, err
			}
			current.Args = append(current.Args, cond)
		}
	}

	if current == nil {
		return nil, unsupported(n)
	}
	return out, nil
}

func (m *mapper) forIn(n *sitter.Node) (*pyast.Node, error) {
	left := n.ChildByFieldName("left")
	rights := fieldChildren(n, "right")
	if left == nil || len(rights) == 0 {
		return nil, unsupported(n)
	}

	target, err := m.expr(left)
	if err != nil {
		return nil, err
	}

	var iter *pyast.Node
	if len(rights) == 1 {
		if iter, err = m.expr(rights[0]); err != nil {
			return nil, err
		}
	} else {
		iter = at(pyast.Tuple, rights[0])
		for _, r := range rights {
			e, err := m.expr(r)
			if err != nil {
				return nil, err
			}
			iter.Args = append(iter.Args, e)
		}
	}

	return &pyast.Node{
		Kind:  pyast.Comprehension,
		Async: hasToken(n, "async"),
		Args:  []*pyast.Node{target, iter},
	}, nil
}
