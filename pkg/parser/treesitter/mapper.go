package treesitter

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// mapper converts tree-sitter nodes into pyast nodes.
type mapper struct {
	src []byte
}

func unsupported(n *sitter.Node) error {
	p := n.StartPoint()
	return fmt.Errorf("%w: %s at %d:%d", pyast.ErrUnsupported, n.Type(), p.Row+1, p.Column)
}

func (m *mapper) text(n *sitter.Node) string {
	return n.Content(m.src)
}

// at creates a pyast node positioned at the start of n.
func at(kind pyast.Kind, n *sitter.Node) *pyast.Node {
	p := n.StartPoint()
	return pyast.At(kind, int(p.Row)+1, int(p.Column))
}

func skipped(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "line_continuation":
		return true
	}
	return false
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || skipped(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

// fieldChildren returns every child of n stored under the given field name.
func fieldChildren(n *sitter.Node, name string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == name {
			out = append(out, n.Child(i))
		}
	}
	return out
}

// hasToken reports whether n has a direct anonymous child with the given text.
func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

func (m *mapper) module(root *sitter.Node) (*pyast.Node, error) {
	body, err := m.block(root)
	if err != nil {
		return nil, err
	}
	module := pyast.NewNode(pyast.Module)
	module.Body = body
	return module, nil
}

// block maps the statements of a block or module node.
func (m *mapper) block(n *sitter.Node) ([]*pyast.Node, error) {
	if n == nil {
		return nil, nil
	}
	children := namedChildren(n)
	out := make([]*pyast.Node, 0, len(children))
	for _, child := range children {
		stmt, err := m.stmt(child)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

//nolint:gocyclo,cyclop,funlen // one case per statement type
func (m *mapper) stmt(n *sitter.Node) (*pyast.Node, error) {
	switch n.Type() {
	case "pass_statement":
		return at(pyast.Pass, n), nil
	case "break_statement":
		return at(pyast.Break, n), nil
	case "continue_statement":
		return at(pyast.Continue, n), nil

	case "expression_statement":
		return m.exprStmt(n)

	case "return_statement":
		out := at(pyast.Return, n)
		if values := namedChildren(n); len(values) > 0 {
			value, err := m.expr(values[0])
			if err != nil {
				return nil, err
			}
			out.Args = []*pyast.Node{value}
		}
		return out, nil

	case "delete_statement":
		out := at(pyast.Delete, n)
		for _, child := range namedChildren(n) {
			targets, err := m.exprs(child)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, targets...)
		}
		return out, nil

	case "raise_statement":
		out := at(pyast.Raise, n)
		cause := n.ChildByFieldName("cause")
		var exc *sitter.Node
		for _, child := range namedChildren(n) {
			if cause == nil || child.StartByte() != cause.StartByte() {
				exc = child
				break
			}
		}
		if exc != nil {
			value, err := m.expr(exc)
			if err != nil {
				return nil, err
			}
			out.Args = []*pyast.Node{value, nil}
			if cause != nil {
				c, err := m.expr(cause)
				if err != nil {
					return nil, err
				}
				out.Args[1] = c
			}
		}
		return out, nil

	case "assert_statement":
		out := at(pyast.Assert, n)
		for _, child := range namedChildren(n) {
			value, err := m.expr(child)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, value)
		}
		return out, nil

	case "global_statement", "nonlocal_statement":
		kind := pyast.Global
		if n.Type() == "nonlocal_statement" {
			kind = pyast.Nonlocal
		}
		out := at(kind, n)
		names := make([]string, 0, n.NamedChildCount())
		for _, child := range namedChildren(n) {
			names = append(names, m.text(child))
		}
		out.Name = strings.Join(names, ", ")
		return out, nil

	case "import_statement":
		return m.importStmt(n)
	case "import_from_statement", "future_import_statement":
		return m.importFrom(n)

	case "if_statement":
		return m.ifStmt(n)
	case "for_statement":
		return m.forStmt(n)
	case "while_statement":
		return m.whileStmt(n)
	case "with_statement":
		return m.withStmt(n)
	case "try_statement":
		return m.tryStmt(n)
	case "function_definition":
		return m.function(n, n)
	case "class_definition":
		return m.class(n, n)
	case "decorated_definition":
		return m.decorated(n)

	case "print_statement":
		return m.printStmt(n)

	default:
		return nil, unsupported(n)
	}
}

func (m *mapper) exprStmt(n *sitter.Node) (*pyast.Node, error) {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil, unsupported(n)
	}

	if len(children) == 1 && !hasToken(n, ",") {
		switch children[0].Type() {
		case "assignment":
			return m.assignment(children[0])
		case "augmented_assignment":
			return m.augAssignment(children[0])
		}
	}

	var value *pyast.Node
	if len(children) == 1 && !hasToken(n, ",") {
		v, err := m.expr(children[0])
		if err != nil {
			return nil, err
		}
		value = v
	} else {
		tuple := at(pyast.Tuple, n)
		for _, child := range children {
			v, err := m.expr(child)
			if err != nil {
				return nil, err
			}
			tuple.Args = append(tuple.Args, v)
		}
		value = tuple
	}

	out := at(pyast.Expr, n)
	out.Args = []*pyast.Node{value}
	return out, nil
}

func (m *mapper) assignment(n *sitter.Node) (*pyast.Node, error) {
	left := n.ChildByFieldName("left")
	if left == nil {
		return nil, unsupported(n)
	}
	target, err := m.expr(left)
	if err != nil {
		return nil, err
	}

	if typ := n.ChildByFieldName("type"); typ != nil {
		ann, err := m.expr(typ)
		if err != nil {
			return nil, err
		}
		out := at(pyast.AnnAssign, n)
		out.Args = []*pyast.Node{target, ann, nil}
		if right := n.ChildByFieldName("right"); right != nil {
			value, err := m.expr(right)
			if err != nil {
				return nil, err
			}
			out.Args[2] = value
		}
		return out, nil
	}

	right := n.ChildByFieldName("right")
	if right == nil {
		return nil, unsupported(n)
	}

	out := at(pyast.Assign, n)
	out.Args = []*pyast.Node{target}

	// a = b = c nests assignments on the right.
	for right.Type() == "assignment" && right.ChildByFieldName("type") == nil {
		l := right.ChildByFieldName("left")
		r := right.ChildByFieldName("right")
		if l == nil || r == nil {
			return nil, unsupported(right)
		}
		t, err := m.expr(l)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, t)
		right = r
	}

	value, err := m.expr(right)
	if err != nil {
		return nil, err
	}
	out.Args = append(out.Args, value)

	return out, nil
}

func (m *mapper) augAssignment(n *sitter.Node) (*pyast.Node, error) {
	left, op, right := n.ChildByFieldName("left"), n.ChildByFieldName("operator"), n.ChildByFieldName("right")
	if left == nil || op == nil || right == nil {
		return nil, unsupported(n)
	}
	target, err := m.expr(left)
	if err != nil {
		return nil, err
	}
	value, err := m.expr(right)
	if err != nil {
		return nil, err
	}
	out := at(pyast.AugAssign, n)
	out.Args = []*pyast.Node{target, {Kind: pyast.Operator, Text: m.text(op)}, value}
	return out, nil
}

// printStmt maps the Python 2 form `print x, y` to a print call.
func (m *mapper) printStmt(n *sitter.Node) (*pyast.Node, error) {
	if n.ChildByFieldName("chevron") != nil {
		return nil, unsupported(n)
	}
	for _, child := range namedChildren(n) {
		if child.Type() == "chevron" {
			return nil, unsupported(n)
		}
	}

	call := at(pyast.Call, n)
	call.Args = []*pyast.Node{at(pyast.Name, n)}
	call.Args[0].Text = "print"
	for _, child := range fieldChildren(n, "argument") {
		arg, err := m.expr(child)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}

	out := at(pyast.Expr, n)
	out.Args = []*pyast.Node{call}
	return out, nil
}

func (m *mapper) importStmt(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.Import, n)
	for _, name := range fieldChildren(n, "name") {
		alias, err := m.alias(name)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, alias)
	}
	return out, nil
}

func (m *mapper) importFrom(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.ImportFrom, n)
	if module := n.ChildByFieldName("module_name"); module != nil {
		out.Name = strings.Join(strings.Fields(m.text(module)), "")
	} else {
		out.Name = "__future__"
	}

	for _, name := range fieldChildren(n, "name") {
		alias, err := m.alias(name)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, alias)
	}
	for _, child := range namedChildren(n) {
		if child.Type() == "wildcard_import" {
			out.Args = append(out.Args, &pyast.Node{Kind: pyast.Alias, Text: "*"})
		}
	}
	return out, nil
}

func (m *mapper) alias(n *sitter.Node) (*pyast.Node, error) {
	switch n.Type() {
	case "dotted_name", "identifier":
		return &pyast.Node{Kind: pyast.Alias, Text: m.text(n)}, nil
	case "aliased_import":
		name, asName := n.ChildByFieldName("name"), n.ChildByFieldName("alias")
		if name == nil || asName == nil {
			return nil, unsupported(n)
		}
		return &pyast.Node{Kind: pyast.Alias, Text: m.text(name), Name: m.text(asName)}, nil
	default:
		return nil, unsupported(n)
	}
}

func (m *mapper) ifStmt(n *sitter.Node) (*pyast.Node, error) {
	root, err := m.conditional(pyast.If, n, n.ChildByFieldName("condition"), n.ChildByFieldName("consequence"))
	if err != nil {
		return nil, err
	}

	last := root
	for _, alt := range fieldChildren(n, "alternative") {
		switch alt.Type() {
		case "elif_clause":
			cond := alt.ChildByFieldName("condition")
			if cond == nil {
				return nil, unsupported(alt)
			}
			elif, err := m.conditional(pyast.If, cond, cond, alt.ChildByFieldName("consequence"))
			if err != nil {
				return nil, err
			}
			elif.Elif = true
			last.Else = []*pyast.Node{elif}
			last = elif
		case "else_clause":
			body, err := m.block(alt.ChildByFieldName("body"))
			if err != nil {
				return nil, err
			}
			last.Else = body
		default:
			return nil, unsupported(alt)
		}
	}

	return root, nil
}

// conditional builds an If or While positioned at pos.
func (m *mapper) conditional(kind pyast.Kind, pos, cond, body *sitter.Node) (*pyast.Node, error) {
	if cond == nil || body == nil {
		return nil, unsupported(pos)
	}
	test, err := m.expr(cond)
	if err != nil {
		return nil, err
	}
	stmts, err := m.block(body)
	if err != nil {
		return nil, err
	}
	out := at(kind, pos)
	out.Args = []*pyast.Node{test}
	out.Body = stmts
	return out, nil
}

func (m *mapper) elseBlock(n *sitter.Node) ([]*pyast.Node, error) {
	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return nil, nil
	}
	return m.block(alt.ChildByFieldName("body"))
}

func (m *mapper) whileStmt(n *sitter.Node) (*pyast.Node, error) {
	out, err := m.conditional(pyast.While, n, n.ChildByFieldName("condition"), n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	if out.Else, err = m.elseBlock(n); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *mapper) forStmt(n *sitter.Node) (*pyast.Node, error) {
	left, right, body := n.ChildByFieldName("left"), n.ChildByFieldName("right"), n.ChildByFieldName("body")
	if left == nil || right == nil || body == nil {
		return nil, unsupported(n)
	}
	target, err := m.expr(left)
	if err != nil {
		return nil, err
	}
	iter, err := m.expr(right)
	if err != nil {
		return nil, err
	}

	out := at(pyast.For, n)
	out.Async = hasToken(n, "async")
	out.Args = []*pyast.Node{target, iter}
	if out.Body, err = m.block(body); err != nil {
		return nil, err
	}
	if out.Else, err = m.elseBlock(n); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *mapper) withStmt(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.With, n)
	out.Async = hasToken(n, "async")

	for _, child := range namedChildren(n) {
		if child.Type() != "with_clause" {
			continue
		}
		for _, item := range namedChildren(child) {
			if item.Type() != "with_item" {
				return nil, unsupported(item)
			}
			w, err := m.withItem(item)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, w)
		}
	}

	body, err := m.block(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

func (m *mapper) withItem(n *sitter.Node) (*pyast.Node, error) {
	value := n.ChildByFieldName("value")
	if value == nil {
		children := namedChildren(n)
		if len(children) == 0 {
			return nil, unsupported(n)
		}
		value = children[0]
	}

	item := &pyast.Node{Kind: pyast.WithItem, Args: []*pyast.Node{nil, nil}}

	ctxExpr, vars := value, n.ChildByFieldName("alias")
	if value.Type() == "as_pattern" {
		parts := namedChildren(value)
		if len(parts) != 2 {
			return nil, unsupported(value)
		}
		ctxExpr, vars = parts[0], parts[1]
	}

	c, err := m.expr(ctxExpr)
	if err != nil {
		return nil, err
	}
	item.Args[0] = c

	if vars != nil {
		v, err := m.expr(vars)
		if err != nil {
			return nil, err
		}
		item.Args[1] = v
	}
	return item, nil
}

func (m *mapper) tryStmt(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.Try, n)
	body, err := m.block(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	out.Body = body

	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "except_clause", "except_group_clause":
			h, err := m.handler(child)
			if err != nil {
				return nil, err
			}
			out.Handlers = append(out.Handlers, h)
		case "else_clause":
			if out.Else, err = m.block(child.ChildByFieldName("body")); err != nil {
				return nil, err
			}
		case "finally_clause":
			for _, part := range namedChildren(child) {
				if part.Type() == "block" {
					if out.Final, err = m.block(part); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	return out, nil
}

func (m *mapper) handler(n *sitter.Node) (*pyast.Node, error) {
	out := at(pyast.ExceptHandler, n)
	out.Async = n.Type() == "except_group_clause"
	out.Args = []*pyast.Node{nil}

	var exprs []*sitter.Node
	for _, child := range namedChildren(n) {
		if child.Type() == "block" {
			body, err := m.block(child)
			if err != nil {
				return nil, err
			}
			out.Body = body
			continue
		}
		exprs = append(exprs, child)
	}

	if len(exprs) == 1 && exprs[0].Type() == "as_pattern" {
		exprs = namedChildren(exprs[0])
	}

	switch len(exprs) {
	case 0:
	case 1, 2:
		typ, err := m.expr(exprs[0])
		if err != nil {
			return nil, err
		}
		out.Args[0] = typ
		if len(exprs) == 2 {
			out.Name = strings.TrimSpace(m.text(exprs[1]))
		}
	default:
		return nil, unsupported(n)
	}

	return out, nil
}

func (m *mapper) decorated(n *sitter.Node) (*pyast.Node, error) {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return nil, unsupported(n)
	}

	var (
		out *pyast.Node
		err error
	)
	switch def.Type() {
	case "function_definition":
		out, err = m.function(def, n)
	case "class_definition":
		out, err = m.class(def, n)
	default:
		return nil, unsupported(def)
	}
	if err != nil {
		return nil, err
	}

	for _, child := range namedChildren(n) {
		if child.Type() != "decorator" {
			continue
		}
		parts := namedChildren(child)
		if len(parts) != 1 {
			return nil, unsupported(child)
		}
		d, err := m.expr(parts[0])
		if err != nil {
			return nil, err
		}
		out.Decorators = append(out.Decorators, d)
	}

	return out, nil
}

func (m *mapper) function(n, pos *sitter.Node) (*pyast.Node, error) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil, unsupported(n)
	}
	if n.ChildByFieldName("type_parameters") != nil {
		return nil, unsupported(n)
	}

	out := at(pyast.FunctionDef, pos)
	out.Name = m.text(name)
	out.Async = hasToken(n, "async")
	out.Args = []*pyast.Node{nil, nil}

	params, err := m.parameters(n.ChildByFieldName("parameters"))
	if err != nil {
		return nil, err
	}
	out.Args[0] = params

	if ret := n.ChildByFieldName("return_type"); ret != nil {
		r, err := m.expr(ret)
		if err != nil {
			return nil, err
		}
		out.Args[1] = r
	}

	if out.Body, err = m.block(n.ChildByFieldName("body")); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *mapper) class(n, pos *sitter.Node) (*pyast.Node, error) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil, unsupported(n)
	}
	if n.ChildByFieldName("type_parameters") != nil {
		return nil, unsupported(n)
	}

	out := at(pyast.ClassDef, pos)
	out.Name = m.text(name)

	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		args, err := m.callArgs(bases)
		if err != nil {
			return nil, err
		}
		out.Args = args
	}

	body, err := m.block(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}
