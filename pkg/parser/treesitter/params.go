package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// parameters maps a parameters or lambda_parameters node. A nil node yields an
// empty parameter list.
func (m *mapper) parameters(n *sitter.Node) (*pyast.Node, error) {
	out := pyast.NewNode(pyast.Arguments)
	if n == nil {
		return out, nil
	}

	for _, child := range namedChildren(n) {
		a, err := m.param(child)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, a)
	}
	return out, nil
}

func (m *mapper) param(n *sitter.Node) (*pyast.Node, error) {
	switch n.Type() {
	case "identifier":
		a := at(pyast.Arg, n)
		a.Name = m.text(n)
		a.Args = []*pyast.Node{nil, nil}
		return a, nil

	case "list_splat_pattern", "dictionary_splat_pattern":
		prefix := "*"
		if n.Type() == "dictionary_splat_pattern" {
			prefix = "**"
		}
		children := namedChildren(n)
		if len(children) != 1 {
			return nil, unsupported(n)
		}
		a := at(pyast.Arg, children[0])
		a.Name = prefix + m.text(children[0])
		a.Args = []*pyast.Node{nil, nil}
		return a, nil

	case "keyword_separator":
		return &pyast.Node{Kind: pyast.Arg, Name: "*", Args: []*pyast.Node{nil, nil}}, nil
	case "positional_separator":
		return &pyast.Node{Kind: pyast.Arg, Name: "/", Args: []*pyast.Node{nil, nil}}, nil

	case "typed_parameter":
		typ := n.ChildByFieldName("type")
		var inner *sitter.Node
		for _, child := range namedChildren(n) {
			if typ == nil || child.StartByte() != typ.StartByte() {
				inner = child
				break
			}
		}
		if inner == nil || typ == nil {
			return nil, unsupported(n)
		}
		a, err := m.param(inner)
		if err != nil {
			return nil, err
		}
		if a.Args[0], err = m.expr(typ); err != nil {
			return nil, err
		}
		return a, nil

	case "default_parameter", "typed_default_parameter":
		name, value := n.ChildByFieldName("name"), n.ChildByFieldName("value")
		if name == nil || value == nil || name.Type() != "identifier" {
			return nil, unsupported(n)
		}
		a, err := m.param(name)
		if err != nil {
			return nil, err
		}
		if typ := n.ChildByFieldName("type"); typ != nil {
			if a.Args[0], err = m.expr(typ); err != nil {
				return nil, err
			}
		}
		if a.Args[1], err = m.expr(value); err != nil {
			return nil, err
		}
		return a, nil

	default:
		return nil, unsupported(n)
	}
}
