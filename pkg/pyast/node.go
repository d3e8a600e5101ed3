package pyast

import "strconv"

// Kind classifies the type of a syntax node.
type Kind uint16

// Node kinds. Statement kinds come first, then expression kinds, then the
// helper kinds that only ever appear inside a parent node.
const (
	Module Kind = iota

	// Statements.
	FunctionDef
	ClassDef
	Return
	Delete
	Assign
	AugAssign
	AnnAssign
	For
	While
	If
	With
	Raise
	Try
	Assert
	Import
	ImportFrom
	Global
	Nonlocal
	Expr
	Pass
	Break
	Continue

	// Expressions.
	BoolOp
	NamedExpr
	BinOp
	UnaryOp
	Lambda
	IfExp
	Dict
	Set
	ListComp
	SetComp
	DictComp
	GeneratorExp
	Await
	Yield
	YieldFrom
	Compare
	Call
	Constant
	Attribute
	Subscript
	Starred
	Name
	List
	Tuple

	// Helpers.
	Operator
	Comprehension
	Keyword
	Arguments
	Arg
	Alias
	WithItem
	Slice
	ExceptHandler
)

var kindNames = [...]string{
	Module:        "Module",
	FunctionDef:   "FunctionDef",
	ClassDef:      "ClassDef",
	Return:        "Return",
	Delete:        "Delete",
	Assign:        "Assign",
	AugAssign:     "AugAssign",
	AnnAssign:     "AnnAssign",
	For:           "For",
	While:         "While",
	If:            "If",
	With:          "With",
	Raise:         "Raise",
	Try:           "Try",
	Assert:        "Assert",
	Import:        "Import",
	ImportFrom:    "ImportFrom",
	Global:        "Global",
	Nonlocal:      "Nonlocal",
	Expr:          "Expr",
	Pass:          "Pass",
	Break:         "Break",
	Continue:      "Continue",
	BoolOp:        "BoolOp",
	NamedExpr:     "NamedExpr",
	BinOp:         "BinOp",
	UnaryOp:       "UnaryOp",
	Lambda:        "Lambda",
	IfExp:         "IfExp",
	Dict:          "Dict",
	Set:           "Set",
	ListComp:      "ListComp",
	SetComp:       "SetComp",
	DictComp:      "DictComp",
	GeneratorExp:  "GeneratorExp",
	Await:         "Await",
	Yield:         "Yield",
	YieldFrom:     "YieldFrom",
	Compare:       "Compare",
	Call:          "Call",
	Constant:      "Constant",
	Attribute:     "Attribute",
	Subscript:     "Subscript",
	Starred:       "Starred",
	Name:          "Name",
	List:          "List",
	Tuple:         "Tuple",
	Operator:      "Operator",
	Comprehension: "Comprehension",
	Keyword:       "Keyword",
	Arguments:     "Arguments",
	Arg:           "Arg",
	Alias:         "Alias",
	WithItem:      "WithItem",
	Slice:         "Slice",
	ExceptHandler: "ExceptHandler",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// KindNames returns the name of every kind in declaration order.
func KindNames() []string {
	names := make([]string, len(kindNames))
	copy(names, kindNames[:])
	return names
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsStmt reports whether k is a statement kind.
func (k Kind) IsStmt() bool {
	return k >= FunctionDef && k <= Continue
}

// IsExpr reports whether k is an expression kind.
func (k Kind) IsExpr() bool {
	return k >= BoolOp && k <= Tuple
}

// IsComprehension reports whether k is one of the comprehension expressions.
func (k Kind) IsComprehension() bool {
	switch k {
	case ListComp, SetComp, DictComp, GeneratorExp:
		return true
	default:
		return false
	}
}

// Node is a single element of a Python syntax tree.
//
// The meaning of Args depends on Kind:
//
//	BinOp          [left, Operator, right]
//	BoolOp         [left, Operator, right]
//	Compare        [left, Operator, comparator, Operator, comparator, ...]
//	UnaryOp        [Operator, operand]
//	Call           [func, args...]  (keywords are Keyword nodes)
//	Keyword        [value]  Name is the keyword; "" means **value
//	Attribute      [value]  Name is the attribute
//	Subscript      [value, index]
//	Slice          [lower, upper, step]  any may be nil
//	Dict           [key, value, ...]  a nil key means **value
//	ListComp etc.  [elt, Comprehension...]; DictComp is [key, value, Comprehension...]
//	Comprehension  [target, iter, conditions...]
//	Lambda         [Arguments or nil, body]
//	IfExp          [body, test, orelse]
//	NamedExpr      [target, value]
//	Arg            [annotation, default]  Name carries "*" or "**" prefixes
//	Assign         [targets..., value]
//	AugAssign      [target, Operator, value]
//	AnnAssign      [target, annotation, value]
//	For            [target, iter]
//	If, While      [test]
//	With           [WithItem...]
//	WithItem       [context, vars]
//	ExceptHandler  [type]  Name is the bound name
//	FunctionDef    [Arguments, returns]
//	ClassDef       [bases and Keyword nodes...]
//	Return, Raise  [value] / [exc, cause]
//	Import(From)   [Alias...]  ImportFrom.Name is the module
//	Alias          Text is the dotted name, Name the asname
//
// Constants, names and operators keep their source spelling in Text.
type Node struct {
	Kind Kind

	// Line is 1-based. Zero means no position was recorded.
	Line int
	// Col is the 0-based byte column.
	Col int

	Parent *Node

	Name string
	Text string

	// Elif marks an If that came from an elif clause.
	Elif  bool
	Async bool

	Args       []*Node
	Body       []*Node
	Else       []*Node
	Final      []*Node
	Handlers   []*Node
	Decorators []*Node
}

// Pos is a recorded (line, column) pair.
type Pos struct {
	Line int
	Col  int
}

// Less orders positions by line, then column.
func (p Pos) Less(o Pos) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

// HasPos reports whether the node records a source position.
func (n *Node) HasPos() bool {
	return n != nil && n.Line > 0
}

// Pos returns the node's position.
func (n *Node) Pos() Pos {
	return Pos{Line: n.Line, Col: n.Col}
}

// Arg returns the i-th slot of Args, or nil.
func (n *Node) Arg(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Args) {
		return nil
	}
	return n.Args[i]
}

// Children returns the direct children in source order, skipping empty slots.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}

	var out []*Node
	add := func(nodes []*Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	add(n.Decorators)
	add(n.Args)

	add(n.Body)
	add(n.Handlers)
	add(n.Else)
	add(n.Final)

	return out
}

// Fragment is anything that can be resolved back to source: a single node or
// a block of statements.
type Fragment interface {
	fragment()
}

func (*Node) fragment() {}

// Block is a list of statements passed around as one unit.
type Block []*Node

func (Block) fragment() {}

// File is a parsed Python source.
type File struct {
	Path    string
	Content []byte
	Root    *Node
}

// Source returns the content as a string.
func (f *File) Source() string {
	return string(f.Content)
}
