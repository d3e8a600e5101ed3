package pyast_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// buildTree returns the tree of:
//
//	x = a + 1
//	if x:
//	    pass
func buildTree() *pyast.Node {
	assign := pyast.At(pyast.Assign, 1, 0)
	sum := pyast.At(pyast.BinOp, 1, 4)
	sum.Args = []*pyast.Node{
		{Kind: pyast.Name, Line: 1, Col: 4, Text: "a"},
		{Kind: pyast.Operator, Text: "+"},
		{Kind: pyast.Constant, Line: 1, Col: 8, Text: "1"},
	}
	assign.Args = []*pyast.Node{{Kind: pyast.Name, Line: 1, Col: 0, Text: "x"}, sum}

	ifStmt := pyast.At(pyast.If, 2, 0)
	ifStmt.Args = []*pyast.Node{{Kind: pyast.Name, Line: 2, Col: 3, Text: "x"}}
	ifStmt.Body = []*pyast.Node{pyast.At(pyast.Pass, 3, 4)}

	root := pyast.NewNode(pyast.Module)
	root.Body = []*pyast.Node{assign, ifStmt}
	pyast.Link(root)

	return root
}

func TestWalk(t *testing.T) {
	t.Parallel()

	var visited []pyast.Kind
	err := pyast.Walk(buildTree(), func(n *pyast.Node) error {
		visited = append(visited, n.Kind)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []pyast.Kind{
		pyast.Module,
		pyast.Assign, pyast.Name, pyast.BinOp, pyast.Name, pyast.Operator, pyast.Constant,
		pyast.If, pyast.Name, pyast.Pass,
	}, visited)
}

func TestWalkStopsOnError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	count := 0
	err := pyast.Walk(buildTree(), func(n *pyast.Node) error {
		count++
		if n.Kind == pyast.BinOp {
			return stop
		}
		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 4, count)
}

func TestWalkWithContext(t *testing.T) {
	t.Parallel()

	depth, maxDepth := 0, 0
	err := pyast.WalkWithContext(buildTree(),
		func(*pyast.Node) error {
			depth++
			maxDepth = max(maxDepth, depth)
			return nil
		},
		func(*pyast.Node) error {
			depth--
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
	assert.Equal(t, 4, maxDepth)
}

func TestWalkFragmentBlock(t *testing.T) {
	t.Parallel()

	root := buildTree()
	var kinds []pyast.Kind
	err := pyast.WalkFragment(pyast.Block(root.Body[1:]), func(n *pyast.Node) error {
		kinds = append(kinds, n.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []pyast.Kind{pyast.If, pyast.Name, pyast.Pass}, kinds)
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := buildTree()

	names := pyast.FindByKind(root, pyast.Name)
	assert.Len(t, names, 3)

	first := pyast.FindFirst(root, func(n *pyast.Node) bool { return n.Kind == pyast.Pass })
	require.NotNil(t, first)
	assert.Equal(t, pyast.Pos{Line: 3, Col: 4}, first.Pos())
	assert.Equal(t, pyast.If, first.Parent.Kind)

	assert.Nil(t, pyast.FindFirst(root, func(n *pyast.Node) bool { return n.Kind == pyast.Call }))
}

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind          pyast.Kind
		stmt, expr    bool
		comprehension bool
	}{
		{pyast.If, true, false, false},
		{pyast.Continue, true, false, false},
		{pyast.BoolOp, false, true, false},
		{pyast.GeneratorExp, false, true, true},
		{pyast.DictComp, false, true, true},
		{pyast.Tuple, false, true, false},
		{pyast.Operator, false, false, false},
		{pyast.Module, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.stmt, tt.kind.IsStmt())
			assert.Equal(t, tt.expr, tt.kind.IsExpr())
			assert.Equal(t, tt.comprehension, tt.kind.IsComprehension())
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	kind, ok := pyast.ParseKind("ListComp")
	require.True(t, ok)
	assert.Equal(t, pyast.ListComp, kind)

	_, ok = pyast.ParseKind("Nope")
	assert.False(t, ok)

	assert.Equal(t, "Kind(999)", pyast.Kind(999).String())
}

func TestPosLess(t *testing.T) {
	t.Parallel()

	assert.True(t, pyast.Pos{Line: 1, Col: 9}.Less(pyast.Pos{Line: 2, Col: 0}))
	assert.True(t, pyast.Pos{Line: 2, Col: 0}.Less(pyast.Pos{Line: 2, Col: 1}))
	assert.False(t, pyast.Pos{Line: 2, Col: 1}.Less(pyast.Pos{Line: 2, Col: 1}))
}
