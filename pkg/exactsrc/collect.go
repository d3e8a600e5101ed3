package exactsrc

import (
	"slices"

	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/unparse"
)

// Positions walks every node of frag and returns the sorted, distinct
// positions of the nodes that render standalone. Nodes that cannot be
// rendered on their own are skipped; the walk never stops early.
func Positions(frag pyast.Fragment) ([]pyast.Pos, error) {
	var out []pyast.Pos

	err := pyast.WalkFragment(frag, func(n *pyast.Node) error {
		ok, err := unparse.Standalone(n)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, n.Pos())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b pyast.Pos) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return slices.Compact(out), nil
}
