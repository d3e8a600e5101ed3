package exactsrc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// LineLengths returns the byte length of every line of src, split on "\n".
// A trailing newline produces a final zero-length line.
func LineLengths(src string) []int {
	lines := strings.Split(src, "\n")
	lengths := make([]int, len(lines))
	for i, line := range lines {
		lengths[i] = len(line)
	}
	return lengths
}

// LinearOffset converts a 1-based line and 0-based column into a byte offset:
// the lengths of all preceding lines, one newline after each, plus col.
func LinearOffset(lineLengths []int, line, col int) (int, error) {
	if line < 1 || line > len(lineLengths) {
		return 0, fmt.Errorf("%w: line %d outside 1..%d", ErrMalformedQuery, line, len(lineLengths))
	}
	if col < 0 {
		return 0, fmt.Errorf("%w: negative column %d", ErrMalformedQuery, col)
	}

	prev := 0
	for _, length := range lineLengths[:line-1] {
		prev += length
	}
	prev += line - 2

	return prev + col + 1, nil
}

// BuildOffsetIndex returns the sorted, distinct linear offsets of every
// position recorded in tree, followed by len(src) as the end sentinel.
func BuildOffsetIndex(tree *pyast.Node, src string) ([]int, error) {
	positions, err := Positions(tree)
	if err != nil {
		return nil, err
	}
	return offsetIndex(positions, LineLengths(src), len(src))
}

func offsetIndex(positions []pyast.Pos, lineLengths []int, size int) ([]int, error) {
	index := make([]int, 0, len(positions)+1)
	for _, p := range positions {
		off, err := LinearOffset(lineLengths, p.Line, p.Col)
		if err != nil {
			return nil, err
		}
		if off > size {
			return nil, fmt.Errorf("%w: %d:%d is past the end of the source", ErrMalformedQuery, p.Line, p.Col)
		}
		index = append(index, off)
	}
	index = append(index, size)

	slices.Sort(index)
	return slices.Compact(index), nil
}
