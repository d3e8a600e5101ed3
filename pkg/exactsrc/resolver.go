// Package exactsrc recovers the exact source text of syntax tree fragments.
//
// Tree nodes only record where they start. To find where a fragment ends, the
// resolver takes the start offsets of every node in the whole tree, bounds the
// search by the first offset after the fragment's last node, and tries each
// candidate end offset in turn until the substring reparses to a tree that
// renders identically to the fragment.
package exactsrc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/yaklabco/pyextent/internal/logging"
	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/unparse"
)

// elifMargin is len("elif "): an elif test starts this far right of the
// column its body lines are indented relative to.
const elifMargin = 5

// Parser parses Python source. It must report unparseable text with an error
// wrapping pyast.ErrSyntax or pyast.ErrUnsupported.
type Parser interface {
	Parse(ctx context.Context, path string, content []byte) (*pyast.File, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLineNumbers makes Resolve annotate returned text with source line
// numbers.
func WithLineNumbers(enabled bool) Option {
	return func(r *Resolver) {
		r.lineNumbers = enabled
	}
}

// Resolver maps fragments of one parsed file back to their source text.
// It is safe for concurrent use.
type Resolver struct {
	file        *pyast.File
	src         string
	parser      Parser
	lineNumbers bool

	lineLengths func() []int
	index       func() ([]int, error)
}

// New creates a resolver for file. The line-length table and offset index are
// computed on first use and shared by every later query.
func New(file *pyast.File, parser Parser, opts ...Option) *Resolver {
	r := &Resolver{
		file:   file,
		src:    file.Source(),
		parser: parser,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.lineLengths = sync.OnceValue(func() []int {
		return LineLengths(r.src)
	})
	r.index = sync.OnceValues(func() ([]int, error) {
		positions, err := Positions(r.file.Root)
		if err != nil {
			return nil, fmt.Errorf("collect tree positions: %w", err)
		}
		return offsetIndex(positions, r.lineLengths(), len(r.src))
	})

	return r
}

// Index returns the offset index of the whole tree, ending with len(src).
func (r *Resolver) Index() ([]int, error) {
	return r.index()
}

// Resolve returns the source text of frag.
func (r *Resolver) Resolve(ctx context.Context, frag pyast.Fragment) (string, error) {
	ext, err := r.Locate(ctx, frag)
	if err != nil {
		return "", err
	}
	if r.lineNumbers {
		return ext.Numbered(), nil
	}
	return ext.Text, nil
}

// Func returns Resolve bound to ctx.
func (r *Resolver) Func(ctx context.Context) func(pyast.Fragment) (string, error) {
	return func(frag pyast.Fragment) (string, error) {
		return r.Resolve(ctx, frag)
	}
}

// Locate finds the extent of frag in the source.
func (r *Resolver) Locate(ctx context.Context, frag pyast.Fragment) (Extent, error) {
	samples, err := Positions(frag)
	if err != nil {
		return Extent{}, fmt.Errorf("collect fragment positions: %w", err)
	}
	if len(samples) == 0 {
		return Extent{}, fmt.Errorf("%w: fragment has no positioned nodes", ErrMalformedQuery)
	}

	index, err := r.index()
	if err != nil {
		return Extent{}, err
	}

	lines := r.lineLengths()
	first, last := samples[0], samples[len(samples)-1]

	start, err := LinearOffset(lines, first.Line, first.Col)
	if err != nil {
		return Extent{}, err
	}
	end, err := LinearOffset(lines, last.Line, last.Col)
	if err != nil {
		return Extent{}, err
	}

	pos, found := slices.BinarySearch(index, end)
	if !found {
		return Extent{}, fmt.Errorf("%w: offset %d of %d:%d is not a node start in this tree",
			ErrMalformedQuery, end, last.Line, last.Col)
	}
	succ := successor(index, pos)
	if start > end || succ > len(r.src) {
		return Extent{}, fmt.Errorf("%w: offsets %d..%d outside source of %d bytes",
			ErrMalformedQuery, start, succ, len(r.src))
	}

	want, err := unparse.Render(frag)
	if err != nil {
		return Extent{}, fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	shape := shapeOf(frag)
	want = shape.key(strings.TrimSpace(want))

	logger := logging.FromContext(ctx)
	logger.Debug("resolving extent",
		logging.FieldKind, shape.label(),
		logging.FieldSamples, len(samples),
		logging.FieldStart, start,
		logging.FieldLast, end,
		logging.FieldSuccessor, succ,
		logging.FieldCandidates, succ-end+1,
	)

	var lastCandidate candidate
	for stop := end; stop <= succ; stop++ {
		if err := ctx.Err(); err != nil {
			return Extent{}, fmt.Errorf("resolve cancelled: %w", err)
		}

		c := shape.normalize(r.src[start:stop])
		ok, err := r.matches(ctx, c.probe, want)
		if err != nil {
			return Extent{}, err
		}
		if ok {
			return Extent{Text: c.result(), Start: start, End: stop, Line: first.Line}, nil
		}
		lastCandidate = c
	}

	if shape.kind == pyast.If && shape.node {
		logger.Warn("no exact extent for if statement, assuming elif",
			logging.FieldLine, first.Line,
			logging.FieldCol, first.Col,
		)
		return Extent{
			Text:        "elif " + lastCandidate.text,
			Start:       start,
			End:         succ,
			Line:        first.Line,
			Approximate: true,
		}, nil
	}

	return Extent{}, fmt.Errorf("%w: %s at %d:%d", ErrNoMatchingExtent, shape.label(), first.Line, first.Col)
}

// successor returns the first index entry strictly after index[pos], or the
// final entry when the index is exhausted.
func successor(index []int, pos int) int {
	last := index[pos]
	next := min(pos+1, len(index)-1)
	for index[next] <= last {
		if next == len(index)-1 {
			break
		}
		next++
	}
	return index[next]
}

// matches reparses probe and compares its canonical rendering with want.
// Text that is not valid Python is a mismatch, not an error.
func (r *Resolver) matches(ctx context.Context, probe, want string) (bool, error) {
	parsed, err := r.parser.Parse(ctx, r.file.Path, []byte(probe))
	if err != nil {
		if pyast.IsGrammarError(err) {
			return false, nil
		}
		return false, fmt.Errorf("reparse candidate: %w", err)
	}

	got, err := unparse.Render(parsed.Root)
	if err != nil {
		if errors.Is(err, unparse.ErrMalformed) || errors.Is(err, unparse.ErrNotStandalone) {
			return false, nil
		}
		return false, err
	}

	return strings.TrimSpace(got) == want, nil
}
