package trace_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/exactsrc"
	"github.com/yaklabco/pyextent/pkg/parser/treesitter"
	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/trace"
)

func TestPlan(t *testing.T) {
	t.Parallel()

	src := "x = [1, 2]\ny = f(x) + 1\nx[i + 1] = y"
	parser := treesitter.New()
	file, err := parser.Parse(context.Background(), "t.py", []byte(src))
	require.NoError(t, err)

	entries, err := trace.Plan(context.Background(), exactsrc.New(file, parser), pyast.Block(file.Root.Body))
	require.NoError(t, err)

	type row struct {
		Kind  pyast.Kind
		Depth int
		Text  string
	}
	got := make([]row, 0, len(entries))
	for _, e := range entries {
		require.NoError(t, e.Err)
		got = append(got, row{e.Kind, e.Depth, e.Text})
	}

	assert.Equal(t, []row{
		{pyast.Assign, 0, "x = [1, 2]"},
		{pyast.Assign, 0, "y = f(x) + 1"},
		{pyast.BinOp, 1, "f(x) + 1"},
		{pyast.Call, 2, "f(x)"},
		{pyast.Assign, 0, "x[i + 1] = y"},
		{pyast.BinOp, 1, "i + 1"},
	}, got)
}

func TestPlanSliceIndex(t *testing.T) {
	t.Parallel()

	src := "y = x[a + 1, b:c]\n"
	parser := treesitter.New()
	file, err := parser.Parse(context.Background(), "t.py", []byte(src))
	require.NoError(t, err)

	entries, err := trace.Plan(context.Background(), exactsrc.New(file, parser), pyast.Block(file.Root.Body))
	require.NoError(t, err)

	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		require.NoError(t, e.Err)
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"y = x[a + 1, b:c]", "x[a + 1, b:c]", "a + 1"}, texts)
}

type failingLocator struct{}

func (failingLocator) Locate(context.Context, pyast.Fragment) (exactsrc.Extent, error) {
	return exactsrc.Extent{}, exactsrc.ErrNoMatchingExtent
}

func TestPlanRecordsFailures(t *testing.T) {
	t.Parallel()

	stmt := pyast.At(pyast.Pass, 3, 4)

	entries, err := trace.Plan(context.Background(), failingLocator{}, stmt)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.ErrorIs(t, entries[0].Err, exactsrc.ErrNoMatchingExtent)

	var buf bytes.Buffer
	p := &trace.Printer{Writer: &buf}
	require.NoError(t, p.Print(entries))
	assert.Equal(t, "<no source for Pass at 3:4>\n", buf.String())
}

func TestPlanCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := trace.Plan(ctx, failingLocator{}, pyast.At(pyast.Pass, 1, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPrinterIndentAndBullet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &trace.Printer{Writer: &buf, Bullet: trace.DefaultBullet}

	err := p.Print([]trace.Entry{
		{Depth: 0, Text: "y = f(x)"},
		{Depth: 1, Text: "f(x)"},
	})
	require.NoError(t, err)
	assert.Equal(t, "• y = f(x)\n    • f(x)\n", buf.String())
}

func TestPrinterCache(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cache := trace.NewLineCache()
	p := &trace.Printer{Writer: &buf, Cache: cache, MaxLineLen: 5}

	require.NoError(t, p.Log(0, "abcdefgh"))
	require.NoError(t, p.Log(0, "abcdefgh"))
	require.NoError(t, p.Log(0, "l1\nl2\nl3"))
	require.NoError(t, p.Log(0, "l1\nl2\nl3"))
	require.NoError(t, p.Log(0, "abcdefgh -> 1"))
	require.NoError(t, p.Log(0, "abcdefgh -> 1"))

	assert.Equal(t,
		"abcdefgh\nabcde…\nl1\nl2\nl3\nl1\n…\nl3\nabcdefgh -> 1\nabcdefgh -> 1\n",
		buf.String())
	assert.Equal(t, 5, cache.Len())
}

func TestPrinterSkipSame(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &trace.Printer{Writer: &buf, SkipSame: true}

	require.NoError(t, p.Log(0, "a -> a"))
	require.NoError(t, p.Log(0, "a -> b"))
	require.NoError(t, p.Log(0, ""))

	assert.Equal(t, "a -> b\n", buf.String())
}

func TestLineCache(t *testing.T) {
	t.Parallel()

	var cache trace.LineCache
	assert.False(t, cache.Seen("x"))

	cache.Add("x", "y", "x")
	assert.True(t, cache.Seen("x"))
	assert.Equal(t, 2, cache.Len())
}
