package source_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/source"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want source.Kind
	}{
		{"a.py", source.KindPython},
		{"stubs/a.pyi", source.KindPython},
		{"README.md", source.KindMarkdown},
		{"docs/GUIDE.Markdown", source.KindMarkdown},
		{"main.go", source.KindUnknown},
		{"Makefile", source.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, source.KindOf(tt.path))
		})
	}
}

func TestLoadPython(t *testing.T) {
	t.Parallel()

	units, err := source.Load(context.Background(), "a.py", []byte("x = 1\n"), source.Options{})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "a.py", units[0].Label)
	assert.Equal(t, 0, units[0].LineOffset)
	assert.Equal(t, "x = 1\n", string(units[0].Content))
}

const doc = "# Title\n" +
	"\n" +
	"```python\n" +
	"x = 1\n" +
	"y = x + 1\n" +
	"```\n" +
	"\n" +
	"```go\n" +
	"package main\n" +
	"```\n" +
	"\n" +
	"```\n" +
	"def f(a):\n" +
	"    return a\n" +
	"```\n" +
	"\n" +
	"```py3\n" +
	"```\n"

func TestLoadMarkdown(t *testing.T) {
	t.Parallel()

	units, err := source.Load(context.Background(), "doc.md", []byte(doc), source.Options{Markdown: true})
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Equal(t, "doc.md#L4", units[0].Label)
	assert.Equal(t, 3, units[0].LineOffset)
	assert.Equal(t, "x = 1\ny = x + 1\n", string(units[0].Content))
}

func TestLoadMarkdownUntagged(t *testing.T) {
	t.Parallel()

	units, err := source.Load(context.Background(), "doc.md", []byte(doc),
		source.Options{Markdown: true, DetectUntagged: true})
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "doc.md#L13", units[1].Label)
	assert.Equal(t, "def f(a):\n    return a\n", string(units[1].Content))
}

func TestLoadMarkdownDisabled(t *testing.T) {
	t.Parallel()

	units, err := source.Load(context.Background(), "doc.md", []byte(doc), source.Options{})
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := source.Load(context.Background(), "main.go", nil, source.Options{})
	require.ErrorIs(t, err, source.ErrUnsupportedFile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.Load(ctx, "a.py", nil, source.Options{})
	require.ErrorIs(t, err, context.Canceled)
}
