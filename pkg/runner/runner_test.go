package runner_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/parser/treesitter"
	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/runner"
)

type row struct {
	Kind pyast.Kind
	Line int
	Text string
}

func rows(unit runner.UnitOutcome) []row {
	out := make([]row, 0, len(unit.Records))
	for _, rec := range unit.Records {
		out = append(out, row{rec.Kind, rec.Line, rec.Text})
	}
	return out
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":      "x = 1\nif x:\n    y = 2\n",
		"README.md": "# Doc\n\n```python\nz = 3\n```\n",
	})

	result, err := runner.New(treesitter.New()).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Jobs:       2,
		Config:     config.NewConfig(),
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	md, py := result.Files[0], result.Files[1]
	assert.Equal(t, filepath.Join(dir, "README.md"), md.Path)
	assert.Equal(t, filepath.Join(dir, "a.py"), py.Path)

	require.Len(t, md.Units, 1)
	assert.True(t, strings.HasSuffix(md.Units[0].Label, "README.md#L4"))
	assert.Equal(t, []row{{pyast.Assign, 4, "z = 3"}}, rows(md.Units[0]))

	require.Len(t, py.Units, 1)
	assert.Equal(t, []row{
		{pyast.Assign, 1, "x = 1"},
		{pyast.If, 2, "if x:\n    y = 2"},
		{pyast.Assign, 3, "y = 2"},
	}, rows(py.Units[0]))

	assert.Equal(t, runner.Stats{
		FilesDiscovered: 2,
		FilesProcessed:  2,
		Units:           2,
		Extents:         4,
	}, result.Stats)
	assert.False(t, result.HasFailures())
}

func TestRunSelection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py": "x = f(1)\ny = f(2) + g(3)\n",
	})

	tests := []struct {
		name string
		cfg  func(*config.Config)
		want []row
	}{
		{
			name: "kinds",
			cfg:  func(c *config.Config) { c.Resolve.Kinds = []string{"Call"} },
			want: []row{
				{pyast.Call, 1, "f(1)"},
				{pyast.Call, 2, "f(2)"},
				{pyast.Call, 2, "g(3)"},
			},
		},
		{
			name: "line",
			cfg:  func(c *config.Config) { c.Line = 2 },
			want: []row{{pyast.Assign, 2, "y = f(2) + g(3)"}},
		},
		{
			name: "line and col",
			cfg: func(c *config.Config) {
				c.Resolve.Kinds = []string{"Call", "BinOp"}
				c.Line = 2
				c.Col = 4
			},
			want: []row{
				{pyast.BinOp, 2, "f(2) + g(3)"},
				{pyast.Call, 2, "f(2)"},
			},
		},
		{
			name: "line numbers",
			cfg: func(c *config.Config) {
				c.Line = 1
				c.Resolve.LineNumbers = true
			},
			want: []row{{pyast.Assign, 1, "1 | x = f(1)"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.Col = -1
			tt.cfg(cfg)

			result, err := runner.New(treesitter.New()).Run(context.Background(), runner.Options{
				WorkingDir: dir,
				Config:     cfg,
			})
			require.NoError(t, err)
			require.Len(t, result.Files, 1)
			require.Len(t, result.Files[0].Units, 1)
			assert.Equal(t, tt.want, rows(result.Files[0].Units[0]))
		})
	}
}

func TestRunSelectionMarkdownLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"README.md": "# Doc\n\n```python\nz = 3\nw = 4\n```\n",
	})

	tests := []struct {
		name string
		line int
		want []row
	}{
		{name: "file line of first statement", line: 4, want: []row{{pyast.Assign, 4, "z = 3"}}},
		{name: "file line of second statement", line: 5, want: []row{{pyast.Assign, 5, "w = 4"}}},
		{name: "block relative line", line: 1, want: []row{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.Line = tt.line
			cfg.Col = -1

			result, err := runner.New(treesitter.New()).Run(context.Background(), runner.Options{
				WorkingDir: dir,
				Config:     cfg,
			})
			require.NoError(t, err)
			require.Len(t, result.Files, 1)
			require.Len(t, result.Files[0].Units, 1)
			assert.Equal(t, tt.want, rows(result.Files[0].Units[0]))
		})
	}
}

func TestRunFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"bad.py":  "def (:\n",
		"good.py": "x = 1\n",
	})

	result, err := runner.New(treesitter.New()).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Config:     config.NewConfig(),
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	bad := result.Files[0]
	require.Len(t, bad.Units, 1)
	require.ErrorIs(t, bad.Units[0].Error, pyast.ErrSyntax)

	assert.Equal(t, 1, result.Stats.UnitsErrored)
	assert.Equal(t, 1, result.Stats.Extents)
	assert.True(t, result.HasFailures())
}

func TestRunFileTooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"big.py": strings.Repeat("x = 1\n", 10)})

	cfg := config.NewConfig()
	cfg.MaxFileSize = 8

	result, err := runner.New(treesitter.New()).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Config:     cfg,
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.ErrorIs(t, result.Files[0].Error, runner.ErrFileTooLarge)
	assert.Equal(t, 1, result.Stats.FilesErrored)
}

func TestRunUnknownKind(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Resolve.Kinds = []string{"Banana"}

	_, err := runner.New(treesitter.New()).Run(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Config:     cfg,
	})
	require.ErrorIs(t, err, runner.ErrUnknownKind)
}

func TestResultHasFailures(t *testing.T) {
	t.Parallel()

	var nilResult *runner.Result
	assert.False(t, nilResult.HasFailures())

	approx := &runner.Result{Stats: runner.Stats{Extents: 1, Approximate: 1}}
	assert.False(t, approx.HasFailures())

	approx.Strict = true
	assert.True(t, approx.HasFailures())

	rec := runner.Record{Approximate: true}
	assert.False(t, rec.Failed(false))
	assert.True(t, rec.Failed(true))
}
