package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/runner"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relAll(t *testing.T, dir string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tree := map[string]string{
		"main.py":                     "x = 1\n",
		"pkg/mod.py":                  "y = 2\n",
		"pkg/types.pyi":               "z: int\n",
		"pkg/__pycache__/mod.py":      "",
		"README.md":                   "# hi\n",
		"docs/guide.markdown":         "# guide\n",
		"notes.txt":                   "",
		".hidden.py":                  "",
		".venv/lib/site.py":           "",
		"vendor/third/party.py":       "",
		"tests/fixtures/broken.py":    "",
		"tests/test_mod.py":           "",
		"build/lib/generated_code.py": "",
	}

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "defaults include markdown",
			opts: runner.Options{Config: config.NewConfig()},
			want: []string{
				"README.md", "build/lib/generated_code.py", "docs/guide.markdown", "main.py",
				"pkg/mod.py", "pkg/types.pyi", "tests/fixtures/broken.py",
				"tests/test_mod.py", "vendor/third/party.py",
			},
		},
		{
			name: "python only",
			opts: runner.Options{Config: &config.Config{}},
			want: []string{
				"build/lib/generated_code.py", "main.py", "pkg/mod.py", "pkg/types.pyi",
				"tests/fixtures/broken.py", "tests/test_mod.py", "vendor/third/party.py",
			},
		},
		{
			name: "exclude globs",
			opts: runner.Options{
				Config:       &config.Config{},
				ExcludeGlobs: []string{"vendor/**", "**/fixtures", "build/**"},
			},
			want: []string{"main.py", "pkg/mod.py", "pkg/types.pyi", "tests/test_mod.py"},
		},
		{
			name: "include globs",
			opts: runner.Options{
				Config:       &config.Config{},
				IncludeGlobs: []string{"pkg/**"},
			},
			want: []string{"pkg/mod.py", "pkg/types.pyi"},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Extensions: []string{".pyi"}},
			want: []string{"pkg/types.pyi"},
		},
		{
			name: "single file and directory deduplicated",
			opts: runner.Options{
				Config: &config.Config{},
				Paths:  []string{"pkg/mod.py", "pkg", "pkg/mod.py"},
			},
			want: []string{"pkg/mod.py", "pkg/types.pyi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeTree(t, dir, tree)

			opts := tt.opts
			opts.WorkingDir = dir

			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relAll(t, dir, files))
		})
	}
}

func TestDiscoverMissingPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Paths:      []string{"nope"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": ""})
	writeTree(t, outside, map[string]string{"lib/b.py": ""})

	if err := os.Symlink(filepath.Join(outside, "lib"), filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
