package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing string
		content  string
		mode     os.FileMode
		wantMode os.FileMode
	}{
		{name: "new file", content: "x = 1\n", wantMode: fsutil.DefaultFileMode},
		{name: "overwrite", existing: "old", content: "new", mode: 0o600, wantMode: 0o600},
		{name: "empty content", existing: "old", content: "", wantMode: fsutil.DefaultFileMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "report.json")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o644))
			}

			require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte(tt.content), tt.mode))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(got))

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, tt.wantMode, info.Mode().Perm())
			}

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files left behind")
		})
	}
}

func TestWriteAtomic_Errors(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.ErrorIs(t, fsutil.WriteAtomic(ctx, path, []byte("x"), 0), context.Canceled)
	assert.NoFileExists(t, path)

	missingDir := filepath.Join(t.TempDir(), "missing", "a.txt")
	require.Error(t, fsutil.WriteAtomic(context.Background(), missingDir, []byte("x"), 0))
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.txt")

	written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("one"), 0)
	require.NoError(t, err)
	assert.True(t, written, "missing file is written")

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("one"), 0)
	require.NoError(t, err)
	assert.False(t, written, "same content is skipped")

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("two"), 0)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestTracker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	tracker := fsutil.NewTracker()

	changed, err := tracker.Changed(ctx, path)
	require.NoError(t, err)
	assert.True(t, changed, "first sighting counts as a change")

	changed, err = tracker.Changed(ctx, path)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0o644))
	changed, err = tracker.Changed(ctx, path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, tracker.Len())

	require.NoError(t, os.Remove(path))
	changed, err = tracker.Changed(ctx, path)
	require.NoError(t, err)
	assert.True(t, changed, "deleting a tracked file is a change")
	assert.Equal(t, 0, tracker.Len())

	changed, err = tracker.Changed(ctx, filepath.Join(dir, "never.py"))
	require.NoError(t, err)
	assert.False(t, changed)
}
