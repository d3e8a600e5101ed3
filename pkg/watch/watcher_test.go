package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/watch"
)

func waitFor(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, path string) <-chan string {
	t.Helper()

	w, err := watch.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changed := make(chan string, 16)
	require.NoError(t, w.Watch(path, func(p string) { changed <- p }))

	// Give the watcher time to start.
	time.Sleep(50 * time.Millisecond)
	return changed
}

func resolved(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.EvalSymlinks(filepath.Dir(path))
	require.NoError(t, err)
	return filepath.Join(p, filepath.Base(path))
}

func TestWatch_FileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(file, []byte("x = 2\n"), 0o644))

	got, ok := waitFor(changed, 2*time.Second)
	require.True(t, ok, "expected a change for a.py")
	assert.Equal(t, resolved(t, file), resolved(t, got))
}

func TestWatch_NewSubdirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changed := startWatcher(t, dir)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "b.py")
	require.NoError(t, os.WriteFile(file, []byte("y = 1\n"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-changed:
			if filepath.Base(got) == "b.py" {
				return
			}
		case <-deadline:
			t.Fatal("expected a change for pkg/b.py")
		}
	}
}

func TestWatch_IgnoredDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cache := filepath.Join(dir, "__pycache__")
	require.NoError(t, os.Mkdir(cache, 0o755))

	changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(cache, "a.cpython-312.pyc"), []byte{0}, 0o644))

	_, ok := waitFor(changed, 300*time.Millisecond)
	assert.False(t, ok, "changes under __pycache__ are not reported")
}

func TestWatch_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.py")
	other := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	changed := startWatcher(t, file)
	require.NoError(t, os.WriteFile(other, []byte("y = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("x = 2\n"), 0o644))

	got, ok := waitFor(changed, 2*time.Second)
	require.True(t, ok, "expected a change for a.py")
	assert.Equal(t, "a.py", filepath.Base(got))
}

func TestWatch_SeveralPaths(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()

	w, err := watch.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changed := make(chan string, 16)
	notify := func(p string) { changed <- p }
	require.NoError(t, w.Watch(first, notify))
	require.NoError(t, w.Watch(second, notify))
	time.Sleep(50 * time.Millisecond)

	for _, dir := range []string{first, second} {
		file := filepath.Join(dir, "a.py")
		require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

		got, ok := waitFor(changed, 2*time.Second)
		require.True(t, ok, "expected a change under %s", dir)
		assert.Equal(t, resolved(t, file), resolved(t, got))

		// Drain the duplicate create/write events of the same save.
		time.Sleep(100 * time.Millisecond)
		for len(changed) > 0 {
			<-changed
		}
	}
}

func TestWatch_Errors(t *testing.T) {
	t.Parallel()

	w, err := watch.New()
	require.NoError(t, err)

	err = w.Watch(filepath.Join(t.TempDir(), "missing"), func(string) {})
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "Stop is idempotent")

	err = w.Watch(t.TempDir(), func(string) {})
	require.ErrorIs(t, err, watch.ErrStopped)
}
