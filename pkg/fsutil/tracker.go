package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Tracker remembers the content hash of files so that a change
// notification can be checked against what was last seen. Editors often
// touch a file without changing it.
type Tracker struct {
	mu     sync.Mutex
	hashes map[string][32]byte
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{hashes: make(map[string][32]byte)}
}

// Changed hashes the current content of path, records it, and reports
// whether it differs from the previous record. The first call for a path
// reports true. A deleted file is reported changed if it was tracked, and
// is then forgotten.
func (t *Tracker) Changed(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check changed: %w", err)
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.mu.Lock()
		defer t.mu.Unlock()
		_, known := t.hashes[path]
		delete(t.hashes, path)
		return known, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	sum := sha256.Sum256(content)

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, known := t.hashes[path]
	t.hashes[path] = sum
	return !known || prev != sum, nil
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.hashes)
}
