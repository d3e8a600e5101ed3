package trace

import "sync"

// LineCache remembers printed lines so repeated output can be abbreviated.
// The zero value is ready to use and it is safe for concurrent use.
type LineCache struct {
	mu    sync.Mutex
	lines map[string]struct{}
}

// NewLineCache returns an empty cache.
func NewLineCache() *LineCache {
	return &LineCache{}
}

// Seen reports whether line was added before.
func (c *LineCache) Seen(line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.lines[line]
	return ok
}

// Add records lines.
func (c *LineCache) Add(lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lines == nil {
		c.lines = make(map[string]struct{}, len(lines))
	}
	for _, line := range lines {
		c.lines[line] = struct{}{}
	}
}

// Len returns the number of distinct lines recorded.
func (c *LineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}
