package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Printer defaults.
const (
	DefaultMaxLineLen = 40
	DefaultBullet     = "• "
	DefaultIndent     = "    "

	ellipsis = "…"
	arrow    = " -> "
)

// Printer writes trace lines.
type Printer struct {
	Writer io.Writer

	// Cache, when set, abbreviates text whose first line was printed before.
	Cache *LineCache

	// MaxLineLen is the length past which repeated lines are truncated.
	// Zero means DefaultMaxLineLen.
	MaxLineLen int

	// Bullet prefixes every line.
	Bullet string

	// Indent is repeated once per depth level.
	Indent string

	// SkipSame drops single-line "a -> b" text whose halves are equal.
	SkipSame bool
}

// Print writes every entry at its depth. Entries without source print a
// placeholder naming the node.
func (p *Printer) Print(entries []Entry) error {
	w := bufio.NewWriter(p.Writer)

	for _, e := range entries {
		text := e.Text
		if e.Err != nil {
			text = fmt.Sprintf("<no source for %s at %d:%d>", e.Kind, e.Line, e.Col)
		}
		if err := p.write(w, e.Depth, text); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Log writes one piece of text at the given depth.
func (p *Printer) Log(depth int, text string) error {
	w := bufio.NewWriter(p.Writer)
	if err := p.write(w, depth, text); err != nil {
		return err
	}
	return w.Flush()
}

func (p *Printer) write(w io.Writer, depth int, text string) error {
	lines := p.lines(text)
	if len(lines) == 0 {
		return nil
	}

	prefix := strings.Repeat(p.indent(), max(depth, 0)) + p.Bullet
	for _, line := range lines {
		if _, err := io.WriteString(w, prefix+line+"\n"); err != nil {
			return fmt.Errorf("write trace line: %w", err)
		}
	}
	return nil
}

// lines applies the skip and abbreviation rules and returns what to print.
func (p *Printer) lines(text string) []string {
	split := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(split) == 0 || len(split) == 1 && split[0] == "" {
		return nil
	}

	if p.SkipSame && len(split) == 1 {
		if before, after, ok := strings.Cut(split[0], arrow); ok && before == after {
			return nil
		}
	}

	if p.Cache == nil {
		return split
	}

	if !p.Cache.Seen(split[0]) {
		p.Cache.Add(split...)
		return split
	}

	for i, line := range split {
		split[i] = p.truncate(line)
	}
	if len(split) > 2 {
		split = []string{split[0], ellipsis, split[len(split)-1]}
	}
	return split
}

func (p *Printer) truncate(line string) string {
	limit := p.MaxLineLen
	if limit <= 0 {
		limit = DefaultMaxLineLen
	}

	runes := []rune(line)
	if len(runes) > limit && !strings.Contains(line, "->") {
		return string(runes[:limit]) + ellipsis
	}
	return line
}

func (p *Printer) indent() string {
	if p.Indent == "" {
		return DefaultIndent
	}
	return p.Indent
}
