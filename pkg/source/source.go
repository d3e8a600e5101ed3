// Package source splits input files into units of Python source.
//
// A Python file is one unit. A Markdown file contributes one unit per Python
// fenced code block, so examples in documentation can be resolved like any
// other code.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Options controls which units are extracted.
type Options struct {
	// Markdown enables extraction from Markdown files.
	Markdown bool
	// DetectUntagged also extracts fenced blocks with no language tag when
	// their content is classified as Python.
	DetectUntagged bool
}

// Unit is one piece of Python source.
type Unit struct {
	Path string
	// Label identifies the unit in output: the path for Python files,
	// path#L<line> for Markdown blocks.
	Label string
	// LineOffset is added to unit-relative line numbers to get file lines.
	LineOffset int
	Content    []byte
}

// Kind of a source file, from its extension.
type Kind int

// File kinds.
const (
	KindUnknown Kind = iota
	KindPython
	KindMarkdown
)

var extensionKinds = map[string]Kind{
	".py":       KindPython,
	".pyi":      KindPython,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
}

// KindOf classifies path by extension.
func KindOf(path string) Kind {
	return extensionKinds[strings.ToLower(filepath.Ext(path))]
}

// Load returns the Python units of a file.
func Load(ctx context.Context, path string, content []byte, opts Options) ([]Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	switch KindOf(path) {
	case KindPython:
		return []Unit{{Path: path, Label: path, Content: content}}, nil
	case KindMarkdown:
		if !opts.Markdown {
			return nil, nil
		}
		return markdownUnits(ctx, path, content, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}
