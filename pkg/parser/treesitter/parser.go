// Package treesitter parses Python source into pyast trees using the
// tree-sitter Python grammar.
package treesitter

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/yaklabco/pyextent/pkg/pyast"
)

// DefaultMaxFileSize is the largest source the parser accepts by default.
const DefaultMaxFileSize = 10 * 1024 * 1024

// ErrFileTooLarge is returned when content exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the maximum content size in bytes. Non-positive values
// are ignored.
func WithMaxFileSize(size int64) Option {
	return func(p *Parser) {
		if size > 0 {
			p.maxFileSize = size
		}
	}
}

// Parser converts Python source into a pyast.File.
// It is safe for concurrent use: each call creates its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses content and returns the mapped tree.
//
// Source that does not parse returns an error wrapping pyast.ErrSyntax.
// Valid Python with no tree form returns an error wrapping
// pyast.ErrUnsupported.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*pyast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty parse tree", pyast.ErrSyntax)
	}
	if root.HasError() {
		line, col := firstError(root)
		return nil, fmt.Errorf("%w: %s:%d:%d", pyast.ErrSyntax, path, line, col)
	}

	m := &mapper{src: content}
	module, err := m.module(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pyast.Link(module)

	return &pyast.File{Path: path, Content: content, Root: module}, nil
}

// firstError returns the 1-based line and 0-based column of the first ERROR
// or MISSING node.
func firstError(n *sitter.Node) (int, int) {
	if n.Type() == "ERROR" || n.IsMissing() {
		p := n.StartPoint()
		return int(p.Row) + 1, int(p.Column)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstError(child)
	}
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}
