package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/pyextent/pkg/langdetect"
)

// ErrUnsupportedFile is returned for files that are neither Python nor
// Markdown.
var ErrUnsupportedFile = errors.New("unsupported file type")

//nolint:gochecknoglobals // goldmark.Markdown is safe for concurrent use
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func markdownUnits(ctx context.Context, path string, content []byte, opts Options) ([]Unit, error) {
	reader := text.NewReader(content)
	doc := markdown.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	var units []Unit
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		code, firstLine := blockContent(block, content)
		if firstLine < 0 {
			return ast.WalkSkipChildren, nil
		}

		info := ""
		if block.Info != nil {
			info = string(block.Info.Value(content))
		}

		switch {
		case langdetect.IsPythonTag(info):
		case info == "" && opts.DetectUntagged && langdetect.IsPython(code):
		default:
			return ast.WalkSkipChildren, nil
		}

		units = append(units, Unit{
			Path:       path,
			Label:      fmt.Sprintf("%s#L%d", path, firstLine+1),
			LineOffset: firstLine,
			Content:    code,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	return units, nil
}

// blockContent joins the content lines of a fenced block and returns the
// zero-based file line of the first one, or -1 for an empty block.
func blockContent(block *ast.FencedCodeBlock, content []byte) ([]byte, int) {
	lines := block.Lines()
	if lines.Len() == 0 {
		return nil, -1
	}

	var buf bytes.Buffer
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(content))
	}

	first := lines.At(0).Start
	return buf.Bytes(), bytes.Count(content[:first], []byte("\n"))
}
