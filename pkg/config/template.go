package config

import (
	"bytes"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every field with its default value.
	// If false, generates a minimal commented template.
	Full bool

	// Kinds lists the node kind names accepted by resolve.kinds. When set,
	// the full template documents them.
	Kinds []string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate(opts)
	}
	return generateMinimalTemplate(), nil
}

func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Output format: text or json
format: text

# Number of parallel workers (0 = auto)
# jobs: 0

# File patterns to ignore (glob patterns)
# ignore:
#   - "venv/**"
#   - "build/**"

# Python blocks in Markdown files
markdown:
  enabled: true
  # detect_untagged: false

# Fragments to resolve (empty = every statement)
# resolve:
#   kinds: [FunctionDef, If]
#   line_numbers: false
#   strict: false

# Trace printer
# trace:
#   max_line_len: 40
#   bullet: "• "
#   dedup: true
`)

	return buf.Bytes()
}

func generateFullTemplate(opts TemplateOptions) ([]byte, error) {
	var header strings.Builder
	header.WriteString(DefaultTemplateHeader())
	header.WriteString("\n#\n# Full template with every setting at its default value.\n")

	if len(opts.Kinds) > 0 {
		fmt.Fprintf(&header, "#\n# resolve.kinds accepts: %s\n",
			wrapComment(strings.Join(opts.Kinds, ", "), commentWrapWidth))
	}

	out, err := NewConfig().ToYAMLWithHeader(header.String())
	if err != nil {
		return nil, fmt.Errorf("generate template: %w", err)
	}
	return out, nil
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n#   ")
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# pyextent configuration
# See: https://github.com/yaklabco/pyextent`
}
