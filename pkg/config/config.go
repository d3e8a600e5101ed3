// Package config defines core configuration types for pyextent.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

// OutputFormat specifies the output format for resolved extents.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// Default limits.
const (
	DefaultMaxFileSize  int64 = 10 << 20
	DefaultTraceLineLen       = 40
	DefaultTraceBullet        = "• "
)

// MarkdownConfig controls extraction of Python blocks from Markdown files.
type MarkdownConfig struct {
	// Enabled includes .md and .markdown files in discovery.
	Enabled bool `yaml:"enabled"`

	// DetectUntagged classifies fenced blocks without a language tag.
	DetectUntagged bool `yaml:"detect_untagged"`
}

// ResolveConfig controls which fragments are resolved and how extents print.
type ResolveConfig struct {
	// Kinds restricts resolution to these node kinds, e.g. "If", "Call".
	// Empty means every statement.
	Kinds []string `yaml:"kinds,omitempty"`

	// LineNumbers prefixes extent lines with their file line number.
	LineNumbers bool `yaml:"line_numbers"`

	// Strict counts approximate extents as failures.
	Strict bool `yaml:"strict"`
}

// TraceConfig controls the trace printer.
type TraceConfig struct {
	// MaxLineLen truncates repeated lines longer than this.
	MaxLineLen int `yaml:"max_line_len"`

	// Bullet prefixes every printed line.
	Bullet string `yaml:"bullet"`

	// Dedup abbreviates text whose first line was already printed.
	Dedup bool `yaml:"dedup"`
}

// Config is the root configuration structure for pyextent.
type Config struct {
	// Format specifies the output format.
	Format OutputFormat `yaml:"format"`

	// Jobs specifies the number of parallel workers. 0 means NumCPU.
	Jobs int `yaml:"jobs"`

	// MaxFileSize is the largest file, in bytes, that is parsed.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `yaml:"ignore,omitempty"`

	Markdown MarkdownConfig `yaml:"markdown"`
	Resolve  ResolveConfig  `yaml:"resolve"`
	Trace    TraceConfig    `yaml:"trace"`

	// CLI-level options (not persisted to config files).

	// Line and Col restrict resolution to nodes at that position. Line is
	// 1-based and zero means any line. Col is a 0-based column offset, only
	// applies together with Line, and a negative value means any column.
	Line int `yaml:"-"`
	Col  int `yaml:"-"`

	// Output is a file the report is written to instead of stdout.
	Output string `yaml:"-"`

	// Watch re-runs resolution when files change.
	Watch bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Format:      FormatText,
		Jobs:        0,
		MaxFileSize: DefaultMaxFileSize,
		Markdown: MarkdownConfig{
			Enabled: true,
		},
		Trace: TraceConfig{
			MaxLineLen: DefaultTraceLineLen,
			Bullet:     DefaultTraceBullet,
			Dedup:      true,
		},
	}
}
