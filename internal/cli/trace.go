package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pyextent/internal/logging"
	"github.com/yaklabco/pyextent/internal/ui/pretty"
	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/exactsrc"
	"github.com/yaklabco/pyextent/pkg/parser/treesitter"
	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/source"
	"github.com/yaklabco/pyextent/pkg/trace"
)

type traceFlags struct {
	maxLineLen  int
	bullet      string
	noDedup     bool
	lineNumbers bool
}

func newTraceCommand() *cobra.Command {
	flags := &traceFlags{}

	cmd := &cobra.Command{
		Use:   "trace <file>",
		Short: "Print the trace plan of a file",
		Long: `Print every statement of a file, and every expression inside it that is
not a bare name or a literal, with its recovered source. Nested nodes are
indented under their parents. Source already printed is abbreviated.

Examples:
  pyextent trace app.py
  pyextent trace --no-dedup --bullet "- " app.py
  pyextent trace README.md               # Python code blocks only`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.maxLineLen, "max-line-len", 0, "truncate repeated lines past this length")
	cmd.Flags().StringVar(&flags.bullet, "bullet", "", "prefix for every trace line")
	cmd.Flags().BoolVar(&flags.noDedup, "no-dedup", false, "print repeated source in full")
	cmd.Flags().BoolVar(&flags.lineNumbers, "line-numbers", false, "prefix source lines with line numbers")

	return cmd
}

func runTrace(cmd *cobra.Command, path string, flags *traceFlags) error {
	ctx := commandContext(cmd)

	cli := &config.Config{
		Col: -1,
		Trace: config.TraceConfig{
			MaxLineLen: flags.maxLineLen,
			Bullet:     flags.bullet,
		},
	}
	override := func(c *config.Config) {
		if cmd.Flags().Changed("no-dedup") {
			c.Trace.Dedup = !flags.noDedup
		}
		if cmd.Flags().Changed("line-numbers") {
			c.Resolve.LineNumbers = flags.lineNumbers
		}
	}

	cfg, _, err := loadConfig(ctx, cmd, cli, override)
	if err != nil {
		return err
	}

	units, err := loadUnits(ctx, path, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))

	printer := &trace.Printer{
		Writer:     out,
		MaxLineLen: cfg.Trace.MaxLineLen,
		Bullet:     cfg.Trace.Bullet,
		SkipSame:   true,
	}
	if cfg.Trace.Dedup {
		printer.Cache = trace.NewLineCache()
	}

	parser := treesitter.New(treesitter.WithMaxFileSize(cfg.MaxFileSize))

	for _, unit := range units {
		if len(units) > 1 || unit.Label != unit.Path {
			if err := writeLine(out, styles.FilePath.Render(unit.Label)); err != nil {
				return err
			}
		}
		if err := traceUnit(ctx, parser, printer, unit, cfg.Resolve.LineNumbers); err != nil {
			return err
		}
	}

	return nil
}

func traceUnit(
	ctx context.Context,
	parser *treesitter.Parser,
	printer *trace.Printer,
	unit source.Unit,
	lineNumbers bool,
) error {
	file, err := parser.Parse(ctx, unit.Label, unit.Content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", unit.Label, err)
	}

	entries, err := trace.Plan(ctx, exactsrc.New(file, parser), pyast.Block(file.Root.Body))
	if err != nil {
		return fmt.Errorf("trace %s: %w", unit.Label, err)
	}

	logger := logging.FromContext(ctx)
	for i := range entries {
		e := &entries[i]
		e.Line += unit.LineOffset
		if e.Err != nil {
			logger.Debug("no source for node",
				logging.FieldKind, e.Kind,
				logging.FieldLine, e.Line,
				logging.FieldError, e.Err)
			continue
		}
		if lineNumbers {
			e.Text = exactsrc.Extent{Text: e.Text, Line: e.Line}.Numbered()
		}
	}

	return printer.Print(entries)
}

// loadUnits reads path and splits it into Python source units.
func loadUnits(ctx context.Context, path string, cfg *config.Config) ([]source.Unit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", treesitter.ErrFileTooLarge, info.Size(), cfg.MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	units, err := source.Load(ctx, path, content, source.Options{
		// A Markdown file named explicitly is always read.
		Markdown:       true,
		DetectUntagged: cfg.Markdown.DetectUntagged,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}
	return units, nil
}

// writeLine writes s and a newline, wrapping write errors.
func writeLine(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
