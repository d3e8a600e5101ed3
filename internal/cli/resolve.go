package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pyextent/internal/logging"
	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/fsutil"
	"github.com/yaklabco/pyextent/pkg/parser/treesitter"
	"github.com/yaklabco/pyextent/pkg/reporter"
	"github.com/yaklabco/pyextent/pkg/runner"
	"github.com/yaklabco/pyextent/pkg/source"
	"github.com/yaklabco/pyextent/pkg/watch"
)

type resolveFlags struct {
	format         string
	kinds          []string
	ignore         []string
	markdown       bool
	detectUntagged bool
	lineNumbers    bool
	strict         bool
	failuresOnly   bool
	compact        bool
}

func newResolveCommand() *cobra.Command {
	var cfg config.Config
	flags := &resolveFlags{}

	cmd := &cobra.Command{
		Use:   "resolve [paths...]",
		Short: "Resolve the source extents of selected fragments",
		Long:  resolveLongDescription,
		Args:  cobra.ArbitraryArgs,
		Annotations: map[string]string{
			annotationKinds: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, &cfg, flags)
		},
	}

	addResolveFlags(cmd, &cfg, flags)

	return cmd
}

const resolveLongDescription = `Resolve the exact source text of Python statements and expressions.

By default, resolves every statement in all .py and .pyi files, and in the
Python code blocks of .md files, under the current directory. Specify paths
to resolve specific files or directories.

Examples:
  pyextent resolve                       # Every statement under .
  pyextent resolve app.py --line 12      # Statements starting on line 12
  pyextent resolve --kind Call,Lambda    # Only calls and lambdas
  pyextent resolve --format json -o x.json
  pyextent resolve --watch src/          # Re-run when sources change`

func addResolveFlags(cmd *cobra.Command, cfg *config.Config, flags *resolveFlags) {
	cmd.Flags().StringSliceVar(&flags.kinds, "kind", nil, "node kinds to resolve (default: all statements)")
	cmd.Flags().IntVar(&cfg.Line, "line", 0, "only fragments starting on this line (0 = any)")
	cmd.Flags().IntVar(&cfg.Col, "col", -1, "only fragments starting at this column offset (-1 = any)")
	cmd.Flags().BoolVar(&flags.lineNumbers, "line-numbers", false, "prefix extent lines with source line numbers")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: text, json")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&flags.markdown, "markdown", true, "resolve Python code blocks in Markdown files")
	cmd.Flags().BoolVar(&flags.detectUntagged, "detect-untagged", false,
		"also resolve untagged Markdown code blocks detected as Python")
	cmd.Flags().BoolVar(&cfg.Watch, "watch", false, "re-run when a source file changes")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat approximate extents as failures")
	cmd.Flags().BoolVar(&flags.failuresOnly, "failures-only", false, "only print extents that failed or are approximate")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "write compact JSON")
}

func runResolve(cmd *cobra.Command, args []string, cli *config.Config, flags *resolveFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	cli.Format = config.OutputFormat(flags.format)
	cli.Ignore = flags.ignore
	cli.Resolve.Kinds = flags.kinds

	changed := cmd.Flags().Changed
	override := func(c *config.Config) {
		if changed("markdown") {
			c.Markdown.Enabled = flags.markdown
		}
		if changed("detect-untagged") {
			c.Markdown.DetectUntagged = flags.detectUntagged
		}
		if changed("line-numbers") {
			c.Resolve.LineNumbers = flags.lineNumbers
		}
		if changed("strict") {
			c.Resolve.Strict = flags.strict
		}
	}

	cfg, workDir, err := loadConfig(ctx, cmd, cli, override)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logging.FieldFormat, cfg.Format,
		logging.FieldJobs, cfg.Jobs,
		logging.FieldLine, cfg.Line,
		logging.FieldCol, cfg.Col,
	)

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}

	pass := &resolvePass{
		runner: runner.New(treesitter.New(treesitter.WithMaxFileSize(cfg.MaxFileSize))),
		opts: runner.Options{
			Paths:        args,
			WorkingDir:   workDir,
			ExcludeGlobs: cfg.Ignore,
			Jobs:         cfg.Jobs,
			Config:       cfg,
		},
		report: reporter.Options{
			Writer:       cmd.OutOrStdout(),
			Format:       format,
			Color:        colorMode(cmd),
			ShowSummary:  true,
			ShowResolved: !flags.failuresOnly,
			Strict:       cfg.Resolve.Strict,
			Compact:      flags.compact,
			WorkingDir:   workDir,
		},
		output: cfg.Output,
	}

	if !cfg.Watch {
		return pass.run(ctx)
	}
	return watchResolve(ctx, pass, args)
}

// resolvePass runs the resolver once and reports the result.
type resolvePass struct {
	runner *runner.Runner
	opts   runner.Options
	report reporter.Options
	output string
}

func (p *resolvePass) run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	logger.Debug("starting resolve run",
		logging.FieldPaths, p.opts.Paths,
		logging.FieldWorkingDir, p.opts.WorkingDir,
		logging.FieldJobs, p.opts.Jobs,
	)

	result, err := p.runner.Run(ctx, p.opts)
	if err != nil {
		return fmt.Errorf("resolve run failed: %w", err)
	}

	repOpts := p.report
	var buf bytes.Buffer
	if p.output != "" {
		repOpts.Writer = &buf
		repOpts.Color = "never"
	}

	rep, err := reporter.New(repOpts)
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if p.output != "" {
		written, err := fsutil.WriteAtomicIfChanged(ctx, p.output, buf.Bytes(), fsutil.DefaultFileMode)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Debug("report output", logging.FieldOutput, p.output, logging.FieldWritten, written)
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrUnresolvedExtents
	}
	return nil
}

// watchResolve runs pass once, then again after every change to a Python
// or Markdown file under paths, until interrupted.
func watchResolve(ctx context.Context, pass *resolvePass, paths []string) error {
	logger := logging.FromContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if len(paths) == 0 {
		paths = []string{pass.opts.WorkingDir}
	}

	watcher, err := watch.New()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	var report string
	if pass.output != "" {
		report, _ = filepath.Abs(pass.output)
	}

	tracker := fsutil.NewTracker()
	changes := make(chan string, 1)
	notify := func(path string) {
		if path == report || source.KindOf(path) == source.KindUnknown {
			return
		}
		select {
		case changes <- path:
		default:
		}
	}

	for _, path := range paths {
		if err := watcher.Watch(path, notify); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	rerun := func() error {
		err := pass.run(ctx)
		if err == nil || errors.Is(err, ErrUnresolvedExtents) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if err := rerun(); err != nil {
		return err
	}
	logger.Info("watching for changes", logging.FieldPaths, paths)

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changes:
			changed, err := tracker.Changed(ctx, path)
			if err != nil {
				logger.Debug("could not read changed file", logging.FieldPath, path, logging.FieldError, err)
			} else if !changed {
				continue
			}
			logger.Info("source changed", logging.FieldPath, path)
			if pass.output == "" {
				printSeparator(pass.report.Writer)
			}
			if err := rerun(); err != nil {
				return err
			}
		}
	}
}

func printSeparator(w io.Writer) {
	_, _ = io.WriteString(w, "\n")
}
