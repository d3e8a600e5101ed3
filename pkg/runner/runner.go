package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/yaklabco/pyextent/internal/logging"
	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/exactsrc"
	"github.com/yaklabco/pyextent/pkg/source"
)

// ErrFileTooLarge is returned for files over the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// Runner resolves extents across files using a shared parser.
type Runner struct {
	Parser exactsrc.Parser
}

// New creates a new Runner with the given parser.
func New(parser exactsrc.Parser) *Runner {
	return &Runner{Parser: parser}
}

// Run discovers files under opts.Paths and processes them concurrently.
// Outcomes are returned in path order regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.config()

	sel, err := NewSelector(cfg)
	if err != nil {
		return nil, err
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files:  make([]FileOutcome, 0, len(files)),
		Strict: cfg.Resolve.Strict,
	}
	result.Stats.FilesDiscovered = len(files)

	logging.FromContext(ctx).Debug("discovered files",
		logging.FieldFilesDiscovered, len(files))

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, cfg, sel)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	cfg *config.Config,
	sel Selector,
) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := r.ProcessFile(ctx, path, cfg, sel)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// ProcessFile reads one file and resolves the selected fragments of each of
// its units.
func (r *Runner) ProcessFile(ctx context.Context, path string, cfg *config.Config, sel Selector) FileOutcome {
	outcome := FileOutcome{Path: path}

	content, err := readFile(path, cfg.MaxFileSize)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	units, err := source.Load(ctx, path, content, source.Options{
		Markdown:       cfg.Markdown.Enabled,
		DetectUntagged: cfg.Markdown.DetectUntagged,
	})
	if err != nil {
		outcome.Error = err
		return outcome
	}

	for _, unit := range units {
		outcome.Units = append(outcome.Units, r.processUnit(ctx, unit, cfg, sel))
	}

	logging.FromContext(ctx).Debug("processed file",
		logging.FieldPath, path,
		logging.FieldUnits, len(units))

	return outcome
}

func (r *Runner) processUnit(ctx context.Context, unit source.Unit, cfg *config.Config, sel Selector) UnitOutcome {
	out := UnitOutcome{Label: unit.Label, LineOffset: unit.LineOffset}
	ctx = logging.WithUnit(ctx, unit.Label)

	file, err := r.Parser.Parse(ctx, unit.Label, unit.Content)
	if err != nil {
		out.Error = err
		return out
	}

	resolver := exactsrc.New(file, r.Parser)

	for _, node := range sel.Select(file.Root, unit.LineOffset) {
		if ctx.Err() != nil {
			out.Error = ctx.Err()
			return out
		}

		rec := Record{
			Kind: node.Kind,
			Line: node.Line + unit.LineOffset,
			Col:  node.Col,
		}

		ext, err := resolver.Locate(ctx, node)
		if err != nil {
			rec.Err = err
			out.Records = append(out.Records, rec)
			continue
		}

		ext.Line += unit.LineOffset
		rec.Text = ext.Text
		if cfg.Resolve.LineNumbers {
			rec.Text = ext.Numbered()
		}
		rec.Start, rec.End = ext.Start, ext.End
		rec.Approximate = ext.Approximate
		out.Records = append(out.Records, rec)
	}

	return out
}

func readFile(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), limit)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}
