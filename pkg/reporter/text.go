package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/pyextent/internal/ui/pretty"
	"github.com/yaklabco/pyextent/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No Python sources found."))
		}
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		total += r.reportFile(file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}

func (r *TextReporter) reportFile(file runner.FileOutcome) int {
	path := r.opts.displayPath(file.Path)

	if file.Error != nil {
		fmt.Fprint(r.bw, r.styles.FormatError(path, file.Error))
		return 0
	}

	shown := r.visible(file)
	if shown == 0 {
		return 0
	}

	fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, shown))

	for _, unit := range file.Units {
		label := r.opts.unitLabel(file, unit)
		if unit.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatError(label, unit.Error))
			continue
		}
		for _, rec := range unit.Records {
			if r.show(rec) {
				fmt.Fprint(r.bw, r.styles.FormatRecord(path, rec))
			}
		}
	}

	fmt.Fprintln(r.bw)
	return shown
}

// visible counts the records and unit errors printed for file.
func (r *TextReporter) visible(file runner.FileOutcome) int {
	var n int
	for _, unit := range file.Units {
		if unit.Error != nil {
			n++
			continue
		}
		for _, rec := range unit.Records {
			if r.show(rec) {
				n++
			}
		}
	}
	return n
}

func (r *TextReporter) show(rec runner.Record) bool {
	return r.opts.ShowResolved || rec.Failed(r.opts.Strict) || rec.Approximate
}
