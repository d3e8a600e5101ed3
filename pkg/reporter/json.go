package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/pyextent/pkg/runner"
)

// jsonVersion is the version of the JSON output layout.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path  string     `json:"path"`
	Units []JSONUnit `json:"units"`
	Error string     `json:"error,omitempty"`
}

// JSONUnit represents one source unit of a file.
type JSONUnit struct {
	Label      string       `json:"label"`
	LineOffset int          `json:"lineOffset"`
	Extents    []JSONExtent `json:"extents"`
	Error      string       `json:"error,omitempty"`
}

// JSONExtent represents one resolved or failed fragment.
type JSONExtent struct {
	Kind        string `json:"kind"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Text        string `json:"text,omitempty"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Approximate bool   `json:"approximate,omitempty"`
	Error       string `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesProcessed int `json:"filesProcessed"`
	FilesErrored   int `json:"filesErrored"`
	Units          int `json:"units"`
	UnitsErrored   int `json:"unitsErrored"`
	Extents        int `json:"extents"`
	Approximate    int `json:"approximate"`
	Failed         int `json:"failed"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output, count := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return count, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) (*JSONOutput, int) {
	output := &JSONOutput{
		Version: jsonVersion,
		Files:   make([]JSONFileResult, 0),
	}

	if result == nil {
		return output, 0
	}

	var count int
	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:  r.opts.displayPath(file.Path),
			Units: make([]JSONUnit, 0, len(file.Units)),
		}
		if file.Error != nil {
			fileResult.Error = file.Error.Error()
		}

		for _, unit := range file.Units {
			ju := JSONUnit{
				Label:      r.opts.unitLabel(file, unit),
				LineOffset: unit.LineOffset,
				Extents:    make([]JSONExtent, 0, len(unit.Records)),
			}
			if unit.Error != nil {
				ju.Error = unit.Error.Error()
			}
			for _, rec := range unit.Records {
				ju.Extents = append(ju.Extents, jsonExtent(rec))
				count++
			}
			fileResult.Units = append(fileResult.Units, ju)
		}

		output.Files = append(output.Files, fileResult)
	}

	s := result.Stats
	output.Summary = JSONSummary{
		FilesProcessed: s.FilesProcessed,
		FilesErrored:   s.FilesErrored,
		Units:          s.Units,
		UnitsErrored:   s.UnitsErrored,
		Extents:        s.Extents,
		Approximate:    s.Approximate,
		Failed:         s.Failed,
	}

	return output, count
}

func jsonExtent(rec runner.Record) JSONExtent {
	ext := JSONExtent{
		Kind:        rec.Kind.String(),
		Line:        rec.Line,
		Column:      rec.Col,
		Text:        rec.Text,
		StartOffset: rec.Start,
		EndOffset:   rec.End,
		Approximate: rec.Approximate,
	}
	if rec.Err != nil {
		ext.Error = rec.Err.Error()
	}
	return ext
}
