package runner

import "github.com/yaklabco/pyextent/pkg/pyast"

// Record is the outcome of resolving one fragment.
type Record struct {
	Kind pyast.Kind
	// Line is the file line of the fragment; Col is its column offset.
	Line int
	Col  int

	// Text is the resolved source, line-numbered when requested.
	Text string

	// Start and End are linear offsets within the unit.
	Start int
	End   int

	// Approximate is set when Text is a fallback guess.
	Approximate bool

	// Err is set when the fragment could not be resolved.
	Err error
}

// Failed reports whether the record counts as a failure. Approximate
// extents fail only in strict mode.
func (r Record) Failed(strict bool) bool {
	return r.Err != nil || strict && r.Approximate
}

// UnitOutcome holds the records of one source unit.
type UnitOutcome struct {
	Label      string
	LineOffset int
	Records    []Record

	// Error is set when the unit could not be parsed.
	Error error
}

// FileOutcome holds the units of one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	Units []UnitOutcome

	// Error is set if the file could not be read or split into units.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int

	Units        int
	UnitsErrored int

	Extents     int
	Approximate int
	Failed      int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	Stats Stats

	// Strict is copied from the configuration and decides HasFailures.
	Strict bool
}

// HasFailures reports whether any fragment or unit failed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	s := r.Stats
	if r.Strict && s.Approximate > 0 {
		return true
	}
	return s.Failed > 0 || s.UnitsErrored > 0 || s.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	r.Stats.FilesProcessed++

	for _, unit := range outcome.Units {
		r.Stats.Units++
		if unit.Error != nil {
			r.Stats.UnitsErrored++
			continue
		}
		for _, rec := range unit.Records {
			switch {
			case rec.Err != nil:
				r.Stats.Failed++
			case rec.Approximate:
				r.Stats.Approximate++
				r.Stats.Extents++
			default:
				r.Stats.Extents++
			}
		}
	}
}
