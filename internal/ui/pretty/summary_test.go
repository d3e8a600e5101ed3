package pretty_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/pyextent/internal/ui/pretty"
	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/runner"
)

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "clean",
			stats: runner.Stats{FilesProcessed: 1, Extents: 1},
			want:  "1 extent in 1 file\n",
		},
		{
			name:  "approximate and unresolved",
			stats: runner.Stats{FilesProcessed: 3, Extents: 12, Approximate: 1, Failed: 2},
			want:  "12 extents in 3 files, 1 approximate, 2 unresolved\n",
		},
		{
			name:  "errors",
			stats: runner.Stats{FilesProcessed: 2, FilesErrored: 1, UnitsErrored: 1},
			want:  "0 extents in 2 files, 2 errors\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(runner.Stats{FilesProcessed: 10, Units: 12, Extents: 40, Failed: 3})
	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Files processed:   10")
	assert.Contains(t, result, "Extents resolved:  40")
	assert.Contains(t, result, "Unresolved:        3")
	assert.Contains(t, result, "Some extents could not be resolved")
	assert.NotContains(t, result, "Files errored")

	result = styles.FormatSummary(runner.Stats{FilesProcessed: 1, Extents: 1})
	assert.Contains(t, result, "All extents resolved")
}

func TestFormatRecord(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	got := styles.FormatRecord("a.py", runner.Record{
		Kind: pyast.If, Line: 2, Col: 0, Text: "if x:\n    y",
	})
	assert.Equal(t, "  a.py:2:0  If\n    if x:\n        y\n", got)

	got = styles.FormatRecord("a.py", runner.Record{
		Kind: pyast.If, Line: 4, Col: 5, Text: "elif b:\n    2", Approximate: true,
	})
	assert.Equal(t, "  a.py:4:5  If  approximate\n    elif b:\n        2\n", got)

	got = styles.FormatRecord("a.py", runner.Record{Kind: pyast.Call, Line: 1, Err: errors.New("boom")})
	assert.Equal(t, "  a.py:1:0  Call  unresolved  boom\n", got)

	assert.Equal(t, "a.py (1 extent)", styles.FormatFileHeader("a.py", 1))
}
