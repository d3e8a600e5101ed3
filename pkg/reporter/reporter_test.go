package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/exactsrc"
	"github.com/yaklabco/pyextent/pkg/pyast"
	"github.com/yaklabco/pyextent/pkg/reporter"
	"github.com/yaklabco/pyextent/pkg/runner"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "json", want: reporter.FormatJSON},
		{input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatJSON})
	require.NoError(t, err)
	assert.IsType(t, &reporter.JSONReporter{}, rep)

	rep, err = reporter.New(reporter.Options{Writer: &buf})
	require.NoError(t, err)
	assert.IsType(t, &reporter.TextReporter{}, rep)

	rep, err = reporter.New(reporter.Options{Writer: &buf, Format: "xml"})
	require.Error(t, err)
	assert.Nil(t, rep)
}

func sampleResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Path: "/work/a.py",
				Units: []runner.UnitOutcome{{
					Label: "/work/a.py",
					Records: []runner.Record{
						{Kind: pyast.Assign, Line: 1, Col: 0, Text: "x = 1", Start: 0, End: 5},
						{Kind: pyast.If, Line: 4, Col: 5, Text: "elif b:\n    2", Start: 20, End: 34, Approximate: true},
						{Kind: pyast.Call, Line: 6, Col: 0, Err: exactsrc.ErrNoMatchingExtent},
					},
				}},
			},
			{
				Path: "/work/docs/README.md",
				Units: []runner.UnitOutcome{{
					Label:      "/work/docs/README.md#L4",
					LineOffset: 3,
					Error:      errors.New("syntax error"),
				}},
			},
			{Path: "/work/big.py", Error: errors.New("file too large")},
		},
		Stats: runner.Stats{
			FilesProcessed: 2, FilesErrored: 1, Units: 2, UnitsErrored: 1,
			Extents: 2, Approximate: 1, Failed: 1,
		},
	}
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:       &buf,
		Color:        "never",
		ShowSummary:  true,
		ShowResolved: true,
		WorkingDir:   "/work",
	})

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	want := "a.py (3 extents)\n" +
		"  a.py:1:0  Assign\n" +
		"    x = 1\n" +
		"  a.py:4:5  If  approximate\n" +
		"    elif b:\n" +
		"        2\n" +
		"  a.py:6:0  Call  unresolved  no matching source extent\n" +
		"\n" +
		"docs/README.md (1 extent)\n" +
		"docs/README.md#L4: error: syntax error\n" +
		"\n" +
		"big.py: error: file too large\n" +
		"2 extents in 2 files, 1 approximate, 1 unresolved, 2 errors\n"
	assert.Equal(t, want, buf.String())
}

func TestTextReporterFailuresOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never"})

	result := sampleResult()
	result.Files = result.Files[:1]

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NotContains(t, buf.String(), "x = 1")
	assert.Contains(t, buf.String(), "approximate")
	assert.Contains(t, buf.String(), "unresolved")
}

func TestTextReporterEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "No Python sources found.\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: "/work"})

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var out reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "1.0.0", out.Version)
	require.Len(t, out.Files, 3)

	a := out.Files[0]
	assert.Equal(t, "a.py", a.Path)
	require.Len(t, a.Units, 1)
	require.Len(t, a.Units[0].Extents, 3)
	assert.Equal(t, reporter.JSONExtent{
		Kind: "If", Line: 4, Column: 5, Text: "elif b:\n    2",
		StartOffset: 20, EndOffset: 34, Approximate: true,
	}, a.Units[0].Extents[1])
	assert.Equal(t, "no matching source extent", a.Units[0].Extents[2].Error)

	assert.Equal(t, "docs/README.md#L4", out.Files[1].Units[0].Label)
	assert.Equal(t, "syntax error", out.Files[1].Units[0].Error)
	assert.Equal(t, "file too large", out.Files[2].Error)

	assert.Equal(t, reporter.JSONSummary{
		FilesProcessed: 2, FilesErrored: 1, Units: 2, UnitsErrored: 1,
		Extents: 2, Approximate: 1, Failed: 1,
	}, out.Summary)
}

func TestJSONReporterCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0","files":[],"summary":{"filesProcessed":0,"filesErrored":0,"units":0,"unitsErrored":0,"extents":0,"approximate":0,"failed":0}}`, buf.String())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}
