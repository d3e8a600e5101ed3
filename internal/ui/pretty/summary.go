package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/pyextent/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "12 extents in 3 files, 1 approximate, 2 unresolved".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	parts := []string{fmt.Sprintf("%d %s in %d %s",
		stats.Extents, plural(stats.Extents, "extent", "extents"),
		stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))}

	if stats.Approximate > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d approximate", stats.Approximate)))
	}
	if stats.Failed > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d unresolved", stats.Failed)))
	}
	if errs := stats.FilesErrored + stats.UnitsErrored; errs > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d %s", errs, plural(errs, "error", "errors"))))
	}

	line := strings.Join(parts, ", ")
	if stats.Failed == 0 && stats.FilesErrored == 0 && stats.UnitsErrored == 0 {
		line = s.Success.Render(line)
	}
	return line + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label string, value int, style func(...string) string) {
		fmt.Fprintf(&builder, "  %-19s%s\n", label+":", style(strconv.Itoa(value)))
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row("Files processed", stats.FilesProcessed, s.SummaryValue.Render)
	if stats.FilesErrored > 0 {
		row("Files errored", stats.FilesErrored, s.Failure.Render)
	}
	row("Source units", stats.Units, s.SummaryValue.Render)
	if stats.UnitsErrored > 0 {
		row("Units errored", stats.UnitsErrored, s.Failure.Render)
	}

	builder.WriteString("\n")

	row("Extents resolved", stats.Extents, s.SummaryValue.Render)
	if stats.Approximate > 0 {
		row("Approximate", stats.Approximate, s.Warning.Render)
	}
	if stats.Failed > 0 {
		row("Unresolved", stats.Failed, s.Failure.Render)
	}

	builder.WriteString("\n")

	switch {
	case stats.Failed > 0 || stats.FilesErrored > 0 || stats.UnitsErrored > 0:
		builder.WriteString(s.Failure.Render("Some extents could not be resolved"))
	case stats.Approximate > 0:
		builder.WriteString(s.Warning.Render("Resolved with approximations"))
	default:
		builder.WriteString(s.Success.Render("All extents resolved"))
	}
	builder.WriteString("\n")

	return builder.String()
}
