// Package output renders validation reports in the supported report formats.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

const separatorWidth = 80

// TableFormatter formats validation reports as a human-readable table.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true,
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the validation report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(report *dto.ValidationReport) error {
	if report == nil || report.Batch == nil {
		return errors.New("report is empty")
	}
	batch := report.Batch

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", separatorWidth), colorGray))
	fmt.Fprintf(f.writer, "Rulebook: %s (engine %s)\n", f.colorize("v"+report.RulebookVersion, colorBold), report.EngineVersion)
	fmt.Fprintf(f.writer, "Report:   %s\n", batch.ReportID.String())
	fmt.Fprintf(f.writer, "Validated: %s\n", batch.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", batch.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(batch.Results) == 0 {
		fmt.Fprintln(f.writer, "No units validated.")
	} else {
		fmt.Fprintln(f.writer, f.colorize("Units:", colorBold))
		fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", separatorWidth), colorGray))
		for i, result := range batch.Results {
			f.formatResult(result, report.SourceOf(i))
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, f.colorize("Skipped:", colorBold))
		for _, skipped := range report.Skipped {
			fmt.Fprintf(f.writer, "  %s %s %s: %s\n",
				f.colorize("⊘", colorGray),
				displayUnitID(skipped.UnitID),
				f.colorize("("+skipped.Source+")", colorGray),
				skipped.Reason,
			)
		}
	}

	fmt.Fprintln(f.writer)
	f.formatSummary(report)
	return nil
}

//nolint:errcheck
func (f *TableFormatter) formatResult(result validation.Result, source string) {
	symbol := f.colorize("✓", colorGreen)
	scoreColor := colorGreen
	switch {
	case !result.Valid:
		symbol = f.colorize("✗", colorRed)
		scoreColor = colorRed
	case result.Summary.Warnings > 0:
		symbol = f.colorize("⚠", colorYellow)
		scoreColor = colorYellow
	}

	line := fmt.Sprintf("%s %s", symbol, f.colorize(displayUnitID(result.UnitID), colorBold))
	if source != "" {
		line += " " + f.colorize("("+source+")", colorGray)
	}
	fmt.Fprintf(f.writer, "%s  score %s\n", line, f.colorize(fmt.Sprintf("%d", result.Score), scoreColor))

	for _, issue := range result.Issues {
		f.formatIssue(issue)
	}
}

//nolint:errcheck
func (f *TableFormatter) formatIssue(issue validation.Issue) {
	symbol, color := f.severityStyle(issue.Severity)

	location := string(issue.Code)
	if issue.Field != "" {
		location += " (" + issue.Field + ")"
	}
	fmt.Fprintf(f.writer, "  %s %s %s: %s\n",
		f.colorize(symbol, color),
		f.colorize("["+issue.Severity.String()+"]", color),
		location,
		issue.Message,
	)
	if issue.Suggestion != "" {
		fmt.Fprintf(f.writer, "      %s %s\n", f.colorize("Suggestion:", colorCyan), issue.Suggestion)
	}
}

func (f *TableFormatter) severityStyle(sev values.Severity) (string, string) {
	switch {
	case sev.Equals(values.SevCritical):
		return "✗", colorRed + colorBold
	case sev.Equals(values.SevError):
		return "✗", colorRed
	case sev.Equals(values.SevWarning):
		return "⚠", colorYellow
	default:
		return "ℹ", colorBlue
	}
}

//nolint:errcheck
func (f *TableFormatter) formatSummary(report *dto.ValidationReport) {
	batch := report.Batch

	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", separatorWidth), colorGray))
	fmt.Fprintf(f.writer, "Total units:   %d\n", batch.Total)
	fmt.Fprintf(f.writer, "  %s Valid:     %d\n", f.colorize("✓", colorGreen), batch.ValidCount)
	if batch.InvalidCount > 0 {
		fmt.Fprintf(f.writer, "  %s Invalid:   %d\n", f.colorize("✗", colorRed), batch.InvalidCount)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(f.writer, "  %s Skipped:   %d\n", f.colorize("⊘", colorGray), len(report.Skipped))
	}
	fmt.Fprintf(f.writer, "Average score: %.1f\n", batch.AverageScore)

	if len(batch.CommonIssues) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, f.colorize("Common issues:", colorBold))
		for _, freq := range batch.CommonIssues {
			fmt.Fprintf(f.writer, "  %4d × %s\n", freq.Count, freq.Code)
		}
	}

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", separatorWidth), colorGray))
}

// displayUnitID names units that failed to load.
func displayUnitID(id string) string {
	if id == "" {
		return "(malformed)"
	}
	return id
}
