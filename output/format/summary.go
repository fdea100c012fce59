package format

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ansel1/tangview/results"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Indentation constants
const (
	IndentLevel1 = "  "   // 2 spaces
	IndentLevel2 = "    " // 4 spaces
)

// maxFailureLines caps how many lines of each failure message are shown.
const maxFailureLines = 10

// expandTabs replaces tab characters with spaces.
func expandTabs(s string, tabWidth int) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteRune(r)
			col = 0
		case '\t':
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// FileRow is one test file of a summary, in display order.
type FileRow struct {
	results.ShapedResult
	Counts         RootRowCounts
	Class          RowClass
	StartMs        float64
	EndMs          float64
	FailureMessage string
}

// Failure is a failed test case and the file that contains it.
type Failure struct {
	File string
	Test results.TestCaseResult
}

// Summary represents computed summary statistics from a report.
type Summary struct {
	Files        []FileRow
	TotalTests   int
	PassedTests  int
	FailedTests  int
	PendingTests int
	TodoTests    int
	TotalSuites  int
	FailedSuites int
	StartTime    int64   // ms epoch
	TotalTimeMs  float64 // from StartTime to the latest file end
	Success      bool
	Failures     []Failure
	ExecErrors   []FileRow
	SlowFiles    []FileRow
}

// ComputeSummary calculates summary statistics from a Report.
//
// Files are ordered slowest first. Files taking at least slowThreshold are
// listed as slow.
func ComputeSummary(report *results.Report, slowThreshold time.Duration) *Summary {
	summary := &Summary{
		StartTime:   report.StartTime,
		TotalSuites: len(report.TestResults),
		Success:     !report.HasFailures(),
	}

	byPath := make(map[string]results.TestFileResult, len(report.TestResults))
	var latestEnd float64
	for _, f := range report.TestResults {
		byPath[f.TestFilePath] = f
		if f.PerfStats.End > latestEnd {
			latestEnd = f.PerfStats.End
		}

		for _, t := range f.TestResults {
			summary.TotalTests++
			switch t.Status {
			case results.StatusFailed:
				summary.FailedTests++
				summary.Failures = append(summary.Failures, Failure{File: f.TestFilePath, Test: t})
			case results.StatusPending:
				summary.PendingTests++
			case results.StatusTodo:
				summary.TodoTests++
			default:
				summary.PassedTests++
			}
		}
	}
	if len(report.TestResults) > 0 {
		summary.TotalTimeMs = latestEnd - float64(report.StartTime)
	}

	for i, shaped := range results.ShapeResults(report.TestResults) {
		f := byPath[shaped.Name]
		counts := FileCounts(f)
		row := FileRow{
			ShapedResult:   shaped,
			Counts:         counts,
			Class:          ClassifyRootRow(counts, i),
			StartMs:        f.PerfStats.Start,
			EndMs:          f.PerfStats.End,
			FailureMessage: f.FailureMessage,
		}
		summary.Files = append(summary.Files, row)

		if counts.Status() == results.StatusFailed {
			summary.FailedSuites++
		}
		if counts.TestExecError {
			summary.ExecErrors = append(summary.ExecErrors, row)
		}
		if shaped.Time >= slowThreshold.Seconds() {
			summary.SlowFiles = append(summary.SlowFiles, row)
		}
	}

	return summary
}

// SummaryFormatter formats a Summary for display.
type SummaryFormatter struct {
	width     int
	useColors bool
	precision int
	styles    Styles
}

// NewSummaryFormatter creates a new summary formatter.
//
// Colors are automatically enabled if stdout is a TTY.
func NewSummaryFormatter(width int) *SummaryFormatter {
	return NewSummaryFormatterWithColors(width, isatty.IsTerminal(os.Stdout.Fd()))
}

// NewSummaryFormatterWithColors creates a summary formatter with colors
// forced on or off.
func NewSummaryFormatterWithColors(width int, useColors bool) *SummaryFormatter {
	if width <= 0 {
		width = 80
	}
	styles := PlainStyles()
	if useColors {
		styles = DefaultStyles()
	}
	return &SummaryFormatter{
		width:     width,
		useColors: useColors,
		precision: 1,
		styles:    styles,
	}
}

// SetPrecision sets the number of decimals of the percentages.
func (sf *SummaryFormatter) SetPrecision(precision int) {
	sf.precision = precision
}

// Format renders a complete summary as a formatted string.
func (sf *SummaryFormatter) Format(summary *Summary) string {
	var result string

	if len(summary.Failures) > 0 || len(summary.ExecErrors) > 0 {
		result += sf.formatFailures(summary)
		result += "\n"
	}

	if len(summary.SlowFiles) > 0 {
		result += sf.formatSlowFiles(summary.SlowFiles)
		result += "\n"
	}

	result += sf.formatFileSection(summary.Files)
	result += "\n"

	result += sf.formatOverallResults(summary)
	result += "\n"

	return result
}

// formatFileSection renders the per-file table.
func (sf *SummaryFormatter) formatFileSection(files []FileRow) string {
	if len(files) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "FILE", "PASSED", "FAILED", "PENDING", "TIME"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, f := range files {
		style := sf.styles.Row(f.Class)
		t.AppendRow(table.Row{
			style.Render(SymbolFor(f.Class)),
			style.Render(f.Name),
			f.NumPassingTests,
			f.NumFailingTests,
			f.NumPendingTests,
			FormatDuration(f.StartMs, f.EndMs),
		})
	}

	return renderSectionHeader("FILES") + t.Render() + "\n"
}

// formatOverallResults formats the overall statistics section.
func (sf *SummaryFormatter) formatOverallResults(summary *Summary) string {
	var result string
	result += renderSectionHeader("OVERALL RESULTS")

	percent := func(n int) string {
		if summary.TotalTests == 0 {
			return FormatPercentage(0, 1, WithPrecision(sf.precision))
		}
		return FormatPercentage(float64(n), float64(summary.TotalTests), WithPrecision(sf.precision))
	}

	result += fmt.Sprintf("Started:        %s\n", FormatDate(summary.StartTime))
	result += fmt.Sprintf("Total tests:    %d\n", summary.TotalTests)
	result += fmt.Sprintf("Passed:         %d %s (%s%%)\n", summary.PassedTests, sf.icon(RowPassEven), percent(summary.PassedTests))
	result += fmt.Sprintf("Failed:         %d %s (%s%%)\n", summary.FailedTests, sf.icon(RowFail), percent(summary.FailedTests))
	result += fmt.Sprintf("Pending:        %d %s (%s%%)\n", summary.PendingTests, sf.icon(RowPending), percent(summary.PendingTests))
	result += fmt.Sprintf("Todo:           %d %s (%s%%)\n", summary.TodoTests, sf.icon(RowTodo), percent(summary.TodoTests))
	result += fmt.Sprintf("Total time:     %s\n", FormatDuration(0, summary.TotalTimeMs))
	result += fmt.Sprintf("Suites:         %d (%d failed)\n", summary.TotalSuites, summary.FailedSuites)

	result += sf.horizontalLine()
	return result
}

func (sf *SummaryFormatter) icon(class RowClass) string {
	symbol := SymbolFor(class)
	if sf.useColors {
		return sf.styles.Row(class).Render(symbol)
	}
	return symbol
}

// formatFailures formats the failures section, grouped by file.
func (sf *SummaryFormatter) formatFailures(summary *Summary) string {
	var result string
	result += renderSectionHeader("FAILURES")

	fileMap := make(map[string][]Failure)
	fileOrder := make([]string, 0)
	for _, failure := range summary.Failures {
		if _, exists := fileMap[failure.File]; !exists {
			fileOrder = append(fileOrder, failure.File)
		}
		fileMap[failure.File] = append(fileMap[failure.File], failure)
	}

	first := true
	for _, row := range summary.ExecErrors {
		if !first {
			result += "\n"
		}
		first = false
		result += row.Name + " [execution error]\n"
		for _, line := range failureLines(row.FailureMessage) {
			result += IndentLevel2 + line + "\n"
		}
	}

	for _, file := range fileOrder {
		if !first {
			result += "\n"
		}
		first = false
		result += file + "\n"

		for _, failure := range fileMap[file] {
			result += IndentLevel1 + testName(failure.Test) + "\n"
			for _, msg := range failure.Test.FailureMessages {
				for _, line := range failureLines(msg) {
					result += IndentLevel2 + line + "\n"
				}
			}
		}
	}

	result += sf.horizontalLine()
	return result
}

// formatSlowFiles formats the slow files section.
func (sf *SummaryFormatter) formatSlowFiles(files []FileRow) string {
	var result string
	result += renderSectionHeader("SLOW FILES")

	maxNameLen := 0
	for _, f := range files {
		if len(f.Name) > maxNameLen {
			maxNameLen = len(f.Name)
		}
	}

	for _, f := range files {
		result += fmt.Sprintf("%-*s  %s\n",
			maxNameLen, f.Name,
			FormatDuration(f.StartMs, f.EndMs))
	}

	result += sf.horizontalLine()
	return result
}

// horizontalLine returns a horizontal separator line.
func (sf *SummaryFormatter) horizontalLine() string {
	return strings.Repeat("-", sf.width)
}

func renderSectionHeader(header string) string {
	return header + "\n" + strings.Repeat("-", len(header)) + "\n"
}

// testName returns the full name of a test, building it from its ancestors
// when the reporter did not provide one.
func testName(t results.TestCaseResult) string {
	if t.FullName != "" {
		return t.FullName
	}
	return strings.Join(append(append([]string{}, t.AncestorTitles...), t.Title), " ")
}

// failureLines strips terminal escapes from a failure message and truncates
// it to maxFailureLines lines.
func failureLines(msg string) []string {
	msg = strings.TrimRight(expandTabs(stripansi.Strip(msg), 8), "\n")
	if msg == "" {
		return nil
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > maxFailureLines {
		lines = lines[:maxFailureLines]
	}
	return lines
}
