package tui

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/ansel1/tangview/output/format"
	"github.com/ansel1/tangview/results"
	"github.com/charmbracelet/lipgloss"
)

const (
	markerCollapsed = "▸"
	markerExpanded  = "▾"
	cursorMarker    = "›"

	maxExecErrorLines = 10
)

// layout renders every body line and indexes the line of each file row.
func (m *Model) layout() ([]string, map[string]int) {
	open := make(map[string]bool)
	for _, key := range format.ExistKeys(m.expanded, m.globalExpand) {
		open[key] = true
	}

	lines := make([]string, 0, len(m.summary.Files))
	index := make(map[string]int, len(m.summary.Files))
	for i, f := range m.summary.Files {
		index[f.Name] = len(lines)
		lines = append(lines, m.renderFileRow(f, i == m.cursor, open[f.Name]))
		if open[f.Name] {
			lines = append(lines, m.renderFileBody(f)...)
		}
	}
	return lines, index
}

func (m *Model) renderHeader(b *strings.Builder) {
	s := m.summary

	prefix := "  "
	if m.loading {
		prefix = m.spinner.View() + " "
	}
	title := m.styles.Header.Render("tangview") + "  " + m.source
	started := "Started: " + format.FormatDate(s.StartTime)
	b.WriteString(m.renderAlignedLine(prefix+title, started))

	status := "PASSED"
	if !s.Success {
		status = "FAILED"
	}
	total := float64(s.TotalTests)
	counts := fmt.Sprintf("%s: %d %s (%s%%)  %d %s (%s%%)  %d %s  %d %s  %d total",
		status,
		s.PassedTests, format.SymbolPass, m.percent(float64(s.PassedTests), total),
		s.FailedTests, format.SymbolFail, m.percent(float64(s.FailedTests), total),
		s.PendingTests, format.SymbolPending,
		s.TodoTests, format.SymbolTodo,
		s.TotalTests)
	if !s.Success {
		counts = m.styles.Row(format.RowFail).Render(counts)
	}
	start := float64(s.StartTime)
	elapsed := format.FormatDurationDisplay(start, start+s.TotalTimeMs).Render(m.styles)
	b.WriteString(m.renderAlignedLine("  "+counts, elapsed))

	if m.err != nil {
		b.WriteString(m.styles.Row(format.RowFail).Render(truncateLine("  Error: "+m.err.Error(), m.TerminalWidth)))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", max(0, m.TerminalWidth)))
	b.WriteString("\n")
}

func (m *Model) percent(value, total float64) string {
	return format.FormatPercentage(value, total, format.WithPrecision(m.precision))
}

func (m *Model) renderFileRow(f format.FileRow, selected, open bool) string {
	cursor := " "
	if selected {
		cursor = cursorMarker
	}
	marker := markerCollapsed
	if open {
		marker = markerExpanded
	}

	left := cursor + " " + m.styles.Row(f.Class).Render(marker+" "+format.SymbolFor(f.Class)+" "+f.Name)
	right := countsText(f.Counts, f.NumPassingTests) + "  " +
		format.FormatDurationDisplay(f.StartMs, f.EndMs).Render(m.styles)
	return strings.TrimSuffix(m.renderAlignedLine(left, right), "\n")
}

// renderFileBody renders an expanded file: its execution error, if any, then
// its tests grouped by ancestor titles.
func (m *Model) renderFileBody(f format.FileRow) []string {
	var lines []string

	if f.Counts.TestExecError {
		style := m.styles.Row(format.RowFail)
		msg := strings.TrimSpace(stripansi.Strip(f.FailureMessage))
		for i, line := range strings.Split(msg, "\n") {
			if i == maxExecErrorLines {
				break
			}
			lines = append(lines, style.Render(truncateLine("      "+expandTabs(line), m.TerminalWidth)))
		}
	}

	for i, row := range results.GroupByAncestors(f.TestResults, m.groupLevel) {
		if !row.IsGroup() {
			lines = append(lines, m.renderTestRow(*row.Test, i, 2))
			continue
		}

		g := row.Group
		counts := format.GroupCounts(g)
		class := format.ClassifyRootRow(counts, i)
		title := g.SubTitle
		if title == "" {
			title = "(all tests)"
		}
		left := "    " + m.styles.Row(class).Render(format.SymbolFor(class)+" "+title)
		lines = append(lines, strings.TrimSuffix(m.renderAlignedLine(left, countsText(counts, g.NumPassingTests)), "\n"))

		for j, t := range g.Tests {
			lines = append(lines, m.renderTestRow(t, j, 3))
		}
	}
	return lines
}

func (m *Model) renderTestRow(t results.TestCaseResult, index, depth int) string {
	class := format.ClassifyRow(t.Status, index)
	name := strings.Join(append(append([]string{}, t.AncestorTitles...), t.Title), " › ")
	left := strings.Repeat("  ", depth) + m.styles.Row(class).Render(format.SymbolFor(class)+" "+name)

	right := ""
	if t.Duration != nil {
		right = format.FormatDurationDisplay(0, *t.Duration).Render(m.styles)
	}
	return strings.TrimSuffix(m.renderAlignedLine(left, right), "\n")
}

func countsText(c format.RootRowCounts, passing int) string {
	return fmt.Sprintf("%d %s %d %s %d %s",
		passing, format.SymbolPass,
		c.NumFailingTests, format.SymbolFail,
		c.NumPendingTests, format.SymbolPending)
}

// renderAlignedLine renders a line with left-aligned and right-aligned
// content, truncating the left side when both do not fit.
func (m *Model) renderAlignedLine(left, right string) string {
	if right == "" {
		return ensureReset(truncateLine(left, m.TerminalWidth)) + "\n"
	}

	rightWidth := lipgloss.Width(right)
	available := max(0, m.TerminalWidth-rightWidth-2)

	var b strings.Builder
	if lipgloss.Width(left) > available {
		b.WriteString(ensureReset(truncateLine(left, available)))
	} else {
		b.WriteString(ensureReset(left))
		b.WriteString(strings.Repeat(" ", available-lipgloss.Width(left)))
	}
	b.WriteString("  ")
	b.WriteString(right)
	b.WriteString("\n")
	return b.String()
}

// expandTabs replaces tabs with spaces up to the next multiple of 8.
// Tabs do not overwrite the previous frame in every terminal.
func expandTabs(s string) string {
	const tabWidth = 8
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
