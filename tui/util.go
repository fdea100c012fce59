package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ensureReset ensures that the string ends with a terminal reset sequence.
// This prevents color bleeding from truncated output or output that leaves colors open.
func ensureReset(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasSuffix(s, "\033[0m") {
		return s
	}
	return s + "\033[0m"
}

// truncateLine truncates a possibly styled line to width cells.
func truncateLine(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(line) <= width {
		return line
	}
	return ensureReset(ansi.Truncate(line, width, "…"))
}
