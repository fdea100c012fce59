package format

import "github.com/charmbracelet/lipgloss"

// Symbol constants for row statuses
const (
	SymbolPass    = "✓"
	SymbolFail    = "✗"
	SymbolPending = "∅"
	SymbolTodo    = "✎"
)

// Styles holds the lipgloss styles for every row class and time segment.
type Styles struct {
	Rows       map[RowClass]lipgloss.Style
	TimeIcon   lipgloss.Style
	TimeMinor  lipgloss.Style
	TimeActive lipgloss.Style
	Header     lipgloss.Style
}

// DefaultStyles returns the coloured terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Rows: map[RowClass]lipgloss.Style{
			RowFail:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
			RowPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
			RowTodo:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")), // magenta
			RowPassEven: lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
			RowPassOdd:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		},
		TimeIcon:   lipgloss.NewStyle(),
		TimeMinor:  lipgloss.NewStyle().Faint(true),
		TimeActive: lipgloss.NewStyle().Bold(true),
		Header:     lipgloss.NewStyle().Bold(true),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Rows: map[RowClass]lipgloss.Style{
			RowFail:     plain,
			RowPending:  plain,
			RowTodo:     plain,
			RowPassEven: plain,
			RowPassOdd:  plain,
		},
		TimeIcon:   plain,
		TimeMinor:  plain,
		TimeActive: plain,
		Header:     plain,
	}
}

// Row returns the style for a row class.
func (s Styles) Row(class RowClass) lipgloss.Style {
	if style, ok := s.Rows[class]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// SymbolFor returns the status symbol of a row class.
func SymbolFor(class RowClass) string {
	switch class {
	case RowFail:
		return SymbolFail
	case RowPending:
		return SymbolPending
	case RowTodo:
		return SymbolTodo
	}
	return SymbolPass
}
