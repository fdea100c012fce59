package tui

import (
	"context"

	"github.com/ansel1/tangview/engine"
	"github.com/ansel1/tangview/results"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadCmd returns a command that loads the report at url into collector.
// The model learns the outcome through its collector subscription.
func LoadCmd(ctx context.Context, f *engine.Fetcher, collector *results.Collector, url string) tea.Cmd {
	return func() tea.Msg {
		_ = f.LoadInto(ctx, collector, url)
		return nil
	}
}
