package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/ansel1/tangview/engine"
	"github.com/ansel1/tangview/results"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dur(v float64) *float64 {
	return &v
}

func sampleReport() *results.Report {
	return &results.Report{
		StartTime: 1_700_000_000_000,
		TestResults: []results.TestFileResult{
			{
				TestFilePath:    "src/ok.test.js",
				NumPassingTests: 2,
				PerfStats:       results.PerfStats{Start: 1_700_000_000_000, End: 1_700_000_000_300},
				TestResults: []results.TestCaseResult{
					{AncestorTitles: []string{"math"}, Title: "adds", Status: results.StatusPassed, Duration: dur(4)},
					{AncestorTitles: []string{"math"}, Title: "subtracts", Status: results.StatusPassed, Duration: dur(2)},
				},
			},
			{
				TestFilePath:    "src/bad.test.js",
				NumPassingTests: 1,
				NumFailingTests: 1,
				PerfStats:       results.PerfStats{Start: 1_700_000_000_000, End: 1_700_000_002_000},
				TestResults: []results.TestCaseResult{
					{AncestorTitles: []string{"api", "get"}, Title: "returns 200", Status: results.StatusPassed},
					{AncestorTitles: []string{"api", "get"}, Title: "returns body", Status: results.StatusFailed},
				},
			},
		},
	}
}

// manyFilesReport has n passing files of equal duration, so they keep input order.
func manyFilesReport(n int) *results.Report {
	r := &results.Report{}
	for i := 0; i < n; i++ {
		r.TestResults = append(r.TestResults, results.TestFileResult{
			TestFilePath:    fmt.Sprintf("file-%02d.test.js", i),
			NumPassingTests: 1,
			PerfStats:       results.PerfStats{Start: 0, End: 100},
			TestResults:     []results.TestCaseResult{{Title: "ok", Status: results.StatusPassed}},
		})
	}
	return r
}

func loadedModel(t *testing.T, report *results.Report, opts ...Option) *Model {
	t.Helper()
	c := results.NewCollector()
	t.Cleanup(c.Close)
	opts = append([]Option{WithColors(false), WithSource("result.js")}, opts...)
	m := NewModel(c, opts...)
	id := c.Push("result.js", report)
	m.Update(ResultsEventMsg(results.NewReportLoadedEvent(id, "result.js")))
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds its messages back into m until no command is left.
func drain(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func TestModel_Loading(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()
	m := NewModel(c, WithColors(false), WithSource("http://ci/result.js"))

	assert.Contains(t, m.View(), "Loading http://ci/result.js")
	assert.False(t, m.HasFailures())
	assert.Empty(t, m.Cursor())
}

func TestModel_LoadFailed(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()
	m := NewModel(c, WithColors(false))

	m.Update(ResultsEventMsg(results.NewLoadFailedEvent("x.js", errors.New("'x.js' jsonp fetch failed"))))
	assert.Contains(t, m.View(), "Error: 'x.js' jsonp fetch failed")
	assert.True(t, m.HasFailures())
}

func TestModel_PicksUpReportLoadedBeforeCreation(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()
	c.Push("a.js", sampleReport())

	m := NewModel(c, WithColors(false))
	assert.Contains(t, m.View(), "src/bad.test.js")
}

func TestModel_View(t *testing.T) {
	m := loadedModel(t, sampleReport())
	view := m.View()

	assert.Contains(t, view, "tangview  result.js")
	assert.Contains(t, view, "FAILED: 3 ✓ (75.00%)  1 ✗ (25.00%)  0 ∅  0 ✎  4 total")
	assert.Contains(t, view, "02.000")

	lines := strings.Split(view, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, lines[3], "› ▸ ✗ src/bad.test.js")
	assert.Contains(t, lines[4], "▸ ✓ src/ok.test.js")
	assert.True(t, m.HasFailures())
}

func TestModel_Precision(t *testing.T) {
	m := loadedModel(t, sampleReport(), WithPrecision(0))
	assert.Contains(t, m.View(), "3 ✓ (75%)")
}

func TestModel_ExpandRow(t *testing.T) {
	m := loadedModel(t, sampleReport())

	m.Update(key("enter"))
	assert.Equal(t, []string{"src/bad.test.js"}, m.Expanded())

	view := m.View()
	assert.Contains(t, view, "▾ ✗ src/bad.test.js")
	assert.Contains(t, view, "✗ api")
	assert.Contains(t, view, "get › returns body")
	assert.NotContains(t, view, "adds")

	m.Update(key("enter"))
	assert.Empty(t, m.Expanded())
	assert.NotContains(t, m.View(), "returns body")
}

func TestModel_GroupLevel(t *testing.T) {
	m := loadedModel(t, sampleReport(), WithGroupLevel(2))
	m.Update(key("enter"))
	assert.Contains(t, m.View(), "api => get")
	assert.Contains(t, m.View(), "✗ returns body")
}

func TestModel_GlobalExpand(t *testing.T) {
	m := loadedModel(t, sampleReport())

	m.Update(key("e"))
	assert.Equal(t, []string{"src/bad.test.js", "src/ok.test.js"}, m.Expanded())
	view := m.View()
	assert.Contains(t, view, "returns body")
	assert.Contains(t, view, "✓ math")
	assert.Contains(t, view, "✓ adds")

	m.Update(key("e"))
	assert.Empty(t, m.Expanded())
}

func TestModel_ExpandedSurvivesReload(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()
	m := NewModel(c, WithColors(false))

	m.Update(ResultsEventMsg(results.NewReportLoadedEvent(c.Push("a", sampleReport()), "a")))
	m.Update(key("enter"))

	m.Update(ResultsEventMsg(results.NewReportLoadedEvent(c.Push("a", sampleReport()), "a")))
	assert.Equal(t, []string{"src/bad.test.js"}, m.Expanded())
}

func TestModel_CursorKeepsInView(t *testing.T) {
	m := loadedModel(t, manyFilesReport(40))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	height := m.bodyHeight()

	for i := 0; i < height; i++ {
		m.Update(key("down"))
	}
	assert.Equal(t, fmt.Sprintf("file-%02d.test.js", height), m.Cursor())
	assert.Equal(t, 1, m.Offset())
	assert.Contains(t, m.View(), "› ▸ ✓ "+m.Cursor())

	m.Update(key("g"))
	assert.Equal(t, "file-00.test.js", m.Cursor())
	assert.Equal(t, 0, m.Offset())

	m.Update(key("G"))
	assert.Equal(t, "file-39.test.js", m.Cursor())
	assert.Equal(t, 40-height, m.Offset())

	m.Update(key("up"))
	assert.Equal(t, "file-38.test.js", m.Cursor())
}

func TestModel_Quit(t *testing.T) {
	m := loadedModel(t, sampleReport())
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModel_DisplaySummary(t *testing.T) {
	m := loadedModel(t, sampleReport())
	var b strings.Builder
	m.DisplaySummary(&b)
	assert.Contains(t, b.String(), "OVERALL RESULTS")
	assert.Contains(t, b.String(), "Passed:         3 ✓ (75.00%)")
}

func TestModel_Reload(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()

	calls := 0
	f := engine.NewFetcher(engine.WithDispatcher(engine.DispatcherFunc(func(ctx context.Context, url string) (json.RawMessage, error) {
		calls++
		return json.Marshal(sampleReport())
	})))

	m := NewModel(c, WithColors(false), WithReload(LoadCmd(context.Background(), f, c, "result.js")))
	_, cmd := m.Update(key("r"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, 1, calls)

	require.NotNil(t, c.State().Current)
	m.Update(ResultsEventMsg(<-m.events))
	assert.Contains(t, m.View(), "src/bad.test.js")
}

func TestLoadCmd_Failure(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()
	events := c.Subscribe()

	f := engine.NewFetcher(engine.WithDispatcher(engine.DispatcherFunc(func(ctx context.Context, url string) (json.RawMessage, error) {
		return nil, errors.New("404")
	})))

	assert.Nil(t, LoadCmd(context.Background(), f, c, "gone.js")())

	evt := <-events
	assert.Equal(t, results.EventLoadFailed, evt.Type)
	assert.Equal(t, "gone.js", evt.Source)
	assert.Contains(t, evt.Err.Error(), "'gone.js' jsonp fetch failed")
	assert.Nil(t, c.State().Current)
}
