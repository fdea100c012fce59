package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ansel1/tangview/output/format"
	"github.com/ansel1/tangview/results"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ResultsEventMsg wraps results events for bubbletea
type ResultsEventMsg results.Event

// Model is the report viewer.
//
// The Model implements the Bubbletea Model interface. It consumes
// results.Event from the results.Collector and reads the loaded report from
// the collector when one arrives. Rows are identified by test file path.
type Model struct {
	collector *results.Collector
	events    <-chan results.Event
	source    string
	reload    tea.Cmd

	groupLevel    int
	precision     int
	slowThreshold time.Duration
	styles        format.Styles
	useColors     bool

	summary *format.Summary
	err     error
	loading bool

	expanded     map[string]bool // file path -> expanded
	globalExpand bool
	cursor       int // index into summary.Files
	offset       int // first visible body line

	scroll    *scrollAnim
	scrollGen int

	// Terminal state
	TerminalWidth  int
	TerminalHeight int

	spinner  spinner.Model
	quitting bool
}

// Option configures the model
type Option func(*Model)

// WithSource sets the URL or path shown in the header.
func WithSource(source string) Option {
	return func(m *Model) {
		m.source = source
	}
}

// WithReload sets the command run on start and when the user presses r.
func WithReload(cmd tea.Cmd) Option {
	return func(m *Model) {
		m.reload = cmd
	}
}

// WithGroupLevel sets how many ancestor titles expanded rows group by.
func WithGroupLevel(level int) Option {
	return func(m *Model) {
		m.groupLevel = level
	}
}

// WithPrecision sets the decimal places of percentages.
func WithPrecision(precision int) Option {
	return func(m *Model) {
		m.precision = precision
	}
}

// WithSlowThreshold sets the slow file threshold of the exit summary.
func WithSlowThreshold(d time.Duration) Option {
	return func(m *Model) {
		m.slowThreshold = d
	}
}

// WithColors enables or disables styled output.
func WithColors(useColors bool) Option {
	return func(m *Model) {
		m.useColors = useColors
		if useColors {
			m.styles = format.DefaultStyles()
		} else {
			m.styles = format.PlainStyles()
		}
	}
}

// NewModel creates a new TUI model reading reports from collector.
func NewModel(collector *results.Collector, opts ...Option) *Model {
	s := spinner.New()
	s.Spinner = spinner.Jump

	m := &Model{
		collector:      collector,
		groupLevel:     1,
		precision:      format.DefaultPrecision,
		slowThreshold:  5 * time.Second,
		styles:         format.DefaultStyles(),
		useColors:      true,
		expanded:       make(map[string]bool),
		TerminalWidth:  80, // Default width, will be updated by Bubbletea
		TerminalHeight: 24, // Default height, will be updated by Bubbletea
		spinner:        s,
		loading:        true,
	}
	for _, opt := range opts {
		opt(m)
	}

	if collector != nil {
		m.events = collector.Subscribe()
		collector.WithCurrent(func(r *results.Report) {
			m.setReport(r)
		})
	}
	return m
}

// Init initializes the model and returns the initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForEvent(m.events)}
	if m.loading && m.reload != nil {
		cmds = append(cmds, m.reload)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultsEventMsg:
		m.handleResultsEvent(results.Event(msg))
		return m, waitForEvent(m.events)

	case tea.WindowSizeMsg:
		m.TerminalWidth = msg.Width
		m.TerminalHeight = msg.Height
		m.clampOffset()

	case scrollFrameMsg:
		return m, m.stepScroll(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "r":
		if m.reload == nil {
			return nil
		}
		m.loading = true
		return m.reload
	}

	if m.summary == nil || len(m.summary.Files) == 0 {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(m.cursor - 1)
	case "down", "j":
		m.moveCursor(m.cursor + 1)
	case "home", "g":
		m.moveCursor(0)
	case "end", "G":
		m.moveCursor(len(m.summary.Files) - 1)
	case "pgup":
		m.stopScroll()
		m.offset -= m.bodyHeight()
		m.clampOffset()
	case "pgdown":
		m.stopScroll()
		m.offset += m.bodyHeight()
		m.clampOffset()
	case "enter", " ":
		id := m.summary.Files[m.cursor].Name
		m.expanded[id] = !m.expanded[id]
		m.clampOffset()
	case "e":
		m.globalExpand = !m.globalExpand
		m.clampOffset()
	case "f":
		return m.nextFailure()
	}
	return nil
}

// handleResultsEvent processes a results event and updates the model state.
func (m *Model) handleResultsEvent(evt results.Event) {
	switch evt.Type {
	case results.EventReportLoaded:
		m.collector.WithReport(evt.ReportID, func(r *results.Report) {
			m.setReport(r)
		})
		m.err = nil

	case results.EventLoadFailed:
		m.err = evt.Err
		m.loading = false
	}
}

// setReport installs r as the displayed report. Expanded state survives for
// files that are still present.
func (m *Model) setReport(r *results.Report) {
	m.summary = format.ComputeSummary(r, m.slowThreshold)
	m.loading = false

	expanded := make(map[string]bool, len(r.TestResults))
	for _, f := range r.TestResults {
		expanded[f.TestFilePath] = m.expanded[f.TestFilePath]
	}
	m.expanded = expanded

	if m.cursor >= len(m.summary.Files) {
		m.cursor = max(0, len(m.summary.Files)-1)
	}
	m.clampOffset()
}

// SetExpanded applies an expand event to the row it names.
func (m *Model) SetExpanded(e ExpandEvent) {
	if _, ok := m.expanded[e.Key]; !ok {
		return
	}
	m.expanded[e.Key] = e.State
	m.clampOffset()
}

// Expanded returns the ids of the rows currently rendered expanded.
func (m *Model) Expanded() []string {
	return format.ExistKeys(m.expanded, m.globalExpand)
}

// Cursor returns the id of the selected row, or "" when nothing is loaded.
func (m *Model) Cursor() string {
	if m.summary == nil || len(m.summary.Files) == 0 {
		return ""
	}
	return m.summary.Files[m.cursor].Name
}

// Offset returns the first visible body line.
func (m *Model) Offset() int {
	return m.offset
}

func (m *Model) moveCursor(i int) {
	if i < 0 || i >= len(m.summary.Files) {
		return
	}
	m.stopScroll()
	m.cursor = i

	_, index := m.layout()
	line := index[m.summary.Files[i].Name]
	if line < m.offset {
		m.offset = line
	} else if h := m.bodyHeight(); line >= m.offset+h {
		m.offset = line - h + 1
	}
	m.clampOffset()
}

// nextFailure moves the cursor to the next failing file after the cursor
// and scrolls it into view, expanding it once the scroll lands.
func (m *Model) nextFailure() tea.Cmd {
	n := len(m.summary.Files)
	for step := 1; step <= n; step++ {
		i := (m.cursor + step) % n
		if m.summary.Files[i].Class != format.RowFail {
			continue
		}
		m.cursor = i
		return m.ScrollTo(m.summary.Files[i].Name, m.SetExpanded)
	}
	return nil
}

// headerLines is the number of lines above the scrolling body.
func (m *Model) headerLines() int {
	n := 3
	if m.err != nil {
		n++
	}
	return n
}

// bodyHeight is the number of body lines that fit below the header and
// above the footer.
func (m *Model) bodyHeight() int {
	return max(1, m.TerminalHeight-m.headerLines()-1)
}

func (m *Model) maxOffset(lines int) int {
	return max(0, lines-m.bodyHeight())
}

func (m *Model) clampOffset() {
	if m.summary == nil {
		m.offset = 0
		return
	}
	lines, _ := m.layout()
	m.offset = min(max(0, m.offset), m.maxOffset(len(lines)))
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.summary == nil {
		if m.err != nil {
			b.WriteString(m.styles.Row(format.RowFail).Render("Error: " + m.err.Error()))
			b.WriteString("\n")
		} else {
			b.WriteString(m.spinner.View())
			b.WriteString(" Loading ")
			b.WriteString(m.source)
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	m.renderHeader(&b)

	lines, _ := m.layout()
	start := min(m.offset, len(lines))
	end := min(start+m.bodyHeight(), len(lines))
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.styles.TimeMinor.Render(footerHelp))
	return strings.TrimRight(b.String(), "\n")
}

const footerHelp = "↑/↓ move  enter expand  e expand all  f next failure  r reload  q quit"

// String renders the TUI
func (m *Model) String() string {
	return m.View()
}

// HasFailures returns true if loading failed or the report has failures.
func (m *Model) HasFailures() bool {
	return m.err != nil || (m.summary != nil && !m.summary.Success)
}

// DisplaySummary writes the summary of the displayed report to w.
//
// It is called after the TUI exits so the summary stays in the terminal
// scrollback.
func (m *Model) DisplaySummary(w io.Writer) {
	if m.summary == nil {
		return
	}

	formatter := format.NewSummaryFormatterWithColors(m.TerminalWidth, m.useColors)
	formatter.SetPrecision(m.precision)
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatter.Format(m.summary))
}

func waitForEvent(ch <-chan results.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return ResultsEventMsg(evt)
	}
}
