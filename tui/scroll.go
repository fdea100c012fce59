package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// ScrollDuration is how long a ScrollTo animation takes.
	ScrollDuration = 500 * time.Millisecond

	scrollFrame = 50 * time.Millisecond

	// scrollMargin is how many lines are left visible above the target row.
	scrollMargin = 1
)

// ExpandEvent asks for the row Key to be expanded (State true) or collapsed.
type ExpandEvent struct {
	Key   string
	State bool
}

type scrollFrameMsg struct {
	gen int
}

type scrollAnim struct {
	gen     int
	id      string
	from    int
	to      int
	elapsed time.Duration
	onDone  func(ExpandEvent)
}

// ScrollTo smoothly scrolls the body so the row id sits one line below the
// top, then calls onDone with ExpandEvent{Key: id, State: true}.
//
// An unknown id returns nil and onDone is never called. Starting a new
// scroll, or moving the cursor, abandons the one in progress without
// calling its onDone.
func (m *Model) ScrollTo(id string, onDone func(ExpandEvent)) tea.Cmd {
	if m.summary == nil {
		return nil
	}
	lines, index := m.layout()
	row, ok := index[id]
	if !ok {
		return nil
	}

	target := min(max(0, row-scrollMargin), m.maxOffset(len(lines)))
	m.scrollGen++
	m.scroll = &scrollAnim{
		gen:    m.scrollGen,
		id:     id,
		from:   m.offset,
		to:     target,
		onDone: onDone,
	}
	return m.scrollTick()
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (m *Model) Scrolling() bool {
	return m.scroll != nil
}

func (m *Model) scrollTick() tea.Cmd {
	gen := m.scrollGen
	return tea.Tick(scrollFrame, func(time.Time) tea.Msg {
		return scrollFrameMsg{gen: gen}
	})
}

func (m *Model) stopScroll() {
	m.scroll = nil
	m.scrollGen++
}

func (m *Model) stepScroll(msg scrollFrameMsg) tea.Cmd {
	a := m.scroll
	if a == nil || a.gen != msg.gen {
		return nil
	}

	a.elapsed += scrollFrame
	if a.elapsed >= ScrollDuration {
		m.offset = a.to
		m.scroll = nil
		if a.onDone != nil {
			a.onDone(ExpandEvent{Key: a.id, State: true})
		}
		return nil
	}

	pos := easeInOutQuad(float64(a.elapsed), float64(a.from), float64(a.to-a.from), float64(ScrollDuration))
	m.offset = int(math.Round(pos))
	return m.scrollTick()
}

// easeInOutQuad returns the position at time t of a move from b by c
// lasting d.
func easeInOutQuad(t, b, c, d float64) float64 {
	t /= d / 2
	if t < 1 {
		return c/2*t*t + b
	}
	t--
	return -c/2*(t*(t-2)-1) + b
}
