package results

import (
	"sync"
)

// Collector stores loaded reports and fans out high-level events.
//
// The Collector is the single source of truth for report state. Loaders call
// Push or Fail; views Subscribe and read state through WithCurrent/WithReport.
type Collector struct {
	state       *State
	mu          sync.RWMutex
	subscribers []chan Event
	subMu       sync.Mutex
	closed      bool
	recompute   bool
	history     int
}

// DefaultHistoryLimit is how many reports a Collector retains by default.
const DefaultHistoryLimit = 10

// NewCollector creates a new report collector.
func NewCollector() *Collector {
	return &Collector{
		state:       NewState(),
		subscribers: make([]chan Event, 0),
		history:     DefaultHistoryLimit,
	}
}

// SetHistoryLimit sets how many of the most recent reports are retained.
// Older reports are dropped on the next Push. Values below 1 mean 1.
func (c *Collector) SetHistoryLimit(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = n
	c.trim()
}

// trim drops the oldest reports beyond the history limit. Caller holds mu.
func (c *Collector) trim() {
	reports := c.state.Reports
	over := len(reports) - c.history
	if over <= 0 {
		return
	}
	n := copy(reports, reports[over:])
	clear(reports[n:])
	c.state.Reports = reports[:n]
}

// SetRecomputeTiming configures whether pushed reports have their file
// timings recomputed from the test durations.
func (c *Collector) SetRecomputeTiming(recompute bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute = recompute
}

// Subscribe returns a channel that will receive result events.
// The caller should read from this channel until it is closed.
func (c *Collector) Subscribe() <-chan Event {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	ch := make(chan Event, 100)
	if c.closed {
		close(ch)
		return ch
	}
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// emit sends an event to all subscribers.
func (c *Collector) emit(evt Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.closed {
		return
	}
	for _, sub := range c.subscribers {
		sub <- evt
	}
}

// Close closes all subscriber channels. Events pushed afterwards are stored
// but not delivered.
func (c *Collector) Close() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for _, sub := range c.subscribers {
		close(sub)
	}
}

// Push stores report as the current report and emits EventReportLoaded.
// The returned id counts every report ever pushed, starting at 1.
func (c *Collector) Push(source string, report *Report) int {
	c.mu.Lock()
	if c.recompute {
		report.TestResults = RecomputeTiming(report.TestResults)
	}
	c.state.Reports = append(c.state.Reports, report)
	c.state.Current = report
	c.state.Loaded++
	id := c.state.Loaded
	c.trim()
	c.mu.Unlock()

	// Emit after releasing the lock
	c.emit(NewReportLoadedEvent(id, source))
	return id
}

// Fail emits EventLoadFailed for source. The current report is kept.
func (c *Collector) Fail(source string, err error) {
	c.emit(NewLoadFailedEvent(source, err))
}

// State returns the state pointer. Nested data must not be mutated by callers.
func (c *Collector) State() *State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// WithReport executes fn with the specified report while holding RLock.
// The callback is not executed if the report does not exist or has been
// dropped from the history.
func (c *Collector) WithReport(reportID int, fn func(*Report)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := reportID - (c.state.Loaded - len(c.state.Reports)) - 1
	if reportID < 1 || idx < 0 || idx >= len(c.state.Reports) {
		return
	}
	fn(c.state.Reports[idx])
}

// WithCurrent executes fn with the current report while holding RLock.
// The callback is not executed if no report has been loaded.
func (c *Collector) WithCurrent(fn func(*Report)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state.Current != nil {
		fn(c.state.Current)
	}
}
