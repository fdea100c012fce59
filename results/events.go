package results

// EventType identifies the type of event emitted by the Collector.
type EventType string

const (
	EventReportLoaded EventType = "report_loaded" // A report payload was stored
	EventLoadFailed   EventType = "load_failed"   // Fetching a report failed
)

// Event represents a high-level event emitted by the Collector.
type Event struct {
	Type     EventType
	ReportID int    // 1-based load sequence number, for EventReportLoaded
	Source   string // URL or path the report came from
	Err      error  // For EventLoadFailed
}

// NewReportLoadedEvent creates a new ReportLoaded event.
func NewReportLoadedEvent(reportID int, source string) Event {
	return Event{
		Type:     EventReportLoaded,
		ReportID: reportID,
		Source:   source,
	}
}

// NewLoadFailedEvent creates a new LoadFailed event.
func NewLoadFailedEvent(source string, err error) Event {
	return Event{
		Type:   EventLoadFailed,
		Source: source,
		Err:    err,
	}
}
