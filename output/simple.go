package output

import (
	"fmt"
	"io"
	"time"

	"github.com/ansel1/tangview/output/format"
	"github.com/ansel1/tangview/results"
)

// SimpleOutput writes a plain text summary for non-interactive use.
// It waits for the first load outcome from the collector and writes either
// the report summary or the load error.
type SimpleOutput struct {
	writer        io.Writer
	collector     *results.Collector
	formatter     *format.SummaryFormatter
	slowThreshold time.Duration

	// Lightweight flag for exit code determination
	failed bool
}

// NewSimpleOutput creates a simple output writer
func NewSimpleOutput(w io.Writer, collector *results.Collector, formatter *format.SummaryFormatter, slowThreshold time.Duration) *SimpleOutput {
	if formatter == nil {
		formatter = format.NewSummaryFormatter(80)
	}
	return &SimpleOutput{
		writer:        w,
		collector:     collector,
		formatter:     formatter,
		slowThreshold: slowThreshold,
	}
}

// ProcessEvents consumes events until a report is loaded or loading fails.
// A load failure is returned as the error.
func (s *SimpleOutput) ProcessEvents(events <-chan results.Event) error {
	for evt := range events {
		switch evt.Type {
		case results.EventReportLoaded:
			var err error
			s.collector.WithReport(evt.ReportID, func(r *results.Report) {
				err = s.WriteReport(r)
			})
			return err

		case results.EventLoadFailed:
			s.failed = true
			return evt.Err
		}
	}
	return nil
}

// WriteReport writes the summary of report.
func (s *SimpleOutput) WriteReport(report *results.Report) error {
	summary := format.ComputeSummary(report, s.slowThreshold)
	if !summary.Success {
		s.failed = true
	}

	_, err := fmt.Fprintln(s.writer, s.formatter.Format(summary))
	return err
}

// HasFailures returns true if loading failed or any test or suite failed
func (s *SimpleOutput) HasFailures() bool {
	return s.failed
}
