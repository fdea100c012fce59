package results

import (
	"bytes"
	"encoding/json"
)

// Status is the outcome of a single test case as reported by Jest.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
	StatusTodo    Status = "todo"
)

// TestCaseResult represents the result of a single test case.
type TestCaseResult struct {
	AncestorTitles  []string `json:"ancestorTitles"`            // describe-block path, outermost first
	Title           string   `json:"title,omitempty"`           // test name
	FullName        string   `json:"fullName,omitempty"`        // ancestors plus title
	Status          Status   `json:"status"`                    // passed, failed, pending, todo
	Duration        *float64 `json:"duration,omitempty"`        // milliseconds, absent for skipped tests
	FailureMessages []string `json:"failureMessages,omitempty"` // raw messages, may contain ANSI codes
}

// DurationMs returns the test duration, treating an absent duration as 0.
func (t TestCaseResult) DurationMs() float64 {
	if t.Duration == nil {
		return 0
	}
	return *t.Duration
}

// PerfStats is the timing envelope of a test file, in milliseconds.
type PerfStats struct {
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Duration *float64 `json:"duration,omitempty"`
	Runtime  *float64 `json:"runtime,omitempty"` // set by RecomputeTiming
}

// TestFileResult represents the result of one executed test file.
type TestFileResult struct {
	TestFilePath    string           `json:"testFilePath"`
	NumFailingTests int              `json:"numFailingTests"`
	NumPassingTests int              `json:"numPassingTests"`
	NumPendingTests int              `json:"numPendingTests"`
	NumTodoTests    int              `json:"numTodoTests"`
	TestResults     []TestCaseResult `json:"testResults"`
	PerfStats       PerfStats        `json:"perfStats"`
	TestExecError   json.RawMessage  `json:"testExecError,omitempty"`
	FailureMessage  string           `json:"failureMessage,omitempty"`
}

// HasExecError reports whether the whole file failed to execute.
func (f TestFileResult) HasExecError() bool {
	v := bytes.TrimSpace(f.TestExecError)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", `""`, "0":
		return false
	}
	return true
}

// Report is the aggregated payload a reporter pushes through the JSONP callback.
type Report struct {
	NumTotalTestSuites        int              `json:"numTotalTestSuites"`
	NumPassedTestSuites       int              `json:"numPassedTestSuites"`
	NumFailedTestSuites       int              `json:"numFailedTestSuites"`
	NumPendingTestSuites      int              `json:"numPendingTestSuites"`
	NumRuntimeErrorTestSuites int              `json:"numRuntimeErrorTestSuites"`
	NumTotalTests             int              `json:"numTotalTests"`
	NumPassedTests            int              `json:"numPassedTests"`
	NumFailedTests            int              `json:"numFailedTests"`
	NumPendingTests           int              `json:"numPendingTests"`
	NumTodoTests              int              `json:"numTodoTests"`
	StartTime                 int64            `json:"startTime"`
	Success                   bool             `json:"success"`
	TestResults               []TestFileResult `json:"testResults"`
}

// HasFailures returns true if any test or suite failed.
func (r *Report) HasFailures() bool {
	if r.NumFailedTests > 0 || r.NumFailedTestSuites > 0 || r.NumRuntimeErrorTestSuites > 0 {
		return true
	}
	for _, f := range r.TestResults {
		if f.NumFailingTests > 0 || f.HasExecError() {
			return true
		}
	}
	return false
}

// State holds the most recently loaded reports.
type State struct {
	Reports []*Report // Retained reports in chronological order, bounded by the history limit
	Current *Report   // Most recently loaded report (nil until the first load)
	Loaded  int       // Number of reports loaded so far, including dropped ones
}

// NewState creates a new state.
func NewState() *State {
	return &State{
		Reports: make([]*Report, 0),
	}
}
