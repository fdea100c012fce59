package results

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// RecomputeTiming returns a deep copy of data in which every file's
// PerfStats.Runtime is the sum of its test durations and PerfStats.End is
// Start plus that runtime.
//
// If the copy cannot be made, the error is logged and data itself is
// returned unchanged, so callers may receive either the copy or the original.
func RecomputeTiming(data []TestFileResult) []TestFileResult {
	return recomputeTiming(data, slog.Default())
}

// RecomputeTimingWithLogger is RecomputeTiming with an explicit logger.
func RecomputeTimingWithLogger(data []TestFileResult, logger *slog.Logger) []TestFileResult {
	if logger == nil {
		logger = slog.Default()
	}
	return recomputeTiming(data, logger)
}

func recomputeTiming(data []TestFileResult, logger *slog.Logger) []TestFileResult {
	clone, err := cloneResults(data)
	if err != nil {
		logger.Error("recompute test timing", "error", err)
		return data
	}

	for i := range clone {
		var runtime float64
		for _, t := range clone[i].TestResults {
			runtime += t.DurationMs()
		}
		clone[i].PerfStats.Runtime = &runtime
		clone[i].PerfStats.End = clone[i].PerfStats.Start + runtime
	}
	return clone
}

// cloneResults makes a structural copy through a JSON round trip.
func cloneResults(data []TestFileResult) ([]TestFileResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("clone results: %w", err)
	}
	var clone []TestFileResult
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, fmt.Errorf("clone results: %w", err)
	}
	return clone, nil
}
