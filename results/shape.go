package results

import "sort"

// ShapedResult is the per-file row shown in the report table.
type ShapedResult struct {
	Name            string           `json:"name"` // test file path
	Time            float64          `json:"time"` // seconds, (end - start) / 1000
	NumFailingTests int              `json:"numFailingTests"`
	NumPassingTests int              `json:"numPassingTests"`
	NumPendingTests int              `json:"numPendingTests"`
	TestResults     []TestCaseResult `json:"testResults"`
}

// ShapeResults reduces file results to ShapedResults ordered by descending time.
// Equal times keep their input order. The input slice is not modified.
func ShapeResults(data []TestFileResult) []ShapedResult {
	shaped := make([]ShapedResult, 0, len(data))
	for _, f := range data {
		shaped = append(shaped, ShapedResult{
			Name:            f.TestFilePath,
			Time:            (f.PerfStats.End - f.PerfStats.Start) / 1000,
			NumFailingTests: f.NumFailingTests,
			NumPassingTests: f.NumPassingTests,
			NumPendingTests: f.NumPendingTests,
			TestResults:     f.TestResults,
		})
	}

	sort.SliceStable(shaped, func(i, j int) bool {
		return shaped[i].Time > shaped[j].Time
	})
	return shaped
}
