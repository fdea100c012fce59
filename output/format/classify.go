package format

import "github.com/ansel1/tangview/results"

// RowClass is the display class tag of a report row.
type RowClass string

const (
	RowFail     RowClass = "row_fail"
	RowPending  RowClass = "row_pending"
	RowTodo     RowClass = "row_todo"
	RowPassEven RowClass = "row_pass_even"
	RowPassOdd  RowClass = "row_pass_odd"
)

// ClassifyRow maps a status and row index to a class tag.
// Unknown statuses are treated as passed and alternate on index parity.
func ClassifyRow(status results.Status, index int) RowClass {
	switch status {
	case results.StatusFailed:
		return RowFail
	case results.StatusPending:
		return RowPending
	case results.StatusTodo:
		return RowTodo
	}
	if index%2 == 0 {
		return RowPassEven
	}
	return RowPassOdd
}

// RootRowCounts carries the flags that decide the status of a file or group row.
type RootRowCounts struct {
	NumFailingTests int
	NumPendingTests int
	NumTodoTests    int
	TestExecError   bool
}

// FileCounts returns the root row counts of a test file.
func FileCounts(f results.TestFileResult) RootRowCounts {
	return RootRowCounts{
		NumFailingTests: f.NumFailingTests,
		NumPendingTests: f.NumPendingTests,
		NumTodoTests:    f.NumTodoTests,
		TestExecError:   f.HasExecError(),
	}
}

// GroupCounts returns the root row counts of a grouped row.
func GroupCounts(g *results.GroupedRow) RootRowCounts {
	return RootRowCounts{
		NumFailingTests: g.NumFailingTests,
		NumPendingTests: g.NumPendingTests,
		NumTodoTests:    g.NumTodoTests,
	}
}

// Status derives a single status from the counts. An execution error
// overrides every per-test count.
func (c RootRowCounts) Status() results.Status {
	switch {
	case c.TestExecError:
		return results.StatusFailed
	case c.NumFailingTests != 0:
		return results.StatusFailed
	case c.NumPendingTests != 0:
		return results.StatusPending
	case c.NumTodoTests != 0:
		return results.StatusTodo
	}
	return results.StatusPassed
}

// ClassifyRootRow classifies a file or group row.
func ClassifyRootRow(c RootRowCounts, index int) RowClass {
	return ClassifyRow(c.Status(), index)
}
