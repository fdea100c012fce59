package results

import "strings"

const (
	// GroupKeySeparator joins ancestor titles into a group key. It is not
	// expected to appear in any real describe-block title.
	GroupKeySeparator = "@@@@@Report@@@@@"

	// GroupTitleSeparator replaces GroupKeySeparator in displayed group titles.
	GroupTitleSeparator = " => "
)

// GroupedRow aggregates the tests sharing the same leading ancestor titles.
type GroupedRow struct {
	SubTitle        string           `json:"subTitle"`
	Tests           []TestCaseResult `json:"tests"`
	NumFailingTests int              `json:"numFailingTests"`
	NumPassingTests int              `json:"numPassingTests"`
	NumPendingTests int              `json:"numPendingTests"`
	NumTodoTests    int              `json:"numTodoTests"`
}

// Row is one entry of a grouped listing. Exactly one of Test or Group is set.
type Row struct {
	Test  *TestCaseResult `json:"test,omitempty"`
	Group *GroupedRow     `json:"group,omitempty"`
}

// IsGroup reports whether the row is a synthetic group row.
func (r Row) IsGroup() bool {
	return r.Group != nil
}

// GroupByAncestors nests test cases under their first groupLevel ancestor
// titles.
//
// Tests with fewer than groupLevel ancestors are returned as-is, in input
// order, ahead of every group. Groups follow in the order their key was
// first seen. Each grouped test is a copy whose AncestorTitles has the
// leading groupLevel titles dropped. Negative levels are treated as 0.
func GroupByAncestors(tests []TestCaseResult, groupLevel int) []Row {
	if groupLevel < 0 {
		groupLevel = 0
	}

	rows := make([]Row, 0)
	groups := make(map[string][]TestCaseResult)
	groupOrder := make([]string, 0)

	for i := range tests {
		item := tests[i]
		if len(item.AncestorTitles) < groupLevel {
			rows = append(rows, Row{Test: &item})
			continue
		}

		key := strings.Join(item.AncestorTitles[:groupLevel], GroupKeySeparator)
		if _, exists := groups[key]; !exists {
			groupOrder = append(groupOrder, key)
		}

		child := item
		child.AncestorTitles = append([]string{}, item.AncestorTitles[groupLevel:]...)
		groups[key] = append(groups[key], child)
	}

	for _, key := range groupOrder {
		rows = append(rows, Row{Group: newGroupedRow(key, groups[key])})
	}
	return rows
}

func newGroupedRow(key string, tests []TestCaseResult) *GroupedRow {
	group := &GroupedRow{
		SubTitle: strings.ReplaceAll(key, GroupKeySeparator, GroupTitleSeparator),
		Tests:    tests,
	}
	for _, t := range tests {
		switch t.Status {
		case StatusFailed:
			group.NumFailingTests++
		case StatusPassed:
			group.NumPassingTests++
		case StatusPending:
			group.NumPendingTests++
		case StatusTodo:
			group.NumTodoTests++
		}
	}
	return group
}
