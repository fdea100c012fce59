package tui

import (
	"testing"

	"github.com/ansel1/tangview/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseInOutQuad(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{name: "start", t: 0, want: 10},
		{name: "quarter", t: 125, want: 15},
		{name: "middle", t: 250, want: 30},
		{name: "three quarters", t: 375, want: 45},
		{name: "end", t: 500, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, easeInOutQuad(tt.t, 10, 40, 500), 1e-9)
		})
	}
}

func TestScrollTo(t *testing.T) {
	m := loadedModel(t, manyFilesReport(40))

	var events []ExpandEvent
	cmd := m.ScrollTo("file-10.test.js", func(e ExpandEvent) {
		events = append(events, e)
	})
	require.NotNil(t, cmd)
	assert.True(t, m.Scrolling())

	var offsets []int
	for cmd != nil {
		_, cmd = m.Update(cmd())
		offsets = append(offsets, m.Offset())
	}

	require.Len(t, offsets, int(ScrollDuration/scrollFrame))
	assert.IsNonDecreasing(t, offsets)
	assert.Equal(t, 5, offsets[4])
	assert.Equal(t, 9, m.Offset())
	assert.False(t, m.Scrolling())
	assert.Equal(t, []ExpandEvent{{Key: "file-10.test.js", State: true}}, events)
}

func TestScrollTo_Clamped(t *testing.T) {
	m := loadedModel(t, manyFilesReport(40))

	drain(m, m.ScrollTo("file-35.test.js", nil))
	assert.Equal(t, 40-m.bodyHeight(), m.Offset())

	drain(m, m.ScrollTo("file-00.test.js", nil))
	assert.Equal(t, 0, m.Offset())
}

func TestScrollTo_UnknownID(t *testing.T) {
	m := loadedModel(t, manyFilesReport(5))

	called := false
	cmd := m.ScrollTo("nope.test.js", func(ExpandEvent) { called = true })
	assert.Nil(t, cmd)
	assert.False(t, m.Scrolling())
	assert.False(t, called)
}

func TestScrollTo_BeforeLoad(t *testing.T) {
	c := results.NewCollector()
	defer c.Close()
	m := NewModel(c)
	assert.Nil(t, m.ScrollTo("anything", nil))
}

func TestScrollTo_Superseded(t *testing.T) {
	m := loadedModel(t, manyFilesReport(40))

	var first, second int
	stale := m.ScrollTo("file-10.test.js", func(ExpandEvent) { first++ })
	current := m.ScrollTo("file-15.test.js", func(ExpandEvent) { second++ })

	_, cmd := m.Update(stale())
	assert.Nil(t, cmd)

	drain(m, current)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 14, m.Offset())
}

func TestScrollTo_AbandonedByCursor(t *testing.T) {
	m := loadedModel(t, manyFilesReport(40))

	called := false
	cmd := m.ScrollTo("file-30.test.js", func(ExpandEvent) { called = true })
	m.Update(key("down"))
	assert.False(t, m.Scrolling())

	drain(m, cmd)
	assert.False(t, called)
	assert.Equal(t, 0, m.Offset())
}

func TestNextFailureScrollsAndExpands(t *testing.T) {
	report := manyFilesReport(40)
	report.TestResults[30].NumPassingTests = 0
	report.TestResults[30].NumFailingTests = 1
	report.TestResults[30].TestResults[0].Status = results.StatusFailed
	m := loadedModel(t, report)

	_, cmd := m.Update(key("f"))
	require.NotNil(t, cmd)
	assert.Equal(t, "file-30.test.js", m.Cursor())

	drain(m, cmd)
	assert.Equal(t, []string{"file-30.test.js"}, m.Expanded())
	assert.Equal(t, 40-m.bodyHeight(), m.Offset())
	assert.Contains(t, m.View(), "› ▾ ✗ file-30.test.js")
}
