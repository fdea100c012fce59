package format

import (
	"sort"
	"time"
)

// DateLayout is the layout FormatDate produces.
const DateLayout = "2006-01-02 15:04:05"

// FormatDate formats a millisecond epoch timestamp in local time,
// truncated to seconds.
func FormatDate(timestampMs int64) string {
	return FormatDateIn(timestampMs, time.Local)
}

// FormatDateIn is FormatDate in the given location.
func FormatDateIn(timestampMs int64, loc *time.Location) string {
	return time.UnixMilli(timestampMs).In(loc).Format(DateLayout)
}

// ExistKeys returns the keys whose value is true, or every key when
// globalExpand is set. Keys are sorted.
func ExistKeys(expanded map[string]bool, globalExpand bool) []string {
	keys := make([]string, 0, len(expanded))
	for k, v := range expanded {
		if globalExpand || v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
