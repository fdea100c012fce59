package format

import (
	"strconv"
	"strings"
)

// TimeIcon prefixes every rendered duration.
const TimeIcon = "⏱"

type durationParts struct {
	hour string
	min  string
	sec  string
	msec string
}

// breakdown splits end-start (milliseconds) into zero-padded components.
// Hours are not wrapped at 24.
func breakdown(startMs, endMs float64) durationParts {
	span := int64(endMs - startMs)
	return durationParts{
		hour: padNumber(span/3_600_000, 2),
		min:  padNumber(span/60_000%60, 2),
		sec:  padNumber(span/1000%60, 2),
		msec: padNumber(span%1000, 3),
	}
}

// padNumber left-pads n with zeros to width. Longer values are left as-is.
func padNumber(n int64, width int) string {
	s := strconv.FormatInt(n, 10)
	if len(s) < width {
		return strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// FormatDuration formats the span between two millisecond timestamps.
//
// The result is "HH:MM:SS.mmm" when the span has an hour component and
// "MM:SS.mmm" otherwise.
func FormatDuration(startMs, endMs float64) string {
	p := breakdown(startMs, endMs)

	var s string
	if p.hour != "00" {
		s = p.hour + ":" + p.min + ":" + p.sec + "." + p.msec
	} else if p.min != "00" {
		s = p.min + ":" + p.sec + "." + p.msec
	} else if p.sec != "00" {
		s = p.min + ":" + p.sec + "." + p.msec
	} else {
		s = p.min + ":" + p.sec + "." + p.msec
	}
	return s
}

// DurationDisplay is a duration split into a dimmed Minor prefix and an
// emphasized Active part.
type DurationDisplay struct {
	Icon   string
	Minor  string
	Active string
}

// String returns the display as plain text, without the icon.
func (d DurationDisplay) String() string {
	return d.Minor + d.Active
}

// Render paints the display with the time styles.
func (d DurationDisplay) Render(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.TimeIcon.Render(d.Icon))
	b.WriteString(" ")
	if d.Minor != "" {
		b.WriteString(styles.TimeMinor.Render(d.Minor))
	}
	b.WriteString(styles.TimeActive.Render(d.Active))
	return b.String()
}

// FormatDurationDisplay formats the span between two millisecond timestamps
// for display, emphasizing the largest non-zero unit scale.
//
// Hour and minute scale spans are emphasized whole. Second scale spans dim
// the minutes, and sub-second spans dim everything but the milliseconds.
func FormatDurationDisplay(startMs, endMs float64) DurationDisplay {
	p := breakdown(startMs, endMs)
	d := DurationDisplay{Icon: TimeIcon}

	switch {
	case p.hour != "00":
		d.Active = p.hour + ":" + p.min + ":" + p.sec + "." + p.msec
	case p.min != "00":
		d.Active = p.min + ":" + p.sec + "." + p.msec
	case p.sec != "00":
		d.Minor = p.min + ":"
		d.Active = p.sec + "." + p.msec
	default:
		d.Minor = p.min + ":" + p.sec + "."
		d.Active = p.msec
	}
	return d
}
