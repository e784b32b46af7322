package schedule

import (
	"fmt"
	"time"
)

// Offset is a relative displacement from "now", e.g. "in two hours" or
// "three weeks from now". When an extraction carries an offset, it takes
// precedence over any absolute date fields.
type Offset struct {
	Weeks   int
	Days    int
	Hours   int
	Minutes int
}

func (o *Offset) empty() bool {
	return o == nil || (o.Weeks == 0 && o.Days == 0 && o.Hours == 0 && o.Minutes == 0)
}

// shift applies the displacement to t. Weeks and days go through AddDate
// so DST transitions keep the wall clock.
func (o *Offset) shift(t time.Time) time.Time {
	t = t.AddDate(0, 0, o.Weeks*7+o.Days)
	return t.Add(time.Duration(o.Hours)*time.Hour + time.Duration(o.Minutes)*time.Minute)
}

// TemporalFields is the sparse date/time description produced by
// extraction. All fields are optional; pointers distinguish "not
// mentioned" from zero values (minute 0 is a real answer).
type TemporalFields struct {
	Year       *int
	Month      *int // 1..12
	Day        *int // day of month
	ISOWeekday *int // 1=Monday .. 7=Sunday
	Hour       *int
	Minute     *int

	// StartTime is a literal clock string such as "15:00" or "3:04 PM".
	StartTime string

	// Offset is a relative displacement applied wholesale to "now".
	Offset *Offset

	// RelativeChange shifts an otherwise-described time, e.g. "an hour
	// later" or "30 minutes earlier" (negative values move earlier). It
	// is applied after the absolute fields are composed.
	RelativeChange *Offset

	// RecurrenceEnd describes when a recurring series stops, resolved by
	// recursive application of ResolveInstant.
	RecurrenceEnd *TemporalFields
}

// Empty reports whether the extraction carried no temporal information at
// all. The orchestrator uses this to decide whether a date/time
// requirement is still unmet.
func (f TemporalFields) Empty() bool {
	return f.Year == nil && f.Month == nil && f.Day == nil &&
		f.ISOWeekday == nil && f.Hour == nil && f.Minute == nil &&
		f.StartTime == "" && f.Offset.empty() && f.RelativeChange.empty()
}

// MergeTemporal overlays the current turn's temporal fields on the ones
// carried from previous turns. Unlike the draft merge, the new turn wins
// here: "actually, make it 4pm" must override last turn's answer.
func MergeTemporal(cur, prev TemporalFields) TemporalFields {
	m := cur
	if m.Year == nil {
		m.Year = prev.Year
	}
	if m.Month == nil {
		m.Month = prev.Month
	}
	if m.Day == nil {
		m.Day = prev.Day
	}
	if m.ISOWeekday == nil {
		m.ISOWeekday = prev.ISOWeekday
	}
	if m.Hour == nil {
		m.Hour = prev.Hour
	}
	if m.Minute == nil {
		m.Minute = prev.Minute
	}
	if m.StartTime == "" {
		m.StartTime = prev.StartTime
	}
	if m.Offset.empty() {
		m.Offset = prev.Offset
	}
	if m.RelativeChange.empty() {
		m.RelativeChange = prev.RelativeChange
	}
	if m.RecurrenceEnd == nil {
		m.RecurrenceEnd = prev.RecurrenceEnd
	}
	return m
}

// clock layouts accepted for literal start-time strings, tried in order.
var clockLayouts = []string{"15:04", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// ResolveInstant turns a sparse temporal description into one concrete
// instant in the given timezone.
//
// Resolution order:
//  1. A relative offset is applied to now and returned immediately.
//  2. Explicit absolute fields are composed onto now, unset components
//     inherited from now.
//  3. With neither day-of-month nor weekday given, the date defaults to
//     today. A weekday equal to today's resolves to next week's occurrence.
//  4. A relative change ("an hour later") shifts the composed result by a
//     signed displacement; alone, it shifts now.
//
// The boolean result is false only when the description is entirely empty,
// in which case the caller applies its own default.
func ResolveInstant(now time.Time, tz string, f TemporalFields) (time.Time, bool) {
	loc := now.Location()
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	now = now.In(loc)

	if f.Empty() {
		return time.Time{}, false
	}

	if !f.Offset.empty() {
		return f.Offset.shift(now), true
	}

	year, month, day := now.Year(), int(now.Month()), now.Day()
	if f.Year != nil {
		year = *f.Year
	}
	if f.Month != nil {
		month = *f.Month
	}
	if f.Day != nil {
		day = *f.Day
	}

	hour, minute := resolveClock(now, f)

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)

	// Weekday requests advance forward. A weekday matching today still
	// means next week: "on Monday" said on a Monday is not today.
	if f.Day == nil && f.ISOWeekday != nil {
		want := *f.ISOWeekday
		delta := (want - isoWeekday(t) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		t = t.AddDate(0, 0, delta)
	}

	if !f.RelativeChange.empty() {
		t = f.RelativeChange.shift(t)
	}

	return t, true
}

// resolveClock determines the time-of-day component, defaulting to the
// current clock time when the description has no time information.
func resolveClock(now time.Time, f TemporalFields) (hour, minute int) {
	if f.StartTime != "" {
		for _, layout := range clockLayouts {
			if parsed, err := time.Parse(layout, f.StartTime); err == nil {
				return parsed.Hour(), parsed.Minute()
			}
		}
	}
	if f.Hour != nil {
		minute = 0
		if f.Minute != nil {
			minute = *f.Minute
		}
		return *f.Hour, minute
	}
	if f.Minute != nil {
		return now.Hour(), *f.Minute
	}
	return now.Hour(), now.Minute()
}

// isoWeekday maps Go's Sunday-based weekday to ISO 8601 (1=Monday).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ResolveRecurrenceEnd resolves a nested recurrence-end description into a
// concrete instant, or returns false when none was given.
func ResolveRecurrenceEnd(now time.Time, tz string, f TemporalFields) (time.Time, bool) {
	if f.RecurrenceEnd == nil {
		return time.Time{}, false
	}
	return ResolveInstant(now, tz, *f.RecurrenceEnd)
}

// FormatInstant renders an instant the way assistant messages present
// times to the user.
func FormatInstant(t time.Time) string {
	return fmt.Sprintf("%s at %s", t.Format("Monday, January 2"), t.Format("3:04 PM MST"))
}
