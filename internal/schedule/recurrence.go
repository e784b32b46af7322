package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recurrence describes how an event repeats. Only Frequency is required
// for a non-empty rule; a nil or frequency-less Recurrence means the event
// does not repeat, which is the common case and not an error.
type Recurrence struct {
	Frequency  string // "daily", "weekly", "monthly", "yearly"
	Interval   int    // every N periods; 0 is treated as 1
	ByDay      []string
	ByMonthDay []int
	Count      int
	Until      time.Time
}

// frequency names accepted from extraction, mapped to RRULE FREQ values.
var rruleFreq = map[string]string{
	"daily":   "DAILY",
	"weekly":  "WEEKLY",
	"monthly": "MONTHLY",
	"yearly":  "YEARLY",
}

// weekday abbreviations accepted from extraction, normalized to RRULE BYDAY.
var rruleDay = map[string]string{
	"monday": "MO", "mo": "MO", "mon": "MO",
	"tuesday": "TU", "tu": "TU", "tue": "TU",
	"wednesday": "WE", "we": "WE", "wed": "WE",
	"thursday": "TH", "th": "TH", "thu": "TH",
	"friday": "FR", "fr": "FR", "fri": "FR",
	"saturday": "SA", "sa": "SA", "sat": "SA",
	"sunday": "SU", "su": "SU", "sun": "SU",
}

// RRule renders the recurrence as a provider rule string, e.g.
// "RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE;COUNT=10". Returns the empty
// string when the event does not recur.
func (r *Recurrence) RRule() string {
	if r == nil || r.Frequency == "" {
		return ""
	}

	freq, ok := rruleFreq[strings.ToLower(r.Frequency)]
	if !ok {
		return ""
	}

	interval := r.Interval
	if interval <= 0 {
		interval = 1
	}

	parts := []string{
		"FREQ=" + freq,
		fmt.Sprintf("INTERVAL=%d", interval),
	}

	if len(r.ByDay) > 0 {
		days := make([]string, 0, len(r.ByDay))
		for _, d := range r.ByDay {
			if abbr, ok := rruleDay[strings.ToLower(strings.TrimSpace(d))]; ok {
				days = append(days, abbr)
			}
		}
		if len(days) > 0 {
			parts = append(parts, "BYDAY="+strings.Join(days, ","))
		}
	}

	if len(r.ByMonthDay) > 0 {
		days := make([]string, 0, len(r.ByMonthDay))
		for _, d := range r.ByMonthDay {
			days = append(days, strconv.Itoa(d))
		}
		parts = append(parts, "BYMONTHDAY="+strings.Join(days, ","))
	}

	if r.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.Count))
	} else if !r.Until.IsZero() {
		parts = append(parts, "UNTIL="+r.Until.UTC().Format("20060102T150405Z"))
	}

	return "RRULE:" + strings.Join(parts, ";")
}
