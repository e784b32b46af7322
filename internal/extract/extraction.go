package extract

import (
	"encoding/json"
	"fmt"

	"github.com/schedwise/schedwise/internal/schedule"
)

// Wire types for the model's JSON output. Every field is optional; the
// requirement tree downstream decides what is still missing.

type wireExtraction struct {
	Title           string              `json:"title,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Location        string              `json:"location,omitempty"`
	DurationMinutes int                 `json:"durationMinutes,omitempty"`
	Timezone        string              `json:"timezone,omitempty"`
	Transparency    string              `json:"transparency,omitempty"`
	Visibility      string              `json:"visibility,omitempty"`
	Priority        string              `json:"priority,omitempty"`
	IsBreak         *bool               `json:"isBreak,omitempty"`
	AllDay          *bool               `json:"allDay,omitempty"`
	Attendees       []wireAttendee      `json:"attendees,omitempty"`
	Reminders       []wireReminder      `json:"reminders,omitempty"`
	TimePreferences []wireTimePref      `json:"timePreferences,omitempty"`
	Recurrence      *wireRecurrence     `json:"recurrence,omitempty"`
	BufferTime      *wireBuffer         `json:"bufferTime,omitempty"`
	TargetQuery     string              `json:"targetQuery,omitempty"`
	When            *wireTemporalFields `json:"when,omitempty"`
}

type wireAttendee struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Host     bool   `json:"host,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

type wireReminder struct {
	Method        string `json:"method,omitempty"`
	MinutesBefore int    `json:"minutesBefore,omitempty"`
}

type wireTimePref struct {
	Label      string `json:"label,omitempty"`
	ISOWeekday int    `json:"isoWeekday,omitempty"`
	StartHour  int    `json:"startHour,omitempty"`
	EndHour    int    `json:"endHour,omitempty"`
}

type wireRecurrence struct {
	Frequency  string   `json:"frequency,omitempty"`
	Interval   int      `json:"interval,omitempty"`
	ByDay      []string `json:"byDay,omitempty"`
	ByMonthDay []int    `json:"byMonthDay,omitempty"`
	Count      int      `json:"count,omitempty"`
}

type wireBuffer struct {
	BeforeEvent int `json:"beforeEvent,omitempty"`
	AfterEvent  int `json:"afterEvent,omitempty"`
}

type wireTemporalFields struct {
	Year           *int                `json:"year,omitempty"`
	Month          *int                `json:"month,omitempty"`
	Day            *int                `json:"day,omitempty"`
	ISOWeekday     *int                `json:"isoWeekday,omitempty"`
	Hour           *int                `json:"hour,omitempty"`
	Minute         *int                `json:"minute,omitempty"`
	StartTime      string              `json:"startTime,omitempty"`
	Offset         *wireOffset         `json:"offset,omitempty"`
	RelativeChange *wireOffset         `json:"relativeChange,omitempty"`
	RecurrenceEnd  *wireTemporalFields `json:"recurrenceEnd,omitempty"`
}

type wireOffset struct {
	Weeks   int `json:"weeks,omitempty"`
	Days    int `json:"days,omitempty"`
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
}

// parseExtraction decodes the model's JSON into domain types.
func parseExtraction(data []byte) (*schedule.Extraction, error) {
	var wire wireExtraction
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing extraction: %w", err)
	}
	return wire.toDomain(), nil
}

func (w *wireExtraction) toDomain() *schedule.Extraction {
	ex := &schedule.Extraction{
		Title:           w.Title,
		Notes:           w.Notes,
		Location:        w.Location,
		DurationMinutes: w.DurationMinutes,
		Timezone:        w.Timezone,
		Transparency:    w.Transparency,
		Visibility:      w.Visibility,
		Priority:        w.Priority,
		IsBreak:         w.IsBreak,
		AllDay:          w.AllDay,
		TargetQuery:     w.TargetQuery,
	}

	for _, a := range w.Attendees {
		ex.Attendees = append(ex.Attendees, schedule.Attendee{
			Name:     a.Name,
			Email:    a.Email,
			Host:     a.Host,
			Optional: a.Optional,
		})
	}

	for _, r := range w.Reminders {
		ex.Reminders = append(ex.Reminders, schedule.Reminder{
			Method:        r.Method,
			MinutesBefore: r.MinutesBefore,
		})
	}

	for _, p := range w.TimePreferences {
		ex.TimePreferences = append(ex.TimePreferences, schedule.TimePreference{
			Label:      p.Label,
			ISOWeekday: p.ISOWeekday,
			StartHour:  p.StartHour,
			EndHour:    p.EndHour,
		})
	}

	if w.Recurrence != nil {
		ex.Recurrence = &schedule.Recurrence{
			Frequency:  w.Recurrence.Frequency,
			Interval:   w.Recurrence.Interval,
			ByDay:      w.Recurrence.ByDay,
			ByMonthDay: w.Recurrence.ByMonthDay,
			Count:      w.Recurrence.Count,
		}
	}

	if w.BufferTime != nil {
		ex.Buffer = &schedule.BufferConfig{
			BeforeMinutes: w.BufferTime.BeforeEvent,
			AfterMinutes:  w.BufferTime.AfterEvent,
		}
	}

	if w.When != nil {
		ex.Temporal = w.When.toDomain()
	}
	return ex
}

func (w *wireTemporalFields) toDomain() schedule.TemporalFields {
	f := schedule.TemporalFields{
		Year:       w.Year,
		Month:      w.Month,
		Day:        w.Day,
		ISOWeekday: w.ISOWeekday,
		Hour:       w.Hour,
		Minute:     w.Minute,
		StartTime:  w.StartTime,
	}
	if w.Offset != nil {
		f.Offset = &schedule.Offset{
			Weeks:   w.Offset.Weeks,
			Days:    w.Offset.Days,
			Hours:   w.Offset.Hours,
			Minutes: w.Offset.Minutes,
		}
	}
	if w.RelativeChange != nil {
		f.RelativeChange = &schedule.Offset{
			Weeks:   w.RelativeChange.Weeks,
			Days:    w.RelativeChange.Days,
			Hours:   w.RelativeChange.Hours,
			Minutes: w.RelativeChange.Minutes,
		}
	}
	if w.RecurrenceEnd != nil {
		end := w.RecurrenceEnd.toDomain()
		f.RecurrenceEnd = &end
	}
	return f
}
