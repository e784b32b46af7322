package schedule

import "time"

// EventInput is the provider-independent description of a calendar event
// to create. It is only constructed once the requirement tree reports zero
// unmet leaves.
type EventInput struct {
	Title           string
	Notes           string
	Location        string
	Start           time.Time
	End             time.Time
	Timezone        string
	Attendees       []Attendee
	Reminders       []Reminder
	RecurrenceRule  string
	Transparency    string
	Visibility      string

	// Buffer linkage, stored as private extended properties on the
	// provider event.
	PreEventID  string
	PostEventID string
	PrimaryID   string // set on buffer siblings, pointing back at the primary
}

// CreatedEvent is what the provider reports back after a creation call.
type CreatedEvent struct {
	EventID    string
	CalendarID string
	HTMLLink   string
	Start      time.Time
	End        time.Time
}

// ResolvedEvent is the fully materialized result of a completed scheduling
// action: the primary event plus any buffer siblings, with bidirectional
// id references in place.
type ResolvedEvent struct {
	EventID     string
	CalendarID  string
	Title       string
	Start       time.Time
	End         time.Time
	Timezone    string
	Recurrence  string
	Attendees   []Attendee
	Reminders   []Reminder
	PreEventID  string
	PostEventID string
}

// FoundEvent is an existing provider event located by a free-text query,
// used by the reschedule skill.
type FoundEvent struct {
	EventID string
	Title   string
	Start   time.Time
	End     time.Time
}
