package schedule

import "time"

// Skill identifies which scheduling action a conversation is trying to
// realize.
type Skill string

const (
	// SkillBlockTime blocks off time on the requesting user's own calendar.
	SkillBlockTime Skill = "blockOffTime"

	// SkillMeetingInvite creates an event with attendees and sends an
	// invite email.
	SkillMeetingInvite Skill = "sendMeetingInvite"

	// SkillReschedule moves an existing event to a new time.
	SkillReschedule Skill = "rescheduleEvent"
)

// Attendee is one attendee reference in a draft. Name may be all the user
// gave us; the Attendee Resolver fills Email from the contact directory.
type Attendee struct {
	Name     string
	Email    string
	Host     bool
	Optional bool
}

// Reminder is a notification request attached to an event.
type Reminder struct {
	Method        string // "popup" or "email"
	MinutesBefore int
}

// TimePreference records a preferred scheduling window the user expressed,
// e.g. "mornings" or "Tuesdays after 2pm". Persisted for later ranking.
type TimePreference struct {
	Label      string
	ISOWeekday int // 1=Monday .. 7=Sunday, 0 when unspecified
	StartHour  int
	EndHour    int
}

// BufferConfig asks for transition time around the primary event.
type BufferConfig struct {
	BeforeMinutes int
	AfterMinutes  int
}

// Draft is the accumulating, skill-specific scheduling request built across
// conversation turns. Every field is optional until the requirement tree
// says otherwise; booleans are pointers because false is a meaningful
// answer that a later merge must not clobber.
type Draft struct {
	Skill Skill

	Title           string
	Notes           string
	Location        string
	DurationMinutes int
	Start           time.Time // resolved by the Temporal Resolver; zero until then
	Timezone        string
	Transparency    string // "opaque" or "transparent"
	Visibility      string // "default", "public", "private"
	Priority        string // "low", "normal", "high"
	IsBreak         *bool
	AllDay          *bool

	Attendees       []Attendee
	Reminders       []Reminder
	TimePreferences []TimePreference

	Recurrence *Recurrence
	Buffer     *BufferConfig

	// TargetQuery is the free-text description of an existing event for
	// skills that operate on one (e.g. "my 1:1 with Dana").
	TargetQuery string
}

// has reports whether the field addressed by a requirement key is present
// in the draft. Keys are the dot-paths used by the requirement trees.
func (d *Draft) has(key string) bool {
	switch key {
	case "title":
		return d.Title != ""
	case "duration":
		return d.DurationMinutes > 0
	case "when":
		return !d.Start.IsZero()
	case "timezone":
		return d.Timezone != ""
	case "attendees":
		return len(d.Attendees) > 0
	case "attendees[].email":
		// An attendee is addressable with a known email or with a name
		// the directory resolver can look up later.
		if len(d.Attendees) == 0 {
			return false
		}
		for _, a := range d.Attendees {
			if a.Email == "" && a.Name == "" {
				return false
			}
		}
		return true
	case "hostEmail":
		for _, a := range d.Attendees {
			if a.Host && a.Email != "" {
				return true
			}
		}
		return false
	case "targetQuery":
		return d.TargetQuery != ""
	case "location":
		return d.Location != ""
	default:
		return false
	}
}

// Merge combines the freshly extracted draft for the current turn with the
// draft accumulated from previous turns. Previously known, non-empty fields
// always win: a later turn can only add information, never regress it.
// Merge is idempotent.
func Merge(cur, prev Draft) Draft {
	m := cur

	if prev.Skill != "" {
		m.Skill = prev.Skill
	}
	if prev.Title != "" {
		m.Title = prev.Title
	}
	if prev.Notes != "" {
		m.Notes = prev.Notes
	}
	if prev.Location != "" {
		m.Location = prev.Location
	}
	if prev.DurationMinutes > 0 {
		m.DurationMinutes = prev.DurationMinutes
	}
	if !prev.Start.IsZero() {
		m.Start = prev.Start
	}
	if prev.Timezone != "" {
		m.Timezone = prev.Timezone
	}
	if prev.Transparency != "" {
		m.Transparency = prev.Transparency
	}
	if prev.Visibility != "" {
		m.Visibility = prev.Visibility
	}
	if prev.Priority != "" {
		m.Priority = prev.Priority
	}
	// Pointer booleans: nil means "never answered", so only nil is
	// overwritable. An explicit false must survive later turns.
	if prev.IsBreak != nil {
		m.IsBreak = prev.IsBreak
	}
	if prev.AllDay != nil {
		m.AllDay = prev.AllDay
	}
	if len(prev.Attendees) > 0 {
		m.Attendees = prev.Attendees
	}
	if len(prev.Reminders) > 0 {
		m.Reminders = prev.Reminders
	}
	if len(prev.TimePreferences) > 0 {
		m.TimePreferences = prev.TimePreferences
	}
	if prev.Recurrence != nil {
		m.Recurrence = prev.Recurrence
	}
	if prev.Buffer != nil {
		m.Buffer = prev.Buffer
	}
	if prev.TargetQuery != "" {
		m.TargetQuery = prev.TargetQuery
	}

	return m
}
