package schedule

import (
	"context"
	"time"
)

// CalendarProvider is the calendar side-effect boundary. Implementations
// wrap a real provider API; fakes stand in for tests. Idempotency is the
// caller's responsibility.
type CalendarProvider interface {
	// CreateEvent creates one event and returns the provider ids.
	CreateEvent(ctx context.Context, input EventInput) (*CreatedEvent, error)

	// LinkBufferEvents patches the buffer linkage properties of an
	// already-created event.
	LinkBufferEvents(ctx context.Context, eventID, preID, postID string) error

	// FindEvent locates an existing event matching a free-text query in a
	// time window. Returns nil when nothing matches.
	FindEvent(ctx context.Context, query string, timeMin, timeMax time.Time) (*FoundEvent, error)

	// MoveEvent shifts an existing event to a new start, preserving its
	// duration.
	MoveEvent(ctx context.Context, eventID string, newStart time.Time) (*CreatedEvent, error)

	// BusySummary renders the owner's busy periods in a window, used when
	// composing invite emails.
	BusySummary(ctx context.Context, timeMin, timeMax time.Time) (string, error)
}

// Extraction is the sparse structured data pulled out of one chat
// fragment. Every field is best-effort: the extractor may omit any of
// them, and the requirement tree decides what is still missing.
type Extraction struct {
	Title           string
	Notes           string
	Location        string
	DurationMinutes int
	Timezone        string
	Transparency    string
	Visibility      string
	Priority        string
	IsBreak         *bool
	AllDay          *bool
	Attendees       []Attendee
	Reminders       []Reminder
	TimePreferences []TimePreference
	Recurrence      *Recurrence
	Buffer          *BufferConfig
	TargetQuery     string
	Temporal        TemporalFields
}

// ExtractionRequest carries one chat fragment to the extractor, plus the
// prior exchange when continuing an incomplete conversation.
type ExtractionRequest struct {
	Utterance      string
	PriorUtterance string
	PriorReply     string
	Now            time.Time
	Timezone       string
}

// InviteRequest asks the extractor to synthesize a meeting-invite email.
type InviteRequest struct {
	Title        string
	Start        time.Time
	DurationMins int
	Attendees    []Attendee
	BusySummary  string
}

// InviteDraft is the synthesized invite content.
type InviteDraft struct {
	Subject string
	Body    string
}

// Extractor is the natural-language boundary: structured extraction,
// invite composition, and embeddings for search indexing.
type Extractor interface {
	ExtractSchedule(ctx context.Context, req ExtractionRequest) (*Extraction, error)
	ComposeInvite(ctx context.Context, req InviteRequest) (*InviteDraft, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EventDocument is one entry in the search index.
type EventDocument struct {
	EventID   string
	OwnerID   string
	Title     string
	Start     time.Time
	Embedding []float32
}

// Store persists search-index entries, reminders and time-preference
// records. Two logical indices exist: every event lands in the general
// one, and events carrying explicit priority or time preferences also land
// in the training one.
type Store interface {
	IndexEvent(ctx context.Context, doc EventDocument) error
	IndexTrainingEvent(ctx context.Context, doc EventDocument) error
	SaveReminders(ctx context.Context, ownerID, eventID string, reminders []Reminder) error
	SaveTimePreferences(ctx context.Context, ownerID string, prefs []TimePreference) error
}

// Mailer dispatches templated outbound email.
type Mailer interface {
	Send(ctx context.Context, template string, locals map[string]string, to []string, replyTo string) error
}
