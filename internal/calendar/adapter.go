package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schedwise/schedwise/internal/schedule"
)

// Provider adapts a Calendar client to the scheduling orchestrator's
// provider boundary. All events land on one calendar, normally "primary".
type Provider struct {
	client     *Client
	calendarID string
}

// NewProvider wraps a client. An empty calendarID means "primary".
func NewProvider(client *Client, calendarID string) *Provider {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Provider{client: client, calendarID: calendarID}
}

var _ schedule.CalendarProvider = (*Provider)(nil)

// CreateEvent creates one event from orchestrator input.
func (p *Provider) CreateEvent(ctx context.Context, input schedule.EventInput) (*schedule.CreatedEvent, error) {
	in := EventInput{
		Summary:      input.Title,
		Description:  input.Notes,
		Location:     input.Location,
		Start:        input.Start,
		End:          input.End,
		TimeZone:     input.Timezone,
		Transparency: input.Transparency,
		Visibility:   input.Visibility,
	}

	for _, a := range input.Attendees {
		in.Attendees = append(in.Attendees, AttendeeInput{
			Email:       a.Email,
			DisplayName: a.Name,
			Optional:    a.Optional,
		})
	}
	// Events with guests get a Meet link out of the box.
	if len(in.Attendees) > 0 {
		in.UseDefaultConferenceData = true
		in.GuestsCanSeeOtherGuests = true
	}

	for _, r := range input.Reminders {
		in.ReminderOverrides = append(in.ReminderOverrides, ReminderOverride{
			Method:  r.Method,
			Minutes: int64(r.MinutesBefore),
		})
	}

	if input.RecurrenceRule != "" {
		in.Recurrence = []string{input.RecurrenceRule}
	}

	props := make(map[string]string)
	if input.PreEventID != "" {
		props[PropPreEvent] = input.PreEventID
	}
	if input.PostEventID != "" {
		props[PropPostEvent] = input.PostEventID
	}
	if input.PrimaryID != "" {
		props[PropPrimaryEvent] = input.PrimaryID
	}
	if len(props) > 0 {
		in.ExtendedPrivate = props
	}

	created, err := p.client.CreateEvent(ctx, p.calendarID, in)
	if err != nil {
		return nil, err
	}

	return &schedule.CreatedEvent{
		EventID:    created.ID,
		CalendarID: p.calendarID,
		HTMLLink:   created.HTMLLink,
		Start:      created.Start,
		End:        created.End,
	}, nil
}

// LinkBufferEvents records the buffer sibling ids on an already-created
// event.
func (p *Provider) LinkBufferEvents(ctx context.Context, eventID, preID, postID string) error {
	props := make(map[string]string)
	if preID != "" {
		props[PropPreEvent] = preID
	}
	if postID != "" {
		props[PropPostEvent] = postID
	}
	if len(props) == 0 {
		return nil
	}
	return p.client.PatchEventProperties(ctx, p.calendarID, eventID, props)
}

// FindEvent locates an existing event by free-text query. Returns nil when
// nothing matches.
func (p *Provider) FindEvent(ctx context.Context, query string, timeMin, timeMax time.Time) (*schedule.FoundEvent, error) {
	events, err := p.client.ListEvents(ctx, p.calendarID, timeMin, timeMax, query)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	first := events[0]
	return &schedule.FoundEvent{
		EventID: first.ID,
		Title:   first.Summary,
		Start:   first.Start,
		End:     first.End,
	}, nil
}

// MoveEvent shifts an event to a new start, preserving its duration.
func (p *Provider) MoveEvent(ctx context.Context, eventID string, newStart time.Time) (*schedule.CreatedEvent, error) {
	moved, err := p.client.MoveEventStart(ctx, p.calendarID, eventID, newStart)
	if err != nil {
		return nil, err
	}
	return &schedule.CreatedEvent{
		EventID:    moved.ID,
		CalendarID: p.calendarID,
		HTMLLink:   moved.HTMLLink,
		Start:      moved.Start,
		End:        moved.End,
	}, nil
}

// BusySummary renders the calendar's busy periods in a window as a short
// human-readable list, consumed by invite email composition.
func (p *Provider) BusySummary(ctx context.Context, timeMin, timeMax time.Time) (string, error) {
	infos, err := p.client.QueryFreeBusy(ctx, timeMin, timeMax, []string{p.calendarID})
	if err != nil {
		return "", err
	}

	var ranges []TimeRange
	for _, info := range infos {
		ranges = append(ranges, info.Busy...)
	}
	if len(ranges) == 0 {
		return "No existing commitments in this window.", nil
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start.Before(ranges[j].Start) })

	lines := make([]string, 0, len(ranges))
	for _, r := range ranges {
		lines = append(lines, fmt.Sprintf("%s %s-%s",
			r.Start.Format("Mon Jan 2"),
			r.Start.Format("15:04"),
			r.End.Format("15:04"),
		))
	}
	return "Busy: " + strings.Join(lines, "; "), nil
}
