package extract

import (
	"fmt"
	"strings"

	"github.com/schedwise/schedwise/internal/schedule"
)

const extractionSystemPrompt = `You are a scheduling assistant that extracts structured fields from a user's chat message. Respond with a single JSON object and nothing else.

Extract only what the user actually said; never invent values. Omit any field the message does not mention. The JSON object may contain:

- "title": short event title
- "notes": free-form description
- "location": where the event takes place
- "durationMinutes": integer duration
- "timezone": IANA timezone name, only if the user named one
- "transparency": "opaque" or "transparent"
- "visibility": "default", "public" or "private"
- "priority": "low", "normal" or "high"
- "isBreak": true when the time is personal downtime
- "allDay": true for all-day events
- "attendees": array of {"name", "email", "host", "optional"}; mark the organizer with "host": true
- "reminders": array of {"method": "popup"|"email", "minutesBefore": integer}
- "timePreferences": array of {"label", "isoWeekday", "startHour", "endHour"} for soft preferences like "mornings"
- "recurrence": {"frequency": "daily"|"weekly"|"monthly"|"yearly", "interval", "byDay": ["monday",...], "byMonthDay": [ints], "count"}
- "bufferTime": {"beforeEvent": minutes, "afterEvent": minutes} for travel or prep time around the event
- "targetQuery": when the user wants to move or change an EXISTING event, a short description of that event
- "when": the date/time as sparse fields, see below

"when" fields, all optional: "year", "month" (1-12), "day", "isoWeekday" (1=Monday..7=Sunday), "hour" (0-23), "minute", "startTime" (literal clock string like "15:00" or "3pm"), "offset" ({"weeks","days","hours","minutes"} relative to now, e.g. "in two hours"), "relativeChange" (same shape, a signed shift of an already-stated or existing time), "recurrenceEnd" (same shape, for "until the end of October").

Use "isoWeekday" for weekday names ("Friday"), never resolve them to a date yourself. Use "offset" for relative phrases ("tomorrow" is {"days": 1}). Use "relativeChange" when the user adjusts a time already on the table ("an hour later" is {"hours": 1}, "30 minutes earlier" is {"minutes": -30}).

The user may be answering a question the assistant just asked; read the prior exchange for context and extract the answer into the right field.`

func extractionUserPrompt(req schedule.ExtractionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current time: %s (%s)\n", req.Now.Format("Monday, January 2, 2006 15:04"), req.Timezone)
	if req.PriorUtterance != "" {
		fmt.Fprintf(&b, "Earlier the user said: %s\n", req.PriorUtterance)
	}
	if req.PriorReply != "" {
		fmt.Fprintf(&b, "The assistant then asked: %s\n", req.PriorReply)
	}
	fmt.Fprintf(&b, "User message: %s", req.Utterance)
	return b.String()
}

const inviteSystemPrompt = `You write short, friendly meeting-invite emails. Respond with a single JSON object {"subject": ..., "body": ...} and nothing else. The body is plain text, a few sentences at most: say what the meeting is about, when it is, and close politely. Do not include a signature.`

func inviteUserPrompt(req schedule.InviteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", req.Title)
	fmt.Fprintf(&b, "Starts: %s\n", req.Start.Format("Monday, January 2, 2006 at 15:04 MST"))
	if req.DurationMins > 0 {
		fmt.Fprintf(&b, "Duration: %d minutes\n", req.DurationMins)
	}
	var names []string
	for _, a := range req.Attendees {
		if a.Host {
			continue
		}
		if a.Name != "" {
			names = append(names, a.Name)
		} else if a.Email != "" {
			names = append(names, a.Email)
		}
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, "Invitees: %s\n", strings.Join(names, ", "))
	}
	if req.BusySummary != "" {
		fmt.Fprintf(&b, "Organizer's calendar around that time: %s\n", req.BusySummary)
	}
	b.WriteString("Write the invite email.")
	return b.String()
}
