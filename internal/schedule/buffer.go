package schedule

import "time"

// SplitBuffers derives the buffer sibling events for a primary event.
// A before-buffer ends exactly at the primary's start and begins
// BeforeMinutes earlier; an after-buffer starts at the primary's end.
// Siblings inherit title, notes and guest-policy fields from the primary
// but never its attendees or reminders. Returned siblings are nil when the
// corresponding side is not configured.
func SplitBuffers(primary EventInput, cfg BufferConfig) (pre, post *EventInput) {
	if cfg.BeforeMinutes > 0 {
		b := bufferSibling(primary)
		b.End = primary.Start
		b.Start = primary.Start.Add(-time.Duration(cfg.BeforeMinutes) * time.Minute)
		pre = &b
	}
	if cfg.AfterMinutes > 0 {
		b := bufferSibling(primary)
		b.Start = primary.End
		b.End = primary.End.Add(time.Duration(cfg.AfterMinutes) * time.Minute)
		post = &b
	}
	return pre, post
}

// bufferSibling copies the inheritable fields of the primary event.
func bufferSibling(primary EventInput) EventInput {
	return EventInput{
		Title:        primary.Title,
		Notes:        primary.Notes,
		Timezone:     primary.Timezone,
		Transparency: primary.Transparency,
		Visibility:   primary.Visibility,
	}
}
