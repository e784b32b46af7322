// Package schedule implements the conversational scheduling core: a
// declarative requirement tree over accumulating drafts, temporal
// resolution of partial date descriptions, cross-turn merging, attendee
// and recurrence resolution, buffer-event derivation, and the per-skill
// orchestrator that drives external side effects once a draft is
// complete.
//
// The package owns the interfaces for its external collaborators
// (CalendarProvider, Directory, Extractor, Store, Mailer); concrete
// clients live in their own packages and adapt to these interfaces.
package schedule
