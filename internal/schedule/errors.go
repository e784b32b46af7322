package schedule

import "fmt"

// Step names identify where in the pipeline an external call failed.
const (
	StepExtract     = "extract"
	StepDirectory   = "directory"
	StepCreateEvent = "create_event"
	StepBuffer      = "buffer_event"
	StepLink        = "link_buffers"
	StepFindEvent   = "find_event"
	StepMoveEvent   = "move_event"
	StepPersist     = "persist"
	StepIndex       = "index"
	StepEmail       = "email"
)

// PartialState records which side effects had already been issued when a
// later step failed. There is no cross-call transaction and no rollback:
// the caller needs this to tell the user precisely what succeeded.
type PartialState struct {
	PrimaryEventID string
	PreEventID     string
	PostEventID    string
}

// Created reports whether any event was created before the failure.
func (p *PartialState) Created() bool {
	return p != nil && p.PrimaryEventID != ""
}

// StepError is a typed pipeline failure. Partial is nil when nothing was
// created, so callers can distinguish "safe to retry from scratch" from
// "events exist, reconcile before retrying".
type StepError struct {
	Step    string
	Err     error
	Partial *PartialState
}

func (e *StepError) Error() string {
	if e.Partial.Created() {
		return fmt.Sprintf("schedule: step %s failed after creating event %s: %v", e.Step, e.Partial.PrimaryEventID, e.Err)
	}
	return fmt.Sprintf("schedule: step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step string, err error) *StepError {
	return &StepError{Step: step, Err: err}
}

func stepErrPartial(step string, err error, partial *PartialState) *StepError {
	return &StepError{Step: step, Err: err, Partial: partial}
}
