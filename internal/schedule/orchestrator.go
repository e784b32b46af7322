package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schedwise/schedwise/internal/logging"
)

// Status is the outcome classification of one orchestrator call.
type Status string

const (
	StatusCompleted     Status = "completed"
	StatusMissingFields Status = "missing_fields"
	StatusEventNotFound Status = "event_not_found"
)

// Continuation is the context carried from a missing_fields turn into the
// next one: the accumulated draft, the raw utterance it came from, and the
// temporal fields extracted so far. It is opaque to the Dialogue
// Controller, which only stores and returns it.
type Continuation struct {
	Draft        Draft
	RawUtterance string
	Temporal     TemporalFields
}

// Outcome is the orchestrator's return contract.
type Outcome struct {
	Status       Status
	Message      string  // human-readable success payload when completed
	Missing      []*Node // unmet leaves when missing_fields
	Continuation *Continuation
	Partial      *PartialState // set when a completed turn had partial side-effect failures
}

// TurnRequest is one conversation turn's input to the orchestrator.
type TurnRequest struct {
	OwnerID        string
	Utterance      string
	Timezone       string // pending form answer, if the UI collected one
	PriorUtterance string
	PriorReply     string
}

// Deps are the external collaborators composed by the orchestrator.
type Deps struct {
	Provider  CalendarProvider
	Directory Directory
	Extractor Extractor
	Store     Store
	Mailer    Mailer
	Logger    *slog.Logger

	// CallTimeout bounds every external call. Timeout means failure;
	// side effects already issued are never rolled back.
	CallTimeout time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Orchestrator runs the per-skill scheduling pipeline: extraction,
// temporal resolution, cross-turn merge, requirement validation, and the
// finalize tail of external side effects.
type Orchestrator struct {
	skill Skill
	spec  *Spec
	deps  Deps
}

// DefaultCallTimeout bounds external calls when Deps does not say
// otherwise.
const DefaultCallTimeout = 30 * time.Second

// NewOrchestrator creates an orchestrator for one skill.
func NewOrchestrator(skill Skill, deps Deps) (*Orchestrator, error) {
	spec := SpecFor(skill)
	if spec == nil {
		return nil, fmt.Errorf("schedule: unknown skill %q", skill)
	}
	if deps.Provider == nil || deps.Extractor == nil {
		return nil, fmt.Errorf("schedule: provider and extractor are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = DefaultCallTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{skill: skill, spec: spec, deps: deps}, nil
}

// Skill returns the skill this orchestrator serves.
func (o *Orchestrator) Skill() Skill {
	return o.skill
}

func (o *Orchestrator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.deps.CallTimeout)
}

// Begin handles the first turn of a conversation: extract, resolve time,
// validate, and either finalize or report what is still missing.
func (o *Orchestrator) Begin(ctx context.Context, req TurnRequest) (*Outcome, error) {
	ex, err := o.extract(ctx, ExtractionRequest{
		Utterance: req.Utterance,
		Now:       o.deps.Now(),
		Timezone:  req.Timezone,
	})
	if err != nil {
		return nil, err
	}

	draft := o.draftFrom(ex, req.Timezone)
	return o.validateOrFinalize(ctx, req, draft, req.Utterance, ex.Temporal)
}

// Continue handles a follow-up turn after missing_fields: extract only the
// new fragment, overlay its temporal fields on the carried ones (new
// wins), merge the new draft onto the accumulated one (known data wins),
// and re-validate.
func (o *Orchestrator) Continue(ctx context.Context, req TurnRequest, cont Continuation) (*Outcome, error) {
	ex, err := o.extract(ctx, ExtractionRequest{
		Utterance:      req.Utterance,
		PriorUtterance: cont.RawUtterance,
		PriorReply:     req.PriorReply,
		Now:            o.deps.Now(),
		Timezone:       req.Timezone,
	})
	if err != nil {
		return nil, err
	}

	ex.Temporal = MergeTemporal(ex.Temporal, cont.Temporal)
	newDraft := o.draftFrom(ex, req.Timezone)
	merged := Merge(newDraft, cont.Draft)

	// A newly resolved start is the one field where fresh information
	// beats the carried draft: "actually, Friday" must win.
	if !newDraft.Start.IsZero() {
		merged.Start = newDraft.Start
	}

	return o.validateOrFinalize(ctx, req, merged, req.Utterance, ex.Temporal)
}

func (o *Orchestrator) extract(ctx context.Context, req ExtractionRequest) (*Extraction, error) {
	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	ex, err := o.deps.Extractor.ExtractSchedule(callCtx, req)
	if err != nil {
		return nil, stepErr(StepExtract, err)
	}
	if ex == nil {
		ex = &Extraction{}
	}
	return ex, nil
}

// draftFrom builds a fresh draft from one turn's extraction, resolving the
// temporal description into a concrete start when possible.
func (o *Orchestrator) draftFrom(ex *Extraction, formTimezone string) Draft {
	tz := ex.Timezone
	if tz == "" {
		tz = formTimezone
	}

	d := Draft{
		Skill:           o.skill,
		Title:           ex.Title,
		Notes:           ex.Notes,
		Location:        ex.Location,
		DurationMinutes: ex.DurationMinutes,
		Timezone:        tz,
		Transparency:    ex.Transparency,
		Visibility:      ex.Visibility,
		Priority:        ex.Priority,
		IsBreak:         ex.IsBreak,
		AllDay:          ex.AllDay,
		Attendees:       ex.Attendees,
		Reminders:       ex.Reminders,
		TimePreferences: ex.TimePreferences,
		Recurrence:      ex.Recurrence,
		Buffer:          ex.Buffer,
		TargetQuery:     ex.TargetQuery,
	}

	now := o.deps.Now()
	if start, ok := ResolveInstant(now, tz, ex.Temporal); ok {
		d.Start = start
	}
	if d.Recurrence != nil {
		if until, ok := ResolveRecurrenceEnd(now, tz, ex.Temporal); ok {
			d.Recurrence.Until = until
		}
	}
	return d
}

func (o *Orchestrator) validateOrFinalize(ctx context.Context, req TurnRequest, draft Draft, utterance string, temporal TemporalFields) (*Outcome, error) {
	unmet := Evaluate(o.spec.requiredNodes(), &draft)
	if len(unmet) > 0 {
		o.deps.Logger.Debug("requirements unmet",
			logging.Skill(string(o.skill)),
			slog.Int("missing", len(unmet)),
		)
		return &Outcome{
			Status:  StatusMissingFields,
			Missing: unmet,
			Continuation: &Continuation{
				Draft:        draft,
				RawUtterance: utterance,
				Temporal:     temporal,
			},
		}, nil
	}
	return o.finalize(ctx, req, draft, utterance, temporal)
}

// finalize is the shared tail of external side effects, run only once the
// requirement tree reports zero unmet leaves.
func (o *Orchestrator) finalize(ctx context.Context, req TurnRequest, draft Draft, utterance string, temporal TemporalFields) (*Outcome, error) {
	switch o.skill {
	case SkillReschedule:
		return o.finalizeReschedule(ctx, draft)
	case SkillMeetingInvite:
		attendees, unmet, err := o.resolveAttendees(ctx, draft.Attendees)
		if err != nil {
			return nil, err
		}
		if len(unmet) > 0 {
			return &Outcome{
				Status:  StatusMissingFields,
				Missing: unmet,
				Continuation: &Continuation{
					Draft:        draft,
					RawUtterance: utterance,
					Temporal:     temporal,
				},
			}, nil
		}
		draft.Attendees = attendees
	}

	input := o.eventInput(draft)

	callCtx, cancel := o.callCtx(ctx)
	primary, err := o.deps.Provider.CreateEvent(callCtx, input)
	cancel()
	if err != nil {
		return nil, stepErr(StepCreateEvent, err)
	}

	partial := &PartialState{PrimaryEventID: primary.EventID}
	var notes []string

	if draft.Buffer != nil {
		preID, postID, bufErr := o.createBuffers(ctx, input, *draft.Buffer, primary.EventID)
		partial.PreEventID = preID
		partial.PostEventID = postID
		if bufErr != nil {
			// The primary event exists; keep it and tell the user what is
			// missing instead of failing the whole turn.
			o.deps.Logger.Error("buffer event creation incomplete",
				logging.Skill(string(o.skill)),
				logging.Err(bufErr),
				slog.String("event_id", primary.EventID),
			)
			notes = append(notes, "I couldn't add all the requested buffer time around it.")
		}
	}

	if err := o.persist(ctx, req.OwnerID, primary.EventID, draft); err != nil {
		o.deps.Logger.Error("persisting reminders and preferences failed",
			logging.Skill(string(o.skill)), logging.Err(err))
		notes = append(notes, "Reminders could not be saved.")
	}

	if err := o.index(ctx, req.OwnerID, primary.EventID, draft); err != nil {
		o.deps.Logger.Warn("search indexing failed",
			logging.Skill(string(o.skill)), logging.Err(err))
	}

	if o.skill == SkillMeetingInvite {
		if err := o.sendInvite(ctx, draft); err != nil {
			o.deps.Logger.Error("invite email failed",
				logging.Skill(string(o.skill)), logging.Err(err))
			notes = append(notes, "The invite email could not be sent.")
		}
	}

	msg := o.successMessage(draft)
	if len(notes) > 0 {
		msg = msg + " " + strings.Join(notes, " ")
	}

	out := &Outcome{Status: StatusCompleted, Message: msg}
	if len(notes) > 0 {
		out.Partial = partial
	}
	return out, nil
}

func (o *Orchestrator) resolveAttendees(ctx context.Context, attendees []Attendee) ([]Attendee, []*Node, error) {
	if o.deps.Directory == nil {
		return attendees, nil, nil
	}
	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	resolved, unmet, err := ResolveAttendees(callCtx, o.deps.Directory, attendees)
	if err != nil {
		return nil, nil, stepErr(StepDirectory, err)
	}
	return resolved, unmet, nil
}

// eventInput assembles the provider input from a fully validated draft.
func (o *Orchestrator) eventInput(draft Draft) EventInput {
	duration := time.Duration(draft.DurationMinutes) * time.Minute
	input := EventInput{
		Title:          draft.Title,
		Notes:          draft.Notes,
		Location:       draft.Location,
		Start:          draft.Start,
		End:            draft.Start.Add(duration),
		Timezone:       draft.Timezone,
		Reminders:      draft.Reminders,
		RecurrenceRule: draft.Recurrence.RRule(),
		Transparency:   draft.Transparency,
		Visibility:     draft.Visibility,
	}
	if o.skill == SkillMeetingInvite {
		input.Attendees = draft.Attendees
	}
	return input
}

// createBuffers creates the configured sibling events and cross-links the
// triple. Siblings are created independently; a failure on one side still
// links whatever was created.
func (o *Orchestrator) createBuffers(ctx context.Context, primary EventInput, cfg BufferConfig, primaryID string) (preID, postID string, err error) {
	pre, post := SplitBuffers(primary, cfg)

	createSibling := func(sibling *EventInput) (string, error) {
		sibling.PrimaryID = primaryID
		callCtx, cancel := o.callCtx(ctx)
		defer cancel()
		created, cerr := o.deps.Provider.CreateEvent(callCtx, *sibling)
		if cerr != nil {
			return "", cerr
		}
		return created.EventID, nil
	}

	var firstErr error
	if pre != nil {
		if preID, err = createSibling(pre); err != nil {
			firstErr = stepErrPartial(StepBuffer, err, &PartialState{PrimaryEventID: primaryID})
		}
	}
	if post != nil {
		if postID, err = createSibling(post); err != nil && firstErr == nil {
			firstErr = stepErrPartial(StepBuffer, err, &PartialState{PrimaryEventID: primaryID, PreEventID: preID})
		}
	}

	if preID != "" || postID != "" {
		callCtx, cancel := o.callCtx(ctx)
		defer cancel()
		if lerr := o.deps.Provider.LinkBufferEvents(callCtx, primaryID, preID, postID); lerr != nil && firstErr == nil {
			firstErr = stepErrPartial(StepLink, lerr, &PartialState{PrimaryEventID: primaryID, PreEventID: preID, PostEventID: postID})
		}
	}

	return preID, postID, firstErr
}

func (o *Orchestrator) persist(ctx context.Context, ownerID, eventID string, draft Draft) error {
	if o.deps.Store == nil {
		return nil
	}
	if len(draft.Reminders) > 0 {
		callCtx, cancel := o.callCtx(ctx)
		err := o.deps.Store.SaveReminders(callCtx, ownerID, eventID, draft.Reminders)
		cancel()
		if err != nil {
			return stepErr(StepPersist, err)
		}
	}
	if len(draft.TimePreferences) > 0 {
		callCtx, cancel := o.callCtx(ctx)
		err := o.deps.Store.SaveTimePreferences(callCtx, ownerID, draft.TimePreferences)
		cancel()
		if err != nil {
			return stepErr(StepPersist, err)
		}
	}
	return nil
}

// index computes a title embedding and writes the search-index entries.
// Events carrying explicit priority or time preferences additionally land
// in the training index.
func (o *Orchestrator) index(ctx context.Context, ownerID, eventID string, draft Draft) error {
	if o.deps.Store == nil {
		return nil
	}

	callCtx, cancel := o.callCtx(ctx)
	vector, err := o.deps.Extractor.Embed(callCtx, draft.Title)
	cancel()
	if err != nil {
		return stepErr(StepIndex, err)
	}

	doc := EventDocument{
		EventID:   eventID,
		OwnerID:   ownerID,
		Title:     draft.Title,
		Start:     draft.Start,
		Embedding: vector,
	}

	callCtx, cancel = o.callCtx(ctx)
	err = o.deps.Store.IndexEvent(callCtx, doc)
	cancel()
	if err != nil {
		return stepErr(StepIndex, err)
	}

	if draft.Priority != "" || len(draft.TimePreferences) > 0 {
		callCtx, cancel = o.callCtx(ctx)
		err = o.deps.Store.IndexTrainingEvent(callCtx, doc)
		cancel()
		if err != nil {
			return stepErr(StepIndex, err)
		}
	}
	return nil
}

// sendInvite synthesizes the availability summary and invite body, then
// dispatches the email to every attendee with the host as reply-to.
func (o *Orchestrator) sendInvite(ctx context.Context, draft Draft) error {
	if o.deps.Mailer == nil {
		return nil
	}

	host, ok := HostOf(draft.Attendees)
	if !ok {
		return stepErr(StepEmail, fmt.Errorf("no host attendee for reply-to"))
	}

	busy := ""
	callCtx, cancel := o.callCtx(ctx)
	if summary, err := o.deps.Provider.BusySummary(callCtx, draft.Start, draft.Start.AddDate(0, 0, 7)); err == nil {
		busy = summary
	} else {
		o.deps.Logger.Warn("availability summary unavailable", logging.Err(err))
	}
	cancel()

	callCtx, cancel = o.callCtx(ctx)
	invite, err := o.deps.Extractor.ComposeInvite(callCtx, InviteRequest{
		Title:        draft.Title,
		Start:        draft.Start,
		DurationMins: draft.DurationMinutes,
		Attendees:    draft.Attendees,
		BusySummary:  busy,
	})
	cancel()
	if err != nil {
		return stepErr(StepEmail, err)
	}

	to := make([]string, 0, len(draft.Attendees))
	for _, a := range draft.Attendees {
		if !a.Host {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	locals := map[string]string{
		"Subject": invite.Subject,
		"Body":    invite.Body,
		"Title":   draft.Title,
		"When":    FormatInstant(draft.Start),
		"Host":    host.Name,
	}

	callCtx, cancel = o.callCtx(ctx)
	defer cancel()
	if err := o.deps.Mailer.Send(callCtx, "meeting-invite", locals, to, host.Email); err != nil {
		return stepErr(StepEmail, err)
	}
	return nil
}

func (o *Orchestrator) finalizeReschedule(ctx context.Context, draft Draft) (*Outcome, error) {
	now := o.deps.Now()

	callCtx, cancel := o.callCtx(ctx)
	found, err := o.deps.Provider.FindEvent(callCtx, draft.TargetQuery, now, now.AddDate(0, 1, 0))
	cancel()
	if err != nil {
		return nil, stepErr(StepFindEvent, err)
	}
	if found == nil {
		return &Outcome{Status: StatusEventNotFound}, nil
	}

	callCtx, cancel = o.callCtx(ctx)
	moved, err := o.deps.Provider.MoveEvent(callCtx, found.EventID, draft.Start)
	cancel()
	if err != nil {
		return nil, stepErr(StepMoveEvent, err)
	}

	return &Outcome{
		Status:  StatusCompleted,
		Message: fmt.Sprintf("I moved %q to %s.", found.Title, FormatInstant(moved.Start)),
	}, nil
}

func (o *Orchestrator) successMessage(draft Draft) string {
	when := FormatInstant(draft.Start)
	switch o.skill {
	case SkillMeetingInvite:
		guests := make([]string, 0, len(draft.Attendees))
		for _, a := range draft.Attendees {
			if a.Host {
				continue
			}
			if a.Name != "" {
				guests = append(guests, a.Name)
			} else {
				guests = append(guests, a.Email)
			}
		}
		return fmt.Sprintf("Done! I scheduled %q for %s and invited %s.", draft.Title, when, strings.Join(guests, ", "))
	default:
		msg := fmt.Sprintf("Done! I blocked off %d minutes for %q on %s.", draft.DurationMinutes, draft.Title, when)
		if rule := draft.Recurrence.RRule(); rule != "" {
			msg += " It repeats as requested."
		}
		return msg
	}
}
