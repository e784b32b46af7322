package dialogue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedwise/schedwise/internal/schedule"
)

var testNow = time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC) // a Wednesday

func intp(v int) *int { return &v }

type scriptedExtractor struct {
	queue []*schedule.Extraction
	err   error
}

func (e *scriptedExtractor) ExtractSchedule(_ context.Context, _ schedule.ExtractionRequest) (*schedule.Extraction, error) {
	if e.err != nil {
		return nil, e.err
	}
	if len(e.queue) == 0 {
		return &schedule.Extraction{}, nil
	}
	next := e.queue[0]
	e.queue = e.queue[1:]
	return next, nil
}

func (e *scriptedExtractor) ComposeInvite(_ context.Context, _ schedule.InviteRequest) (*schedule.InviteDraft, error) {
	return &schedule.InviteDraft{Subject: "Invitation", Body: "Please join."}, nil
}

func (e *scriptedExtractor) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.5}, nil
}

type stubProvider struct {
	created int
	found   *schedule.FoundEvent
}

func (p *stubProvider) CreateEvent(_ context.Context, input schedule.EventInput) (*schedule.CreatedEvent, error) {
	p.created++
	return &schedule.CreatedEvent{
		EventID: fmt.Sprintf("evt-%d", p.created),
		Start:   input.Start,
		End:     input.End,
	}, nil
}

func (p *stubProvider) LinkBufferEvents(context.Context, string, string, string) error {
	return nil
}

func (p *stubProvider) FindEvent(context.Context, string, time.Time, time.Time) (*schedule.FoundEvent, error) {
	return p.found, nil
}

func (p *stubProvider) MoveEvent(_ context.Context, eventID string, newStart time.Time) (*schedule.CreatedEvent, error) {
	return &schedule.CreatedEvent{EventID: eventID, Start: newStart}, nil
}

func (p *stubProvider) BusySummary(context.Context, time.Time, time.Time) (string, error) {
	return "", nil
}

func newTestController(t *testing.T, skill schedule.Skill, extractor schedule.Extractor, provider schedule.CalendarProvider) *Controller {
	t.Helper()
	orc, err := schedule.NewOrchestrator(skill, schedule.Deps{
		Provider:  provider,
		Extractor: extractor,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return NewController(orc, nil)
}

func TestHandleTurn_MissingThenCompleted(t *testing.T) {
	extractor := &scriptedExtractor{queue: []*schedule.Extraction{
		{Title: "Focus time", DurationMinutes: 30},
		{Temporal: schedule.TemporalFields{ISOWeekday: intp(5)}},
	}}
	provider := &stubProvider{}
	ctrl := newTestController(t, schedule.SkillBlockTime, extractor, provider)

	state := &State{ID: "c1", OwnerID: "u1", Skill: schedule.SkillBlockTime, Timezone: "UTC"}

	reply, err := ctrl.HandleTurn(context.Background(), state, "block 30 minutes for focus time")
	require.NoError(t, err)

	assert.Equal(t, schedule.StatusMissingFields, state.Status)
	require.NotNil(t, state.Continuation, "continuation carried to the next turn")
	require.Len(t, state.Turns, 2, "exactly one user and one assistant turn")
	assert.Equal(t, RoleUser, state.Turns[0].Role)
	assert.Equal(t, RoleAssistant, state.Turns[1].Role)
	assert.Equal(t, "When should I block off the time?", reply)

	reply, err = ctrl.HandleTurn(context.Background(), state, "Friday works")
	require.NoError(t, err)

	assert.Equal(t, schedule.StatusCompleted, state.Status)
	assert.Nil(t, state.Continuation, "completion clears the continuation")
	require.Len(t, state.Turns, 4)
	assert.Contains(t, reply, "Focus time")
	assert.Equal(t, 1, provider.created)
}

func TestHandleTurn_ErrorLeavesStateUntouched(t *testing.T) {
	extractor := &scriptedExtractor{err: errors.New("model overloaded")}
	ctrl := newTestController(t, schedule.SkillBlockTime, extractor, &stubProvider{})

	state := &State{ID: "c1", OwnerID: "u1", Timezone: "UTC"}

	_, err := ctrl.HandleTurn(context.Background(), state, "block some time")
	require.Error(t, err)

	assert.Empty(t, state.Turns)
	assert.Empty(t, state.Status)
	assert.Nil(t, state.Continuation)
}

func TestHandleTurn_EventNotFound(t *testing.T) {
	extractor := &scriptedExtractor{queue: []*schedule.Extraction{
		{
			TargetQuery: "dentist",
			Temporal:    schedule.TemporalFields{ISOWeekday: intp(1), StartTime: "9:00"},
		},
	}}
	provider := &stubProvider{found: nil}
	ctrl := newTestController(t, schedule.SkillReschedule, extractor, provider)

	state := &State{ID: "c1", OwnerID: "u1", Timezone: "UTC"}

	reply, err := ctrl.HandleTurn(context.Background(), state, "move my dentist appointment to monday 9am")
	require.NoError(t, err)

	assert.Equal(t, schedule.StatusEventNotFound, state.Status)
	assert.Equal(t, eventNotFoundReply, reply)
	require.Len(t, state.Turns, 2)
}

func TestHandleTurn_NilState(t *testing.T) {
	ctrl := newTestController(t, schedule.SkillBlockTime, &scriptedExtractor{}, &stubProvider{})

	_, err := ctrl.HandleTurn(context.Background(), nil, "hello")
	assert.Error(t, err)
}
