package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schedwise/schedwise/internal/logging"
	"github.com/schedwise/schedwise/internal/schedule"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation transcript.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// State is one conversation's accumulated state: the transcript, the last
// reported status, and the continuation the orchestrator asked to carry
// into the next turn. The continuation is opaque here; only the
// orchestrator reads it.
type State struct {
	ID      string
	OwnerID string
	Skill   schedule.Skill

	// Timezone is the pending form answer, when the UI collected one.
	Timezone string

	Turns        []Turn
	Status       schedule.Status
	Continuation *schedule.Continuation
	UpdatedAt    time.Time
}

// lastAssistantReply returns the text of the most recent assistant turn.
func (s *State) lastAssistantReply() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleAssistant {
			return s.Turns[i].Text
		}
	}
	return ""
}

// eventNotFoundReply is the fixed response when a reschedule target cannot
// be located.
const eventNotFoundReply = "I couldn't find that event on your calendar. Could you describe it differently?"

// Controller turns raw user utterances into assistant replies by driving
// the per-skill orchestrator. Every successful call appends exactly one
// user turn and one assistant turn; a failed call leaves the state
// untouched so the turn can be retried.
type Controller struct {
	orc    *schedule.Orchestrator
	logger *slog.Logger
	now    func() time.Time
}

// NewController creates a controller around one skill's orchestrator.
func NewController(orc *schedule.Orchestrator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{orc: orc, logger: logger, now: time.Now}
}

// HandleTurn processes one user utterance against the conversation state
// and returns the assistant reply. State is only mutated after the
// orchestrator succeeds.
func (c *Controller) HandleTurn(ctx context.Context, state *State, utterance string) (string, error) {
	if state == nil {
		return "", fmt.Errorf("dialogue: nil conversation state")
	}

	req := schedule.TurnRequest{
		OwnerID:    state.OwnerID,
		Utterance:  utterance,
		Timezone:   state.Timezone,
		PriorReply: state.lastAssistantReply(),
	}

	var (
		out *schedule.Outcome
		err error
	)
	if state.Continuation == nil {
		out, err = c.orc.Begin(ctx, req)
	} else {
		out, err = c.orc.Continue(ctx, req, *state.Continuation)
	}
	if err != nil {
		c.logger.Error("turn failed",
			logging.Conversation(state.ID),
			logging.Skill(string(c.orc.Skill())),
			logging.Err(err),
		)
		return "", err
	}

	reply := c.replyFor(out)

	now := c.now()
	state.Turns = append(state.Turns,
		Turn{Role: RoleUser, Text: utterance, At: now},
		Turn{Role: RoleAssistant, Text: reply, At: now},
	)
	state.Status = out.Status
	state.Continuation = out.Continuation
	state.UpdatedAt = now

	c.logger.Debug("turn handled",
		logging.Conversation(state.ID),
		logging.Skill(string(c.orc.Skill())),
		logging.Status(string(out.Status)),
	)
	return reply, nil
}

// replyFor renders the single assistant reply for an orchestrator outcome.
// On missing_fields the user is asked for the first unmet requirement; the
// rest ride along in the continuation and surface on later turns.
func (c *Controller) replyFor(out *schedule.Outcome) string {
	switch out.Status {
	case schedule.StatusCompleted:
		return out.Message
	case schedule.StatusEventNotFound:
		return eventNotFoundReply
	case schedule.StatusMissingFields:
		if len(out.Missing) > 0 {
			return out.Missing[0].Prompt
		}
		return "Could you tell me a bit more?"
	default:
		return out.Message
	}
}
