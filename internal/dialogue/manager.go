package dialogue

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schedwise/schedwise/internal/schedule"
)

// DefaultIdleTTL is how long an untouched conversation survives before
// pruning.
const DefaultIdleTTL = 30 * time.Minute

// Manager is the conversation registry. Callers are concurrent MCP tool
// invocations; each conversation carries its own mutex so turns within one
// conversation are serialized while separate conversations proceed in
// parallel.
type Manager struct {
	mu      sync.Mutex
	convs   map[string]*conversation
	idleTTL time.Duration
	now     func() time.Time
	onEvict func(evicted int)
}

type conversation struct {
	mu    sync.Mutex
	state *State
}

// Summary is the listing view of one conversation.
type Summary struct {
	ID        string
	OwnerID   string
	Skill     schedule.Skill
	Status    schedule.Status
	Turns     int
	UpdatedAt time.Time
}

// NewManager creates a registry. A non-positive ttl means DefaultIdleTTL.
func NewManager(idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Manager{
		convs:   make(map[string]*conversation),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// OnEvict registers a hook invoked with the number of conversations
// dropped by idle pruning. Set it before the Manager is shared; the hook
// runs outside the registry lock and must not call back into the Manager's
// locked paths from the same goroutine it is pruning on.
func (m *Manager) OnEvict(fn func(evicted int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Create registers a new conversation and returns its id.
func (m *Manager) Create(ownerID string, skill schedule.Skill, timezone string) *State {
	state := &State{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Skill:     skill,
		Timezone:  timezone,
		UpdatedAt: m.now(),
	}

	m.mu.Lock()
	evicted := m.pruneLocked()
	m.convs[state.ID] = &conversation{state: state}
	hook := m.onEvict
	m.mu.Unlock()

	if evicted > 0 && hook != nil {
		hook(evicted)
	}
	return state
}

// With runs fn holding the conversation's lock. Turns within one
// conversation never interleave.
func (m *Manager) With(id string, fn func(*State) error) error {
	m.mu.Lock()
	conv, ok := m.convs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("dialogue: unknown conversation %q", id)
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return fn(conv.state)
}

// Delete removes a conversation. Returns false when the id is unknown.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return false
	}
	delete(m.convs, id)
	return true
}

// List returns summaries of all live conversations, newest first.
func (m *Manager) List() []Summary {
	m.mu.Lock()
	evicted := m.pruneLocked()

	// In-flight turns mutate state under the conversation lock, so each
	// summary is read under it too.
	out := make([]Summary, 0, len(m.convs))
	for _, conv := range m.convs {
		conv.mu.Lock()
		s := conv.state
		out = append(out, Summary{
			ID:        s.ID,
			OwnerID:   s.OwnerID,
			Skill:     s.Skill,
			Status:    s.Status,
			Turns:     len(s.Turns),
			UpdatedAt: s.UpdatedAt,
		})
		conv.mu.Unlock()
	}
	hook := m.onEvict
	m.mu.Unlock()

	if evicted > 0 && hook != nil {
		hook(evicted)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Len reports how many conversations are currently registered.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.convs)
}

// pruneLocked drops conversations idle beyond the ttl and reports how many
// went. Caller holds m.mu.
func (m *Manager) pruneLocked() int {
	cutoff := m.now().Add(-m.idleTTL)
	evicted := 0
	for id, conv := range m.convs {
		conv.mu.Lock()
		idle := conv.state.UpdatedAt.Before(cutoff)
		conv.mu.Unlock()
		if idle {
			delete(m.convs, id)
			evicted++
		}
	}
	return evicted
}
