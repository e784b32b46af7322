package dialogue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedwise/schedwise/internal/schedule"
)

func TestManager_CreateAndWith(t *testing.T) {
	m := NewManager(0)

	state := m.Create("u1", schedule.SkillBlockTime, "UTC")
	require.NotEmpty(t, state.ID)
	assert.Equal(t, "u1", state.OwnerID)
	assert.Equal(t, 1, m.Len())

	err := m.With(state.ID, func(s *State) error {
		assert.Equal(t, state.ID, s.ID)
		s.Status = schedule.StatusCompleted
		return nil
	})
	require.NoError(t, err)

	err = m.With(state.ID, func(s *State) error {
		assert.Equal(t, schedule.StatusCompleted, s.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestManager_WithUnknownConversation(t *testing.T) {
	m := NewManager(0)
	err := m.With("nope", func(*State) error { return nil })
	assert.Error(t, err)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(0)
	state := m.Create("u1", schedule.SkillBlockTime, "UTC")

	assert.True(t, m.Delete(state.ID))
	assert.False(t, m.Delete(state.ID))
	assert.Equal(t, 0, m.Len())
}

func TestManager_ListNewestFirst(t *testing.T) {
	m := NewManager(0)
	base := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	older := m.Create("u1", schedule.SkillBlockTime, "UTC")
	clock = base.Add(time.Minute)
	newer := m.Create("u1", schedule.SkillMeetingInvite, "UTC")

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, schedule.SkillMeetingInvite, list[0].Skill)
}

func TestManager_PrunesIdleConversations(t *testing.T) {
	m := NewManager(10 * time.Minute)
	base := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	stale := m.Create("u1", schedule.SkillBlockTime, "UTC")

	clock = base.Add(time.Hour)
	fresh := m.Create("u1", schedule.SkillBlockTime, "UTC")

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)

	err := m.With(stale.ID, func(*State) error { return nil })
	assert.Error(t, err, "pruned conversation is gone")
}

func TestManager_EvictionHookReportsPruned(t *testing.T) {
	m := NewManager(10 * time.Minute)
	base := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	var evicted int
	m.OnEvict(func(n int) { evicted += n })

	m.Create("u1", schedule.SkillBlockTime, "UTC")
	m.Create("u1", schedule.SkillMeetingInvite, "UTC")

	clock = base.Add(time.Hour)
	list := m.List()
	assert.Empty(t, list)
	assert.Equal(t, 2, evicted)

	// Nothing left to prune, hook stays quiet.
	m.List()
	assert.Equal(t, 2, evicted)
}

// Exercises List racing against in-flight turn mutations; meaningful under
// the race detector.
func TestManager_ListDuringConcurrentTurns(t *testing.T) {
	m := NewManager(0)
	state := m.Create("u1", schedule.SkillBlockTime, "UTC")

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			_ = m.With(state.ID, func(s *State) error {
				s.Turns = append(s.Turns, Turn{Role: RoleUser, Text: "x"})
				s.Status = schedule.StatusMissingFields
				s.UpdatedAt = time.Now()
				return nil
			})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			list := m.List()
			assert.Len(t, list, 1)
		}
		close(done)
	}()

	wg.Wait()
}

func TestManager_ConcurrentTurnsSerialize(t *testing.T) {
	m := NewManager(0)
	state := m.Create("u1", schedule.SkillBlockTime, "UTC")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.With(state.ID, func(s *State) error {
				s.Turns = append(s.Turns, Turn{Role: RoleUser, Text: "x"})
				return nil
			})
		}()
	}
	wg.Wait()

	err := m.With(state.ID, func(s *State) error {
		assert.Len(t, s.Turns, 50)
		return nil
	})
	require.NoError(t, err)
}
