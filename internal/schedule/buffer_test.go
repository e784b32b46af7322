package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBuffers(t *testing.T) {
	start := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)
	primary := EventInput{
		Title:        "Design review",
		Notes:        "bring mockups",
		Timezone:     "America/New_York",
		Transparency: "opaque",
		Visibility:   "private",
		Start:        start,
		End:          start.Add(30 * time.Minute),
		Attendees:    []Attendee{{Email: "sam@x.com"}},
		Reminders:    []Reminder{{Method: "popup", MinutesBefore: 10}},
	}

	t.Run("before only", func(t *testing.T) {
		pre, post := SplitBuffers(primary, BufferConfig{BeforeMinutes: 15})
		require.NotNil(t, pre)
		assert.Nil(t, post)

		assert.Equal(t, "Design review", pre.Title, "siblings carry the primary's title unchanged")
		assert.Equal(t, start.Add(-15*time.Minute), pre.Start)
		assert.Equal(t, start, pre.End, "before-buffer ends exactly at the primary start")
	})

	t.Run("after only", func(t *testing.T) {
		pre, post := SplitBuffers(primary, BufferConfig{AfterMinutes: 10})
		assert.Nil(t, pre)
		require.NotNil(t, post)

		assert.Equal(t, primary.End, post.Start)
		assert.Equal(t, primary.End.Add(10*time.Minute), post.End)
	})

	t.Run("both sides", func(t *testing.T) {
		pre, post := SplitBuffers(primary, BufferConfig{BeforeMinutes: 15, AfterMinutes: 5})
		require.NotNil(t, pre)
		require.NotNil(t, post)
		assert.Equal(t, pre.End, primary.Start)
		assert.Equal(t, post.Start, primary.End)
	})

	t.Run("no buffer configured", func(t *testing.T) {
		pre, post := SplitBuffers(primary, BufferConfig{})
		assert.Nil(t, pre)
		assert.Nil(t, post)
	})

	t.Run("siblings inherit policy but never guests", func(t *testing.T) {
		pre, _ := SplitBuffers(primary, BufferConfig{BeforeMinutes: 15})
		require.NotNil(t, pre)

		assert.Equal(t, primary.Title, pre.Title)
		assert.Equal(t, primary.Notes, pre.Notes)
		assert.Equal(t, primary.Timezone, pre.Timezone)
		assert.Equal(t, primary.Transparency, pre.Transparency)
		assert.Equal(t, primary.Visibility, pre.Visibility)

		assert.Empty(t, pre.Attendees)
		assert.Empty(t, pre.Reminders)
		assert.Empty(t, pre.RecurrenceRule)
	})
}
