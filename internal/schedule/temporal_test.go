package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

// Wednesday, September 2 2026, 14:30 UTC.
var testNow = time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)

func TestResolveInstant_EmptyFieldsUnresolved(t *testing.T) {
	_, ok := ResolveInstant(testNow, "UTC", TemporalFields{})
	assert.False(t, ok, "entirely empty description has nothing to resolve")
}

func TestResolveInstant_RelativeOffsetWins(t *testing.T) {
	f := TemporalFields{
		Offset: &Offset{Days: 2, Hours: 3},
		// Absolute fields are ignored when an offset is present.
		Day:  intp(25),
		Hour: intp(9),
	}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, testNow.AddDate(0, 0, 2).Add(3*time.Hour), got)
}

func TestResolveInstant_AbsoluteFieldsFillFromNow(t *testing.T) {
	f := TemporalFields{Day: intp(10), Hour: intp(9), Minute: intp(15)}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 10, 9, 15, 0, 0, time.UTC), got)
}

func TestResolveInstant_TimeOfDayDefaultsToNow(t *testing.T) {
	f := TemporalFields{Day: intp(10)}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 30, got.Minute())
}

func TestResolveInstant_WeekdayAdvancesForward(t *testing.T) {
	// testNow is a Wednesday (ISO 3). Friday (5) is two days out.
	f := TemporalFields{ISOWeekday: intp(5), Hour: intp(10), Minute: intp(0)}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, time.Friday, got.Weekday())
	assert.Equal(t, 4, got.Day())
	assert.Equal(t, 10, got.Hour())
}

func TestResolveInstant_SameWeekdayMeansNextWeek(t *testing.T) {
	f := TemporalFields{ISOWeekday: intp(3)} // Wednesday, same as testNow

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, time.Wednesday, got.Weekday())
	assert.Equal(t, testNow.Day()+7, got.Day())
}

func TestResolveInstant_LiteralStartTime(t *testing.T) {
	tests := []struct {
		start      string
		wantHour   int
		wantMinute int
	}{
		{"15:00", 15, 0},
		{"3:04PM", 15, 4},
		{"3:04 PM", 15, 4},
		{"9:30", 9, 30},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			f := TemporalFields{Day: intp(10), StartTime: tt.start}
			got, ok := ResolveInstant(testNow, "UTC", f)
			require.True(t, ok)
			assert.Equal(t, tt.wantHour, got.Hour())
			assert.Equal(t, tt.wantMinute, got.Minute())
		})
	}
}

func TestResolveInstant_RelativeChangeShiftsComposedResult(t *testing.T) {
	// "Friday at 3, actually an hour later" lands on Friday 16:00.
	f := TemporalFields{
		ISOWeekday:     intp(5),
		Hour:           intp(15),
		Minute:         intp(0),
		RelativeChange: &Offset{Hours: 1},
	}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, time.Friday, got.Weekday())
	assert.Equal(t, 16, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestResolveInstant_RelativeChangeNegative(t *testing.T) {
	f := TemporalFields{
		Day:            intp(10),
		Hour:           intp(9),
		Minute:         intp(0),
		RelativeChange: &Offset{Minutes: -30},
	}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 10, 8, 30, 0, 0, time.UTC), got)
}

func TestResolveInstant_RelativeChangeAloneShiftsNow(t *testing.T) {
	f := TemporalFields{RelativeChange: &Offset{Hours: 1}}

	got, ok := ResolveInstant(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, testNow.Add(time.Hour), got)
}

func TestResolveInstant_TargetTimezone(t *testing.T) {
	f := TemporalFields{Day: intp(10), Hour: intp(9), Minute: intp(0)}

	got, ok := ResolveInstant(testNow, "America/New_York", f)
	require.True(t, ok)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 10, 9, 0, 0, 0, loc), got)
}

func TestResolveRecurrenceEnd(t *testing.T) {
	f := TemporalFields{
		Day:           intp(10),
		RecurrenceEnd: &TemporalFields{Month: intp(12), Day: intp(31)},
	}

	got, ok := ResolveRecurrenceEnd(testNow, "UTC", f)
	require.True(t, ok)
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 31, got.Day())

	_, ok = ResolveRecurrenceEnd(testNow, "UTC", TemporalFields{Day: intp(10)})
	assert.False(t, ok)
}

func TestMergeTemporal_NewWins(t *testing.T) {
	prev := TemporalFields{Day: intp(10), Hour: intp(9)}
	cur := TemporalFields{Hour: intp(16)}

	m := MergeTemporal(cur, prev)
	require.NotNil(t, m.Day)
	assert.Equal(t, 10, *m.Day)
	require.NotNil(t, m.Hour)
	assert.Equal(t, 16, *m.Hour, "current turn's hour overrides the carried one")
}

func TestMergeTemporal_RelativeChangeCarries(t *testing.T) {
	prev := TemporalFields{RelativeChange: &Offset{Hours: 1}}
	cur := TemporalFields{Day: intp(12)}

	m := MergeTemporal(cur, prev)
	require.NotNil(t, m.RelativeChange)
	assert.Equal(t, 1, m.RelativeChange.Hours)
}

func TestTemporalFieldsEmpty(t *testing.T) {
	assert.True(t, TemporalFields{}.Empty())
	assert.True(t, TemporalFields{Offset: &Offset{}}.Empty())
	assert.False(t, TemporalFields{Day: intp(1)}.Empty())
	assert.False(t, TemporalFields{StartTime: "15:00"}.Empty())
	assert.False(t, TemporalFields{Offset: &Offset{Days: 1}}.Empty())
	assert.False(t, TemporalFields{RelativeChange: &Offset{Hours: 1}}.Empty())
}
