package session

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DefaultScheduleTuesdaysAndThursdays(t *testing.T) {
	t.Parallel()

	sessions, err := Generate(DefaultSchedule(time.UTC))
	require.NoError(t, err)

	// Feb 2026 has 4 Tue + 4 Thu, March 2026 has 5 Tue + 4 Thu.
	require.Len(t, sessions, 17)
	assert.Equal(t, "2026-02-03", sessions[0].ID)
	assert.Equal(t, "2026-02-05", sessions[1].ID)
	assert.Equal(t, "2026-03-31", sessions[len(sessions)-1].ID)

	first := sessions[0]
	assert.Equal(t, "Tue, Feb 3", first.DateText)
	assert.Equal(t, "11:30 AM – 1:00 PM", first.TimeText)
	assert.Equal(t, "Tue, Feb 3 • 11:30 AM – 1:00 PM", first.Label())
	assert.Equal(t, time.Date(2026, 2, 3, 11, 30, 0, 0, time.UTC), first.StartsAt)
	assert.Equal(t, time.Date(2026, 2, 3, 13, 0, 0, 0, time.UTC), first.EndsAt)
}

func TestGenerate_OnlyRangeAndWeekdaysStrictlyAscending(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	rules := [][]time.Weekday{
		{time.Monday},
		{time.Tuesday, time.Thursday},
		{time.Sunday, time.Saturday, time.Wednesday},
		{time.Friday, time.Friday, time.Monday},
	}
	ranges := [][2]time.Time{
		{time.Date(2026, 1, 1, 0, 0, 0, 0, loc), time.Date(2026, 2, 1, 0, 0, 0, 0, loc)},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, loc), time.Date(2026, 3, 15, 0, 0, 0, 0, loc)},
		{time.Date(2026, 11, 5, 0, 0, 0, 0, loc), time.Date(2026, 11, 6, 0, 0, 0, 0, loc)},
	}

	for _, weekdays := range rules {
		for _, r := range ranges {
			s := Schedule{
				RangeStart: r[0],
				RangeEnd:   r[1],
				Weekdays:   weekdays,
				Start:      Clock{Hour: 11, Minute: 30},
				End:        Clock{Hour: 13},
				Location:   loc,
			}
			sessions, err := Generate(s)
			require.NoError(t, err)

			allowed := make(map[time.Weekday]bool)
			for _, d := range weekdays {
				allowed[d] = true
			}

			want := 0
			for d := r[0]; d.Before(r[1]); d = d.AddDate(0, 0, 1) {
				if allowed[d.Weekday()] {
					want++
				}
			}
			require.Len(t, sessions, want, "weekdays=%v range=%v", weekdays, r)

			for i, item := range sessions {
				day, err := ParseDate(item.ID, loc)
				require.NoError(t, err)
				assert.True(t, allowed[day.Weekday()], "unexpected weekday for %s", item.ID)
				assert.False(t, day.Before(r[0]), "%s before range start", item.ID)
				assert.True(t, day.Before(r[1]), "%s not before range end", item.ID)
				assert.Equal(t, 11, item.StartsAt.Hour(), "wall clock shifted on %s", item.ID)
				if i > 0 {
					assert.Less(t, sessions[i-1].ID, item.ID)
				}
			}
		}
	}
}

func TestGenerate_EmptyWeekdaysYieldsNothing(t *testing.T) {
	t.Parallel()

	s := DefaultSchedule(time.UTC)
	s.Weekdays = nil

	sessions, err := Generate(s)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGenerate_MidnightStartExcludesRangeEnd(t *testing.T) {
	t.Parallel()

	s := Schedule{
		RangeStart: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Weekdays:   []time.Weekday{time.Tuesday},
		Start:      Clock{},
		End:        Clock{Hour: 1},
		Location:   time.UTC,
	}

	sessions, err := Generate(s)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "2026-02-03", sessions[0].ID)
}

func TestGenerate_RejectsInvertedRange(t *testing.T) {
	t.Parallel()

	s := DefaultSchedule(time.UTC)
	s.RangeStart, s.RangeEnd = s.RangeEnd, s.RangeStart

	_, err := Generate(s)
	require.Error(t, err)
}

func TestFilterUpcoming_BoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	sessions, err := Generate(DefaultSchedule(time.UTC))
	require.NoError(t, err)

	start := time.Date(2026, 2, 5, 11, 30, 0, 0, time.UTC)

	atStart := FilterUpcoming(sessions, start)
	require.NotEmpty(t, atStart)
	assert.Equal(t, "2026-02-05", atStart[0].ID)

	justAfter := FilterUpcoming(sessions, start.Add(time.Nanosecond))
	require.NotEmpty(t, justAfter)
	assert.Equal(t, "2026-02-10", justAfter[0].ID)

	assert.Empty(t, FilterUpcoming(sessions, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, FilterUpcoming(sessions, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), len(sessions))
}

func TestParseWeekdaysAndClock(t *testing.T) {
	t.Parallel()

	days, err := ParseWeekdays("TU, thursday ,Sat")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}, days)

	_, err = ParseWeekdays("TU,XX")
	require.Error(t, err)

	clock, err := ParseClock("11:30")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 11, Minute: 30}, clock)
	assert.Equal(t, "11:30", clock.String())

	for _, raw := range []string{"1130", "24:00", "11:60", "ab:cd"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}
