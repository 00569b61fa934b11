package timecalc

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftguard/internal/domain"
)

// 2026-01-05 is a Monday.
func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	require.NoError(t, err)
	return parsed
}

func closedEntry(t *testing.T, in, out string) domain.TimeEntry {
	t.Helper()
	clockOut := ts(t, out)
	return domain.TimeEntry{
		ID:       uuid.New(),
		ClockIn:  ts(t, in),
		ClockOut: &clockOut,
	}
}

func openEntry(t *testing.T, in string) domain.TimeEntry {
	t.Helper()
	return domain.TimeEntry{ID: uuid.New(), ClockIn: ts(t, in)}
}

func TestWeekStart(t *testing.T) {
	t.Run("mid-week reference", func(t *testing.T) {
		got := WeekStart(ts(t, "2026-01-07 13:45"), time.UTC)
		assert.Equal(t, ts(t, "2026-01-05 00:00"), got)
	})

	t.Run("monday maps to itself", func(t *testing.T) {
		got := WeekStart(ts(t, "2026-01-05 00:00"), time.UTC)
		assert.Equal(t, ts(t, "2026-01-05 00:00"), got)
	})

	t.Run("sunday belongs to the prior monday", func(t *testing.T) {
		got := WeekStart(ts(t, "2026-01-11 23:59"), time.UTC)
		assert.Equal(t, ts(t, "2026-01-05 00:00"), got)
	})
}

func TestDailyHours(t *testing.T) {
	t.Run("plain shift", func(t *testing.T) {
		entries := []domain.TimeEntry{closedEntry(t, "2026-01-05 09:00", "2026-01-05 17:00")}
		assert.Equal(t, 8.0, DailyHours(entries, ts(t, "2026-01-05 12:00"), time.UTC))
	})

	t.Run("midnight-crossing shift attributes to start day", func(t *testing.T) {
		entries := []domain.TimeEntry{closedEntry(t, "2026-01-05 22:00", "2026-01-06 04:00")}
		assert.Equal(t, 6.0, DailyHours(entries, ts(t, "2026-01-05 12:00"), time.UTC))
		assert.Equal(t, 0.0, DailyHours(entries, ts(t, "2026-01-06 12:00"), time.UTC))
	})

	t.Run("open shift contributes zero", func(t *testing.T) {
		entries := []domain.TimeEntry{openEntry(t, "2026-01-05 09:00")}
		assert.Equal(t, 0.0, DailyHours(entries, ts(t, "2026-01-05 12:00"), time.UTC))
	})

	t.Run("multiple shifts on one day sum", func(t *testing.T) {
		entries := []domain.TimeEntry{
			closedEntry(t, "2026-01-05 06:00", "2026-01-05 10:00"),
			closedEntry(t, "2026-01-05 14:00", "2026-01-05 18:00"),
		}
		assert.Equal(t, 8.0, DailyHours(entries, ts(t, "2026-01-05 00:00"), time.UTC))
	})
}

func TestWeeklyHours(t *testing.T) {
	t.Run("sums shifts bucketed into the week", func(t *testing.T) {
		entries := []domain.TimeEntry{
			closedEntry(t, "2026-01-05 09:00", "2026-01-05 17:00"),
			closedEntry(t, "2026-01-06 09:00", "2026-01-06 17:00"),
		}
		assert.Equal(t, 16.0, WeeklyHours(entries, ts(t, "2026-01-07 00:00"), time.UTC))
	})

	t.Run("prior-week sunday shift stays in the prior week", func(t *testing.T) {
		// Starts Sunday Jan 4, ends Monday Jan 5: start-day bucketing.
		entries := []domain.TimeEntry{closedEntry(t, "2026-01-04 22:00", "2026-01-05 06:00")}
		assert.Equal(t, 0.0, WeeklyHours(entries, ts(t, "2026-01-07 00:00"), time.UTC))
		assert.Equal(t, 8.0, WeeklyHours(entries, ts(t, "2026-01-04 00:00"), time.UTC))
	})
}

func TestRestGaps(t *testing.T) {
	t.Run("single entry has no gaps", func(t *testing.T) {
		entries := []domain.TimeEntry{closedEntry(t, "2026-01-05 09:00", "2026-01-05 17:00")}
		assert.Nil(t, RestGaps(entries))
	})

	t.Run("orders by clock-in and measures out-to-in", func(t *testing.T) {
		entries := []domain.TimeEntry{
			closedEntry(t, "2026-01-06 05:00", "2026-01-06 13:00"),
			closedEntry(t, "2026-01-05 09:00", "2026-01-05 17:00"),
		}
		gaps := RestGaps(entries)
		require.Len(t, gaps, 1)
		assert.Equal(t, 12*time.Hour, gaps[0].Gap)
	})

	t.Run("open earlier shift is skipped", func(t *testing.T) {
		entries := []domain.TimeEntry{
			openEntry(t, "2026-01-05 09:00"),
			closedEntry(t, "2026-01-06 09:00", "2026-01-06 17:00"),
		}
		assert.Empty(t, RestGaps(entries))
	})
}

func TestNightHours(t *testing.T) {
	t.Run("daytime shift has none", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 09:00", "2026-01-05 17:00")
		assert.Equal(t, 0.0, NightHours(e, time.UTC))
	})

	t.Run("evening shift counts hours after 20:00", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 18:00", "2026-01-05 23:00")
		assert.Equal(t, 3.0, NightHours(e, time.UTC))
	})

	t.Run("full night shift spans the midnight boundary", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 22:00", "2026-01-06 06:00")
		assert.Equal(t, 8.0, NightHours(e, time.UTC))
	})

	t.Run("early morning shift counts hours before 06:00", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 04:00", "2026-01-05 12:00")
		assert.Equal(t, 2.0, NightHours(e, time.UTC))
	})

	t.Run("open shift contributes zero", func(t *testing.T) {
		assert.Equal(t, 0.0, NightHours(openEntry(t, "2026-01-05 22:00"), time.UTC))
	})
}

func TestInNightWindow(t *testing.T) {
	assert.True(t, InNightWindow(ts(t, "2026-01-05 20:00"), time.UTC))
	assert.True(t, InNightWindow(ts(t, "2026-01-05 03:30"), time.UTC))
	assert.False(t, InNightWindow(ts(t, "2026-01-05 06:00"), time.UTC))
	assert.False(t, InNightWindow(ts(t, "2026-01-05 12:00"), time.UTC))
}

func TestContinuousSegments(t *testing.T) {
	brk := func(e domain.TimeEntry, start, end string) domain.BreakEntry {
		breakEnd := ts(t, end)
		return domain.BreakEntry{
			ID:          uuid.New(),
			TimeEntryID: e.ID,
			BreakStart:  ts(t, start),
			BreakEnd:    &breakEnd,
			BreakType:   domain.BreakUnpaid,
		}
	}

	t.Run("no breaks yields one segment", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 09:00", "2026-01-05 17:00")
		segments := ContinuousSegments(e, nil)
		require.Len(t, segments, 1)
		assert.Equal(t, 8*time.Hour, segments[0].Duration())
	})

	t.Run("a break splits the shift", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 08:00", "2026-01-05 18:00")
		segments := ContinuousSegments(e, []domain.BreakEntry{brk(e, "2026-01-05 12:00", "2026-01-05 12:30")})
		require.Len(t, segments, 2)
		assert.Equal(t, 4*time.Hour, segments[0].Duration())
		assert.Equal(t, 5*time.Hour+30*time.Minute, segments[1].Duration())
	})

	t.Run("late break does not shrink the earlier segment", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 08:00", "2026-01-05 19:00")
		longest := MaxContinuous(e, []domain.BreakEntry{brk(e, "2026-01-05 18:00", "2026-01-05 18:15")})
		assert.Equal(t, 10*time.Hour, longest)
	})

	t.Run("breaks of other entries are ignored", func(t *testing.T) {
		e := closedEntry(t, "2026-01-05 08:00", "2026-01-05 18:00")
		other := closedEntry(t, "2026-01-06 08:00", "2026-01-06 18:00")
		segments := ContinuousSegments(e, []domain.BreakEntry{brk(other, "2026-01-05 12:00", "2026-01-05 12:30")})
		require.Len(t, segments, 1)
	})
}

func TestBreakMinutes(t *testing.T) {
	e := closedEntry(t, "2026-01-05 08:00", "2026-01-05 18:00")

	t.Run("sums closed break entries", func(t *testing.T) {
		end1 := ts(t, "2026-01-05 12:10")
		end2 := ts(t, "2026-01-05 16:05")
		breaks := []domain.BreakEntry{
			{ID: uuid.New(), TimeEntryID: e.ID, BreakStart: ts(t, "2026-01-05 12:00"), BreakEnd: &end1},
			{ID: uuid.New(), TimeEntryID: e.ID, BreakStart: ts(t, "2026-01-05 16:00"), BreakEnd: &end2},
		}
		assert.Equal(t, 15, BreakMinutes(e, breaks))
	})

	t.Run("falls back to the legacy aggregate", func(t *testing.T) {
		legacy := e
		legacy.BreakMinutes = 20
		assert.Equal(t, 20, BreakMinutes(legacy, nil))
	})

	t.Run("break entries override the legacy aggregate", func(t *testing.T) {
		legacy := e
		legacy.BreakMinutes = 45
		end := ts(t, "2026-01-05 12:05")
		breaks := []domain.BreakEntry{
			{ID: uuid.New(), TimeEntryID: e.ID, BreakStart: ts(t, "2026-01-05 12:00"), BreakEnd: &end},
		}
		assert.Equal(t, 5, BreakMinutes(legacy, breaks))
	})
}

func TestLongestFreePeriod(t *testing.T) {
	weekStart := ts(t, "2026-01-05 00:00")

	t.Run("empty week is fully free", func(t *testing.T) {
		assert.Equal(t, 7*24*time.Hour, LongestFreePeriod(nil, weekStart, time.UTC))
	})

	t.Run("one mid-week shift leaves a long tail", func(t *testing.T) {
		entries := []domain.TimeEntry{closedEntry(t, "2026-01-07 09:00", "2026-01-07 17:00")}
		free := LongestFreePeriod(entries, weekStart, time.UTC)
		// Wednesday 17:00 through the next Monday 00:00 is the longer side.
		assert.Equal(t, 103*time.Hour, free)
	})

	t.Run("daily shifts can squeeze out the rest period", func(t *testing.T) {
		var entries []domain.TimeEntry
		days := []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09", "2026-01-10", "2026-01-11"}
		for _, d := range days {
			entries = append(entries, closedEntry(t, d+" 08:00", d+" 18:00"))
		}
		free := LongestFreePeriod(entries, weekStart, time.UTC)
		assert.Less(t, free.Hours(), 35.0)
	})
}
