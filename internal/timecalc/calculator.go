// Package timecalc normalizes raw clock-in/out pairs into the daily, weekly,
// and continuous-work windows the compliance rules reason about.
//
// Every function here is pure and total over finite entry slices. Calendar
// bucketing always goes through a caller-supplied *time.Location; nothing in
// this package consults the runtime local zone, so behavior is stable across
// DST transitions and deployment environments.
package timecalc

import (
	"sort"
	"time"

	"shiftguard/internal/domain"
)

// Night work window boundaries, local wall-clock hours.
const (
	nightStartHour = 20
	nightEndHour   = 6
)

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// WeekStart returns Monday 00:00 of the ISO week containing ref, in loc.
func WeekStart(ref time.Time, loc *time.Location) time.Time {
	day := DayStart(ref, loc)
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DailyHours sums the hours of every shift whose clock-in falls on the
// calendar day containing day. A midnight-crossing shift is attributed
// entirely to its start day; it is never split across the boundary.
// Open shifts contribute zero.
func DailyHours(entries []domain.TimeEntry, day time.Time, loc *time.Location) float64 {
	bucket := DayStart(day, loc)
	var total time.Duration
	for _, e := range entries {
		if DayStart(e.ClockIn, loc).Equal(bucket) {
			total += e.Duration()
		}
	}
	return total.Hours()
}

// WeeklyHours sums the hours of every shift whose start-day bucket falls
// inside the ISO week (Monday 00:00 through the following Monday 00:00)
// containing ref. Attribution follows the shift's start day, so a shift
// clocked in on the prior Sunday belongs to the prior week even when it ends
// inside this one.
func WeeklyHours(entries []domain.TimeEntry, ref time.Time, loc *time.Location) float64 {
	ws := WeekStart(ref, loc)
	we := ws.AddDate(0, 0, 7)
	var total time.Duration
	for _, e := range entries {
		day := DayStart(e.ClockIn, loc)
		if !day.Before(ws) && day.Before(we) {
			total += e.Duration()
		}
	}
	return total.Hours()
}

// RestGap is the idle span between two consecutive shifts of one worker.
type RestGap struct {
	Previous domain.TimeEntry
	Next     domain.TimeEntry
	Gap      time.Duration
}

// RestGaps orders entries by clock-in and returns the gap between each
// closed shift and the one that follows it. Pairs whose earlier shift is
// still open are skipped: without a clock-out there is no gap to measure.
func RestGaps(entries []domain.TimeEntry) []RestGap {
	if len(entries) < 2 {
		return nil
	}
	sorted := make([]domain.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ClockIn.Before(sorted[j].ClockIn)
	})

	gaps := make([]RestGap, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		if prev.ClockOut == nil {
			continue
		}
		gaps = append(gaps, RestGap{
			Previous: prev,
			Next:     sorted[i],
			Gap:      sorted[i].ClockIn.Sub(*prev.ClockOut),
		})
	}
	return gaps
}

// NightHours returns the hours of e that fall inside the 20:00–06:00 night
// window, walking every night the shift touches. Open shifts return zero.
func NightHours(e domain.TimeEntry, loc *time.Location) float64 {
	if e.ClockOut == nil {
		return 0
	}
	in := e.ClockIn.In(loc)
	out := e.ClockOut.In(loc)

	var total time.Duration
	// Start one day early so a shift beginning before 06:00 picks up the
	// tail of the previous night's window.
	for day := DayStart(in, loc).AddDate(0, 0, -1); day.Before(out); day = day.AddDate(0, 0, 1) {
		nightStart := day.Add(time.Duration(nightStartHour) * time.Hour)
		nightEnd := day.AddDate(0, 0, 1).Add(time.Duration(nightEndHour) * time.Hour)
		total += overlap(in, out, nightStart, nightEnd)
	}
	return total.Hours()
}

// InNightWindow reports whether the instant t falls inside the 20:00–06:00
// window in loc. The boundaries themselves count as daytime at 06:00 and
// night at 20:00.
func InNightWindow(t time.Time, loc *time.Location) bool {
	h := t.In(loc).Hour()
	return h >= nightStartHour || h < nightEndHour
}

// Segment is an uninterrupted stretch of work inside a single shift.
type Segment struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the segment.
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// ContinuousSegments splits a closed shift into uninterrupted work segments.
// Any recorded break is a segment boundary regardless of its duration; an
// open break splits at its start. Open shifts return nil.
func ContinuousSegments(e domain.TimeEntry, breaks []domain.BreakEntry) []Segment {
	if e.ClockOut == nil {
		return nil
	}
	sorted := make([]domain.BreakEntry, 0, len(breaks))
	for _, b := range breaks {
		if b.TimeEntryID == e.ID {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BreakStart.Before(sorted[j].BreakStart)
	})

	var segments []Segment
	cursor := e.ClockIn
	for _, b := range sorted {
		start := b.BreakStart
		if start.After(*e.ClockOut) {
			start = *e.ClockOut
		}
		if start.After(cursor) {
			segments = append(segments, Segment{Start: cursor, End: start})
		}
		resume := b.BreakStart
		if b.BreakEnd != nil {
			resume = *b.BreakEnd
		}
		if resume.After(cursor) {
			cursor = resume
		}
	}
	if e.ClockOut.After(cursor) {
		segments = append(segments, Segment{Start: cursor, End: *e.ClockOut})
	}
	return segments
}

// MaxContinuous returns the longest uninterrupted work segment in e.
func MaxContinuous(e domain.TimeEntry, breaks []domain.BreakEntry) time.Duration {
	var longest time.Duration
	for _, s := range ContinuousSegments(e, breaks) {
		if d := s.Duration(); d > longest {
			longest = d
		}
	}
	return longest
}

// BreakMinutes sums the closed break entries belonging to e. When the shift
// has no break entries at all the legacy BreakMinutes aggregate is used, so
// records from clients that never recorded individual breaks still count.
func BreakMinutes(e domain.TimeEntry, breaks []domain.BreakEntry) int {
	var total time.Duration
	found := false
	for _, b := range breaks {
		if b.TimeEntryID != e.ID {
			continue
		}
		found = true
		total += b.Duration()
	}
	if !found {
		return e.BreakMinutes
	}
	return int(total / time.Minute)
}

// LongestFreePeriod returns the longest stretch inside the 7-day window
// anchored at weekStart that is free of any shift. Closed shifts occupy
// their full span clipped to the window; an open shift splits the free
// period at its clock-in without occupying time beyond it.
func LongestFreePeriod(entries []domain.TimeEntry, weekStart time.Time, loc *time.Location) time.Duration {
	ws := DayStart(weekStart, loc)
	we := ws.AddDate(0, 0, 7)

	type interval struct{ start, end time.Time }
	var busy []interval
	for _, e := range entries {
		end := e.ClockIn
		if e.ClockOut != nil {
			end = *e.ClockOut
		}
		start := e.ClockIn
		if end.Before(ws) || start.After(we) {
			continue
		}
		if start.Before(ws) {
			start = ws
		}
		if end.After(we) {
			end = we
		}
		busy = append(busy, interval{start: start, end: end})
	}
	if len(busy) == 0 {
		return we.Sub(ws)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })

	var longest time.Duration
	cursor := ws
	for _, iv := range busy {
		if iv.start.After(cursor) {
			if gap := iv.start.Sub(cursor); gap > longest {
				longest = gap
			}
		}
		if iv.end.After(cursor) {
			cursor = iv.end
		}
	}
	if gap := we.Sub(cursor); gap > longest {
		longest = gap
	}
	return longest
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.After(start) {
		return end.Sub(start)
	}
	return 0
}
