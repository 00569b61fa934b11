package domain

import (
	"time"

	"github.com/google/uuid"
)

// BreakType distinguishes paid from unpaid breaks. Both interrupt a
// continuous-work segment; pay treatment is a payroll concern outside
// this system.
type BreakType string

const (
	BreakPaid   BreakType = "paid"
	BreakUnpaid BreakType = "unpaid"
)

// TimeEntry is a single worked shift as recorded by the time clock.
// A nil ClockOut means the shift is still open.
type TimeEntry struct {
	ID       uuid.UUID  `json:"id"`
	WorkerID uuid.UUID  `json:"worker_id"`
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`

	// BreakMinutes is the legacy aggregate carried by older clients that do
	// not record individual break entries. It is only consulted when no
	// BreakEntry rows exist for the shift.
	BreakMinutes int `json:"break_minutes"`

	ClockInLocation  *Coordinate `json:"clock_in_location,omitempty"`
	ClockOutLocation *Coordinate `json:"clock_out_location,omitempty"`
}

// IsOpen reports whether the shift has not been clocked out yet.
func (e TimeEntry) IsOpen() bool {
	return e.ClockOut == nil
}

// Duration returns the worked span of the shift. Open shifts contribute
// zero; an open shift cannot yet violate a duration limit.
func (e TimeEntry) Duration() time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn)
}

// BreakEntry is one recorded break inside a shift. It references its owning
// TimeEntry but is stored independently; a nil BreakEnd means the break is
// still running.
type BreakEntry struct {
	ID          uuid.UUID  `json:"id"`
	TimeEntryID uuid.UUID  `json:"time_entry_id"`
	BreakStart  time.Time  `json:"break_start"`
	BreakEnd    *time.Time `json:"break_end,omitempty"`
	BreakType   BreakType  `json:"break_type"`
}

// Duration returns the length of the break, zero while it is still open.
func (b BreakEntry) Duration() time.Duration {
	if b.BreakEnd == nil {
		return 0
	}
	return b.BreakEnd.Sub(b.BreakStart)
}
