// Package compliance evaluates worked and proposed time blocks against the
// twelve labor regulation rules and reports structured verdicts.
//
// The engine is pure domain logic: no I/O, no side effects, no shared
// mutable state. It is safe to call concurrently across workers and time
// windows. Violations are first-class output values, never errors; only
// malformed input surfaces as an error.
package compliance

import (
	"errors"
	"fmt"
	"time"

	"shiftguard/internal/domain"
	"shiftguard/internal/geofence"
	"shiftguard/internal/timecalc"
)

// ErrInvalidInput marks a ValidationContext the engine cannot evaluate.
// Callers must treat it as a system error, not a compliance verdict.
var ErrInvalidInput = errors.New("invalid validation input")

// Validator runs the full rule set against one ValidationContext at a time.
type Validator struct {
	loc    *time.Location
	radius float64
}

// Option configures a Validator.
type Option func(*Validator)

// WithGeofenceRadius overrides the default 50m clock-in radius.
func WithGeofenceRadius(meters float64) Option {
	return func(v *Validator) {
		v.radius = meters
	}
}

// NewValidator builds a validator that buckets calendar days in loc. The
// location must come from configuration; passing time.Local would tie
// verdicts to the runtime environment.
func NewValidator(loc *time.Location, opts ...Option) (*Validator, error) {
	if loc == nil {
		return nil, fmt.Errorf("timezone location is required")
	}
	v := &Validator{
		loc:    loc,
		radius: geofence.DefaultRadiusMeters,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// ValidateAll evaluates every rule and returns exactly twelve results in
// fixed rule order. Rules never short-circuit each other; the caller decides
// policy, such as blocking only on critical severity.
func (v *Validator) ValidateAll(vc domain.ValidationContext) ([]domain.ValidationResult, error) {
	if err := checkInput(vc); err != nil {
		return nil, err
	}

	entries := withCurrent(vc)
	ref := vc.CurrentEntry.ClockIn
	in := ruleInput{
		ctx:         vc,
		loc:         v.loc,
		radius:      v.radius,
		entries:     entries,
		dailyHours:  timecalc.DailyHours(entries, ref, v.loc),
		weeklyHours: timecalc.WeeklyHours(entries, ref, v.loc),
	}

	results := make([]domain.ValidationResult, 0, len(domain.RuleOrder))
	for _, id := range domain.RuleOrder {
		var (
			res domain.ValidationResult
			err error
		)
		switch id {
		case domain.RuleDailyLimit:
			res = evaluateDailyLimit(in)
		case domain.RuleWeeklyLimit:
			res = evaluateWeeklyLimit(in)
		case domain.RuleRestPeriod:
			res = evaluateRestPeriod(in)
		case domain.RuleMandatoryBreak:
			res = evaluateMandatoryBreak(in)
		case domain.RuleContinuousWork:
			res = evaluateContinuousWork(in)
		case domain.RuleWeeklyRest:
			res = evaluateWeeklyRest(in)
		case domain.RuleNightWork:
			res = evaluateNightWork(in)
		case domain.RuleOvertime:
			res = evaluateOvertime(in)
		case domain.RuleAbsoluteMax:
			res = evaluateAbsoluteMax(in)
		case domain.RuleAdolescent:
			res = evaluateAdolescent(in)
		case domain.RulePregnancyNight:
			res = evaluatePregnancyNight(in)
		case domain.RuleGeofence:
			res, err = evaluateGeofence(in)
		default:
			err = fmt.Errorf("unknown rule %q", id)
		}
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", id, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// checkInput rejects contexts the rules genuinely cannot evaluate.
func checkInput(vc domain.ValidationContext) error {
	if err := checkEntry(vc.CurrentEntry); err != nil {
		return fmt.Errorf("%w: current entry: %w", ErrInvalidInput, err)
	}
	for _, e := range vc.AllEntries {
		if err := checkEntry(e); err != nil {
			return fmt.Errorf("%w: entry %s: %w", ErrInvalidInput, e.ID, err)
		}
	}
	for _, b := range vc.Breaks {
		if b.BreakEnd != nil && !b.BreakEnd.After(b.BreakStart) {
			return fmt.Errorf("%w: break %s: end not after start", ErrInvalidInput, b.ID)
		}
	}
	if vc.UserCoords != nil && !vc.UserCoords.Valid() {
		return fmt.Errorf("%w: user coordinates out of range", ErrInvalidInput)
	}
	if vc.LocationCoords != nil && !vc.LocationCoords.Valid() {
		return fmt.Errorf("%w: location coordinates out of range", ErrInvalidInput)
	}
	return nil
}

func checkEntry(e domain.TimeEntry) error {
	if e.ClockIn.IsZero() {
		return fmt.Errorf("clock-in is required")
	}
	if e.ClockOut != nil && !e.ClockOut.After(e.ClockIn) {
		return fmt.Errorf("clock-out not after clock-in")
	}
	if e.BreakMinutes < 0 {
		return fmt.Errorf("negative break minutes")
	}
	if e.ClockInLocation != nil && !e.ClockInLocation.Valid() {
		return fmt.Errorf("clock-in coordinates out of range")
	}
	if e.ClockOutLocation != nil && !e.ClockOutLocation.Valid() {
		return fmt.Errorf("clock-out coordinates out of range")
	}
	return nil
}

// withCurrent returns the worker's history including the entry under
// validation, without duplicating it when the caller already included it.
func withCurrent(vc domain.ValidationContext) []domain.TimeEntry {
	for _, e := range vc.AllEntries {
		if e.ID == vc.CurrentEntry.ID {
			return vc.AllEntries
		}
	}
	entries := make([]domain.TimeEntry, 0, len(vc.AllEntries)+1)
	entries = append(entries, vc.AllEntries...)
	return append(entries, vc.CurrentEntry)
}
