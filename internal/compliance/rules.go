package compliance

import (
	"fmt"
	"time"

	"shiftguard/internal/domain"
	"shiftguard/internal/geofence"
	"shiftguard/internal/timecalc"
)

// Statutory thresholds. References are to the Spanish Estatuto de los
// Trabajadores (ET) and EU Directive 2003/88/EC.
const (
	dailyWarnHours     = 8.0
	dailyLimitHours    = 9.0
	dailyCriticalHours = 12.0

	weeklyRegularHours  = 40.0
	weeklyAbsoluteHours = 48.0

	minRestBetweenShifts = 12 * time.Hour
	minWeeklyRest        = 35 * time.Hour

	breakRequiredAfter  = 6 * time.Hour
	minBreakMinutes     = 15
	maxContinuousWork   = 9 * time.Hour
	maxNightHours       = 8.0
	adolescentDailyMax  = 8.0
	adolescentWeeklyMax = 40.0
)

// ruleInput carries the validation context plus the shared pure
// precomputations (week/day totals) so each evaluator stays a small
// function of values. Evaluators never see each other's verdicts.
type ruleInput struct {
	ctx     domain.ValidationContext
	loc     *time.Location
	radius  float64
	entries []domain.TimeEntry

	dailyHours  float64
	weeklyHours float64
}

func pass(rule domain.RuleID, msg, ref string) domain.ValidationResult {
	return domain.ValidationResult{Rule: rule, Pass: true, Message: msg, RuleReference: ref}
}

func fail(rule domain.RuleID, sev domain.Severity, msg, ref string) domain.ValidationResult {
	return domain.ValidationResult{Rule: rule, Pass: false, Severity: sev, Message: msg, RuleReference: ref}
}

// Rule 1: hard cap of 9h per calendar day, attributed to the shift's start
// day. The 8–9h band passes but carries an approaching-limit warning.
func evaluateDailyLimit(in ruleInput) domain.ValidationResult {
	const ref = "Art. 34.3 ET"
	h := in.dailyHours
	switch {
	case h >= dailyCriticalHours:
		return fail(domain.RuleDailyLimit, domain.SeverityCritical,
			fmt.Sprintf("worked %.1fh in one day, far beyond the %.0fh daily limit", h, dailyLimitHours), ref)
	case h > dailyLimitHours:
		return fail(domain.RuleDailyLimit, domain.SeverityHigh,
			fmt.Sprintf("worked %.1fh in one day, exceeding the %.0fh daily limit", h, dailyLimitHours), ref)
	case h >= dailyWarnHours:
		return pass(domain.RuleDailyLimit,
			fmt.Sprintf("worked %.1fh, approaching the %.0fh daily limit", h, dailyLimitHours), ref)
	default:
		return pass(domain.RuleDailyLimit,
			fmt.Sprintf("daily hours within limit (%.1fh of %.0fh)", h, dailyLimitHours), ref)
	}
}

// Rule 2: 40 regular hours per ISO week.
func evaluateWeeklyLimit(in ruleInput) domain.ValidationResult {
	const ref = "Art. 34.1 ET"
	if in.weeklyHours > weeklyRegularHours {
		return fail(domain.RuleWeeklyLimit, domain.SeverityMedium,
			fmt.Sprintf("worked %.1fh this week, exceeding the %.0fh regular weekly limit", in.weeklyHours, weeklyRegularHours), ref)
	}
	return pass(domain.RuleWeeklyLimit,
		fmt.Sprintf("weekly hours within limit (%.1fh of %.0fh)", in.weeklyHours, weeklyRegularHours), ref)
}

// Rule 3: at least 12h of rest between consecutive shifts. A single-shift
// history cannot violate the rule and passes informationally.
func evaluateRestPeriod(in ruleInput) domain.ValidationResult {
	const ref = "Art. 34.3 ET"
	gaps := timecalc.RestGaps(in.entries)
	if len(gaps) == 0 {
		return pass(domain.RuleRestPeriod, "no prior shift to measure rest against", ref)
	}
	for _, g := range gaps {
		if g.Gap < minRestBetweenShifts {
			return fail(domain.RuleRestPeriod, domain.SeverityCritical,
				fmt.Sprintf("only %.1fh of rest between shifts, minimum is %.0fh",
					g.Gap.Hours(), minRestBetweenShifts.Hours()), ref)
		}
	}
	return pass(domain.RuleRestPeriod,
		fmt.Sprintf("all rest periods meet the %.0fh minimum", minRestBetweenShifts.Hours()), ref)
}

// Rule 4: shifts over 6h require at least 15 cumulative break minutes. An
// open shift passes; the break may still be taken.
func evaluateMandatoryBreak(in ruleInput) domain.ValidationResult {
	const ref = "Art. 34.4 ET"
	e := in.ctx.CurrentEntry
	if e.IsOpen() {
		return pass(domain.RuleMandatoryBreak, "shift not yet complete, break requirement not assessable", ref)
	}
	if e.Duration() <= breakRequiredAfter {
		return pass(domain.RuleMandatoryBreak,
			fmt.Sprintf("shift of %.1fh does not require a break", e.Duration().Hours()), ref)
	}
	mins := timecalc.BreakMinutes(e, in.ctx.Breaks)
	if mins < minBreakMinutes {
		return fail(domain.RuleMandatoryBreak, domain.SeverityHigh,
			fmt.Sprintf("shift of %.1fh recorded only %d break minutes, minimum is %d",
				e.Duration().Hours(), mins, minBreakMinutes), ref)
	}
	return pass(domain.RuleMandatoryBreak,
		fmt.Sprintf("%d break minutes recorded for a %.1fh shift", mins, e.Duration().Hours()), ref)
}

// Rule 5: no uninterrupted segment may exceed 9h. Any recorded break bounds
// a segment regardless of its duration, but a break taken after the 9h mark
// does not cure the overlong segment before it.
func evaluateContinuousWork(in ruleInput) domain.ValidationResult {
	const ref = "Art. 34.4 ET"
	e := in.ctx.CurrentEntry
	if e.IsOpen() {
		return pass(domain.RuleContinuousWork, "shift not yet complete, continuous work not assessable", ref)
	}
	longest := timecalc.MaxContinuous(e, in.ctx.Breaks)
	if longest > maxContinuousWork {
		return fail(domain.RuleContinuousWork, domain.SeverityHigh,
			fmt.Sprintf("uninterrupted segment of %.1fh exceeds the %.0fh maximum",
				longest.Hours(), maxContinuousWork.Hours()), ref)
	}
	return pass(domain.RuleContinuousWork,
		fmt.Sprintf("longest uninterrupted segment is %.1fh", longest.Hours()), ref)
}

// Rule 6: at least 35 continuous shift-free hours somewhere in the 7-day
// window anchored at the reference Monday.
func evaluateWeeklyRest(in ruleInput) domain.ValidationResult {
	const ref = "Art. 37.1 ET"
	ws := timecalc.WeekStart(in.ctx.CurrentEntry.ClockIn, in.loc)
	free := timecalc.LongestFreePeriod(in.entries, ws, in.loc)
	if free < minWeeklyRest {
		return fail(domain.RuleWeeklyRest, domain.SeverityCritical,
			fmt.Sprintf("longest shift-free period this week is %.1fh, minimum is %.0fh",
				free.Hours(), minWeeklyRest.Hours()), ref)
	}
	return pass(domain.RuleWeeklyRest,
		fmt.Sprintf("weekly rest of %.1fh meets the %.0fh minimum", free.Hours(), minWeeklyRest.Hours()), ref)
}

// Rule 7: hours inside the 20:00–06:00 window are capped at 8h per shift.
func evaluateNightWork(in ruleInput) domain.ValidationResult {
	const ref = "Art. 36.1 ET"
	h := timecalc.NightHours(in.ctx.CurrentEntry, in.loc)
	if h > maxNightHours {
		return fail(domain.RuleNightWork, domain.SeverityHigh,
			fmt.Sprintf("%.1fh worked in the 20:00–06:00 window, limit is %.0fh", h, maxNightHours), ref)
	}
	return pass(domain.RuleNightWork,
		fmt.Sprintf("night hours within limit (%.1fh of %.0fh)", h, maxNightHours), ref)
}

// Rule 8: overtime beyond 40h/week is reported, not blocked. The report is
// capped at 8h; past 48h total rule 9 escalates instead.
func evaluateOvertime(in ruleInput) domain.ValidationResult {
	const ref = "Art. 35 ET"
	over := in.weeklyHours - weeklyRegularHours
	if over <= 0 {
		return pass(domain.RuleOvertime, "no overtime this week", ref)
	}
	if over > weeklyAbsoluteHours-weeklyRegularHours {
		over = weeklyAbsoluteHours - weeklyRegularHours
	}
	return domain.ValidationResult{
		Rule:              domain.RuleOvertime,
		Pass:              true,
		Severity:          domain.SeverityLow,
		Message:           fmt.Sprintf("%.1fh of overtime this week", over),
		RuleReference:     ref,
		RecommendedAction: "record the overtime as compensated hours or time off in lieu",
	}
}

// Rule 9: 48h absolute weekly ceiling.
func evaluateAbsoluteMax(in ruleInput) domain.ValidationResult {
	const ref = "Directive 2003/88/EC Art. 6"
	if in.weeklyHours > weeklyAbsoluteHours {
		return domain.ValidationResult{
			Rule:              domain.RuleAbsoluteMax,
			Pass:              false,
			Severity:          domain.SeverityCritical,
			Message:           fmt.Sprintf("worked %.1fh this week, breaching the %.0fh absolute ceiling", in.weeklyHours, weeklyAbsoluteHours),
			RuleReference:     ref,
			RecommendedAction: "stop scheduling this worker immediately and notify the compliance officer",
		}
	}
	return pass(domain.RuleAbsoluteMax,
		fmt.Sprintf("weekly hours below the %.0fh absolute ceiling", weeklyAbsoluteHours), ref)
}

// Rule 10: workers under 18 are limited to 8h/day and 40h/week.
func evaluateAdolescent(in ruleInput) domain.ValidationResult {
	const ref = "Art. 6.2 ET"
	if in.ctx.UserAge == nil || *in.ctx.UserAge >= 18 {
		return pass(domain.RuleAdolescent, "not applicable: worker is not a minor", ref)
	}
	if in.dailyHours > adolescentDailyMax {
		return fail(domain.RuleAdolescent, domain.SeverityCritical,
			fmt.Sprintf("minor worked %.1fh in one day, limit is %.0fh", in.dailyHours, adolescentDailyMax), ref)
	}
	if in.weeklyHours > adolescentWeeklyMax {
		return fail(domain.RuleAdolescent, domain.SeverityCritical,
			fmt.Sprintf("minor worked %.1fh this week, limit is %.0fh", in.weeklyHours, adolescentWeeklyMax), ref)
	}
	return pass(domain.RuleAdolescent, "minor worker within daily and weekly limits", ref)
}

// Rule 11: no shift overlapping 20:00–06:00 may be assigned to a pregnant
// worker. Both endpoints of the shift are checked.
func evaluatePregnancyNight(in ruleInput) domain.ValidationResult {
	const ref = "Art. 26 LPRL 31/1995"
	if !in.ctx.IsPregnant {
		return pass(domain.RulePregnancyNight, "not applicable: no pregnancy protection active", ref)
	}
	e := in.ctx.CurrentEntry
	night := timecalc.InNightWindow(e.ClockIn, in.loc)
	if !night && e.ClockOut != nil {
		night = timecalc.InNightWindow(*e.ClockOut, in.loc)
	}
	if night {
		return domain.ValidationResult{
			Rule:              domain.RulePregnancyNight,
			Pass:              false,
			Severity:          domain.SeverityCritical,
			Message:           "shift overlaps the 20:00–06:00 window during protected pregnancy",
			RuleReference:     ref,
			RecommendedAction: "reassign the worker to a daytime shift",
		}
	}
	return pass(domain.RulePregnancyNight, "shift stays outside the protected night window", ref)
}

// Rule 12: clock-in proximity to the work site. Missing coordinates make the
// rule inapplicable; malformed coordinates are an input error surfaced by
// the validator before evaluation.
func evaluateGeofence(in ruleInput) (domain.ValidationResult, error) {
	const ref = "RD-ley 8/2019 Art. 10"
	if in.ctx.UserCoords == nil || in.ctx.LocationCoords == nil {
		return pass(domain.RuleGeofence, "no location data recorded for this clock-in", ref), nil
	}
	res, err := geofence.Check(*in.ctx.UserCoords, *in.ctx.LocationCoords, in.radius)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if res.Within {
		return pass(domain.RuleGeofence,
			fmt.Sprintf("clock-in %.0fm from site, within the %.0fm radius", res.DistanceMeters, res.RadiusMeters), ref), nil
	}
	return fail(domain.RuleGeofence, res.Severity,
		fmt.Sprintf("clock-in %.0fm from site, outside the %.0fm radius", res.DistanceMeters, res.RadiusMeters), ref), nil
}
