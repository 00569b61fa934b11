package domain

// Severity is the ordinal weight attached to a failed (or informationally
// reported) rule result. Callers use it to decide blocking vs. warning
// behavior; the engine never blocks anything itself.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RuleID enumerates the twelve compliance rules. The set is closed: adding a
// rule means adding a constant here, an evaluator, and a slot in RuleOrder.
type RuleID string

const (
	RuleDailyLimit      RuleID = "daily_limit"
	RuleWeeklyLimit     RuleID = "weekly_limit"
	RuleRestPeriod      RuleID = "rest_period"
	RuleMandatoryBreak  RuleID = "mandatory_break"
	RuleContinuousWork  RuleID = "continuous_work"
	RuleWeeklyRest      RuleID = "weekly_rest"
	RuleNightWork       RuleID = "night_work"
	RuleOvertime        RuleID = "overtime"
	RuleAbsoluteMax     RuleID = "absolute_weekly_max"
	RuleAdolescent      RuleID = "adolescent"
	RulePregnancyNight  RuleID = "pregnancy_night_work"
	RuleGeofence        RuleID = "geofence"
)

// RuleOrder fixes the order in which results are produced and reported.
var RuleOrder = [12]RuleID{
	RuleDailyLimit,
	RuleWeeklyLimit,
	RuleRestPeriod,
	RuleMandatoryBreak,
	RuleContinuousWork,
	RuleWeeklyRest,
	RuleNightWork,
	RuleOvertime,
	RuleAbsoluteMax,
	RuleAdolescent,
	RulePregnancyNight,
	RuleGeofence,
}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is inside the representable range.
// An out-of-range coordinate is malformed input, never a compliance verdict.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// ValidationContext is the unit of work handed to the validator. The caller
// resolves and scopes the data: AllEntries holds the same worker's history,
// Breaks holds the breaks belonging to CurrentEntry. The validator only
// reads; it never mutates entries.
type ValidationContext struct {
	CurrentEntry TimeEntry
	AllEntries   []TimeEntry
	Breaks       []BreakEntry

	UserAge        *int
	IsPregnant     bool
	LocationCoords *Coordinate
	UserCoords     *Coordinate
}

// ValidationResult is the verdict of a single rule. Severity is set only
// when the rule failed or when overtime is being reported informationally.
type ValidationResult struct {
	Rule              RuleID   `json:"rule"`
	Pass              bool     `json:"pass"`
	Severity          Severity `json:"severity,omitempty"`
	Message           string   `json:"message"`
	RuleReference     string   `json:"rule_reference"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
}
