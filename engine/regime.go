package engine

// =============================================================================
// REGIME - One rule set: period length and hour requirements
// =============================================================================

type RegimeKind string

const (
	KindBiennial  RegimeKind = "biennial"
	KindTriennial RegimeKind = "triennial"
)

// Regime is the requirement set in force for a window: how long the
// reporting period runs and how many hours it demands.
type Regime struct {
	Kind           RegimeKind
	Years          int
	HoursRequired  Hours
	EthicsRequired Hours
	AnnualMinimum  Hours
	Label          string
}

func (r Regime) Validate() error {
	if r.Kind == "" {
		return &InvalidRuleTableError{Reason: "regime kind is required"}
	}
	if r.Years < 1 {
		return &InvalidRuleTableError{Reason: "regime period must be at least one year"}
	}
	if !r.HoursRequired.IsPositive() {
		return &InvalidRuleTableError{Reason: "regime total hours must be positive"}
	}
	if r.EthicsRequired.IsNegative() {
		return &InvalidRuleTableError{Reason: "regime ethics hours must not be negative"}
	}
	if r.AnnualMinimum.IsNegative() {
		return &InvalidRuleTableError{Reason: "regime annual minimum must not be negative"}
	}
	return nil
}

// =============================================================================
// RULE TABLE - A jurisdiction's regimes and cutover dates
// =============================================================================

// RuleTable holds the two regimes of a jurisdiction and the dates at
// which the rules changed:
//
//   - RegimeChangeDate: licenses issued after this date follow the modern
//     regime from day one, anchored to the license's own issue date.
//   - TransitionDate: reporting windows ending on or after this date use
//     the modern regime even for older licenses. The boundary date itself
//     belongs to the modern regime.
//
// MaxWindows bounds both window walks so generation always terminates.
type RuleTable struct {
	Jurisdiction     string
	RegimeChangeDate Date
	TransitionDate   Date
	Legacy           Regime
	Modern           Regime
	MaxWindows       int
}

func (t RuleTable) Validate() error {
	if t.Jurisdiction == "" {
		return &InvalidRuleTableError{Reason: "jurisdiction code is required"}
	}
	if t.RegimeChangeDate.IsZero() || t.TransitionDate.IsZero() {
		return &InvalidRuleTableError{Jurisdiction: t.Jurisdiction, Reason: "cutover dates are required"}
	}
	if t.TransitionDate.Before(t.RegimeChangeDate) {
		return &InvalidRuleTableError{Jurisdiction: t.Jurisdiction, Reason: "transition date precedes regime change date"}
	}
	if err := t.Legacy.Validate(); err != nil {
		return &InvalidRuleTableError{Jurisdiction: t.Jurisdiction, Reason: "legacy regime: " + err.Error()}
	}
	if err := t.Modern.Validate(); err != nil {
		return &InvalidRuleTableError{Jurisdiction: t.Jurisdiction, Reason: "modern regime: " + err.Error()}
	}
	if t.MaxWindows < 3 {
		// Must cover at least one historical, the current, and one future window.
		return &InvalidRuleTableError{Jurisdiction: t.Jurisdiction, Reason: "max windows must be at least 3"}
	}
	return nil
}

// IsLegacyLicense reports whether a license issued on the given date
// predates the regime change. The regime change date itself still counts
// as legacy; only licenses issued strictly after it start on the modern
// anniversary cycle.
func (t RuleTable) IsLegacyLicense(issueDate Date) bool {
	return issueDate.BeforeOrEqual(t.RegimeChangeDate)
}

// RegimeForWindowEnd picks the regime a window runs under. The window's
// own end date decides: on or after the transition date means modern.
func (t RuleTable) RegimeForWindowEnd(end Date) Regime {
	if end.AfterOrEqual(t.TransitionDate) {
		return t.Modern
	}
	return t.Legacy
}

// RegimeForSpan infers the regime a caller-chosen window most plausibly
// represents from its length: spans up to two and a half years read as
// the modern period, anything longer as the legacy one.
func (t RuleTable) RegimeForSpan(start, end Date) Regime {
	years := float64(DaysBetween(start, end)) / 365.25
	if years <= 2.5 {
		return t.Modern
	}
	return t.Legacy
}
