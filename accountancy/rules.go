// Package accountancy implements the New Hampshire CPA continuing-education
// rules. It defines the jurisdiction's rule table for the compliance engine
// and the roster vocabulary used by the importer and reports.
package accountancy

import (
	"time"

	"github.com/warp/compliance-engine/engine"
)

// Jurisdiction is the registry code for the New Hampshire CPA rule table.
const Jurisdiction = "nh-cpa"

// =============================================================================
// CUTOVER DATES
// =============================================================================

var (
	// RegimeChangeDate is when RSA 310:8 took effect. Licenses issued
	// after this date renew on their own anniversary under the biennial
	// rules from day one.
	RegimeChangeDate = engine.NewDate(2023, time.February, 22)

	// TransitionDate is when pre-existing licenses switch over: reporting
	// windows ending on or after this date run under the biennial rules
	// even for licenses that predate the regime change.
	TransitionDate = engine.NewDate(2025, time.July, 1)
)

// =============================================================================
// REGIMES
// =============================================================================

// TriennialRegime is the legacy rule set: 120 hours over three years,
// 4 of them ethics, at least 20 per year.
func TriennialRegime() engine.Regime {
	return engine.Regime{
		Kind:           engine.KindTriennial,
		Years:          3,
		HoursRequired:  engine.NewHoursFromInt(120),
		EthicsRequired: engine.NewHoursFromInt(4),
		AnnualMinimum:  engine.NewHoursFromInt(20),
		Label:          "Triennial - Old System",
	}
}

// BiennialRegime is the current rule set: 80 hours over two years,
// 4 of them ethics, at least 20 per year.
func BiennialRegime() engine.Regime {
	return engine.Regime{
		Kind:           engine.KindBiennial,
		Years:          2,
		HoursRequired:  engine.NewHoursFromInt(80),
		EthicsRequired: engine.NewHoursFromInt(4),
		AnnualMinimum:  engine.NewHoursFromInt(20),
		Label:          "Biennial - New System",
	}
}

// Rules returns the New Hampshire CPA rule table.
func Rules() engine.RuleTable {
	return engine.RuleTable{
		Jurisdiction:     Jurisdiction,
		RegimeChangeDate: RegimeChangeDate,
		TransitionDate:   TransitionDate,
		Legacy:           TriennialRegime(),
		Modern:           BiennialRegime(),
		MaxWindows:       6,
	}
}

func init() {
	engine.RegisterRuleTable(Rules())
}

// =============================================================================
// LICENSE CATEGORIES
// =============================================================================

// Category distinguishes the two renewal populations the 2023 rule
// change created.
type Category string

const (
	// CategoryExistingJuneRenewal: licensed before the regime change,
	// keeps the fixed June 30th renewal date.
	CategoryExistingJuneRenewal Category = "existing_june_renewal"

	// CategoryNewAnniversaryRenewal: licensed after the regime change,
	// renews on the license anniversary.
	CategoryNewAnniversaryRenewal Category = "new_anniversary_renewal"
)

func CategoryFor(issueDate engine.Date) Category {
	if Rules().IsLegacyLicense(issueDate) {
		return CategoryExistingJuneRenewal
	}
	return CategoryNewAnniversaryRenewal
}

// RenewalPattern describes when a license comes up for renewal.
func RenewalPattern(license engine.License) string {
	if CategoryFor(license.IssueDate) == CategoryExistingJuneRenewal {
		return "June 30th every 2 years"
	}
	return license.IssueDate.Format("January") + " every 2 years (anniversary-based)"
}

// =============================================================================
// ROSTER STATUS
// =============================================================================

// License status values as they appear on the state roster export.
const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusExpired   = "Expired"
	StatusSuspended = "Suspended"
)

// IsActiveStatus reports whether a roster status row represents a
// license the engine should track.
func IsActiveStatus(status string) bool {
	return status == StatusActive
}
