/*
analyzer.go - Window evaluation

PURPOSE:
  Evaluates a set of education records against one window and produces
  the compliance verdict: totals, the year-by-year breakdown, missing
  amounts, and remediation guidance.

KEY RULES:
  - Boundary dates are inclusive on both ends: a course completed exactly
    on the window start or end counts.
  - Ethics hours are additive to the total, not separate from it. A
    4-hour ethics course moves both the 80-hour total and the 4-hour
    ethics requirement.
  - The verdict is a conjunction: total AND ethics AND every annual
    slice. Plenty of total hours cannot paper over a thin year - the
    annual shortfall is surfaced, never hidden.
  - Total function: an empty record set is a valid, non-compliant
    result, not an error.

SEE ALSO:
  - window.go: AnnualSlices, the year partitioning
  - generator.go: Produces the windows evaluated here
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// AnnualCompliance is the verdict for one year slice of a window.
type AnnualCompliance struct {
	Year           int
	Start          Date
	End            Date
	HoursCompleted Hours
	HoursRequired  Hours
	Compliant      bool
}

// ComplianceResult is the full verdict for one window.
type ComplianceResult struct {
	Window            Window
	TotalHours        Hours
	EthicsHours       Hours
	AnnualBreakdown   []AnnualCompliance
	Compliant         bool
	CompliancePercent float64
	MissingHours      Hours
	MissingEthics     Hours
	Recommendations   []string
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer evaluates records against windows. Stateless; the zero value
// is ready to use and safe for concurrent use.
type Analyzer struct{}

// Analyze computes the compliance verdict for the window. Records
// outside the window are ignored; malformed inputs fail fast.
func (Analyzer) Analyze(window Window, records []EducationRecord) (ComplianceResult, error) {
	if err := window.Validate(); err != nil {
		return ComplianceResult{}, err
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return ComplianceResult{}, err
		}
	}

	var inWindow []EducationRecord
	for _, r := range records {
		if window.Contains(r.CompletionDate) {
			inWindow = append(inWindow, r)
		}
	}

	var total, ethics Hours
	for _, r := range inWindow {
		total = total.Add(r.Hours)
		if r.Ethics {
			ethics = ethics.Add(r.Hours)
		}
	}

	breakdown := annualBreakdown(window, inWindow)

	compliant := total.GreaterOrEqual(window.Regime.HoursRequired) &&
		ethics.GreaterOrEqual(window.Regime.EthicsRequired)
	for _, year := range breakdown {
		compliant = compliant && year.Compliant
	}

	missingHours := window.Regime.HoursRequired.Sub(total).Max(Hours{})
	missingEthics := window.Regime.EthicsRequired.Sub(ethics).Max(Hours{})

	return ComplianceResult{
		Window:            window,
		TotalHours:        total,
		EthicsHours:       ethics,
		AnnualBreakdown:   breakdown,
		Compliant:         compliant,
		CompliancePercent: compliancePercent(total, window.Regime.HoursRequired),
		MissingHours:      missingHours,
		MissingEthics:     missingEthics,
		Recommendations:   recommendations(compliant, missingHours, missingEthics, breakdown),
	}, nil
}

func annualBreakdown(window Window, records []EducationRecord) []AnnualCompliance {
	var breakdown []AnnualCompliance
	for _, slice := range window.AnnualSlices() {
		var hours Hours
		for _, r := range records {
			if r.CompletionDate.AfterOrEqual(slice.Start) && r.CompletionDate.BeforeOrEqual(slice.End) {
				hours = hours.Add(r.Hours)
			}
		}
		breakdown = append(breakdown, AnnualCompliance{
			Year:           slice.Year,
			Start:          slice.Start,
			End:            slice.End,
			HoursCompleted: hours,
			HoursRequired:  window.Regime.AnnualMinimum,
			Compliant:      hours.GreaterOrEqual(window.Regime.AnnualMinimum),
		})
	}
	return breakdown
}

// compliancePercent is capped at 100: over-completion never reads as
// more than fully compliant.
func compliancePercent(total, required Hours) float64 {
	if !required.IsPositive() {
		return 100
	}
	pct := total.Value.Div(required.Value).Mul(decimal.NewFromInt(100)).InexactFloat64()
	if pct > 100 {
		return 100
	}
	return pct
}

// recommendations orders remediation lines: general shortfall, ethics
// shortfall, then each short year chronologically. A compliant window
// gets the single confirmation line instead.
func recommendations(compliant bool, missingHours, missingEthics Hours, breakdown []AnnualCompliance) []string {
	var recs []string
	if missingHours.IsPositive() {
		recs = append(recs, fmt.Sprintf("Need %s more general CPE hours", missingHours.Value.StringFixed(1)))
	}
	if missingEthics.IsPositive() {
		recs = append(recs, fmt.Sprintf("Need %s more ethics hours", missingEthics.Value.StringFixed(1)))
	}
	for _, year := range breakdown {
		if !year.Compliant {
			shortage := year.HoursRequired.Sub(year.HoursCompleted)
			recs = append(recs, fmt.Sprintf("Year %d shortage: %s hours", year.Year, shortage.Value.StringFixed(1)))
		}
	}
	if compliant {
		recs = append(recs, "Fully compliant for this period")
	}
	return recs
}
