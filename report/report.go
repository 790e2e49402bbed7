/*
report.go - User-facing compliance reports

PURPOSE:
  Turns engine output (windows + compliance results) into the material a
  licensee actually reads: a status summary, the renewal-pattern
  explanation for their license category, deadline urgency, important
  dates, and immediate action items.

DIVISION OF LABOR:
  The engine owns every per-condition recommendation line ("Need 20.0
  more general CPE hours"). This package owns everything else: category
  prose, urgency levels, date timelines, action items, and the
  plain-text rendering used by CLI and export output.

URGENCY LEVELS:
  critical: renewal deadline within 30 days
  high:     within 90 days
  medium:   within 180 days
  low:      more than 180 days out

SEE ALSO:
  - engine/analyzer.go: ComplianceResult and its recommendation lines
  - accountancy/rules.go: License categories and renewal patterns
  - api/handlers.go: Report endpoint
*/
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/engine"
)

// =============================================================================
// URGENCY
// =============================================================================

// Urgency grades how close a renewal deadline is.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// UrgencyFor maps days until the window end to an urgency level.
func UrgencyFor(daysRemaining int) Urgency {
	switch {
	case daysRemaining <= 30:
		return UrgencyCritical
	case daysRemaining <= 90:
		return UrgencyHigh
	case daysRemaining <= 180:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// Status values for the report headline.
const (
	StatusCompliant      = "Compliant"
	StatusNeedsAttention = "Needs Attention"
	StatusSetupRequired  = "Setup Required"
)

// ImportantDate is one deadline on the licensee's calendar.
type ImportantDate struct {
	Date        engine.Date `json:"date"`
	Event       string      `json:"event"`
	Description string      `json:"description"`
	Importance  Urgency     `json:"importance"`
}

// ComplianceReport is the full picture for one license as of a given
// date: the analyzed window, where the licensee stands, and what to do
// next.
type ComplianceReport struct {
	License        engine.License          `json:"license"`
	AsOf           engine.Date             `json:"as_of"`
	Category       accountancy.Category    `json:"category"`
	CategoryNote   string                  `json:"category_note"`
	RenewalPattern string                  `json:"renewal_pattern"`
	History        string                  `json:"history"`
	Status         string                  `json:"status"`
	Summary        string                  `json:"summary"`
	DaysRemaining  int                     `json:"days_remaining"`
	Urgency        Urgency                 `json:"urgency"`
	Result         engine.ComplianceResult `json:"result"`
	Windows        []engine.Window         `json:"windows"`
	ImportantDates []ImportantDate         `json:"important_dates"`
	NextActions    []string                `json:"next_actions"`
}

// =============================================================================
// BUILD
// =============================================================================

// Build assembles a report from the engine's output. The result must be
// for the window the report describes; windows is the license's full
// sequence for context.
func Build(license engine.License, windows []engine.Window, result engine.ComplianceResult, asOf engine.Date) ComplianceReport {
	window := result.Window

	daysRemaining := engine.DaysBetween(asOf, window.End)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	category := accountancy.CategoryFor(license.IssueDate)

	return ComplianceReport{
		License:        license,
		AsOf:           asOf,
		Category:       category,
		CategoryNote:   categoryNote(category, license),
		RenewalPattern: accountancy.RenewalPattern(license),
		History: fmt.Sprintf("Licensed %s, expires %s",
			license.IssueDate.Format("January 2006"),
			license.ExpirationDate.Format("January 2006")),
		Status:         status(result),
		Summary:        summary(result),
		DaysRemaining:  daysRemaining,
		Urgency:        UrgencyFor(daysRemaining),
		Result:         result,
		Windows:        windows,
		ImportantDates: importantDates(window, daysRemaining),
		NextActions:    nextActions(result, daysRemaining),
	}
}

func categoryNote(category accountancy.Category, license engine.License) string {
	if category == accountancy.CategoryExistingJuneRenewal {
		return "As a CPA licensed before February 2023, you keep June 30th renewal dates but are now on 2-year renewal cycles instead of the previous 3-year cycles."
	}
	return fmt.Sprintf("As a CPA licensed after February 2023, your renewal follows your license anniversary date in %s, with 2-year renewal cycles.",
		license.IssueDate.Format("January"))
}

func status(result engine.ComplianceResult) string {
	switch {
	case result.TotalHours.IsZero():
		return StatusSetupRequired
	case result.Compliant:
		return StatusCompliant
	default:
		return StatusNeedsAttention
	}
}

func summary(result engine.ComplianceResult) string {
	required := result.Window.Regime.HoursRequired
	switch {
	case result.TotalHours.IsZero():
		return "No CPE records found for this period. Add your certificates to get a complete compliance analysis."
	case result.Compliant:
		return fmt.Sprintf("You're on track! You've completed %s of %s required hours.",
			result.TotalHours.Value.StringFixed(1), required)
	default:
		return fmt.Sprintf("You need %s more CPE hours to meet your %s-hour requirement.",
			result.MissingHours.Value.StringFixed(1), required)
	}
}

// importantDates lists the window's deadlines oldest first: each annual
// minimum, a 90-day warning when it is still ahead, and the renewal
// deadline itself.
func importantDates(window engine.Window, daysRemaining int) []ImportantDate {
	dates := []ImportantDate{{
		Date:        window.End,
		Event:       "License Renewal Deadline",
		Description: fmt.Sprintf("All %s CPE hours must be completed", window.Regime.HoursRequired),
		Importance:  UrgencyCritical,
	}}

	for _, slice := range window.AnnualSlices() {
		if slice.End.Equal(window.End) {
			continue // the final year closes with the renewal deadline
		}
		dates = append(dates, ImportantDate{
			Date:        slice.End,
			Event:       fmt.Sprintf("Year %d Annual Minimum", slice.Year),
			Description: fmt.Sprintf("%s CPE hours must be completed by this date", window.Regime.AnnualMinimum),
			Importance:  UrgencyHigh,
		})
	}

	if daysRemaining > 90 {
		dates = append(dates, ImportantDate{
			Date:        window.End.AddDays(-90),
			Event:       "90-Day Warning",
			Description: "Good time to ensure you're on track for renewal",
			Importance:  UrgencyMedium,
		})
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Date.Before(dates[j].Date) })
	return dates
}

func nextActions(result engine.ComplianceResult, daysRemaining int) []string {
	var actions []string

	if daysRemaining <= 30 {
		actions = append(actions, "URGENT: Renewal deadline in 30 days or less!")
	} else if daysRemaining <= 90 {
		actions = append(actions, "Important: Renewal deadline approaching in 3 months")
	}

	required := result.Window.Regime.HoursRequired
	half := engine.Hours{Value: required.Value.Div(decimal.NewFromInt(2))}
	switch {
	case result.TotalHours.IsZero():
		actions = append(actions, "Start by adding your existing CPE certificates")
	case result.TotalHours.LessThan(half):
		actions = append(actions, "Focus on completing more CPE hours")
	}

	if result.EthicsHours.IsZero() && result.Window.Regime.EthicsRequired.IsPositive() {
		actions = append(actions, fmt.Sprintf("Schedule ethics CPE courses (%s hours required)",
			result.Window.Regime.EthicsRequired))
	}

	if !result.Compliant && daysRemaining < 180 {
		actions = append(actions, "Consider accelerating CPE completion as renewal approaches")
	}

	return actions
}

// =============================================================================
// TEXT RENDERING
// =============================================================================

// Render formats the report as plain text for CLI and export output.
func (r ComplianceReport) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "CPE Compliance Report - License %s\n", r.License.Number)
	fmt.Fprintf(&b, "Generated %s\n\n", r.AsOf)

	fmt.Fprintf(&b, "%s\n", r.Result.Window.Description)
	fmt.Fprintf(&b, "Status: %s (%.1f%% complete)\n", r.Status, r.Result.CompliancePercent)
	fmt.Fprintf(&b, "%s\n\n", r.Summary)

	fmt.Fprintf(&b, "Hours:  %s of %s", r.Result.TotalHours, r.Result.Window.Regime.HoursRequired)
	fmt.Fprintf(&b, "   Ethics: %s of %s\n", r.Result.EthicsHours, r.Result.Window.Regime.EthicsRequired)
	for _, year := range r.Result.AnnualBreakdown {
		mark := "ok"
		if !year.Compliant {
			mark = "short"
		}
		fmt.Fprintf(&b, "Year %d: %s of %s (%s)\n", year.Year, year.HoursCompleted, year.HoursRequired, mark)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Renewal: %s, %d days remaining (%s)\n", r.RenewalPattern, r.DaysRemaining, r.Urgency)
	fmt.Fprintf(&b, "%s\n\n", r.CategoryNote)

	if len(r.Result.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, rec := range r.Result.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(r.NextActions) > 0 {
		b.WriteString("Next actions:\n")
		for _, action := range r.NextActions {
			fmt.Fprintf(&b, "  - %s\n", action)
		}
		b.WriteString("\n")
	}

	b.WriteString("Important dates:\n")
	for _, d := range r.ImportantDates {
		fmt.Fprintf(&b, "  %s  %-28s %s\n", d.Date, d.Event, d.Description)
	}

	return b.String()
}
