/*
rules_test.go - Regulatory rule tests

PURPOSE:
  These tests serve as EXECUTABLE RULES of the New Hampshire CPE
  requirements. Each test documents one regulatory behavior and
  validates that the engine conforms to it.

ORGANIZATION:
  Tests are grouped by rule area:
  1. Window Sequences - Ordering, tiling, status, determinism
  2. The Rules Transition - Which rules govern which window
  3. Verdicts - What compliant means inside one window

READING THESE TESTS:
  Each test has:
  - A descriptive name that states the behavior
  - A RULE comment stating the regulatory requirement
  - GIVEN/WHEN/THEN comments explaining the scenario
  - Clear assertions with explanatory messages

These tests are intentionally verbose for documentation purposes.
*/
package engine_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/warp/compliance-engine/engine"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================
// These helpers are shared by every test file in the package.
// =============================================================================

func d(year int, month time.Month, day int) engine.Date {
	return engine.NewDate(year, month, day)
}

// nhRules mirrors the registered New Hampshire accountancy table so the
// engine tests stay self-contained.
func nhRules() engine.RuleTable {
	return engine.RuleTable{
		Jurisdiction:     "nh-cpa",
		RegimeChangeDate: d(2023, time.February, 22),
		TransitionDate:   d(2025, time.July, 1),
		Legacy: engine.Regime{
			Kind:           engine.KindTriennial,
			Years:          3,
			HoursRequired:  engine.NewHoursFromInt(120),
			EthicsRequired: engine.NewHoursFromInt(4),
			AnnualMinimum:  engine.NewHoursFromInt(20),
			Label:          "Triennial - Old System",
		},
		Modern: engine.Regime{
			Kind:           engine.KindBiennial,
			Years:          2,
			HoursRequired:  engine.NewHoursFromInt(80),
			EthicsRequired: engine.NewHoursFromInt(4),
			AnnualMinimum:  engine.NewHoursFromInt(20),
			Label:          "Biennial - New System",
		},
		MaxWindows: 6,
	}
}

func course(year int, month time.Month, day int, hours float64, ethics bool) engine.EducationRecord {
	return engine.EducationRecord{
		CompletionDate: d(year, month, day),
		Hours:          engine.NewHours(hours),
		Ethics:         ethics,
	}
}

// =============================================================================
// RULE 1: WINDOW SEQUENCES
// =============================================================================

func TestRule_Sequence_ChronologicalAndGapless(t *testing.T) {
	// RULE: A license's reporting periods tile its licensed span: oldest
	// first, each starting the day after its predecessor ends, with no
	// gaps and no overlaps.
	//
	// GIVEN: Licenses on both the fixed-date and the anniversary cycle
	// WHEN: Windows are derived
	// THEN: Every consecutive pair is contiguous and strictly ordered

	gen := nhGenerator(t)
	licenses := []engine.License{
		{Number: "legacy", IssueDate: d(2010, time.July, 1), ExpirationDate: d(2025, time.June, 30)},
		{Number: "straddling", IssueDate: d(2015, time.July, 1), ExpirationDate: d(2027, time.June, 30)},
		{Number: "modern", IssueDate: d(2023, time.June, 15), ExpirationDate: d(2029, time.June, 14)},
	}

	for _, license := range licenses {
		windows, err := gen.Windows(license, d(2025, time.January, 1))
		if err != nil {
			t.Fatalf("license %s: %v", license.Number, err)
		}
		if len(windows) < 2 {
			t.Fatalf("license %s: expected several windows, got %d", license.Number, len(windows))
		}

		for i := 1; i < len(windows); i++ {
			prev, next := windows[i-1], windows[i]
			if !prev.End.Before(next.End) {
				t.Errorf("RULE VIOLATION: license %s windows not in ascending end order: %s then %s",
					license.Number, prev, next)
			}
			if !next.Start.Equal(prev.End.AddDays(1)) {
				t.Errorf("RULE VIOLATION: license %s has a gap or overlap between %s and %s",
					license.Number, prev, next)
			}
		}
	}
}

func TestRule_Sequence_NeverStartsBeforeIssueDate(t *testing.T) {
	// RULE: No reporting period may begin before the license exists. When
	// the backward walk would step past the issue date, it stops; it
	// never emits a clipped partial period.
	//
	// GIVEN: A license issued mid-cycle
	// WHEN: Windows are derived
	// THEN: Every window starts on or after the issue date

	gen := nhGenerator(t)
	license := engine.License{
		Number:         "mid-cycle",
		IssueDate:      d(2020, time.January, 1),
		ExpirationDate: d(2025, time.June, 30),
	}

	windows, err := gen.Windows(license, d(2024, time.June, 1))
	if err != nil {
		t.Fatalf("derive windows: %v", err)
	}
	for _, w := range windows {
		if w.Start.Before(license.IssueDate) {
			t.Errorf("RULE VIOLATION: window %s begins before the license was issued", w)
		}
	}
}

func TestRule_Sequence_ExactlyOneStatusPerWindow(t *testing.T) {
	// RULE: Relative to an evaluation date, every window is exactly one
	// of historical, current, or future. A date inside a window makes it
	// current; the statuses never overlap.
	//
	// GIVEN: A multi-window license and an evaluation date inside one window
	// THEN: Each window carries exactly one status, and exactly one
	// window in the sequence is current

	gen := nhGenerator(t)
	license := engine.License{
		Number:         "portfolio",
		IssueDate:      d(2010, time.July, 1),
		ExpirationDate: d(2027, time.June, 30),
	}

	asOf := d(2025, time.January, 1)
	windows, err := gen.Windows(license, asOf)
	if err != nil {
		t.Fatalf("derive windows: %v", err)
	}

	currentCount := 0
	for _, w := range windows {
		held := 0
		for _, is := range []bool{w.IsHistorical(), w.IsCurrent(), w.IsFuture()} {
			if is {
				held++
			}
		}
		if held != 1 {
			t.Errorf("RULE VIOLATION: window %s holds %d statuses, want exactly 1", w, held)
		}
		if w.IsCurrent() {
			currentCount++
			if !w.Contains(asOf) {
				t.Errorf("RULE VIOLATION: current window %s does not contain the evaluation date", w)
			}
		}
	}
	if currentCount != 1 {
		t.Errorf("RULE VIOLATION: expected exactly one current window, got %d", currentCount)
	}
}

func TestRule_Sequence_DeterministicForSameInputs(t *testing.T) {
	// RULE: Window derivation is a pure function of the license, the rule
	// table, and the evaluation date. Asking twice changes nothing.

	gen := nhGenerator(t)
	license := engine.License{
		Number:         "repeat",
		IssueDate:      d(2015, time.July, 1),
		ExpirationDate: d(2027, time.June, 30),
	}

	first, err1 := gen.Windows(license, d(2025, time.January, 1))
	second, err2 := gen.Windows(license, d(2025, time.January, 1))
	if err1 != nil || err2 != nil {
		t.Fatalf("derive windows: %v / %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("RULE VIOLATION: identical inputs produced different window sequences")
	}
}

// =============================================================================
// RULE 2: THE RULES TRANSITION
// =============================================================================

func TestRule_Transition_WindowEndDateSelectsRegime(t *testing.T) {
	// RULE: A window's own END date decides which requirement set
	// governs it. Periods ending before July 1, 2025 owe 120 hours over
	// three years; periods ending on or after that date owe 80 hours
	// over two. The boundary date itself belongs to the new rules.

	rules := nhRules()

	old := rules.RegimeForWindowEnd(d(2025, time.June, 30))
	if old.Kind != engine.KindTriennial {
		t.Errorf("RULE VIOLATION: window ending the day before the transition must use the old rules, got %s", old.Kind)
	}

	boundary := rules.RegimeForWindowEnd(d(2025, time.July, 1))
	if boundary.Kind != engine.KindBiennial {
		t.Errorf("RULE VIOLATION: window ending on the transition date must use the new rules, got %s", boundary.Kind)
	}
}

func TestRule_Transition_LicenseStraddlesBothRegimes(t *testing.T) {
	// RULE: An established license evaluated near the transition sees
	// both worlds at once: its current period still runs under the old
	// triennial rules, and the very next period, starting July 1, 2025,
	// runs under the new biennial rules.
	//
	// GIVEN: A license issued 2020-01-01 expiring 2027-06-30
	// WHEN: Windows are derived as of 2025-01-01
	// THEN: The current window ends 2025-06-30 at 120 hours, and the next
	// window starts 2025-07-01 at 80 hours

	gen := nhGenerator(t)
	license := engine.License{
		Number:         "straddle",
		IssueDate:      d(2020, time.January, 1),
		ExpirationDate: d(2027, time.June, 30),
	}

	windows, err := gen.Windows(license, d(2025, time.January, 1))
	if err != nil {
		t.Fatalf("derive windows: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}

	current := windows[0]
	if !current.IsCurrent() || !current.End.Equal(d(2025, time.June, 30)) {
		t.Errorf("RULE VIOLATION: expected current window ending 2025-06-30, got %s (%s)", current, current.Status)
	}
	if current.Regime.Kind != engine.KindTriennial || current.Regime.HoursRequired.Float64() != 120 {
		t.Errorf("RULE VIOLATION: the period ending before the transition owes 120 triennial hours, got %s", current.Regime.Label)
	}

	next := windows[1]
	if !next.IsFuture() || !next.Start.Equal(d(2025, time.July, 1)) {
		t.Errorf("RULE VIOLATION: expected future window starting 2025-07-01, got %s (%s)", next, next.Status)
	}
	if next.Regime.Kind != engine.KindBiennial || next.Regime.HoursRequired.Float64() != 80 {
		t.Errorf("RULE VIOLATION: the period ending after the transition owes 80 biennial hours, got %s", next.Regime.Label)
	}
}

func TestRule_Transition_IssueDateSelectsAnchor(t *testing.T) {
	// RULE: Licenses issued on or before February 22, 2023 renew on the
	// state's fixed calendar date, so their windows are anchored to the
	// expiration date. Licenses issued after that date renew on their own
	// anniversary, so their windows are anchored to the issue date.
	//
	// GIVEN: Two licenses issued one day apart across the boundary
	// THEN: The first walks backward from expiration, the second forward
	// from issue

	gen := nhGenerator(t)
	asOf := d(2024, time.June, 1)

	onBoundary := engine.License{
		Number:         "issued-feb-22",
		IssueDate:      d(2023, time.February, 22),
		ExpirationDate: d(2026, time.February, 21),
	}
	legacyWindows, err := gen.Windows(onBoundary, asOf)
	if err != nil {
		t.Fatalf("derive windows: %v", err)
	}
	if len(legacyWindows) == 0 {
		t.Fatal("expected at least one window for the boundary license")
	}
	last := legacyWindows[len(legacyWindows)-1]
	if !last.End.Equal(onBoundary.ExpirationDate) {
		t.Errorf("RULE VIOLATION: expiration-anchored sequence must end exactly at expiration, got %s", last)
	}
	if legacyWindows[0].Start.Equal(onBoundary.IssueDate) {
		t.Errorf("RULE VIOLATION: a fixed-date license is not anchored to its issue date, got %s", legacyWindows[0])
	}

	afterBoundary := engine.License{
		Number:         "issued-feb-23",
		IssueDate:      d(2023, time.February, 23),
		ExpirationDate: d(2026, time.February, 21),
	}
	modernWindows, err := gen.Windows(afterBoundary, asOf)
	if err != nil {
		t.Fatalf("derive windows: %v", err)
	}
	if len(modernWindows) == 0 {
		t.Fatal("expected at least one window for the anniversary license")
	}
	if !modernWindows[0].Start.Equal(afterBoundary.IssueDate) {
		t.Errorf("RULE VIOLATION: anniversary sequence must begin exactly at issue, got %s", modernWindows[0])
	}
}

// =============================================================================
// RULE 3: VERDICTS
// =============================================================================

func TestRule_Verdict_RequiresTotalEthicsAndEveryYear(t *testing.T) {
	// RULE: Compliance is the conjunction of three requirements: the
	// period total, the ethics hours, and the minimum in EVERY year of
	// the period. Surplus hours in one year cannot cover a thin year.
	//
	// GIVEN: An 80-hour biennial window holding 85 total hours and 5
	// ethics hours, but only 15 hours completed in the first year
	// THEN: The verdict is non-compliant and the shortage names the year

	window, err := engine.NewWindow(d(2023, time.July, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	if err != nil {
		t.Fatalf("build window: %v", err)
	}

	records := []engine.EducationRecord{
		course(2023, time.September, 1, 10, false),
		course(2024, time.January, 15, 5, true),
		course(2024, time.August, 1, 35, false),
		course(2025, time.February, 1, 35, false),
	}

	result, err := engine.Analyzer{}.Analyze(window, records)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.Compliant {
		t.Error("RULE VIOLATION: a year below the annual minimum must fail the verdict even when totals pass")
	}
	if !result.MissingHours.IsZero() || !result.MissingEthics.IsZero() {
		t.Errorf("totals were met; missing hours should be zero, got %s general / %s ethics",
			result.MissingHours, result.MissingEthics)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "Year 1 shortage: 5.0 hours" {
		t.Errorf("expected the year shortage recommendation, got %v", result.Recommendations)
	}
}

func TestRule_Verdict_EthicsHoursAreAdditive(t *testing.T) {
	// RULE: Ethics hours are a subset of the total, not a separate
	// bucket. One 4-hour ethics course satisfies 4 of the 80 general
	// hours AND the 4-hour ethics requirement.

	window, err := engine.NewWindow(d(2023, time.July, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	if err != nil {
		t.Fatalf("build window: %v", err)
	}

	result, err := engine.Analyzer{}.Analyze(window, []engine.EducationRecord{
		course(2024, time.February, 10, 4, true),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.TotalHours.Float64() != 4 {
		t.Errorf("RULE VIOLATION: ethics course must count toward the total, got %s", result.TotalHours)
	}
	if result.EthicsHours.Float64() != 4 {
		t.Errorf("RULE VIOLATION: ethics course must count toward ethics, got %s", result.EthicsHours)
	}
}

func TestRule_Verdict_BoundaryCoursesCount(t *testing.T) {
	// RULE: Window boundaries are inclusive on both ends. A course
	// completed exactly on the first or the last day of the period
	// counts toward it.

	window, err := engine.NewWindow(d(2023, time.July, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	if err != nil {
		t.Fatalf("build window: %v", err)
	}

	result, err := engine.Analyzer{}.Analyze(window, []engine.EducationRecord{
		course(2023, time.July, 1, 10, false),
		course(2025, time.June, 30, 12, false),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.TotalHours.Float64() != 22 {
		t.Errorf("RULE VIOLATION: boundary-day courses must count, got %s of 22 hours", result.TotalHours)
	}
}

func TestRule_Verdict_NoRecordsIsAnAnswerNotAnError(t *testing.T) {
	// RULE: A licensee with no recorded education is simply not
	// compliant. The verdict reports the full requirement as missing;
	// it is never an error.

	window, err := engine.NewWindow(d(2023, time.July, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	if err != nil {
		t.Fatalf("build window: %v", err)
	}

	result, err := engine.Analyzer{}.Analyze(window, nil)
	if err != nil {
		t.Fatalf("RULE VIOLATION: empty records must not error: %v", err)
	}

	if result.Compliant {
		t.Error("RULE VIOLATION: no records cannot be compliant")
	}
	if result.MissingHours.Float64() != 80 {
		t.Errorf("expected the full 80 hours missing, got %s", result.MissingHours)
	}
	if len(result.Recommendations) == 0 {
		t.Error("RULE VIOLATION: a non-compliant verdict must carry recommendations")
	}
}

func TestRule_Verdict_PercentNeverExceedsFull(t *testing.T) {
	// RULE: Completion percentage is capped at 100. Over-completion
	// reads as fully complete, never more.

	window, err := engine.NewWindow(d(2023, time.July, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	if err != nil {
		t.Fatalf("build window: %v", err)
	}

	result, err := engine.Analyzer{}.Analyze(window, []engine.EducationRecord{
		course(2023, time.September, 1, 100, false),
		course(2024, time.September, 1, 100, true),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.CompliancePercent != 100 {
		t.Errorf("RULE VIOLATION: percent must cap at 100, got %.2f", result.CompliancePercent)
	}
	if !result.Compliant {
		t.Error("expected a compliant verdict with double the requirement met")
	}
}
