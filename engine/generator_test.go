package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/engine"
)

func nhGenerator(t *testing.T) *engine.Generator {
	t.Helper()
	gen, err := engine.NewGenerator(nhRules())
	require.NoError(t, err)
	return gen
}

func TestNewGeneratorRejectsInvalidRules(t *testing.T) {
	bad := nhRules()
	bad.Jurisdiction = ""

	_, err := engine.NewGenerator(bad)
	assert.ErrorIs(t, err, engine.ErrInvalidRuleTable)
}

func TestLegacyLicenseWalksBackwardFromExpiration(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN a license issued long before the regime change, expiring on
	// the state's fixed June 30th renewal date
	license := engine.License{
		Number:         "NH-01234",
		IssueDate:      d(2010, time.July, 1),
		ExpirationDate: d(2025, time.June, 30),
	}

	// WHEN windows are derived as of a date inside the latest period
	windows, err := gen.Windows(license, d(2024, time.January, 1))
	require.NoError(t, err)

	// THEN the walk covers the full licensed span in triennial steps
	require.Len(t, windows, 5)
	assert.Equal(t, d(2010, time.July, 1), windows[0].Start)
	assert.Equal(t, d(2025, time.June, 30), windows[4].End)

	for i, w := range windows {
		assert.Equal(t, engine.KindTriennial, w.Regime.Kind, "window %d", i)
		if i > 0 {
			assert.Equal(t, windows[i-1].End.AddDays(1), w.Start, "window %d must start the day after its predecessor ends", i)
		}
	}

	// AND only the latest window is current
	for _, w := range windows[:4] {
		assert.Equal(t, engine.StatusHistorical, w.Status)
	}
	assert.Equal(t, engine.StatusCurrent, windows[4].Status)
}

func TestLegacyLicenseSpansRegimeTransition(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN a legacy license whose expiration extends past the transition
	// date, so its sequence straddles both rule sets
	license := engine.License{
		Number:         "NH-05678",
		IssueDate:      d(2015, time.July, 1),
		ExpirationDate: d(2027, time.June, 30),
	}

	// WHEN windows are derived during the last triennial period
	windows, err := gen.Windows(license, d(2025, time.January, 1))
	require.NoError(t, err)
	require.Len(t, windows, 4)

	// THEN each window's own end date picks its regime: the period ending
	// June 30, 2025 still runs under the old triennial rules
	current := windows[2]
	assert.Equal(t, d(2022, time.July, 1), current.Start)
	assert.Equal(t, d(2025, time.June, 30), current.End)
	assert.Equal(t, engine.KindTriennial, current.Regime.Kind)
	assert.Equal(t, "120", current.Regime.HoursRequired.String())
	assert.Equal(t, engine.StatusCurrent, current.Status)

	// AND the period ending after the transition runs under the new
	// biennial rules, starting the very next day
	next := windows[3]
	assert.Equal(t, d(2025, time.July, 1), next.Start)
	assert.Equal(t, d(2027, time.June, 30), next.End)
	assert.Equal(t, engine.KindBiennial, next.Regime.Kind)
	assert.Equal(t, "80", next.Regime.HoursRequired.String())
	assert.Equal(t, engine.StatusFuture, next.Status)

	for _, w := range windows[:2] {
		assert.Equal(t, engine.StatusHistorical, w.Status)
	}
}

func TestLegacyWalkStopsAtIssueDateWithoutClipping(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN a license issued mid-cycle, so the walk would step past the
	// issue date after a single window
	license := engine.License{
		Number:         "NH-09999",
		IssueDate:      d(2020, time.January, 1),
		ExpirationDate: d(2025, time.June, 30),
	}

	windows, err := gen.Windows(license, d(2024, time.June, 1))
	require.NoError(t, err)

	// THEN the walk stops rather than emitting a window clipped at the
	// issue date
	require.Len(t, windows, 1)
	assert.Equal(t, d(2022, time.July, 1), windows[0].Start)
	for _, w := range windows {
		assert.True(t, w.Start.AfterOrEqual(license.IssueDate), "no window may begin before the license exists")
	}
}

func TestLegacyWalkReportsTruncatedHistory(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN a license old enough that its full history exceeds the walk
	// bound
	license := engine.License{
		Number:         "NH-00001",
		IssueDate:      d(1990, time.July, 1),
		ExpirationDate: d(2025, time.June, 30),
	}

	windows, err := gen.Windows(license, d(2024, time.January, 1))

	// THEN the bounded sequence is still returned, newest periods intact
	require.Len(t, windows, 6)
	assert.Equal(t, d(2025, time.June, 30), windows[5].End)
	assert.Equal(t, d(2007, time.July, 1), windows[0].Start)

	// AND the truncation is reported as an advisory, not a failure
	require.Error(t, err)
	assert.True(t, engine.IsTruncated(err))

	var truncated *engine.TruncatedSequenceError
	require.True(t, errors.As(err, &truncated))
	assert.Equal(t, "NH-00001", truncated.LicenseNumber)
	assert.Equal(t, 6, truncated.MaxWindows)
	assert.Equal(t, d(1990, time.July, 1), truncated.UncoveredFrom)
	assert.Equal(t, d(2007, time.June, 30), truncated.UncoveredTo)
}

func TestModernLicenseWalksForwardFromIssue(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN a license issued after the regime change, renewing on its own
	// anniversary
	license := engine.License{
		Number:         "NH-20001",
		IssueDate:      d(2023, time.June, 15),
		ExpirationDate: d(2027, time.June, 14),
	}

	windows, err := gen.Windows(license, d(2024, time.January, 1))
	require.NoError(t, err)
	require.Len(t, windows, 2)

	first := windows[0]
	assert.Equal(t, d(2023, time.June, 15), first.Start)
	assert.Equal(t, d(2025, time.June, 14), first.End)
	assert.Equal(t, engine.KindBiennial, first.Regime.Kind)
	assert.Equal(t, engine.StatusCurrent, first.Status)
	assert.Equal(t, "Current Period: Jun 2023 - Jun 2025 (Biennial)", first.Description)

	second := windows[1]
	assert.Equal(t, d(2025, time.June, 15), second.Start)
	assert.Equal(t, d(2027, time.June, 14), second.End)
	assert.Equal(t, engine.StatusFuture, second.Status)
	assert.Equal(t, "Future Period: Jun 2025 - Jun 2027 (Biennial)", second.Description)
}

func TestModernWalkClampsFinalWindowToExpiration(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN an expiration date that falls short of a full biennial cycle
	license := engine.License{
		Number:         "NH-20002",
		IssueDate:      d(2023, time.June, 15),
		ExpirationDate: d(2026, time.January, 31),
	}

	windows, err := gen.Windows(license, d(2024, time.January, 1))
	require.NoError(t, err)
	require.Len(t, windows, 2)

	// THEN the final window is clamped to the expiration, not extended
	// past it
	last := windows[1]
	assert.Equal(t, d(2025, time.June, 15), last.Start)
	assert.Equal(t, d(2026, time.January, 31), last.End)
}

func TestModernWalkEndsCleanlyOnCycleBoundary(t *testing.T) {
	gen := nhGenerator(t)

	// GIVEN an expiration exactly one cycle after issue
	license := engine.License{
		Number:         "NH-20003",
		IssueDate:      d(2023, time.June, 15),
		ExpirationDate: d(2025, time.June, 14),
	}

	windows, err := gen.Windows(license, d(2024, time.January, 1))
	require.NoError(t, err)

	// THEN there is exactly one window and no degenerate one-day tail
	require.Len(t, windows, 1)
	assert.Equal(t, license.IssueDate, windows[0].Start)
	assert.Equal(t, license.ExpirationDate, windows[0].End)
}

func TestModernWalkNumbersHistoricalPeriods(t *testing.T) {
	gen := nhGenerator(t)

	license := engine.License{
		Number:         "NH-20004",
		IssueDate:      d(2023, time.March, 1),
		ExpirationDate: d(2029, time.February, 28),
	}

	windows, err := gen.Windows(license, d(2026, time.January, 1))
	require.NoError(t, err)
	require.Len(t, windows, 3)

	assert.Equal(t, "Period 1: Mar 2023 - Feb 2025 (Biennial)", windows[0].Description)
	assert.Equal(t, engine.StatusHistorical, windows[0].Status)
	assert.Equal(t, engine.StatusCurrent, windows[1].Status)
	assert.Equal(t, engine.StatusFuture, windows[2].Status)
}

func TestWindowsBeforeIssueDateIsEmpty(t *testing.T) {
	gen := nhGenerator(t)

	license := engine.License{
		Number:         "NH-30001",
		IssueDate:      d(2020, time.January, 1),
		ExpirationDate: d(2025, time.June, 30),
	}

	// An evaluation date before the license existed means no window
	// applies; that is an empty answer, not an error.
	windows, err := gen.Windows(license, d(2019, time.December, 31))
	assert.NoError(t, err)
	assert.Empty(t, windows)
}

func TestWindowsRejectsInvalidLicense(t *testing.T) {
	gen := nhGenerator(t)

	missingDates := engine.License{Number: "NH-40001"}
	_, err := gen.Windows(missingDates, d(2024, time.January, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidLicense)
	assert.True(t, engine.IsClientError(err))

	inverted := engine.License{
		Number:         "NH-40002",
		IssueDate:      d(2025, time.June, 30),
		ExpirationDate: d(2020, time.January, 1),
	}
	_, err = gen.Windows(inverted, d(2024, time.January, 1))
	assert.ErrorIs(t, err, engine.ErrInvalidLicense)
}

func TestCurrentWindowFindsContainingPeriod(t *testing.T) {
	gen := nhGenerator(t)

	license := engine.License{
		Number:         "NH-50001",
		IssueDate:      d(2010, time.July, 1),
		ExpirationDate: d(2025, time.June, 30),
	}

	asOf := d(2024, time.January, 1)
	window, ok, err := gen.CurrentWindow(license, asOf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, window.Contains(asOf))
	assert.Equal(t, engine.StatusCurrent, window.Status)
}

func TestCurrentWindowAbsentAfterExpiration(t *testing.T) {
	gen := nhGenerator(t)

	license := engine.License{
		Number:         "NH-50002",
		IssueDate:      d(2023, time.June, 15),
		ExpirationDate: d(2025, time.June, 14),
	}

	// Evaluated after the license lapsed, every window is historical.
	_, ok, err := gen.CurrentWindow(license, d(2025, time.August, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCustomWindowInfersRegimeFromSpan(t *testing.T) {
	gen := nhGenerator(t)
	asOf := d(2024, time.June, 1)

	// A two-year span reads as the modern biennial period.
	biennial, err := gen.CustomWindow(d(2024, time.January, 1), d(2025, time.December, 31), asOf)
	require.NoError(t, err)
	assert.Equal(t, engine.KindBiennial, biennial.Regime.Kind)
	assert.Equal(t, "Custom Analysis: Jan 2024 - Dec 2025", biennial.Description)
	assert.Equal(t, engine.StatusCurrent, biennial.Status)

	// A three-year span reads as the legacy triennial period.
	triennial, err := gen.CustomWindow(d(2022, time.July, 1), d(2025, time.June, 30), asOf)
	require.NoError(t, err)
	assert.Equal(t, engine.KindTriennial, triennial.Regime.Kind)
	assert.Equal(t, "120", triennial.Regime.HoursRequired.String())
}

func TestCustomWindowRejectsInvertedRange(t *testing.T) {
	gen := nhGenerator(t)

	_, err := gen.CustomWindow(d(2025, time.June, 30), d(2024, time.January, 1), d(2024, time.June, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidWindow)
	assert.True(t, engine.IsClientError(err))
}
