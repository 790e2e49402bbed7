package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/engine"
)

func TestNewWindowRejectsBadBoundaries(t *testing.T) {
	regime := nhRules().Modern
	asOf := d(2024, time.June, 1)

	_, err := engine.NewWindow(engine.Date{}, d(2025, time.June, 30), regime, asOf)
	assert.ErrorIs(t, err, engine.ErrInvalidWindow)

	_, err = engine.NewWindow(d(2025, time.June, 30), d(2023, time.July, 1), regime, asOf)
	assert.ErrorIs(t, err, engine.ErrInvalidWindow)

	// Zero-length windows are a caller defect, not a valid period.
	_, err = engine.NewWindow(d(2025, time.June, 30), d(2025, time.June, 30), regime, asOf)
	assert.ErrorIs(t, err, engine.ErrInvalidWindow)
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w, err := engine.NewWindow(d(2023, time.July, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	require.NoError(t, err)

	assert.True(t, w.Contains(d(2023, time.July, 1)))
	assert.True(t, w.Contains(d(2025, time.June, 30)))
	assert.True(t, w.Contains(d(2024, time.January, 15)))
	assert.False(t, w.Contains(d(2023, time.June, 30)))
	assert.False(t, w.Contains(d(2025, time.July, 1)))
}

func TestWindowDescriptionsByStatus(t *testing.T) {
	legacy := nhRules().Legacy
	start, end := d(2022, time.July, 1), d(2025, time.June, 30)

	current, err := engine.NewWindow(start, end, legacy, d(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, "Current Period: Jul 2022 - Jun 2025 (Triennial - Old System)", current.Description)

	historical, err := engine.NewWindow(start, end, legacy, d(2025, time.July, 15))
	require.NoError(t, err)
	assert.Equal(t, "Historical Period: Jul 2022 - Jun 2025 (Triennial - Old System)", historical.Description)

	future, err := engine.NewWindow(start, end, legacy, d(2022, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "Next Period: Jul 2022 - Jun 2025 (Triennial - Old System)", future.Description)
}

func TestAnnualSlicesPartitionTheWindow(t *testing.T) {
	w, err := engine.NewWindow(d(2022, time.July, 1), d(2025, time.June, 30), nhRules().Legacy, d(2024, time.June, 1))
	require.NoError(t, err)

	slices := w.AnnualSlices()
	require.Len(t, slices, 3)

	assert.Equal(t, d(2022, time.July, 1), slices[0].Start)
	assert.Equal(t, d(2023, time.June, 30), slices[0].End)
	assert.Equal(t, d(2023, time.July, 1), slices[1].Start)
	assert.Equal(t, d(2024, time.June, 30), slices[1].End)
	assert.Equal(t, d(2024, time.July, 1), slices[2].Start)
	assert.Equal(t, d(2025, time.June, 30), slices[2].End)

	for i, s := range slices {
		assert.Equal(t, i+1, s.Year)
	}
}

func TestAnnualSlicesTruncateAtWindowEnd(t *testing.T) {
	// An 18-month custom window under biennial rules: the second year
	// slice is cut short at the window end.
	w, err := engine.NewCustomWindow(d(2024, time.January, 1), d(2025, time.June, 30), nhRules().Modern, d(2024, time.June, 1))
	require.NoError(t, err)

	slices := w.AnnualSlices()
	require.Len(t, slices, 2)
	assert.Equal(t, d(2024, time.December, 31), slices[0].End)
	assert.Equal(t, d(2025, time.January, 1), slices[1].Start)
	assert.Equal(t, d(2025, time.June, 30), slices[1].End)
}

func TestAnnualSlicesStopEarlyForShortWindows(t *testing.T) {
	// A window shorter than one year yields a single slice, even though
	// the regime nominally spans two years.
	w, err := engine.NewCustomWindow(d(2024, time.January, 1), d(2024, time.June, 30), nhRules().Modern, d(2024, time.March, 1))
	require.NoError(t, err)

	slices := w.AnnualSlices()
	require.Len(t, slices, 1)
	assert.Equal(t, d(2024, time.January, 1), slices[0].Start)
	assert.Equal(t, d(2024, time.June, 30), slices[0].End)
}

func TestCustomWindowDescription(t *testing.T) {
	w, err := engine.NewCustomWindow(d(2024, time.January, 1), d(2025, time.December, 31), nhRules().Modern, d(2024, time.June, 1))
	require.NoError(t, err)

	assert.Equal(t, "Custom Analysis: Jan 2024 - Dec 2025", w.Description)
}
