package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/engine"
)

func TestDateComparisons(t *testing.T) {
	earlier := engine.NewDate(2025, time.June, 30)
	later := engine.NewDate(2025, time.July, 1)

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Equal(later))
	assert.True(t, earlier.BeforeOrEqual(later))
	assert.True(t, earlier.BeforeOrEqual(engine.NewDate(2025, time.June, 30)))
	assert.True(t, later.AfterOrEqual(earlier))
	assert.True(t, later.AfterOrEqual(engine.NewDate(2025, time.July, 1)))
}

func TestDateComparisonIgnoresClockTime(t *testing.T) {
	// Dates built from timestamps with different clock times are equal
	// if they fall on the same day.
	morning := engine.DateOf(time.Date(2025, time.July, 1, 8, 30, 0, 0, time.UTC))
	evening := engine.DateOf(time.Date(2025, time.July, 1, 23, 59, 59, 0, time.UTC))

	assert.True(t, morning.Equal(evening))
}

func TestDateArithmetic(t *testing.T) {
	d := engine.NewDate(2025, time.July, 1)

	assert.Equal(t, "2025-07-02", d.AddDays(1).String())
	assert.Equal(t, "2025-06-30", d.AddDays(-1).String())
	assert.Equal(t, "2025-10-01", d.AddMonths(3).String())
	assert.Equal(t, "2027-07-01", d.AddYears(2).String())

	// Stepping a period back: end - 3 years + 1 day gives the start of a
	// triennial window.
	end := engine.NewDate(2025, time.June, 30)
	start := end.AddYears(-3).AddDays(1)
	assert.Equal(t, "2022-07-01", start.String())
}

func TestDaysBetween(t *testing.T) {
	from := engine.NewDate(2025, time.January, 1)

	assert.Equal(t, 0, engine.DaysBetween(from, from))
	assert.Equal(t, 30, engine.DaysBetween(from, engine.NewDate(2025, time.January, 31)))
	assert.Equal(t, -1, engine.DaysBetween(from, engine.NewDate(2024, time.December, 31)))
	assert.Equal(t, 365, engine.DaysBetween(from, engine.NewDate(2026, time.January, 1)))
}

func TestParseDate(t *testing.T) {
	d, err := engine.ParseDate("2023-02-22")
	require.NoError(t, err)
	assert.Equal(t, engine.NewDate(2023, time.February, 22), d)

	_, err = engine.ParseDate("02/22/2023")
	assert.Error(t, err)

	_, err = engine.ParseDate("")
	assert.Error(t, err)
}

func TestDateFormatting(t *testing.T) {
	d := engine.NewDate(2025, time.July, 1)

	assert.Equal(t, "2025-07-01", d.String())
	assert.Equal(t, "Jul 2025", d.Format("Jan 2006"))
}

func TestMinMaxDate(t *testing.T) {
	a := engine.NewDate(2025, time.June, 30)
	b := engine.NewDate(2025, time.July, 1)

	assert.Equal(t, a, engine.MinDate(a, b))
	assert.Equal(t, a, engine.MinDate(b, a))
	assert.Equal(t, b, engine.MaxDate(a, b))
	assert.Equal(t, b, engine.MaxDate(b, a))
}
