package schedule_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvuzs3/qdue-engine/schedule"
)

// =============================================================================
// FLOORED MODULO
// =============================================================================

func TestFlooredMod_NegativeOperand(t *testing.T) {
	// GIVEN: an 18-day cycle
	// WHEN: computing the offset of a negative day difference
	// THEN: the result is normalized into [0, 18), never negative

	assert.Equal(t, 17, schedule.FlooredMod(-1, 18))
	assert.Equal(t, 0, schedule.FlooredMod(-18, 18))
	assert.Equal(t, 17, schedule.FlooredMod(-19, 18))
	assert.Equal(t, 1, schedule.FlooredMod(-35, 18))
}

func TestFlooredMod_PositiveOperand(t *testing.T) {
	assert.Equal(t, 0, schedule.FlooredMod(0, 18))
	assert.Equal(t, 5, schedule.FlooredMod(5, 18))
	assert.Equal(t, 0, schedule.FlooredMod(18, 18))
	assert.Equal(t, 1, schedule.FlooredMod(19, 18))
}

// =============================================================================
// DATE
// =============================================================================

func TestDate_Arithmetic(t *testing.T) {
	d := schedule.NewDate(2024, time.January, 1)

	assert.Equal(t, schedule.NewDate(2024, time.January, 19), d.AddDays(18))
	assert.Equal(t, schedule.NewDate(2023, time.December, 31), d.AddDays(-1))
	assert.Equal(t, 18, schedule.DaysBetween(d, d.AddDays(18)))
	assert.Equal(t, -1, schedule.DaysBetween(d, d.AddDays(-1)))
}

func TestDate_LeapYearBoundary(t *testing.T) {
	// GIVEN: 2024 is a leap year
	d := schedule.NewDate(2024, time.February, 28)
	assert.Equal(t, schedule.NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, schedule.NewDate(2024, time.March, 1), d.AddDays(2))
}

func TestDate_Comparisons(t *testing.T) {
	a := schedule.NewDate(2024, time.March, 10)
	b := schedule.NewDate(2024, time.March, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

func TestDate_ParseAndString(t *testing.T) {
	d, err := schedule.ParseDate("2024-07-15")
	require.NoError(t, err)
	assert.Equal(t, schedule.NewDate(2024, time.July, 15), d)
	assert.Equal(t, "2024-07-15", d.String())

	_, err = schedule.ParseDate("15/07/2024")
	assert.Error(t, err)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := schedule.NewDate(2024, time.July, 15)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-15"`, string(raw))

	var back schedule.Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, d.Equal(back))
}

func TestDate_TruncatesToMidnightUTC(t *testing.T) {
	// GIVEN: a timestamp late in the day in a non-UTC zone
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, time.March, 10, 23, 45, 0, 0, loc)

	// WHEN: converting to a calendar date
	d := schedule.DateOf(ts)

	// THEN: the wall-clock calendar day is kept, at UTC midnight
	assert.Equal(t, schedule.NewDate(2024, time.March, 10), d)
	assert.Equal(t, time.UTC, d.Time().Location())
	assert.Equal(t, 0, d.Time().Hour())
}

// =============================================================================
// DATE RANGE
// =============================================================================

func TestDateRange_Validity(t *testing.T) {
	start := schedule.NewDate(2024, time.January, 1)

	valid := schedule.DateRange{Start: start, End: start.AddDays(5)}
	assert.True(t, valid.Valid())
	assert.Equal(t, 6, valid.Days())

	single := schedule.DateRange{Start: start, End: start}
	assert.True(t, single.Valid())
	assert.Equal(t, 1, single.Days())

	inverted := schedule.DateRange{Start: start.AddDays(1), End: start}
	assert.False(t, inverted.Valid())
}

func TestDateRange_Contains(t *testing.T) {
	start := schedule.NewDate(2024, time.January, 10)
	r := schedule.DateRange{Start: start, End: start.AddDays(2)}

	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(start.AddDays(2)))
	assert.False(t, r.Contains(start.AddDays(3)))
	assert.False(t, r.Contains(start.AddDays(-1)))
}

// =============================================================================
// TIME OF DAY
// =============================================================================

func TestTimeOfDay_ParseAndString(t *testing.T) {
	tod, err := schedule.ParseTimeOfDay("05:30")
	require.NoError(t, err)
	assert.Equal(t, 5, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "05:30", tod.String())

	_, err = schedule.ParseTimeOfDay("5.30")
	assert.Error(t, err)
}

func TestTimeOfDay_JSONRoundTrip(t *testing.T) {
	tod := schedule.NewTimeOfDay(21, 0)

	raw, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.Equal(t, `"21:00"`, string(raw))

	var back schedule.TimeOfDay
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, tod, back)
}
