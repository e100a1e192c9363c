package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/calvuzs3/qdue-engine/schedule"
)

// =============================================================================
// RULE FIXTURES
// =============================================================================

func dailyRule(start schedule.Date) *schedule.RecurrenceRule {
	return &schedule.RecurrenceRule{
		ID:        "daily",
		Frequency: schedule.FreqDaily,
		Start:     start,
		EndType:   schedule.EndNever,
		Active:    true,
	}
}

func quattroDueRule(start schedule.Date) *schedule.RecurrenceRule {
	return &schedule.RecurrenceRule{
		ID:          "cycle",
		Frequency:   schedule.FreqQuattroDueCycle,
		Start:       start,
		EndType:     schedule.EndNever,
		CycleLength: 6,
		WorkDays:    4,
		RestDays:    2,
		Active:      true,
	}
}

// =============================================================================
// LOWER BOUND AND END CONDITIONS
// =============================================================================

func TestRecurrenceRule_StartIsLowerBound(t *testing.T) {
	// GIVEN: a daily rule starting March 10
	start := schedule.NewDate(2024, time.March, 10)
	rule := dailyRule(start)

	// THEN: dates before the start never match, the start itself does
	assert.False(t, rule.Matches(start.AddDays(-1)))
	assert.True(t, rule.Matches(start))
	assert.True(t, rule.Matches(start.AddDays(100)))
}

func TestRecurrenceRule_UntilIsInclusive(t *testing.T) {
	// GIVEN: a daily rule ending on an explicit date
	start := schedule.NewDate(2024, time.March, 10)
	rule := dailyRule(start)
	rule.EndType = schedule.EndUntil
	rule.Until = start.AddDays(5)

	// THEN: the end date itself still matches, the day after does not
	assert.True(t, rule.Matches(start.AddDays(5)))
	assert.False(t, rule.Matches(start.AddDays(6)))
}

func TestRecurrenceRule_CountLimitsOccurrences(t *testing.T) {
	// GIVEN: every 2nd day, 3 occurrences total
	start := schedule.NewDate(2024, time.March, 10)
	rule := dailyRule(start)
	rule.Interval = 2
	rule.EndType = schedule.EndCount
	rule.Count = 3

	// THEN: occurrences land on days 0, 2, 4 and stop there
	assert.True(t, rule.Matches(start))
	assert.False(t, rule.Matches(start.AddDays(1)))
	assert.True(t, rule.Matches(start.AddDays(2)))
	assert.True(t, rule.Matches(start.AddDays(4)))
	assert.False(t, rule.Matches(start.AddDays(6)))
	assert.False(t, rule.Matches(start.AddDays(8)))
}

func TestRecurrenceRule_ZeroStartNeverMatches(t *testing.T) {
	rule := &schedule.RecurrenceRule{Frequency: schedule.FreqDaily, Active: true}
	assert.False(t, rule.Matches(schedule.Today()))
}

// =============================================================================
// CALENDAR FREQUENCIES
// =============================================================================

func TestRecurrenceRule_WeeklyByWeekdays(t *testing.T) {
	// GIVEN: weekly on Mon/Wed starting Monday 2024-03-11
	start := schedule.NewDate(2024, time.March, 11)
	rule := &schedule.RecurrenceRule{
		ID:         "weekly",
		Frequency:  schedule.FreqWeekly,
		Start:      start,
		EndType:    schedule.EndNever,
		ByWeekdays: []time.Weekday{time.Monday, time.Wednesday},
		Active:     true,
	}

	assert.True(t, rule.Matches(start))             // Mon
	assert.False(t, rule.Matches(start.AddDays(1))) // Tue
	assert.True(t, rule.Matches(start.AddDays(2)))  // Wed
	assert.True(t, rule.Matches(start.AddDays(7)))  // next Mon
}

func TestRecurrenceRule_BiweeklySkipsOddWeeks(t *testing.T) {
	// GIVEN: every 2nd week, same weekday as the start
	start := schedule.NewDate(2024, time.March, 11) // Monday
	rule := &schedule.RecurrenceRule{
		ID:        "biweekly",
		Frequency: schedule.FreqWeekly,
		Start:     start,
		Interval:  2,
		EndType:   schedule.EndNever,
		Active:    true,
	}

	assert.True(t, rule.Matches(start))
	assert.False(t, rule.Matches(start.AddDays(7)))
	assert.True(t, rule.Matches(start.AddDays(14)))
}

func TestRecurrenceRule_MonthlyByMonthDays(t *testing.T) {
	start := schedule.NewDate(2024, time.January, 1)
	rule := &schedule.RecurrenceRule{
		ID:          "monthly",
		Frequency:   schedule.FreqMonthly,
		Start:       start,
		EndType:     schedule.EndNever,
		ByMonthDays: []int{1, 15},
		Active:      true,
	}

	assert.True(t, rule.Matches(schedule.NewDate(2024, time.February, 1)))
	assert.True(t, rule.Matches(schedule.NewDate(2024, time.February, 15)))
	assert.False(t, rule.Matches(schedule.NewDate(2024, time.February, 14)))
}

func TestRecurrenceRule_YearlySameMonthAndDay(t *testing.T) {
	start := schedule.NewDate(2024, time.June, 15)
	rule := &schedule.RecurrenceRule{
		ID:        "yearly",
		Frequency: schedule.FreqYearly,
		Start:     start,
		EndType:   schedule.EndNever,
		Active:    true,
	}

	assert.True(t, rule.Matches(schedule.NewDate(2025, time.June, 15)))
	assert.False(t, rule.Matches(schedule.NewDate(2025, time.June, 16)))
}

// =============================================================================
// QUATTRODUE CYCLE
// =============================================================================

func TestRecurrenceRule_QuattroDue_WorkRestCadence(t *testing.T) {
	// GIVEN: a 6-day cycle, 4 work then 2 rest, starting March 1
	start := schedule.NewDate(2024, time.March, 1)
	rule := quattroDueRule(start)

	// THEN: the first 4 positions match, the last 2 do not
	for offset := 0; offset < 4; offset++ {
		assert.True(t, rule.Matches(start.AddDays(offset)), "offset %d should be work", offset)
	}
	assert.False(t, rule.Matches(start.AddDays(4)))
	assert.False(t, rule.Matches(start.AddDays(5)))

	// And the cadence repeats.
	assert.True(t, rule.Matches(start.AddDays(6)))
	assert.False(t, rule.Matches(start.AddDays(10)))
}

func TestRecurrenceRule_QuattroDue_IgnoresCalendar(t *testing.T) {
	// The cycle walks straight through weekends and month boundaries.
	start := schedule.NewDate(2024, time.January, 29)
	rule := quattroDueRule(start)

	// Feb 1 is offset 3 (work), Feb 2 is offset 4 (rest).
	assert.True(t, rule.Matches(schedule.NewDate(2024, time.February, 1)))
	assert.False(t, rule.Matches(schedule.NewDate(2024, time.February, 2)))
}

func TestRecurrenceRule_CycleOffset(t *testing.T) {
	start := schedule.NewDate(2024, time.March, 1)
	rule := quattroDueRule(start)

	assert.Equal(t, 0, rule.CycleOffset(start))
	assert.Equal(t, 5, rule.CycleOffset(start.AddDays(5)))
	assert.Equal(t, 0, rule.CycleOffset(start.AddDays(6)))

	// Dates before the start normalize via floored modulo.
	assert.Equal(t, 5, rule.CycleOffset(start.AddDays(-1)))

	// Non-cyclic rules have no cycle position.
	assert.Equal(t, -1, dailyRule(start).CycleOffset(start))
}
