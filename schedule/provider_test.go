package schedule_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvuzs3/qdue-engine/schedule"
)

// =============================================================================
// FIXED PROVIDER
// =============================================================================

func fixedProvider(reference schedule.Date) *schedule.FixedScheduleProvider {
	return schedule.NewFixedScheduleProvider(reference, zerolog.Nop())
}

func TestFixedProvider_CycleWalk(t *testing.T) {
	// GIVEN: a 3-day template anchored to March 1
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)
	tmpl := simpleTemplate()

	// WHEN: generating each day of one full cycle
	// THEN: days walk morning, night, rest in order
	day0 := p.GenerateForDate(reference, tmpl, "")
	require.Len(t, day0, 1)
	assert.Equal(t, "morning", day0[0].Shift.ID)
	assert.Equal(t, 0, day0[0].CycleDay)

	day1 := p.GenerateForDate(reference.AddDays(1), tmpl, "")
	require.Len(t, day1, 1)
	assert.Equal(t, "night", day1[0].Shift.ID)

	day2 := p.GenerateForDate(reference.AddDays(2), tmpl, "")
	require.Len(t, day2, 1)
	assert.Equal(t, "rest", day2[0].Shift.ID)
	assert.False(t, day2[0].IsWork())

	// The cycle wraps.
	day3 := p.GenerateForDate(reference.AddDays(3), tmpl, "")
	require.Len(t, day3, 1)
	assert.Equal(t, "morning", day3[0].Shift.ID)
}

func TestFixedProvider_DatesBeforeReference(t *testing.T) {
	// GIVEN: an 18-day cycle template
	reference := schedule.NewDate(2024, time.January, 1)
	p := fixedProvider(reference)

	tmpl := simpleTemplate()
	tmpl.CycleDays = 18
	patterns := make([]schedule.WorkSchedulePattern, 18)
	for i := range patterns {
		patterns[i] = schedule.WorkSchedulePattern{Assignments: []schedule.WorkShiftAssignment{
			schedule.NewWorkShiftAssignment(morningShift(), "A"),
		}}
	}
	tmpl.Patterns = patterns

	// WHEN: generating one day before the reference date
	events := p.GenerateForDate(reference.AddDays(-1), tmpl, "")

	// THEN: the offset normalizes to 17, not a negative index
	require.Len(t, events, 1)
	assert.Equal(t, 17, events[0].CycleDay)

	// A full cycle earlier lands on offset 0 again.
	events = p.GenerateForDate(reference.AddDays(-18), tmpl, "")
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].CycleDay)
}

func TestFixedProvider_Deterministic(t *testing.T) {
	// Two generations of the same inputs are identical.
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)
	tmpl := simpleTemplate()

	first := p.GenerateSchedule(reference, reference.AddDays(8), tmpl, "")
	second := p.GenerateSchedule(reference, reference.AddDays(8), tmpl, "")

	assert.Equal(t, first, second)
}

func TestFixedProvider_RangeCompleteness(t *testing.T) {
	// GIVEN: a 9-day inclusive range over a one-assignment-per-day template
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)
	tmpl := simpleTemplate()

	start := reference.AddDays(2)
	end := reference.AddDays(10)
	events := p.GenerateSchedule(start, end, tmpl, "")

	// THEN: one event per date, all inside [start, end]
	assert.Len(t, events, 9)
	r := schedule.DateRange{Start: start, End: end}
	for _, ev := range events {
		assert.True(t, r.Contains(ev.Date))
	}

	// A single-day range equals the per-date call.
	assert.Equal(t,
		p.GenerateForDate(start, tmpl, ""),
		p.GenerateSchedule(start, start, tmpl, ""))
}

func TestFixedProvider_InvalidRangeYieldsEmpty(t *testing.T) {
	// GIVEN: start after end
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)

	events := p.GenerateSchedule(reference.AddDays(5), reference, simpleTemplate(), "")

	// THEN: empty, not nil, and no panic
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestFixedProvider_UnsupportedTemplateYieldsEmpty(t *testing.T) {
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)

	// Custom templates belong to the custom provider.
	tmpl := simpleTemplate()
	tmpl.Type = schedule.TemplateCustom
	tmpl.UserDefined = true

	assert.False(t, p.SupportsTemplate(tmpl))
	assert.Empty(t, p.GenerateSchedule(reference, reference.AddDays(2), tmpl, ""))
	assert.Empty(t, p.GenerateForDate(reference, tmpl, ""))

	// Nil templates are handled the same way.
	assert.Empty(t, p.GenerateSchedule(reference, reference, nil, ""))
}

func TestFixedProvider_TeamFilter(t *testing.T) {
	// GIVEN: day 0 has teams A and B on the morning, C resting
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)

	tmpl := simpleTemplate()
	tmpl.Patterns[0] = schedule.WorkSchedulePattern{Assignments: []schedule.WorkShiftAssignment{
		schedule.NewWorkShiftAssignment(morningShift(), "A", "B"),
		schedule.NewWorkShiftAssignment(restPeriod(), "C"),
	}}

	// WHEN: filtering by lowercase "a"
	events := p.GenerateForDate(reference, tmpl, "a")

	// THEN: the morning event matches case-insensitively, the rest entry
	//       for team C is filtered out
	require.Len(t, events, 1)
	assert.Equal(t, "morning", events[0].Shift.ID)

	// An unknown team yields nothing.
	assert.Empty(t, p.GenerateForDate(reference, tmpl, "Z"))
}

func TestFixedProvider_EventText(t *testing.T) {
	reference := schedule.NewDate(2024, time.March, 1)
	p := fixedProvider(reference)

	events := p.GenerateForDate(reference, simpleTemplate(), "")
	require.Len(t, events, 1)

	assert.Equal(t, "Morning 05:00-13:00", events[0].Title)
	assert.Contains(t, events[0].Description, "Teams: A")
	assert.Contains(t, events[0].Description, "Cycle day 1/3")
	assert.Equal(t, "simple", events[0].SourceTemplateID)
}

// =============================================================================
// CUSTOM PROVIDER
// =============================================================================

func customTemplate(createdAt time.Time) *schedule.WorkScheduleTemplate {
	tmpl := simpleTemplate()
	tmpl.ID = "my-rotation"
	tmpl.Type = schedule.TemplateCustom
	tmpl.UserDefined = true
	tmpl.CreatedAt = createdAt
	return tmpl
}

func TestCustomProvider_AnchorsToCreationDate(t *testing.T) {
	// GIVEN: a custom template created on March 5
	created := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	tmpl := customTemplate(created)
	p := schedule.NewCustomScheduleProvider(zerolog.Nop())

	require.True(t, p.SupportsTemplate(tmpl))

	// THEN: the creation date is cycle offset 0 regardless of its clock time
	events := p.GenerateForDate(schedule.NewDate(2024, time.March, 5), tmpl, "")
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].CycleDay)

	// And days before creation normalize backwards.
	events = p.GenerateForDate(schedule.NewDate(2024, time.March, 4), tmpl, "")
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].CycleDay)
}

func TestCustomProvider_EpochFallback(t *testing.T) {
	// GIVEN: a custom template with no creation timestamp
	tmpl := customTemplate(time.Time{})
	p := schedule.NewCustomScheduleProvider(zerolog.Nop())

	// THEN: generation still works, anchored to the fixed epoch
	events := p.GenerateForDate(schedule.NewDate(2020, time.January, 1), tmpl, "")
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].CycleDay)
}

func TestCustomProvider_RejectsFixedTemplates(t *testing.T) {
	p := schedule.NewCustomScheduleProvider(zerolog.Nop())

	assert.False(t, p.SupportsTemplate(simpleTemplate()))
	assert.Empty(t, p.GenerateForDate(schedule.Today(), simpleTemplate(), ""))
}
