package quattrodue_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvuzs3/qdue-engine/quattrodue"
	"github.com/calvuzs3/qdue-engine/schedule"
	"github.com/calvuzs3/qdue-engine/schedule/store"
)

// =============================================================================
// TEAMS
// =============================================================================

func TestTeams_NineTeamsTwoDaysApart(t *testing.T) {
	teams := quattrodue.Teams()

	require.Len(t, teams, 9)
	assert.Equal(t, "A", teams[0].Name)
	assert.Equal(t, "I", teams[8].Name)
	for i, team := range teams {
		assert.Equal(t, i*2, team.QdueOffset)
	}
}

func TestTeamByName_CaseInsensitive(t *testing.T) {
	require.NotNil(t, quattrodue.TeamByName("a"))
	assert.Equal(t, "A", quattrodue.TeamByName(" a ").Name)
	assert.Nil(t, quattrodue.TeamByName("X"))
}

func TestTeam_DutyOn_FourTwoCadence(t *testing.T) {
	// GIVEN: team A at phase offset 0
	team := *quattrodue.TeamByName("A")

	// THEN: the rotation opens MMAARR and every 4-work block is followed by
	//       exactly 2 rest days
	expect := []string{
		"morning", "morning", "afternoon", "afternoon", "rest", "rest",
		"night", "night", "morning", "morning", "rest", "rest",
		"afternoon", "afternoon", "night", "night", "rest", "rest",
	}
	for day, want := range expect {
		assert.Equal(t, want, team.DutyOn(day).ID, "cycle day %d", day)
	}
}

func TestTeam_DutyOn_PhaseShift(t *testing.T) {
	// Team B lags team A by two days: B's duty on day n equals A's on day n-2.
	a := *quattrodue.TeamByName("A")
	b := *quattrodue.TeamByName("B")

	for day := 0; day < quattrodue.CycleDays; day++ {
		assert.Equal(t, a.DutyOn(day).ID, b.DutyOn(day+2).ID, "cycle day %d", day)
	}
}

func TestTeams_CoverageInvariant(t *testing.T) {
	// GIVEN: all nine teams across one full rotation
	// THEN: every day has exactly 2 teams per work shift and 3 resting

	teams := quattrodue.Teams()
	for day := 0; day < quattrodue.CycleDays; day++ {
		counts := map[string]int{}
		for _, team := range teams {
			counts[team.DutyOn(day).ID]++
		}
		assert.Equal(t, 2, counts["morning"], "day %d", day)
		assert.Equal(t, 2, counts["afternoon"], "day %d", day)
		assert.Equal(t, 2, counts["night"], "day %d", day)
		assert.Equal(t, 3, counts["rest"], "day %d", day)
	}
}

// =============================================================================
// SHIFT TYPES
// =============================================================================

func TestShiftTypes_Windows(t *testing.T) {
	assert.Equal(t, "05:00", quattrodue.Morning.Start.String())
	assert.Equal(t, "13:00", quattrodue.Morning.End.String())
	assert.False(t, quattrodue.Morning.CrossesMidnight())

	assert.True(t, quattrodue.Night.CrossesMidnight())
	assert.Equal(t, 480, quattrodue.Night.DurationMinutes())

	assert.True(t, quattrodue.Rest.IsRestPeriod)
	assert.Equal(t, 0, quattrodue.Rest.DurationMinutes())
}

// =============================================================================
// TEMPLATE
// =============================================================================

func TestStandardTemplate_Validates(t *testing.T) {
	tmpl := quattrodue.StandardTemplate()

	result := tmpl.Validate()

	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, quattrodue.CycleDays, tmpl.CycleDays)
	assert.Len(t, tmpl.Patterns, quattrodue.CycleDays)
}

func TestStandardTemplate_PatternsMatchDuties(t *testing.T) {
	// The template's patterns are the duty table pivoted by shift.
	tmpl := quattrodue.StandardTemplate()

	for day := 0; day < quattrodue.CycleDays; day++ {
		pattern := tmpl.PatternForDay(day)
		require.NotNil(t, pattern)

		for _, team := range quattrodue.Teams() {
			duty := team.DutyOn(day)
			teams := pattern.TeamsOnShift(duty.ID)
			assert.Contains(t, teams, team.Name, "day %d shift %s", day, duty.ID)
		}
	}
}

func TestStandardTemplate_GeneratedByFixedProvider(t *testing.T) {
	// GIVEN: the fixed provider anchored at the system reference date
	p := schedule.NewFixedScheduleProvider(quattrodue.ReferenceDate, zerolog.Nop())
	tmpl := quattrodue.StandardTemplate()

	require.True(t, p.SupportsTemplate(tmpl))

	// WHEN: generating the reference day
	events := p.GenerateForDate(quattrodue.ReferenceDate, tmpl, "")

	// THEN: four entries, one per shift type incl. rest
	require.Len(t, events, 4)

	// And the day before the reference resolves to cycle day 17.
	events = p.GenerateForDate(quattrodue.ReferenceDate.AddDays(-1), tmpl, "")
	require.NotEmpty(t, events)
	assert.Equal(t, 17, events[0].CycleDay)
}

// =============================================================================
// RULES
// =============================================================================

func TestTeamRule_PairsWithTemplateCadence(t *testing.T) {
	// GIVEN: each team's personal 6-day rule
	// THEN: the rule matches exactly the days the duty table calls work

	for _, team := range quattrodue.Teams() {
		rule := quattrodue.TeamRule(team)
		require.True(t, rule.Active)

		// Walk one rotation starting at the rule's own start.
		for offset := 0; offset < quattrodue.CycleDays; offset++ {
			d := rule.Start.AddDays(offset)
			cycleDay := schedule.FlooredMod(
				schedule.DaysBetween(quattrodue.ReferenceDate, d), quattrodue.CycleDays)
			isWork := !team.DutyOn(cycleDay).IsRestPeriod

			assert.Equal(t, isWork, rule.Matches(d),
				"team %s offset %d", team.Name, offset)
		}
	}
}

func TestTeamRule_IDFollowsStandardConvention(t *testing.T) {
	rule := quattrodue.TeamRule(*quattrodue.TeamByName("A"))
	assert.Equal(t, "quattrodue_standard_team_a", rule.ID)
}

// =============================================================================
// SEEDING
// =============================================================================

func TestSeed_StoresTemplateAndRules(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, quattrodue.Seed(ctx, mem, mem))

	tmpl, err := mem.GetTemplate(ctx, quattrodue.TemplateID)
	require.NoError(t, err)
	assert.True(t, tmpl.Active)

	for _, team := range quattrodue.Teams() {
		rule, err := mem.GetRule(ctx, quattrodue.TeamRule(team).ID)
		require.NoError(t, err)
		assert.Equal(t, schedule.FreqQuattroDueCycle, rule.Frequency)
		assert.Equal(t, quattrodue.PersonalCycleDays, rule.CycleLength)
	}

	// Seeding twice is idempotent.
	require.NoError(t, quattrodue.Seed(ctx, mem, mem))
}
