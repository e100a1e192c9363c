/*
Package quattrodue defines the standard "4 work days / 2 rest days" continuous
shift scheme the engine is named after.

THE SCHEME:
  Nine teams (A..I) rotate through three daily shifts - morning, afternoon and
  night - on an 18-day cycle. Each team's personal cadence is 4 consecutive
  work days followed by 2 rest days, repeating without any calendar
  alignment; over 18 days a team works each shift type once per 6-day block:

    personal day:  0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15 16 17
    duty:          M  M  A  A  R  R  N  N  M  M  R  R  A  A  N  N  R  R

  Teams are phase-shifted copies of that sequence, two days apart, so every
  calendar day has exactly two teams on each shift and three teams resting.

WHAT THIS PACKAGE PROVIDES:
  - the canonical shift types (including the midnight-crossing night shift)
  - the nine teams with their phase offsets
  - StandardTemplate: the FIXED_4_2 WorkScheduleTemplate, patterns generated
    from the duty sequence
  - TeamRule: the per-team QUATTRODUE_CYCLE recurrence rule, phase-shifted by
    the team's offset and paired with the template by the *_standard id
    convention
  - Seed: loads all of the above into repositories

SEE ALSO:
  - schedule/provider.go: consumes the template via FixedScheduleProvider
*/
package quattrodue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calvuzs3/qdue-engine/schedule"
)

// TemplateID is the ID of the standard template; rules pair with it through
// the "<TemplateID>_standard*" naming convention.
const TemplateID = "quattrodue"

// CycleDays is the full rotation length; PersonalCycleDays is one team's
// work/rest cadence within it.
const (
	CycleDays         = 18
	PersonalCycleDays = 6
	WorkDays          = 4
	RestDays          = 2
)

// ReferenceDate anchors cycle offset 0 of the standard scheme. Every
// generated schedule, past or future, is phased against this date.
var ReferenceDate = schedule.NewDate(2024, time.January, 1)

// =============================================================================
// SHIFT TYPES
// =============================================================================

var (
	Morning = &schedule.ShiftType{
		ID:           "morning",
		Name:         "Morning",
		Start:        schedule.NewTimeOfDay(5, 0),
		End:          schedule.NewTimeOfDay(13, 0),
		Color:        "#4FC3F7",
		BreakMinutes: 30,
	}
	Afternoon = &schedule.ShiftType{
		ID:           "afternoon",
		Name:         "Afternoon",
		Start:        schedule.NewTimeOfDay(13, 0),
		End:          schedule.NewTimeOfDay(21, 0),
		Color:        "#FFB74D",
		BreakMinutes: 30,
	}
	// Night runs 21:00-05:00 and crosses midnight into the next calendar day.
	Night = &schedule.ShiftType{
		ID:           "night",
		Name:         "Night",
		Start:        schedule.NewTimeOfDay(21, 0),
		End:          schedule.NewTimeOfDay(5, 0),
		Color:        "#7986CB",
		BreakMinutes: 30,
	}
	Rest = &schedule.ShiftType{
		ID:           "rest",
		Name:         "Rest",
		IsRestPeriod: true,
		Color:        "#A5D6A7",
	}
)

// dutySequence is one team's 18-day duty string; see the package comment.
const dutySequence = "MMAARRNNMMRRAANNRR"

func shiftForDuty(duty byte) *schedule.ShiftType {
	switch duty {
	case 'M':
		return Morning
	case 'A':
		return Afternoon
	case 'N':
		return Night
	default:
		return Rest
	}
}

// =============================================================================
// TEAMS
// =============================================================================

// Team is one of the nine rotating teams. QdueOffset is the phase shift, in
// days, of the team's duty sequence against the reference date.
type Team struct {
	Name       string
	QdueOffset int
}

// Teams returns the nine standard teams, A through I, two days apart.
func Teams() []Team {
	teams := make([]Team, 9)
	for i := 0; i < 9; i++ {
		teams[i] = Team{
			Name:       string(rune('A' + i)),
			QdueOffset: i * 2,
		}
	}
	return teams
}

// TeamByName finds a standard team case-insensitively, or nil.
func TeamByName(name string) *Team {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, t := range Teams() {
		if t.Name == name {
			team := t
			return &team
		}
	}
	return nil
}

// DutyOn returns the shift a team performs on the given cycle day.
func (t Team) DutyOn(cycleDay int) *schedule.ShiftType {
	personal := schedule.FlooredMod(cycleDay-t.QdueOffset, CycleDays)
	return shiftForDuty(dutySequence[personal])
}

// =============================================================================
// TEMPLATE AND RULES
// =============================================================================

// StandardTemplate builds the FIXED_4_2 template: 18 patterns, each with one
// assignment per shift type carrying the two teams on duty, plus a rest
// assignment for the three resting teams.
func StandardTemplate() *schedule.WorkScheduleTemplate {
	teams := Teams()
	supported := make([]string, len(teams))
	for i, t := range teams {
		supported[i] = t.Name
	}

	patterns := make([]schedule.WorkSchedulePattern, CycleDays)
	for day := 0; day < CycleDays; day++ {
		byShift := map[*schedule.ShiftType][]string{}
		for _, team := range teams {
			shift := team.DutyOn(day)
			byShift[shift] = append(byShift[shift], team.Name)
		}
		var assignments []schedule.WorkShiftAssignment
		for _, shift := range []*schedule.ShiftType{Morning, Afternoon, Night, Rest} {
			if names := byShift[shift]; len(names) > 0 {
				assignments = append(assignments, schedule.NewWorkShiftAssignment(shift, names...))
			}
		}
		patterns[day] = schedule.WorkSchedulePattern{Assignments: assignments}
	}

	return &schedule.WorkScheduleTemplate{
		ID:               TemplateID,
		Name:             "QuattroDue 4-2",
		Type:             schedule.TemplateFixed42,
		CycleDays:        CycleDays,
		Patterns:         patterns,
		MinTeamsPerShift: 2,
		MaxTeamsPerShift: 2,
		SupportedTeams:   supported,
		Active:           true,
		CreatedAt:        ReferenceDate.Time(),
	}
}

// TeamRule builds the per-team recurrence rule: a 6-day 4-work/2-rest cycle
// phase-shifted by the team's offset. The rule only decides cadence; the
// template decides which shift each work day carries.
func TeamRule(team Team) *schedule.RecurrenceRule {
	return &schedule.RecurrenceRule{
		ID:          fmt.Sprintf("%s_standard_team_%s", TemplateID, strings.ToLower(team.Name)),
		Frequency:   schedule.FreqQuattroDueCycle,
		Start:       ReferenceDate.AddDays(team.QdueOffset),
		EndType:     schedule.EndNever,
		CycleLength: PersonalCycleDays,
		WorkDays:    WorkDays,
		RestDays:    RestDays,
		Active:      true,
	}
}

// Assign builds an active, permanent assignment of a user onto a standard
// team with normal priority.
func Assign(id, userID string, team Team, start schedule.Date) *schedule.UserScheduleAssignment {
	return &schedule.UserScheduleAssignment{
		ID:               id,
		UserID:           userID,
		TeamID:           team.Name,
		RecurrenceRuleID: TeamRule(team).ID,
		StartDate:        start,
		Permanent:        true,
		Priority:         schedule.AssignmentPriorityNormal,
		Status:           schedule.AssignmentActive,
		CreatedAt:        time.Now(),
	}
}

// Seed stores the standard template and every team rule.
func Seed(ctx context.Context, templates schedule.TemplateRepository, rules schedule.RecurrenceRuleRepository) error {
	if err := templates.SaveTemplate(ctx, StandardTemplate()); err != nil {
		return fmt.Errorf("seed template: %w", err)
	}
	for _, team := range Teams() {
		if err := rules.SaveRule(ctx, TeamRule(team)); err != nil {
			return fmt.Errorf("seed rule for team %s: %w", team.Name, err)
		}
	}
	return nil
}
