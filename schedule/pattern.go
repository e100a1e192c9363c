package schedule

import "fmt"

// =============================================================================
// WORK SCHEDULE PATTERN - One cycle day's assignments
// =============================================================================

// WorkSchedulePattern is the ordered list of shift assignments for a single
// day-position within a cycle. Position 0 is the first day of the cycle.
type WorkSchedulePattern struct {
	Assignments []WorkShiftAssignment
}

// IsValid reports whether every assignment is valid and no two assignments
// conflict (same team, overlapping windows, both non-rest).
func (p WorkSchedulePattern) IsValid() bool {
	return len(p.Problems()) == 0
}

// Problems returns human-readable descriptions of every invariant violation
// in the pattern. Empty means the pattern is valid.
func (p WorkSchedulePattern) Problems() []string {
	var problems []string
	for i, a := range p.Assignments {
		if !a.IsValid() {
			problems = append(problems, fmt.Sprintf("assignment %d is invalid", i))
		}
	}
	for i := 0; i < len(p.Assignments); i++ {
		for j := i + 1; j < len(p.Assignments); j++ {
			if p.Assignments[i].ConflictsWith(p.Assignments[j]) {
				problems = append(problems, fmt.Sprintf(
					"assignments %d and %d conflict: shared team with overlapping windows", i, j))
			}
		}
	}
	return problems
}

// TeamsOnShift returns the teams assigned to the given shift type within this
// pattern. Useful for validation against template team-count constraints.
func (p WorkSchedulePattern) TeamsOnShift(shiftID string) []string {
	var teams []string
	for _, a := range p.Assignments {
		if a.Shift != nil && a.Shift.ID == shiftID {
			teams = append(teams, a.Teams...)
		}
	}
	return teams
}

// WorkAssignments returns only the non-rest assignments of the pattern.
func (p WorkSchedulePattern) WorkAssignments() []WorkShiftAssignment {
	var out []WorkShiftAssignment
	for _, a := range p.Assignments {
		if a.Shift != nil && !a.Shift.IsRestPeriod {
			out = append(out, a)
		}
	}
	return out
}
