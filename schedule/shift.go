/*
shift.go - Shift values: what is worked, and who works it

PURPOSE:
  Defines the two atomic value types of the engine:
  - ShiftType:          one kind of shift (morning, night, rest, ...)
  - WorkShiftAssignment: a ShiftType plus the set of teams performing it on a
                         given cycle day, with scheduling flags

IMMUTABILITY:
  ShiftType values are never mutated after creation and are shared by pointer
  across every assignment and generated event that references them. Team sets
  on assignments are normalized at construction (trimmed, deduplicated
  case-insensitively) and treated as read-only afterwards.

SEE ALSO:
  - pattern.go:  groups assignments into per-cycle-day patterns
  - provider.go: turns assignments into ScheduleEvents
*/
package schedule

import "strings"

// =============================================================================
// SHIFT TYPE
// =============================================================================

// ShiftType describes one kind of shift. A rest period is modeled as a
// ShiftType with IsRestPeriod set so that patterns and events stay uniform.
type ShiftType struct {
	ID           string
	Name         string
	Start        TimeOfDay
	End          TimeOfDay
	IsRestPeriod bool

	// Presentation metadata, no scheduling significance.
	Color string

	// Unpaid break within the shift, deducted by the hours summary.
	BreakMinutes int
}

// CrossesMidnight reports whether the shift window spills into the next
// calendar day. Rest periods never cross midnight.
func (s *ShiftType) CrossesMidnight() bool {
	if s.IsRestPeriod {
		return false
	}
	return s.End <= s.Start
}

// DurationMinutes returns the raw shift length, before break deduction.
func (s *ShiftType) DurationMinutes() int {
	if s.IsRestPeriod {
		return 0
	}
	return spanMinutes(s.Start, s.End)
}

// =============================================================================
// WORK SHIFT ASSIGNMENT
// =============================================================================

// WorkShiftAssignment binds a ShiftType to the teams performing it.
type WorkShiftAssignment struct {
	Shift *ShiftType
	Teams []string

	Overtime  bool
	Mandatory bool
	Temporary bool

	// Set when an exception rewrote this assignment; OriginalShiftID keeps a
	// reference to the shift that was replaced.
	Modified           bool
	ModificationReason string
	OriginalShiftID    string
}

// NewWorkShiftAssignment builds an assignment with a normalized team set:
// names are trimmed, empties dropped, and duplicates removed
// case-insensitively keeping the first spelling seen.
func NewWorkShiftAssignment(shift *ShiftType, teams ...string) WorkShiftAssignment {
	return WorkShiftAssignment{Shift: shift, Teams: normalizeTeams(teams)}
}

func normalizeTeams(teams []string) []string {
	seen := make(map[string]bool, len(teams))
	out := make([]string, 0, len(teams))
	for _, team := range teams {
		team = strings.TrimSpace(team)
		if team == "" {
			continue
		}
		key := strings.ToLower(team)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, team)
	}
	return out
}

// HasTeam reports whether the assignment includes the team, matching
// case-insensitively on trimmed names.
func (a WorkShiftAssignment) HasTeam(team string) bool {
	team = strings.ToLower(strings.TrimSpace(team))
	if team == "" {
		return false
	}
	for _, t := range a.Teams {
		if strings.ToLower(t) == team {
			return true
		}
	}
	return false
}

// IsValid reports whether the assignment satisfies its invariants: a shift
// type is present, and either at least one team is assigned or the shift is a
// rest period. Team duplicates cannot occur through the constructor but are
// re-checked for assignments built literally.
func (a WorkShiftAssignment) IsValid() bool {
	if a.Shift == nil {
		return false
	}
	if len(a.Teams) == 0 && !a.Shift.IsRestPeriod {
		return false
	}
	seen := make(map[string]bool, len(a.Teams))
	for _, t := range a.Teams {
		key := strings.ToLower(strings.TrimSpace(t))
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// ConflictsWith reports whether two assignments cannot coexist in the same
// pattern: both non-rest, sharing a team, with overlapping shift windows.
func (a WorkShiftAssignment) ConflictsWith(b WorkShiftAssignment) bool {
	if a.Shift == nil || b.Shift == nil {
		return false
	}
	if a.Shift.IsRestPeriod || b.Shift.IsRestPeriod {
		return false
	}
	shared := false
	for _, t := range a.Teams {
		if b.HasTeam(t) {
			shared = true
			break
		}
	}
	if !shared {
		return false
	}
	return windowsOverlap(a.Shift.Start, a.Shift.End, b.Shift.Start, b.Shift.End)
}
