/*
template.go - Work schedule templates and structural validation

PURPOSE:
  A WorkScheduleTemplate is an ordered sequence of per-day patterns of length
  CycleDays, plus the constraints a valid schedule built from it must honor.
  Templates come in two flavors:
  - Fixed:  predefined cycles shipped with the system (the 4-2 QuattroDue
            scheme lives in the quattrodue package)
  - Custom: user-authored cycles

VALIDATION:
  Validate() returns a TemplateValidationResult value - a list of errors and
  warnings, never a Go error. Structural violations (cycle too short, missing
  patterns, conflicting assignments) are errors; softer issues (teams outside
  the supported set) are warnings. Both the authoring surface and the
  providers call Validate() so a broken template fails fast in either place.

LIFECYCLE:
  Templates are created by a factory or the authoring API, persisted, and
  referenced by ID from recurrence rules and user assignments. They are
  soft-deactivated (Active=false) rather than deleted so historical schedules
  stay resolvable.

SEE ALSO:
  - pattern.go:   per-day invariants
  - provider.go:  consumes templates to generate events
  - quattrodue/:  the standard fixed template
*/
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TEMPLATE TYPE
// =============================================================================

// TemplateType discriminates template flavors; providers dispatch on it.
type TemplateType string

const (
	TemplateFixed42 TemplateType = "FIXED_4_2"
	TemplateCustom  TemplateType = "CUSTOM"
)

// =============================================================================
// WORK SCHEDULE TEMPLATE
// =============================================================================

// WorkScheduleTemplate defines a repeating cycle of work patterns.
type WorkScheduleTemplate struct {
	ID          string
	Name        string
	Type        TemplateType
	CycleDays   int
	Patterns    []WorkSchedulePattern
	UserDefined bool

	// Constraints checked by Validate.
	MinTeamsPerShift       int
	MaxTeamsPerShift       int
	SupportedTeams         []string
	RequiresTeamAssignment bool

	// Audit metadata.
	CreatedAt    time.Time
	LastModified time.Time
	UsageCount   int
	Active       bool
}

// PatternForDay returns the pattern at the given cycle offset, or nil when the
// offset is out of range. Offsets are 0-based and must already be normalized
// into [0, CycleDays); see FlooredMod.
func (t *WorkScheduleTemplate) PatternForDay(cycleDay int) *WorkSchedulePattern {
	if t == nil || cycleDay < 0 || cycleDay >= len(t.Patterns) {
		return nil
	}
	return &t.Patterns[cycleDay]
}

// SupportsTeam reports whether the team is in the template's supported set.
// An empty supported set accepts any team.
func (t *WorkScheduleTemplate) SupportsTeam(team string) bool {
	if len(t.SupportedTeams) == 0 {
		return true
	}
	team = strings.ToLower(strings.TrimSpace(team))
	for _, s := range t.SupportedTeams {
		if strings.ToLower(s) == team {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// TemplateValidationResult carries the outcome of structural validation.
// It is a plain value returned to callers; validation never raises.
type TemplateValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *TemplateValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *TemplateValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the template's structural invariants:
//   - CycleDays > 0
//   - at least CycleDays patterns
//   - every pattern internally valid
//   - team counts per shift within [MinTeamsPerShift, MaxTeamsPerShift]
//
// Teams outside SupportedTeams produce warnings, not errors, so a template can
// be saved while authoring is still in progress.
func (t *WorkScheduleTemplate) Validate() TemplateValidationResult {
	result := TemplateValidationResult{}

	if t == nil {
		result.addError("template is nil")
		return result
	}
	if t.CycleDays <= 0 {
		result.addError("cycle length must be positive, got %d", t.CycleDays)
	}
	if t.CycleDays > 0 && len(t.Patterns) < t.CycleDays {
		result.addError("template defines %d patterns but the cycle is %d days",
			len(t.Patterns), t.CycleDays)
	}

	for day := 0; day < len(t.Patterns) && day < t.CycleDays; day++ {
		pattern := t.Patterns[day]
		for _, problem := range pattern.Problems() {
			result.addError("day %d: %s", day, problem)
		}
		t.validateTeamCounts(day, pattern, &result)
	}

	if t.RequiresTeamAssignment && len(t.SupportedTeams) == 0 {
		result.addWarning("template requires team assignment but declares no supported teams")
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func (t *WorkScheduleTemplate) validateTeamCounts(day int, pattern WorkSchedulePattern, result *TemplateValidationResult) {
	for _, a := range pattern.WorkAssignments() {
		n := len(a.Teams)
		if t.MinTeamsPerShift > 0 && n < t.MinTeamsPerShift {
			result.addError("day %d: shift %q has %d teams, minimum is %d",
				day, a.Shift.Name, n, t.MinTeamsPerShift)
		}
		if t.MaxTeamsPerShift > 0 && n > t.MaxTeamsPerShift {
			result.addError("day %d: shift %q has %d teams, maximum is %d",
				day, a.Shift.Name, n, t.MaxTeamsPerShift)
		}
		for _, team := range a.Teams {
			if !t.SupportsTeam(team) {
				result.addWarning("day %d: team %q is not in the supported team set", day, team)
			}
		}
	}
}
