/*
provider.go - Base schedule generation from templates

PURPOSE:
  A WorkScheduleProvider turns a template plus a date range into the base list
  of ScheduleEvents, before any user filtering or exception overlay. Two
  implementations exist:
  - FixedScheduleProvider:  predefined cycles anchored to a system reference
                            date (the QuattroDue scheme); different teams are
                            phase-shifted copies of the same cycle
  - CustomScheduleProvider: user-authored cycles anchored to the template's
                            creation date (fallback: a fixed epoch)

  The only difference between them is the reference point of the cycle-offset
  arithmetic; everything else is shared.

FAILURE SEMANTICS:
  Generation never raises. Invalid ranges and unsupported templates yield an
  empty slice with a logged warning, and any panic while generating a single
  day is recovered so that day contributes zero events while the rest of the
  range still completes. Callers must treat "empty" as a legitimate quiet day
  and use ValidateTemplate up front to tell misconfiguration apart.

CONCURRENCY:
  GenerateForDate is pure given its inputs: per-day results are independent,
  so callers may fan out over disjoint dates with a shared read-only template.

SEE ALSO:
  - template.go: structural validation reused here
  - engine.go:   combines providers with assignments and exceptions
*/
package schedule

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// =============================================================================
// SCHEDULE EVENT
// =============================================================================

// ScheduleEvent is one generated calendar entry: a shift performed by a set
// of teams on a specific date. Events are plain values handed to presentation
// or persistence; Title and Description are preassembled display text with no
// influence on scheduling.
type ScheduleEvent struct {
	Date  Date
	Shift *ShiftType
	Teams []string

	Title       string
	Description string

	Overtime  bool
	Mandatory bool
	Temporary bool
	Modified  bool

	SourceTemplateID string
	CycleDay         int

	// Set by the engine once the event has been narrowed to one user.
	UserID string
}

// IsWork reports whether the event represents actual work (not rest).
func (e ScheduleEvent) IsWork() bool {
	return e.Shift != nil && !e.Shift.IsRestPeriod
}

// eventID identifies an event's shift slot within its day, used by the
// exception overlay to match change/swap targets.
func (e ScheduleEvent) eventID() string {
	if e.Shift == nil {
		return ""
	}
	return e.Shift.ID
}

func newEvent(date Date, a WorkShiftAssignment, templateID string, cycleDay, cycleDays int) ScheduleEvent {
	e := ScheduleEvent{
		Date:             date,
		Shift:            a.Shift,
		Teams:            a.Teams,
		Overtime:         a.Overtime,
		Mandatory:        a.Mandatory,
		Temporary:        a.Temporary,
		Modified:         a.Modified,
		SourceTemplateID: templateID,
		CycleDay:         cycleDay,
	}
	e.Title = eventTitle(a)
	e.Description = eventDescription(a, cycleDay, cycleDays)
	return e
}

func eventTitle(a WorkShiftAssignment) string {
	if a.Shift == nil {
		return ""
	}
	if a.Shift.IsRestPeriod {
		return a.Shift.Name
	}
	return fmt.Sprintf("%s %s-%s", a.Shift.Name, a.Shift.Start, a.Shift.End)
}

func eventDescription(a WorkShiftAssignment, cycleDay, cycleDays int) string {
	var b strings.Builder
	if len(a.Teams) > 0 {
		b.WriteString("Teams: ")
		b.WriteString(strings.Join(a.Teams, ", "))
	}
	if cycleDays > 0 {
		if b.Len() > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprintf(&b, "Cycle day %d/%d", cycleDay+1, cycleDays)
	}
	var flags []string
	if a.Overtime {
		flags = append(flags, "overtime")
	}
	if a.Mandatory {
		flags = append(flags, "mandatory")
	}
	if a.Temporary {
		flags = append(flags, "temporary")
	}
	if a.Modified {
		flags = append(flags, "modified")
	}
	if len(flags) > 0 {
		if b.Len() > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(strings.Join(flags, ", "))
	}
	return b.String()
}

// =============================================================================
// PROVIDER INTERFACE
// =============================================================================

// WorkScheduleProvider generates base schedule events from a template.
// teamFilter, when non-empty, keeps only assignments containing that team
// (matched case-insensitively on the trimmed name).
type WorkScheduleProvider interface {
	// GenerateSchedule emits events for every date in [start, end] inclusive.
	// It returns an empty slice, never an error, on invalid input.
	GenerateSchedule(start, end Date, tmpl *WorkScheduleTemplate, teamFilter string) []ScheduleEvent

	// GenerateForDate is the single-day building block of GenerateSchedule.
	GenerateForDate(date Date, tmpl *WorkScheduleTemplate, teamFilter string) []ScheduleEvent

	// SupportsTemplate reports type compatibility with the template.
	SupportsTemplate(tmpl *WorkScheduleTemplate) bool

	// ValidateTemplate runs structural validation, shared with authoring.
	ValidateTemplate(tmpl *WorkScheduleTemplate) TemplateValidationResult
}

// =============================================================================
// SHARED GENERATION CORE
// =============================================================================

// providerCore implements the cycle arithmetic and fail-soft loop shared by
// both providers; only the reference date differs.
type providerCore struct {
	log zerolog.Logger
}

func (c *providerCore) generateRange(
	start, end Date,
	tmpl *WorkScheduleTemplate,
	teamFilter string,
	reference func(*WorkScheduleTemplate) Date,
	supported bool,
) []ScheduleEvent {
	r := DateRange{Start: start, End: end}
	if !r.Valid() {
		c.log.Warn().Str("start", start.String()).Str("end", end.String()).
			Msg("invalid date range, generating nothing")
		return []ScheduleEvent{}
	}
	if !supported {
		c.log.Warn().Msg("unsupported template, generating nothing")
		return []ScheduleEvent{}
	}

	events := make([]ScheduleEvent, 0, r.Days())
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		events = append(events, c.generateDay(d, tmpl, teamFilter, reference)...)
	}
	return events
}

// generateDay isolates faults at day granularity: a panic while computing one
// day is recovered and logged, and that day yields no events.
func (c *providerCore) generateDay(
	date Date,
	tmpl *WorkScheduleTemplate,
	teamFilter string,
	reference func(*WorkScheduleTemplate) Date,
) (events []ScheduleEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error().Str("date", date.String()).Interface("panic", rec).
				Msg("schedule generation failed for day")
			events = nil
		}
	}()

	if tmpl == nil || tmpl.CycleDays <= 0 {
		return nil
	}

	cycleDay := FlooredMod(DaysBetween(reference(tmpl), date), tmpl.CycleDays)
	pattern := tmpl.PatternForDay(cycleDay)
	if pattern == nil {
		c.log.Warn().Str("template", tmpl.ID).Int("cycleDay", cycleDay).
			Msg("no pattern defined for cycle day")
		return nil
	}

	for _, a := range pattern.Assignments {
		if teamFilter != "" && !a.HasTeam(teamFilter) {
			continue
		}
		events = append(events, newEvent(date, a, tmpl.ID, cycleDay, tmpl.CycleDays))
	}
	return events
}

// =============================================================================
// FIXED SCHEDULE PROVIDER
// =============================================================================

// FixedScheduleProvider generates predefined cycles anchored to a system-wide
// reference date. Team phase offsets are baked into the template's patterns
// (see the quattrodue package), so one reference date serves every team.
type FixedScheduleProvider struct {
	core      providerCore
	Reference Date
}

// NewFixedScheduleProvider builds a provider anchored to the given reference
// date. The reference is the date on which cycle offset 0 occurs.
func NewFixedScheduleProvider(reference Date, log zerolog.Logger) *FixedScheduleProvider {
	return &FixedScheduleProvider{
		core:      providerCore{log: log.With().Str("provider", "fixed").Logger()},
		Reference: reference,
	}
}

func (p *FixedScheduleProvider) SupportsTemplate(tmpl *WorkScheduleTemplate) bool {
	return tmpl != nil && !tmpl.UserDefined && tmpl.Type != TemplateCustom && len(tmpl.Patterns) > 0
}

func (p *FixedScheduleProvider) ValidateTemplate(tmpl *WorkScheduleTemplate) TemplateValidationResult {
	return tmpl.Validate()
}

func (p *FixedScheduleProvider) GenerateSchedule(start, end Date, tmpl *WorkScheduleTemplate, teamFilter string) []ScheduleEvent {
	return p.core.generateRange(start, end, tmpl, teamFilter, p.reference, p.SupportsTemplate(tmpl))
}

func (p *FixedScheduleProvider) GenerateForDate(date Date, tmpl *WorkScheduleTemplate, teamFilter string) []ScheduleEvent {
	if !p.SupportsTemplate(tmpl) {
		return []ScheduleEvent{}
	}
	return p.core.generateDay(date, tmpl, teamFilter, p.reference)
}

func (p *FixedScheduleProvider) reference(*WorkScheduleTemplate) Date {
	return p.Reference
}

// =============================================================================
// CUSTOM SCHEDULE PROVIDER
// =============================================================================

// customEpoch anchors custom templates that predate creation timestamps.
var customEpoch = NewDate(2020, 1, 1)

// CustomScheduleProvider generates user-authored cycles. The cycle is
// anchored to the calendar date of the template's creation so that the
// author's "day one" is cycle offset 0.
type CustomScheduleProvider struct {
	core providerCore
}

func NewCustomScheduleProvider(log zerolog.Logger) *CustomScheduleProvider {
	return &CustomScheduleProvider{
		core: providerCore{log: log.With().Str("provider", "custom").Logger()},
	}
}

func (p *CustomScheduleProvider) SupportsTemplate(tmpl *WorkScheduleTemplate) bool {
	return tmpl != nil && tmpl.Type == TemplateCustom && tmpl.UserDefined && len(tmpl.Patterns) > 0
}

func (p *CustomScheduleProvider) ValidateTemplate(tmpl *WorkScheduleTemplate) TemplateValidationResult {
	return tmpl.Validate()
}

func (p *CustomScheduleProvider) GenerateSchedule(start, end Date, tmpl *WorkScheduleTemplate, teamFilter string) []ScheduleEvent {
	return p.core.generateRange(start, end, tmpl, teamFilter, customReference, p.SupportsTemplate(tmpl))
}

func (p *CustomScheduleProvider) GenerateForDate(date Date, tmpl *WorkScheduleTemplate, teamFilter string) []ScheduleEvent {
	if !p.SupportsTemplate(tmpl) {
		return []ScheduleEvent{}
	}
	return p.core.generateDay(date, tmpl, teamFilter, customReference)
}

func customReference(tmpl *WorkScheduleTemplate) Date {
	if tmpl.CreatedAt.IsZero() {
		return customEpoch
	}
	return DateOf(tmpl.CreatedAt)
}
