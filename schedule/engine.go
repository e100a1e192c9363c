/*
engine.go - Orchestration: from repositories to the effective calendar

PURPOSE:
  ScheduleEngine wires the whole pipeline together for a user and date range:

    resolve assignment -> load rule + template -> provider generation
        (team-filtered, rule-gated) -> exception overlay -> final events

  The engine loads all inputs once per call and then runs pure computation
  over those snapshots; repositories are not consulted again mid-range, so a
  multi-day result cannot see read skew.

SWAP ATOMICITY:
  A swap exception touches two users but is stored once, on the filing user.
  The snapshot pulls the counterpart into scope (in both directions, via
  SwapsTargetingUser) and computeUser mirrors the filer's swap onto the
  counterpart, so either side queried alone sees the exchanged shifts.
  Persisting both sides consistently is still the caller's job;
  EffectiveScheduleForUsers computes any number of users within one call for
  exactly that reason.

SEE ALSO:
  - provider.go:  base generation and fail-soft semantics
  - exception.go: overlay merge rules
*/
package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ScheduleEngine computes effective schedules from repository-backed inputs.
type ScheduleEngine struct {
	Templates   TemplateRepository
	Rules       RecurrenceRuleRepository
	Assignments AssignmentRepository
	Exceptions  ExceptionRepository

	Fixed  *FixedScheduleProvider
	Custom *CustomScheduleProvider

	overlay Overlay
	log     zerolog.Logger
}

// NewScheduleEngine builds an engine over the given repositories. The fixed
// provider is anchored to reference; pass the QuattroDue system reference
// date for the standard scheme.
func NewScheduleEngine(
	templates TemplateRepository,
	rules RecurrenceRuleRepository,
	assignments AssignmentRepository,
	exceptions ExceptionRepository,
	reference Date,
	log zerolog.Logger,
) *ScheduleEngine {
	return &ScheduleEngine{
		Templates:   templates,
		Rules:       rules,
		Assignments: assignments,
		Exceptions:  exceptions,
		Fixed:       NewFixedScheduleProvider(reference, log),
		Custom:      NewCustomScheduleProvider(log),
		log:         log.With().Str("component", "engine").Logger(),
	}
}

// providerFor picks the provider able to handle the template, or nil.
func (e *ScheduleEngine) providerFor(tmpl *WorkScheduleTemplate) WorkScheduleProvider {
	switch {
	case e.Custom.SupportsTemplate(tmpl):
		return e.Custom
	case e.Fixed.SupportsTemplate(tmpl):
		return e.Fixed
	default:
		return nil
	}
}

// EffectiveSchedule returns the user's final per-day schedule for [from, to]:
// base generation narrowed to the user's team, gated by the assignment's
// recurrence rule, with approved exceptions merged in.
func (e *ScheduleEngine) EffectiveSchedule(ctx context.Context, userID string, from, to Date) ([]ScheduleEvent, error) {
	snap, err := e.loadSnapshot(ctx, []string{userID}, from, to)
	if err != nil {
		return nil, err
	}
	return e.computeUser(snap, userID, from, to), nil
}

// EffectiveScheduleForUsers computes several users from one snapshot. Both
// sides of a swap are consistent when computed through this method.
func (e *ScheduleEngine) EffectiveScheduleForUsers(ctx context.Context, userIDs []string, from, to Date) (map[string][]ScheduleEvent, error) {
	snap, err := e.loadSnapshot(ctx, userIDs, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]ScheduleEvent, len(userIDs))
	for _, userID := range userIDs {
		out[userID] = e.computeUser(snap, userID, from, to)
	}
	return out, nil
}

// TeamSchedule returns the base schedule of a whole team under a template,
// with no per-user narrowing or exceptions.
func (e *ScheduleEngine) TeamSchedule(ctx context.Context, templateID, teamID string, from, to Date) ([]ScheduleEvent, error) {
	tmpl, err := e.Templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	provider := e.providerFor(tmpl)
	if provider == nil {
		e.log.Warn().Str("template", templateID).Msg("no provider supports template")
		return []ScheduleEvent{}, nil
	}
	return provider.GenerateSchedule(from, to, tmpl, teamID), nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// engineSnapshot holds everything one computation needs, loaded up front.
type engineSnapshot struct {
	assignments map[string][]UserScheduleAssignment
	exceptions  map[string][]ShiftException
	rules       map[string]*RecurrenceRule
	templates   map[string]*WorkScheduleTemplate
}

func (e *ScheduleEngine) loadSnapshot(ctx context.Context, userIDs []string, from, to Date) (*engineSnapshot, error) {
	snap := &engineSnapshot{
		assignments: make(map[string][]UserScheduleAssignment),
		exceptions:  make(map[string][]ShiftException),
		rules:       make(map[string]*RecurrenceRule),
		templates:   make(map[string]*WorkScheduleTemplate),
	}

	// Swaps pull in counterpart users; collect them before loading.
	queue := append([]string(nil), userIDs...)
	seen := make(map[string]bool)
	for len(queue) > 0 {
		userID := queue[0]
		queue = queue[1:]
		if seen[userID] {
			continue
		}
		seen[userID] = true

		assignments, err := e.Assignments.ForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load assignments for %s: %w", userID, err)
		}
		snap.assignments[userID] = assignments

		exceptions, err := e.Exceptions.ForUserInRange(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("load exceptions for %s: %w", userID, err)
		}
		snap.exceptions[userID] = exceptions

		for _, exc := range exceptions {
			if exc.Type == ExceptionShiftSwap && exc.SwapWithUserID != "" && !seen[exc.SwapWithUserID] {
				queue = append(queue, exc.SwapWithUserID)
			}
		}

		// Swaps filed by someone else naming this user pull the filer in,
		// so the mirrored side is computable from the snapshot too.
		inbound, err := e.Exceptions.SwapsTargetingUser(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("load swaps targeting %s: %w", userID, err)
		}
		for _, exc := range inbound {
			if exc.UserID != "" && !seen[exc.UserID] {
				queue = append(queue, exc.UserID)
			}
		}
	}

	// Resolve the rule and template of every assignment in scope. Missing
	// references are logged and skipped so one broken assignment cannot take
	// down the whole range.
	for _, assignments := range snap.assignments {
		for _, a := range assignments {
			if _, ok := snap.rules[a.RecurrenceRuleID]; !ok {
				rule, err := e.Rules.GetRule(ctx, a.RecurrenceRuleID)
				if err != nil {
					if IsNotFound(err) {
						e.log.Warn().Str("rule", a.RecurrenceRuleID).Msg("assignment references missing rule")
						continue
					}
					return nil, fmt.Errorf("load rule %s: %w", a.RecurrenceRuleID, err)
				}
				snap.rules[a.RecurrenceRuleID] = rule
			}
		}
	}

	templates, err := e.Templates.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	for i := range templates {
		snap.templates[templates[i].ID] = &templates[i]
	}

	return snap, nil
}

// =============================================================================
// PER-USER COMPUTATION
// =============================================================================

func (e *ScheduleEngine) computeUser(snap *engineSnapshot, userID string, from, to Date) []ScheduleEvent {
	base := e.baseEvents(snap, userID, from, to)

	exceptions := append([]ShiftException(nil), snap.exceptions[userID]...)
	exceptions = append(exceptions, e.mirroredSwaps(snap, userID)...)
	for i := range exceptions {
		exc := &exceptions[i]
		if exc.Type == ExceptionShiftSwap && exc.IsEffective() && exc.ReplacementShift == nil {
			exc.ReplacementShift = e.workShiftOn(snap, exc.SwapWithUserID, exc.TargetDate)
		}
	}

	return e.overlay.Apply(base, exceptions)
}

// mirroredSwaps projects swaps filed by other users onto their counterpart:
// an effective swap naming userID hands the filer's base shift to userID on
// the target date, the reverse of the rewrite applied to the filer. The
// mirror competes for the date like any exception of the same priority.
func (e *ScheduleEngine) mirroredSwaps(snap *engineSnapshot, userID string) []ShiftException {
	var out []ShiftException
	for filerID, exceptions := range snap.exceptions {
		if filerID == userID {
			continue
		}
		for _, exc := range exceptions {
			if exc.Type != ExceptionShiftSwap || exc.SwapWithUserID != userID || !exc.IsEffective() {
				continue
			}
			mirror := exc
			mirror.UserID = userID
			mirror.SwapWithUserID = exc.UserID
			mirror.OriginalShiftID = ""
			mirror.NewStart = nil
			mirror.NewEnd = nil
			mirror.ReplacementShift = nil
			out = append(out, mirror)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// baseEvents generates the user's pre-exception schedule: per date, the
// winning assignment's rule gates work/rest and its template supplies the
// pattern, filtered to the assignment's team.
func (e *ScheduleEngine) baseEvents(snap *engineSnapshot, userID string, from, to Date) []ScheduleEvent {
	r := DateRange{Start: from, End: to}
	if !r.Valid() {
		e.log.Warn().Str("user", userID).Str("range", r.String()).Msg("invalid range")
		return nil
	}

	var events []ScheduleEvent
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		assignment := SelectAssignment(snap.assignments[userID], d)
		if assignment == nil {
			continue
		}
		rule := snap.rules[assignment.RecurrenceRuleID]
		if rule == nil || !rule.Active || !rule.Matches(d) {
			continue
		}

		tmpl := e.templateForRule(snap, rule)
		if tmpl == nil {
			continue
		}
		provider := e.providerFor(tmpl)
		if provider == nil {
			continue
		}

		for _, ev := range provider.GenerateForDate(d, tmpl, assignment.TeamID) {
			ev.UserID = userID
			events = append(events, ev)
		}
	}
	return events
}

// templateForRule pairs a rule with its template by the *_standard id
// convention: rule "<templateID>_standard" belongs to template <templateID>.
// Rules whose ID does not follow the convention fall back to the only active
// template able to serve them, matching on cycle length for cyclic rules.
func (e *ScheduleEngine) templateForRule(snap *engineSnapshot, rule *RecurrenceRule) *WorkScheduleTemplate {
	if tmpl, ok := snap.templates[templateIDForRule(rule.ID)]; ok {
		return tmpl
	}
	var fallback *WorkScheduleTemplate
	for _, tmpl := range snap.templates {
		if !tmpl.Active {
			continue
		}
		if rule.Frequency == FreqQuattroDueCycle && tmpl.CycleDays != rule.CycleLength {
			continue
		}
		if fallback == nil || tmpl.ID < fallback.ID {
			fallback = tmpl
		}
	}
	if fallback == nil {
		e.log.Warn().Str("rule", rule.ID).Msg("no template found for rule")
	}
	return fallback
}

const standardRuleMarker = "_standard"

// templateIDForRule extracts the template ID from a conventionally named
// rule: everything before the "_standard" marker. "quattrodue_standard" and
// "quattrodue_standard_team_a" both pair with template "quattrodue".
func templateIDForRule(ruleID string) string {
	if i := strings.Index(ruleID, standardRuleMarker); i > 0 {
		return ruleID[:i]
	}
	return ruleID
}

// workShiftOn resolves the first work shift of a user's base schedule on one
// date, from the same snapshot. Used to fill a swap's replacement shift with
// the other side's duty.
func (e *ScheduleEngine) workShiftOn(snap *engineSnapshot, userID string, d Date) *ShiftType {
	for _, ev := range e.baseEvents(snap, userID, d, d) {
		if ev.IsWork() {
			return ev.Shift
		}
	}
	return nil
}
