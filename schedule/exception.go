/*
exception.go - Shift exceptions and the overlay merge engine

PURPOSE:
  A ShiftException is an approved, date-targeted override layered on top of
  the generated base schedule: an absence, a shift change or swap, a time
  change, or a duration reduction. This file owns:
  1. The exception value and its approval-workflow state machine
  2. The effectiveness gate deciding which exceptions may touch the calendar
  3. The Overlay that merges effective exceptions into base events

APPROVAL WORKFLOW:
  Draft -> Pending -> Approved | Rejected
  Draft | Pending -> Cancelled
  expired exceptions are terminal.

  Only Approved exceptions - or Drafts that do not require approval - are
  effective. Everything else (Pending, Rejected, Cancelled, Expired) is inert:
  visible to management surfaces, invisible to the merged calendar. The gate
  is structural; applying a non-effective exception is not an error path that
  can be reached.

CONFLICTS:
  When several effective exceptions target the same (user, date), only one is
  applied: highest priority first (Urgent > High > Normal > Low), then the
  most recently updated. This mirrors assignment resolution on purpose.

MIDNIGHT-CROSSING SHIFTS:
  An exception binds to the shift's nominal start date only. A night shift
  starting on the 10th and ending on the 11th is affected by exceptions
  targeting the 10th; an exception targeting the 11th leaves it alone.

SEE ALSO:
  - provider.go: produces the base events the overlay rewrites
  - engine.go:   documents swap atomicity across the two affected users
*/
package schedule

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// EXCEPTION TYPE
// =============================================================================

// ExceptionType enumerates the supported override kinds.
type ExceptionType string

const (
	ExceptionAbsenceVacation ExceptionType = "ABSENCE_VACATION"
	ExceptionAbsenceSick     ExceptionType = "ABSENCE_SICK"
	ExceptionAbsencePersonal ExceptionType = "ABSENCE_PERSONAL"
	ExceptionAbsenceUnpaid   ExceptionType = "ABSENCE_UNPAID"
	ExceptionShiftChange     ExceptionType = "SHIFT_CHANGE"
	ExceptionShiftSwap       ExceptionType = "SHIFT_SWAP"
	ExceptionTimeChange      ExceptionType = "TIME_CHANGE"
	ExceptionReduction       ExceptionType = "REDUCTION"
	ExceptionOvertime        ExceptionType = "OVERTIME"
	ExceptionCustom          ExceptionType = "CUSTOM"
)

// IsAbsence reports whether the type removes work rather than rewriting it.
func (t ExceptionType) IsAbsence() bool {
	switch t {
	case ExceptionAbsenceVacation, ExceptionAbsenceSick,
		ExceptionAbsencePersonal, ExceptionAbsenceUnpaid:
		return true
	}
	return false
}

// IsReplacement reports whether the type substitutes one shift for another.
func (t ExceptionType) IsReplacement() bool {
	return t == ExceptionShiftChange || t == ExceptionShiftSwap || t == ExceptionTimeChange
}

// =============================================================================
// STATUS AND PRIORITY
// =============================================================================

type ExceptionStatus string

const (
	ExceptionDraft     ExceptionStatus = "DRAFT"
	ExceptionPending   ExceptionStatus = "PENDING"
	ExceptionApproved  ExceptionStatus = "APPROVED"
	ExceptionRejected  ExceptionStatus = "REJECTED"
	ExceptionCancelled ExceptionStatus = "CANCELLED"
	ExceptionExpired   ExceptionStatus = "EXPIRED"
)

// ExceptionPriority orders competing exceptions on the same date.
type ExceptionPriority int

const (
	ExceptionPriorityLow ExceptionPriority = iota
	ExceptionPriorityNormal
	ExceptionPriorityHigh
	ExceptionPriorityUrgent
)

func (p ExceptionPriority) String() string {
	switch p {
	case ExceptionPriorityLow:
		return "LOW"
	case ExceptionPriorityNormal:
		return "NORMAL"
	case ExceptionPriorityHigh:
		return "HIGH"
	case ExceptionPriorityUrgent:
		return "URGENT"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// SHIFT EXCEPTION
// =============================================================================

// ShiftException is a date-specific override for one user's schedule.
type ShiftException struct {
	ID         string
	Type       ExceptionType
	UserID     string
	TargetDate Date

	// Absence scope. IsFullDay absences clear every work event on the date;
	// partial absences clear only events overlapping [NewStart, NewEnd).
	IsFullDay bool

	// Time override for changes, partial absences and reductions.
	NewStart        *TimeOfDay
	NewEnd          *TimeOfDay
	DurationMinutes int

	// Replacement references for changes and swaps. OriginalShiftID selects
	// the base event to rewrite; empty means the day's first work event.
	OriginalShiftID string
	NewShiftID      string

	// ReplacementShift is the resolved shift for NewShiftID. For swaps the
	// engine fills it with the counterpart's shift before overlay.
	ReplacementShift *ShiftType

	// SwapWithUserID is the counterpart of a swap.
	SwapWithUserID string

	Status           ExceptionStatus
	RequiresApproval bool
	Priority         ExceptionPriority

	// Recurring exceptions reference a rule; the repository expands them to
	// concrete target dates before they reach the overlay.
	RecurrenceRuleID string

	Reason   string
	Metadata map[string]string

	ApprovedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsEffective reports whether the exception may influence the merged
// schedule: approved, or a draft that never needed approval.
func (e *ShiftException) IsEffective() bool {
	if e == nil {
		return false
	}
	if e.Status == ExceptionApproved {
		return true
	}
	return e.Status == ExceptionDraft && !e.RequiresApproval
}

// Submit moves a draft into the approval queue.
func (e *ShiftException) Submit(at time.Time) error {
	if e.Status != ExceptionDraft {
		return fmt.Errorf("can only submit draft exceptions, current status: %s", e.Status)
	}
	e.Status = ExceptionPending
	e.UpdatedAt = at
	return nil
}

// Approve accepts a pending exception. Drafts that require approval must be
// submitted first.
func (e *ShiftException) Approve(approverID string, at time.Time) error {
	if e.Status != ExceptionPending {
		return fmt.Errorf("can only approve pending exceptions, current status: %s", e.Status)
	}
	e.Status = ExceptionApproved
	e.ApprovedBy = approverID
	e.UpdatedAt = at
	return nil
}

// Reject declines a pending exception.
func (e *ShiftException) Reject(rejecterID, reason string, at time.Time) error {
	if e.Status != ExceptionPending {
		return fmt.Errorf("can only reject pending exceptions, current status: %s", e.Status)
	}
	e.Status = ExceptionRejected
	if reason != "" {
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata["rejection_reason"] = reason
		e.Metadata["rejected_by"] = rejecterID
	}
	e.UpdatedAt = at
	return nil
}

// Cancel withdraws a draft or pending exception.
func (e *ShiftException) Cancel(at time.Time) error {
	if e.Status != ExceptionDraft && e.Status != ExceptionPending {
		return fmt.Errorf("can only cancel draft or pending exceptions, current status: %s", e.Status)
	}
	e.Status = ExceptionCancelled
	e.UpdatedAt = at
	return nil
}

// Expire marks an exception whose target date passed without resolution.
func (e *ShiftException) Expire(at time.Time) error {
	if e.Status == ExceptionApproved || e.Status == ExceptionRejected || e.Status == ExceptionCancelled {
		return fmt.Errorf("cannot expire a resolved exception, current status: %s", e.Status)
	}
	e.Status = ExceptionExpired
	e.UpdatedAt = at
	return nil
}

// =============================================================================
// OVERLAY - Merging exceptions into base events
// =============================================================================

// Overlay merges effective exceptions into base schedule events. It is a pure
// computation: inputs are snapshots, output is a fresh slice.
type Overlay struct{}

type overlayKey struct {
	userID string
	date   Date
}

// Apply returns the base events rewritten by the winning effective exception
// of each (user, targetDate). Non-effective exceptions are ignored entirely.
//
// A swap rewrites only the events passed in; the counterpart's side is a
// separate, mirrored exception that ScheduleEngine synthesizes from the same
// snapshot before calling Apply.
func (Overlay) Apply(base []ScheduleEvent, exceptions []ShiftException) []ScheduleEvent {
	winners := selectWinners(exceptions)
	if len(winners) == 0 {
		out := make([]ScheduleEvent, len(base))
		copy(out, base)
		return out
	}

	byDay := make(map[overlayKey][]ScheduleEvent)
	var order []overlayKey
	for _, ev := range base {
		k := overlayKey{userID: ev.UserID, date: ev.Date}
		if _, seen := byDay[k]; !seen {
			order = append(order, k)
		}
		byDay[k] = append(byDay[k], ev)
	}

	var out []ScheduleEvent
	for _, k := range order {
		events := byDay[k]
		if exc, ok := winners[k]; ok {
			events = applyException(events, exc)
		}
		out = append(out, events...)
	}
	return out
}

// selectWinners picks, per (user, date), the single exception to apply:
// highest priority, then latest UpdatedAt.
func selectWinners(exceptions []ShiftException) map[overlayKey]ShiftException {
	grouped := make(map[overlayKey][]ShiftException)
	for _, exc := range exceptions {
		if !exc.IsEffective() {
			continue
		}
		k := overlayKey{userID: exc.UserID, date: exc.TargetDate}
		grouped[k] = append(grouped[k], exc)
	}

	winners := make(map[overlayKey]ShiftException, len(grouped))
	for k, group := range grouped {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Priority != group[j].Priority {
				return group[i].Priority > group[j].Priority
			}
			return group[i].UpdatedAt.After(group[j].UpdatedAt)
		})
		winners[k] = group[0]
	}
	return winners
}

func applyException(events []ScheduleEvent, exc ShiftException) []ScheduleEvent {
	switch {
	case exc.Type.IsAbsence():
		return applyAbsence(events, exc)
	case exc.Type.IsReplacement():
		return applyReplacement(events, exc)
	case exc.Type == ExceptionReduction:
		return applyReduction(events, exc)
	default:
		// Overtime and custom exceptions carry metadata for other surfaces
		// but do not rewrite base events.
		return events
	}
}

// applyAbsence removes work events. Full-day absences clear everything that
// is work; partial absences clear only events overlapping the exception's
// time window. Rest events always survive.
func applyAbsence(events []ScheduleEvent, exc ShiftException) []ScheduleEvent {
	out := events[:0:0]
	for _, ev := range events {
		if !ev.IsWork() {
			out = append(out, ev)
			continue
		}
		if exc.IsFullDay || exc.NewStart == nil || exc.NewEnd == nil {
			continue
		}
		if windowsOverlap(ev.Shift.Start, ev.Shift.End, *exc.NewStart, *exc.NewEnd) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// applyReplacement rewrites the matched event with the replacement shift
// and/or time override. The match is by OriginalShiftID when set, otherwise
// the day's first work event.
func applyReplacement(events []ScheduleEvent, exc ShiftException) []ScheduleEvent {
	idx := matchEvent(events, exc.OriginalShiftID)
	if idx < 0 {
		return events
	}

	out := make([]ScheduleEvent, len(events))
	copy(out, events)

	ev := &out[idx]

	shift := exc.ReplacementShift
	if shift == nil {
		// No replacement shift resolved: rewrite the window of the original.
		s := *ev.Shift
		shift = &s
	}
	if exc.NewStart != nil || exc.NewEnd != nil {
		s := *shift
		if exc.NewStart != nil {
			s.Start = *exc.NewStart
		}
		if exc.NewEnd != nil {
			s.End = *exc.NewEnd
		}
		shift = &s
	}

	ev.Shift = shift
	ev.Modified = true
	ev.Title = eventTitle(WorkShiftAssignment{Shift: shift, Teams: ev.Teams})
	if exc.Reason != "" {
		ev.Description = exc.Reason
	}
	if exc.Type == ExceptionShiftSwap && exc.SwapWithUserID != "" {
		ev.Description = fmt.Sprintf("Swapped with %s", exc.SwapWithUserID)
	}
	return out
}

// applyReduction shortens the matched event. The start time is unchanged; the
// end moves so the duration equals DurationMinutes, unless NewEnd is set
// explicitly.
func applyReduction(events []ScheduleEvent, exc ShiftException) []ScheduleEvent {
	idx := matchEvent(events, exc.OriginalShiftID)
	if idx < 0 {
		return events
	}

	out := make([]ScheduleEvent, len(events))
	copy(out, events)

	ev := &out[idx]
	s := *ev.Shift
	switch {
	case exc.NewEnd != nil:
		s.End = *exc.NewEnd
	case exc.DurationMinutes > 0:
		s.End = TimeOfDay((int(s.Start) + exc.DurationMinutes) % minutesInDay)
	default:
		return events
	}
	ev.Shift = &s
	ev.Modified = true
	ev.Title = eventTitle(WorkShiftAssignment{Shift: &s, Teams: ev.Teams})
	return out
}

// matchEvent finds the event an exception targets: the one whose shift has
// the given ID, or the first work event when no ID is given.
func matchEvent(events []ScheduleEvent, originalShiftID string) int {
	for i, ev := range events {
		if !ev.IsWork() {
			continue
		}
		if originalShiftID == "" || ev.eventID() == originalShiftID {
			return i
		}
	}
	return -1
}
