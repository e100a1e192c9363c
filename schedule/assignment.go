/*
assignment.go - User-to-team schedule assignments and priority resolution

PURPOSE:
  A UserScheduleAssignment places a user on a team under a recurrence rule for
  a bounded (or permanent) span of dates. Users routinely accumulate
  overlapping assignments - a permanent home team plus a temporary loan to
  another team - so resolution picks exactly one winner per date:

  1. highest priority (Override > High > Normal > Low)
  2. on ties, the most recently created assignment

  No qualifying assignment is a valid terminal state, not an error: the user
  simply has nothing scheduled that day.

SEE ALSO:
  - recurrence.go: the rule the winning assignment points at
  - engine.go:     feeds the winner into provider generation
*/
package schedule

import (
	"context"
	"sort"
	"time"
)

// =============================================================================
// PRIORITY
// =============================================================================

// AssignmentPriority orders competing assignments. Override always wins; it
// exists for temporary management-imposed placements.
type AssignmentPriority int

const (
	AssignmentPriorityLow AssignmentPriority = iota
	AssignmentPriorityNormal
	AssignmentPriorityHigh
	AssignmentPriorityOverride
)

func (p AssignmentPriority) String() string {
	switch p {
	case AssignmentPriorityLow:
		return "LOW"
	case AssignmentPriorityNormal:
		return "NORMAL"
	case AssignmentPriorityHigh:
		return "HIGH"
	case AssignmentPriorityOverride:
		return "OVERRIDE"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// USER SCHEDULE ASSIGNMENT
// =============================================================================

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "ACTIVE"
	AssignmentSuspended AssignmentStatus = "SUSPENDED"
	AssignmentEnded     AssignmentStatus = "ENDED"
)

// UserScheduleAssignment maps a user to a team and a recurrence rule over a
// date span. EndDate nil together with Permanent means open-ended.
type UserScheduleAssignment struct {
	ID               string
	UserID           string
	TeamID           string
	RecurrenceRuleID string

	StartDate Date
	EndDate   *Date
	Permanent bool

	Priority AssignmentPriority
	Status   AssignmentStatus

	CreatedAt time.Time
}

// AppliesOn reports whether the assignment covers the date: active status,
// started on or before the date, and either open-ended or not yet ended.
func (a *UserScheduleAssignment) AppliesOn(d Date) bool {
	if a == nil || a.Status != AssignmentActive {
		return false
	}
	if d.Before(a.StartDate) {
		return false
	}
	if a.EndDate == nil {
		return true
	}
	return d.BeforeOrEqual(*a.EndDate)
}

// =============================================================================
// RESOLVER
// =============================================================================

// AssignmentResolver selects the single effective assignment for a user on a
// date from the assignment repository.
type AssignmentResolver struct {
	Assignments AssignmentRepository
}

// Resolve returns the winning assignment for the user on the date, or nil
// when nothing applies.
func (r *AssignmentResolver) Resolve(ctx context.Context, userID string, d Date) (*UserScheduleAssignment, error) {
	all, err := r.Assignments.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return SelectAssignment(all, d), nil
}

// SelectAssignment applies the priority / recency resolution over an already
// loaded assignment slice. Exposed separately so callers holding a consistent
// snapshot can resolve many dates without repeated repository reads.
func SelectAssignment(assignments []UserScheduleAssignment, d Date) *UserScheduleAssignment {
	var candidates []UserScheduleAssignment
	for _, a := range assignments {
		a := a
		if a.AppliesOn(d) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return &candidates[0]
}
