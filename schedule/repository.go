/*
repository.go - Persistence boundary of the engine

PURPOSE:
  The engine performs no I/O of its own: templates, rules, assignments and
  exceptions are loaded by callers through these interfaces and handed to the
  pure computation as snapshots. Two implementations ship with the repo:
  - schedule/store: in-memory, for tests and development
  - store/sqlite:   SQLite-backed

SNAPSHOT CONTRACT:
  A multi-day generation call must see consistent data. Implementations
  return copies; callers that need cross-repository consistency load
  everything up front (the engine does this per call).
*/
package schedule

import "context"

// TemplateRepository stores work schedule templates.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id string) (*WorkScheduleTemplate, error)
	ListTemplates(ctx context.Context) ([]WorkScheduleTemplate, error)
	SaveTemplate(ctx context.Context, tmpl *WorkScheduleTemplate) error

	// DeactivateTemplate soft-deletes: the template stays resolvable for
	// historical schedules but is excluded from authoring lists.
	DeactivateTemplate(ctx context.Context, id string) error
}

// RecurrenceRuleRepository stores recurrence rules.
type RecurrenceRuleRepository interface {
	GetRule(ctx context.Context, id string) (*RecurrenceRule, error)
	SaveRule(ctx context.Context, rule *RecurrenceRule) error
}

// AssignmentRepository stores user schedule assignments.
type AssignmentRepository interface {
	// ForUser returns every assignment of the user, any status. The resolver
	// filters by status and date bounds itself.
	ForUser(ctx context.Context, userID string) ([]UserScheduleAssignment, error)
	SaveAssignment(ctx context.Context, a *UserScheduleAssignment) error
}

// ExceptionRepository stores shift exceptions.
type ExceptionRepository interface {
	GetException(ctx context.Context, id string) (*ShiftException, error)

	// ForUserInRange returns the user's exceptions whose target date falls in
	// [from, to], regardless of status; the overlay applies its own
	// effectiveness gate.
	ForUserInRange(ctx context.Context, userID string, from, to Date) ([]ShiftException, error)

	// SwapsTargetingUser returns swap exceptions filed by other users that
	// name userID as counterpart, with target date in [from, to], regardless
	// of status. The engine uses it to pull the filing side into scope when
	// only the counterpart is queried.
	SwapsTargetingUser(ctx context.Context, userID string, from, to Date) ([]ShiftException, error)

	// Pending returns every exception awaiting approval.
	Pending(ctx context.Context) ([]ShiftException, error)

	SaveException(ctx context.Context, exc *ShiftException) error
}
