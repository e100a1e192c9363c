/*
Package sqlite provides a SQLite-backed implementation of the schedule
repositories.

PURPOSE:
  Implements schedule.TemplateRepository, RecurrenceRuleRepository,
  AssignmentRepository and ExceptionRepository over a single SQLite file.
  The same patterns apply to a server-grade database - only SQL dialect
  details differ.

STORAGE LAYOUT:
  Templates and rules are documents: queried by ID, loaded whole, and only
  ever replaced whole. Their bodies are stored as JSON with a few extracted
  columns for listing and filtering. Assignments and exceptions are flat rows
  with the fields the engine queries on (user, dates, status) as real columns.

SOFT DELETION:
  Templates are deactivated, never deleted, so historical schedules stay
  resolvable. The active column exists only for authoring lists; Get ignores
  it.

WAL MODE:
  The database is opened with WAL so reads do not block the single writer.

USAGE:
  st, err := sqlite.New("./qdue.db")   // ":memory:" for tests
  defer st.Close()
  engine := schedule.NewScheduleEngine(st, st, st, st, ref, logger)

SEE ALSO:
  - schedule/repository.go: interface contracts
  - schedule/store/memory.go: in-memory equivalent
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calvuzs3/qdue-engine/schedule"
)

// Store implements every schedule repository interface over SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS templates (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		type          TEXT NOT NULL,
		cycle_days    INTEGER NOT NULL,
		user_defined  INTEGER NOT NULL DEFAULT 0,
		body          TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		last_modified TEXT NOT NULL,
		usage_count   INTEGER NOT NULL DEFAULT 0,
		active        INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS recurrence_rules (
		id     TEXT PRIMARY KEY,
		body   TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS user_assignments (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		team_id    TEXT NOT NULL,
		rule_id    TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT,
		permanent  INTEGER NOT NULL DEFAULT 0,
		priority   INTEGER NOT NULL DEFAULT 1,
		status     TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_user ON user_assignments(user_id);

	CREATE TABLE IF NOT EXISTS shift_exceptions (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		type              TEXT NOT NULL,
		target_date       TEXT NOT NULL,
		status            TEXT NOT NULL,
		requires_approval INTEGER NOT NULL DEFAULT 0,
		priority          INTEGER NOT NULL DEFAULT 1,
		swap_with_user    TEXT NOT NULL DEFAULT '',
		body              TEXT NOT NULL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exceptions_user_date ON shift_exceptions(user_id, target_date);
	CREATE INDEX IF NOT EXISTS idx_exceptions_status ON shift_exceptions(status);
	CREATE INDEX IF NOT EXISTS idx_exceptions_swap_with ON shift_exceptions(swap_with_user, target_date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

// templateBody is the JSON document portion of a template row.
type templateBody struct {
	Patterns               []schedule.WorkSchedulePattern `json:"patterns"`
	MinTeamsPerShift       int                            `json:"min_teams_per_shift"`
	MaxTeamsPerShift       int                            `json:"max_teams_per_shift"`
	SupportedTeams         []string                       `json:"supported_teams"`
	RequiresTeamAssignment bool                           `json:"requires_team_assignment"`
}

func (s *Store) SaveTemplate(ctx context.Context, tmpl *schedule.WorkScheduleTemplate) error {
	body, err := json.Marshal(templateBody{
		Patterns:               tmpl.Patterns,
		MinTeamsPerShift:       tmpl.MinTeamsPerShift,
		MaxTeamsPerShift:       tmpl.MaxTeamsPerShift,
		SupportedTeams:         tmpl.SupportedTeams,
		RequiresTeamAssignment: tmpl.RequiresTeamAssignment,
	})
	if err != nil {
		return fmt.Errorf("encode template %s: %w", tmpl.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, type, cycle_days, user_defined, body, created_at, last_modified, usage_count, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, type = excluded.type, cycle_days = excluded.cycle_days,
			user_defined = excluded.user_defined, body = excluded.body,
			last_modified = excluded.last_modified, usage_count = excluded.usage_count,
			active = excluded.active`,
		tmpl.ID, tmpl.Name, string(tmpl.Type), tmpl.CycleDays, tmpl.UserDefined, string(body),
		tmpl.CreatedAt.Format(time.RFC3339), tmpl.LastModified.Format(time.RFC3339),
		tmpl.UsageCount, tmpl.Active)
	if err != nil {
		return fmt.Errorf("save template %s: %w", tmpl.ID, err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*schedule.WorkScheduleTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, cycle_days, user_defined, body, created_at, last_modified, usage_count, active
		FROM templates WHERE id = ?`, id)
	tmpl, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, &schedule.NotFoundError{Kind: "template", ID: id}
	}
	return tmpl, err
}

func (s *Store) ListTemplates(ctx context.Context) ([]schedule.WorkScheduleTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, cycle_days, user_defined, body, created_at, last_modified, usage_count, active
		FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []schedule.WorkScheduleTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tmpl)
	}
	return out, rows.Err()
}

func (s *Store) DeactivateTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET active = 0, last_modified = ? WHERE id = ?`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("deactivate template %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &schedule.NotFoundError{Kind: "template", ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*schedule.WorkScheduleTemplate, error) {
	var (
		tmpl                    schedule.WorkScheduleTemplate
		typ, body, created, mod string
	)
	err := row.Scan(&tmpl.ID, &tmpl.Name, &typ, &tmpl.CycleDays, &tmpl.UserDefined,
		&body, &created, &mod, &tmpl.UsageCount, &tmpl.Active)
	if err != nil {
		return nil, err
	}
	tmpl.Type = schedule.TemplateType(typ)

	var b templateBody
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", tmpl.ID, err)
	}
	tmpl.Patterns = b.Patterns
	tmpl.MinTeamsPerShift = b.MinTeamsPerShift
	tmpl.MaxTeamsPerShift = b.MaxTeamsPerShift
	tmpl.SupportedTeams = b.SupportedTeams
	tmpl.RequiresTeamAssignment = b.RequiresTeamAssignment

	tmpl.CreatedAt, _ = time.Parse(time.RFC3339, created)
	tmpl.LastModified, _ = time.Parse(time.RFC3339, mod)
	return &tmpl, nil
}

// =============================================================================
// RECURRENCE RULES
// =============================================================================

func (s *Store) SaveRule(ctx context.Context, rule *schedule.RecurrenceRule) error {
	body, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("encode rule %s: %w", rule.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recurrence_rules (id, body, active) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, active = excluded.active`,
		rule.ID, string(body), rule.Active)
	if err != nil {
		return fmt.Errorf("save rule %s: %w", rule.ID, err)
	}
	return nil
}

func (s *Store) GetRule(ctx context.Context, id string) (*schedule.RecurrenceRule, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM recurrence_rules WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, &schedule.NotFoundError{Kind: "recurrence rule", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get rule %s: %w", id, err)
	}
	var rule schedule.RecurrenceRule
	if err := json.Unmarshal([]byte(body), &rule); err != nil {
		return nil, fmt.Errorf("decode rule %s: %w", id, err)
	}
	return &rule, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, a *schedule.UserScheduleAssignment) error {
	var endDate any
	if a.EndDate != nil {
		endDate = a.EndDate.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_assignments (id, user_id, team_id, rule_id, start_date, end_date, permanent, priority, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id, team_id = excluded.team_id, rule_id = excluded.rule_id,
			start_date = excluded.start_date, end_date = excluded.end_date,
			permanent = excluded.permanent, priority = excluded.priority, status = excluded.status`,
		a.ID, a.UserID, a.TeamID, a.RecurrenceRuleID, a.StartDate.String(), endDate,
		a.Permanent, int(a.Priority), string(a.Status), a.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save assignment %s: %w", a.ID, err)
	}
	return nil
}

func (s *Store) ForUser(ctx context.Context, userID string) ([]schedule.UserScheduleAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, team_id, rule_id, start_date, end_date, permanent, priority, status, created_at
		FROM user_assignments WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("load assignments for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []schedule.UserScheduleAssignment
	for rows.Next() {
		var (
			a              schedule.UserScheduleAssignment
			start, created string
			endDate        sql.NullString
			priority       int
			status         string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.TeamID, &a.RecurrenceRuleID,
			&start, &endDate, &a.Permanent, &priority, &status, &created); err != nil {
			return nil, err
		}
		if a.StartDate, err = schedule.ParseDate(start); err != nil {
			return nil, fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		if endDate.Valid {
			d, err := schedule.ParseDate(endDate.String)
			if err != nil {
				return nil, fmt.Errorf("assignment %s: %w", a.ID, err)
			}
			a.EndDate = &d
		}
		a.Priority = schedule.AssignmentPriority(priority)
		a.Status = schedule.AssignmentStatus(status)
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// EXCEPTIONS
// =============================================================================

func (s *Store) SaveException(ctx context.Context, exc *schedule.ShiftException) error {
	body, err := json.Marshal(exc)
	if err != nil {
		return fmt.Errorf("encode exception %s: %w", exc.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shift_exceptions (id, user_id, type, target_date, status, requires_approval, priority, swap_with_user, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id, type = excluded.type, target_date = excluded.target_date,
			status = excluded.status, requires_approval = excluded.requires_approval,
			priority = excluded.priority, swap_with_user = excluded.swap_with_user,
			body = excluded.body, updated_at = excluded.updated_at`,
		exc.ID, exc.UserID, string(exc.Type), exc.TargetDate.String(), string(exc.Status),
		exc.RequiresApproval, int(exc.Priority), exc.SwapWithUserID, string(body),
		exc.CreatedAt.Format(time.RFC3339), exc.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save exception %s: %w", exc.ID, err)
	}
	return nil
}

func (s *Store) GetException(ctx context.Context, id string) (*schedule.ShiftException, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM shift_exceptions WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, &schedule.NotFoundError{Kind: "exception", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get exception %s: %w", id, err)
	}
	return decodeException(id, body)
}

func (s *Store) ForUserInRange(ctx context.Context, userID string, from, to schedule.Date) ([]schedule.ShiftException, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body FROM shift_exceptions
		WHERE user_id = ? AND target_date >= ? AND target_date <= ?
		ORDER BY target_date`, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("load exceptions for %s: %w", userID, err)
	}
	return collectExceptions(rows)
}

func (s *Store) SwapsTargetingUser(ctx context.Context, userID string, from, to schedule.Date) ([]schedule.ShiftException, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body FROM shift_exceptions
		WHERE type = ? AND swap_with_user = ? AND target_date >= ? AND target_date <= ?
		ORDER BY target_date`,
		string(schedule.ExceptionShiftSwap), userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("load swaps targeting %s: %w", userID, err)
	}
	return collectExceptions(rows)
}

func (s *Store) Pending(ctx context.Context) ([]schedule.ShiftException, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body FROM shift_exceptions WHERE status = ? ORDER BY target_date`,
		string(schedule.ExceptionPending))
	if err != nil {
		return nil, fmt.Errorf("load pending exceptions: %w", err)
	}
	return collectExceptions(rows)
}

func collectExceptions(rows *sql.Rows) ([]schedule.ShiftException, error) {
	defer rows.Close()
	var out []schedule.ShiftException
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		exc, err := decodeException(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, *exc)
	}
	return out, rows.Err()
}

func decodeException(id, body string) (*schedule.ShiftException, error) {
	var exc schedule.ShiftException
	if err := json.Unmarshal([]byte(body), &exc); err != nil {
		return nil, fmt.Errorf("decode exception %s: %w", id, err)
	}
	return &exc, nil
}
