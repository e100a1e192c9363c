// Package store provides in-memory implementations of the schedule
// repositories, used by tests and development servers. All methods copy on
// read so callers hold stable snapshots.
package store

import (
	"context"
	"sync"

	"github.com/calvuzs3/qdue-engine/schedule"
)

// Memory implements every schedule repository interface in memory.
type Memory struct {
	mu          sync.RWMutex
	templates   map[string]schedule.WorkScheduleTemplate
	rules       map[string]schedule.RecurrenceRule
	assignments map[string][]schedule.UserScheduleAssignment
	exceptions  map[string]schedule.ShiftException
}

func NewMemory() *Memory {
	return &Memory{
		templates:   make(map[string]schedule.WorkScheduleTemplate),
		rules:       make(map[string]schedule.RecurrenceRule),
		assignments: make(map[string][]schedule.UserScheduleAssignment),
		exceptions:  make(map[string]schedule.ShiftException),
	}
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (m *Memory) GetTemplate(_ context.Context, id string) (*schedule.WorkScheduleTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tmpl, ok := m.templates[id]
	if !ok {
		return nil, &schedule.NotFoundError{Kind: "template", ID: id}
	}
	return &tmpl, nil
}

func (m *Memory) ListTemplates(_ context.Context) ([]schedule.WorkScheduleTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.WorkScheduleTemplate, 0, len(m.templates))
	for _, tmpl := range m.templates {
		out = append(out, tmpl)
	}
	return out, nil
}

func (m *Memory) SaveTemplate(_ context.Context, tmpl *schedule.WorkScheduleTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[tmpl.ID] = *tmpl
	return nil
}

func (m *Memory) DeactivateTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl, ok := m.templates[id]
	if !ok {
		return &schedule.NotFoundError{Kind: "template", ID: id}
	}
	tmpl.Active = false
	m.templates[id] = tmpl
	return nil
}

// =============================================================================
// RULES
// =============================================================================

func (m *Memory) GetRule(_ context.Context, id string) (*schedule.RecurrenceRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[id]
	if !ok {
		return nil, &schedule.NotFoundError{Kind: "recurrence rule", ID: id}
	}
	return &rule, nil
}

func (m *Memory) SaveRule(_ context.Context, rule *schedule.RecurrenceRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = *rule
	return nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (m *Memory) ForUser(_ context.Context, userID string) ([]schedule.UserScheduleAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.UserScheduleAssignment, len(m.assignments[userID]))
	copy(out, m.assignments[userID])
	return out, nil
}

func (m *Memory) SaveAssignment(_ context.Context, a *schedule.UserScheduleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.assignments[a.UserID]
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = *a
			return nil
		}
	}
	m.assignments[a.UserID] = append(list, *a)
	return nil
}

// =============================================================================
// EXCEPTIONS
// =============================================================================

func (m *Memory) GetException(_ context.Context, id string) (*schedule.ShiftException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exc, ok := m.exceptions[id]
	if !ok {
		return nil, &schedule.NotFoundError{Kind: "exception", ID: id}
	}
	return &exc, nil
}

func (m *Memory) ForUserInRange(_ context.Context, userID string, from, to schedule.Date) ([]schedule.ShiftException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.ShiftException
	for _, exc := range m.exceptions {
		if exc.UserID != userID {
			continue
		}
		if exc.TargetDate.AfterOrEqual(from) && exc.TargetDate.BeforeOrEqual(to) {
			out = append(out, exc)
		}
	}
	return out, nil
}

func (m *Memory) SwapsTargetingUser(_ context.Context, userID string, from, to schedule.Date) ([]schedule.ShiftException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.ShiftException
	for _, exc := range m.exceptions {
		if exc.Type != schedule.ExceptionShiftSwap || exc.SwapWithUserID != userID {
			continue
		}
		if exc.TargetDate.AfterOrEqual(from) && exc.TargetDate.BeforeOrEqual(to) {
			out = append(out, exc)
		}
	}
	return out, nil
}

func (m *Memory) Pending(_ context.Context) ([]schedule.ShiftException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schedule.ShiftException
	for _, exc := range m.exceptions {
		if exc.Status == schedule.ExceptionPending {
			out = append(out, exc)
		}
	}
	return out, nil
}

func (m *Memory) SaveException(_ context.Context, exc *schedule.ShiftException) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exceptions[exc.ID] = *exc
	return nil
}
