/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface, decoupled from the domain types so
  the API contract can evolve without touching the engine.

NAMING CONVENTION:
  - *DTO:     response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run them through a
  shared validator instance before touching the domain.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"github.com/calvuzs3/qdue-engine/schedule"
)

// =============================================================================
// SCHEDULE EVENTS
// =============================================================================

// EventDTO is one schedule event in API responses.
type EventDTO struct {
	Date        string   `json:"date"`
	ShiftID     string   `json:"shift_id,omitempty"`
	ShiftName   string   `json:"shift_name,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	Rest        bool     `json:"rest,omitempty"`
	Teams       []string `json:"teams,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Overtime    bool     `json:"overtime,omitempty"`
	Mandatory   bool     `json:"mandatory,omitempty"`
	Temporary   bool     `json:"temporary,omitempty"`
	Modified    bool     `json:"modified,omitempty"`
	TemplateID  string   `json:"template_id,omitempty"`
	CycleDay    int      `json:"cycle_day"`
	UserID      string   `json:"user_id,omitempty"`
}

func eventDTO(ev schedule.ScheduleEvent) EventDTO {
	dto := EventDTO{
		Date:        ev.Date.String(),
		Teams:       ev.Teams,
		Title:       ev.Title,
		Description: ev.Description,
		Overtime:    ev.Overtime,
		Mandatory:   ev.Mandatory,
		Temporary:   ev.Temporary,
		Modified:    ev.Modified,
		TemplateID:  ev.SourceTemplateID,
		CycleDay:    ev.CycleDay,
		UserID:      ev.UserID,
	}
	if ev.Shift != nil {
		dto.ShiftID = ev.Shift.ID
		dto.ShiftName = ev.Shift.Name
		dto.Rest = ev.Shift.IsRestPeriod
		if !ev.Shift.IsRestPeriod {
			dto.Start = ev.Shift.Start.String()
			dto.End = ev.Shift.End.String()
		}
	}
	return dto
}

func eventDTOs(events []schedule.ScheduleEvent) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = eventDTO(ev)
	}
	return dtos
}

// =============================================================================
// TEMPLATES
// =============================================================================

// TemplateDTO is a template summary in list/get responses.
type TemplateDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	CycleDays      int      `json:"cycle_days"`
	UserDefined    bool     `json:"user_defined"`
	SupportedTeams []string `json:"supported_teams,omitempty"`
	Active         bool     `json:"active"`
	UsageCount     int      `json:"usage_count"`
}

func templateDTO(t schedule.WorkScheduleTemplate) TemplateDTO {
	return TemplateDTO{
		ID:             t.ID,
		Name:           t.Name,
		Type:           string(t.Type),
		CycleDays:      t.CycleDays,
		UserDefined:    t.UserDefined,
		SupportedTeams: t.SupportedTeams,
		Active:         t.Active,
		UsageCount:     t.UsageCount,
	}
}

// ShiftRequest describes one shift inside a submitted pattern.
type ShiftRequest struct {
	ID           string   `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Start        string   `json:"start" validate:"omitempty,len=5"`
	End          string   `json:"end" validate:"omitempty,len=5"`
	Rest         bool     `json:"rest"`
	Color        string   `json:"color"`
	BreakMinutes int      `json:"break_minutes" validate:"gte=0"`
	Teams        []string `json:"teams"`
}

// PatternRequest is one cycle day of a submitted template.
type PatternRequest struct {
	Shifts []ShiftRequest `json:"shifts" validate:"dive"`
}

// CreateTemplateRequest creates a custom template.
type CreateTemplateRequest struct {
	ID               string           `json:"id" validate:"required"`
	Name             string           `json:"name" validate:"required"`
	CycleDays        int              `json:"cycle_days" validate:"gt=0"`
	Patterns         []PatternRequest `json:"patterns" validate:"required,dive"`
	MinTeamsPerShift int              `json:"min_teams_per_shift" validate:"gte=0"`
	MaxTeamsPerShift int              `json:"max_teams_per_shift" validate:"gte=0"`
	SupportedTeams   []string         `json:"supported_teams"`
}

// ValidationResultDTO mirrors schedule.TemplateValidationResult.
type ValidationResultDTO struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// CreateAssignmentRequest places a user on a team under a rule.
type CreateAssignmentRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	TeamID           string `json:"team_id" validate:"required"`
	RecurrenceRuleID string `json:"recurrence_rule_id"`
	StartDate        string `json:"start_date" validate:"required"`
	EndDate          string `json:"end_date"`
	Permanent        bool   `json:"permanent"`
	Priority         string `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH OVERRIDE"`
}

// AssignmentDTO is an assignment in API responses.
type AssignmentDTO struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	TeamID           string `json:"team_id"`
	RecurrenceRuleID string `json:"recurrence_rule_id"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date,omitempty"`
	Permanent        bool   `json:"permanent"`
	Priority         string `json:"priority"`
	Status           string `json:"status"`
}

func assignmentDTO(a schedule.UserScheduleAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:               a.ID,
		UserID:           a.UserID,
		TeamID:           a.TeamID,
		RecurrenceRuleID: a.RecurrenceRuleID,
		StartDate:        a.StartDate.String(),
		Permanent:        a.Permanent,
		Priority:         a.Priority.String(),
		Status:           string(a.Status),
	}
	if a.EndDate != nil {
		dto.EndDate = a.EndDate.String()
	}
	return dto
}

// =============================================================================
// EXCEPTIONS
// =============================================================================

// CreateExceptionRequest files a new exception in draft state.
type CreateExceptionRequest struct {
	Type             string `json:"type" validate:"required"`
	UserID           string `json:"user_id" validate:"required"`
	TargetDate       string `json:"target_date" validate:"required"`
	FullDay          bool   `json:"full_day"`
	NewStart         string `json:"new_start"`
	NewEnd           string `json:"new_end"`
	DurationMinutes  int    `json:"duration_minutes" validate:"gte=0"`
	OriginalShiftID  string `json:"original_shift_id"`
	SwapWithUserID   string `json:"swap_with_user_id"`
	Priority         string `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	RequiresApproval bool   `json:"requires_approval"`
	Reason           string `json:"reason"`
}

// RejectExceptionRequest declines a pending exception.
type RejectExceptionRequest struct {
	RejectedBy string `json:"rejected_by" validate:"required"`
	Reason     string `json:"reason"`
}

// ApproveExceptionRequest accepts a pending exception.
type ApproveExceptionRequest struct {
	ApprovedBy string `json:"approved_by" validate:"required"`
}

// ExceptionDTO is an exception in API responses.
type ExceptionDTO struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	UserID           string `json:"user_id"`
	TargetDate       string `json:"target_date"`
	FullDay          bool   `json:"full_day"`
	Status           string `json:"status"`
	Priority         string `json:"priority"`
	RequiresApproval bool   `json:"requires_approval"`
	Reason           string `json:"reason,omitempty"`
	SwapWithUserID   string `json:"swap_with_user_id,omitempty"`
	ApprovedBy       string `json:"approved_by,omitempty"`
}

func exceptionDTO(e schedule.ShiftException) ExceptionDTO {
	return ExceptionDTO{
		ID:               e.ID,
		Type:             string(e.Type),
		UserID:           e.UserID,
		TargetDate:       e.TargetDate.String(),
		FullDay:          e.IsFullDay,
		Status:           string(e.Status),
		Priority:         e.Priority.String(),
		RequiresApproval: e.RequiresApproval,
		Reason:           e.Reason,
		SwapWithUserID:   e.SwapWithUserID,
		ApprovedBy:       e.ApprovedBy,
	}
}

// =============================================================================
// HOURS
// =============================================================================

// TeamHoursDTO is a per-team hours breakdown entry.
type TeamHoursDTO struct {
	Team          string `json:"team"`
	Shifts        int    `json:"shifts"`
	RegularHours  string `json:"regular_hours"`
	OvertimeHours string `json:"overtime_hours"`
	TotalHours    string `json:"total_hours"`
}

// HoursSummaryDTO is the worked-hours summary for a range.
type HoursSummaryDTO struct {
	Shifts        int            `json:"shifts"`
	RegularHours  string         `json:"regular_hours"`
	OvertimeHours string         `json:"overtime_hours"`
	TotalHours    string         `json:"total_hours"`
	ByTeam        []TeamHoursDTO `json:"by_team,omitempty"`
}

func hoursSummaryDTO(s schedule.HoursSummary) HoursSummaryDTO {
	dto := HoursSummaryDTO{
		Shifts:        s.Shifts,
		RegularHours:  s.RegularHours.StringFixed(2),
		OvertimeHours: s.OvertimeHours.StringFixed(2),
		TotalHours:    s.Total().StringFixed(2),
	}
	for _, th := range s.ByTeam {
		dto.ByTeam = append(dto.ByTeam, TeamHoursDTO{
			Team:          th.Team,
			Shifts:        th.Shifts,
			RegularHours:  th.RegularHours.StringFixed(2),
			OvertimeHours: th.OvertimeHours.StringFixed(2),
			TotalHours:    th.Total().StringFixed(2),
		})
	}
	return dto
}
