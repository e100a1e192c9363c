/*
handlers.go - HTTP handlers over the schedule engine

PURPOSE:
  Implements the REST handlers: templates, per-user and per-team schedules,
  assignments, exceptions and the approval workflow, hours summaries.
  Handlers translate HTTP to engine/repository calls and back; no scheduling
  logic lives here.

ERROR MAPPING:
  - malformed input / failed validation  -> 400
  - missing records                      -> 404
  - workflow violations (bad transition) -> 409
  - everything else                      -> 500

SEE ALSO:
  - dto.go:    request/response shapes
  - server.go: routing
*/
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/calvuzs3/qdue-engine/quattrodue"
	"github.com/calvuzs3/qdue-engine/schedule"
)

// Repositories bundles every store interface the handlers need.
type Repositories interface {
	schedule.TemplateRepository
	schedule.RecurrenceRuleRepository
	schedule.AssignmentRepository
	schedule.ExceptionRepository
}

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Repos  Repositories
	Engine *schedule.ScheduleEngine

	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler builds a handler over the repositories and engine.
func NewHandler(repos Repositories, engine *schedule.ScheduleEngine, log zerolog.Logger) *Handler {
	return &Handler{
		Repos:    repos,
		Engine:   engine,
		validate: validator.New(),
		log:      log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeAndValidate decodes the body into v and runs struct validation.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

// dateRangeParams parses the from/to query parameters.
func dateRangeParams(r *http.Request) (schedule.Date, schedule.Date, error) {
	from, err := schedule.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return schedule.Date{}, schedule.Date{}, err
	}
	to, err := schedule.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return schedule.Date{}, schedule.Date{}, err
	}
	return from, to, nil
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, action string) {
	if schedule.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error().Err(err).Msg(action)
	writeError(w, http.StatusInternalServerError, "failed to "+action)
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Repos.ListTemplates(r.Context())
	if err != nil {
		h.writeRepoError(w, err, "list templates")
		return
	}
	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = templateDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.Repos.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "get template")
		return
	}
	writeJSON(w, http.StatusOK, templateDTO(*tmpl))
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	tmpl, err := templateFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := tmpl.Validate()
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, validationDTO(result))
		return
	}

	if err := h.Repos.SaveTemplate(r.Context(), tmpl); err != nil {
		h.writeRepoError(w, err, "save template")
		return
	}
	writeJSON(w, http.StatusCreated, templateDTO(*tmpl))
}

func (h *Handler) ValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	tmpl, err := templateFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, validationDTO(tmpl.Validate()))
}

func (h *Handler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Repos.DeactivateTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeRepoError(w, err, "deactivate template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validationDTO(result schedule.TemplateValidationResult) ValidationResultDTO {
	return ValidationResultDTO{
		Valid:    result.Valid,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
}

// templateFromRequest converts a create request into a custom template.
func templateFromRequest(req CreateTemplateRequest) (*schedule.WorkScheduleTemplate, error) {
	patterns := make([]schedule.WorkSchedulePattern, len(req.Patterns))
	for i, p := range req.Patterns {
		for _, sr := range p.Shifts {
			shift := &schedule.ShiftType{
				ID:           sr.ID,
				Name:         sr.Name,
				IsRestPeriod: sr.Rest,
				Color:        sr.Color,
				BreakMinutes: sr.BreakMinutes,
			}
			if !sr.Rest {
				start, err := schedule.ParseTimeOfDay(sr.Start)
				if err != nil {
					return nil, err
				}
				end, err := schedule.ParseTimeOfDay(sr.End)
				if err != nil {
					return nil, err
				}
				shift.Start, shift.End = start, end
			}
			patterns[i].Assignments = append(patterns[i].Assignments,
				schedule.NewWorkShiftAssignment(shift, sr.Teams...))
		}
	}

	now := time.Now()
	return &schedule.WorkScheduleTemplate{
		ID:               req.ID,
		Name:             req.Name,
		Type:             schedule.TemplateCustom,
		CycleDays:        req.CycleDays,
		Patterns:         patterns,
		UserDefined:      true,
		MinTeamsPerShift: req.MinTeamsPerShift,
		MaxTeamsPerShift: req.MaxTeamsPerShift,
		SupportedTeams:   req.SupportedTeams,
		CreatedAt:        now,
		LastModified:     now,
		Active:           true,
	}, nil
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

func (h *Handler) UserSchedule(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := h.Engine.EffectiveSchedule(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		h.writeRepoError(w, err, "compute schedule")
		return
	}
	writeJSON(w, http.StatusOK, eventDTOs(events))
}

func (h *Handler) UserHours(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := h.Engine.EffectiveSchedule(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		h.writeRepoError(w, err, "compute schedule")
		return
	}
	writeJSON(w, http.StatusOK, hoursSummaryDTO(schedule.SummarizeHours(events)))
}

func (h *Handler) TeamSchedule(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	templateID := r.URL.Query().Get("template")
	if templateID == "" {
		templateID = quattrodue.TemplateID
	}
	events, err := h.Engine.TeamSchedule(r.Context(), templateID, chi.URLParam(r, "id"), from, to)
	if err != nil {
		h.writeRepoError(w, err, "compute team schedule")
		return
	}
	writeJSON(w, http.StatusOK, eventDTOs(events))
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a := &schedule.UserScheduleAssignment{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		TeamID:           req.TeamID,
		RecurrenceRuleID: req.RecurrenceRuleID,
		StartDate:        start,
		Permanent:        req.Permanent,
		Priority:         parseAssignmentPriority(req.Priority),
		Status:           schedule.AssignmentActive,
		CreatedAt:        time.Now(),
	}

	if req.EndDate != "" {
		end, err := schedule.ParseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.EndDate = &end
	}

	// Default to the standard team rule when none is given and the team is
	// one of the nine QuattroDue teams.
	if a.RecurrenceRuleID == "" {
		team := quattrodue.TeamByName(req.TeamID)
		if team == nil {
			writeError(w, http.StatusBadRequest, "recurrence_rule_id required for non-standard teams")
			return
		}
		a.RecurrenceRuleID = quattrodue.TeamRule(*team).ID
	}

	if err := h.Repos.SaveAssignment(r.Context(), a); err != nil {
		h.writeRepoError(w, err, "save assignment")
		return
	}
	writeJSON(w, http.StatusCreated, assignmentDTO(*a))
}

func (h *Handler) ListUserAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Repos.ForUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "list assignments")
		return
	}
	dtos := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		dtos[i] = assignmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func parseAssignmentPriority(s string) schedule.AssignmentPriority {
	switch strings.ToUpper(s) {
	case "LOW":
		return schedule.AssignmentPriorityLow
	case "HIGH":
		return schedule.AssignmentPriorityHigh
	case "OVERRIDE":
		return schedule.AssignmentPriorityOverride
	default:
		return schedule.AssignmentPriorityNormal
	}
}

// =============================================================================
// EXCEPTION HANDLERS
// =============================================================================

func (h *Handler) CreateException(w http.ResponseWriter, r *http.Request) {
	var req CreateExceptionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	target, err := schedule.ParseDate(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	exc := &schedule.ShiftException{
		ID:               uuid.NewString(),
		Type:             schedule.ExceptionType(strings.ToUpper(req.Type)),
		UserID:           req.UserID,
		TargetDate:       target,
		IsFullDay:        req.FullDay,
		DurationMinutes:  req.DurationMinutes,
		OriginalShiftID:  req.OriginalShiftID,
		SwapWithUserID:   req.SwapWithUserID,
		Status:           schedule.ExceptionDraft,
		RequiresApproval: req.RequiresApproval,
		Priority:         parseExceptionPriority(req.Priority),
		Reason:           req.Reason,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if req.NewStart != "" {
		t, err := schedule.ParseTimeOfDay(req.NewStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		exc.NewStart = &t
	}
	if req.NewEnd != "" {
		t, err := schedule.ParseTimeOfDay(req.NewEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		exc.NewEnd = &t
	}

	if err := h.Repos.SaveException(r.Context(), exc); err != nil {
		h.writeRepoError(w, err, "save exception")
		return
	}
	writeJSON(w, http.StatusCreated, exceptionDTO(*exc))
}

func (h *Handler) ListPendingExceptions(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Repos.Pending(r.Context())
	if err != nil {
		h.writeRepoError(w, err, "list pending exceptions")
		return
	}
	dtos := make([]ExceptionDTO, len(pending))
	for i, e := range pending {
		dtos[i] = exceptionDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// transitionException loads, mutates and saves an exception under the
// workflow state machine; transition violations map to 409.
func (h *Handler) transitionException(w http.ResponseWriter, r *http.Request, fn func(*schedule.ShiftException) error) {
	exc, err := h.Repos.GetException(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "get exception")
		return
	}
	if err := fn(exc); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := h.Repos.SaveException(r.Context(), exc); err != nil {
		h.writeRepoError(w, err, "save exception")
		return
	}
	writeJSON(w, http.StatusOK, exceptionDTO(*exc))
}

func (h *Handler) SubmitException(w http.ResponseWriter, r *http.Request) {
	h.transitionException(w, r, func(exc *schedule.ShiftException) error {
		return exc.Submit(time.Now())
	})
}

func (h *Handler) ApproveException(w http.ResponseWriter, r *http.Request) {
	var req ApproveExceptionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	h.transitionException(w, r, func(exc *schedule.ShiftException) error {
		return exc.Approve(req.ApprovedBy, time.Now())
	})
}

func (h *Handler) RejectException(w http.ResponseWriter, r *http.Request) {
	var req RejectExceptionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	h.transitionException(w, r, func(exc *schedule.ShiftException) error {
		return exc.Reject(req.RejectedBy, req.Reason, time.Now())
	})
}

func (h *Handler) CancelException(w http.ResponseWriter, r *http.Request) {
	h.transitionException(w, r, func(exc *schedule.ShiftException) error {
		return exc.Cancel(time.Now())
	})
}

func parseExceptionPriority(s string) schedule.ExceptionPriority {
	switch strings.ToUpper(s) {
	case "LOW":
		return schedule.ExceptionPriorityLow
	case "HIGH":
		return schedule.ExceptionPriorityHigh
	case "URGENT":
		return schedule.ExceptionPriorityUrgent
	default:
		return schedule.ExceptionPriorityNormal
	}
}
