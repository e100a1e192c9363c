/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This is
  the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  unique ID per request for tracing
  2. Logger:     request logging
  3. Recoverer:  panic recovery (500 instead of crash)
  4. CORS:       cross-origin requests for a calendar frontend

ROUTE GROUPS:
  /api/templates/*    template catalog, authoring and validation
  /api/users/*        effective per-user schedules, hours, assignments
  /api/teams/*        base team schedules
  /api/assignments    assignment creation
  /api/exceptions/*   exception lifecycle and approvals

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Post("/validate", h.ValidateTemplate)
			r.Get("/{id}", h.GetTemplate)
			r.Delete("/{id}", h.DeactivateTemplate)
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/schedule", h.UserSchedule)
			r.Get("/hours", h.UserHours)
			r.Get("/assignments", h.ListUserAssignments)
		})

		r.Route("/teams/{id}", func(r chi.Router) {
			r.Get("/schedule", h.TeamSchedule)
		})

		r.Post("/assignments", h.CreateAssignment)

		r.Route("/exceptions", func(r chi.Router) {
			r.Post("/", h.CreateException)
			r.Get("/pending", h.ListPendingExceptions)
			r.Post("/{id}/submit", h.SubmitException)
			r.Post("/{id}/approve", h.ApproveException)
			r.Post("/{id}/reject", h.RejectException)
			r.Post("/{id}/cancel", h.CancelException)
		})
	})

	return r
}
