/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. RequireAuth / RequireManagement on the protected route groups

ROUTE GROUPS:
  /api/auth/*           Login and logout (public)
  /api/data/*           Record CRUD, validation, conversion
  /api/dashboard/*      Per-rep rollups
  /api/management/*     Team rollup (management only)
  /api/settings/*       Enablement, cutoff, day-off calendar (management only)
  /api/users/*          Sales roster
  /api/upload           File-storage proxy
  /api/export           Full-period dump (management only)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Session middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. allowedOrigins
// feeds the CORS policy; an empty list means same-origin only.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		// Everything else requires a session
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			// Record routes
			r.Route("/data/{collection}", func(r chi.Router) {
				r.Get("/", h.ListRecords)
				r.Post("/", h.SubmitRecord)
				r.Get("/{id}", h.GetRecord)
				r.Put("/{id}", h.UpdateRecord)
				r.Post("/{id}/convert", h.ConvertRecord)

				r.Group(func(r chi.Router) {
					r.Use(h.RequireManagement)
					r.Delete("/{id}", h.DeleteRecord)
					r.Post("/{id}/validate", h.ValidateRecord)
				})
			})

			// Dashboard routes
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", h.Dashboard)
				r.Get("/matrix", h.Matrix)
			})

			// User and upload routes
			r.Get("/users/sales", h.ListSalesUsers)
			r.Post("/upload", h.UploadFile)

			// Management routes
			r.Group(func(r chi.Router) {
				r.Use(h.RequireManagement)

				r.Get("/management/summary", h.Summary)
				r.Get("/export", h.Export)

				r.Route("/settings", func(r chi.Router) {
					r.Get("/kpi", h.GetEnablement)
					r.Put("/kpi", h.SaveEnablement)
					r.Get("/cutoff", h.GetCutoff)
					r.Put("/cutoff", h.SaveCutoff)
					r.Get("/timeoff", h.ListTimeOff)
					r.Post("/timeoff", h.AddTimeOff)
					r.Delete("/timeoff/{id}", h.DeleteTimeOff)
				})
			})
		})
	})

	return r
}
