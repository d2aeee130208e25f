/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontends. Credentials are only
                 allowed when explicit origins are configured

ROUTE GROUPS:
  /api/offerings/*        Offerings, sessions, enrollment, waitlist
  /api/sessions/*         Session reads and attendance
  /api/access-requests/*  Access requests and review
  /api/admin/*            Counters and manual expiry sweep (admin only)
  /metrics                Prometheus scrape endpoint
  /healthz                Liveness

SECURITY NOTE:
  No authentication middleware. The X-Actor-ID header is trusted as-is and
  must be set by an authenticating proxy in front of this server.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/formation-engine/monitoring"
)

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins list allows any origin, without credentials.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	allowCredentials := true
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
		allowCredentials = false
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ActorHeader},
		AllowCredentials: allowCredentials,
	}))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", monitoring.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/offerings", func(r chi.Router) {
			r.Get("/", h.ListOfferings)
			r.Post("/", h.CreateOffering)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetOffering)
				r.Post("/status", h.SetOfferingStatus)

				r.Get("/sessions", h.ListSessions)
				r.Post("/sessions", h.CreateSession)

				r.Get("/enrollments", h.ListEnrollments)
				r.Post("/enrollments", h.EnrollDirect)
				r.Delete("/enrollments/{participant}", h.WithdrawEnrollment)

				r.Route("/waitlist", func(r chi.Router) {
					r.Get("/", h.ListWaitlist)
					r.Post("/", h.JoinWaitlist)
					r.Post("/reorganize", h.ReorganizeWaitlist)
					r.Post("/compact", h.CompactWaitlist)
					r.Post("/{participant}/offer", h.OfferPromotion)
					r.Post("/{participant}/finalize", h.FinalizePromotion)
					r.Post("/{participant}/decline", h.DeclinePromotion)
					r.Delete("/{participant}", h.DropFromWaitlist)
				})
			})
		})

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Get("/attendance", h.ListAttendance)
			r.Post("/attendance", h.RecordAttendance)
		})

		r.Route("/access-requests", func(r chi.Router) {
			r.Get("/", h.ListAccessRequests)
			r.Post("/", h.RequestAccess)
			r.Post("/{user}/approve", h.ApproveAccessRequest)
			r.Post("/{user}/reject", h.RejectAccessRequest)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Get("/counters", h.GetCounters)
			r.Post("/expire-offers", h.TriggerExpirySweep)
		})
	})

	return r
}
