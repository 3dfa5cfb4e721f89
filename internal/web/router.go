package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/handlers"
	"github.com/roayati/clubs/internal/logging"
)

// Router mounts the JSON API. Families, admin actions and catalogue writes
// sit behind the staff token; applying and checking a code are public, and
// an anonymous application cannot set pricing or link a filed student.
func Router(h *handlers.Handlers, staffToken string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.IdentifyStaff(staffToken))
	r.Use(logging.AccessLog(log))
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", handlers.Health)
	r.Get("/clubs/{id}", h.GetClub)
	r.Get("/terms/{id}", h.GetTerm)
	r.Post("/registrations", h.CreateRegistration)
	r.Get("/registrations/code/{code}", h.GetRegistrationByCode)
	r.Get("/qr/{code}.png", h.QR)

	// Staff
	r.Group(func(st chi.Router) {
		st.Use(handlers.RequireStaff)

		st.Post("/clubs", h.CreateClub)
		st.Post("/clubs/{id}/terms", h.CreateTerm)
		st.Get("/families/{id}", h.GetFamily)

		st.Route("/registrations/{id}", func(rr chi.Router) {
			rr.Get("/", h.GetRegistration)
			rr.Patch("/", h.UpdateRegistration)
			rr.Get("/audit", h.RegistrationAudit)
			rr.Post("/confirm", h.Action(h.Registrations.Confirm))
			rr.Post("/approve", h.Action(h.Registrations.Approve))
			rr.Post("/reject", h.Action(h.Registrations.Reject))
			rr.Post("/cancel", h.Action(h.Registrations.Cancel))
			rr.Post("/reset", h.Action(h.Registrations.ResetToDraft))
			rr.Post("/recompute", h.Action(h.Registrations.Recompute))
		})

		st.Post("/invoices/{id}/paid", h.MarkInvoicePaid)
	})

	return r
}
