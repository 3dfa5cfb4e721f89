package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roayati/clubs/internal/models"
	"github.com/roayati/clubs/internal/services"
)

// POST /registrations
//
// Staff may set the policy, overrides and an existing student. Anyone else
// sends an application, and those fields are rejected as unknown.
func (h *Handlers) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	if IsStaff(r.Context()) {
		var in services.CreateInput
		if !decode(w, r, &in) {
			return
		}
		reg, err := h.Registrations.Create(r.Context(), in)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respond(w, http.StatusCreated, reg)
		return
	}

	var in services.ApplicationInput
	if !decode(w, r, &in) {
		return
	}
	reg, err := h.Registrations.Apply(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, applicantView(reg))
}

// applicantView hides the filed student profile and its family from
// callers without the staff token.
func applicantView(reg *models.Registration) *models.Registration {
	v := *reg
	v.Student = nil
	return &v
}

// GET /registrations/{id}
func (h *Handlers) GetRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	reg, err := h.Registrations.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, reg)
}

// GET /registrations/code/{code}
func (h *Handlers) GetRegistrationByCode(w http.ResponseWriter, r *http.Request) {
	reg, err := h.Registrations.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !IsStaff(r.Context()) {
		reg = applicantView(reg)
	}
	respond(w, http.StatusOK, reg)
}

// PATCH /registrations/{id}
func (h *Handlers) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.UpdateInput
	if !decode(w, r, &in) {
		return
	}
	reg, err := h.Registrations.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, reg)
}

type regAction func(ctx context.Context, id uint) (*models.Registration, error)

// Action serves POST /registrations/{id}/{action}.
func (h *Handlers) Action(fn regAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		reg, err := fn(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respond(w, http.StatusOK, reg)
	}
}

// GET /registrations/{id}/audit
func (h *Handlers) RegistrationAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	trail, err := h.Registrations.Audit(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, trail)
}

// GET /families/{id}
func (h *Handlers) GetFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	f, err := h.Registrations.GetFamily(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, f)
}

// POST /invoices/{id}/paid
func (h *Handlers) MarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	inv, err := h.Invoices.MarkPaid(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, inv)
}
