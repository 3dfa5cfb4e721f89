package handlers

import (
	"net/http"

	"github.com/roayati/clubs/internal/services"
)

// POST /clubs
func (h *Handlers) CreateClub(w http.ResponseWriter, r *http.Request) {
	var in services.ClubInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Terms.CreateClub(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

// GET /clubs/{id}
func (h *Handlers) GetClub(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.Terms.GetClub(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, c)
}

// POST /clubs/{id}/terms
func (h *Handlers) CreateTerm(w http.ResponseWriter, r *http.Request) {
	clubID, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.TermInput
	if !decode(w, r, &in) {
		return
	}
	t, err := h.Terms.CreateTerm(r.Context(), clubID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, t)
}

// GET /terms/{id}
func (h *Handlers) GetTerm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.Terms.GetTerm(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, v)
}
