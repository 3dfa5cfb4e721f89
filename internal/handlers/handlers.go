// Package handlers exposes the registration services over JSON.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/services"
)

type Handlers struct {
	Terms         *services.TermService
	Registrations *services.RegistrationService
	Invoices      *services.InvoiceService
	// BaseURL prefixes links encoded in QR codes; the request host is used
	// when empty.
	BaseURL string
	Log     *zap.Logger
}

type errorBody struct {
	Error  string                `json:"error"`
	Fields []services.FieldError `json:"fields,omitempty"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps service errors onto HTTP statuses.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respond(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, services.ErrNotFound):
		respond(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrDuplicateRegistration),
		errors.Is(err, services.ErrTermOverlap),
		errors.Is(err, services.ErrTermFull),
		errors.Is(err, services.ErrTermClosed):
		respond(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		h.Log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respond(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respond(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		respond(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return 0, false
	}
	return uint(id), true
}
