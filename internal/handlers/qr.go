package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// GET /qr/{code}.png
func (h *Handlers) QR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.NotFound(w, r)
		return
	}
	// ensure code exists
	if _, err := h.Registrations.GetByCode(r.Context(), code); err != nil {
		h.fail(w, r, err)
		return
	}

	// Encode the status URL so scanning opens the registration directly
	base := strings.TrimRight(h.BaseURL, "/")
	if base == "" {
		base = "http://" + r.Host
	}
	url := base + "/registrations/code/" + code

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
