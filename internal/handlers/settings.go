package handlers

import (
	"net/http"

	"github.com/fibertrack/deployform/internal/services"
)

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		PrimaryURL:   req.PrimaryURL,
		SecondaryURL: req.SecondaryURL,
		Language:     req.Language,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

// handleShareQR serves a QR code that opens the form on another device
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Settings.ShareQR(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondFile(w, "image/png", "", png)
}
