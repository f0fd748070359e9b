package handlers

import (
	"net/http"
)

// handleIndex renders the form page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexPageData{Language: "en", Direction: "ltr"}
	if view, err := h.Settings.AllSettings(r.Context()); err == nil {
		data.Language = view.Language
		data.Direction = view.Direction
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.templates.Index.Execute(w, data)
}

func (h *Handlers) handleGetForm(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Form.View(r.Context()))
}

func (h *Handlers) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req FieldUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" {
		respondError(w, Validation("name is required"))
		return
	}

	view, err := h.Form.SetField(r.Context(), req.Name, req.Value)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleSetFdtType(w http.ResponseWriter, r *http.Request) {
	var req FdtTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Form.SetFdtType(r.Context(), req.FdtType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleClearForm(w http.ResponseWriter, r *http.Request) {
	view, err := h.Form.Clear(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	result, err := h.Form.Submit(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, result)
}
