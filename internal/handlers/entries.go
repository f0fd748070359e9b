package handlers

import (
	"fmt"
	"net/http"
	"time"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Entries.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, EntriesResponse{Entries: entries, Total: len(entries)})
}

func (h *Handlers) handleExportEntries(w http.ResponseWriter, r *http.Request) {
	data, err := h.Entries.ExportXLSX(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	filename := fmt.Sprintf("deployment-entries-%s.xlsx", time.Now().Format("2006-01-02"))
	respondFile(w, xlsxContentType, filename, data)
}

func (h *Handlers) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Entries.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}
