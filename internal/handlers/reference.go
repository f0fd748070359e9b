package handlers

import (
	"net/http"
	"strconv"

	"github.com/fibertrack/deployform/internal/form"
	"github.com/fibertrack/deployform/internal/models"
)

// handleGetReference returns the cached dataset filtered by the optional
// city, ring, fdt and activity query parameters. limit caps the rows returned.
func (h *Handlers) handleGetReference(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := models.Selection{
		City:     q.Get("city"),
		Ring:     q.Get("ring"),
		Fdt:      q.Get("fdt"),
		Activity: q.Get("activity"),
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, BadRequest("Invalid limit parameter"))
			return
		}
		limit = n
	}

	d := h.Reference.Dataset()
	rows := form.Project(sel, d.Rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	meta := h.Reference.Meta()
	respondOK(w, ReferenceResponse{
		Rows:         rows,
		Shown:        len(rows),
		TotalRecords: d.Total(),
		FilterActive: form.FilterActive(sel),
		LastSynced:   meta.LastSynced,
		Mapping:      meta.Mapping,
		Sample:       meta.Sample,
		Sync:         h.Reference.Status(),
	})
}

// handleSyncReference refreshes the dataset and waits for the result
func (h *Handlers) handleSyncReference(w http.ResponseWriter, r *http.Request) {
	result, err := h.Reference.Sync(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}
