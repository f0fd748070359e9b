package form

import (
	"github.com/fibertrack/deployform/internal/models"
)

// Match returns the first row whose city, ring, fdt and activity equal the
// selection's under normalization, and its index in rows. Nothing matches
// until all four selection fields are set.
//
// Duplicate rows are not rejected; the earliest one wins.
func Match(sel models.Selection, rows []models.ReferenceRow) (models.ReferenceRow, int, bool) {
	if sel.City == "" || sel.Ring == "" || sel.Fdt == "" || sel.Activity == "" {
		return models.ReferenceRow{}, -1, false
	}
	city := models.Normalize(sel.City)
	ring := models.Normalize(sel.Ring)
	fdt := models.Normalize(sel.Fdt)
	activity := models.Normalize(sel.Activity)

	for i, row := range rows {
		if models.Normalize(row.City) == city &&
			models.Normalize(row.Ring) == ring &&
			models.Normalize(row.Fdt) == fdt &&
			models.Normalize(row.Activity) == activity {
			return row, i, true
		}
	}
	return models.ReferenceRow{}, -1, false
}

// Project filters rows by every non-empty selection field, keeping dataset order
func Project(sel models.Selection, rows []models.ReferenceRow) []models.ReferenceRow {
	city := models.Normalize(sel.City)
	ring := models.Normalize(sel.Ring)
	fdt := models.Normalize(sel.Fdt)
	activity := models.Normalize(sel.Activity)

	out := make([]models.ReferenceRow, 0)
	for _, row := range rows {
		if sel.City != "" && models.Normalize(row.City) != city {
			continue
		}
		if sel.Ring != "" && models.Normalize(row.Ring) != ring {
			continue
		}
		if sel.Fdt != "" && models.Normalize(row.Fdt) != fdt {
			continue
		}
		if sel.Activity != "" && models.Normalize(row.Activity) != activity {
			continue
		}
		out = append(out, row)
	}
	return out
}

// FilterActive reports whether any selection field constrains the projection
func FilterActive(sel models.Selection) bool {
	return sel.City != "" || sel.Ring != "" || sel.Fdt != "" || sel.Activity != ""
}
