package models

import "strings"

// legacyCityAliases maps normalized historical spellings to the canonical city name
var legacyCityAliases = map[string]string{
	"tikteet": "Tikrit",
}

// Normalize is the comparison form of a cell value: trimmed and case-folded
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalCity trims a city name and replaces known legacy aliases
func CanonicalCity(city string) string {
	if canonical, ok := legacyCityAliases[Normalize(city)]; ok {
		return canonical
	}
	return strings.TrimSpace(city)
}

// Clean applies the ingestion rules to a reference row
func (r ReferenceRow) Clean() ReferenceRow {
	r.City = CanonicalCity(r.City)
	r.Ring = strings.TrimSpace(r.Ring)
	r.Fdt = strings.TrimSpace(r.Fdt)
	r.Activity = strings.TrimSpace(r.Activity)
	r.PrimaryBoq = strings.TrimSpace(r.PrimaryBoq)
	r.Boq = strings.TrimSpace(r.Boq)
	r.Completed = strings.TrimSpace(r.Completed)
	r.Remaining = strings.TrimSpace(r.Remaining)
	return r
}
