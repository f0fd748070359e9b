package form

import (
	"github.com/fibertrack/deployform/internal/models"
)

// Level names one dropdown in the cascade
type Level string

const (
	LevelCity     Level = "city"
	LevelRing     Level = "ring"
	LevelFdt      Level = "fdt"
	LevelActivity Level = "activity"
)

// cascadeOrder is the dependency order of the selection fields
var cascadeOrder = []Level{LevelCity, LevelRing, LevelFdt, LevelActivity}

// Options holds the valid choices for every level of the cascade
type Options struct {
	City     []string `json:"city"`
	Ring     []string `json:"ring"`
	Fdt      []string `json:"fdt"`
	Activity []string `json:"activity"`
}

// OptionsFor returns the valid choices for level given the current selection.
// The result is always a fresh slice.
func (c Catalog) OptionsFor(level Level, sel models.Selection) []string {
	switch level {
	case LevelCity:
		return clone(c.Cities)
	case LevelRing:
		if sel.City == "" {
			return []string{}
		}
		return clone(c.Rings[sel.City])
	case LevelFdt:
		if sel.City == "" || sel.Ring == "" {
			return []string{}
		}
		if sel.FdtType == models.FdtFeeder {
			return []string{c.FeederLabel}
		}
		return clone(c.DistributionFdts[sel.City])
	case LevelActivity:
		if sel.City == "" || sel.Ring == "" || sel.Fdt == "" {
			return []string{}
		}
		if sel.FdtType == models.FdtFeeder {
			return []string{c.FeederActivity}
		}
		out := make([]string, 0, len(c.Activities))
		for _, a := range c.Activities {
			if a != c.FeederActivity {
				out = append(out, a)
			}
		}
		return out
	default:
		return []string{}
	}
}

// AllOptions resolves every level at once
func (c Catalog) AllOptions(sel models.Selection) Options {
	return Options{
		City:     c.OptionsFor(LevelCity, sel),
		Ring:     c.OptionsFor(LevelRing, sel),
		Fdt:      c.OptionsFor(LevelFdt, sel),
		Activity: c.OptionsFor(LevelActivity, sel),
	}
}

// Select sets one cascade field and clears every field downstream of it.
// Setting a field to its current value changes nothing.
func Select(sel models.Selection, level Level, value string) models.Selection {
	if get(sel, level) == value {
		return sel
	}
	sel = set(sel, level, value)
	clearing := false
	for _, l := range cascadeOrder {
		if clearing {
			sel = set(sel, l, "")
		}
		if l == level {
			clearing = true
		}
	}
	return sel
}

// SelectFdtType switches between distribution and feeder, clearing fdt and
// activity when the type actually changes
func SelectFdtType(sel models.Selection, t models.FdtType) models.Selection {
	if sel.FdtType == t {
		return sel
	}
	sel.FdtType = t
	sel.Fdt = ""
	sel.Activity = ""
	return sel
}

func get(sel models.Selection, level Level) string {
	switch level {
	case LevelCity:
		return sel.City
	case LevelRing:
		return sel.Ring
	case LevelFdt:
		return sel.Fdt
	case LevelActivity:
		return sel.Activity
	}
	return ""
}

func set(sel models.Selection, level Level, value string) models.Selection {
	switch level {
	case LevelCity:
		sel.City = value
	case LevelRing:
		sel.Ring = value
	case LevelFdt:
		sel.Fdt = value
	case LevelActivity:
		sel.Activity = value
	}
	return sel
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
