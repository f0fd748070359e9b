// Package form implements the deployment entry form: cascading option
// resolution, reference matching, derived quantity fields and the filtered
// reference view. Everything here is synchronous and free of I/O.
package form

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Catalog holds the fixed option tables behind the cascading dropdowns
type Catalog struct {
	Cities           []string            `yaml:"cities"`
	Rings            map[string][]string `yaml:"rings"`
	DistributionFdts map[string][]string `yaml:"distribution_fdts"`
	FeederLabel      string              `yaml:"feeder_label"`
	Activities       []string            `yaml:"activities"`
	FeederActivity   string              `yaml:"feeder_activity"`
}

// DefaultCatalog returns the built-in option tables
func DefaultCatalog() Catalog {
	return Catalog{
		Cities: []string{"Al-Nasiriyah"},
		Rings: map[string][]string{
			"Al-Nasiriyah": {"R1"},
		},
		DistributionFdts: map[string][]string{
			"Al-Nasiriyah": ordinalLabels(20),
		},
		FeederLabel: "Feeder",
		Activities: []string{
			"Poles",
			"Relocated Poles",
			"Excavation",
			"Reinstatement Concrete",
			"Reinstatement Asphalt",
			"Distribution HDPE Pipe",
			"Feeder HDPE Pipe",
			"HH Installation",
			"FDT Installation",
		},
		FeederActivity: "Feeder HDPE Pipe",
	}
}

// ParseCatalog reads a YAML catalogue. Sections left out of the document keep
// their default values.
func ParseCatalog(data []byte) (Catalog, error) {
	c := DefaultCatalog()
	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}

	if len(override.Cities) > 0 {
		c.Cities = override.Cities
	}
	if override.Rings != nil {
		c.Rings = override.Rings
	}
	if override.DistributionFdts != nil {
		c.DistributionFdts = override.DistributionFdts
	}
	if override.FeederLabel != "" {
		c.FeederLabel = override.FeederLabel
	}
	if len(override.Activities) > 0 {
		c.Activities = override.Activities
	}
	if override.FeederActivity != "" {
		c.FeederActivity = override.FeederActivity
	}
	return c, nil
}

// LoadCatalog reads a YAML catalogue file
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ordinalLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}
