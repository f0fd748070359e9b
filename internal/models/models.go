package models

// FdtType selects which FDT and activity option sets apply to a selection
type FdtType string

const (
	FdtDistribution FdtType = "distribution"
	FdtFeeder       FdtType = "feeder"
)

// Valid reports whether t is one of the known FDT types
func (t FdtType) Valid() bool {
	return t == FdtDistribution || t == FdtFeeder
}

// Selection is the in-progress set of cascading dropdown choices
type Selection struct {
	City     string  `json:"city"`
	Ring     string  `json:"ring"`
	FdtType  FdtType `json:"fdtType"`
	Fdt      string  `json:"fdt"`
	Activity string  `json:"activity"`
}

// ReferenceRow is one expected-quantity record from the synced spreadsheet.
// Cell values arrive as strings or numbers and are kept as text.
type ReferenceRow struct {
	City       string `json:"city"`
	Ring       string `json:"ring"`
	Fdt        string `json:"fdt"`
	Activity   string `json:"activity"`
	PrimaryBoq string `json:"primaryBoq,omitempty"`
	Boq        string `json:"boq"`
	Completed  string `json:"completed"`
	Remaining  string `json:"remaining"`
	Notes      string `json:"notes"`
}

// Entry is one submitted progress record. JSON keys match what the
// spreadsheet web apps expect in the delivery payload.
type Entry struct {
	ID         int64   `json:"id"`
	City       string  `json:"city"`
	Ring       string  `json:"ring"`
	WorkType   string  `json:"workType"`
	Fdt        string  `json:"fdt"`
	Activity   string  `json:"activity"`
	PrimaryBoq string  `json:"primaryBoq,omitempty"`
	Boq        float64 `json:"boq"`
	Completed  float64 `json:"completed"`
	Remaining  float64 `json:"remaining"`
	Date       string  `json:"date"`
	Notes      string  `json:"notes"`
}

// Work types accepted on an entry
const (
	WorkTypeNew    = "New"
	WorkTypeRework = "Rework"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
