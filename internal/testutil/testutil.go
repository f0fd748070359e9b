package testutil

import (
	"testing"

	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SampleRows returns a small reference dataset for Al-Nasiriyah ring R1
func SampleRows() []models.ReferenceRow {
	return []models.ReferenceRow{
		{City: "al-nasiriyah", Ring: "r1", Fdt: "3", Activity: "poles", PrimaryBoq: "PB-3", Boq: "100", Completed: "40", Remaining: "60"},
		{City: "Al-Nasiriyah", Ring: "R1", Fdt: "3", Activity: "Excavation", Boq: "250", Completed: "10", Remaining: "240"},
		{City: "Al-Nasiriyah", Ring: "R1", Fdt: "Feeder", Activity: "Feeder HDPE Pipe", Boq: "1200", Completed: "300", Remaining: "900"},
		{City: "Tikteet", Ring: "T1", Fdt: "1", Activity: "Poles", Boq: "5", Completed: "0", Remaining: "5"},
	}
}
