package handlers

import (
	"time"

	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/services"
)

// EntriesResponse is the response for the entry list
type EntriesResponse struct {
	Entries []models.Entry `json:"entries"`
	Total   int            `json:"total"`
}

// ReferenceResponse is the filtered reference dataset with its metadata
type ReferenceResponse struct {
	Rows         []models.ReferenceRow    `json:"rows"`
	Shown        int                      `json:"shown"`
	TotalRecords int                      `json:"total_records"`
	FilterActive bool                     `json:"filter_active"`
	LastSynced   *time.Time               `json:"last_synced"`
	Mapping      []services.ColumnMapping `json:"mapping"`
	Sample       *models.ReferenceRow     `json:"sample"`
	Sync         services.SyncStatus      `json:"sync"`
}

// IndexPageData holds the data passed to the form page
type IndexPageData struct {
	Language  string
	Direction string
}

// LoginPageData holds data for the login template
type LoginPageData struct {
	Error string
}
