package repository

import (
	"context"
	"time"

	"github.com/fibertrack/deployform/internal/models"
)

// EntryRepository defines submitted entry operations
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry models.Entry) error
	GetEntry(ctx context.Context, id int64) (*models.Entry, error)
	ListEntries(ctx context.Context) ([]models.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	LastEntryID(ctx context.Context) (int64, error)
	CountEntries(ctx context.Context) (int, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// ReferenceRepository persists the last synced reference dataset
type ReferenceRepository interface {
	ReplaceReferenceRows(ctx context.Context, rows []models.ReferenceRow, syncedAt time.Time) error
	LoadReferenceRows(ctx context.Context) ([]models.ReferenceRow, time.Time, error)
}

// FormStateRepository persists the open form session as an opaque document
type FormStateRepository interface {
	SaveFormState(ctx context.Context, state string) error
	LoadFormState(ctx context.Context) (string, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	EntryRepository
	SettingsRepository
	ReferenceRepository
	FormStateRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
