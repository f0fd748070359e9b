package mock

import (
	"context"
	"time"

	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateEntryError = errors.New("database error")
//	svc := services.NewEntryService(log, mockRepo, delivery)
//	_, err := svc.Create(ctx, draft)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Entry Errors =====
	CreateEntryError  error
	GetEntryError     error
	ListEntriesError  error
	DeleteEntryError  error
	LastEntryIDError  error
	CountEntriesError error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	// ===== Reference Errors =====
	ReplaceReferenceRowsError error
	LoadReferenceRowsError    error

	// ===== Form Session Errors =====
	SaveFormStateError error
	LoadFormStateError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Entry Methods =====

func (m *Repository) CreateEntry(ctx context.Context, entry models.Entry) error {
	if m.CreateEntryError != nil {
		return m.CreateEntryError
	}
	return m.FullRepository.CreateEntry(ctx, entry)
}

func (m *Repository) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	if m.GetEntryError != nil {
		return nil, m.GetEntryError
	}
	return m.FullRepository.GetEntry(ctx, id)
}

func (m *Repository) ListEntries(ctx context.Context) ([]models.Entry, error) {
	if m.ListEntriesError != nil {
		return nil, m.ListEntriesError
	}
	return m.FullRepository.ListEntries(ctx)
}

func (m *Repository) DeleteEntry(ctx context.Context, id int64) error {
	if m.DeleteEntryError != nil {
		return m.DeleteEntryError
	}
	return m.FullRepository.DeleteEntry(ctx, id)
}

func (m *Repository) LastEntryID(ctx context.Context) (int64, error) {
	if m.LastEntryIDError != nil {
		return 0, m.LastEntryIDError
	}
	return m.FullRepository.LastEntryID(ctx)
}

func (m *Repository) CountEntries(ctx context.Context) (int, error) {
	if m.CountEntriesError != nil {
		return 0, m.CountEntriesError
	}
	return m.FullRepository.CountEntries(ctx)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

// ===== Reference Methods =====

func (m *Repository) ReplaceReferenceRows(ctx context.Context, rows []models.ReferenceRow, syncedAt time.Time) error {
	if m.ReplaceReferenceRowsError != nil {
		return m.ReplaceReferenceRowsError
	}
	return m.FullRepository.ReplaceReferenceRows(ctx, rows, syncedAt)
}

func (m *Repository) LoadReferenceRows(ctx context.Context) ([]models.ReferenceRow, time.Time, error) {
	if m.LoadReferenceRowsError != nil {
		return nil, time.Time{}, m.LoadReferenceRowsError
	}
	return m.FullRepository.LoadReferenceRows(ctx)
}

// ===== Form Session Methods =====

func (m *Repository) SaveFormState(ctx context.Context, state string) error {
	if m.SaveFormStateError != nil {
		return m.SaveFormStateError
	}
	return m.FullRepository.SaveFormState(ctx, state)
}

func (m *Repository) LoadFormState(ctx context.Context) (string, error) {
	if m.LoadFormStateError != nil {
		return "", m.LoadFormStateError
	}
	return m.FullRepository.LoadFormState(ctx)
}
