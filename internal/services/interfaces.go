package services

import (
	"context"

	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/reference"
)

// Broadcaster defines the interface for pushing updates to open forms
type Broadcaster interface {
	BroadcastSyncStatus(status SyncStatus)
	BroadcastEntryCreated(entry models.Entry)
	BroadcastEntryDeleted(id int64)
	BroadcastDeliveryFailed(sink, message string)
}

// ReferenceServicer defines the interface for reference dataset operations
type ReferenceServicer interface {
	LoadCached(ctx context.Context) error
	Sync(ctx context.Context) (*SyncResult, error)
	SyncInBackground()
	Dataset() reference.Dataset
	Status() SyncStatus
	Meta() Meta
	SetBroadcaster(b Broadcaster)
}

// FormServicer defines the interface for the shared form session
type FormServicer interface {
	Load(ctx context.Context) error
	View(ctx context.Context) FormView
	SetField(ctx context.Context, name, value string) (*FormView, error)
	SetFdtType(ctx context.Context, fdtType string) (*FormView, error)
	Clear(ctx context.Context) (*FormView, error)
	Submit(ctx context.Context) (*SubmitResult, error)
}

// EntryServicer defines the interface for submitted entry operations
type EntryServicer interface {
	Create(ctx context.Context, draft models.Entry) (*CreateResult, error)
	List(ctx context.Context) ([]models.Entry, error)
	Delete(ctx context.Context, id int64) error
	ExportXLSX(ctx context.Context) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// DeliveryServicer defines the interface for forwarding entries to the sinks
type DeliveryServicer interface {
	Deliver(ctx context.Context, entry models.Entry) ([]string, error)
	Wait()
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetPrimaryURL(ctx context.Context) (string, error)
	GetSecondaryURL(ctx context.Context) (string, error)
	GetLanguage(ctx context.Context) (string, error)
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	AllSettings(ctx context.Context) (*SettingsView, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ShareQR(ctx context.Context) ([]byte, error)
	SetSyncer(s Syncer)
}

// Syncer starts a reference refresh without waiting for it
type Syncer interface {
	SyncInBackground()
}

// Ensure concrete types implement interfaces
var (
	_ ReferenceServicer = (*ReferenceService)(nil)
	_ FormServicer      = (*FormService)(nil)
	_ EntryServicer     = (*EntryService)(nil)
	_ DeliveryServicer  = (*DeliveryService)(nil)
	_ SettingsServicer  = (*SettingsService)(nil)
)
