package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fibertrack/deployform/internal/errors"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/reference"
	"github.com/fibertrack/deployform/internal/repository"
	"github.com/fibertrack/deployform/pkg/sheets"
)

// backgroundSyncTimeout bounds syncs that nobody is waiting on
const backgroundSyncTimeout = 2 * time.Minute

// SyncResult summarizes a successful sync
type SyncResult struct {
	Total      int       `json:"total_records"`
	LastSynced time.Time `json:"last_synced"`
}

// SyncStatus is pushed to open forms whenever a sync starts or ends
type SyncStatus struct {
	Syncing    bool       `json:"syncing"`
	LastSynced *time.Time `json:"last_synced,omitempty"`
	Total      int        `json:"total_records"`
	Error      string     `json:"error,omitempty"`
}

// ColumnMapping names the spreadsheet column a row field is read from
type ColumnMapping struct {
	Field  string `json:"field"`
	Column string `json:"column"`
}

// Meta describes the cached dataset and where its fields come from
type Meta struct {
	LastSynced   *time.Time           `json:"last_synced"`
	TotalRecords int                  `json:"total_records"`
	Mapping      []ColumnMapping      `json:"mapping"`
	Sample       *models.ReferenceRow `json:"sample"`
}

var columnMapping = []ColumnMapping{
	{Field: "city", Column: "Col B"},
	{Field: "ring", Column: "Col D"},
	{Field: "fdt", Column: "Col F"},
	{Field: "activity", Column: "Col G"},
	{Field: "Primary BOQ", Column: "Col H"},
	{Field: "boq", Column: "Col I"},
	{Field: "completed", Column: "Col J"},
	{Field: "remaining", Column: "Col K"},
}

// ReferenceService keeps the reference dataset in step with the primary web app
type ReferenceService struct {
	log         logger.Logger
	repo        repository.FullRepository
	cache       *reference.Cache
	client      sheets.Client
	broadcaster Broadcaster
	group       singleflight.Group
	now         func() time.Time

	mu      sync.Mutex
	syncing bool
	lastErr string
	wg      sync.WaitGroup
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(log logger.Logger, repo repository.FullRepository, cache *reference.Cache, client sheets.Client) *ReferenceService {
	return &ReferenceService{
		log:    log,
		repo:   repo,
		cache:  cache,
		client: client,
		now:    time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ReferenceService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// LoadCached restores the last persisted dataset into the cache
func (s *ReferenceService) LoadCached(ctx context.Context) error {
	rows, at, err := s.repo.LoadReferenceRows(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to load cached reference rows")
	}
	if at.IsZero() && len(rows) == 0 {
		s.log.Debug("No cached reference dataset")
		return nil
	}
	d := s.cache.Restore(rows, at)
	s.log.Info("Restored cached reference dataset", "rows", d.Total(), "last_synced", at)
	return nil
}

// Sync fetches the dataset from the primary web app and installs it.
// Concurrent calls share one fetch. On failure the cache and the stored
// dataset are left as they were.
func (s *ReferenceService) Sync(ctx context.Context) (*SyncResult, error) {
	v, err, shared := s.group.Do("sync", func() (interface{}, error) {
		return s.sync(ctx)
	})
	if shared {
		s.log.Debug("Joined in-flight sync")
	}
	if err != nil {
		return nil, err
	}
	return v.(*SyncResult), nil
}

// SyncInBackground starts a sync and returns immediately. Failures are logged
// and pushed to clients.
func (s *ReferenceService) SyncInBackground() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundSyncTimeout)
		defer cancel()
		if _, err := s.Sync(ctx); err != nil {
			s.log.Warn("Background sync failed", "error", err)
		}
	}()
}

// Wait blocks until background syncs have finished
func (s *ReferenceService) Wait() {
	s.wg.Wait()
}

func (s *ReferenceService) sync(ctx context.Context) (*SyncResult, error) {
	url, err := s.repo.GetSetting(ctx, SettingPrimaryURL)
	if err != nil && err != repository.ErrNotFound {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to read primary URL")
	}
	if !IsWebAppURL(url) {
		return nil, ErrSyncNotConfigured
	}

	s.setSyncing(true, "")
	s.log.Info("Syncing reference dataset")

	result, err := s.client.Fetch(ctx, url)
	if err != nil {
		msg := syncFailureMessage(err)
		s.log.Warn("Sync failed", "error", err)
		s.setSyncing(false, msg)
		return nil, errors.Unavailable(msg, err)
	}

	rows := make([]models.ReferenceRow, len(result.Rows))
	for i, r := range result.Rows {
		rows[i] = models.ReferenceRow{
			City:       r.City,
			Ring:       r.Ring,
			Fdt:        r.Fdt,
			Activity:   r.Activity,
			PrimaryBoq: r.PrimaryBoq,
			Boq:        r.Boq,
			Completed:  r.Completed,
			Remaining:  r.Remaining,
			Notes:      r.Notes,
		}.Clean()
	}

	at := s.now()
	if err := s.repo.ReplaceReferenceRows(ctx, rows, at); err != nil {
		s.log.Error("Failed to store reference rows", "error", err)
		s.setSyncing(false, "Sync Error: could not save the dataset")
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to store reference rows")
	}
	d := s.cache.Replace(rows, at)

	s.log.Info("Reference dataset synced", "rows", d.Total())
	s.setSyncing(false, "")
	return &SyncResult{Total: d.Total(), LastSynced: at}, nil
}

// syncFailureMessage turns a fetch failure into the text shown to the user
func syncFailureMessage(err error) string {
	var transport *sheets.TransportError
	var status *sheets.StatusError
	var remote *sheets.RemoteError
	switch {
	case stderrors.As(err, &transport):
		return MsgSyncUnreachable
	case stderrors.As(err, &status):
		return msgSyncErrorPrefix + status.Error()
	case stderrors.As(err, &remote):
		return msgSyncErrorPrefix + remote.Message
	default:
		return msgSyncErrorPrefix + err.Error()
	}
}

func (s *ReferenceService) setSyncing(syncing bool, errMsg string) {
	s.mu.Lock()
	s.syncing = syncing
	s.lastErr = errMsg
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSyncStatus(s.Status())
	}
}

// Dataset returns the current dataset snapshot
func (s *ReferenceService) Dataset() reference.Dataset {
	return s.cache.Snapshot()
}

// Status reports whether a sync is running and how the last one ended
func (s *ReferenceService) Status() SyncStatus {
	d := s.cache.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SyncStatus{
		Syncing: s.syncing,
		Total:   d.Total(),
		Error:   s.lastErr,
	}
	if d.Synced() {
		at := d.LastSynced
		status.LastSynced = &at
	}
	return status
}

// Meta describes the cached dataset
func (s *ReferenceService) Meta() Meta {
	d := s.cache.Snapshot()
	meta := Meta{
		TotalRecords: d.Total(),
		Mapping:      columnMapping,
	}
	if d.Synced() {
		at := d.LastSynced
		meta.LastSynced = &at
	}
	if d.Total() > 0 {
		sample := d.Rows[0]
		meta.Sample = &sample
	}
	return meta
}
