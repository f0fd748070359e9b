package services

import (
	"context"
	"sync"
	"time"

	"github.com/fibertrack/deployform/internal/errors"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/repository"
)

// CreateResult is a stored entry plus any warnings about its delivery
type CreateResult struct {
	Entry    models.Entry `json:"entry"`
	Warnings []string     `json:"warnings,omitempty"`
}

// EntryService handles submitted entries
type EntryService struct {
	log         logger.Logger
	repo        repository.EntryRepository
	delivery    DeliveryServicer
	broadcaster Broadcaster
	now         func() time.Time

	mu     sync.Mutex
	lastID int64
}

// NewEntryService creates a new EntryService
func NewEntryService(log logger.Logger, repo repository.EntryRepository, delivery DeliveryServicer) *EntryService {
	return &EntryService{
		log:      log,
		repo:     repo,
		delivery: delivery,
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *EntryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// nextID returns a millisecond timestamp, bumped past the last issued id so
// ids stay unique and increasing. Callers hold s.mu.
func (s *EntryService) nextID(ctx context.Context) (int64, error) {
	if s.lastID == 0 {
		last, err := s.repo.LastEntryID(ctx)
		if err != nil {
			return 0, err
		}
		s.lastID = last
	}
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id, nil
}

// Create stores draft under a new id and hands it to delivery. Delivery
// problems never undo the stored entry.
func (s *EntryService) Create(ctx context.Context, draft models.Entry) (*CreateResult, error) {
	s.mu.Lock()
	id, err := s.nextID(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to assign entry id")
	}
	draft.ID = id
	if err := s.repo.CreateEntry(ctx, draft); err != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to store entry")
	}
	s.lastID = id
	s.mu.Unlock()

	s.log.Info("Entry created", "id", id, "city", draft.City, "fdt", draft.Fdt, "activity", draft.Activity)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEntryCreated(draft)
	}

	result := &CreateResult{Entry: draft}
	if s.delivery != nil {
		warnings, err := s.delivery.Deliver(ctx, draft)
		if err != nil {
			s.log.Error("Could not start delivery", "entry", id, "error", err)
			warnings = append(warnings, MsgPrimaryFailed)
		}
		result.Warnings = warnings
	}
	return result, nil
}

// List returns all entries in creation order
func (s *EntryService) List(ctx context.Context) ([]models.Entry, error) {
	return s.repo.ListEntries(ctx)
}

// Delete removes an entry
func (s *EntryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return ErrEntryNotFound
		}
		return err
	}
	s.log.Info("Entry deleted", "id", id)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEntryDeleted(id)
	}
	return nil
}
