// Package reference holds the most recently synchronized reference dataset
package reference

import (
	"sync"
	"time"

	"github.com/fibertrack/deployform/internal/models"
)

// Dataset is an immutable snapshot of the cache
type Dataset struct {
	Rows       []models.ReferenceRow
	LastSynced time.Time
	Version    uint64
}

// Total returns the number of rows in the snapshot
func (d Dataset) Total() int {
	return len(d.Rows)
}

// Synced reports whether the dataset has ever been loaded
func (d Dataset) Synced() bool {
	return !d.LastSynced.IsZero()
}

// Cache holds the current dataset. Readers always see a whole dataset; a
// replacement becomes visible in one step.
type Cache struct {
	mu      sync.RWMutex
	current Dataset
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns the current dataset. Callers must not modify the rows.
func (c *Cache) Snapshot() Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Version returns the version of the current dataset
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Version
}

// Replace installs freshly synced rows. Rows are cleaned on the way in.
func (c *Cache) Replace(rows []models.ReferenceRow, at time.Time) Dataset {
	return c.install(rows, at)
}

// Restore installs rows loaded from local persistence
func (c *Cache) Restore(rows []models.ReferenceRow, at time.Time) Dataset {
	return c.install(rows, at)
}

func (c *Cache) install(rows []models.ReferenceRow, at time.Time) Dataset {
	cleaned := make([]models.ReferenceRow, len(rows))
	for i, r := range rows {
		cleaned[i] = r.Clean()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Dataset{
		Rows:       cleaned,
		LastSynced: at,
		Version:    c.current.Version + 1,
	}
	return c.current
}
