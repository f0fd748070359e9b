package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/reference"
	"github.com/fibertrack/deployform/internal/repository"
	"github.com/fibertrack/deployform/internal/testutil"
	"github.com/fibertrack/deployform/pkg/sheets"
)

const (
	testPrimaryURL   = "https://script.google.com/macros/s/primary/exec"
	testSecondaryURL = "https://script.google.com/macros/s/secondary/exec"
)

// recordingBroadcaster captures every broadcast for assertions
type recordingBroadcaster struct {
	mu       sync.Mutex
	statuses []SyncStatus
	created  []models.Entry
	deleted  []int64
	failures []string
}

func (b *recordingBroadcaster) BroadcastSyncStatus(status SyncStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, status)
}

func (b *recordingBroadcaster) BroadcastEntryCreated(entry models.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, entry)
}

func (b *recordingBroadcaster) BroadcastEntryDeleted(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
}

func (b *recordingBroadcaster) BroadcastDeliveryFailed(sink, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, sink+": "+message)
}

func (b *recordingBroadcaster) Failures() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.failures...)
}

// countingSyncer records background sync requests
type countingSyncer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSyncer) SyncInBackground() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingSyncer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// fixedClock returns times one millisecond apart starting at start
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Millisecond)
		return t
	}
}

func sheetRows() []sheets.Row {
	rows := testutil.SampleRows()
	out := make([]sheets.Row, len(rows))
	for i, r := range rows {
		out[i] = sheets.Row{
			City: r.City, Ring: r.Ring, Fdt: r.Fdt, Activity: r.Activity, PrimaryBoq: r.PrimaryBoq,
			Boq: r.Boq, Completed: r.Completed, Remaining: r.Remaining, Notes: r.Notes,
		}
	}
	return out
}

func setPrimaryURL(t *testing.T, repo repository.SettingsRepository, url string) {
	t.Helper()
	if err := repo.SetSetting(context.Background(), SettingPrimaryURL, url); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
}

// testStack wires the services the way the app does, on an in-memory database
type testStack struct {
	repo        repository.FullRepository
	cache       *reference.Cache
	client      *sheets.MockClient
	broadcaster *recordingBroadcaster
	settings    *SettingsService
	refs        *ReferenceService
	delivery    *DeliveryService
	entries     *EntryService
}

func newTestStack(t *testing.T, repo repository.FullRepository, opts ...sheets.MockOption) *testStack {
	t.Helper()
	log := logger.Discard()
	if repo == nil {
		repo = testutil.NewTestRepository(t)
	}

	st := &testStack{
		repo:        repo,
		cache:       reference.NewCache(),
		client:      sheets.NewMockClient(opts...),
		broadcaster: &recordingBroadcaster{},
	}
	st.settings = NewSettingsService(log, repo)
	st.refs = NewReferenceService(log, repo, st.cache, st.client)
	st.delivery = NewDeliveryService(log, st.settings, st.client)
	st.entries = NewEntryService(log, repo, st.delivery)

	st.refs.SetBroadcaster(st.broadcaster)
	st.delivery.SetBroadcaster(st.broadcaster)
	st.entries.SetBroadcaster(st.broadcaster)
	t.Cleanup(func() {
		st.delivery.Wait()
		st.refs.Wait()
	})
	return st
}
