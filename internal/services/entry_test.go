package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/fibertrack/deployform/internal/errors"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/repository/mock"
	"github.com/fibertrack/deployform/internal/testutil"
	"github.com/fibertrack/deployform/pkg/sheets"
)

func sampleDraft() models.Entry {
	return models.Entry{
		City:      "Al-Nasiriyah",
		Ring:      "R1",
		WorkType:  models.WorkTypeNew,
		Fdt:       "3",
		Activity:  "Poles",
		Boq:       100,
		Completed: 40,
		Remaining: 60,
		Date:      "2026-03-14",
	}
}

func TestEntryService_Create(t *testing.T) {
	st := newTestStack(t, nil)
	setPrimaryURL(t, st.repo, testPrimaryURL)
	ctx := context.Background()

	result, err := st.entries.Create(ctx, sampleDraft())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Entry.ID == 0 {
		t.Error("entry id not assigned")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	stored, err := st.repo.GetEntry(ctx, result.Entry.ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if stored.Activity != "Poles" || stored.Remaining != 60 {
		t.Errorf("stored entry = %+v", stored)
	}
	if len(st.broadcaster.created) != 1 || st.broadcaster.created[0].ID != result.Entry.ID {
		t.Errorf("entry_created broadcasts = %+v", st.broadcaster.created)
	}

	st.delivery.Wait()
	if len(st.client.Posted()) != 1 {
		t.Errorf("expected 1 delivery, got %d", len(st.client.Posted()))
	}
}

func TestEntryService_IDsStrictlyIncrease(t *testing.T) {
	st := newTestStack(t, nil)
	start := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	st.entries.now = func() time.Time { return start }
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		result, err := st.entries.Create(ctx, sampleDraft())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if result.Entry.ID <= last {
			t.Fatalf("id %d not greater than %d", result.Entry.ID, last)
		}
		last = result.Entry.ID
	}
	if last != start.UnixMilli()+4 {
		t.Errorf("last id = %d, want %d", last, start.UnixMilli()+4)
	}

	// A restarted service with a clock behind the stored ids keeps counting up
	restarted := NewEntryService(logger.Discard(), st.repo, nil)
	restarted.now = func() time.Time { return start.Add(-time.Hour) }
	result, err := restarted.Create(ctx, sampleDraft())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Entry.ID != last+1 {
		t.Errorf("id after restart = %d, want %d", result.Entry.ID, last+1)
	}
}

func TestEntryService_Create_RepositoryError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	svc := NewEntryService(logger.Discard(), repo, nil)
	ctx := context.Background()

	repo.LastEntryIDError = errors.New("locked")
	if _, err := svc.Create(ctx, sampleDraft()); !apperrors.IsKind(err, apperrors.ErrInternal) {
		t.Errorf("expected internal error, got %v", err)
	}

	repo.LastEntryIDError = nil
	repo.CreateEntryError = errors.New("constraint failed")
	if _, err := svc.Create(ctx, sampleDraft()); !apperrors.IsKind(err, apperrors.ErrInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestEntryService_Create_DeliveryWarnings(t *testing.T) {
	st := newTestStack(t, nil)
	setPrimaryURL(t, st.repo, "https://script.google.com/macros/library/d/abc/3")

	result, err := st.entries.Create(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != MsgLibraryURL {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestEntryService_Create_DeliveryCannotStart(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	st := newTestStack(t, repo)
	repo.GetSettingError = errors.New("locked")

	result, err := st.entries.Create(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("Create should keep the entry: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != MsgPrimaryFailed {
		t.Errorf("warnings = %v", result.Warnings)
	}
	entries, _ := st.entries.List(context.Background())
	if len(entries) != 1 {
		t.Errorf("expected stored entry, got %d", len(entries))
	}
}

func TestEntryService_Delete(t *testing.T) {
	st := newTestStack(t, nil)
	ctx := context.Background()

	result, err := st.entries.Create(ctx, sampleDraft())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := st.entries.Delete(ctx, result.Entry.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(st.broadcaster.deleted) != 1 || st.broadcaster.deleted[0] != result.Entry.ID {
		t.Errorf("entry_deleted broadcasts = %v", st.broadcaster.deleted)
	}

	err = st.entries.Delete(ctx, result.Entry.ID)
	if err != ErrEntryNotFound {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
	if !apperrors.IsKind(err, apperrors.ErrNotFound) {
		t.Error("ErrEntryNotFound should be a not found error")
	}
}

func TestEntryService_List(t *testing.T) {
	st := newTestStack(t, nil)
	st.entries.now = fixedClock(time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, activity := range []string{"Poles", "Excavation"} {
		draft := sampleDraft()
		draft.Activity = activity
		if _, err := st.entries.Create(ctx, draft); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	entries, err := st.entries.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Activity != "Poles" || entries[1].Activity != "Excavation" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestEntryService_ExportXLSX(t *testing.T) {
	st := newTestStack(t, nil, sheets.WithRows(nil))
	ctx := context.Background()

	draft := sampleDraft()
	draft.PrimaryBoq = "PB-3"
	draft.Notes = "=HYPERLINK(\"x\")"
	created, err := st.entries.Create(ctx, draft)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	data, err := st.entries.ExportXLSX(ctx)
	if err != nil {
		t.Fatalf("ExportXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(entriesSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][11] != "Notes" {
		t.Errorf("header = %v", rows[0])
	}

	row := rows[1]
	checks := map[int]string{
		1:  "2026-03-14",
		2:  "Al-Nasiriyah",
		5:  "Poles",
		6:  "New",
		7:  "PB-3",
		8:  "100",
		10: "60",
		11: "'=HYPERLINK(\"x\")",
	}
	for col, want := range checks {
		if row[col] != want {
			t.Errorf("column %d = %q, want %q", col, row[col], want)
		}
	}
	if row[0] == "" {
		t.Errorf("missing id for entry %d", created.Entry.ID)
	}
}

func TestEntryService_ExportXLSX_Error(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	repo.ListEntriesError = errors.New("locked")
	svc := NewEntryService(logger.Discard(), repo, nil)

	if _, err := svc.ExportXLSX(context.Background()); err == nil {
		t.Error("expected ExportXLSX to fail")
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"Poles":   "Poles",
		"=1+1":    "'=1+1",
		"+7":      "'+7",
		"-3":      "'-3",
		"@SUM(A)": "'@SUM(A)",
	}
	for in, want := range tests {
		if got := sanitizeExcelCell(in); got != want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", in, got, want)
		}
	}
}
