package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fibertrack/deployform/internal/auth"
	"github.com/fibertrack/deployform/internal/form"
	"github.com/fibertrack/deployform/internal/handlers"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/reference"
	"github.com/fibertrack/deployform/internal/repository"
	"github.com/fibertrack/deployform/internal/services"
	"github.com/fibertrack/deployform/internal/testutil"
	"github.com/fibertrack/deployform/pkg/sheets"
)

const (
	testPIN        = "246810"
	testPrimaryURL = "https://script.google.com/macros/s/primary/exec"
)

var testSyncTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// testSetup wires real services over an in-memory database and a mock sheets client
type testSetup struct {
	router   chi.Router
	handlers *handlers.Handlers
	repo     repository.FullRepository
	cache    *reference.Cache
	client   *sheets.MockClient
	auth     *auth.Auth
	refs     *services.ReferenceService
	delivery *services.DeliveryService
	entries  *services.EntryService
	form     *services.FormService
	settings *services.SettingsService
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	return newTestSetupWithRepo(t, testutil.NewTestRepository(t))
}

func newTestSetupWithRepo(t *testing.T, repo repository.FullRepository) *testSetup {
	t.Helper()
	log := logger.Discard()

	s := &testSetup{
		repo:   repo,
		cache:  reference.NewCache(),
		client: sheets.NewMockClient(sheets.WithRows(sampleSheetRows())),
		auth:   auth.New(testPIN),
	}
	s.settings = services.NewSettingsService(log, repo)
	s.refs = services.NewReferenceService(log, repo, s.cache, s.client)
	s.delivery = services.NewDeliveryService(log, s.settings, s.client)
	s.entries = services.NewEntryService(log, repo, s.delivery)
	s.form = services.NewFormService(log, repo, form.DefaultCatalog(), s.refs, s.entries)
	s.settings.SetSyncer(s.refs)

	s.handlers = handlers.NewForTesting(s.form, s.entries, s.refs, s.settings, s.auth)
	s.router = s.handlers.Router()

	t.Cleanup(func() {
		s.delivery.Wait()
		s.refs.Wait()
	})
	return s
}

func sampleSheetRows() []sheets.Row {
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

func (s *testSetup) setPrimaryURL(t *testing.T, url string) {
	t.Helper()
	if err := s.repo.SetSetting(context.Background(), services.SettingPrimaryURL, url); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
}

func (s *testSetup) loadDataset() {
	s.cache.Replace(testutil.SampleRows(), testSyncTime)
}

// login returns a session cookie for the admin PIN
func (s *testSetup) login(t *testing.T) *http.Cookie {
	t.Helper()
	token, ok := s.auth.Login(testPIN)
	if !ok {
		t.Fatal("login failed")
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func (s *testSetup) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// apiError is the error body written by the handlers
type apiError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) apiError {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	var body apiError
	decodeBody(t, w, &body)
	if body.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, body.Code, body.Error)
	}
	return body
}
