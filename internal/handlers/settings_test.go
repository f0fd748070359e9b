package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/fibertrack/deployform/internal/handlers"
	"github.com/fibertrack/deployform/internal/repository/mock"
	"github.com/fibertrack/deployform/internal/services"
	"github.com/fibertrack/deployform/internal/testutil"
)

func TestGetSettings(t *testing.T) {
	s := newTestSetup(t)

	w := s.do(http.MethodGet, "/api/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var view services.SettingsView
	decodeBody(t, w, &view)
	if view.Language != "en" || view.Direction != "ltr" {
		t.Errorf("settings = %+v", view)
	}
}

func TestUpdateSettings_RequiresPIN(t *testing.T) {
	s := newTestSetup(t)

	w := s.do(http.MethodPut, "/api/settings", map[string]string{"language": "ar"})
	expectError(t, w, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func TestUpdateSettings(t *testing.T) {
	s := newTestSetup(t)
	cookie := s.login(t)

	w := s.do(http.MethodPut, "/api/settings", map[string]string{
		"primary_url": testPrimaryURL,
		"language":    "ar",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view services.SettingsView
	decodeBody(t, w, &view)
	if view.PrimaryURL != testPrimaryURL || view.Direction != "rtl" {
		t.Errorf("settings = %+v", view)
	}

	// saving the primary URL starts a sync
	s.refs.Wait()
	if s.client.FetchCalls() != 1 || s.refs.Dataset().Total() != 4 {
		t.Errorf("expected a sync after saving the primary URL, fetches = %d", s.client.FetchCalls())
	}
}

func TestUpdateSettings_InvalidURL(t *testing.T) {
	s := newTestSetup(t)
	cookie := s.login(t)

	w := s.do(http.MethodPut, "/api/settings", map[string]string{"primary_url": "https://example.com"}, cookie)
	body := expectError(t, w, http.StatusBadRequest, handlers.ErrCodeValidation)
	if body.Error != "Invalid URL" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestShareQR(t *testing.T) {
	s := newTestSetup(t)

	w := s.do(http.MethodGet, "/api/share-qr", nil)
	expectError(t, w, http.StatusBadRequest, handlers.ErrCodeValidation)

	if err := s.settings.SetBaseURL(t.Context(), "http://10.0.0.5:8080"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	w = s.do(http.MethodGet, "/api/share-qr", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG body")
	}
}

func TestGetSettings_RepositoryError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	s := newTestSetupWithRepo(t, repo)
	repo.GetSettingError = errors.New("locked")

	w := s.do(http.MethodGet, "/api/settings", nil)
	expectError(t, w, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
}
