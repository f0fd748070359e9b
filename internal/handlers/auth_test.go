package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fibertrack/deployform/internal/auth"
)

func postLogin(s *testSetup, pin string, accept string) *httptest.ResponseRecorder {
	form := url.Values{"pin": {pin}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin_JSON(t *testing.T) {
	s := newTestSetup(t)

	w := postLogin(s, "000000", "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong PIN: expected 401, got %d", w.Code)
	}
	if sessionCookie(w) != nil {
		t.Error("wrong PIN must not set a session cookie")
	}

	w = postLogin(s, testPIN, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cookie := sessionCookie(w)
	if cookie == nil || !s.auth.ValidateSession(cookie.Value) {
		t.Fatal("expected a valid session cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("logout: expected 204, got %d", rec.Code)
	}
	if s.auth.ValidateSession(cookie.Value) {
		t.Error("session still valid after logout")
	}
}
