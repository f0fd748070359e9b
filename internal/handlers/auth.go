package handlers

import (
	"net/http"

	"github.com/fibertrack/deployform/internal/auth"
)

// handleLoginPage renders the PIN form
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.Auth.GetSessionFromRequest(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.templates.AdminLogin.Execute(w, LoginPageData{})
}

// handleLogin processes the PIN form. JSON clients get a status code instead
// of a redirect.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	pin := r.FormValue("pin")

	token, ok := h.Auth.Login(pin)
	if !ok {
		if wantsJSON(r) {
			respondError(w, Unauthorized("Invalid PIN"))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		h.templates.AdminLogin.Execute(w, LoginPageData{Error: "Invalid PIN"})
		return
	}

	auth.SetSessionCookie(w, token)
	if wantsJSON(r) {
		respondOK(w, map[string]bool{"authenticated": true})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	if wantsJSON(r) {
		respondDeleted(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}
