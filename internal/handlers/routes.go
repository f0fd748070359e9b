package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// The websocket is long-lived and stays outside the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if h.staticServer != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
		}
		r.Get("/", h.handleIndex)

		// PIN session
		r.Get("/admin/login", h.handleLoginPage)
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)

		// Form session
		r.Get("/api/form", h.handleGetForm)
		r.Post("/api/form/field", h.handleSetField)
		r.Post("/api/form/fdt-type", h.handleSetFdtType)
		r.Post("/api/form/clear", h.handleClearForm)
		r.Post("/api/form/submit", h.handleSubmitForm)

		// Entries
		r.Get("/api/entries", h.handleListEntries)
		r.Get("/api/entries/export", h.handleExportEntries)

		// Reference dataset
		r.Get("/api/reference", h.handleGetReference)
		r.Post("/api/reference/sync", h.handleSyncReference)

		// Settings and sharing
		r.Get("/api/settings", h.handleGetSettings)
		r.Get("/api/share-qr", h.handleShareQR)

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)
			r.Delete("/api/entries/{id}", h.handleDeleteEntry)
			r.Put("/api/settings", h.handleUpdateSettings)
		})
	})

	return r
}
