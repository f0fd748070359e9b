package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/fibertrack/deployform/internal/auth"
	"github.com/fibertrack/deployform/internal/services"
	"github.com/fibertrack/deployform/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index      *template.Template
	AdminLogin *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Form         services.FormServicer
	Entries      services.EntryServicer
	Reference    services.ReferenceServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          HTTPLogger
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	form services.FormServicer,
	entries services.EntryServicer,
	reference services.ReferenceServicer,
	settings services.SettingsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Form:         form,
		Entries:      entries,
		Reference:    reference,
		Settings:     settings,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(
	form services.FormServicer,
	entries services.EntryServicer,
	reference services.ReferenceServicer,
	settings services.SettingsServicer,
	adminAuth *auth.Auth,
) *Handlers {
	return &Handlers{
		Form:      form,
		Entries:   entries,
		Reference: reference,
		Settings:  settings,
		Auth:      adminAuth,
		Log:       NoopHTTPLogger{},
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}

	return t, nil
}
