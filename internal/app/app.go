package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fibertrack/deployform/internal/auth"
	"github.com/fibertrack/deployform/internal/form"
	"github.com/fibertrack/deployform/internal/handlers"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/reference"
	"github.com/fibertrack/deployform/internal/repository"
	"github.com/fibertrack/deployform/internal/services"
	"github.com/fibertrack/deployform/internal/websocket"
	"github.com/fibertrack/deployform/pkg/sheets"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log       logger.Logger
	handlers  *handlers.Handlers
	repo      *repository.Repository
	settings  *services.SettingsService
	refs      *services.ReferenceService
	delivery  *services.DeliveryService
	form      *services.FormService
	hub       *websocket.Hub
	cancelHub context.CancelFunc
}

// New creates and initializes a new application instance. The last synced
// reference dataset and the saved form session are restored before it returns.
func New(log logger.Logger, dbPath string, catalog form.Catalog, client sheets.Client, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	cache := reference.NewCache()
	settingsService := services.NewSettingsService(log, repo)
	referenceService := services.NewReferenceService(log, repo, cache, client)
	deliveryService := services.NewDeliveryService(log, settingsService, client)
	entryService := services.NewEntryService(log, repo, deliveryService)
	formService := services.NewFormService(log, repo, catalog, referenceService, entryService)
	settingsService.SetSyncer(referenceService)

	// Initialize WebSocket hub with DI
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.New(log, referenceService)
	hub.Start(ctx)
	referenceService.SetBroadcaster(hub)
	deliveryService.SetBroadcaster(hub)
	entryService.SetBroadcaster(hub)

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		formService,
		entryService,
		referenceService,
		settingsService,
		templatesFS,
		staticServer,
		adminAuth,
		hub,
		log,
	)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	a := &App{
		log:       log,
		handlers:  h,
		repo:      repo,
		settings:  settingsService,
		refs:      referenceService,
		delivery:  deliveryService,
		form:      formService,
		hub:       hub,
		cancelHub: cancel,
	}
	a.restore()
	return a, nil
}

// restore loads the cached dataset first so the restored form can match
// against it.
func (a *App) restore() {
	ctx := context.Background()
	if err := a.refs.LoadCached(ctx); err != nil {
		a.log.Warn("Failed to load cached reference data", "error", err)
	}
	if err := a.form.Load(ctx); err != nil {
		a.log.Warn("Failed to restore form session", "error", err)
	}
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// SyncOnStart refreshes the reference data in the background when a
// primary web app is configured. It reports whether a sync was started.
func (a *App) SyncOnStart() bool {
	url, err := a.settings.GetPrimaryURL(context.Background())
	if err != nil {
		a.log.Warn("Failed to read primary URL", "error", err)
		return false
	}
	if !services.IsWebAppURL(url) {
		a.log.Info("No primary web app configured, skipping startup sync")
		return false
	}
	a.refs.SyncInBackground()
	return true
}

// Close performs graceful shutdown of app resources. Deliveries and syncs
// already in flight are allowed to finish.
func (a *App) Close() {
	if a.cancelHub != nil {
		a.cancelHub()
	}
	a.delivery.Wait()
	a.refs.Wait()
	if err := a.repo.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context, addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(baseURL)

	srv := &http.Server{Addr: addr, Handler: a.Router()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Admin URL", "url", baseURL+"/admin/login")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.settings.GetBaseURL(ctx)

	if existing == "" || strings.Contains(existing, "localhost") {
		if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface is the part of net.Interface used to pick a LAN address
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the IPv4 address phones on the same network should
// use to reach the form. Private addresses win over public ones; "localhost"
// is returned when nothing usable is up.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var fallback net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := addrIP(addr)
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			if fallback == nil {
				fallback = ip
			}
		}
	}

	if fallback != nil {
		return fallback.String()
	}
	return "localhost"
}

func addrIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	}
	return nil
}
