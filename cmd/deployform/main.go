package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fibertrack/deployform/internal/app"
	"github.com/fibertrack/deployform/internal/auth"
	"github.com/fibertrack/deployform/internal/browser"
	"github.com/fibertrack/deployform/internal/form"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/pkg/sheets"
	"github.com/fibertrack/deployform/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

func showBanner() {
	logo := []string{
		`     _            _              __                      `,
		`  __| | ___ _ __ | | ___  _   _ / _| ___  _ __ _ __ ___  `,
		` / _' |/ _ \ '_ \| |/ _ \| | | | |_ / _ \| '__| '_ ' _ \ `,
		`| (_| |  __/ |_) | | (_) | |_| |  _| (_) | |  | | | | | |`,
		` \__,_|\___| .__/|_|\___/ \__, |_|  \___/|_|  |_| |_| |_|`,
		`           |_|            |___/                          `,
	}
	width := len(logo[0]) + 4
	border := strings.Repeat("═", width)

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s  %-*s  %s║%s\n", cyan, yellow, width-4, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

func main() {
	os.Exit(run())
}

// run wires the application and blocks until it stops. Deferred cleanup
// runs before the exit code is returned.
func run() int {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "deployform.db", "SQLite database path")
	adminPIN := flag.String("adminpw", "", "Admin PIN (auto-generated if not set)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("logformat", "text", "Log format (text, json)")
	catalogPath := flag.String("catalog", "", "YAML file overriding the built-in dropdown options")
	noSync := flag.Bool("nosync", false, "Skip the reference data sync at startup")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `deployform - fiber deployment progress form

Usage:
  deployform [options]

Options:
  -port int       HTTP server port (default 8080)
  -db string      SQLite database path (default "deployform.db")
  -adminpw str    Admin PIN (auto-generated if not set)
  -loglevel str   Log level: debug, info, warn, error (default "info")
  -logformat str  Log format: text, json (default "text")
  -catalog str    YAML file overriding the built-in dropdown options
  -nosync         Skip the reference data sync at startup
  -nokeyboard     Disable keyboard shortcuts
  -version        Show version and exit
  -help           Show this help message

Keyboard Shortcuts (when enabled):
  o               Open the form in browser
  a               Open the admin login in browser
  h               Toggle HTTP request logging
  l               Cycle log level (debug → info → warn → error)
  q               Quit server
  ?               Show keyboard help

Examples:
  deployform                              # Run on port 8080 with deployform.db
  deployform -db /data/site.db            # Use custom database path
  deployform -catalog iraq-north.yaml     # Use a site-specific catalogue
  deployform -adminpw 482913 -nosync      # Fixed PIN, no startup sync

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("deployform %s\n", version)
		return 0
	}

	showBanner()

	appLog := logger.NewWithFormat(os.Stdout, logger.ParseLevel(*logLevel), logger.ParseFormat(*logFormat))

	catalog := form.DefaultCatalog()
	if *catalogPath != "" {
		c, err := form.LoadCatalog(*catalogPath)
		if err != nil {
			log.Print("Failed to load catalog: ", err)
			return 1
		}
		catalog = c
		appLog.Info("Catalog loaded", "path", *catalogPath, "cities", len(catalog.Cities))
	}

	pin := *adminPIN
	if pin == "" {
		pin = auth.GeneratePIN()
	}
	adminAuth := auth.New(pin)

	// Web app URLs are read from settings on every call
	client := sheets.NewHTTPClient(appLog)

	a, err := app.New(appLog, *dbPath, catalog, client, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		log.Print("Failed to initialize application: ", err)
		return 1
	}
	defer a.Close()

	appLog.Info("Admin PIN", "pin", pin)

	if !*noSync {
		a.SyncOnStart()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*noKeyboard {
		restore, err := rawTerminal(int(os.Stdin.Fd()))
		if err != nil {
			appLog.Debug("Keyboard shortcuts unavailable", "error", err)
		} else {
			defer restore()
			c := &console{
				formURL:  fmt.Sprintf("http://localhost:%d/", *port),
				adminURL: fmt.Sprintf("http://localhost:%d/admin/login", *port),
				log:      appLog,
				out:      os.Stdout,
				open:     browser.Open,
				quit:     stop,
			}
			c.printHelp()
			go c.listen(ctx, os.Stdin)
		}
	} else {
		fmt.Printf("%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	if err := a.Run(ctx, fmt.Sprintf(":%d", *port)); err != nil {
		appLog.Error("Server stopped", "error", err)
		return 1
	}
	appLog.Info("Server stopped")
	return 0
}
