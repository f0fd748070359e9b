package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fibertrack/deployform/internal/logger"
)

// nextLevel maps each log level onto the one the 'l' key switches to
var nextLevel = map[slog.Level]slog.Level{
	slog.LevelDebug: slog.LevelInfo,
	slog.LevelInfo:  slog.LevelWarn,
	slog.LevelWarn:  slog.LevelError,
	slog.LevelError: slog.LevelDebug,
}

// console handles single-key shortcuts typed into the server terminal
type console struct {
	formURL  string
	adminURL string
	log      *logger.SlogLogger
	out      io.Writer
	open     func(url string) error
	quit     func()
}

func (c *console) printHelp() {
	fmt.Fprintf(c.out, "%s%s  Keyboard shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(c.out, "    %so%s      - Open the form in browser\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sa%s      - Open the admin login in browser\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(c.out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// listen reads keys from r until ctx is done, r fails, or a quit key is read
func (c *console) listen(ctx context.Context, r io.Reader) {
	buf := make([]byte, 1)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && !c.handle(buf[0]) {
			return
		}
	}
}

// handle runs the action bound to key. It returns false once the server
// has been asked to stop.
func (c *console) handle(key byte) bool {
	switch key {
	case 'o', 'O':
		c.openURL("form", c.formURL)
	case 'a', 'A':
		c.openURL("admin login", c.adminURL)
	case 'h', 'H':
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case 'l', 'L':
		c.cycleLogLevel()
	case 'q', 'Q', 0x03: // 0x03 is Ctrl+C with signals disabled
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return false
	case '?':
		c.printHelp()
	}
	return true
}

func (c *console) openURL(name, url string) {
	fmt.Fprintf(c.out, "%sOpening %s in browser...%s\n", cyan, name, reset)
	if err := c.open(url); err != nil {
		fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
	}
}

func (c *console) cycleLogLevel() {
	next, ok := nextLevel[c.log.GetLevel()]
	if !ok {
		next = slog.LevelInfo
	}
	c.log.SetLevel(next)
	fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
}
