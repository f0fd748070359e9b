package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the leveled logger handed to every component. Debug, Info, Warn
// and Error also satisfy retryablehttp.LeveledLogger, so the sheets client
// logs its retries through the same sink.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level slog.Level)
	GetLevel() slog.Level
	EnableHTTPLogging()
	DisableHTTPLogging()
	IsHTTPLoggingEnabled() bool
}

// Format selects how records are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// SlogLogger implements Logger on log/slog. The level and the HTTP request
// log switch can both be flipped while the server runs.
type SlogLogger struct {
	logger      *slog.Logger
	level       *slog.LevelVar
	httpLogging atomic.Bool
}

// New returns an info-level text logger on stdout
func New() *SlogLogger {
	return NewWithLevel(slog.LevelInfo)
}

// NewWithLevel returns a text logger on stdout
func NewWithLevel(level slog.Level) *SlogLogger {
	return NewWithFormat(os.Stdout, level, FormatText)
}

// NewWithWriter returns a text logger on w
func NewWithWriter(w io.Writer, level slog.Level) *SlogLogger {
	return NewWithFormat(w, level, FormatText)
}

// NewWithFormat returns a logger on w rendering records as format.
// Unknown formats fall back to text.
func NewWithFormat(w io.Writer, level slog.Level, format Format) *SlogLogger {
	lv := &slog.LevelVar{}
	lv.Set(level)
	opts := &slog.HandlerOptions{Level: lv}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(h), level: lv}
}

// Discard drops every record
func Discard() *SlogLogger {
	return NewWithWriter(io.Discard, slog.LevelError)
}

// ParseLevel maps debug, info, warn (or warning) and error onto slog levels,
// ignoring case. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ParseFormat maps "json" onto FormatJSON and everything else onto FormatText
func ParseFormat(format string) Format {
	if strings.EqualFold(strings.TrimSpace(format), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) SetLevel(level slog.Level) { l.level.Set(level) }
func (l *SlogLogger) GetLevel() slog.Level      { return l.level.Level() }

// EnableHTTPLogging turns on the per-request access log
func (l *SlogLogger) EnableHTTPLogging()         { l.httpLogging.Store(true) }
func (l *SlogLogger) DisableHTTPLogging()        { l.httpLogging.Store(false) }
func (l *SlogLogger) IsHTTPLoggingEnabled() bool { return l.httpLogging.Load() }
