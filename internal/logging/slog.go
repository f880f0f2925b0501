package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// instrumentationScope names the OTel logger used by the slog bridge.
const instrumentationScope = "github.com/ets2dash/tdashboard"

// swapped in tests
var (
	osStdout = os.Stdout
	osPipe   = os.Pipe
)

// SlogManager owns the process logger: a text handler to the log file
// (stdout when there is none) plus an optional OTel bridge.
type SlogManager struct {
	logger  *slog.Logger
	handler slog.Handler
	level   slog.Level

	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
		}
	}
	return a
}

// Setup (re)builds the logger. Records go to file, or to stdout when file
// is nil, and to the OTel provider when one is given.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.level = parseLevel(level)
	m.logProvider = provider

	opts := &slog.HandlerOptions{Level: m.level, ReplaceAttr: utcTime}

	var out io.Writer = osStdout
	if file != nil {
		out = file
	}
	handlers := []slog.Handler{slog.NewTextHandler(out, opts)}

	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler(instrumentationScope, otelslog.WithLoggerProvider(provider)))
	}

	m.handler = NewMultiHandler(handlers...)
	m.logger = slog.New(m.handler)
	m.logger.Info("Logging initialized", "level", m.level.String())
}

// WithContext wraps the current handler so every record carries the
// attributes returned by provider at log time.
func (m *SlogManager) WithContext(provider ContextProvider) {
	if m.handler == nil {
		return
	}
	m.logger = slog.New(NewContextHandler(m.handler, provider))
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Level returns the active minimum level.
func (m *SlogManager) Level() slog.Level {
	return m.level
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
