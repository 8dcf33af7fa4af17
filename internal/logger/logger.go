// Package logger provides structured logging for stratus.
//
// It wraps log/slog with a package-level API so any component can log
// without threading a logger through every constructor. The level and
// format can be changed at runtime (e.g. from configuration reload).
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stdout
	levelVar           = new(slog.LevelVar)
	format             = "text"
	slogger            = slog.New(newTextHandler(os.Stdout, levelVar))
)

// Init applies the configuration to the package-level logger.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
	}

	if cfg.Level != "" {
		levelVar.Set(parseLevel(cfg.Level))
	}
	if cfg.Format != "" {
		format = strings.ToLower(cfg.Format)
	}
	rebuild()
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, level, fmtName string) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	if level != "" {
		levelVar.Set(parseLevel(level))
	}
	if fmtName != "" {
		format = strings.ToLower(fmtName)
	}
	rebuild()
}

// SetLevel changes the minimum level at runtime. Invalid levels are ignored.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	levelVar.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rebuild swaps the handler. Callers hold mu.
func rebuild() {
	if format == "json" {
		slogger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: levelVar}))
		return
	}
	slogger = slog.New(newTextHandler(output, levelVar))
}

func newTextHandler(w io.Writer, lv *slog.LevelVar) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at DEBUG level with alternating key-value pairs.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at INFO level with alternating key-value pairs.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at WARN level with alternating key-value pairs.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at ERROR level with alternating key-value pairs.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger { return get().With(args...) }
