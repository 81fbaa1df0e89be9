// Package logger provides structured logging for the TAMS client on top of
// log/slog. It exposes package-level logging functions so callers do not have
// to thread a logger instance through every constructor.
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
	slogger  *slog.Logger
	levelVar = new(slog.LevelVar)
	output   io.Writer = os.Stderr
	logFile  *os.File
)

func init() {
	levelVar.Set(slog.LevelInfo)
	slogger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: levelVar}))
}

// parseLevel converts a level string to a slog.Level.
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", level)
	}
}

// Init configures the package logger from the given configuration.
// It is safe to call multiple times; the last call wins.
func Init(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var w io.Writer
	var f *os.File
	switch cfg.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err = os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
	}

	mu.Lock()
	defer mu.Unlock()

	// Close a previously opened log file before replacing it.
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	output = w
	levelVar.Set(level)

	opts := &slog.HandlerOptions{Level: levelVar}
	switch strings.ToLower(cfg.Format) {
	case "json":
		slogger = slog.New(slog.NewJSONHandler(w, opts))
	default:
		slogger = slog.New(slog.NewTextHandler(w, opts))
	}
	return nil
}

// InitWithWriter configures the logger to write to an arbitrary writer.
// Intended for tests.
func InitWithWriter(w io.Writer, level string) {
	lvl, _ := parseLevel(level)

	mu.Lock()
	defer mu.Unlock()
	levelVar.Set(lvl)
	slogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// SetLevel changes the minimum log level at runtime.
func SetLevel(level string) {
	if lvl, err := parseLevel(level); err == nil {
		levelVar.Set(lvl)
	}
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs a message at debug level with structured key-value pairs.
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

// Info logs a message at info level with structured key-value pairs.
func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

// Warn logs a message at warn level with structured key-value pairs.
func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

// Error logs a message at error level with structured key-value pairs.
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// With returns a logger with pre-bound key-value pairs, useful for
// per-job loggers that always carry the job id.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}
