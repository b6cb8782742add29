// Package logger provides the component-tagged logging used across deeporg.
// It wraps zerolog with a small fixed API so call sites stay uniform:
// level + component + message + structured fields.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	mu  sync.RWMutex
	log = build(zerolog.InfoLevel)
)

func build(level zerolog.Level) zerolog.Logger {
	var w io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetLevel changes the global log level. Unknown names fall back to info.
func SetLevel(name string) {
	level := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	case "quiet", "off":
		level = zerolog.Disabled
	}

	mu.Lock()
	log = build(level)
	mu.Unlock()
}

// SetOutput redirects log output, bypassing TTY detection. Used when the
// process speaks a protocol on stdio (MCP server mode) or in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	log = zerolog.New(w).Level(log.GetLevel()).With().Timestamp().Logger()
	mu.Unlock()
}

func emit(level zerolog.Level, component, msg string, fields map[string]any) {
	mu.RLock()
	l := log
	mu.RUnlock()

	ev := l.WithLevel(level).Str("component", component)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			ev = ev.AnErr(k, err)
			continue
		}
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// DebugCF logs at debug level with a component tag and structured fields.
func DebugCF(component, msg string, fields map[string]any) {
	emit(zerolog.DebugLevel, component, msg, fields)
}

// InfoCF logs at info level with a component tag and structured fields.
func InfoCF(component, msg string, fields map[string]any) {
	emit(zerolog.InfoLevel, component, msg, fields)
}

// WarnCF logs at warn level with a component tag and structured fields.
func WarnCF(component, msg string, fields map[string]any) {
	emit(zerolog.WarnLevel, component, msg, fields)
}

// ErrorCF logs at error level with a component tag and structured fields.
func ErrorCF(component, msg string, fields map[string]any) {
	emit(zerolog.ErrorLevel, component, msg, fields)
}
