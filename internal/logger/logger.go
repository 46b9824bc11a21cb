// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout the
// go-gatekeeper service.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// Application code should pass *Logger by pointer.
package logger

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
// Embedding zerolog.Logger exposes the full zerolog API while allowing the
// application to add helper methods without modifying the upstream type.
type Logger struct {
	zerolog.Logger

	// closer releases the underlying sink, if the logger owns one.
	closer io.Closer
}

// NewLogger constructs a production-ready *Logger for the given role label
// (e.g. "server", "passwd").
//
// The logger is configured with:
//   - global log level set to Debug (all levels are emitted);
//   - a "role" field set to role, useful for filtering logs from different
//     application components;
//   - a timestamp field added to every log entry;
//   - a "func" caller field that records the fully-qualified function name
//     (instead of the default file:line format) for easier log navigation.
//
// Output is written to os.Stdout in JSON format.
func NewLogger(role string) *Logger {
	return newLogger(role, os.Stdout, nil)
}

// NewFileLogger constructs a *Logger that appends timestamped JSON lines to
// the file at path, creating it when missing. It is the service's event log:
// a write error is reported by zerolog's ErrorHandler and never propagates
// into the caller.
//
// If the file cannot be opened the logger falls back to os.Stdout, so a
// broken log destination never prevents the service from starting.
func NewFileLogger(role, path string) *Logger {
	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l := newLogger(role, os.Stdout, nil)
		l.Warn().Err(err).Str("path", path).Msg("log file unavailable, logging to stdout")
		return l
	}

	return newLogger(role, logFile, logFile)
}

func newLogger(role string, w io.Writer, closer io.Closer) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name() // return function name
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{Logger: logger, closer: closer}
}

// Nop returns a *Logger that discards all log output.
// It is intended for use in tests and other contexts where logging is
// undesirable or would produce noise.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver. The child logger can be enriched with additional context fields
// without affecting the parent logger.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{Logger: l.With().Logger()}
}

// WithFields returns a child logger carrying the given string fields.
// fields are interpreted as key/value pairs; a trailing key without value
// is ignored.
func (l *Logger) WithFields(fields ...string) *Logger {
	ctx := l.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Str(fields[i], fields[i+1])
	}
	return &Logger{Logger: ctx.Logger()}
}

// Close releases the file behind a logger built by NewFileLogger.
// It is a no-op for every other logger.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's log.Ctx
// helper and returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns its global logger,
// so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{Logger: *log.Ctx(ctx)}
}
