// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides structured, levelled logging on top of log/slog,
// keyed by flat key-value context pairs.
package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError

	levelMaxVerbosity = LevelTrace

	timeFormat = "2006-01-02T15:04:05-0700"
)

// LevelString returns a 5-character string containing the name of a level.
func LevelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger is the app-facing logging interface. Context is given as
// alternating key-value pairs, keys must be strings.
type Logger interface {
	// With returns a new Logger with the given context attached.
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	// Write logs a message at the given level.
	Write(level slog.Level, msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a Logger backed by the given handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.Write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.Write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.Write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.Write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.Write(LevelError, msg, ctx...) }

func (l *logger) Write(level slog.Level, msg string, ctx ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(ctx...)
	l.inner.Handler().Handle(context.Background(), r)
}

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(LogfmtHandler(os.Stderr))})
}

// SetDefault replaces the handler of the root logger.
func SetDefault(h slog.Handler) {
	root.Store(&logger{slog.New(h)})
}

// Root returns the process-wide root logger.
func Root() Logger {
	return root.Load()
}

// WithContext returns a logger derived from the root logger with the given
// context attached. Packages conventionally keep one:
//
//	var logger = log.WithContext("pkg", "staking")
func WithContext(ctx ...any) Logger {
	return Root().With(ctx...)
}
