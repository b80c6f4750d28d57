// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's slog based logger.
// Loggers created with WithContext resolve the root handler on every call, so
// package level loggers pick up the handler installed by the CLI after init.
package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs with a fixed context prepended.
type Logger interface {
	New(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

type logger struct {
	ctx []any
}

var root = &logger{}

// Root returns the logger without context.
func Root() Logger { return root }

// WithContext returns a logger carrying the given key/value pairs.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

func (l *logger) New(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &logger{ctx: append(merged, ctx...)}
}

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	if len(l.ctx) > 0 {
		merged := make([]any, 0, len(l.ctx)+len(ctx))
		merged = append(merged, l.ctx...)
		ctx = append(merged, ctx...)
	}
	ethlog.Root().Log(level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.write(LevelCrit, msg, ctx) }

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }

// SetDefault installs h as the handler of every logger.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromVerbosity maps the legacy 0 (crit) .. 5 (trace) verbosity to a level.
// Values above 5 are clamped to trace.
func FromVerbosity(v int) slog.Level {
	if v > 5 {
		v = 5
	}
	if v < 0 {
		v = 0
	}
	return ethlog.FromLegacyLevel(v)
}

// NewTerminalHandler returns a human readable handler printing records at lvl and above.
// Passing a *slog.LevelVar lets the level change while running.
func NewTerminalHandler(w io.Writer, lvl slog.Leveler, useColor bool) slog.Handler {
	return &levelHandler{lvl: lvl, inner: ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, useColor)}
}

// NewJSONHandler returns a handler printing one JSON object per record.
func NewJSONHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	return &levelHandler{lvl: lvl, inner: ethlog.JSONHandlerWithLevel(w, LevelTrace)}
}

// ParseLevel maps a level name (trace, debug, info, warn, error, crit) to its level.
func ParseLevel(name string) (slog.Level, bool) {
	switch name {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "crit":
		return LevelCrit, true
	}
	return 0, false
}

// Discard returns a handler dropping everything.
func Discard() slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelCrit + 1})
}
