// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package logging builds the process-wide structured logger.

Records are JSON on stdout, each carrying the application name. Besides the
standard slog levels two custom ones exist:

  - TRACE (-8): step-by-step translation details.
  - QUIET (above ERROR): suppresses every record.

Usage:

	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)
*/
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/taibuivan/mediagate/internal/platform/constants"
)

// # Levels

const (
	// LevelTrace is more verbose than debug.
	LevelTrace = slog.Level(-8)

	// LevelQuiet is above every emitted level, so nothing is logged.
	LevelQuiet = slog.Level(12)
)

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "quiet", "none", "off":
		return LevelQuiet
	default:
		return slog.LevelInfo
	}
}

// # Construction

// New creates a JSON logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			// Render the custom level by name instead of "DEBUG-4".
			if attr.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := attr.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			}
			return attr
		},
	})

	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// Trace logs at [LevelTrace].
func Trace(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	logger.Log(ctx, LevelTrace, msg, args...)
}
