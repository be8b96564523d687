// Package logger builds the process-wide slog.Logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how records are written.
type Options struct {
	Env       string
	Level     string
	File      string
	SentryDSN string
	Release   string
	// LevelVar, when set, lets the caller change the level at runtime.
	LevelVar *slog.LevelVar
}

// New returns a logger and a cleanup func that flushes Sentry and closes the
// log file. Development gets a text handler, everything else JSON.
func New(opts Options) (*slog.Logger, func(), error) {
	var (
		out     io.Writer = os.Stdout
		closers []func()
	)

	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closers = append(closers, func() { _ = rotating.Close() })
	}

	level := opts.LevelVar
	if level == nil {
		level = new(slog.LevelVar)
	}
	level.Set(ParseLevel(opts.Level))
	var base slog.Handler
	if opts.Env == "development" {
		base = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		base = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	handlers := []slog.Handler{base}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
			Release:     opts.Release,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init sentry: %w", err)
		}
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		closers = append(closers, func() { sentry.Flush(2 * time.Second) })
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = fanout(handlers)
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return slog.New(NewMaskingHandler(handler)), cleanup, nil
}

// ParseLevel maps debug/info/warn/error to a slog.Level; unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
