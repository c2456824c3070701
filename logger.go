package docstore

import (
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/docstore/document"
)

// Logger wraps slog.Logger with docstore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithCollection tags every record with the collection name.
func (l *Logger) WithCollection(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("collection", name),
	}
}

// LogInsert logs an insert of count documents. id is the first assigned
// identifier.
func (l *Logger) LogInsert(id document.ID, count int, err error) {
	if err != nil {
		l.Error("insert failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("insert completed",
			"id", uint64(id),
			"count", count,
		)
	}
}

// LogUpdate logs an update of count documents.
func (l *Logger) LogUpdate(count int, rebuilt bool, err error) {
	if err != nil {
		l.Error("update failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("update completed",
			"count", count,
			"indices_dirty", rebuilt,
		)
	}
}

// LogRemove logs a removal of count documents.
func (l *Logger) LogRemove(count int, err error) {
	if err != nil {
		l.Error("remove failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("remove completed",
			"count", count,
		)
	}
}

// LogRebuild logs a full index rebuild.
func (l *Logger) LogRebuild(field string, entries int, took time.Duration) {
	l.Debug("index rebuilt",
		"field", field,
		"entries", entries,
		"duration", took,
	)
}

// LogCheck logs an integrity check verdict.
func (l *Logger) LogCheck(field string, valid, repaired bool) {
	if valid {
		l.Debug("index check passed",
			"field", field,
		)
		return
	}
	l.Warn("index check failed",
		"field", field,
		"repaired", repaired,
	)
}

// LogSnapshot logs a snapshot or restore.
func (l *Logger) LogSnapshot(op string, records int, err error) {
	if err != nil {
		l.Error("snapshot failed",
			"op", op,
			"error", err,
		)
	} else {
		l.Info("snapshot completed",
			"op", op,
			"records", records,
		)
	}
}
