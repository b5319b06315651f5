package props

import (
	"context"
	"log/slog"
	"time"
)

// LoadEvent describes one AddPropertyFile attempt that claimed its path.
type LoadEvent struct {
	Path     string
	Format   string
	Entries  int
	Found    bool
	Duration time.Duration
	Err      error
}

// LoadLogger records property file loads.
type LoadLogger interface {
	LogLoad(LoadEvent)
}

// LoadLoggerFunc adapts a function to LoadLogger.
type LoadLoggerFunc func(LoadEvent)

// LogLoad implements LoadLogger.
func (f LoadLoggerFunc) LogLoad(event LoadEvent) {
	if f != nil {
		f(event)
	}
}

type noopLoadLogger struct{}

func (noopLoadLogger) LogLoad(LoadEvent) {}

// SlogLoadLogger writes loads to logger. Missing resources are reported at
// debug level, failures at error level. A nil logger uses slog.Default.
func SlogLoadLogger(logger *slog.Logger) LoadLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return LoadLoggerFunc(func(event LoadEvent) {
		attrs := []slog.Attr{
			slog.String("path", event.Path),
			slog.String("format", event.Format),
			slog.Duration("duration", event.Duration),
		}
		ctx := context.Background()
		switch {
		case event.Err != nil:
			logger.LogAttrs(ctx, slog.LevelError, "property file failed to load", append(attrs, slog.Any("error", event.Err))...)
		case !event.Found:
			logger.LogAttrs(ctx, slog.LevelDebug, "property file not found", attrs...)
		default:
			logger.LogAttrs(ctx, slog.LevelInfo, "property file loaded", append(attrs, slog.Int("entries", event.Entries))...)
		}
	})
}
