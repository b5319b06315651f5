package props

import (
	"context"
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Scope    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// SlogEvaluatorLogger writes evaluations to logger at debug level and
// failures at warn level. A nil logger uses slog.Default.
func SlogEvaluatorLogger(logger *slog.Logger) EvaluatorLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		attrs := []slog.Attr{
			slog.String("engine", event.Engine),
			slog.String("expr", event.Expr),
			slog.String("scope", event.Scope),
			slog.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			attrs = append(attrs, slog.Any("error", event.Err))
			logger.LogAttrs(context.Background(), slog.LevelWarn, "property expression failed", attrs...)
			return
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "property expression evaluated", attrs...)
	})
}
