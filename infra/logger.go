package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/trace"

	"github.com/tnqbao/gau-object-gallery/config"
)

type LoggerClient struct {
	logger *slog.Logger
}

func InitLoggerClient(cfg *config.EnvConfig) *LoggerClient {
	level := slog.LevelInfo
	if strings.EqualFold(cfg.Environment.Mode, "development") {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	}
	if cfg.Grafana.Enabled {
		// picks up the global LoggerProvider installed by InitTelemetry
		handlers = append(handlers, otelslog.NewHandler(cfg.Grafana.ServiceName))
	}

	logger := slog.New(&fanoutHandler{handlers: handlers}).With(
		slog.String("service", cfg.Grafana.ServiceName),
		slog.String("environment", cfg.Environment.Mode),
		slog.String("group", cfg.Environment.Group),
	)

	return &LoggerClient{logger: logger}
}

func NewLoggerClient(logger *slog.Logger) *LoggerClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerClient{logger: logger}
}

func (l *LoggerClient) DebugWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, slog.LevelDebug, nil, format, args...)
}

func (l *LoggerClient) InfoWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, slog.LevelInfo, nil, format, args...)
}

func (l *LoggerClient) WarningWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, slog.LevelWarn, nil, format, args...)
}

func (l *LoggerClient) ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{}) {
	l.log(ctx, slog.LevelError, err, format, args...)
}

func (l *LoggerClient) log(ctx context.Context, level slog.Level, err error, format string, args ...interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 3)
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf(format, args...), attrs...)
}

// fanoutHandler writes every record to all of its handlers.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: handlers}
}
