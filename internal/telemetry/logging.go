package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type LoggerOption func(*loggerOptions)

type loggerOptions struct {
	output        io.Writer
	sensitiveKeys []string
}

// WithOutput sends log records to w instead of stdout.
func WithOutput(w io.Writer) LoggerOption {
	return func(opts *loggerOptions) {
		opts.output = w
	}
}

// WithSensitiveKeys replaces the attribute keys whose values are masked.
func WithSensitiveKeys(keys ...string) LoggerOption {
	return func(opts *loggerOptions) {
		opts.sensitiveKeys = keys
	}
}

// NewLogger returns a JSON logger that stamps trace ids and masks sensitive attributes.
func NewLogger(level slog.Level, opts ...LoggerOption) *slog.Logger {
	options := &loggerOptions{
		output:        os.Stdout,
		sensitiveKeys: DefaultSensitiveKeys,
	}
	for _, opt := range opts {
		opt(options)
	}

	baseHandler := slog.NewJSONHandler(options.output, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactAttr(options.sensitiveKeys),
	})

	return slog.New(&traceHandler{baseHandler: baseHandler})
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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

type traceHandler struct {
	baseHandler slog.Handler
	groups      []string
	attrs       []slog.Attr
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	handler := h.baseHandler

	// trace attributes go on before any group so they stay at the root
	traceAttrs := make([]slog.Attr, 0, 2)
	if traceID := TraceID(ctx); traceID != "" {
		traceAttrs = append(traceAttrs, slog.String("trace_id", traceID))
	}
	if spanID := SpanID(ctx); spanID != "" {
		traceAttrs = append(traceAttrs, slog.String("span_id", spanID))
	}
	if len(traceAttrs) > 0 {
		handler = handler.WithAttrs(traceAttrs)
	}

	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	for _, group := range h.groups {
		handler = handler.WithGroup(group)
	}

	return handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &traceHandler{baseHandler: h.baseHandler, groups: h.groups, attrs: merged}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)

	return &traceHandler{baseHandler: h.baseHandler, groups: groups, attrs: h.attrs}
}
