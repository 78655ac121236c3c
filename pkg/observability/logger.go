package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	logKeyTraceID  = "trace_id"
	logKeySpanID   = "span_id"
	logKeyMode     = "mode"
	logKeyParser   = "parser"
	logKeyAssembly = "assembly"
)

type scopeKey struct{}

// parseScope names the report parse a log record belongs to.
type parseScope struct {
	parser   string
	assembly string
}

// WithParser tags ctx with the running parser. Records logged through a
// TracingHandler with that context carry a parser attribute.
func WithParser(ctx context.Context, name string) context.Context {
	scope := scopeFrom(ctx)
	scope.parser = name

	return context.WithValue(ctx, scopeKey{}, scope)
}

// WithAssembly tags ctx with the assembly being processed.
func WithAssembly(ctx context.Context, name string) context.Context {
	scope := scopeFrom(ctx)
	scope.assembly = name

	return context.WithValue(ctx, scopeKey{}, scope)
}

func scopeFrom(ctx context.Context) parseScope {
	scope, _ := ctx.Value(scopeKey{}).(parseScope)

	return scope
}

// NewLogger returns a text or JSON logger writing to w through a TracingHandler.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(w, opts)
	}

	return slog.New(NewTracingHandler(inner, cfg.Mode))
}

// TracingHandler is an [slog.Handler] that adds the active span's ids and the
// parser/assembly scope from the context to every record.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. A non-empty mode is attached once to every record.
func NewTracingHandler(inner slog.Handler, mode AppMode) *TracingHandler {
	if mode != "" {
		inner = inner.WithAttrs([]slog.Attr{slog.String(logKeyMode, string(mode))})
	}

	return &TracingHandler{inner: inner}
}

// Enabled delegates to the wrapped handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle enriches record from ctx and delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(logKeyTraceID, sc.TraceID().String()),
			slog.String(logKeySpanID, sc.SpanID().String()),
		)
	}

	scope := scopeFrom(ctx)

	if scope.parser != "" {
		record.AddAttrs(slog.String(logKeyParser, scope.parser))
	}

	if scope.assembly != "" {
		record.AddAttrs(slog.String(logKeyAssembly, scope.assembly))
	}

	err := th.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}
