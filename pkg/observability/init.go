package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the instrumentation scope of coverfang spans and instruments.
	TracerName = "coverfang"

	serviceName     = "coverfang"
	attrMode        = "coverfang.mode"
	shutdownTimeout = 5 * time.Second

	// defaultSampleRatio applies to root spans unless Config.SampleAll is set.
	defaultSampleRatio = 0.1
)

// Providers is what a command needs to emit telemetry.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes pending spans and metrics. It is a no-op without a collector.
	Shutdown func(ctx context.Context) error
}

// Init builds the logger and, when a collector is configured, OTLP exporters
// that are also installed as the global providers. Without a collector the
// tracer and meter are no-ops.
func Init(ctx context.Context, cfg Config) (Providers, error) {
	providers := Providers{
		Logger:   NewLogger(os.Stderr, cfg),
		Shutdown: func(context.Context) error { return nil },
	}

	if !cfg.OTLP.Enabled() {
		providers.Tracer = nooptrace.NewTracerProvider().Tracer(TracerName)
		providers.Meter = noopmetric.NewMeterProvider().Meter(TracerName)

		return providers, nil
	}

	spanExporter, err := otlptracegrpc.New(ctx, traceOptions(cfg.OTLP)...)
	if err != nil {
		return Providers{}, fmt.Errorf("create span exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions(cfg.OTLP)...)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("create metric exporter: %w", err), spanExporter.Shutdown(ctx))
	}

	res := newResource(cfg)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleAll)),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	providers.Tracer = tp.Tracer(TracerName)
	providers.Meter = mp.Meter(TracerName)
	providers.Shutdown = func(shutdownCtx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()

		return errors.Join(tp.Shutdown(shutdownCtx), mp.Shutdown(shutdownCtx))
	}

	return providers, nil
}

func newResource(cfg Config) *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		attribute.String(attrMode, string(cfg.Mode)),
	}

	if cfg.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

func newSampler(sampleAll bool) sdktrace.Sampler {
	if sampleAll {
		return sdktrace.AlwaysSample()
	}

	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(defaultSampleRatio))
}

func traceOptions(cfg OTLPConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	return opts
}

func metricOptions(cfg OTLPConfig) []otlpmetricgrpc.Option {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}

	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
	}

	return opts
}
