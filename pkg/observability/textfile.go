package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TextfileExporter collects OTel instruments into a private Prometheus
// registry and writes them in the node_exporter textfile format.
// Each instance owns its registry, so multiple exporters never conflict.
type TextfileExporter struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// NewTextfileExporter wires a Prometheus exporter as the reader of a fresh
// MeterProvider.
func NewTextfileExporter() (*TextfileExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &TextfileExporter{
		registry: registry,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
	}, nil
}

// Meter returns the meter whose instruments end up in the textfile.
func (te *TextfileExporter) Meter() metric.Meter {
	return te.provider.Meter(TracerName)
}

// WriteTo writes the current metric snapshot to path atomically.
func (te *TextfileExporter) WriteTo(path string) error {
	err := prometheus.WriteToTextfile(path, te.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}

// Close writes the final snapshot to path and shuts the provider down.
func (te *TextfileExporter) Close(ctx context.Context, path string) error {
	writeErr := te.WriteTo(path)
	shutdownErr := te.provider.Shutdown(ctx)

	return errors.Join(writeErr, shutdownErr)
}
