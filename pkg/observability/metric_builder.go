package observability

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrument names and documents one coverfang metric.
type instrument struct {
	name string
	desc string
	unit string
}

var (
	instRequests = instrument{"coverfang.requests", "Analyze runs and MCP tool calls by outcome", "{request}"}
	instInflight = instrument{"coverfang.requests.inflight", "Analyze runs and MCP tool calls in progress", "{request}"}
	instReqTime  = instrument{"coverfang.request.duration", "Wall time of analyze runs and MCP tool calls", "s"}

	instAssemblies = instrument{"coverfang.parse.assemblies", "Assemblies kept after filtering", "{assembly}"}
	instClasses    = instrument{"coverfang.parse.classes", "Classes kept after filtering", "{class}"}
	instFiles      = instrument{"coverfang.parse.files", "Code files attached to kept classes", "{file}"}
	instLines      = instrument{"coverfang.parse.lines", "Coverable and covered source lines", "{line}"}
	instParseTime  = instrument{"coverfang.parse.duration", "Wall time of one parser run", "s"}
	instHotspots   = instrument{"coverfang.hotspots", "Methods flagged as risk hotspots", "{method}"}
)

// durationBuckets spans 1ms to 120s: small reports parse in milliseconds,
// multi-hundred-megabyte dumps take tens of seconds.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// metricBuilder creates instruments from one meter and collects every
// creation failure so a constructor checks once.
type metricBuilder struct {
	meter metric.Meter
	errs  []error
}

func (b *metricBuilder) counter(in instrument) metric.Int64Counter {
	c, err := b.meter.Int64Counter(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	b.track(in, err)

	return c
}

func (b *metricBuilder) gauge(in instrument) metric.Int64UpDownCounter {
	g, err := b.meter.Int64UpDownCounter(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	b.track(in, err)

	return g
}

// seconds creates a duration histogram bucketed by durationBuckets.
func (b *metricBuilder) seconds(in instrument) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(in.name,
		metric.WithDescription(in.desc),
		metric.WithUnit(in.unit),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	b.track(in, err)

	return h
}

func (b *metricBuilder) track(in instrument, err error) {
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("create %s: %w", in.name, err))
	}
}

func (b *metricBuilder) err() error {
	return errors.Join(b.errs...)
}
