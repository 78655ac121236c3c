package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrOp     = "op"
	attrStatus = "status"
	attrParser = "parser"
	attrLines  = "lines"

	// StatusOK marks a request that produced a result.
	StatusOK = "ok"
	// StatusError marks a request that failed.
	StatusError = "error"
)

// Metrics records coverfang requests and what each report parse produced.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	requests    metric.Int64Counter
	inflight    metric.Int64UpDownCounter
	requestTime metric.Float64Histogram

	assemblies metric.Int64Counter
	classes    metric.Int64Counter
	files      metric.Int64Counter
	lines      metric.Int64Counter
	parseTime  metric.Float64Histogram
	hotspots   metric.Int64Counter
}

// ParseStats summarizes one parser run.
type ParseStats struct {
	Parser         string
	Assemblies     int
	Classes        int
	Files          int
	CoveredLines   int
	CoverableLines int
	Duration       time.Duration
}

// NewMetrics creates the coverfang instruments on mt.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	b := &metricBuilder{meter: mt}

	m := &Metrics{
		requests:    b.counter(instRequests),
		inflight:    b.gauge(instInflight),
		requestTime: b.seconds(instReqTime),
		assemblies:  b.counter(instAssemblies),
		classes:     b.counter(instClasses),
		files:       b.counter(instFiles),
		lines:       b.counter(instLines),
		parseTime:   b.seconds(instParseTime),
		hotspots:    b.counter(instHotspots),
	}

	err := b.err()
	if err != nil {
		return nil, err
	}

	return m, nil
}

// StartRequest counts op as in flight. The returned function ends the request,
// recording its duration and whether it failed.
func (m *Metrics) StartRequest(ctx context.Context, op string) func(failed bool) {
	if m == nil {
		return func(bool) {}
	}

	start := time.Now()
	opAttr := attribute.String(attrOp, op)

	m.inflight.Add(ctx, 1, metric.WithAttributes(opAttr))

	return func(failed bool) {
		status := StatusOK
		if failed {
			status = StatusError
		}

		attrs := metric.WithAttributes(opAttr, attribute.String(attrStatus, status))

		m.inflight.Add(ctx, -1, metric.WithAttributes(opAttr))
		m.requests.Add(ctx, 1, attrs)
		m.requestTime.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// RecordParse records the output of one parser run.
func (m *Metrics) RecordParse(ctx context.Context, stats ParseStats) {
	if m == nil {
		return
	}

	parser := attribute.String(attrParser, stats.Parser)
	attrs := metric.WithAttributes(parser)

	m.assemblies.Add(ctx, int64(stats.Assemblies), attrs)
	m.classes.Add(ctx, int64(stats.Classes), attrs)
	m.files.Add(ctx, int64(stats.Files), attrs)
	m.lines.Add(ctx, int64(stats.CoverableLines), metric.WithAttributes(parser, attribute.String(attrLines, "coverable")))
	m.lines.Add(ctx, int64(stats.CoveredLines), metric.WithAttributes(parser, attribute.String(attrLines, "covered")))
	m.parseTime.Record(ctx, stats.Duration.Seconds(), attrs)
}

// RecordHotspots records how many hotspots one analysis of a parser's result found.
func (m *Metrics) RecordHotspots(ctx context.Context, parser string, count int) {
	if m == nil {
		return
	}

	m.hotspots.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrParser, parser)))
}
