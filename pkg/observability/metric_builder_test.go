package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

var errRejected = errors.New("instrument rejected")

// rejectingMeter fails counter creation for the listed names.
type rejectingMeter struct {
	metric.Meter

	reject map[string]bool
}

func (m rejectingMeter) Int64Counter(name string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if m.reject[name] {
		return noopmetric.Int64Counter{}, errRejected
	}

	return m.Meter.Int64Counter(name, opts...)
}

func TestMetricBuilder_CreatesEveryKind(t *testing.T) {
	t.Parallel()

	b := &metricBuilder{meter: noopmetric.NewMeterProvider().Meter("test")}

	assert.NotNil(t, b.counter(instClasses))
	assert.NotNil(t, b.gauge(instInflight))
	assert.NotNil(t, b.seconds(instParseTime))
	require.NoError(t, b.err())
}

func TestMetricBuilder_ReportsEveryFailure(t *testing.T) {
	t.Parallel()

	b := &metricBuilder{meter: rejectingMeter{
		Meter:  noopmetric.NewMeterProvider().Meter("test"),
		reject: map[string]bool{instClasses.name: true, instHotspots.name: true},
	}}

	b.counter(instClasses)
	b.counter(instFiles)
	b.counter(instHotspots)

	err := b.err()
	require.ErrorIs(t, err, errRejected)
	assert.Contains(t, err.Error(), "create coverfang.parse.classes")
	assert.Contains(t, err.Error(), "create coverfang.hotspots")
	assert.NotContains(t, err.Error(), "coverfang.parse.files")
}

func TestNewMetrics_FailsOnRejectedInstrument(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics(rejectingMeter{
		Meter:  noopmetric.NewMeterProvider().Meter("test"),
		reject: map[string]bool{instRequests.name: true},
	})
	require.ErrorIs(t, err, errRejected)
	assert.Nil(t, m)
}
