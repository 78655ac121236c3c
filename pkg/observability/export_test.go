package observability

import (
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewResource exposes newResource for testing.
func NewResource(cfg Config) *resource.Resource {
	return newResource(cfg)
}

// NewSampler exposes newSampler for testing.
func NewSampler(sampleAll bool) sdktrace.Sampler {
	return newSampler(sampleAll)
}
