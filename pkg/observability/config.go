// Package observability wires OpenTelemetry tracing and metrics and the
// slog logger used by the coverfang CLI, the MCP server and the parsers.
package observability

import (
	"log/slog"
	"strings"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot analyze run.
	ModeCLI AppMode = "cli"
	// ModeMCP is the long-lived MCP stdio server.
	ModeMCP AppMode = "mcp"
)

// Standard OTel exporter environment variables.
const (
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	EnvOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// Config selects the log format and where telemetry goes.
type Config struct {
	Mode AppMode

	// Version is reported as the service.version resource attribute.
	Version string

	OTLP OTLPConfig

	// SampleAll records every trace instead of the default ratio.
	SampleAll bool

	LogLevel slog.Level
	LogJSON  bool
}

// OTLPConfig addresses an OTLP gRPC collector. An empty Endpoint disables export.
type OTLPConfig struct {
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Enabled reports whether spans and metrics leave the process.
func (c OTLPConfig) Enabled() bool {
	return c.Endpoint != ""
}

// OTLPFromEnv reads the collector settings from the standard OTEL_EXPORTER_OTLP_* variables.
func OTLPFromEnv(getenv func(string) string) OTLPConfig {
	return OTLPConfig{
		Endpoint: getenv(EnvOTLPEndpoint),
		Headers:  ParseOTLPHeaders(getenv(EnvOTLPHeaders)),
		Insecure: strings.EqualFold(getenv(EnvOTLPInsecure), "true"),
	}
}

// ParseOTLPHeaders parses "key=value,key=value". Pairs without "=" are skipped;
// nil is returned when nothing remains.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[key] = strings.TrimSpace(value)
	}

	return headers
}
