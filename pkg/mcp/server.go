// Package mcp implements a Model Context Protocol server exposing coverage
// report parsing and risk hotspot analysis as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/coverfang/pkg/config"
	"github.com/Sumatoshi-tech/coverfang/pkg/observability"
	"github.com/Sumatoshi-tech/coverfang/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "coverfang"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics records tool calls and the parses they run. Nil disables metrics.
	Metrics *observability.Metrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Config supplies filters, thresholds and the report size limit. Nil uses config.Default().
	Config *config.Config
}

// Server wraps the MCP SDK server with coverage tool registrations.
type Server struct {
	inner        *mcpsdk.Server
	mu           sync.RWMutex
	tools        []string
	metrics *observability.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	cfg     *config.Config
}

// NewServer creates a new MCP server with all coverage tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		logger:  logger,
		cfg:     cfg,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	s.registerSummaryTool()
	s.registerHotspotsTool()
	s.registerFormatsTool()
}

func (s *Server) registerSummaryTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameSummary,
		Description: summaryToolDescription,
	}, withMetrics(s.metrics, ToolNameSummary, withTracing(s.tracer, ToolNameSummary, s.handleSummary)))

	s.trackTool(ToolNameSummary)
}

func (s *Server) registerHotspotsTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameHotspots,
		Description: hotspotsToolDescription,
	}, withMetrics(s.metrics, ToolNameHotspots, withTracing(s.tracer, ToolNameHotspots, s.handleHotspots)))

	s.trackTool(ToolNameHotspots)
}

func (s *Server) registerFormatsTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameFormats,
		Description: formatsToolDescription,
	}, withMetrics(s.metrics, ToolNameFormats, withTracing(s.tracer, ToolNameFormats, handleFormats)))

	s.trackTool(ToolNameFormats)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to count each call by outcome.
func withMetrics[Input any](
	metrics *observability.Metrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		finish := metrics.StartRequest(ctx, mcpSpanPrefix+toolName)

		result, output, err := handler(ctx, req, input)
		finish(err != nil || (result != nil && result.IsError))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	summaryToolDescription = "Parse a coverage report (NCover or Visual Studio XML) and return " +
		"line coverage per assembly and class together with risk hotspots. " +
		"Accepts an absolute report path and a format identifier."

	hotspotsToolDescription = "Parse a coverage report and return methods whose complexity metrics " +
		"exceed the configured thresholds, ranked by their worst metric. " +
		"Thresholds may be overridden per call."

	formatsToolDescription = "List the coverage report formats accepted by the other tools."
)
