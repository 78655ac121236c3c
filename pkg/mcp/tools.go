package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/coverfang/pkg/hotspots"
	"github.com/Sumatoshi-tech/coverfang/pkg/ingest"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser"
	"github.com/Sumatoshi-tech/coverfang/pkg/summary"
)

// Tool name constants.
const (
	ToolNameSummary  = "coverage_summary"
	ToolNameHotspots = "coverage_hotspots"
	ToolNameFormats  = "coverage_formats"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyReportPath indicates the report_path parameter is empty.
	ErrEmptyReportPath = errors.New("report_path parameter is required and must not be empty")
	// ErrReportPathNotAbsolute indicates the report_path is not an absolute path.
	ErrReportPathNotAbsolute = errors.New("report_path must be an absolute path")
	// ErrReportNotFound indicates the report path does not exist or is a directory.
	ErrReportNotFound = errors.New("report file does not exist")
	// ErrEmptyFormat indicates the format parameter is empty.
	ErrEmptyFormat = errors.New("format parameter is required and must not be empty")
	// ErrNegativeThreshold indicates a threshold override below zero.
	ErrNegativeThreshold = errors.New("threshold overrides must not be negative")
)

// Input types (auto-generate JSON schemas via struct tags).

// SummaryInput is the input schema for the coverage_summary tool.
type SummaryInput struct {
	Format      string `json:"format"                 jsonschema:"report format (ncover or visualstudio)"`
	MaxHotspots int    `json:"max_hotspots,omitempty" jsonschema:"maximum number of hotspots to include (default: all)"`
	ReportPath  string `json:"report_path"            jsonschema:"absolute path to the coverage report XML file"`
	Workers     int    `json:"workers,omitempty"      jsonschema:"maximum classes parsed concurrently per assembly (default: config)"`
}

// HotspotsInput is the input schema for the coverage_hotspots tool.
type HotspotsInput struct {
	CrapScore            float64 `json:"crap_score,omitempty"            jsonschema:"CRAP score threshold override"`
	CyclomaticComplexity float64 `json:"cyclomatic_complexity,omitempty" jsonschema:"cyclomatic complexity threshold override"`
	Format               string  `json:"format"                          jsonschema:"report format (ncover or visualstudio)"`
	Limit                int     `json:"limit,omitempty"                 jsonschema:"maximum number of hotspots to return (default: all)"`
	NPathComplexity      float64 `json:"npath_complexity,omitempty"      jsonschema:"NPath complexity threshold override"`
	ReportPath           string  `json:"report_path"                     jsonschema:"absolute path to the coverage report XML file"`
}

// FormatsInput is the input schema for the coverage_formats tool.
type FormatsInput struct{}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// HotspotsOutput is the payload of the coverage_hotspots tool.
type HotspotsOutput struct {
	CodeQualityMetricsAvailable bool              `json:"code_quality_metrics_available"`
	Total                       int               `json:"total"`
	Hotspots                    []summary.Hotspot `json:"hotspots"`
}

func (s *Server) handleSummary(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateReportInput(input.ReportPath, input.Format)
	if err != nil {
		return errorResult(err)
	}

	result, err := s.parseReport(ctx, input.Format, input.ReportPath, input.Workers)
	if err != nil {
		return errorResult(err)
	}

	analysis := hotspots.NewAnalyzer(s.cfg.Thresholds(), s.cfg.RiskHotspots.Disabled).Analyze(result.Assemblies())
	s.metrics.RecordHotspots(ctx, result.ParserName(), len(analysis.Hotspots))

	report := summary.Build(result, analysis)
	if input.MaxHotspots > 0 && len(report.Hotspots) > input.MaxHotspots {
		report.Hotspots = report.Hotspots[:input.MaxHotspots]
	}

	return jsonResult(report)
}

func (s *Server) handleHotspots(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input HotspotsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateReportInput(input.ReportPath, input.Format)
	if err != nil {
		return errorResult(err)
	}

	if input.CyclomaticComplexity < 0 || input.NPathComplexity < 0 || input.CrapScore < 0 {
		return errorResult(ErrNegativeThreshold)
	}

	result, err := s.parseReport(ctx, input.Format, input.ReportPath, 0)
	if err != nil {
		return errorResult(err)
	}

	thresholds := s.cfg.Thresholds()
	overrideThreshold(thresholds, model.MetricCyclomaticComplexity, input.CyclomaticComplexity)
	overrideThreshold(thresholds, model.MetricNPathComplexity, input.NPathComplexity)
	overrideThreshold(thresholds, model.MetricCrapScore, input.CrapScore)

	analysis := hotspots.NewAnalyzer(thresholds, false).Analyze(result.Assemblies())
	s.metrics.RecordHotspots(ctx, result.ParserName(), len(analysis.Hotspots))

	report := summary.Build(result, analysis)

	out := HotspotsOutput{
		CodeQualityMetricsAvailable: report.CodeQualityMetricsAvailable,
		Total:                       len(report.Hotspots),
		Hotspots:                    report.Hotspots,
	}

	if input.Limit > 0 && len(out.Hotspots) > input.Limit {
		out.Hotspots = out.Hotspots[:input.Limit]
	}

	return jsonResult(out)
}

func handleFormats(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ FormatsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return jsonResult(ingest.Formats())
}

// parseReport runs the configured filters and size limit over one report file.
func (s *Server) parseReport(ctx context.Context, format, path string, workers int) (*model.ParserResult, error) {
	maxBytes, err := s.cfg.MaxReportBytes()
	if err != nil {
		return nil, err
	}

	assemblies, classes, files, err := s.cfg.BuildFilters()
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = s.cfg.Parsing.Workers
	}

	result, err := ingest.ParseFile(ctx, format, path, maxBytes, parser.Options{
		Assembly: assemblies,
		Class:    classes,
		File:     files,
		Workers:  workers,
		Logger:   s.logger,
		Tracer:   s.tracer,
		Metrics:  s.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return result, nil
}

func overrideThreshold(thresholds hotspots.Thresholds, metric string, value float64) {
	if value > 0 {
		thresholds[metric] = value
	}
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateReportInput checks common report input constraints.
func validateReportInput(reportPath, format string) error {
	if reportPath == "" {
		return ErrEmptyReportPath
	}

	if !filepath.IsAbs(reportPath) {
		return fmt.Errorf("%w: %s", ErrReportPathNotAbsolute, reportPath)
	}

	info, err := os.Stat(reportPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrReportNotFound, reportPath)
	}

	if format == "" {
		return ErrEmptyFormat
	}

	return nil
}
