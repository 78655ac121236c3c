package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/coverfang/pkg/config"
	"github.com/Sumatoshi-tech/coverfang/pkg/hotspots"
	"github.com/Sumatoshi-tech/coverfang/pkg/ingest"
	"github.com/Sumatoshi-tech/coverfang/pkg/observability"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser"
	"github.com/Sumatoshi-tech/coverfang/pkg/summary"
)

const opAnalyze = "cli.analyze"

var (
	// ErrMissingFormat is returned when --format is not given.
	ErrMissingFormat = errors.New("--format is required (supported: " + strings.Join(ingest.Formats(), ", ") + ")")
	// ErrInvalidWorkers is returned when --workers is negative.
	ErrInvalidWorkers = errors.New("--workers must not be negative")
)

// AnalyzeCommand holds flags for the analyze command.
type AnalyzeCommand struct {
	format          string
	configPath      string
	output          string
	workers         int
	maxHotspots     int
	metricsTextfile string
	noColor         bool
	noHotspots      bool
	debug           bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	ac := &AnalyzeCommand{}

	cmd := &cobra.Command{
		Use:   "analyze <report>",
		Short: "Parse a coverage report and summarize it",
		Long: `Parse an NCover or Visual Studio coverage XML report into the
assembly/class/file model, then print line coverage per assembly and
the methods whose complexity metrics exceed the configured thresholds.

Configuration is read from --config, or coverfang.yaml in ., ./config
or /etc/coverfang. Every key can be overridden with COVERFANG_* variables,
e.g. COVERFANG_PARSING_WORKERS=4.`,
		Args: cobra.ExactArgs(1),
		RunE: ac.run,
	}

	cmd.Flags().StringVarP(&ac.format, "format", "f", "",
		"Report format: "+strings.Join(ingest.Formats(), ", "))
	cmd.Flags().StringVarP(&ac.configPath, "config", "c", "", "Path to a configuration file")
	cmd.Flags().StringVarP(&ac.output, "output", "o", summary.FormatText, "Output format: text, json, yaml")
	cmd.Flags().IntVar(&ac.workers, "workers", 0, "Classes parsed concurrently per assembly (0 = config or CPU count)")
	cmd.Flags().IntVar(&ac.maxHotspots, "max-hotspots", 0, "Maximum hotspots shown in text output (0 = all)")
	cmd.Flags().StringVar(&ac.metricsTextfile, "metrics-textfile", "",
		"Write Prometheus metrics to this file after the run (node-exporter textfile format)")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", false, "Disable colored text output")
	cmd.Flags().BoolVar(&ac.noHotspots, "no-hotspots", false, "Skip the risk hotspot analysis")
	cmd.Flags().BoolVar(&ac.debug, "debug", false, "Enable debug logging and full trace sampling")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) (err error) {
	validateErr := ac.validate()
	if validateErr != nil {
		return validateErr
	}

	cfg, err := config.LoadConfig(ac.configPath)
	if err != nil {
		return err
	}

	ac.applyOverrides(cfg)

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	providers, err := observability.Init(ctx, observabilityConfig(observability.ModeCLI, level, cfg.Logging.JSON, ac.debug))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	meter := providers.Meter

	if ac.metricsTextfile != "" {
		exporter, exporterErr := observability.NewTextfileExporter()
		if exporterErr != nil {
			return exporterErr
		}

		defer func() {
			err = errors.Join(err, exporter.Close(context.Background(), ac.metricsTextfile))
		}()

		meter = exporter.Meter()
	}

	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		return err
	}

	finish := metrics.StartRequest(ctx, opAnalyze)
	report, err := ac.analyze(ctx, cfg, args[0], providers, metrics)
	finish(err != nil)

	if err != nil {
		return err
	}

	return summary.Write(cmd.OutOrStdout(), ac.output, report, summary.TextOptions{
		Color:       !ac.noColor && !color.NoColor,
		MaxHotspots: ac.maxHotspots,
	})
}

func (ac *AnalyzeCommand) validate() error {
	if ac.format == "" {
		return ErrMissingFormat
	}

	if ac.workers < 0 {
		return ErrInvalidWorkers
	}

	if !slices.Contains([]string{summary.FormatText, summary.FormatJSON, summary.FormatYAML}, ac.output) {
		return fmt.Errorf("%w: %q", summary.ErrUnknownOutput, ac.output)
	}

	return nil
}

// applyOverrides lets flags win over file and environment settings.
func (ac *AnalyzeCommand) applyOverrides(cfg *config.Config) {
	if ac.workers > 0 {
		cfg.Parsing.Workers = ac.workers
	}

	if ac.noHotspots {
		cfg.RiskHotspots.Disabled = true
	}
}

func (ac *AnalyzeCommand) analyze(
	ctx context.Context,
	cfg *config.Config,
	reportPath string,
	providers observability.Providers,
	metrics *observability.Metrics,
) (*summary.Report, error) {
	maxBytes, err := cfg.MaxReportBytes()
	if err != nil {
		return nil, err
	}

	assemblies, classes, files, err := cfg.BuildFilters()
	if err != nil {
		return nil, err
	}

	result, err := ingest.ParseFile(ctx, ac.format, reportPath, maxBytes, parser.Options{
		Assembly: assemblies,
		Class:    classes,
		File:     files,
		Workers:  cfg.Parsing.Workers,
		Logger:   providers.Logger,
		Tracer:   providers.Tracer,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", reportPath, err)
	}

	analysis := hotspots.NewAnalyzer(cfg.Thresholds(), cfg.RiskHotspots.Disabled).Analyze(result.Assemblies())
	metrics.RecordHotspots(ctx, result.ParserName(), len(analysis.Hotspots))

	providers.Logger.DebugContext(ctx, "risk hotspot analysis finished",
		"hotspots", len(analysis.Hotspots),
		"quality_metrics", analysis.CodeQualityMetricsAvailable)

	return summary.Build(result, analysis), nil
}
