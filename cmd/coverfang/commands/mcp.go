package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/coverfang/pkg/config"
	"github.com/Sumatoshi-tech/coverfang/pkg/mcp"
	"github.com/Sumatoshi-tech/coverfang/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		debug      bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes coverage report analysis as tools that AI agents
can discover and invoke:
  - coverage_summary: Line coverage per assembly and class plus risk hotspots
  - coverage_hotspots: Methods exceeding complexity thresholds, ranked
  - coverage_formats: Accepted report formats`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			level, err := cfg.LogLevel()
			if err != nil {
				return err
			}

			// stdout carries the protocol, so logs always go to stderr as JSON.
			ctx := cobraCmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			providers, err := observability.Init(ctx, observabilityConfig(observability.ModeMCP, level, true, debug))
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			metrics, err := observability.NewMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: metrics,
				Tracer:  providers.Tracer,
				Config:  cfg,
			})

			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a configuration file")

	return cmd
}
