// Package main provides the entry point for the coverfang CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/coverfang/cmd/coverfang/commands"
	"github.com/Sumatoshi-tech/coverfang/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "coverfang",
		Short: "Coverfang - coverage report parser and risk hotspot finder",
		Long: `Coverfang parses .NET code coverage reports into an assembly/class/file
model and highlights risky methods.

Commands:
  analyze   Parse a report and print a coverage summary
  mcp       Serve the analysis as MCP tools over stdio
  validate  Check a JSON summary against the report schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
