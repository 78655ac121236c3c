package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/coverfang/pkg/summary"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var printSchema, noColor bool

	cmd := &cobra.Command{
		Use:   "validate <summary.json|->",
		Short: "Validate a JSON summary against the report schema",
		Long: `Validate the output of "coverfang analyze --output json" against the
embedded report schema.

Examples:
  coverfang validate summary.json
  coverfang analyze coverage.xml -f ncover -o json | coverfang validate -
  coverfang validate --schema`,
		Args: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if printSchema {
				_, err := out.Write(summary.Schema())

				return err
			}

			data, label, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			return reportValidation(out, label, data, noColor)
		},
	}

	cmd.Flags().BoolVar(&printSchema, "schema", false, "Print the report schema and exit")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func readInput(stdin io.Reader, path string) (data []byte, label string, err error) {
	if path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read summary: %w", err)
	}

	return data, path, nil
}

func reportValidation(out io.Writer, label string, data []byte, noColor bool) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if noColor || color.NoColor {
		green.DisableColor()
		red.DisableColor()
	}

	violations, err := summary.Validate(data)
	if err == nil {
		green.Fprintf(out, "summary is valid (%s)\n", label)

		return nil
	}

	if !errors.Is(err, summary.ErrSchemaViolation) {
		return err
	}

	red.Fprintf(out, "summary validation failed (%s)\n", label)

	for _, v := range violations {
		fmt.Fprintf(out, "  - %s: %s\n", v.Field, v.Description)
	}

	return fmt.Errorf("%w: %d violation(s)", summary.ErrSchemaViolation, len(violations))
}
