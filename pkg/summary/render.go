package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownOutput is returned for an unsupported output format.
var ErrUnknownOutput = errors.New("unknown output format")

const percentageValue = 100

// TextOptions controls terminal rendering.
type TextOptions struct {
	// Color highlights exceeded metrics.
	Color bool
	// MaxHotspots limits the hotspot table; zero shows all.
	MaxHotspots int
}

// Write renders report in the named format.
func Write(w io.Writer, format string, report *Report, opts TextOptions) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return WriteText(w, report, opts)
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatYAML:
		return WriteYAML(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
	}
}

// WriteJSON writes report as indented JSON.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(report)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// WriteYAML writes report as YAML.
func WriteYAML(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(report)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}

// WriteText writes the assembly and hotspot tables.
func WriteText(w io.Writer, report *Report, opts TextOptions) error {
	parts := []string{
		fmt.Sprintf("=== %s ===", strings.ToUpper(report.Parser)),
		fmt.Sprintf("Line coverage: %s (%s of %s lines)",
			formatRate(report.Lines), humanize.Comma(int64(report.Lines.Covered)), humanize.Comma(int64(report.Lines.Coverable))),
		assemblyTable(report),
	}

	switch {
	case len(report.Hotspots) > 0:
		parts = append(parts, hotspotTable(report, opts))
	case report.CodeQualityMetricsAvailable:
		parts = append(parts, "No risk hotspots found.")
	default:
		parts = append(parts, "No code quality metrics available.")
	}

	_, err := io.WriteString(w, strings.Join(parts, "\n\n")+"\n")
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	return tbl
}

func assemblyTable(report *Report) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Assembly", "Classes", "Covered", "Coverable", "Coverage"})

	classes := 0

	for _, a := range report.Assemblies {
		classes += len(a.Classes)
		tbl.AppendRow(table.Row{
			a.Name,
			len(a.Classes),
			humanize.Comma(int64(a.Lines.Covered)),
			humanize.Comma(int64(a.Lines.Coverable)),
			formatRate(a.Lines),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d assemblies", len(report.Assemblies)), classes})

	return "Assemblies:\n" + tbl.Render()
}

func hotspotTable(report *Report, opts TextOptions) string {
	exceeded := color.New(color.FgRed, color.Bold)
	if opts.Color {
		exceeded.EnableColor()
	} else {
		exceeded.DisableColor()
	}

	rows := report.Hotspots
	if opts.MaxHotspots > 0 && len(rows) > opts.MaxHotspots {
		rows = rows[:opts.MaxHotspots]
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Assembly", "Class", "Method", "Line", "Metrics"})

	for _, h := range rows {
		metrics := make([]string, 0, len(h.Metrics))

		for _, m := range h.Metrics {
			cell := fmt.Sprintf("%s: %s", m.Name, humanize.Ftoa(m.Value))
			if m.Exceeded {
				cell = exceeded.Sprint(cell)
			}

			metrics = append(metrics, cell)
		}

		tbl.AppendRow(table.Row{h.Assembly, h.Class, h.Method, h.Line, strings.Join(metrics, ", ")})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d hotspots", len(report.Hotspots))})

	return "Risk hotspots:\n" + tbl.Render()
}

func formatRate(stats LineStats) string {
	if stats.Coverable == 0 {
		return "n/a"
	}

	return fmt.Sprintf("%.1f%%", stats.Rate*percentageValue)
}
