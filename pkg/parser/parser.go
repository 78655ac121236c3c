// Package parser defines the contract shared by all coverage report parsers
// and the pipeline that turns a format's discovery surface into a
// model.ParserResult: assembly selection, bounded per-class fan-out,
// deterministic ordering, tracing, and parse metrics.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/coverfang/pkg/filter"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/observability"
)

// Sentinel errors returned by parsers.
var (
	// ErrNilDocument is returned when Parse receives no document.
	ErrNilDocument = errors.New("nil coverage document")
	// ErrMalformedRecord is returned when a required numeric field does not parse.
	ErrMalformedRecord = errors.New("malformed coverage record")
	// ErrUnknownSourceFile is returned when a line record references a file id
	// that has no file-name entry.
	ErrUnknownSourceFile = errors.New("unknown source file id")
)

const (
	spanParse    = "coverage.parse"
	spanAssembly = "coverage.assembly"
)

// Parser converts one decoded report document into the canonical model.
type Parser[D any] interface {
	Parse(ctx context.Context, doc *D) (*model.ParserResult, error)
	Name() string
}

// Options configures a parser run. The zero value includes everything and
// uses GOMAXPROCS workers.
type Options struct {
	Assembly filter.Filter
	Class    filter.Filter
	File     filter.Filter

	// Workers bounds the per-assembly class fan-out. Values below one mean GOMAXPROCS.
	Workers int

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.Metrics
}

// WithDefaults returns a copy of o with every unset field populated.
func (o Options) WithDefaults() Options {
	if o.Assembly == nil {
		o.Assembly = filter.All()
	}

	if o.Class == nil {
		o.Class = filter.All()
	}

	if o.File == nil {
		o.File = filter.All()
	}

	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if o.Tracer == nil {
		o.Tracer = otel.Tracer(observability.TracerName)
	}

	return o
}

// Source is the format-specific discovery surface driven by Run.
type Source interface {
	// AssemblyNames returns every assembly identifier in the document, duplicates allowed.
	AssemblyNames() []string
	// ClassNames returns the candidate class names of one assembly with
	// compiler-generated names already excluded. Duplicates are allowed.
	ClassNames(assembly string) []string
	// BuildClass assembles one class and its files. It returns nil when the
	// class-retention rule drops the class.
	BuildClass(assembly *model.Assembly, className string, files filter.Filter) (*model.Class, error)
	// SupportsBranchCoverage reports whether the format carries branch data.
	SupportsBranchCoverage() bool
}

// Run drives src through assembly selection and class fan-out and freezes
// the outcome into a ParserResult named parserName.
func Run(ctx context.Context, parserName string, src Source, opts Options) (*model.ParserResult, error) {
	opts = opts.WithDefaults()
	start := time.Now()

	ctx, span := opts.Tracer.Start(ctx, spanParse, trace.WithAttributes(attribute.String("parser", parserName)))
	defer span.End()

	ctx = observability.WithParser(ctx, parserName)

	names := SelectNames(src.AssemblyNames(), opts.Assembly)
	assemblies := make([]*model.Assembly, 0, len(names))
	stats := observability.ParseStats{Parser: parserName}

	for _, name := range names {
		assembly, err := runAssembly(ctx, src, name, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return nil, err
		}

		classes := assembly.Classes()
		stats.Classes += len(classes)
		stats.CoveredLines += assembly.CoveredLines()
		stats.CoverableLines += assembly.CoverableLines()

		for _, class := range classes {
			stats.Files += len(class.Files())
		}

		assemblies = append(assemblies, assembly)
	}

	stats.Assemblies = len(assemblies)
	stats.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("assemblies", stats.Assemblies),
		attribute.Int("classes", stats.Classes),
	)

	opts.Metrics.RecordParse(ctx, stats)
	opts.Logger.DebugContext(ctx, "parsed coverage report",
		"assemblies", stats.Assemblies,
		"classes", stats.Classes,
		"files", stats.Files,
		"coverable_lines", stats.CoverableLines,
		"duration", stats.Duration,
	)

	return model.NewParserResult(assemblies, src.SupportsBranchCoverage(), parserName), nil
}

func runAssembly(ctx context.Context, src Source, name string, opts Options) (*model.Assembly, error) {
	ctx, span := opts.Tracer.Start(ctx, spanAssembly, trace.WithAttributes(attribute.String("assembly", name)))
	defer span.End()

	ctx = observability.WithAssembly(ctx, name)
	opts.Logger.DebugContext(ctx, "processing assembly")

	assembly := model.NewAssembly(name)
	classNames := SelectNames(src.ClassNames(name), opts.Class)

	classes, err := ProcessClasses(ctx, opts.Workers, classNames, func(_ context.Context, className string) (*model.Class, error) {
		return src.BuildClass(assembly, className, opts.File)
	})
	if err != nil {
		return nil, fmt.Errorf("assembly %s: %w", name, err)
	}

	for _, class := range classes {
		assembly.AddClass(class)
	}

	assembly.SortClasses()

	return assembly, nil
}
