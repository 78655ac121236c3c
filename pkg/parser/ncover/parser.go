package ncover

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/coverfang/pkg/filter"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser"
)

// Name identifies results produced by this parser.
const Name = "NCoverParser"

var lambdaMethodName = regexp.MustCompile(`<.+>.+__.+`)

// Parser converts NCover reports into the canonical model.
type Parser struct {
	opts parser.Options
}

var _ parser.Parser[Report] = (*Parser)(nil)

// NewParser creates a parser with the given filters and fan-out settings.
func NewParser(opts parser.Options) *Parser {
	return &Parser{opts: opts}
}

// Name returns the parser label stored in every result.
func (p *Parser) Name() string { return Name }

// Parse builds a ParserResult from doc. Every sequence point is validated
// before any class is built, so a malformed record fails the whole document.
func (p *Parser) Parse(ctx context.Context, doc *Report) (*model.ParserResult, error) {
	if doc == nil {
		return nil, parser.ErrNilDocument
	}

	src, err := index(doc)
	if err != nil {
		return nil, err
	}

	return parser.Run(ctx, Name, src, p.opts)
}

type point struct {
	document string
	lines    parser.LineRange
}

type method struct {
	name   string
	class  string
	points []point
}

type source struct {
	assemblies []string
	methods    map[string][]*method
}

func index(doc *Report) (*source, error) {
	src := &source{methods: make(map[string][]*method)}

	for _, module := range doc.Modules {
		src.assemblies = append(src.assemblies, module.Assembly)

		for _, m := range module.Methods {
			if strings.EqualFold(m.Excluded, "true") {
				continue
			}

			parsed, err := parseMethod(m)
			if err != nil {
				return nil, fmt.Errorf("%s %s.%s: %w", module.Assembly, m.Class, m.Name, err)
			}

			src.methods[module.Assembly] = append(src.methods[module.Assembly], parsed)
		}
	}

	return src, nil
}

func parseMethod(m Method) (*method, error) {
	parsed := &method{name: m.Name, class: m.Class}

	for _, sp := range m.Points {
		start, err := parser.ParseLine("line", sp.Line)
		if err != nil {
			return nil, err
		}

		if start == parser.HiddenLine {
			continue
		}

		end, err := parser.ParseLine("endline", sp.EndLine)
		if err != nil {
			return nil, err
		}

		visits, err := parser.ParseCount("visitcount", sp.VisitCount)
		if err != nil {
			return nil, err
		}

		parsed.points = append(parsed.points, point{
			document: sp.Document,
			lines:    parser.LineRange{Start: start, End: end, Visits: visits},
		})
	}

	return parsed, nil
}

func (s *source) AssemblyNames() []string { return s.assemblies }

func (s *source) SupportsBranchCoverage() bool { return false }

// ClassNames skips nested and compiler-generated types; their methods fold
// into the declaring class.
func (s *source) ClassNames(assembly string) []string {
	var names []string

	for _, m := range s.methods[assembly] {
		if strings.Contains(m.class, "__") || isNested(m.class) {
			continue
		}

		names = append(names, m.class)
	}

	return names
}

func (s *source) BuildClass(assembly *model.Assembly, className string, files filter.Filter) (*model.Class, error) {
	var members []*method

	for _, m := range s.methods[assembly.Name()] {
		if belongsTo(m.class, className) {
			members = append(members, m)
		}
	}

	candidates := documentsOf(members)

	var surviving []string

	for _, path := range candidates {
		if files.Includes(path) {
			surviving = append(surviving, path)
		}
	}

	if !parser.RetainClass(len(candidates), len(surviving), files) {
		return nil, nil
	}

	class := model.NewClass(className, assembly)

	for _, path := range surviving {
		file, err := buildFile(path, className, members)
		if err != nil {
			return nil, err
		}

		class.AddFile(file)
	}

	return class, nil
}

func belongsTo(class, className string) bool {
	return class == className ||
		strings.HasPrefix(class, className+"+") ||
		strings.HasPrefix(class, className+"/")
}

// isNested reports whether class is declared inside another type, written
// Outer+Inner or Outer/Inner.
func isNested(class string) bool {
	return strings.ContainsAny(class, "+/")
}

func isGenerated(class string) bool {
	return strings.Contains(class, "<") || strings.Contains(class, "__")
}

func documentsOf(members []*method) []string {
	seen := make(map[string]struct{})

	var docs []string

	for _, m := range members {
		for _, p := range m.points {
			if _, ok := seen[p.document]; ok {
				continue
			}

			seen[p.document] = struct{}{}
			docs = append(docs, p.document)
		}
	}

	return docs
}

func rangesIn(m *method, path string) []parser.LineRange {
	var ranges []parser.LineRange

	for _, p := range m.points {
		if p.document == path {
			ranges = append(ranges, p.lines)
		}
	}

	return ranges
}

func buildFile(path, className string, members []*method) (*model.CodeFile, error) {
	var ranges []parser.LineRange

	for _, m := range members {
		ranges = append(ranges, rangesIn(m, path)...)
	}

	coverage, status := parser.BuildLineCoverage(ranges, parser.SumVisits)

	file, err := model.NewCodeFile(path, coverage, status)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		if m.class != className && isGenerated(m.class) {
			continue
		}

		if lambdaMethodName.MatchString(m.name) {
			continue
		}

		own := rangesIn(m, path)

		first, last, ok := parser.Span(own)
		if !ok {
			continue
		}

		name, elementType := parser.SplitAccessor(m.name)
		file.AddCodeElement(model.NewCodeElement(name, elementType, first, last))

		if elementType == model.CodeElementMethod {
			file.AddMethodMetric(methodMetric(m, own))
		}
	}

	return file, nil
}

func methodMetric(m *method, ranges []parser.LineRange) *model.MethodMetric {
	covered := 0

	for _, r := range ranges {
		if r.Visits > 0 {
			covered++
		}
	}

	mm := model.NewMethodMetric(m.class+"::"+m.name, m.name,
		model.NewMetric(model.MetricSequencePointsCovered, model.CodeCoverageURI,
			model.MetricTypeCoverageAbsolute, float64(covered)),
		model.NewMetric(model.MetricSequencePointsNotCovered, model.CodeCoverageURI,
			model.MetricTypeCoverageAbsolute, float64(len(ranges)-covered)).WithMergeOrder(model.LowerIsBetter),
	)
	mm.Line = ranges[0].Start

	return mm
}
