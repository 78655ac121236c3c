package visualstudio

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
const Name = "VisualStudioParser"

// coveredBelow is the exclusive upper bound of coverage codes that count a
// line as visited: 0 is covered, 1 partially covered, 2 not covered.
const coveredBelow = 2

var (
	lambdaMethodName = regexp.MustCompile(`<.+>.+__`)
	stateMachineKey  = regexp.MustCompile(`^.*<(?P<name>.+)>.+__.+!MoveNext\(\)!.+$`)
	methodSignature  = regexp.MustCompile(`^(?P<name>.+)\((?P<args>.*)\).*$`)
)

// Parser converts Visual Studio block coverage into the canonical model.
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

// Parse builds a ParserResult from doc.
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

type line struct {
	fileID string
	lines  parser.LineRange
}

type method struct {
	name          string
	keyName       string
	generated     bool
	blocksCovered int
	blocksMissed  int
	lines         []line
}

type class struct {
	// fullName is NamespaceName + "." + ClassName.
	fullName  string
	namespace string
	className string
	methods   []*method
}

type source struct {
	assemblies []string
	classes    map[string][]*class
	paths      map[string]string
}

func index(doc *Report) (*source, error) {
	src := &source{
		classes: make(map[string][]*class),
		paths:   make(map[string]string, len(doc.SourceFileNames)),
	}

	for _, sf := range doc.SourceFileNames {
		src.paths[strings.TrimSpace(sf.SourceFileID)] = sf.SourceFileName
	}

	for _, module := range doc.Modules {
		src.assemblies = append(src.assemblies, module.ModuleName)

		for _, ns := range module.NamespaceTables {
			for _, c := range ns.Classes {
				parsed := &class{
					fullName:  ns.NamespaceName + "." + c.ClassName,
					namespace: ns.NamespaceName,
					className: c.ClassName,
				}

				for _, m := range c.Methods {
					pm, err := src.parseMethod(m, strings.Contains(c.ClassName, "<"))
					if err != nil {
						return nil, fmt.Errorf("%s %s.%s: %w", module.ModuleName, parsed.fullName, m.MethodName, err)
					}

					parsed.methods = append(parsed.methods, pm)
				}

				src.classes[module.ModuleName] = append(src.classes[module.ModuleName], parsed)
			}
		}
	}

	return src, nil
}

func (s *source) parseMethod(m Method, generated bool) (*method, error) {
	covered, err := parser.ParseCount("BlocksCovered", m.BlocksCovered)
	if err != nil {
		return nil, err
	}

	missed, err := parser.ParseCount("BlocksNotCovered", m.BlocksNotCovered)
	if err != nil {
		return nil, err
	}

	pm := &method{
		name:          m.MethodName,
		keyName:       m.MethodKeyName,
		generated:     generated,
		blocksCovered: covered,
		blocksMissed:  missed,
	}

	for _, l := range m.Lines {
		parsed, err := s.parseLines(l)
		if err != nil {
			return nil, err
		}

		pm.lines = append(pm.lines, parsed)
	}

	return pm, nil
}

func (s *source) parseLines(l Lines) (line, error) {
	start, err := parser.ParseLine("LnStart", l.LnStart)
	if err != nil {
		return line{}, err
	}

	end, err := parser.ParseLine("LnEnd", l.LnEnd)
	if err != nil {
		return line{}, err
	}

	code, err := parser.ParseCount("Coverage", l.Coverage)
	if err != nil {
		return line{}, err
	}

	fileID := strings.TrimSpace(l.SourceFileID)
	if _, ok := s.paths[fileID]; !ok {
		return line{}, fmt.Errorf("%w: %q", parser.ErrUnknownSourceFile, l.SourceFileID)
	}

	visited := 0
	if code < coveredBelow {
		visited = 1
	}

	return line{fileID: fileID, lines: parser.LineRange{Start: start, End: end, Visits: visited}}, nil
}

func (s *source) AssemblyNames() []string { return s.assemblies }

func (s *source) SupportsBranchCoverage() bool { return false }

// ClassNames reduces nested class names to their outermost type and skips
// compiler-generated and "$"-prefixed types.
func (s *source) ClassNames(assembly string) []string {
	var names []string

	for _, c := range s.classes[assembly] {
		if strings.Contains(c.className, "<>") || strings.HasPrefix(c.className, "$") {
			continue
		}

		outer, _, _ := strings.Cut(c.className, ".")
		names = append(names, c.namespace+"."+outer)
	}

	return names
}

func (s *source) BuildClass(assembly *model.Assembly, className string, files filter.Filter) (*model.Class, error) {
	var methods []*method

	for _, c := range s.classes[assembly.Name()] {
		if c.fullName == className || strings.HasPrefix(c.fullName, className+".") {
			methods = append(methods, c.methods...)
		}
	}

	candidates := fileIDsOf(methods)

	var surviving []string

	for _, id := range candidates {
		if files.Includes(s.paths[id]) {
			surviving = append(surviving, id)
		}
	}

	if !parser.RetainClass(len(candidates), len(surviving), files) {
		return nil, nil
	}

	class := model.NewClass(className, assembly)

	for _, id := range surviving {
		file, err := buildFile(s.paths[id], id, methods)
		if err != nil {
			return nil, err
		}

		class.AddFile(file)
	}

	return class, nil
}

func fileIDsOf(methods []*method) []string {
	seen := make(map[string]struct{})

	var ids []string

	for _, m := range methods {
		for _, l := range m.lines {
			if _, ok := seen[l.fileID]; ok {
				continue
			}

			seen[l.fileID] = struct{}{}
			ids = append(ids, l.fileID)
		}
	}

	return ids
}

func (m *method) rangesIn(fileID string) []parser.LineRange {
	var ranges []parser.LineRange

	for _, l := range m.lines {
		if l.fileID == fileID {
			ranges = append(ranges, l.lines)
		}
	}

	return ranges
}

func buildFile(path, fileID string, methods []*method) (*model.CodeFile, error) {
	var ranges []parser.LineRange

	for _, m := range methods {
		ranges = append(ranges, m.rangesIn(fileID)...)
	}

	coverage, status := parser.BuildLineCoverage(ranges, parser.BinaryVisits)

	file, err := model.NewCodeFile(path, coverage, status)
	if err != nil {
		return nil, err
	}

	for _, m := range methods {
		own := m.rangesIn(fileID)
		if len(own) == 0 || lambdaMethodName.MatchString(m.name) {
			continue
		}

		name, ok := m.displayName()
		if !ok {
			continue
		}

		if !strings.HasPrefix(m.name, "get_") && !strings.HasPrefix(m.name, "set_") {
			file.AddMethodMetric(m.metric(name, own[0].Start))
		}

		first, last, _ := parser.Span(own)
		elementName, elementType := parser.SplitAccessor(name)
		file.AddCodeElement(model.NewCodeElement(elementName, elementType, first, last))
	}

	return file, nil
}

// displayName resolves async and iterator state machine bodies to the method
// the author declared. Other members of generated types are skipped.
func (m *method) displayName() (string, bool) {
	if strings.Contains(m.keyName, "MoveNext()") {
		if match := stateMachineKey.FindStringSubmatch(m.keyName); match != nil {
			return match[stateMachineKey.SubexpIndex("name")] + "()", true
		}
	}

	if m.generated {
		return "", false
	}

	return m.name, true
}

func (m *method) metric(fullName string, line int) *model.MethodMetric {
	mm := model.NewMethodMetric(fullName, shortName(fullName),
		model.NewMetric(model.MetricBlocksCovered, model.CodeCoverageURI,
			model.MetricTypeCoverageAbsolute, float64(m.blocksCovered)),
		model.NewMetric(model.MetricBlocksNotCovered, model.CodeCoverageURI,
			model.MetricTypeCoverageAbsolute, float64(m.blocksMissed)).WithMergeOrder(model.LowerIsBetter),
	)
	mm.Line = line

	return mm
}

// shortName collapses an argument list to "(...)", or "()" when empty.
func shortName(fullName string) string {
	match := methodSignature.FindStringSubmatch(fullName)
	if match == nil {
		return fullName
	}

	args := ""
	if match[methodSignature.SubexpIndex("args")] != "" {
		args = "..."
	}

	return match[methodSignature.SubexpIndex("name")] + "(" + args + ")"
}
