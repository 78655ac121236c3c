package model_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/coverfang/pkg/model"
)

func TestNewCodeFile_LengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := model.NewCodeFile("a.cs", []int{-1, 1}, []model.LineVisitStatus{model.NotCoverable})
	require.ErrorIs(t, err, model.ErrLineLengthMismatch)
}

func TestCodeFile_LineCounts(t *testing.T) {
	t.Parallel()

	file, err := model.NewCodeFile("a.cs",
		[]int{-1, 3, 0, -1, 1},
		[]model.LineVisitStatus{model.NotCoverable, model.Covered, model.NotCovered, model.NotCoverable, model.Covered},
	)
	require.NoError(t, err)

	assert.Equal(t, "a.cs", file.Path())
	assert.Equal(t, 3, file.CoverableLines())
	assert.Equal(t, 2, file.CoveredLines())
}

func TestCodeFile_LineCountsSkipIndexZero(t *testing.T) {
	t.Parallel()

	file, err := model.NewCodeFile("a.cs",
		[]int{2, 0, 1},
		[]model.LineVisitStatus{model.Covered, model.NotCovered, model.Covered},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, file.CoverableLines())
	assert.Equal(t, 1, file.CoveredLines())
}

func TestCodeFile_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	file, err := model.NewCodeFile("a.cs", []int{-1, 2}, []model.LineVisitStatus{model.NotCoverable, model.Covered})
	require.NoError(t, err)

	coverage := file.LineCoverage()
	coverage[1] = 99

	assert.Equal(t, []int{-1, 2}, file.LineCoverage())
}

func TestCodeFile_MembersKeepOrder(t *testing.T) {
	t.Parallel()

	file, err := model.NewCodeFile("a.cs", nil, nil)
	require.NoError(t, err)

	file.AddMethodMetric(model.NewMethodMetric("B()", "B()"))
	file.AddMethodMetric(model.NewMethodMetric("A()", "A()"))
	file.AddCodeElement(model.NewCodeElement("Name", model.CodeElementProperty, 3, 4))

	metrics := file.MethodMetrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, "B()", metrics[0].FullName)
	assert.Equal(t, "A()", metrics[1].FullName)

	elements := file.CodeElements()
	require.Len(t, elements, 1)
	assert.Equal(t, model.CodeElementProperty, elements[0].Type)
}

func TestMethodMetric_MetricsOfType(t *testing.T) {
	t.Parallel()

	mm := model.NewMethodMetric("Run()", "Run()",
		model.NewMetric(model.MetricBlocksCovered, model.CodeCoverageURI, model.MetricTypeCoverageAbsolute, 4),
		model.NewMetric(model.MetricCyclomaticComplexity, "cc", model.MetricTypeCodeQuality, 12),
		model.NewMetric(model.MetricCrapScore, "crap", model.MetricTypeCodeQuality, 3).WithMergeOrder(model.LowerIsBetter),
	)

	quality := mm.MetricsOfType(model.MetricTypeCodeQuality)
	require.Len(t, quality, 2)
	assert.Equal(t, model.MetricCyclomaticComplexity, quality[0].Name)
	assert.Equal(t, model.LowerIsBetter, quality[1].MergeOrder)
	assert.Equal(t, model.HigherIsBetter, quality[0].MergeOrder)
}

func TestAssembly_ConcurrentAddClassThenSort(t *testing.T) {
	t.Parallel()

	assembly := model.NewAssembly("Core.dll")

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			assembly.AddClass(model.NewClass(fmt.Sprintf("Ns.Class%02d", i), assembly))
		}(i)
	}

	wg.Wait()
	assembly.SortClasses()

	classes := assembly.Classes()
	require.Len(t, classes, 50)

	for i, c := range classes {
		assert.Equal(t, fmt.Sprintf("Ns.Class%02d", i), c.Name())
		assert.Same(t, assembly, c.Assembly())
	}
}

func TestClass_LineTotals(t *testing.T) {
	t.Parallel()

	assembly := model.NewAssembly("Core.dll")
	class := model.NewClass("Ns.Foo", assembly)

	first, err := model.NewCodeFile("a.cs", []int{-1, 1, 0}, []model.LineVisitStatus{model.NotCoverable, model.Covered, model.NotCovered})
	require.NoError(t, err)

	second, err := model.NewCodeFile("b.cs", []int{-1, 5}, []model.LineVisitStatus{model.NotCoverable, model.Covered})
	require.NoError(t, err)

	class.AddFile(first)
	class.AddFile(second)
	assembly.AddClass(class)

	assert.Equal(t, 3, class.CoverableLines())
	assert.Equal(t, 2, class.CoveredLines())
	assert.Equal(t, 3, assembly.CoverableLines())
	assert.Equal(t, 2, assembly.CoveredLines())
}

func TestNewParserResult_SortsAssemblies(t *testing.T) {
	t.Parallel()

	result := model.NewParserResult([]*model.Assembly{
		model.NewAssembly("Zeta"),
		model.NewAssembly("Alpha"),
		model.NewAssembly("Mid"),
	}, false, "NCoverParser")

	names := make([]string, 0, 3)
	for _, a := range result.Assemblies() {
		names = append(names, a.Name())
	}

	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, names)
	assert.False(t, result.SupportsBranchCoverage())
	assert.Equal(t, "NCoverParser", result.ParserName())
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Covered", model.Covered.String())
	assert.Equal(t, "NotCovered", model.NotCovered.String())
	assert.Equal(t, "NotCoverable", model.NotCoverable.String())
	assert.Equal(t, "CodeQuality", model.MetricTypeCodeQuality.String())
	assert.Equal(t, "CoverageAbsolute", model.MetricTypeCoverageAbsolute.String())
	assert.Equal(t, "Property", model.CodeElementProperty.String())
	assert.Equal(t, "LowerIsBetter", model.LowerIsBetter.String())
}
