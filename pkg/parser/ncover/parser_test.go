package ncover_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/coverfang/pkg/filter"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser/ncover"
)

const sampleReport = `<?xml version="1.0" encoding="utf-8"?>
<coverage profilerVersion="1.5.8" driverVersion="1.5.8">
  <module moduleId="1" name="Shop.dll" assembly="Shop">
    <method name="Add" excluded="false" instrumented="true" class="Shop.Cart">
      <seqpnt visitcount="2" line="10" column="9" endline="12" endcolumn="10" excluded="false" document="C:\src\Cart.cs" />
      <seqpnt visitcount="3" line="11" column="13" endline="11" endcolumn="40" excluded="false" document="C:\src\Cart.cs" />
      <seqpnt visitcount="9" line="16707566" column="0" endline="16707566" endcolumn="0" excluded="false" document="C:\src\Cart.cs" />
    </method>
    <method name="get_Total" excluded="false" instrumented="true" class="Shop.Cart">
      <seqpnt visitcount="0" line="20" column="27" endline="20" endcolumn="31" excluded="false" document="C:\src\Cart.cs" />
    </method>
    <method name="&lt;Add&gt;b__0" excluded="false" instrumented="true" class="Shop.Cart">
      <seqpnt visitcount="1" line="14" column="5" endline="14" endcolumn="20" excluded="false" document="C:\src\Cart.cs" />
    </method>
    <method name="MoveNext" excluded="false" instrumented="true" class="Shop.Cart+&lt;CheckoutAsync&gt;d__4">
      <seqpnt visitcount="0" line="30" column="5" endline="31" endcolumn="6" excluded="false" document="C:\src\Cart.cs" />
    </method>
    <method name="Apply" excluded="false" instrumented="true" class="Shop.Cart+Discount">
      <seqpnt visitcount="1" line="40" column="5" endline="42" endcolumn="6" excluded="false" document="C:\src\CartDiscount.cs" />
    </method>
    <method name="Ignored" excluded="true" instrumented="true" class="Shop.Legacy">
      <seqpnt visitcount="1" line="1" column="1" endline="1" endcolumn="2" excluded="false" document="C:\src\Legacy.cs" />
    </method>
    <method name="Generated" excluded="false" instrumented="true" class="Shop.Generated">
      <seqpnt visitcount="1" line="3" column="1" endline="3" endcolumn="2" excluded="false" document="C:\obj\Generated.cs" />
    </method>
    <method name="Method" excluded="false" instrumented="true" class="Shop.IPayment">
    </method>
  </module>
  <module moduleId="2" name="Core.dll" assembly="Core">
    <method name="Run" excluded="false" instrumented="true" class="Core.Engine">
      <seqpnt visitcount="0" line="5" column="1" endline="6" endcolumn="2" excluded="false" document="/src/Engine.cs" />
    </method>
  </module>
</coverage>`

func decode(t *testing.T, raw string) *ncover.Report {
	t.Helper()

	report, err := ncover.Decode(strings.NewReader(raw))
	require.NoError(t, err)

	return report
}

func parse(t *testing.T, opts parser.Options) *model.ParserResult {
	t.Helper()

	result, err := ncover.NewParser(opts).Parse(context.Background(), decode(t, sampleReport))
	require.NoError(t, err)

	return result
}

func findClass(t *testing.T, result *model.ParserResult, assembly, class string) *model.Class {
	t.Helper()

	for _, a := range result.Assemblies() {
		if a.Name() != assembly {
			continue
		}

		for _, c := range a.Classes() {
			if c.Name() == class {
				return c
			}
		}
	}

	return nil
}

func TestParse_NilDocument(t *testing.T) {
	t.Parallel()

	result, err := ncover.NewParser(parser.Options{}).Parse(context.Background(), nil)
	require.ErrorIs(t, err, parser.ErrNilDocument)
	assert.Nil(t, result)
}

func TestParse_AssembliesAndClassesSorted(t *testing.T) {
	t.Parallel()

	result := parse(t, parser.Options{})

	assert.Equal(t, ncover.Name, result.ParserName())
	assert.False(t, result.SupportsBranchCoverage())

	assemblies := result.Assemblies()
	require.Len(t, assemblies, 2)
	assert.Equal(t, "Core", assemblies[0].Name())
	assert.Equal(t, "Shop", assemblies[1].Name())

	var names []string
	for _, c := range assemblies[1].Classes() {
		names = append(names, c.Name())
	}

	assert.Equal(t, []string{"Shop.Cart", "Shop.Generated", "Shop.IPayment"}, names)
}

func TestParse_SummedLineCoverage(t *testing.T) {
	t.Parallel()

	cart := findClass(t, parse(t, parser.Options{}), "Shop", "Shop.Cart")
	require.NotNil(t, cart)

	files := cart.Files()
	require.Len(t, files, 2)
	assert.Equal(t, `C:\src\Cart.cs`, files[0].Path())
	assert.Equal(t, `C:\src\CartDiscount.cs`, files[1].Path())

	coverage := files[0].LineCoverage()
	status := files[0].LineVisitStatus()

	require.Len(t, coverage, 32)
	assert.Len(t, status, 32)
	assert.Equal(t, 2, coverage[10])
	assert.Equal(t, 5, coverage[11])
	assert.Equal(t, 2, coverage[12])
	assert.Equal(t, model.NoData, coverage[13])
	assert.Equal(t, 1, coverage[14], "lambda sequence points still count")
	assert.Equal(t, 0, coverage[20])
	assert.Equal(t, model.NotCovered, status[20])
	assert.Equal(t, model.NotCovered, status[30], "state machine lines fold into the class")
	assert.Equal(t, model.NotCoverable, status[25])
}

func TestParse_CodeElementsAndMetrics(t *testing.T) {
	t.Parallel()

	cart := findClass(t, parse(t, parser.Options{}), "Shop", "Shop.Cart")
	require.NotNil(t, cart)

	file := cart.Files()[0]

	elements := file.CodeElements()
	require.Len(t, elements, 2)
	assert.Equal(t, model.CodeElement{Name: "Add", Type: model.CodeElementMethod, FirstLine: 10, LastLine: 12}, *elements[0])
	assert.Equal(t, model.CodeElement{Name: "Total", Type: model.CodeElementProperty, FirstLine: 20, LastLine: 20}, *elements[1])

	metrics := file.MethodMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, "Shop.Cart::Add", metrics[0].FullName)
	assert.Equal(t, "Add", metrics[0].ShortName)
	assert.Equal(t, 10, metrics[0].Line)
	require.Len(t, metrics[0].Metrics, 2)
	assert.InDelta(t, 2, metrics[0].Metrics[0].Value, 0)
	assert.Equal(t, model.LowerIsBetter, metrics[0].Metrics[1].MergeOrder)

	for _, mm := range metrics {
		assert.NotContains(t, mm.ShortName, "<")
	}

	discount := cart.Files()[1].CodeElements()
	require.Len(t, discount, 1)
	assert.Equal(t, "Apply", discount[0].Name)
}

func TestParse_ClassRetention(t *testing.T) {
	t.Parallel()

	unfiltered := parse(t, parser.Options{})
	iface := findClass(t, unfiltered, "Shop", "Shop.IPayment")
	require.NotNil(t, iface, "file-less class is kept without file rules")
	assert.Empty(t, iface.Files())

	files, err := filter.NewPathFilter([]string{"-*/obj/*"})
	require.NoError(t, err)

	filtered := parse(t, parser.Options{File: files})
	assert.Nil(t, findClass(t, filtered, "Shop", "Shop.Generated"))
	assert.Nil(t, findClass(t, filtered, "Shop", "Shop.IPayment"))
	assert.NotNil(t, findClass(t, filtered, "Shop", "Shop.Cart"))
}

func TestParse_SlashNestedTypeFoldsIntoOwner(t *testing.T) {
	t.Parallel()

	const report = `<coverage>
  <module moduleId="1" name="Ns.dll" assembly="Ns">
    <method name="Outer" excluded="false" instrumented="true" class="Ns.Outer">
      <seqpnt visitcount="1" line="1" column="1" endline="1" endcolumn="2" excluded="false" document="/src/Outer.cs" />
    </method>
    <method name="Inner" excluded="false" instrumented="true" class="Ns.Outer/Inner">
      <seqpnt visitcount="2" line="5" column="1" endline="5" endcolumn="2" excluded="false" document="/src/Outer.cs" />
    </method>
  </module>
</coverage>`

	result, err := ncover.NewParser(parser.Options{}).Parse(context.Background(), decode(t, report))
	require.NoError(t, err)

	require.Len(t, result.Assemblies(), 1)
	classes := result.Assemblies()[0].Classes()
	require.Len(t, classes, 1)
	assert.Equal(t, "Ns.Outer", classes[0].Name())

	files := classes[0].Files()
	require.Len(t, files, 1)
	assert.Equal(t, []int{model.NoData, 1, model.NoData, model.NoData, model.NoData, 2}, files[0].LineCoverage())
	assert.Len(t, files[0].CodeElements(), 2)
}

func TestParse_LineZeroRecordNotCounted(t *testing.T) {
	t.Parallel()

	const report = `<coverage>
  <module moduleId="1" name="Ns.dll" assembly="Ns">
    <method name="Run" excluded="false" instrumented="true" class="Ns.Job">
      <seqpnt visitcount="3" line="0" column="1" endline="0" endcolumn="2" excluded="false" document="/src/Job.cs" />
      <seqpnt visitcount="0" line="2" column="1" endline="2" endcolumn="2" excluded="false" document="/src/Job.cs" />
    </method>
  </module>
</coverage>`

	result, err := ncover.NewParser(parser.Options{}).Parse(context.Background(), decode(t, report))
	require.NoError(t, err)

	job := findClass(t, result, "Ns", "Ns.Job")
	require.NotNil(t, job)

	file := job.Files()[0]
	assert.Equal(t, []int{model.NoData, model.NoData, 0}, file.LineCoverage())
	assert.Equal(t, 1, file.CoverableLines())
	assert.Zero(t, file.CoveredLines())
}

func TestParse_ExcludedMethodsIgnored(t *testing.T) {
	t.Parallel()

	assert.Nil(t, findClass(t, parse(t, parser.Options{}), "Shop", "Shop.Legacy"))
}

func TestParse_AssemblyAndClassFilters(t *testing.T) {
	t.Parallel()

	assemblies, err := filter.New([]string{"+Shop"})
	require.NoError(t, err)

	classes, err := filter.New([]string{"-Shop.Generated"})
	require.NoError(t, err)

	result := parse(t, parser.Options{Assembly: assemblies, Class: classes})

	require.Len(t, result.Assemblies(), 1)
	assert.Nil(t, findClass(t, result, "Shop", "Shop.Generated"))
}

func TestParse_MalformedRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr string
	}{
		{"line", `visitcount="1" line="ten" endline="10"`},
		{"endline", `visitcount="1" line="10" endline=""`},
		{"visitcount", `visitcount="lots" line="10" endline="10"`},
		{"negative", `visitcount="1" line="-4" endline="10"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := `<coverage><module assembly="A"><method name="M" class="A.C" excluded="false">` +
				`<seqpnt ` + tt.attr + ` document="a.cs" /></method></module></coverage>`

			result, err := ncover.NewParser(parser.Options{}).Parse(context.Background(), decode(t, raw))
			require.ErrorIs(t, err, parser.ErrMalformedRecord)
			assert.Nil(t, result)
		})
	}
}

func TestParse_LargeVisitCountSaturates(t *testing.T) {
	t.Parallel()

	raw := `<coverage><module assembly="A"><method name="M" class="A.C" excluded="false">` +
		`<seqpnt visitcount="99999999999999999999" line="1" endline="1" document="a.cs" />` +
		`<seqpnt visitcount="5" line="1" endline="1" document="a.cs" />` +
		`</method></module></coverage>`

	result, err := ncover.NewParser(parser.Options{}).Parse(context.Background(), decode(t, raw))
	require.NoError(t, err)

	coverage := findClass(t, result, "A", "A.C").Files()[0].LineCoverage()
	assert.Equal(t, int(^uint(0)>>1), coverage[1])
}

func TestParse_Deterministic(t *testing.T) {
	t.Parallel()

	p := ncover.NewParser(parser.Options{Workers: 4})
	doc := decode(t, sampleReport)

	first, err := p.Parse(context.Background(), doc)
	require.NoError(t, err)

	for range 10 {
		again, err := p.Parse(context.Background(), doc)
		require.NoError(t, err)

		for i, a := range again.Assemblies() {
			want := first.Assemblies()[i]
			require.Equal(t, want.Name(), a.Name())
			require.Len(t, a.Classes(), len(want.Classes()))

			for j, c := range a.Classes() {
				assert.Equal(t, want.Classes()[j].Name(), c.Name())
			}
		}
	}
}

func TestDecode_InvalidXML(t *testing.T) {
	t.Parallel()

	_, err := ncover.Decode(strings.NewReader("<coverage><module"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ncover report")
}
