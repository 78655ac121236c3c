package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/coverfang/pkg/ingest"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser/ncover"
	"github.com/Sumatoshi-tech/coverfang/pkg/parser/visualstudio"
)

const ncoverReport = `<coverage><module assembly="A"><method name="M" class="A.C" excluded="false">` +
	`<seqpnt visitcount="1" line="1" endline="2" document="a.cs" /></method></module></coverage>`

const visualStudioReport = `<CoverageDSPriv><Module><ModuleName>B</ModuleName><NamespaceTable><NamespaceName>N</NamespaceName>` +
	`<Class><ClassName>C</ClassName><Method><MethodName>M()</MethodName><MethodKeyName>M()!1</MethodKeyName>` +
	`<BlocksCovered>1</BlocksCovered><BlocksNotCovered>0</BlocksNotCovered>` +
	`<Lines><LnStart>1</LnStart><LnEnd>1</LnEnd><Coverage>0</Coverage><SourceFileID>1</SourceFileID></Lines>` +
	`</Method></Class></NamespaceTable></Module>` +
	`<SourceFileNames><SourceFileID>1</SourceFileID><SourceFileName>b.cs</SourceFileName></SourceFileNames></CoverageDSPriv>`

func TestFormats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{ingest.FormatNCover, ingest.FormatVisualStudio}, ingest.Formats())
}

func TestParse_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   string
		report   string
		wantName string
		wantAsm  string
	}{
		{ingest.FormatNCover, ncoverReport, ncover.Name, "A"},
		{"VisualStudio", visualStudioReport, visualstudio.Name, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			result, err := ingest.Parse(context.Background(), tt.format, strings.NewReader(tt.report), parser.Options{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, result.ParserName())
			require.Len(t, result.Assemblies(), 1)
			assert.Equal(t, tt.wantAsm, result.Assemblies()[0].Name())
		})
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := ingest.Parse(context.Background(), "cobertura", strings.NewReader(ncoverReport), parser.Options{})
	require.ErrorIs(t, err, ingest.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "ncover, visualstudio")
}

func TestParse_DecodeError(t *testing.T) {
	t.Parallel()

	_, err := ingest.Parse(context.Background(), ingest.FormatNCover, strings.NewReader("<coverage"), parser.Options{})
	require.ErrorIs(t, err, ingest.ErrDecode)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "coverage.xml")
	require.NoError(t, os.WriteFile(path, []byte(ncoverReport), 0o600))

	result, err := ingest.ParseFile(context.Background(), ingest.FormatNCover, path, 1<<20, parser.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Assemblies(), 1)

	_, err = ingest.ParseFile(context.Background(), ingest.FormatNCover, path, 16, parser.Options{})
	require.ErrorIs(t, err, ingest.ErrReportTooLarge)

	_, err = ingest.ParseFile(context.Background(), ingest.FormatNCover, path, 0, parser.Options{})
	require.NoError(t, err)
}

func TestParseFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ingest.ParseFile(context.Background(), ingest.FormatNCover, filepath.Join(t.TempDir(), "none.xml"), 0, parser.Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}
