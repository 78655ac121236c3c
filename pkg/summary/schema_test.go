package summary_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/coverfang/pkg/summary"
)

func TestSchema_IsJSON(t *testing.T) {
	t.Parallel()

	var doc map[string]any
	require.NoError(t, json.Unmarshal(summary.Schema(), &doc))
	assert.Equal(t, "object", doc["type"])
}

func TestValidate_WrittenReport(t *testing.T) {
	t.Parallel()

	for _, withAnalysis := range []bool{true, false} {
		result, analysis := fixture(t)
		if !withAnalysis {
			analysis = nil
		}

		var buf bytes.Buffer
		require.NoError(t, summary.WriteJSON(&buf, summary.Build(result, analysis)))

		violations, err := summary.Validate(buf.Bytes())
		require.NoError(t, err)
		assert.Empty(t, violations)
	}
}

func TestValidate_Violations(t *testing.T) {
	t.Parallel()

	doc := `{
  "parser": "NCoverParser",
  "supports_branch_coverage": false,
  "lines": {"covered": -1, "coverable": 3, "rate": 0.5},
  "assemblies": [],
  "code_quality_metrics_available": false
}`

	violations, err := summary.Validate([]byte(doc))
	require.ErrorIs(t, err, summary.ErrSchemaViolation)

	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}

	assert.Contains(t, fields, "lines.covered")
	assert.Contains(t, fields, "(root)")
}

func TestValidate_NotJSON(t *testing.T) {
	t.Parallel()

	_, err := summary.Validate([]byte("{not json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, summary.ErrSchemaViolation)
}
