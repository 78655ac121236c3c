package summary

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed report.schema.json
var schemaJSON []byte

// ErrSchemaViolation is returned when a JSON summary does not match the report schema.
var ErrSchemaViolation = errors.New("summary does not match report schema")

// Violation is one schema error.
type Violation struct {
	Field       string
	Description string
}

// Schema returns the JSON schema describing the FormatJSON output.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)

	return out
}

// Validate checks a JSON document against the report schema. On mismatch the
// returned error wraps ErrSchemaViolation and the violations are listed.
func Validate(data []byte) ([]Violation, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate summary: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	descriptions := make([]string, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		violations = append(violations, Violation{Field: verr.Field(), Description: verr.Description()})
		descriptions = append(descriptions, verr.String())
	}

	return violations, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(descriptions, "; "))
}
