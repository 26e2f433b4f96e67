package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// ErrNotArray is returned by SplitArray for documents whose root is not an
// array.
var ErrNotArray = errors.New("input is not a JSON array")

// SchemaError lists the violations of a document against a JSON Schema.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

// Validate checks the JSON document data against the JSON Schema in schema.
// Malformed data yields a *SyntaxError, a document that does not satisfy the
// schema a *SchemaError.
func Validate(data, schema []byte) error {
	if _, err := Parse(data); err != nil {
		return err
	}

	compiled, err := jsonschema.NewCompiler().Compile(schema)
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return err
	}

	result := compiled.Validate(instance)
	if result.Valid {
		return nil
	}

	var violations []string
	collectViolations(result, &violations)

	if len(violations) == 0 {
		violations = []string{"document does not match the schema"}
	}

	return &SchemaError{Violations: violations}
}

// collectViolations walks the evaluation tree depth first. Errors of one
// node are ordered by keyword.
func collectViolations(r *jsonschema.EvaluationResult, out *[]string) {
	keywords := make([]string, 0, len(r.Errors))
	for k := range r.Errors {
		keywords = append(keywords, k)
	}

	sort.Strings(keywords)

	loc := r.InstanceLocation
	if loc == "" {
		loc = "/"
	}

	for _, k := range keywords {
		*out = append(*out, fmt.Sprintf("%s: %s", loc, r.Errors[k].Error()))
	}

	for _, d := range r.Details {
		if !d.Valid {
			collectViolations(d, out)
		}
	}
}

// SplitArray parses data and returns the elements of its root array.
func SplitArray(data []byte) ([]Value, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if v.Kind() != KindArray {
		return nil, fmt.Errorf("%w: root is %s", ErrNotArray, v.Kind())
	}

	return v.Elements(), nil
}
