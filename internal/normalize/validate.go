package normalize

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hupe1980/dander/internal/document"
)

// ValidateJSON checks the JSON document at path against the JSON Schema
// stored at schemaPath. A document that does not satisfy the schema fails
// with ErrSchemaViolation and a *document.SchemaError cause.
func (n *Normalizer) ValidateJSON(ctx context.Context, path, schemaPath string) error {
	n.logger.Debug("validating JSON file", slog.String("path", path), slog.String("schema", schemaPath))

	data, err := readSource(n.fs, opValidate, path, ErrIsADirectory)
	if err != nil {
		return err
	}

	if _, err := document.Parse(data); err != nil {
		return newError(opValidate, path, ErrParse, err)
	}

	schema, err := readSource(n.fs, opValidate, schemaPath, ErrIsADirectory)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err = document.Validate(data, schema)

	var schemaErr *document.SchemaError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &schemaErr):
		n.logger.Debug("schema violations", slog.Int("count", len(schemaErr.Violations)))
		return newError(opValidate, path, ErrSchemaViolation, err)
	default:
		return newError(opValidate, schemaPath, ErrParse, err)
	}
}
