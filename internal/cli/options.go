package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

// maxIndent bounds every --indent flag.
const maxIndent = 16

type jsonFormatOptions struct {
	Path    string `flag:"path" validate:"required"`
	Indent  int    `flag:"indent" validate:"gte=0,lte=16"`
	Write   bool   `flag:"write"`
	Verbose bool   `flag:"verbose"`
}

type jsonSplitOptions struct {
	Path    string `flag:"path" validate:"required"`
	Depth   int    `flag:"depth" validate:"gte=0"`
	Indent  int    `flag:"indent" validate:"gte=0,lte=16"`
	Verbose bool   `flag:"verbose"`
}

type jsonValidateOptions struct {
	Path   string `flag:"path" validate:"required"`
	Schema string `flag:"schema" validate:"required"`
}

type xmlFormatOptions struct {
	Path       string   `flag:"path" validate:"required"`
	Indent     int      `flag:"indent" validate:"gte=0,lte=16"`
	Strict     bool     `flag:"strict"`
	Extensions []string `flag:"ext" validate:"required_if=Strict true,dive,required,excludesall=/\\"`
	Write      bool     `flag:"write"`
	Verbose    bool     `flag:"verbose"`
}

type autoFormatOptions struct {
	Path       string   `flag:"path" validate:"required"`
	JSONIndent int      `flag:"json-indent" validate:"gte=0,lte=16"`
	XMLIndent  int      `flag:"xml-indent" validate:"gte=0,lte=16"`
	Extensions []string `flag:"ext" validate:"dive,required,excludesall=/\\"`
	Write      bool     `flag:"write"`
	Verbose    bool     `flag:"verbose"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})

	return v
}

// validateOptions checks opts and reports the first violation as a usage
// error (exit code 2) naming the offending flag.
func validateOptions(opts any) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ExitError{Code: 2, Err: err}
	}

	return &ExitError{Code: 2, Err: describeViolation(verrs[0])}
}

func describeViolation(fe validator.FieldError) error {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}

	if name == "path" {
		return errors.New("a file path is required")
	}

	switch fe.Tag() {
	case "gte", "lte":
		if name == "depth" {
			return fmt.Errorf("invalid --depth %v: must not be negative", fe.Value())
		}

		return fmt.Errorf("invalid --%s %v: must be between 0 and %d", name, fe.Value(), maxIndent)
	case "required_if":
		return fmt.Errorf("--%s must list at least one extension in strict mode", name)
	case "required":
		if name == fe.Field() {
			return fmt.Errorf("--%s is required", name)
		}

		return fmt.Errorf("--%s must not contain empty extensions", name)
	case "excludesall":
		return fmt.Errorf("invalid --%s %q: must be a file extension", name, fe.Value())
	default:
		return fmt.Errorf("invalid --%s: failed %q check", name, fe.Tag())
	}
}

// intFlag returns the value of an int flag when it was set explicitly, and
// def otherwise.
func intFlag(cmd *cobra.Command, name string, def int) int {
	if !cmd.Flags().Changed(name) {
		return def
	}

	v, _ := cmd.Flags().GetInt(name)

	return v
}

// strictFlag resolves the --strict/--no-strict pair against the configured
// default. --no-strict wins when both are given.
func strictFlag(cmd *cobra.Command, def bool) bool {
	if noStrict, _ := cmd.Flags().GetBool("no-strict"); noStrict {
		return false
	}

	if cmd.Flags().Changed("strict") {
		strict, _ := cmd.Flags().GetBool("strict")
		return strict
	}

	return def
}

// extFlag returns --ext when set and the configured extensions otherwise.
func extFlag(cmd *cobra.Command, def []string) []string {
	if !cmd.Flags().Changed("ext") {
		return def
	}

	exts, _ := cmd.Flags().GetStringSlice("ext")

	return exts
}
