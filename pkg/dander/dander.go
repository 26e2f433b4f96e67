// Package dander provides a public Go API for normalizing JSON and XML
// documents and splitting JSON collections into one file per member.
//
// Basic usage:
//
//	res, err := dander.FormatJSON(ctx, "config.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(res.Content))
//
// Rewriting a file in place:
//
//	_, err := dander.FormatXML(ctx, "pom.xml",
//	    dander.WithIndent(4),
//	    dander.WithWrite(),
//	)
//
// Unless WithOutput is given, rendered documents are only returned in the
// result and nothing is printed.
package dander

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/hupe1980/dander/internal/document"
	"github.com/hupe1980/dander/internal/logging"
	"github.com/hupe1980/dander/internal/markup"
	"github.com/hupe1980/dander/internal/normalize"
	"github.com/hupe1980/dander/internal/output"
)

// Failure kinds, matched with errors.Is.
var (
	ErrNotFound            = normalize.ErrNotFound
	ErrIsADirectory        = normalize.ErrIsADirectory
	ErrParse               = normalize.ErrParse
	ErrUnsupportedRootType = normalize.ErrUnsupportedRootType
	ErrExtensionMismatch   = normalize.ErrExtensionMismatch
	ErrUnknownFormat       = normalize.ErrUnknownFormat
	ErrSchemaViolation     = normalize.ErrSchemaViolation
	ErrNotArray            = document.ErrNotArray
)

// SchemaError lists the violations reported by ValidateJSON.
type SchemaError = document.SchemaError

// Error is the classified failure returned by every operation.
type Error = normalize.Error

// FormatResult describes a formatted document.
type FormatResult = normalize.FormatResult

// SplitResult describes a completed split.
type SplitResult = normalize.SplitResult

// Option configures an operation. Use the With* functions to create Options.
type Option func(*options)

type options struct {
	fs         afero.Fs
	out        io.Writer
	logger     *slog.Logger
	indent     *int
	write      bool
	verbose    bool
	strict     bool
	extensions []string
	depth      int
}

// WithFs sets the filesystem files are read from and written to.
func WithFs(fs afero.Fs) Option { return func(o *options) { o.fs = fs } }

// WithOutput sends rendered documents to w.
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) Option { return func(o *options) { o.indent = &n } }

// WithWrite rewrites the source file in place instead of rendering to the
// output. WithVerbose takes precedence.
func WithWrite() Option { return func(o *options) { o.write = true } }

// WithVerbose renders to the output even when WithWrite is given.
func WithVerbose() Option { return func(o *options) { o.verbose = true } }

// WithStrict enables or disables the XML extension check. It is enabled by
// default.
func WithStrict(strict bool) Option { return func(o *options) { o.strict = strict } }

// WithExtensions sets the extensions accepted by the XML extension check.
func WithExtensions(exts ...string) Option { return func(o *options) { o.extensions = exts } }

// WithDepth sets the split depth. Only the top level is split; other
// values are logged and ignored.
func WithDepth(d int) Option { return func(o *options) { o.depth = d } }

func newOptions(opts []Option) *options {
	o := &options{
		fs:         afero.NewOsFs(),
		out:        io.Discard,
		logger:     logging.Discard(),
		strict:     true,
		extensions: normalize.DefaultXMLExtensions,
		depth:      1,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *options) indentOr(def int) int {
	if o.indent == nil {
		return def
	}

	return *o.indent
}

func (o *options) normalizer() *normalize.Normalizer {
	return normalize.New(
		normalize.WithFs(o.fs),
		normalize.WithOutput(output.NewStdoutWriter(o.out)),
		normalize.WithLogger(o.logger),
	)
}

func (o *options) jsonOptions() normalize.JSONOptions {
	return normalize.JSONOptions{
		Indent:  o.indentOr(document.DefaultIndent),
		Write:   o.write,
		Verbose: o.verbose,
	}
}

func (o *options) xmlOptions() normalize.XMLOptions {
	return normalize.XMLOptions{
		Strict:     o.strict,
		Extensions: o.extensions,
		Indent:     o.indentOr(markup.DefaultIndent),
		Write:      o.write,
		Verbose:    o.verbose,
	}
}

// FormatJSON re-indents the JSON file at path. The default indent is 4.
func FormatJSON(ctx context.Context, path string, opts ...Option) (*FormatResult, error) {
	o := newOptions(opts)
	return o.normalizer().FormatJSON(ctx, path, o.jsonOptions())
}

// FormatXML re-indents the XML file at path. The default indent is 2.
func FormatXML(ctx context.Context, path string, opts ...Option) (*FormatResult, error) {
	o := newOptions(opts)
	return o.normalizer().FormatXML(ctx, path, o.xmlOptions())
}

// Format re-indents path as JSON or XML, detected from its extension or
// content. WithIndent applies to both formats.
func Format(ctx context.Context, path string, opts ...Option) (*FormatResult, error) {
	o := newOptions(opts)

	return o.normalizer().Format(ctx, path, normalize.FormatOptions{
		JSON: o.jsonOptions(),
		XML:  o.xmlOptions(),
	})
}

// SplitJSON writes each top-level member of the JSON collection at path to
// its own file next to it. The default indent is 2.
func SplitJSON(ctx context.Context, path string, opts ...Option) (*SplitResult, error) {
	o := newOptions(opts)

	return o.normalizer().SplitJSON(ctx, path, normalize.SplitOptions{
		Depth:  o.depth,
		Indent: o.indentOr(document.DefaultSplitIndent),
	})
}

// PrettyJSON re-indents a JSON document held in memory. The result ends in
// a newline.
func PrettyJSON(data []byte, indent int) ([]byte, error) {
	v, err := document.Parse(data)
	if err != nil {
		return nil, err
	}

	return append(document.Marshal(v, indent), '\n'), nil
}

// PrettyXML re-indents an XML document held in memory.
func PrettyXML(data []byte, indent int) ([]byte, error) {
	doc, err := markup.Parse(data)
	if err != nil {
		return nil, err
	}

	return markup.Marshal(doc, indent), nil
}

// ValidateJSON checks a JSON document against a JSON Schema. It returns nil
// when the document is valid and a *SchemaError listing the violations
// otherwise.
func ValidateJSON(data, schema []byte) error {
	return document.Validate(data, schema)
}

// ValidateJSONFile checks the JSON file at path against the JSON Schema file
// at schemaPath. Violations fail with ErrSchemaViolation.
func ValidateJSONFile(ctx context.Context, path, schemaPath string, opts ...Option) error {
	return newOptions(opts).normalizer().ValidateJSON(ctx, path, schemaPath)
}

// SplitArray returns the elements of a JSON array, each rendered on its own
// with indent spaces per level. Input whose root is not an array fails with
// ErrNotArray.
func SplitArray(data []byte, indent int) ([][]byte, error) {
	elems, err := document.SplitArray(data)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(elems))
	for i, e := range elems {
		out[i] = document.Marshal(e, indent)
	}

	return out, nil
}

// Stem returns the base name of path without its final extension, the
// prefix SplitJSON uses for the files it writes.
func Stem(path string) string {
	return normalize.Stem(path)
}
