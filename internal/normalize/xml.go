package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/hupe1980/dander/internal/markup"
)

const opFormatXML = "format xml"

// DefaultXMLExtensions are the file extensions accepted in strict mode.
var DefaultXMLExtensions = []string{".xml"}

// XMLOptions configures FormatXML.
type XMLOptions struct {
	// Strict rejects files whose extension is not in Extensions before
	// they are read.
	Strict bool
	// Extensions lists the recognized XML extensions for strict mode.
	// Empty means DefaultXMLExtensions.
	Extensions []string
	// Indent is the number of spaces per nesting level.
	Indent int
	// Write requests rewriting the source file in place.
	Write bool
	// Verbose requests rendering to the output sink; it takes precedence
	// over Write.
	Verbose bool
}

// DefaultXMLOptions returns the options used when nothing is configured.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Strict:     true,
		Extensions: DefaultXMLExtensions,
		Indent:     markup.DefaultIndent,
	}
}

// FormatXML parses the XML document at path and re-renders it with one
// element per line, either to the output sink or back to path.
func (n *Normalizer) FormatXML(ctx context.Context, path string, opts XMLOptions) (*FormatResult, error) {
	if err := checkRegularFile(n.fs, opFormatXML, path); err != nil {
		return nil, err
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultXMLExtensions
	}

	if opts.Strict && !hasExtension(path, exts) {
		return nil, newError(opFormatXML, path, ErrExtensionMismatch,
			fmt.Errorf("want one of %s", strings.Join(exts, ", ")))
	}

	data, err := readSource(n.fs, opFormatXML, path, ErrNotFound)
	if err != nil {
		return nil, err
	}

	doc, err := markup.Parse(data)
	if err != nil {
		return nil, newError(opFormatXML, path, ErrParse, err)
	}

	content := markup.Marshal(doc, opts.Indent)

	n.logger.Debug("reformatted XML file",
		slog.String("path", path),
		slog.Bool("strict", opts.Strict),
		slog.Int("indent", opts.Indent),
	)

	res, err := n.emit(ctx, opFormatXML, path, content, opts.Write, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", opFormatXML, path, err)
	}

	return res, nil
}

// checkRegularFile fails with ErrNotFound unless path names a regular file.
func checkRegularFile(fs afero.Fs, op, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		return newError(op, path, ErrNotFound, err)
	}

	if !info.Mode().IsRegular() {
		return newError(op, path, ErrNotFound, fmt.Errorf("not a regular file"))
	}

	return nil
}
