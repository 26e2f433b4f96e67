package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// FormatOptions bundles the per-format options used by Format.
type FormatOptions struct {
	JSON JSONOptions
	XML  XMLOptions
}

// DefaultFormatOptions returns the defaults for both formats.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{JSON: DefaultJSONOptions(), XML: DefaultXMLOptions()}
}

// FormatFunc reformats the document at path.
type FormatFunc func(ctx context.Context, n *Normalizer, path string, opts FormatOptions) (*FormatResult, error)

// Registry maps formats to the functions that reformat them.
type Registry struct {
	mu      sync.RWMutex
	formats map[Format]FormatFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[Format]FormatFunc)}
}

// Register adds fn under format, replacing any previous entry.
func (r *Registry) Register(format Format, fn FormatFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.formats[format] = fn
}

// Lookup returns the function registered for format.
func (r *Registry) Lookup(format Format) (FormatFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.formats[format]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFormat, format, r.available())
	}

	return fn, nil
}

// Formats returns the sorted list of registered formats.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted()
}

func (r *Registry) sorted() []Format {
	names := make([]Format, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

func (r *Registry) available() string {
	names := r.sorted()
	if len(names) == 0 {
		return "none"
	}

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}

	return strings.Join(parts, ", ")
}

// DefaultRegistry returns a registry with the built-in JSON and XML
// formatters.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(FormatJSON, func(ctx context.Context, n *Normalizer, path string, opts FormatOptions) (*FormatResult, error) {
		return n.FormatJSON(ctx, path, opts.JSON)
	})

	r.Register(FormatXML, func(ctx context.Context, n *Normalizer, path string, opts FormatOptions) (*FormatResult, error) {
		return n.FormatXML(ctx, path, opts.XML)
	})

	return r
}

// Format detects whether path holds JSON or XML and reformats it with the
// matching formatter. An XML file recognized by content rather than by
// extension is formatted with the extension check relaxed.
func (n *Normalizer) Format(ctx context.Context, path string, opts FormatOptions) (*FormatResult, error) {
	det, err := Detect(n.fs, path, opts.XML.Extensions)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("detected document format",
		slog.String("path", path),
		slog.String("format", string(det.Format)),
		slog.Bool("byContent", det.ByContent),
	)

	if det.Format == FormatXML && det.ByContent {
		opts.XML.Strict = false
	}

	fn, err := n.registry.Lookup(det.Format)
	if err != nil {
		return nil, err
	}

	return fn(ctx, n, path, opts)
}
