package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/dander/internal/document"
	"github.com/hupe1980/dander/internal/output"
)

const (
	opFormatJSON = "format json"
	opSplitJSON  = "split json"
	opValidate   = "validate json"
)

// JSONOptions configures FormatJSON.
type JSONOptions struct {
	// Indent is the number of spaces per nesting level.
	Indent int
	// Write requests rewriting the source file in place.
	Write bool
	// Verbose requests rendering to the output sink; it takes precedence
	// over Write.
	Verbose bool
}

// DefaultJSONOptions returns the options used when nothing is configured.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Indent: document.DefaultIndent}
}

// FormatJSON parses the JSON document at path and renders it with
// canonical indentation, either to the output sink or back to path.
func (n *Normalizer) FormatJSON(ctx context.Context, path string, opts JSONOptions) (*FormatResult, error) {
	n.logger.Debug("reformatting JSON file", slog.String("path", path), slog.Int("indent", opts.Indent))

	data, err := readSource(n.fs, opFormatJSON, path, ErrNotFound)
	if err != nil {
		return nil, err
	}

	v, err := document.Parse(data)
	if err != nil {
		return nil, newError(opFormatJSON, path, ErrParse, err)
	}

	content := withNewline(document.Marshal(v, opts.Indent))

	res, err := n.emit(ctx, opFormatJSON, path, content, opts.Write, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", opFormatJSON, path, err)
	}

	return res, nil
}

// SplitOptions configures SplitJSON.
type SplitOptions struct {
	// Depth is accepted for compatibility; only the top level is split
	// whatever its value.
	Depth int
	// Indent is the number of spaces per nesting level in each artifact.
	Indent int
}

// DefaultSplitOptions returns the options used when nothing is configured.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{Depth: 1, Indent: document.DefaultSplitIndent}
}

// SplitResult describes a completed split.
type SplitResult struct {
	Source    string
	Artifacts []output.Artifact
}

// SplitJSON writes one file per top-level member of the JSON collection at
// path, next to the source. Object members become {stem}__{key}.json and
// array elements {stem}__{index}.json. Nothing is written when the file
// cannot be read or parsed or its root is not a collection.
func (n *Normalizer) SplitJSON(ctx context.Context, path string, opts SplitOptions) (*SplitResult, error) {
	n.logger.Debug("splitting JSON file", slog.String("path", path), slog.Int("depth", opts.Depth))

	data, err := readSource(n.fs, opSplitJSON, path, ErrIsADirectory)
	if err != nil {
		return nil, err
	}

	root, err := document.Parse(data)
	if err != nil {
		return nil, newError(opSplitJSON, path, ErrParse, err)
	}

	if !root.IsCollection() {
		return nil, newError(opSplitJSON, path, ErrUnsupportedRootType,
			fmt.Errorf("root is %s, want object or array", root.Kind()))
	}

	if opts.Depth != 1 {
		n.logger.Warn("only top-level splitting is supported; ignoring depth", slog.Int("depth", opts.Depth))
	}

	artifacts := n.planArtifacts(path, root, opts.Indent)

	if err := output.WriteArtifacts(ctx, n.fs, artifacts, n.logger); err != nil {
		return nil, fmt.Errorf("%s %s: %w", opSplitJSON, path, err)
	}

	return &SplitResult{Source: path, Artifacts: artifacts}, nil
}

// planArtifacts derives one artifact per top-level member of root.
func (n *Normalizer) planArtifacts(path string, root document.Value, indent int) []output.Artifact {
	dir := filepath.Dir(path)
	base := Stem(path)
	artifacts := make([]output.Artifact, 0, root.Len())
	seen := make(map[string]string, root.Len())

	add := func(key string, v document.Value) {
		target := filepath.Join(dir, artifactName(base, key))

		if prev, ok := seen[target]; ok {
			n.logger.Warn("split members map to the same file; the later one wins",
				slog.String("path", target), slog.String("first", prev), slog.String("second", key))
		}

		seen[target] = key

		artifacts = append(artifacts, output.Artifact{
			Path:    target,
			Key:     key,
			Content: withNewline(document.Marshal(v, indent)),
		})
	}

	if root.Kind() == document.KindObject {
		for _, m := range root.Members() {
			add(m.Key, m.Value)
		}
	} else {
		for i, el := range root.Elements() {
			add(strconv.Itoa(i), el)
		}
	}

	return artifacts
}

// keySeparators are replaced in member keys so every artifact stays in the
// source directory.
var keySeparators = strings.NewReplacer("/", "_", `\`, "_")

// artifactName returns the file name for one member of a split.
func artifactName(stem, key string) string {
	return stem + "__" + keySeparators.Replace(key) + ".json"
}
