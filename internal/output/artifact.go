package output

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
)

// Artifact is one file produced by splitting a document.
type Artifact struct {
	// Path is the destination file path.
	Path string
	// Key is the object key or array index the artifact was derived from.
	Key string
	// Content is the serialized member, newline-terminated.
	Content []byte
}

// WriteArtifacts writes every artifact in order. Later artifacts replace
// earlier ones with the same path. Writing stops at the first failure, so
// artifacts written before it remain on disk.
func WriteArtifacts(ctx context.Context, fs afero.Fs, artifacts []Artifact, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Debug("writing artifact", slog.String("key", a.Key), slog.String("path", a.Path))

		if err := NewFileWriter(fs, a.Path, WithLogger(logger)).Write(a.Content); err != nil {
			return fmt.Errorf("writing artifact %q: %w", a.Key, err)
		}
	}

	return nil
}
