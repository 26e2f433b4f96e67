package normalize

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readSource reads the whole file at path. A directory is reported with
// dirKind so that each operation can classify it its own way. A leading
// byte order mark is removed, and UTF-16 input with a BOM is converted to
// UTF-8; anything else passes through unchanged.
func readSource(fs afero.Fs, op, path string, dirKind error) ([]byte, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, newError(op, path, ErrNotFound, err)
	}

	if info.IsDir() {
		return nil, newError(op, path, dirKind, nil)
	}

	if !info.Mode().IsRegular() {
		return nil, newError(op, path, ErrNotFound, errors.New("not a regular file"))
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, newError(op, path, ErrNotFound, err)
	}
	defer f.Close()

	data, err := io.ReadAll(transform.NewReader(f, unicode.BOMOverride(transform.Nop)))
	if err != nil {
		return nil, newError(op, path, ErrNotFound, fmt.Errorf("reading: %w", err))
	}

	return data, nil
}

// Stem returns the base name of path without its final extension. Names
// that start with their only dot, such as ".json", are returned whole.
func Stem(path string) string {
	base := filepath.Base(path)

	ext := filepath.Ext(base)
	if ext == base {
		return base
	}

	return strings.TrimSuffix(base, ext)
}

// hasExtension reports whether path ends in one of exts, compared
// case-insensitively. The leading dot of an extension is optional.
func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}

	for _, want := range exts {
		if strings.EqualFold(ext, "."+strings.TrimPrefix(want, ".")) {
			return true
		}
	}

	return false
}
