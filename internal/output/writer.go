package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Writer is the interface for rendered-document destinations.
type Writer interface {
	// Write sends rendered bytes to the destination.
	Write(data []byte) error
}

// StdoutWriter writes rendered documents to a terminal-like stream,
// optionally passing them through a Highlighter first.
type StdoutWriter struct {
	out       io.Writer
	highlight Highlighter
}

// StdoutWriterOption configures a StdoutWriter.
type StdoutWriterOption func(*StdoutWriter)

// WithHighlighter colorizes output before it is written.
func WithHighlighter(h Highlighter) StdoutWriterOption {
	return func(sw *StdoutWriter) {
		sw.highlight = h
	}
}

// NewStdoutWriter creates a writer that sends output to the given writer.
// If w is nil, os.Stdout is used.
func NewStdoutWriter(w io.Writer, opts ...StdoutWriterOption) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	sw := &StdoutWriter{out: w}

	for _, opt := range opts {
		opt(sw)
	}

	return sw
}

// Write sends data to the stream.
func (sw *StdoutWriter) Write(data []byte) error {
	if sw.highlight != nil {
		data = sw.highlight(data)
	}

	_, err := sw.out.Write(data)
	if err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter writes rendered output to a file on an afero filesystem,
// creating parent directories as needed.
type FileWriter struct {
	fs            afero.Fs
	path          string
	perm          os.FileMode
	keepPerm      bool
	logger        *slog.Logger
	warnOverwrite bool
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644). The mode
// is also applied to a file that already exists.
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
		fw.keepPerm = true
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// WithInPlace marks the write as an intentional rewrite of an existing
// file, which suppresses the overwrite warning.
func WithInPlace() FileWriterOption {
	return func(fw *FileWriter) {
		fw.warnOverwrite = false
	}
}

// NewFileWriter creates a writer that writes to path on fs.
func NewFileWriter(fs afero.Fs, path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		fs:            fs,
		path:          path,
		perm:          0o644,
		logger:        slog.Default(),
		warnOverwrite: true,
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories and writes data to the file, replacing
// any previous content.
func (fw *FileWriter) Write(data []byte) error {
	dir := filepath.Dir(fw.path)
	if err := fw.fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if fw.warnOverwrite {
		if _, err := fw.fs.Stat(fw.path); err == nil {
			fw.logger.Warn("overwriting existing file", slog.String("path", fw.path))
		}
	}

	if err := afero.WriteFile(fw.fs, fw.path, data, fw.perm); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if fw.keepPerm {
		if err := fw.fs.Chmod(fw.path, fw.perm); err != nil {
			return fmt.Errorf("setting mode of %s: %w", fw.path, err)
		}
	}

	fw.logger.Debug("wrote file", slog.String("path", fw.path), slog.Int("bytes", len(data)))

	return nil
}

