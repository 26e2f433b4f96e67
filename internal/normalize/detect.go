package normalize

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Format identifies a document syntax.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// sniffLen is how much of a file is inspected when the extension is not
// conclusive.
const sniffLen = 3072

// Detection is the outcome of Detect.
type Detection struct {
	Format Format
	// ByContent is true when the extension was not recognized and the
	// format was inferred from the file's content.
	ByContent bool
	// MIME is the sniffed media type when ByContent is true.
	MIME string
}

// Detect classifies the file at path as JSON or XML. The extension decides
// when it is .json or one of xmlExts; otherwise the leading bytes of the
// file are sniffed.
func Detect(fs afero.Fs, path string, xmlExts []string) (Detection, error) {
	const op = "detect"

	if len(xmlExts) == 0 {
		xmlExts = DefaultXMLExtensions
	}

	if err := checkRegularFile(fs, op, path); err != nil {
		return Detection{}, err
	}

	switch {
	case strings.EqualFold(filepath.Ext(path), ".json"):
		return Detection{Format: FormatJSON}, nil
	case hasExtension(path, xmlExts):
		return Detection{Format: FormatXML}, nil
	}

	head, err := readHead(fs, path)
	if err != nil {
		return Detection{}, newError(op, path, ErrNotFound, err)
	}

	mt := mimetype.Detect(head)
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/json"):
			return Detection{Format: FormatJSON, ByContent: true, MIME: mt.String()}, nil
		case m.Is("text/xml"):
			return Detection{Format: FormatXML, ByContent: true, MIME: mt.String()}, nil
		}
	}

	return Detection{}, newError(op, path, ErrUnknownFormat, errors.New("detected "+mt.String()))
}

func readHead(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return head[:n], nil
}
