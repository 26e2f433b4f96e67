package normalize

import (
	"errors"
)

// Failure kinds. Every error returned by a Normalizer is an *Error whose
// Kind is one of these, so callers can classify it with errors.Is.
var (
	// ErrNotFound reports a path that is missing, unreadable or not a
	// regular file.
	ErrNotFound = errors.New("file not found")
	// ErrIsADirectory reports a directory where a file was required.
	ErrIsADirectory = errors.New("is a directory")
	// ErrParse reports content that is not valid JSON or well-formed XML.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedRootType reports a split whose root is not a collection.
	ErrUnsupportedRootType = errors.New("unsupported root type")
	// ErrExtensionMismatch reports a strict-mode XML file with an
	// unrecognized extension.
	ErrExtensionMismatch = errors.New("extension mismatch")
	// ErrUnknownFormat reports a file that is neither JSON nor XML.
	ErrUnknownFormat = errors.New("unknown document format")
	// ErrSchemaViolation reports a JSON document that does not satisfy its
	// schema.
	ErrSchemaViolation = errors.New("schema violation")
)

// Error is a classified failure of a normalize operation.
type Error struct {
	// Op names the operation, e.g. "format json".
	Op string
	// Path is the file the operation was applied to.
	Path string
	// Kind is one of the Err* sentinels.
	Kind error
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Op + " " + e.Path + ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, cause error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: cause}
}
