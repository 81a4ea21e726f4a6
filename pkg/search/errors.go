package search

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// FileOpenError is returned when a resolved path cannot be opened.
type FileOpenError struct {
	Path  string
	Cause error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("open %s: %s", e.Path, e.Cause)
}

func (e *FileOpenError) Unwrap() error { return e.Cause }

// DecompressionError is returned when a file's gzip stream is malformed.
type DecompressionError struct {
	Path  string
	Cause error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompress %s: %s", e.Path, e.Cause)
}

func (e *DecompressionError) Unwrap() error { return e.Cause }

// DecodeError is returned when a file's lines cannot be read to the end: a
// read or decompression failure part-way through the stream, or a line
// longer than the scanner's 4 MiB limit. Invalid UTF-8 is passed through
// unchanged and does not cause it.
type DecodeError struct {
	Path  string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// RegexError wraps a regexp compilation failure at term/filter registration
// time. Registration-time errors are returned synchronously; no partial
// registration is kept by the caller.
type RegexError struct {
	Source string
	Cause  error
}

func (e *RegexError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Source, e.Cause)
}

func (e *RegexError) Unwrap() error { return e.Cause }

// FileSearchError wraps a per-file runtime failure raised by a FileScanner.
// The Searcher catches it, logs it to the error sink with path context, and
// continues with the remaining files; it never aborts a run.
type FileSearchError struct {
	Path  string
	Cause error
}

func (e *FileSearchError) Error() string {
	return errors.Wrapf(e.Cause, "an exception occurred while searching %s", e.Path).Error()
}

func (e *FileSearchError) Unwrap() error { return e.Cause }

// newFileSearchError wraps cause with path context using pkg/errors so the
// original cause survives errors.Cause/errors.Unwrap.
func newFileSearchError(path string, cause error) *FileSearchError {
	return &FileSearchError{Path: path, Cause: errors.WithStack(cause)}
}

// RegisterAll runs each of fns in order and aggregates any RegexError they
// return into a single error via go-multierror, instead of stopping at the
// first failure. Single add-term/add-filter calls still fail synchronously;
// this is a batch-registration convenience only.
func RegisterAll(fns ...func() error) error {
	var result *multierror.Error
	for _, fn := range fns {
		if err := fn(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
