package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrNotFound is returned by single-entity lookups when no row matches.
// List and per-day queries return empty results instead.
var ErrNotFound = stderrors.New("not found")

// ErrEmptyYesterday is returned when copying from a previous day that has no actuals.
var ErrEmptyYesterday = stderrors.New("no actual data recorded for yesterday")

// RemoteFetchError wraps a failed read against the store.
type RemoteFetchError struct {
	Entity string
	Key    string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("failed to fetch %s for %s: %v", e.Entity, e.Key, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Entity, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// RemoteWriteError wraps a failed upsert or delete against the store.
type RemoteWriteError struct {
	Entity string
	Key    string
	Err    error
}

func (e *RemoteWriteError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("failed to write %s for %s: %v", e.Entity, e.Key, e.Err)
	}
	return fmt.Sprintf("failed to write %s: %v", e.Entity, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// ParseError reports an import document that could not be decoded.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CSVRowMalformed describes a CSV record skipped during import.
type CSVRowMalformed struct {
	Line   int
	Fields int
}

func (e *CSVRowMalformed) Error() string {
	return fmt.Sprintf("malformed CSV line %d: expected 7 fields, got %d", e.Line, e.Fields)
}

// UnsupportedFileType is returned when an import path has neither a .json nor a .csv extension.
type UnsupportedFileType struct {
	Ext string
}

func (e *UnsupportedFileType) Error() string {
	if e.Ext == "" {
		return "unsupported file: missing extension"
	}
	return fmt.Sprintf("unsupported file type %q", e.Ext)
}

// Fetch wraps err as a RemoteFetchError. It returns nil for a nil err.
func Fetch(entity, key string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteFetchError{Entity: entity, Key: key, Err: err}
}

// Write wraps err as a RemoteWriteError. It returns nil for a nil err.
func Write(entity, key string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteWriteError{Entity: entity, Key: key, Err: err}
}

// IsRemote reports whether err came from the store.
func IsRemote(err error) bool {
	var fe *RemoteFetchError
	var we *RemoteWriteError
	return stderrors.As(err, &fe) || stderrors.As(err, &we)
}
