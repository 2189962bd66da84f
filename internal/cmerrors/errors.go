// Package cmerrors provides the structured, coded error type used across
// the engine. It mirrors the category/severity/code shape amanmcp uses for
// its own AmanError, remapped onto the error kinds this system's
// operations actually raise.
package cmerrors

import "fmt"

// Kind classifies an error for callers that need to branch on it (the CLI
// deciding an exit code, the search engine deciding whether to retry a
// sub-query, and so on).
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindParseError          Kind = "PARSE_ERROR"
	KindIoError             Kind = "IO_ERROR"
	KindStorageError        Kind = "STORAGE_ERROR"
	KindConstraintViolation Kind = "CONSTRAINT_VIOLATION"
	KindInvalidQuery        Kind = "INVALID_QUERY"
	KindCancelled           Kind = "CANCELLED"
	KindTimeout             Kind = "TIMEOUT"
	KindModelMismatch       Kind = "MODEL_MISMATCH"
	KindInternal            Kind = "INTERNAL"
)

// Error is the structured error type raised throughout the engine.
type Error struct {
	// Code is a stable, unique identifier (e.g. "ERR_101_CHUNK_NOT_FOUND").
	Code string

	Kind    Kind
	Message string

	// Details carries additional key-value context for logging.
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by Code, so errors.Is(err, cmerrors.New(ErrChunkNotFound, ...))
// works without comparing messages or causes.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail attaches a key-value pair and returns e for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New constructs an Error with an explicit kind.
func New(code string, kind Kind, message string, cause error) *Error {
	return &Error{Code: code, Kind: kind, Message: message, Cause: cause}
}

// Wrap attaches a code and kind to an existing error, preserving it as the
// cause. Returns nil if err is nil, so callers can write
// `return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)` at any
// return site without a separate nil check.
func Wrap(code string, kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, kind, err.Error(), err)
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, and
// KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf extracts the Code from err if it is (or wraps) a *Error.
func CodeOf(err error) string {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ""
}

// As is a small local wrapper around errors.As so callers importing this
// package don't also need to import the standard errors package just to
// unwrap one of our own error values.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
