// Package apperr classifies failures of the processing pipeline so the
// transport layer can map them to HTTP status codes in one place.
package apperr

import (
	"errors"
)

type Kind string

const (
	KindConfig        Kind = "config"
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindUpstreamFetch Kind = "upstream_fetch"
	KindNoContent     Kind = "no_content"
	KindDownload      Kind = "download"
	KindSizeLimit     Kind = "size_limit"
	KindUpload        Kind = "upload"
	KindUnknown       Kind = "unknown"
)

// Error is a classified failure. Message is the human-readable text that is
// returned to callers; Detail is an optional secondary explanation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a secondary message and returns the same error.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// Wrap classifies err. An error that is already classified is returned as is,
// so the innermost classification wins.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

// IsKind checks whether the first classified error in the chain matches kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
