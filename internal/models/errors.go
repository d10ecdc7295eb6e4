package models

import (
	"errors"
	"fmt"
)

// Sentinels returned by the data layer.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
	KindPersistence
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream_tool"
	case KindPersistence:
		return "persistence"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// AppError carries a caller-facing message and the kind used to pick the
// HTTP status.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *AppError {
	return newError(KindValidation, nil, format, args...)
}

func Unauthorized(format string, args ...any) *AppError {
	return newError(KindUnauthorized, nil, format, args...)
}

func Forbidden(format string, args ...any) *AppError {
	return newError(KindForbidden, nil, format, args...)
}

func NotFound(format string, args ...any) *AppError {
	return newError(KindNotFound, ErrNotFound, format, args...)
}

func Conflict(format string, args ...any) *AppError {
	return newError(KindConflict, ErrConflict, format, args...)
}

func Upstream(err error, format string, args ...any) *AppError {
	return newError(KindUpstream, err, format, args...)
}

func Persistence(err error, format string, args ...any) *AppError {
	return newError(KindPersistence, err, format, args...)
}

// KindOf classifies any error. Bare data-layer sentinels map to their kinds,
// everything unknown is internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
