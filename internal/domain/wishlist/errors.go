package wishlist

import "errors"

// ErrorKind classifies failures surfaced to callers
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindExpired      ErrorKind = "expired"
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation_error"
	KindInternal     ErrorKind = "internal"
)

// Error is a sentinel error tagged with its kind. Call sites wrap the
// sentinels with fmt.Errorf("%w: ...") to add context.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrExpired      = &Error{Kind: KindExpired, Message: "expired"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
)

// KindOf returns the taxonomy kind of err, or KindInternal when err carries none
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}
