package models

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyExists      = errors.New("already exists")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUpstream           = errors.New("upstream error")
	ErrStorage            = errors.New("storage error")
	ErrConfig             = errors.New("configuration error")
)

// DomainError carries a user-facing message on top of one of the sentinel
// kinds above, so handlers can match with errors.Is and still surface the
// exact message in the response body.
type DomainError struct {
	kind error
	msg  string
}

func (e *DomainError) Error() string { return e.msg }
func (e *DomainError) Unwrap() error { return e.kind }

func E(kind error, msg string) error {
	return &DomainError{kind: kind, msg: msg}
}

func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
