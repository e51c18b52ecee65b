package domain

import "errors"

// Kind classifies a domain failure so transports can map it to a status
// code without matching on message strings.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindConflict
)

// Error is a failure with a machine-checkable Kind and a message safe
// to return to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NotFound reports that the requested entity does not exist.
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// BadRequest reports invalid input.
func BadRequest(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }

// Unauthorized reports missing or failed authentication.
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Forbidden reports that the caller is authenticated but not allowed.
func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

// Conflict reports a state conflict such as a duplicate email or a
// balance that would go negative.
func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// KindOf extracts the Kind from err; non-domain errors are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}
