package blog

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the blog service. Handlers map each to a
// distinct outcome at the request boundary; none is retried or treated
// as fatal to the process.
var (
	// ErrNotFound is returned when no record matches a lookup. It also
	// covers anonymous access to a draft post: to an anonymous viewer a
	// draft is indistinguishable from a post that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when an authenticated viewer attempts to
	// mutate a post they do not own. Unlike the draft policy, the post's
	// existence is not hidden here.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when an anonymous viewer attempts
	// an operation that requires a session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError reports a field-level validation failure: an empty
// required field, a duplicate slug or email, or an unresolvable category
// reference.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// invalid builds a ValidationError for the given field.
func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AsValidation unwraps err as a *ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
