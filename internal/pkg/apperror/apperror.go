package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on it without
// string-matching messages.
type Kind string

const (
	// KindConfig marks missing or invalid configuration (e.g. absent
	// model credential). No partial work is attempted.
	KindConfig Kind = "CONFIG"

	// KindNotFound marks a lookup for a row that does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindConstraint marks a database constraint violation (duplicate
	// key, foreign key pointing at a forbidden identity).
	KindConstraint Kind = "CONSTRAINT"

	// KindAgent marks a model-client failure mid-workflow. Previously
	// persisted steps are kept; the transcript carries a system message.
	KindAgent Kind = "AGENT"

	// KindConflict marks policy rejections: a finished session receiving
	// new input, or an advance already in flight for the session.
	KindConflict Kind = "CONFLICT"

	// KindValidation marks a malformed request payload.
	KindValidation Kind = "VALIDATION"

	// KindUnknown is everything else.
	KindUnknown Kind = "UNKNOWN"
)

// Error is the single error type crossing service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from any error in the chain, defaulting to
// KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
