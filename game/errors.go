package game

import "fmt"

// Kind classifies why an action was rejected. Every handler validates
// fully before mutating, so a returned Error always means no state
// changed.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindState
	KindAuthorization
	KindCapacity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindAuthorization:
		return "authorization"
	case KindCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches against the kind sentinels below so callers can write
// errors.Is(err, game.ErrState) without caring about the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// NewError builds a taxonomy error with a concrete message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrState         = &Error{Kind: KindState}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrCapacity      = &Error{Kind: KindCapacity}
)

func validationErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func stateErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

func authorizationErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func capacityErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindCapacity, Message: fmt.Sprintf(format, args...)}
}
