package engine

import "errors"

// ErrorKind classifies a rejected engine operation
type ErrorKind string

const (
	KindInvalidDirection ErrorKind = "invalid_direction"
	KindPowerUpExhausted ErrorKind = "power_up_exhausted"
	KindNothingToUndo    ErrorKind = "nothing_to_undo"
	KindInvalidPosition  ErrorKind = "invalid_position"
	KindValueNotFound    ErrorKind = "value_not_found"
)

// Error is returned by engine operations that were rejected.
// A rejected operation never changes the game state.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors of the same kind, so errors.Is(err, ErrNothingToUndo) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidDirection = &Error{Kind: KindInvalidDirection, Message: "invalid direction"}
	ErrPowerUpExhausted = &Error{Kind: KindPowerUpExhausted, Message: "power-up exhausted"}
	ErrNothingToUndo    = &Error{Kind: KindNothingToUndo, Message: "No moves to undo"}
	ErrInvalidPosition  = &Error{Kind: KindInvalidPosition, Message: "Invalid positions"}
	ErrValueNotFound    = &Error{Kind: KindValueNotFound, Message: "value not found"}
)

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of an engine error, or "" for other errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
