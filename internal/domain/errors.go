package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure surfaced to the user
type Kind int

const (
	// KindValidation is missing or invalid input, caught before any call
	KindValidation Kind = iota + 1
	// KindNetwork is a transport error or a non-2xx response
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error carries a user-facing message along with the underlying cause
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNotAuthenticated is returned by every protected call when no identity is stored
var ErrNotAuthenticated = &Error{Kind: KindValidation, Message: "User not authenticated"}

// Validation builds a validation failure
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// Network builds a network failure; status is 0 for transport errors
func Network(op, message string, status int, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: message, Status: status, Err: err}
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsNetwork reports whether err is a network failure
func IsNetwork(err error) bool {
	return kindOf(err) == KindNetwork
}

// UserMessage returns the text to show for err, or fallback when none applies
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
