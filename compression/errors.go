package compression

import (
	"errors"
	"fmt"
)

// Sentinel errors for compression operations.
var (
	// ErrInvalidConfig indicates invalid compression configuration.
	ErrInvalidConfig = errors.New("invalid compression configuration")

	// ErrStorage indicates an external store operation failed.
	ErrStorage = errors.New("storage operation failed")
)

// Error provides structured error context for compression operations.
type Error struct {
	// Op is the operation that failed (e.g., "CompressHistory", "Context")
	Op string

	// ConversationID is the affected conversation, if applicable
	ConversationID string

	// Err is the underlying error
	Err error
}

// Error returns a formatted error message.
func (e *Error) Error() string {
	msg := fmt.Sprintf("compression %s failed", e.Op)
	if e.ConversationID != "" {
		msg += fmt.Sprintf(" for conversation %s", e.ConversationID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// wrapErr wraps an error with operation and conversation context. Returns nil
// if err is nil.
func wrapErr(op, conversationID string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, ConversationID: conversationID, Err: err}
}
