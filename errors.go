package convocache

import (
	"errors"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the manager configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConversationNotFound is returned when a conversation does not exist
	// in the backing store
	ErrConversationNotFound = errors.New("conversation not found")
)
