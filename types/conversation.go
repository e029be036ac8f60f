package types

import (
	"time"
)

// Conversation represents a conversation's cacheable record. Ownership of the
// canonical row stays with the external store; the cache serializes this
// struct as-is.
type Conversation struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
