package types

import (
	"time"
)

// Role represents the message role
type Role string

const (
	// RoleUser represents a user message
	RoleUser Role = "user"

	// RoleAssistant represents an assistant message
	RoleAssistant Role = "assistant"

	// RoleSystem represents a system message
	RoleSystem Role = "system"
)

// Label returns the display label for the role.
func (r Role) Label() string {
	switch r {
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return "User"
	}
}

// Message represents a single conversation message as the cache and the
// history compressor see it. The canonical record lives in the external store;
// this struct carries the fields the subsystem needs to key, group, and
// serialize it.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           Role           `json:"role"`
	Sender         string         `json:"sender,omitempty"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SenderLabel returns the sender name if one is set, falling back to the
// role's display label. The canonical text block for summarization renders
// each message as "{sender}: {content}" using this value.
func (m *Message) SenderLabel() string {
	if m.Sender != "" {
		return m.Sender
	}
	return m.Role.Label()
}

// Date returns the calendar date of the message's creation timestamp,
// truncated to midnight UTC. Grouping for compression keys on this value,
// not on wall-clock time at compression.
func (m *Message) Date() time.Time {
	t := m.CreatedAt.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
