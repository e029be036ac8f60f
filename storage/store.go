// Package storage defines the external store contract the cache subsystem
// reads through, together with PostgreSQL and SQLite implementations. The
// store owns the canonical conversation, message, and summary records; the
// cache never bypasses it for writes of record.
package storage

import (
	"context"
	"errors"

	"github.com/ucanhq/convocache/types"
)

// ErrNotFound is returned when a requested conversation does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract consumed by the cache manager, the
// history compressor, and the context assembler.
type Store interface {
	// CreateConversation persists a new conversation record.
	CreateConversation(ctx context.Context, conv *types.Conversation) error

	// GetConversation returns the conversation with the given id, or
	// ErrNotFound.
	GetConversation(ctx context.Context, conversationID string) (*types.Conversation, error)

	// ListConversations returns all conversations, most recently updated
	// first.
	ListConversations(ctx context.Context) ([]*types.Conversation, error)

	// DeleteConversation removes a conversation along with its messages and
	// summaries.
	DeleteConversation(ctx context.Context, conversationID string) error

	// SaveMessage persists a message.
	SaveMessage(ctx context.Context, msg *types.Message) error

	// GetMessages returns a conversation's messages ordered by creation time.
	GetMessages(ctx context.Context, conversationID string) ([]*types.Message, error)

	// SaveMessageSummary persists a summary record. At most one record exists
	// per (conversation, date); saving a duplicate date is a no-op, never a
	// rewrite.
	SaveMessageSummary(ctx context.Context, rec *types.SummaryRecord) error

	// GetMessageSummaries returns a conversation's summary records ordered by
	// date.
	GetMessageSummaries(ctx context.Context, conversationID string) ([]*types.SummaryRecord, error)
}
