package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ucanhq/convocache/types"
)

// txContextKey is the context key for storing pgx.Tx
type txContextKey struct{}

// WithTx returns a new context with the given transaction. Store calls made
// with the returned context run inside that transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext retrieves the transaction from context, or nil if not present
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// querier is a common interface for pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using PostgreSQL with pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// getQuerier returns the transaction from context if present, otherwise the pool
func (s *PostgresStore) getQuerier(ctx context.Context) querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

// postgresSchema creates the tables this store needs. Idempotent.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	metadata   JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	sender          TEXT NOT NULL DEFAULT '',
	content         TEXT NOT NULL,
	metadata        JSONB NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
	ON messages(conversation_id, created_at);

CREATE TABLE IF NOT EXISTS message_summaries (
	id                 TEXT PRIMARY KEY,
	conversation_id    TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	date               DATE NOT NULL,
	content            TEXT NOT NULL,
	source_message_ids TEXT[] NOT NULL DEFAULT '{}',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (conversation_id, date)
);
`

// InitSchema creates the store's tables if they do not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// CreateConversation persists a new conversation record.
func (s *PostgresStore) CreateConversation(ctx context.Context, conv *types.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = now
	}

	metadataJSON, err := marshalMetadata(conv.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (id, title, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.getQuerier(ctx).Exec(ctx, query, conv.ID, conv.Title, metadataJSON, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation returns the conversation with the given id.
func (s *PostgresStore) GetConversation(ctx context.Context, conversationID string) (*types.Conversation, error) {
	query := `
		SELECT id, title, metadata, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`
	var conv types.Conversation
	var metadataJSON []byte
	err := s.getQuerier(ctx).QueryRow(ctx, query, conversationID).
		Scan(&conv.ID, &conv.Title, &metadataJSON, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if err := unmarshalMetadata(metadataJSON, &conv.Metadata); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns all conversations, most recently updated first.
func (s *PostgresStore) ListConversations(ctx context.Context) ([]*types.Conversation, error) {
	query := `
		SELECT id, title, metadata, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC
	`
	rows, err := s.getQuerier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*types.Conversation
	for rows.Next() {
		var conv types.Conversation
		var metadataJSON []byte
		if err := rows.Scan(&conv.ID, &conv.Title, &metadataJSON, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if err := unmarshalMetadata(metadataJSON, &conv.Metadata); err != nil {
			return nil, err
		}
		conversations = append(conversations, &conv)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes a conversation; messages and summaries cascade.
func (s *PostgresStore) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := s.getQuerier(ctx).Exec(ctx, `DELETE FROM conversations WHERE id = $1`, conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// SaveMessage persists a message.
func (s *PostgresStore) SaveMessage(ctx context.Context, msg *types.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	metadataJSON, err := marshalMetadata(msg.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO messages (id, conversation_id, role, sender, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.getQuerier(ctx).Exec(ctx, query,
		msg.ID, msg.ConversationID, string(msg.Role), msg.Sender, msg.Content, metadataJSON, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// GetMessages returns a conversation's messages ordered by creation time.
func (s *PostgresStore) GetMessages(ctx context.Context, conversationID string) ([]*types.Message, error) {
	query := `
		SELECT id, conversation_id, role, sender, content, metadata, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.getQuerier(ctx).Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []*types.Message
	for rows.Next() {
		var msg types.Message
		var role string
		var metadataJSON []byte
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Sender, &msg.Content, &metadataJSON, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = types.Role(role)
		if err := unmarshalMetadata(metadataJSON, &msg.Metadata); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// SaveMessageSummary persists a summary record. Saving a second record for
// the same (conversation, date) is a no-op: summaries are immutable once
// created.
func (s *PostgresStore) SaveMessageSummary(ctx context.Context, rec *types.SummaryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO message_summaries (id, conversation_id, date, content, source_message_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (conversation_id, date) DO NOTHING
	`
	_, err := s.getQuerier(ctx).Exec(ctx, query,
		rec.ID, rec.ConversationID, rec.Date.UTC(), rec.Content, rec.SourceMessageIDs, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message summary: %w", err)
	}
	return nil
}

// GetMessageSummaries returns a conversation's summaries ordered by date.
func (s *PostgresStore) GetMessageSummaries(ctx context.Context, conversationID string) ([]*types.SummaryRecord, error) {
	query := `
		SELECT id, conversation_id, date, content, source_message_ids, created_at
		FROM message_summaries
		WHERE conversation_id = $1
		ORDER BY date
	`
	rows, err := s.getQuerier(ctx).Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message summaries: %w", err)
	}
	defer rows.Close()

	var records []*types.SummaryRecord
	for rows.Next() {
		var rec types.SummaryRecord
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &rec.Date, &rec.Content, &rec.SourceMessageIDs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message summary: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return data, nil
}

func unmarshalMetadata(data []byte, out *map[string]any) error {
	if len(data) == 0 || string(data) == "{}" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return nil
}
