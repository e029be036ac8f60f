package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ucanhq/convocache/types"
)

// SQLiteStore implements Store on a local SQLite database. This is the
// store a desktop deployment runs against; the PostgreSQL store exists for
// hosted setups sharing the same schema shape.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database at the given path, ensuring
// that the parent directory exists, and initializes the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db at %s: %w", path, err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an existing database handle and initializes the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL DEFAULT '',
			metadata   TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role            TEXT NOT NULL,
			sender          TEXT NOT NULL DEFAULT '',
			content         TEXT NOT NULL,
			metadata        TEXT NOT NULL DEFAULT '{}',
			created_at      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
			ON messages(conversation_id, created_at);

		CREATE TABLE IF NOT EXISTS message_summaries (
			id                 TEXT PRIMARY KEY,
			conversation_id    TEXT NOT NULL,
			date               TEXT NOT NULL,
			content            TEXT NOT NULL,
			source_message_ids TEXT NOT NULL DEFAULT '[]',
			created_at         TEXT NOT NULL,
			UNIQUE (conversation_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// CreateConversation persists a new conversation record.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *types.Conversation) error {
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, title, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.Title, string(metadataJSON),
		conv.CreatedAt.Format(time.RFC3339Nano), conv.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation returns the conversation with the given id.
func (s *SQLiteStore) GetConversation(ctx context.Context, conversationID string) (*types.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, metadata, created_at, updated_at
		FROM conversations WHERE id = ?`, conversationID)

	conv, err := scanConversation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns all conversations, most recently updated first.
func (s *SQLiteStore) ListConversations(ctx context.Context) ([]*types.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, metadata, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*types.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes a conversation along with its messages and
// summaries.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM message_summaries WHERE conversation_id = ?`,
		`DELETE FROM messages WHERE conversation_id = ?`,
		`DELETE FROM conversations WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, conversationID); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
	}
	return tx.Commit()
}

// SaveMessage persists a message.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *types.Message) error {
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, sender, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, string(msg.Role), msg.Sender, msg.Content,
		string(metadataJSON), msg.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// GetMessages returns a conversation's messages ordered by creation time.
func (s *SQLiteStore) GetMessages(ctx context.Context, conversationID string) ([]*types.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, sender, content, metadata, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []*types.Message
	for rows.Next() {
		var msg types.Message
		var role, metadataJSON, createdAt string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Sender, &msg.Content, &metadataJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = types.Role(role)
		if err := unmarshalMetadata([]byte(metadataJSON), &msg.Metadata); err != nil {
			return nil, err
		}
		if msg.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// SaveMessageSummary persists a summary record; a duplicate (conversation,
// date) insert is ignored.
func (s *SQLiteStore) SaveMessageSummary(ctx context.Context, rec *types.SummaryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	sourceIDs, err := json.Marshal(rec.SourceMessageIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal source message ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO message_summaries (id, conversation_id, date, content, source_message_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (conversation_id, date) DO NOTHING`,
		rec.ID, rec.ConversationID, rec.DateString(), rec.Content,
		string(sourceIDs), rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save message summary: %w", err)
	}
	return nil
}

// GetMessageSummaries returns a conversation's summaries ordered by date.
func (s *SQLiteStore) GetMessageSummaries(ctx context.Context, conversationID string) ([]*types.SummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, date, content, source_message_ids, created_at
		FROM message_summaries
		WHERE conversation_id = ?
		ORDER BY date`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message summaries: %w", err)
	}
	defer rows.Close()

	var records []*types.SummaryRecord
	for rows.Next() {
		var rec types.SummaryRecord
		var date, sourceIDs, createdAt string
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &date, &rec.Content, &sourceIDs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message summary: %w", err)
		}
		if rec.Date, err = time.ParseInLocation(types.DateFormat, date, time.UTC); err != nil {
			return nil, fmt.Errorf("failed to parse summary date %q: %w", date, err)
		}
		if err := json.Unmarshal([]byte(sourceIDs), &rec.SourceMessageIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source message ids: %w", err)
		}
		if rec.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func scanConversation(scan func(dest ...any) error) (*types.Conversation, error) {
	var conv types.Conversation
	var metadataJSON, createdAt, updatedAt string
	if err := scan(&conv.ID, &conv.Title, &metadataJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalMetadata([]byte(metadataJSON), &conv.Metadata); err != nil {
		return nil, err
	}
	var err error
	if conv.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	return &conv, nil
}

func parseSQLiteTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
