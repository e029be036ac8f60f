// Package cache implements the tiered conversation cache: an in-process map
// for hot entries backed by individually compressed files for entries that
// survive across runs, with TTL-based staleness and an offline snapshot area.
//
// The package is designed for a single-process, cooperative caller model.
// Operations are synchronous and unlocked; callers that introduce concurrency
// serialize access per cache key.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ucanhq/convocache/codec"
	"github.com/ucanhq/convocache/types"
)

// Directory names under the cache root, one per entry kind.
const (
	dirConversations = "conversations"
	dirMessages      = "messages"
	dirOffline       = "offline"
)

// DefaultTTL is the time-to-live for cached conversations and message lists.
const DefaultTTL = 24 * time.Hour

// Observer receives cache lookup events. The hooks package provides
// implementations; the zero value of discard (used when nil is passed) keeps
// the hot path allocation-free.
type Observer interface {
	CacheHit(key string, tier Tier)
	CacheMiss(key string)
}

type discard struct{}

func (discard) CacheHit(string, Tier) {}
func (discard) CacheMiss(string)      {}

// Manager owns the tiered caches for conversations and message lists and the
// offline snapshot area beneath a single cache root.
type Manager struct {
	root          string
	conversations *Store[types.Conversation]
	messages      *Store[[]*types.Message]
	codec         codec.Codec
	logger        *zap.Logger
	observer      Observer
}

// NewManager creates a cache manager rooted at dir and ensures the managed
// subdirectories exist. A nil codec defaults to gzip, a nil logger discards,
// a nil observer is ignored.
func NewManager(dir string, ttl time.Duration, c codec.Codec, logger *zap.Logger, observer Observer) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache root directory is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if c == nil {
		c = codec.NewGzip()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = discard{}
	}

	for _, sub := range []string{dirConversations, dirMessages, dirOffline} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", sub, err)
		}
	}

	return &Manager{
		root:          dir,
		conversations: NewStore[types.Conversation](filepath.Join(dir, dirConversations), ttl, c, logger),
		messages:      NewStore[[]*types.Message](filepath.Join(dir, dirMessages), ttl, c, logger),
		codec:         c,
		logger:        logger,
		observer:      observer,
	}, nil
}

// GetConversation returns the cached conversation record, if any tier holds a
// valid entry.
func (m *Manager) GetConversation(conversationID string) (types.Conversation, bool) {
	conv, tier, ok := m.conversations.Get(conversationID)
	m.observe(dirConversations+"/"+conversationID, tier, ok)
	return conv, ok
}

// CacheConversation stores a conversation record in both tiers.
func (m *Manager) CacheConversation(conv types.Conversation) {
	m.conversations.Put(conv.ID, conv)
}

// GetMessages returns the cached message list for a conversation, if any tier
// holds a valid entry.
func (m *Manager) GetMessages(conversationID string) ([]*types.Message, bool) {
	msgs, tier, ok := m.messages.Get(conversationID)
	m.observe(dirMessages+"/"+conversationID, tier, ok)
	return msgs, ok
}

// CacheMessages stores a conversation's message list in both tiers.
func (m *Manager) CacheMessages(conversationID string, messages []*types.Message) {
	m.messages.Put(conversationID, messages)
}

// InvalidateConversation removes the conversation record from both tiers.
// Idempotent.
func (m *Manager) InvalidateConversation(conversationID string) {
	m.conversations.Invalidate(conversationID)
}

// InvalidateMessages removes the conversation's message list from both tiers.
// Idempotent.
func (m *Manager) InvalidateMessages(conversationID string) {
	m.messages.Invalidate(conversationID)
}

// ClearAll empties every tier and deletes all cache files under the managed
// directories, offline snapshots included.
func (m *Manager) ClearAll() {
	m.conversations.Clear()
	m.messages.Clear()
	m.clearOffline()
}

func (m *Manager) observe(key string, tier Tier, ok bool) {
	if ok {
		m.observer.CacheHit(key, tier)
	} else {
		m.observer.CacheMiss(key)
	}
}
