package convocache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ucanhq/convocache/cache"
	"github.com/ucanhq/convocache/compression"
	"github.com/ucanhq/convocache/hooks"
	"github.com/ucanhq/convocache/storage"
	"github.com/ucanhq/convocache/summarizer"
	"github.com/ucanhq/convocache/types"
)

// Manager ties the cache, the history compressor, and the context assembler
// to one backing store. It is the read-through surface an application talks
// to; each conversation is still touched by one goroutine at a time, matching
// how the cache beneath it is written.
type Manager struct {
	store      storage.Store
	cache      *cache.Manager
	compressor *compression.Compressor
	assembler  *compression.Assembler
	hooks      *hooks.Registry
	logger     *zap.Logger
}

// New creates a Manager. The store and summarizer are required; everything
// else is tuned through cfg and options.
func New(store storage.Store, sum summarizer.Summarizer, cfg Config, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if sum == nil {
		return nil, fmt.Errorf("%w: summarizer is required", ErrInvalidConfig)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ic := newInternalConfig()
	for _, opt := range opts {
		if err := opt(ic); err != nil {
			return nil, err
		}
	}

	cm, err := cache.NewManager(cfg.CacheDir, cfg.CacheTTL, ic.codec, ic.logger, ic.hooks)
	if err != nil {
		return nil, err
	}
	compressor, err := compression.NewCompressor(store, sum, cfg.Compression, ic.logger)
	if err != nil {
		return nil, err
	}
	assembler, err := compression.NewAssembler(store, cfg.Compression)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:      store,
		cache:      cm,
		compressor: compressor,
		assembler:  assembler,
		hooks:      ic.hooks,
		logger:     ic.logger,
	}, nil
}

// Conversation returns a conversation, serving from the cache when possible
// and re-caching on a store read.
func (m *Manager) Conversation(ctx context.Context, conversationID string) (*types.Conversation, error) {
	if conv, ok := m.cache.GetConversation(conversationID); ok {
		return &conv, nil
	}

	conv, err := m.store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
		}
		return nil, err
	}
	m.cache.CacheConversation(*conv)
	return conv, nil
}

// Messages returns a conversation's messages in creation order, serving from
// the cache when possible and re-caching on a store read.
func (m *Manager) Messages(ctx context.Context, conversationID string) ([]*types.Message, error) {
	if messages, ok := m.cache.GetMessages(conversationID); ok {
		return messages, nil
	}

	messages, err := m.store.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	m.cache.CacheMessages(conversationID, messages)
	return messages, nil
}

// CompressHistory runs one history compression pass over a conversation,
// wrapped in the before/after compression hooks.
func (m *Manager) CompressHistory(ctx context.Context, conversationID string) (*compression.Result, error) {
	if err := m.hooks.TriggerBeforeCompression(ctx, conversationID); err != nil {
		return nil, err
	}

	result, err := m.compressor.CompressHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err := m.hooks.TriggerAfterCompression(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Context assembles the bounded model context for a conversation. A
// tokenLimit <= 0 means unlimited.
func (m *Manager) Context(ctx context.Context, conversationID string, tokenLimit int) ([]types.ContextItem, error) {
	return m.assembler.Context(ctx, conversationID, tokenLimit)
}

// PrepareOffline snapshots the named conversations for offline use. Lookups
// go through the same read-through path as Conversation and Messages, so
// anything the store knows can be snapshotted even when it was never cached.
func (m *Manager) PrepareOffline(ctx context.Context, conversationIDs []string) error {
	for _, id := range conversationIDs {
		if _, err := m.Conversation(ctx, id); err != nil {
			return err
		}
		if _, err := m.Messages(ctx, id); err != nil {
			return err
		}
	}
	return m.cache.PrepareOffline(conversationIDs)
}

// LoadOffline loads previously prepared snapshots into the memory tier,
// returning how many entries were restored.
func (m *Manager) LoadOffline() int {
	return m.cache.LoadOffline()
}

// InvalidateConversation drops a conversation and its messages from every
// cache tier. The backing store is untouched.
func (m *Manager) InvalidateConversation(conversationID string) {
	m.cache.InvalidateConversation(conversationID)
	m.cache.InvalidateMessages(conversationID)
}

// ClearCache empties every cache tier, offline snapshots included.
func (m *Manager) ClearCache() {
	m.cache.ClearAll()
}
