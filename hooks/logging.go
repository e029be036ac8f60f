package hooks

import (
	"context"

	"go.uber.org/zap"

	"github.com/ucanhq/convocache/cache"
	"github.com/ucanhq/convocache/compression"
)

// LoggingHooks provides built-in logging hooks for observability
type LoggingHooks struct {
	logger *zap.Logger
}

// NewLoggingHooks creates logging hooks with the provided logger
func NewLoggingHooks(logger *zap.Logger) *LoggingHooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHooks{logger: logger}
}

// CacheHit logs a cache hit with the tier that served it
func (h *LoggingHooks) CacheHit(key string, tier cache.Tier) {
	h.logger.Debug("cache hit",
		zap.String("key", key),
		zap.String("tier", string(tier)))
}

// CacheMiss logs a cache miss
func (h *LoggingHooks) CacheMiss(key string) {
	h.logger.Debug("cache miss", zap.String("key", key))
}

// BeforeCompression logs the start of a compression pass
func (h *LoggingHooks) BeforeCompression(_ context.Context, conversationID string) error {
	h.logger.Info("starting compression pass",
		zap.String("conversation_id", conversationID))
	return nil
}

// AfterCompression logs the outcome of a compression pass
func (h *LoggingHooks) AfterCompression(_ context.Context, result *compression.Result) error {
	h.logger.Info("compression pass finished",
		zap.String("conversation_id", result.ConversationID),
		zap.Int("messages", result.MessageCount),
		zap.Int("groups_compressed", result.GroupsCompressed),
		zap.Int("groups_failed", result.GroupsFailed),
		zap.Int("cache_hits", result.CacheHits),
		zap.Duration("duration", result.Duration))
	return nil
}

// Attach registers every logging hook on a registry
func (h *LoggingHooks) Attach(r *Registry) {
	r.OnCacheHit(h.CacheHit)
	r.OnCacheMiss(h.CacheMiss)
	r.OnBeforeCompression(h.BeforeCompression)
	r.OnAfterCompression(h.AfterCompression)
}
