package hooks

import (
	"context"
	"sync"

	"github.com/ucanhq/convocache/cache"
	"github.com/ucanhq/convocache/compression"
)

// CacheHitHook is called when a lookup is served from the cache
type CacheHitHook func(key string, tier cache.Tier)

// CacheMissHook is called when a lookup misses every cache tier
type CacheMissHook func(key string)

// BeforeCompressionHook is called before a history compression pass
type BeforeCompressionHook func(ctx context.Context, conversationID string) error

// AfterCompressionHook is called after a history compression pass
type AfterCompressionHook func(ctx context.Context, result *compression.Result) error

// Registry holds all registered hooks
type Registry struct {
	mu                sync.RWMutex
	cacheHit          []CacheHitHook
	cacheMiss         []CacheMissHook
	beforeCompression []BeforeCompressionHook
	afterCompression  []AfterCompressionHook
}

// NewRegistry creates a new hook registry
func NewRegistry() *Registry {
	return &Registry{
		cacheHit:          []CacheHitHook{},
		cacheMiss:         []CacheMissHook{},
		beforeCompression: []BeforeCompressionHook{},
		afterCompression:  []AfterCompressionHook{},
	}
}

var _ cache.Observer = (*Registry)(nil)

// OnCacheHit registers a hook to be called on every cache hit
func (r *Registry) OnCacheHit(hook CacheHitHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHit = append(r.cacheHit, hook)
}

// OnCacheMiss registers a hook to be called on every cache miss
func (r *Registry) OnCacheMiss(hook CacheMissHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheMiss = append(r.cacheMiss, hook)
}

// OnBeforeCompression registers a hook to be called before compression
func (r *Registry) OnBeforeCompression(hook BeforeCompressionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeCompression = append(r.beforeCompression, hook)
}

// OnAfterCompression registers a hook to be called after compression
func (r *Registry) OnAfterCompression(hook AfterCompressionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterCompression = append(r.afterCompression, hook)
}

// CacheHit calls all registered cache-hit hooks. It satisfies cache.Observer
// so a Registry can be handed straight to the cache manager.
func (r *Registry) CacheHit(key string, tier cache.Tier) {
	r.mu.RLock()
	hooks := make([]CacheHitHook, len(r.cacheHit))
	copy(hooks, r.cacheHit)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(key, tier)
	}
}

// CacheMiss calls all registered cache-miss hooks.
func (r *Registry) CacheMiss(key string) {
	r.mu.RLock()
	hooks := make([]CacheMissHook, len(r.cacheMiss))
	copy(hooks, r.cacheMiss)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(key)
	}
}

// TriggerBeforeCompression calls all registered before-compression hooks
func (r *Registry) TriggerBeforeCompression(ctx context.Context, conversationID string) error {
	r.mu.RLock()
	hooks := make([]BeforeCompressionHook, len(r.beforeCompression))
	copy(hooks, r.beforeCompression)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, conversationID); err != nil {
			return err
		}
	}
	return nil
}

// TriggerAfterCompression calls all registered after-compression hooks
func (r *Registry) TriggerAfterCompression(ctx context.Context, result *compression.Result) error {
	r.mu.RLock()
	hooks := make([]AfterCompressionHook, len(r.afterCompression))
	copy(hooks, r.afterCompression)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
