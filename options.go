package convocache

import (
	"go.uber.org/zap"

	"github.com/ucanhq/convocache/codec"
	"github.com/ucanhq/convocache/hooks"
)

// internalConfig holds the full manager configuration including optional
// collaborators.
type internalConfig struct {
	logger *zap.Logger
	hooks  *hooks.Registry
	codec  codec.Codec
}

func newInternalConfig() *internalConfig {
	return &internalConfig{
		logger: zap.NewNop(),
		hooks:  hooks.NewRegistry(),
		codec:  codec.NewGzip(),
	}
}

// Option is a functional option for configuring a Manager
type Option func(*internalConfig) error

// WithLogger sets the structured logger. The default discards.
func WithLogger(logger *zap.Logger) Option {
	return func(c *internalConfig) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithHooks sets the hook registry used for cache and compression events
func WithHooks(registry *hooks.Registry) Option {
	return func(c *internalConfig) error {
		if registry != nil {
			c.hooks = registry
		}
		return nil
	}
}

// WithCodec sets the codec used for the disk cache tier and offline
// snapshots. The default is gzip at the default level.
func WithCodec(cd codec.Codec) Option {
	return func(c *internalConfig) error {
		if cd != nil {
			c.codec = cd
		}
		return nil
	}
}
