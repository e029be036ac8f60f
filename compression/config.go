package compression

import (
	"fmt"
	"time"
)

// Default configuration values. These mirror how the subsystem is deployed in
// the chat client; they are construction-time constants, not runtime-mutable.
const (
	// DefaultThreshold is the minimum message count before a conversation is
	// eligible for compression at all.
	DefaultThreshold = 10

	// DefaultStaleAfter is how far in the past a day-group's calendar date
	// must lie before it is compressed. Strict: a group exactly this old is
	// not compressed.
	DefaultStaleAfter = 7 * 24 * time.Hour

	// DefaultRecentWindow is how far back raw messages are included during
	// context assembly. Strict: only messages created after now-window count.
	DefaultRecentWindow = 7 * 24 * time.Hour

	// DefaultSummaryMaxTokens bounds the summarizer's output length.
	DefaultSummaryMaxTokens = 130

	// DefaultSummaryMinTokens is the lower bound passed to the summarizer.
	DefaultSummaryMinTokens = 30
)

// Config holds compression and assembly tuning.
type Config struct {
	// Threshold is the minimum number of messages a conversation must have
	// before compression runs. Default: 10.
	Threshold int

	// StaleAfter is the age beyond which a day-group is compressed.
	// Default: 7 days.
	StaleAfter time.Duration

	// RecentWindow is the raw-message window for context assembly.
	// Default: 7 days.
	RecentWindow time.Duration

	// SummaryMaxTokens is the upper length bound for summaries. Default: 130.
	SummaryMaxTokens int

	// SummaryMinTokens is the lower length bound for summaries. Default: 30.
	SummaryMinTokens int
}

// DefaultConfig returns a Config with the default thresholds.
func DefaultConfig() Config {
	return Config{
		Threshold:        DefaultThreshold,
		StaleAfter:       DefaultStaleAfter,
		RecentWindow:     DefaultRecentWindow,
		SummaryMaxTokens: DefaultSummaryMaxTokens,
		SummaryMinTokens: DefaultSummaryMinTokens,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.RecentWindow == 0 {
		c.RecentWindow = DefaultRecentWindow
	}
	if c.SummaryMaxTokens == 0 {
		c.SummaryMaxTokens = DefaultSummaryMaxTokens
	}
	if c.SummaryMinTokens == 0 {
		c.SummaryMinTokens = DefaultSummaryMinTokens
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be non-negative, got %d", ErrInvalidConfig, c.Threshold)
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("%w: stale_after must be positive, got %s", ErrInvalidConfig, c.StaleAfter)
	}
	if c.RecentWindow <= 0 {
		return fmt.Errorf("%w: recent_window must be positive, got %s", ErrInvalidConfig, c.RecentWindow)
	}
	if c.SummaryMaxTokens <= 0 {
		return fmt.Errorf("%w: summary_max_tokens must be positive, got %d", ErrInvalidConfig, c.SummaryMaxTokens)
	}
	if c.SummaryMinTokens <= 0 || c.SummaryMinTokens > c.SummaryMaxTokens {
		return fmt.Errorf("%w: summary_min_tokens must be in (0, %d], got %d",
			ErrInvalidConfig, c.SummaryMaxTokens, c.SummaryMinTokens)
	}
	return nil
}
