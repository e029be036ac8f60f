package compression

import (
	"crypto/sha256"
	"encoding/hex"
)

// SummaryCache maps a content hash of a group's canonical text to its
// previously computed summary, short-circuiting the summarizer when the same
// group is re-evaluated before its underlying messages change. The cache is
// transient; the store's (conversation, date) lookup is the durable guard.
type SummaryCache struct {
	entries map[string]string
}

// NewSummaryCache creates an empty summary cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{entries: make(map[string]string)}
}

// Key computes the stable content hash for a canonical text block. sha256 is
// deliberate: the key must be identical across runs and platforms, which
// runtime-default string hashes do not guarantee.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached summary for a content key.
func (c *SummaryCache) Get(key string) (string, bool) {
	summary, ok := c.entries[key]
	return summary, ok
}

// Put stores a summary under a content key.
func (c *SummaryCache) Put(key, summary string) {
	c.entries[key] = summary
}

// Len reports the number of cached summaries.
func (c *SummaryCache) Len() int {
	return len(c.entries)
}
