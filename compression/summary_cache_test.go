package compression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsStable(t *testing.T) {
	// The key must be reproducible across runs: it is sha256 of the exact
	// canonical text, hex-encoded.
	assert.Equal(t,
		"fc7bab0de21c025e523f310378944e89499c08233d7be767efbf9012ee6dc4b7",
		Key("Ana: hi\nAssistant: hello"))
	assert.NotEqual(t, Key("a"), Key("b"))
}

func TestSummaryCache(t *testing.T) {
	cache := NewSummaryCache()
	key := Key("some canonical block")

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Put(key, "the digest")
	got, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "the digest", got)
	assert.Equal(t, 1, cache.Len())

	// Overwrite keeps a single entry.
	cache.Put(key, "revised digest")
	got, _ = cache.Get(key)
	assert.Equal(t, "revised digest", got)
	assert.Equal(t, 1, cache.Len())
}
