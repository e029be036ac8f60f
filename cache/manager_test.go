package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucanhq/convocache/types"
)

type recordingObserver struct {
	hits   []string
	tiers  []Tier
	misses []string
}

func (r *recordingObserver) CacheHit(key string, tier Tier) {
	r.hits = append(r.hits, key)
	r.tiers = append(r.tiers, tier)
}

func (r *recordingObserver) CacheMiss(key string) {
	r.misses = append(r.misses, key)
}

func newTestManager(t *testing.T) (*Manager, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	m, err := NewManager(t.TempDir(), DefaultTTL, nil, nil, obs)
	require.NoError(t, err)
	return m, obs
}

func messages(conversationID string, n int) []*types.Message {
	msgs := make([]*types.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, &types.Message{
			ID:             conversationID + "-m" + string(rune('0'+i)),
			ConversationID: conversationID,
			Role:           types.RoleUser,
			Content:        "message body",
			CreatedAt:      time.Date(2026, 8, 20, 9, i, 0, 0, time.UTC),
		})
	}
	return msgs
}

func TestManagerCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	_, err := NewManager(root, DefaultTTL, nil, nil, nil)
	require.NoError(t, err)

	for _, sub := range []string{dirConversations, dirMessages, dirOffline} {
		info, err := os.Stat(filepath.Join(root, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestManagerRequiresRoot(t *testing.T) {
	_, err := NewManager("", DefaultTTL, nil, nil, nil)
	require.Error(t, err)
}

func TestManagerConversationRoundTrip(t *testing.T) {
	m, obs := newTestManager(t)

	_, ok := m.GetConversation("conv-1")
	assert.False(t, ok)

	m.CacheConversation(types.Conversation{ID: "conv-1", Title: "Planning"})

	got, ok := m.GetConversation("conv-1")
	require.True(t, ok)
	assert.Equal(t, "Planning", got.Title)

	assert.Equal(t, []string{"conversations/conv-1"}, obs.misses)
	assert.Equal(t, []string{"conversations/conv-1"}, obs.hits)
	assert.Equal(t, []Tier{TierMemory}, obs.tiers)
}

func TestManagerMessagesRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	m.CacheMessages("conv-1", messages("conv-1", 3))

	got, ok := m.GetMessages("conv-1")
	require.True(t, ok)
	require.Len(t, got, 3)
	assert.Equal(t, "conv-1", got[0].ConversationID)
}

func TestManagerInvalidateScenario(t *testing.T) {
	m, _ := newTestManager(t)
	m.CacheConversation(types.Conversation{ID: "conv-1", Title: "Doomed"})

	m.InvalidateConversation("conv-1")

	_, ok := m.GetConversation("conv-1")
	assert.False(t, ok)
	_, err := os.Stat(m.conversations.Path("conv-1"))
	assert.True(t, os.IsNotExist(err), "no file for conv-1 may remain on disk")
}

func TestManagerClearAll(t *testing.T) {
	m, _ := newTestManager(t)
	m.CacheConversation(types.Conversation{ID: "conv-1"})
	m.CacheMessages("conv-1", messages("conv-1", 2))
	require.NoError(t, m.PrepareOffline([]string{"conv-1"}))

	m.ClearAll()

	_, ok := m.GetConversation("conv-1")
	assert.False(t, ok)
	_, ok = m.GetMessages("conv-1")
	assert.False(t, ok)
	assert.Equal(t, 0, m.LoadOffline())
}
