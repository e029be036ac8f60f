package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucanhq/convocache/types"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteConversationCRUD(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	conv := &types.Conversation{Title: "Trip planning", Metadata: map[string]any{"pinned": true}}
	require.NoError(t, store.CreateConversation(ctx, conv))
	require.NotEmpty(t, conv.ID)

	got, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", got.Title)
	assert.Equal(t, true, got.Metadata["pinned"])

	list, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.DeleteConversation(ctx, conv.ID))
	_, err = store.GetConversation(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteGetConversationNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteMessagesOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	conv := &types.Conversation{Title: "Ordering"}
	require.NoError(t, store.CreateConversation(ctx, conv))

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	// Saved out of order on purpose.
	for _, offset := range []int{2, 0, 1} {
		require.NoError(t, store.SaveMessage(ctx, &types.Message{
			ConversationID: conv.ID,
			Role:           types.RoleUser,
			Content:        time.Duration(offset).String(),
			CreatedAt:      base.Add(time.Duration(offset) * time.Minute),
		}))
	}

	msgs, err := store.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}
}

func TestSQLiteSummaryUniquePerDate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	conv := &types.Conversation{Title: "Summaries"}
	require.NoError(t, store.CreateConversation(ctx, conv))

	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	first := &types.SummaryRecord{
		ConversationID:   conv.ID,
		Date:             date,
		Content:          "first summary",
		SourceMessageIDs: []string{"m1", "m2"},
	}
	require.NoError(t, store.SaveMessageSummary(ctx, first))

	// A second record for the same date is silently ignored, not a rewrite.
	require.NoError(t, store.SaveMessageSummary(ctx, &types.SummaryRecord{
		ConversationID: conv.ID,
		Date:           date,
		Content:        "rewrite attempt",
	}))

	records, err := store.GetMessageSummaries(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first summary", records[0].Content)
	assert.Equal(t, []string{"m1", "m2"}, records[0].SourceMessageIDs)
	assert.Equal(t, "2026-08-10", records[0].DateString())
}

func TestSQLiteSummariesOrderedByDate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	conv := &types.Conversation{Title: "History"}
	require.NoError(t, store.CreateConversation(ctx, conv))

	dates := []string{"2026-08-12", "2026-08-10", "2026-08-11"}
	for _, d := range dates {
		date, err := time.ParseInLocation(types.DateFormat, d, time.UTC)
		require.NoError(t, err)
		require.NoError(t, store.SaveMessageSummary(ctx, &types.SummaryRecord{
			ConversationID: conv.ID,
			Date:           date,
			Content:        "summary of " + d,
		}))
	}

	records, err := store.GetMessageSummaries(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-08-10", records[0].DateString())
	assert.Equal(t, "2026-08-11", records[1].DateString())
	assert.Equal(t, "2026-08-12", records[2].DateString())
}
