package compression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ucanhq/convocache/storage"
	"github.com/ucanhq/convocache/types"
)

// fakeStore is an in-memory storage.Store for compressor and assembler tests.
type fakeStore struct {
	conversations map[string]*types.Conversation
	messages      map[string][]*types.Message
	summaries     map[string][]*types.SummaryRecord

	saveSummaryErr error
	getMessagesErr error
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[string]*types.Conversation),
		messages:      make(map[string][]*types.Message),
		summaries:     make(map[string][]*types.SummaryRecord),
	}
}

func (s *fakeStore) CreateConversation(_ context.Context, conv *types.Conversation) error {
	s.conversations[conv.ID] = conv
	return nil
}

func (s *fakeStore) GetConversation(_ context.Context, id string) (*types.Conversation, error) {
	conv, ok := s.conversations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return conv, nil
}

func (s *fakeStore) ListConversations(_ context.Context) ([]*types.Conversation, error) {
	var out []*types.Conversation
	for _, conv := range s.conversations {
		out = append(out, conv)
	}
	return out, nil
}

func (s *fakeStore) DeleteConversation(_ context.Context, id string) error {
	delete(s.conversations, id)
	delete(s.messages, id)
	delete(s.summaries, id)
	return nil
}

func (s *fakeStore) SaveMessage(_ context.Context, msg *types.Message) error {
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

func (s *fakeStore) GetMessages(_ context.Context, conversationID string) ([]*types.Message, error) {
	if s.getMessagesErr != nil {
		return nil, s.getMessagesErr
	}
	return s.messages[conversationID], nil
}

func (s *fakeStore) SaveMessageSummary(_ context.Context, rec *types.SummaryRecord) error {
	if s.saveSummaryErr != nil {
		return s.saveSummaryErr
	}
	// Mirror the real stores: one record per (conversation, date), duplicate
	// inserts are ignored.
	for _, existing := range s.summaries[rec.ConversationID] {
		if existing.DateString() == rec.DateString() {
			return nil
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.summaries[rec.ConversationID] = append(s.summaries[rec.ConversationID], rec)
	return nil
}

func (s *fakeStore) GetMessageSummaries(_ context.Context, conversationID string) ([]*types.SummaryRecord, error) {
	return s.summaries[conversationID], nil
}

// fakeSummarizer counts calls and returns a deterministic summary.
type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, _, _ int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("digest of %d bytes", len(text)), nil
}

var errSummarizerDown = errors.New("summarizer unavailable")

// daysAgo returns noon UTC of the calendar day the given number of days in
// the past. Noon keeps seeded messages away from date boundaries regardless
// of when the test runs.
func daysAgo(days int) time.Time {
	now := time.Now().UTC().AddDate(0, 0, -days)
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
}

// seedMessages stores count messages created on ts's day, returning their ids.
func seedMessages(s *fakeStore, conversationID string, count int, ts time.Time) []string {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New().String()
		s.messages[conversationID] = append(s.messages[conversationID], &types.Message{
			ID:             id,
			ConversationID: conversationID,
			Role:           types.RoleUser,
			Sender:         "Ana",
			Content:        fmt.Sprintf("message %d of that day", i),
			CreatedAt:      ts.Add(time.Duration(i) * time.Second),
		})
		ids = append(ids, id)
	}
	return ids
}
