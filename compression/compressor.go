package compression

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ucanhq/convocache/storage"
	"github.com/ucanhq/convocache/summarizer"
	"github.com/ucanhq/convocache/types"
)

// Result reports what a compression pass did.
type Result struct {
	ConversationID   string
	MessageCount     int
	GroupsTotal      int
	GroupsCompressed int
	GroupsFailed     int
	CacheHits        int
	Duration         time.Duration
}

// Compressor folds a conversation's old day-groups into summary records.
type Compressor struct {
	store      storage.Store
	summarizer summarizer.Summarizer
	cache      *SummaryCache
	config     Config
	logger     *zap.Logger
}

// NewCompressor creates a history compressor. Zero config fields fall back
// to defaults; a nil logger discards.
func NewCompressor(store storage.Store, sum summarizer.Summarizer, config Config, logger *zap.Logger) (*Compressor, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compressor{
		store:      store,
		summarizer: sum,
		cache:      NewSummaryCache(),
		config:     config,
		logger:     logger,
	}, nil
}

// CompressHistory runs one compression pass over a conversation.
//
// Below the message threshold the pass is a no-op. Otherwise messages are
// grouped by calendar date and every group strictly older than the staleness
// cutoff that has no SummaryRecord yet is summarized and persisted. A failed
// summarizer call skips that group (it will be retried next pass); a failed
// store write aborts the pass with an error so the controller can reschedule.
func (c *Compressor) CompressHistory(ctx context.Context, conversationID string) (*Result, error) {
	start := time.Now()
	result := &Result{ConversationID: conversationID}

	messages, err := c.store.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, wrapErr("CompressHistory", conversationID, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	result.MessageCount = len(messages)

	if len(messages) < c.config.Threshold {
		result.Duration = time.Since(start)
		return result, nil
	}

	// Dates that already have a durable summary are skipped outright; a
	// record is written once per (conversation, date) and never rewritten.
	existing, err := c.store.GetMessageSummaries(ctx, conversationID)
	if err != nil {
		return nil, wrapErr("CompressHistory", conversationID, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	summarized := make(map[string]bool, len(existing))
	for _, rec := range existing {
		summarized[rec.DateString()] = true
	}

	groups := GroupByDate(messages)
	result.GroupsTotal = len(groups)

	for _, group := range groups {
		if !c.stale(group.Date) || summarized[group.Date.Format(types.DateFormat)] {
			continue
		}

		summary, fromCache, err := c.summarize(ctx, &group)
		if err != nil {
			// Skipped for this pass, retried on a future invocation. No
			// partial record is written.
			c.logger.Warn("summarization failed, skipping group",
				zap.String("conversation_id", conversationID),
				zap.String("date", group.Date.Format(types.DateFormat)),
				zap.Error(err))
			result.GroupsFailed++
			continue
		}
		if fromCache {
			result.CacheHits++
		}

		rec := &types.SummaryRecord{
			ConversationID:   conversationID,
			Date:             group.Date,
			Content:          summary,
			SourceMessageIDs: group.MessageIDs(),
		}
		if err := c.store.SaveMessageSummary(ctx, rec); err != nil {
			return nil, wrapErr("CompressHistory", conversationID, fmt.Errorf("%w: %v", ErrStorage, err))
		}
		result.GroupsCompressed++

		c.logger.Info("compressed message group",
			zap.String("conversation_id", conversationID),
			zap.String("date", group.Date.Format(types.DateFormat)),
			zap.Int("messages", len(group.Messages)),
			zap.Bool("cache_hit", fromCache))
	}

	result.Duration = time.Since(start)
	return result, nil
}

// summarize returns the group's summary, serving from the content-hash cache
// when the identical block has been summarized before.
func (c *Compressor) summarize(ctx context.Context, group *MessageGroup) (summary string, fromCache bool, err error) {
	text := group.CanonicalText()
	key := Key(text)

	if cached, ok := c.cache.Get(key); ok {
		return cached, true, nil
	}

	summary, err = c.summarizer.Summarize(ctx, text, c.config.SummaryMaxTokens, c.config.SummaryMinTokens)
	if err != nil {
		return "", false, err
	}
	c.cache.Put(key, summary)
	return summary, false, nil
}

// stale reports whether a group date is strictly older than the cutoff,
// comparing calendar dates: a group exactly StaleAfter old is not yet stale.
func (c *Compressor) stale(date time.Time) bool {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.Sub(date) > c.config.StaleAfter
}
