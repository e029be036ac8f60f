package compression

import (
	"context"
	"fmt"
	"time"

	"github.com/ucanhq/convocache/storage"
	"github.com/ucanhq/convocache/types"
)

// Assembler merges persisted summaries with recent raw messages into the
// ordered, budget-trimmed context list a language-model call receives.
type Assembler struct {
	store  storage.Store
	config Config
}

// NewAssembler creates a context assembler. Zero config fields fall back to
// defaults.
func NewAssembler(store storage.Store, config Config) (*Assembler, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{store: store, config: config}, nil
}

// Context builds the bounded context for a conversation: summary items first
// (in the order the store returns them), then raw messages created strictly
// within the recent window, trimmed to tokenLimit. A tokenLimit <= 0 means
// unlimited. An empty conversation yields an empty context.
func (a *Assembler) Context(ctx context.Context, conversationID string, tokenLimit int) ([]types.ContextItem, error) {
	messages, err := a.store.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, wrapErr("Context", conversationID, fmt.Errorf("%w: %v", ErrStorage, err))
	}
	if len(messages) == 0 {
		return []types.ContextItem{}, nil
	}

	summaries, err := a.store.GetMessageSummaries(ctx, conversationID)
	if err != nil {
		return nil, wrapErr("Context", conversationID, fmt.Errorf("%w: %v", ErrStorage, err))
	}

	items := make([]types.ContextItem, 0, len(summaries)+len(messages))
	for _, rec := range summaries {
		items = append(items, types.ContextItem{
			Content:   fmt.Sprintf("[Summary %s]: %s", rec.DateString(), rec.Content),
			Sender:    types.RoleSystem.Label(),
			IsSummary: true,
		})
	}

	cutoff := time.Now().Add(-a.config.RecentWindow)
	for _, msg := range messages {
		if msg.CreatedAt.After(cutoff) {
			items = append(items, types.ContextItem{
				Content: msg.Content,
				Sender:  msg.SenderLabel(),
			})
		}
	}

	if tokenLimit > 0 {
		items = Trim(items, tokenLimit)
	}
	return items, nil
}

// Trim cuts context to fit a token budget, walking from the most recent item
// backward and stopping at the first item whose estimated cost would push the
// running total over the limit. Because the scan is contiguous from the tail,
// everything older than the stop point is dropped — even items that would
// individually have fit. That recency-over-completeness trade-off is
// intentional and load-bearing; callers depend on the kept set being a
// contiguous suffix.
func Trim(items []types.ContextItem, tokenLimit int) []types.ContextItem {
	total := 0
	start := len(items)
	for i := len(items) - 1; i >= 0; i-- {
		cost := EstimateTokens(items[i].Content)
		if total+cost > tokenLimit {
			break
		}
		total += cost
		start = i
	}
	return items[start:]
}
