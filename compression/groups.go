package compression

import (
	"sort"
	"strings"
	"time"

	"github.com/ucanhq/convocache/types"
)

// MessageGroup is one calendar day's worth of a conversation's messages, in
// original order. Groups are derived, never stored; each compression pass
// recomputes them from the message list.
type MessageGroup struct {
	Date     time.Time
	Messages []*types.Message
}

// GroupByDate partitions messages by the calendar date of each message's
// creation timestamp (UTC). Groups come back ordered by date ascending;
// within a group, messages keep the order they arrived in.
func GroupByDate(messages []*types.Message) []MessageGroup {
	byDate := make(map[time.Time][]*types.Message)
	for _, msg := range messages {
		date := msg.Date()
		byDate[date] = append(byDate[date], msg)
	}

	groups := make([]MessageGroup, 0, len(byDate))
	for date, msgs := range byDate {
		groups = append(groups, MessageGroup{Date: date, Messages: msgs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.Before(groups[j].Date)
	})
	return groups
}

// CanonicalText renders the group as the canonical block handed to the
// summarizer and hashed for the summary cache: one "{sender}: {content}"
// line per message, newline-joined, in original order.
func (g *MessageGroup) CanonicalText() string {
	lines := make([]string, 0, len(g.Messages))
	for _, msg := range g.Messages {
		lines = append(lines, msg.SenderLabel()+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// MessageIDs returns the group's message ids in original order.
func (g *MessageGroup) MessageIDs() []string {
	ids := make([]string, 0, len(g.Messages))
	for _, msg := range g.Messages {
		ids = append(ids, msg.ID)
	}
	return ids
}
