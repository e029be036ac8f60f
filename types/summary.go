package types

import (
	"time"
)

// DateFormat is the wire format for summary dates: a bare calendar date.
const DateFormat = "2006-01-02"

// SummaryRecord is the durable artifact produced when a day's worth of old
// messages is folded into a summary. Immutable once created; at most one
// record exists per (conversation, date) pair. The original messages are not
// deleted — the record references them through SourceMessageIDs.
type SummaryRecord struct {
	ID               string    `json:"id"`
	ConversationID   string    `json:"conversation_id"`
	Date             time.Time `json:"date"`
	Content          string    `json:"content"`
	SourceMessageIDs []string  `json:"source_message_ids"`
	CreatedAt        time.Time `json:"created_at"`
}

// DateString returns the record's calendar date in DateFormat.
func (s *SummaryRecord) DateString() string {
	return s.Date.UTC().Format(DateFormat)
}
