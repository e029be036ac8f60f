// Package compression keeps a conversation's retrievable context bounded.
//
// Long-running conversations accumulate more history than a language-model
// call can consume. This package folds old message history into durable
// day-level summaries and reassembles summaries plus recent raw messages
// into a single context list under a caller-supplied token budget.
//
// # History compression
//
// Compressor partitions a conversation's messages by the calendar date of
// each message's creation timestamp. A day-group is compressed once it is
// strictly older than the staleness cutoff (7 days by default), provided the
// conversation has reached the compression threshold (10 messages by
// default). Compression is additive: the original messages are never
// deleted, and each SummaryRecord references the message ids it condenses.
// At most one record ever exists per (conversation, date) — repeat passes
// are no-ops served by the store lookup and the content-hash summary cache.
//
// # Context assembly
//
// Assembler produces the payload for a language-model call: persisted
// summaries first (in store order), then the raw messages of the last seven
// days, trimmed from the oldest end until the whitespace-token estimate fits
// the budget. Trimming walks backward from the most recent item and stops at
// the first item that would overflow; items older than the stop point are
// dropped even if some would individually have fit. Recency is deliberately
// valued over completeness here.
//
// # Failure posture
//
// A failed summarizer call skips that group for the current pass; the group
// is retried on a future run and no partial record is written. Store write
// failures propagate to the caller so retries can be scheduled.
package compression
