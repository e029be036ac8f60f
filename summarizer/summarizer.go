// Package summarizer defines the contract for the external summarization
// engine and provides an Anthropic-backed implementation. The engine is a
// black box to the rest of the subsystem: one call in, one summary out, no
// streaming surface, no partial results. It may be slow and it may fail;
// callers tolerate both.
package summarizer

import (
	"context"
	"errors"
)

// ErrSummarizationFailed indicates the summarization call failed.
var ErrSummarizationFailed = errors.New("summarization failed")

// Summarizer produces a bounded-length summary of a block of text.
type Summarizer interface {
	// Summarize returns a summary of text between minTokens and maxTokens
	// long. The bounds are advisory for the engine, not enforced here.
	Summarize(ctx context.Context, text string, maxTokens, minTokens int) (string, error)
}
