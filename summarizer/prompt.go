package summarizer

import (
	"fmt"
)

// SystemPrompt instructs the model to act as a chat-history digester. The
// output replaces a day's worth of messages in future context windows, so the
// prompt optimizes for factual density over prose.
const SystemPrompt = `You are a chat history summarizer. You receive a transcript of one day of a conversation, with one message per line in the form "sender: content".

Write a single compact summary of that day. Requirements:

- Preserve concrete facts: names, decisions, commitments, dates, numbers, links
- Preserve who said or decided what when it matters
- Keep chronological order
- Omit greetings, small talk, and filler
- Do not add information that is not in the transcript
- Output plain prose, no headings and no bullet lists`

// BuildUserPrompt creates the user message for a summarization call.
func BuildUserPrompt(text string, maxTokens, minTokens int) string {
	return fmt.Sprintf(`Summarize the following day of conversation in roughly %d to %d tokens.

<transcript>
%s
</transcript>`, minTokens, maxTokens, text)
}
