package types

// ContextItem is one entry in the assembled language-model context: either a
// raw recent message or a rendered summary. Ephemeral — produced by the
// context assembler and consumed immediately by the model caller.
type ContextItem struct {
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	IsSummary bool   `json:"is_summary"`
}
