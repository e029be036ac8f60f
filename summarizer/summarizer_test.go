package summarizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeRejectsEmptyInput(t *testing.T) {
	s := NewAnthropic(nil, "")
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Summarize(context.Background(), text, 130, 30)
		assert.ErrorIs(t, err, ErrSummarizationFailed, "input %q", text)
	}
}

func TestNewAnthropicDefaultsModel(t *testing.T) {
	assert.Equal(t, DefaultModel, NewAnthropic(nil, "").model)
	assert.Equal(t, "claude-3-haiku-20240307", NewAnthropic(nil, "claude-3-haiku-20240307").model)
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt("Ana: hi", 130, 30)
	assert.Contains(t, prompt, "roughly 30 to 130 tokens")
	assert.Contains(t, prompt, "<transcript>\nAna: hi\n</transcript>")
}
