package compression

import (
	"strings"
)

// EstimateTokens approximates the token cost of a piece of content as its
// whitespace-separated word count. Deliberately crude: the budget check runs
// on every context assembly and a real tokenizer would cost more than the
// precision is worth here.
func EstimateTokens(content string) int {
	return len(strings.Fields(content))
}

// EstimateItemsTokens sums the estimate over a set of content strings.
func EstimateItemsTokens(contents []string) int {
	total := 0
	for _, c := range contents {
		total += EstimateTokens(c)
	}
	return total
}
