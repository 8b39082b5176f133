// Package tokenizer provides token counting and truncation for text sent to
// LLM providers, backed by tiktoken's cl100k_base encoding.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/recall/pkg/types"
)

// Encoding is the tiktoken encoding used for all counts. cl100k_base covers
// the GPT-4 family and is a close enough approximation for other models.
const Encoding = "cl100k_base"

// Tokenizer counts and truncates tokens for outbound request content.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer using the cl100k_base encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load encoding %s: %w", Encoding, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the number of tokens in the given text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessagesTokens returns the total token count across all message
// contents. Per-message framing overhead is not modeled; callers should
// leave headroom in their budgets.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += t.CountTokens(msg.Content)
	}
	return total
}

// TruncateTail returns text cut down to at most maxTokens tokens, keeping
// the tail of the input. The tail is kept because for transcripts the most
// recent turns carry the most signal for naming and summarization.
// A maxTokens of zero or less returns text unchanged.
func (t *Tokenizer) TruncateTail(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[len(tokens)-maxTokens:])
}
