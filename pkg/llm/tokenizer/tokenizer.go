// Package tokenizer provides client-side token counting for context budget
// decisions.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used for counting. cl100k_base is a close
// enough approximation across current chat models for budgeting purposes.
const encodingName = "cl100k_base"

// Tokenizer counts tokens using a tiktoken encoding. Safe for concurrent use.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer. Initialization can fail when the encoding data is
// unavailable; callers should fall back to EstimateTokens.
func New() (*Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the exact token count for text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// EstimateTokens approximates a token count as ceil(len/4), the static
// characters-per-token ratio used when no tokenizer is available.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
