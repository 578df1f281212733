package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const approxCharsPerToken = 4

var (
	tokenEncoderOnce sync.Once
	tokenEncoder     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of a prompt. Exact counts
// depend on the local model's tokenizer; cl100k is close enough to decide
// whether an assembled context fits a context window.
func EstimateTokens(text string) int {
	if enc := getTokenEncoder(); enc != nil {
		if tokens := enc.Encode(text, nil, nil); len(tokens) > 0 {
			return len(tokens)
		}
	}
	n := len(text) / approxCharsPerToken
	if n < 1 {
		n = 1
	}
	return n
}

func getTokenEncoder() *tiktoken.Tiktoken {
	tokenEncoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		tokenEncoder = enc
	})
	return tokenEncoder
}
