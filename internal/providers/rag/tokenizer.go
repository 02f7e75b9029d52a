package rag

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

// CountTokens reports the cl100k_base token count of text.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

// sliceByTokens cuts text into pieces of at most maxTokens tokens each by
// encoding once and slicing the token array.
func sliceByTokens(text string, maxTokens int) []string {
	enc := getTokenizer()
	tokens := enc.Encode(text, nil, nil)

	var pieces []string
	for i := 0; i < len(tokens); i += maxTokens {
		end := i + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		pieces = append(pieces, enc.Decode(tokens[i:end]))
	}
	return pieces
}
