// Package tokencount estimates token counts for cost accounting and for
// §4.4's thread token_estimate. It prefers a real tiktoken encoding
// (grounded on textsplitter.TikTokenTokenizerByEncoding) and falls back to
// the spec's ⌈len(text)/4⌉ heuristic when no encoder is registered for a
// model name.
package tokencount

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// modelEncodingMap mirrors textsplitter's model->encoding table, trimmed to
// the chat models this engine's price table names.
var modelEncodingMap = map[string]string{
	"gpt-4o":       "o200k_base",
	"gpt-4o-mini":  "o200k_base",
	"gpt-4-turbo":  "cl100k_base",
	"gpt-4":        "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

var (
	mu       sync.Mutex
	encoders = make(map[string]*tiktoken.Tiktoken)
)

func encoderFor(model string) *tiktoken.Tiktoken {
	encodingName, ok := modelEncodingMap[model]
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	if enc, ok := encoders[encodingName]; ok {
		return enc
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil
	}
	encoders[encodingName] = enc
	return enc
}

// Estimate returns the token count for text under model's encoding. When
// model has no known tiktoken encoding, it falls back to ⌈len(text)/4⌉, the
// heuristic specified in §4.4.
func Estimate(model, text string) int {
	if enc := encoderFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Heuristic(text)
}

// Heuristic implements the spec's ⌈len(text)/4⌉ estimate directly, used
// when a model name carries no registered encoding (and by the thread
// grouper, which has no single "model" to key off of).
func Heuristic(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
