// Package preview trims a document's text to a citation-sized preview at a
// sentence boundary (spec §4.8's Citation.preview field), grounded on
// textsplitter.NeurosnapSplitterStrategy's use of neurosnap/sentences.
package preview

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
)

// training.json is a minimal punkt-style training corpus. Production
// deployments should supply a fully trained corpus the way the teacher
// embeds english.json for textsplitter; this module ships an untrained
// fallback so sentence splitting degrades to punctuation boundaries rather
// than failing closed.
//
//go:embed training.json
var trainingData []byte

var (
	once      sync.Once
	tokenizer *sentences.DefaultSentenceTokenizer
)

func getTokenizer() *sentences.DefaultSentenceTokenizer {
	once.Do(func() {
		storage, err := sentences.LoadTraining(trainingData)
		if err != nil {
			return
		}
		tokenizer = sentences.NewSentenceTokenizer(storage)
	})
	return tokenizer
}

// Sentences splits text into sentences, falling back to the whole text as a
// single "sentence" if the tokenizer failed to load.
func Sentences(text string) []string {
	tok := getTokenizer()
	if tok == nil {
		return []string{text}
	}
	sents := tok.Tokenize(text)
	out := make([]string, len(sents))
	for i, s := range sents {
		out[i] = s.Text
	}
	return out
}

// Truncate returns a preview of text no longer than maxLen, preferring to
// stop at a sentence boundary rather than mid-word. If even the first
// sentence exceeds maxLen, it hard-truncates and appends an ellipsis.
func Truncate(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxLen {
		return text
	}

	var built strings.Builder
	for _, s := range Sentences(text) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		candidateLen := built.Len()
		if candidateLen > 0 {
			candidateLen++ // separating space
		}
		candidateLen += len(s)
		if candidateLen > maxLen {
			break
		}
		if built.Len() > 0 {
			built.WriteByte(' ')
		}
		built.WriteString(s)
	}

	if built.Len() > 0 {
		return built.String()
	}

	// No whole sentence fits; hard truncate.
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return strings.TrimSpace(text[:maxLen-3]) + "..."
}
