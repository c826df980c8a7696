// Package document defines the corpus record types the query engine operates
// over. Documents are produced by the vendor-report parser (an external
// collaborator, out of scope here) and are never mutated once loaded.
package document

import "time"

// Metadata carries the structured attributes attached to a Document.
type Metadata struct {
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	ThreadID      string `json:"thread_id,omitempty"`
	Subject       string `json:"subject,omitempty"`
	WordCount     int    `json:"word_count"`
	MessageNumber int    `json:"message_number,omitempty"`
}

// Document is an immutable corpus record.
type Document struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Metadata  Metadata  `json:"metadata"`
}

// HasThread reports whether the document belongs to a thread.
func (d Document) HasThread() bool {
	return d.Metadata.ThreadID != ""
}

// Corpus is an ordered, read-only sequence of Documents with unique ids.
type Corpus struct {
	docs    []Document
	byID    map[string]int
	byThread map[string][]int
}

// NewCorpus builds a Corpus from an ordered document slice. Later documents
// sharing an id with an earlier one are ignored; callers are expected to
// hand the parser's output through unmodified, so this only guards against
// malformed input rather than implementing dedup semantics of its own.
func NewCorpus(docs []Document) *Corpus {
	c := &Corpus{
		docs:     make([]Document, 0, len(docs)),
		byID:     make(map[string]int, len(docs)),
		byThread: make(map[string][]int),
	}
	for _, d := range docs {
		if _, exists := c.byID[d.ID]; exists {
			continue
		}
		idx := len(c.docs)
		c.docs = append(c.docs, d)
		c.byID[d.ID] = idx
		if d.HasThread() {
			c.byThread[d.Metadata.ThreadID] = append(c.byThread[d.Metadata.ThreadID], idx)
		}
	}
	return c
}

// Documents returns the full ordered document slice. Callers must not
// mutate the returned slice's elements.
func (c *Corpus) Documents() []Document {
	return c.docs
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Get looks up a document by id.
func (c *Corpus) Get(id string) (Document, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Document{}, false
	}
	return c.docs[idx], true
}

// Thread returns every document sharing the given thread id, in corpus
// order (the caller is responsible for sorting chronologically where that
// matters, per §4.4).
func (c *Corpus) Thread(threadID string) []Document {
	idxs, ok := c.byThread[threadID]
	if !ok {
		return nil
	}
	out := make([]Document, len(idxs))
	for i, idx := range idxs {
		out[i] = c.docs[idx]
	}
	return out
}

// ThreadOf returns the thread id of a document, and whether it was found in
// the corpus at all.
func (c *Corpus) ThreadOf(docID string) (string, bool) {
	d, ok := c.Get(docID)
	if !ok {
		return "", false
	}
	return d.Metadata.ThreadID, true
}
