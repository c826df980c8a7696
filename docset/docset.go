// Package docset implements the pipeline's value type: an immutable bundle
// of documents, their labels, and an append-only audit trail (spec §3, §4.1).
package docset

import (
	"time"

	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/label"
)

// AuditEntry records one successful operator application, carried forward
// into every DocSet derived from its output.
type AuditEntry struct {
	Op          string                 `json:"op"`
	Args        map[string]interface{} `json:"args"`
	Timestamp   time.Time              `json:"timestamp"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	DurationMs  int64                  `json:"duration_ms"`
	CostUSD     float64                `json:"cost_usd"`
}

// DocSet is an immutable collection of documents with attached labels and an
// audit trail. Every operator returns a new DocSet rather than mutating its
// input (§4.1 immutability contract).
type DocSet struct {
	docs   []document.Document
	labels map[string]label.Map
	audit  []AuditEntry
}

// FromCorpus yields a DocSet containing every corpus document, no labels,
// and an empty audit trail.
func FromCorpus(c *document.Corpus) DocSet {
	docs := c.Documents()
	out := make([]document.Document, len(docs))
	copy(out, docs)
	return DocSet{docs: out, labels: make(map[string]label.Map)}
}

// New constructs a DocSet directly; used by operators that build a fresh
// document list (e.g. sort/filter results). labels not mentioned in docs are
// dropped to preserve invariant (i).
func New(docs []document.Document, labels map[string]label.Map, audit []AuditEntry) DocSet {
	ds := DocSet{docs: docs, labels: pruneLabels(docs, labels), audit: audit}
	return ds
}

func pruneLabels(docs []document.Document, labels map[string]label.Map) map[string]label.Map {
	if labels == nil {
		return make(map[string]label.Map)
	}
	keep := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		keep[d.ID] = struct{}{}
	}
	out := make(map[string]label.Map, len(labels))
	for id, m := range labels {
		if _, ok := keep[id]; ok {
			out[id] = m
		}
	}
	return out
}

// Documents returns the ordered document slice. Callers must not mutate it.
func (ds DocSet) Documents() []document.Document {
	return ds.docs
}

// Len returns the number of documents currently in the set.
func (ds DocSet) Len() int {
	return len(ds.docs)
}

// Labels returns the label map for a document id, and whether it has any.
func (ds DocSet) Labels(docID string) (label.Map, bool) {
	m, ok := ds.labels[docID]
	return m, ok
}

// LabelMap returns the full doc-id -> labels mapping. Callers must not
// mutate the returned map or its values.
func (ds DocSet) LabelMap() map[string]label.Map {
	return ds.labels
}

// Audit returns the accumulated audit trail.
func (ds DocSet) Audit() []AuditEntry {
	return ds.audit
}

// Union de-duplicates by document id across all inputs, keeping the first
// occurrence (invariant iv). Label maps are merged last-writer-wins across
// inputs in the given order. Audit trails are concatenated.
func Union(sets ...DocSet) DocSet {
	var docs []document.Document
	seen := make(map[string]struct{})
	labels := make(map[string]label.Map)
	var audit []AuditEntry

	for _, s := range sets {
		for _, d := range s.docs {
			if _, ok := seen[d.ID]; !ok {
				seen[d.ID] = struct{}{}
				docs = append(docs, d)
			}
		}
	}
	for _, s := range sets {
		for id, m := range s.labels {
			labels[id] = m
		}
		audit = append(audit, s.audit...)
	}
	return New(docs, labels, audit)
}

// Intersect keeps only documents present (by id) in every input (invariant
// v). Labels are merged as in Union but restricted to the kept ids.
func Intersect(sets ...DocSet) DocSet {
	if len(sets) == 0 {
		return DocSet{labels: make(map[string]label.Map)}
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]document.Document)
	var order []string
	for _, s := range sets {
		seenInThis := make(map[string]struct{})
		for _, d := range s.docs {
			if _, dup := seenInThis[d.ID]; dup {
				continue
			}
			seenInThis[d.ID] = struct{}{}
			if _, ok := firstSeen[d.ID]; !ok {
				firstSeen[d.ID] = d
				order = append(order, d.ID)
			}
			counts[d.ID]++
		}
	}

	var docs []document.Document
	for _, id := range order {
		if counts[id] == len(sets) {
			docs = append(docs, firstSeen[id])
		}
	}

	labels := make(map[string]label.Map)
	var audit []AuditEntry
	for _, s := range sets {
		for id, m := range s.labels {
			labels[id] = m
		}
		audit = append(audit, s.audit...)
	}
	return New(docs, labels, audit)
}

// Filter returns a new DocSet keeping only documents for which predicate
// returns true. Labels for dropped documents are dropped; the audit trail
// is preserved unchanged (the caller appends its own entry via WithAudit).
func (ds DocSet) Filter(predicate func(document.Document) bool) DocSet {
	var docs []document.Document
	for _, d := range ds.docs {
		if predicate(d) {
			docs = append(docs, d)
		}
	}
	return New(docs, ds.labels, ds.audit)
}

// WithLabels returns a new DocSet with a replaced label map (a shallow
// snapshot per §4.1); documents and audit trail are preserved.
func (ds DocSet) WithLabels(next map[string]label.Map) DocSet {
	return New(ds.docs, next, ds.audit)
}

// WithAudit returns a new DocSet with an appended audit entry.
func (ds DocSet) WithAudit(entry AuditEntry) DocSet {
	audit := make([]AuditEntry, len(ds.audit), len(ds.audit)+1)
	copy(audit, ds.audit)
	audit = append(audit, entry)
	return New(ds.docs, ds.labels, audit)
}

// WithDocs returns a new DocSet with a replaced document list, pruning
// labels for any document no longer present.
func (ds DocSet) WithDocs(docs []document.Document) DocSet {
	return New(docs, ds.labels, ds.audit)
}

// MergeLabel returns a new DocSet with a single label merged into a single
// document's label map under the given key (used by Tier-3 operators'
// per-unit merge step, §4.5).
func (ds DocSet) MergeLabel(docID, key string, l label.Label) DocSet {
	next := make(map[string]label.Map, len(ds.labels))
	for id, m := range ds.labels {
		next[id] = m
	}
	cur := next[docID].Clone()
	cur.Set(key, l)
	next[docID] = cur
	return ds.WithLabels(next)
}
