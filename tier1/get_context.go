package tier1

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
)

// GetContext implements the get_context operator (§4.3): looks doc_id up in
// the corpus (not the input DocSet), finds its thread, sorts it
// chronologically, and returns the contiguous window around it.
func GetContext(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	docID, ok := argString(args, "doc_id")
	if !ok || docID == "" {
		return operator.Result{}, fmt.Errorf("get_context: doc_id is required")
	}
	window, _ := argInt(args, "window")

	anchor, ok := ec.Corpus.Get(docID)
	if !ok {
		return operator.Result{}, fmt.Errorf("get_context: doc_id %q not found in corpus", docID)
	}
	if !anchor.HasThread() {
		return operator.Result{}, fmt.Errorf("get_context: doc_id %q has no thread", docID)
	}

	thread := ec.Corpus.Thread(anchor.Metadata.ThreadID)
	sorted := make([]document.Document, len(thread))
	copy(sorted, thread)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	anchorIdx := -1
	for i, d := range sorted {
		if d.ID == docID {
			anchorIdx = i
			break
		}
	}
	if anchorIdx < 0 {
		return operator.Result{}, fmt.Errorf("get_context: doc_id %q not found in its thread", docID)
	}

	lo := anchorIdx - window
	if lo < 0 {
		lo = 0
	}
	hi := anchorIdx + window + 1
	if hi > len(sorted) {
		hi = len(sorted)
	}
	selected := sorted[lo:hi]

	out := input.WithDocs(selected)
	out = out.WithAudit(docset.AuditEntry{
		Op:          "get_context",
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: out.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	return operator.Result{
		DocSet: out,
		Meta: operator.OpMeta{
			DurationMs:  time.Since(start).Milliseconds(),
			ResultCount: out.Len(),
		},
	}, nil
}
