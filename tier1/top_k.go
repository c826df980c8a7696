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

// TopK implements the top_k operator (§4.3), grounded on
// postprocessor.TopKPostprocessor's copy-sort-truncate shape.
func TopK(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	k, ok := argInt(args, "k")
	if !ok || k < 0 {
		return operator.Result{}, fmt.Errorf("top_k: k must be a non-negative integer")
	}
	by, _ := argString(args, "by")
	if by == "" {
		by = "relevance"
	}
	order, _ := argString(args, "order")
	if order == "" {
		order = "desc"
	}

	docs := input.Documents()
	sorted := make([]document.Document, len(docs))
	copy(sorted, docs)

	if by != "relevance" {
		asc := order == "asc"
		sort.SliceStable(sorted, func(i, j int) bool {
			var less bool
			switch by {
			case "timestamp":
				less = sorted[i].Timestamp.Before(sorted[j].Timestamp)
			case "word_count":
				less = sorted[i].Metadata.WordCount < sorted[j].Metadata.WordCount
			}
			if asc {
				return less
			}
			return sortedGreater(sorted[i], sorted[j], by)
		})
	}

	if k < len(sorted) {
		sorted = sorted[:k]
	}

	out := input.WithDocs(sorted)
	out = out.WithAudit(docset.AuditEntry{
		Op:          "top_k",
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

func sortedGreater(a, b document.Document, by string) bool {
	switch by {
	case "timestamp":
		return a.Timestamp.After(b.Timestamp)
	case "word_count":
		return a.Metadata.WordCount > b.Metadata.WordCount
	default:
		return false
	}
}
