package tier1

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
)

// Sample implements the sample operator (§4.3): random / stratified /
// recent selection of n documents. Randomness is seedable via args["seed"]
// so tests get deterministic output.
func Sample(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	n, ok := argInt(args, "n")
	if !ok || n < 0 {
		return operator.Result{}, fmt.Errorf("sample: n must be a non-negative integer")
	}
	strategy, _ := argString(args, "strategy")
	if strategy == "" {
		strategy = "random"
	}
	seed, hasSeed := argInt(args, "seed")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if hasSeed {
		rng = rand.New(rand.NewSource(int64(seed)))
	}

	docs := input.Documents()

	var selected []document.Document
	switch strategy {
	case "recent":
		sorted := make([]document.Document, len(docs))
		copy(sorted, docs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		})
		if n < len(sorted) {
			sorted = sorted[:n]
		}
		selected = sorted
	case "stratified":
		selected = stratifiedSample(docs, n, rng)
	default: // "random"
		shuffled := make([]document.Document, len(docs))
		copy(shuffled, docs)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if n < len(shuffled) {
			shuffled = shuffled[:n]
		}
		selected = shuffled
	}

	out := input.WithDocs(selected)
	out = out.WithAudit(docset.AuditEntry{
		Op:          "sample",
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

// stratifiedSample allocates n across senders proportional to each sender's
// share of docs, using largest-remainder rounding, then tops up any
// shortfall with a uniformly random draw from the remainder (§4.3).
func stratifiedSample(docs []document.Document, n int, rng *rand.Rand) []document.Document {
	if n >= len(docs) {
		out := make([]document.Document, len(docs))
		copy(out, docs)
		return out
	}

	groups := make(map[string][]document.Document)
	var senders []string
	for _, d := range docs {
		if _, ok := groups[d.Metadata.Sender]; !ok {
			senders = append(senders, d.Metadata.Sender)
		}
		groups[d.Metadata.Sender] = append(groups[d.Metadata.Sender], d)
	}
	sort.Strings(senders)

	total := len(docs)
	type alloc struct {
		sender    string
		share     float64
		base      int
		remainder float64
	}
	allocs := make([]alloc, 0, len(senders))
	assigned := 0
	for _, s := range senders {
		share := float64(n) * float64(len(groups[s])) / float64(total)
		base := int(share)
		allocs = append(allocs, alloc{sender: s, share: share, base: base, remainder: share - float64(base)})
		assigned += base
	}

	shortfall := n - assigned
	sort.SliceStable(allocs, func(i, j int) bool {
		return allocs[i].remainder > allocs[j].remainder
	})
	for i := 0; i < shortfall && i < len(allocs); i++ {
		allocs[i].base++
	}

	byAlloc := make(map[string]int, len(allocs))
	for _, a := range allocs {
		byAlloc[a.sender] = a.base
	}

	var selected []document.Document
	var leftover []document.Document
	for _, s := range senders {
		grp := groups[s]
		want := byAlloc[s]
		shuffled := make([]document.Document, len(grp))
		copy(shuffled, grp)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if want > len(shuffled) {
			want = len(shuffled)
		}
		selected = append(selected, shuffled[:want]...)
		leftover = append(leftover, shuffled[want:]...)
	}

	// Top up any remaining shortfall (a group had fewer docs than its
	// allocation) with a uniformly random draw from the remainder.
	remaining := n - len(selected)
	if remaining > 0 && len(leftover) > 0 {
		rng.Shuffle(len(leftover), func(i, j int) {
			leftover[i], leftover[j] = leftover[j], leftover[i]
		})
		if remaining > len(leftover) {
			remaining = len(leftover)
		}
		selected = append(selected, leftover[:remaining]...)
	}

	return selected
}
