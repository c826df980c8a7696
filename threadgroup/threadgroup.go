// Package threadgroup hydrates full conversation context for a narrowed
// DocSet (spec §4.4), grounded on rag/synthesizer.Response.GetFormattedSources's
// "render each source under a fixed header, join with blank lines" shape
// and chatengine's condense-plus-context template convention.
package threadgroup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/internal/tokencount"
)

// ThreadGroup is one thread's full corpus context, rendered for LLM input,
// plus bookkeeping about which of its messages belong to the active
// DocSet (§4.4's label-propagation requirement).
type ThreadGroup struct {
	ThreadID      string
	Messages      []document.Document
	Rendered      string
	TokenEstimate int
	// ActiveIDs are the document ids of this thread's messages that are
	// present in the DocSet the grouper was invoked on.
	ActiveIDs map[string]bool
}

const separator = "────────────────────────────"

// Group collects the distinct thread ids present in ds, hydrates each
// thread from the full corpus (not ds), sorts chronologically, and renders
// a fixed-format block per thread.
func Group(ds docset.DocSet, corpus *document.Corpus) []ThreadGroup {
	seen := make(map[string]bool)
	var order []string
	active := make(map[string]map[string]bool)

	for _, d := range ds.Documents() {
		if !d.HasThread() {
			continue
		}
		tid := d.Metadata.ThreadID
		if !seen[tid] {
			seen[tid] = true
			order = append(order, tid)
			active[tid] = make(map[string]bool)
		}
		active[tid][d.ID] = true
	}

	groups := make([]ThreadGroup, 0, len(order))
	for _, tid := range order {
		msgs := corpus.Thread(tid)
		sorted := make([]document.Document, len(msgs))
		copy(sorted, msgs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		rendered := render(tid, sorted)
		groups = append(groups, ThreadGroup{
			ThreadID:      tid,
			Messages:      sorted,
			Rendered:      rendered,
			TokenEstimate: tokencount.Heuristic(rendered),
			ActiveIDs:     active[tid],
		})
	}
	return groups
}

func render(threadID string, msgs []document.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "THREAD: %s (%d messages)\n", threadID, len(msgs))
	b.WriteString(separator)
	b.WriteByte('\n')
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s — %s\n", m.ID, m.Metadata.Sender, m.Timestamp.UTC().Format("2006-01-02T15:04:05Z"))
		b.WriteString(m.Text)
		b.WriteString("\n\n")
	}
	b.WriteString(separator)
	return b.String()
}
