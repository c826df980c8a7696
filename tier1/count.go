package tier1

import (
	"context"
	"fmt"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
)

// Count implements the count operator (§4.3): emits detail.groups without
// modifying the DocSet.
func Count(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	by, _ := argString(args, "by")
	if by == "" {
		by = "sender"
	}

	groups := make(map[string]int)
	for _, d := range input.Documents() {
		key := groupKey(d, by, input)
		groups[key]++
	}

	out := input.WithAudit(docset.AuditEntry{
		Op:          "count",
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: input.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	return operator.Result{
		DocSet: out,
		Meta: operator.OpMeta{
			DurationMs:  time.Since(start).Milliseconds(),
			ResultCount: out.Len(),
			Detail:      map[string]interface{}{"groups": groups},
		},
	}, nil
}

func groupKey(d document.Document, by string, ds docset.DocSet) string {
	switch by {
	case "thread":
		if d.Metadata.ThreadID == "" {
			return "unlabeled"
		}
		return d.Metadata.ThreadID
	case "month":
		return d.Timestamp.UTC().Format("2006-01")
	case "week":
		return isoWeek(d.Timestamp)
	case "tone", "topic":
		labels, ok := ds.Labels(d.ID)
		if !ok {
			return "unlabeled"
		}
		l, ok := labels.Get(by)
		if !ok {
			return "unlabeled"
		}
		return l.AsString()
	default: // "sender"
		return d.Metadata.Sender
	}
}

func isoWeek(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
