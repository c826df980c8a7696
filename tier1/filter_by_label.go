package tier1

import (
	"context"
	"fmt"
	"time"

	"github.com/aqua777/coquery/condition"
	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/label"
	"github.com/aqua777/coquery/operator"
)

// FilterByLabel implements the filter_by_label operator (§4.3), wiring the
// condition package's grammar scanner/evaluator against each document's
// label map. Documents lacking a referenced label are excluded.
func FilterByLabel(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	condStr, ok := argString(args, "condition")
	if !ok || condStr == "" {
		return operator.Result{}, fmt.Errorf("filter_by_label: condition is required")
	}
	cond, err := condition.Parse(condStr)
	if err != nil {
		return operator.Result{}, fmt.Errorf("filter_by_label: %w", err)
	}

	out := input.Filter(func(d document.Document) bool {
		labels, ok := input.Labels(d.ID)
		if !ok {
			labels = label.NewMap()
		}
		return condition.Eval(cond, labels)
	})

	out = out.WithAudit(docset.AuditEntry{
		Op:          "filter_by_label",
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
