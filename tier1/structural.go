package tier1

import (
	"context"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/operator"
)

// Union and Intersect are identity operators at the Func dispatch layer:
// the executor already resolved their multi-input merge during
// ResolveInput (§4.7), so by the time Dispatch/Execute reach them the
// input DocSet is already the union/intersection. They exist in the
// registry purely so Dispatch's operator lookup succeeds for these step
// names (§4.2's "special-cased by the executor for input resolution").
func Union(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	return identityResult("union", input, args), nil
}

func Intersect(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	return identityResult("intersect", input, args), nil
}

func identityResult(op string, input docset.DocSet, args map[string]interface{}) operator.Result {
	start := time.Now()
	out := input.WithAudit(docset.AuditEntry{
		Op:          op,
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: input.Len(),
	})
	return operator.Result{DocSet: out, Meta: operator.OpMeta{ResultCount: out.Len()}}
}
