// Package operator defines the name-keyed dispatch table the executor uses
// to invoke Tier-1 and Tier-3 operators (spec §4.2), grounded on
// tools.FunctionTool/tools.RetrieverTool's name-keyed registration pattern
// and agent's dispatch-by-name tool calling.
package operator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aqua777/coquery/budget"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/provider"
)

// Tier classifies an operator's cost model.
type Tier int

const (
	// Tier1 operators are deterministic and free.
	Tier1 Tier = 1
	// Tier3 operators are LLM-backed and priced.
	Tier3 Tier = 3
)

// ExecContext is the shared, read-mostly context passed to every operator
// invocation (spec §4.7's ExecContext{corpus, budget, trace, provider?}).
type ExecContext struct {
	Corpus   *document.Corpus
	Budget   *budget.Budget
	Provider provider.Provider
	Logger   *slog.Logger
}

// OpMeta carries an operator invocation's telemetry and operator-specific
// detail map.
type OpMeta struct {
	DurationMs  int64
	CostUSD     float64
	ResultCount int
	Detail      map[string]interface{}
}

// Result is what every operator returns: the transformed DocSet plus
// telemetry for the trace.
type Result struct {
	DocSet docset.DocSet
	Meta   OpMeta
}

// Func is an operator's dispatch signature: (DocSet, args, ExecContext) ->
// Result, error. Structural operators (union/intersect) are invoked through
// this signature too: the executor merges their multiple inputs in
// executor.resolveInput first, so they receive the already-merged DocSet.
type Func func(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec ExecContext) (Result, error)

// Registry is the name -> operator dispatch table, with a parallel tier
// tag per name (§4.2).
type Registry struct {
	funcs map[string]Func
	tiers map[string]Tier
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func), tiers: make(map[string]Tier)}
}

// Register adds an operator under name with the given tier. Registering the
// same name twice overwrites the previous entry — used by tests to install
// fakes.
func (r *Registry) Register(name string, tier Tier, fn Func) {
	r.funcs[name] = fn
	r.tiers[name] = tier
}

// Lookup returns the operator function and tier for name.
func (r *Registry) Lookup(name string) (Func, Tier, bool) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, 0, false
	}
	return fn, r.tiers[name], true
}

// Names returns the registered operator names (the closed set from §6,
// unless the caller registered additional test fakes).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	return out
}

// ErrUnknownOperator is returned by the executor when a plan step names an
// operator absent from the registry (a fatal plan error per §4.7/§7).
type ErrUnknownOperator struct {
	Op string
}

func (e *ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator: %s", e.Op)
}
