// Package executor runs a plan.Plan to completion against an operator
// registry (spec §4.7), grounded on workflow.Workflow's sequential
// event-loop shape and its functional-options/slog logging convention,
// adapted from an event-driven dispatcher to a linear step-by-step state
// machine over plan.Step.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aqua777/coquery/budget"
	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
	"github.com/aqua777/coquery/plan"
	"github.com/aqua777/coquery/provider"
)

// StepTrace records one attempted step's outcome for the trace (§4.7).
type StepTrace struct {
	Key         string                 `json:"key"`
	Op          string                 `json:"op"`
	Status      string                 `json:"status"` // "ok" | "error"
	Args        map[string]interface{} `json:"args,omitempty"`
	Error       string                 `json:"error,omitempty"`
	DurationMs  int64                  `json:"duration_ms"`
	CostUSD     float64                `json:"cost_usd"`
	ResultCount int                    `json:"result_count"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
}

// Result is the executor's output (§4.7).
type Result struct {
	FinalDocSet  docset.DocSet
	Trace        []StepTrace
	TotalCost    float64
	StoppedEarly bool
	Error        error
}

// Executor runs plan.Plans against a registry and a corpus.
type Executor struct {
	registry *operator.Registry
	corpus   *document.Corpus
	provider provider.Provider
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithProvider sets the LLM provider used by Tier-3 operators.
func WithProvider(p provider.Provider) Option {
	return func(e *Executor) { e.provider = p }
}

// WithLogger sets the executor's structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an Executor bound to a registry and corpus.
func New(registry *operator.Registry, corpus *document.Corpus, opts ...Option) *Executor {
	e := &Executor{
		registry: registry,
		corpus:   corpus,
		logger:   slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes p to completion, enforcing bgt, per the state machine in
// §4.7: ResolveInput -> Dispatch -> Execute -> Commit, with a non-fatal
// ErrorBranch that passes the input through and a fatal ErrorBranch that
// stops the plan.
func (e *Executor) Run(ctx context.Context, p plan.Plan, bgt *budget.Budget) Result {
	outputs := make(map[string]docset.DocSet)
	full := docset.FromCorpus(e.corpus)

	var trace []StepTrace
	var totalCost float64
	current := full

	for i, step := range p.Steps {
		key := step.ID
		if key == "" {
			key = fmt.Sprintf("_step_%d", i)
		}
		if _, dup := outputs[key]; dup {
			return e.fatal(trace, current, totalCost, &plan.Error{StepIndex: i, StepID: step.ID, Reason: "duplicate step key"})
		}

		input, resolveErr := e.resolveInput(step, i, full, current, outputs)
		if resolveErr != nil {
			return e.fatal(trace, current, totalCost, resolveErr)
		}

		args, err := step.DecodeArgs()
		if err != nil {
			trace = append(trace, e.passthroughTrace(key, step.Op, nil, err))
			outputs[key] = input
			current = input
			continue
		}

		fn, _, ok := e.registry.Lookup(step.Op)
		if !ok {
			return e.fatal(trace, current, totalCost, &plan.Error{StepIndex: i, StepID: step.ID, Reason: (&operator.ErrUnknownOperator{Op: step.Op}).Error()})
		}

		start := time.Now()
		res, execErr := fn(ctx, input, args, operator.ExecContext{Corpus: e.corpus, Budget: bgt, Provider: e.provider, Logger: e.logger})
		duration := time.Since(start).Milliseconds()

		if execErr != nil {
			e.logger.Warn("step failed, passing through", "op", step.Op, "key", key, "error", execErr)
			trace = append(trace, StepTrace{Key: key, Op: step.Op, Status: "error", Args: args, Error: execErr.Error(), DurationMs: duration})
			passthrough := input.WithAudit(docset.AuditEntry{Op: step.Op, Args: args, Timestamp: start, InputCount: input.Len(), OutputCount: input.Len(), DurationMs: duration})
			outputs[key] = passthrough
			current = passthrough
			continue
		}

		if err := bgt.TryAdd(res.Meta.CostUSD); err != nil {
			trace = append(trace, StepTrace{Key: key, Op: step.Op, Status: "error", Args: args, Error: err.Error(), DurationMs: duration})
			return e.fatal(trace, current, totalCost, &plan.Error{StepIndex: i, StepID: step.ID, Reason: err.Error()})
		}
		totalCost += res.Meta.CostUSD

		trace = append(trace, StepTrace{
			Key:         key,
			Op:          step.Op,
			Status:      "ok",
			Args:        args,
			DurationMs:  duration,
			CostUSD:     res.Meta.CostUSD,
			ResultCount: res.Meta.ResultCount,
			Detail:      res.Meta.Detail,
		})
		outputs[key] = res.DocSet
		current = res.DocSet
	}

	return Result{FinalDocSet: current, Trace: trace, TotalCost: totalCost, StoppedEarly: false}
}

func (e *Executor) passthroughTrace(key, op string, args map[string]interface{}, err error) StepTrace {
	return StepTrace{Key: key, Op: op, Status: "error", Args: args, Error: err.Error()}
}

func (e *Executor) fatal(trace []StepTrace, last docset.DocSet, totalCost float64, err error) Result {
	return Result{FinalDocSet: last, Trace: trace, TotalCost: totalCost, StoppedEarly: true, Error: err}
}

// resolveInput implements §4.7's input resolution rules.
func (e *Executor) resolveInput(step plan.Step, index int, full, previous docset.DocSet, outputs map[string]docset.DocSet) (docset.DocSet, error) {
	ids, isCorpus, isList := step.InputIDs()

	if step.Input == "" {
		if index == 0 {
			return full, nil
		}
		return previous, nil
	}
	if isCorpus {
		return full, nil
	}
	if !isList {
		if len(ids) != 1 {
			return docset.DocSet{}, &plan.Error{StepIndex: index, StepID: step.ID, Reason: "empty input reference"}
		}
		out, ok := outputs[ids[0]]
		if !ok {
			return docset.DocSet{}, &plan.Error{StepIndex: index, StepID: step.ID, Reason: fmt.Sprintf("input reference %q not yet produced (forward or missing reference)", ids[0])}
		}
		return out, nil
	}

	resolved := make([]docset.DocSet, 0, len(ids))
	for _, id := range ids {
		out, ok := outputs[id]
		if !ok {
			return docset.DocSet{}, &plan.Error{StepIndex: index, StepID: step.ID, Reason: fmt.Sprintf("input reference %q not yet produced (forward or missing reference)", id)}
		}
		resolved = append(resolved, out)
	}
	if step.Op == "intersect" {
		return docset.Intersect(resolved...), nil
	}
	return docset.Union(resolved...), nil
}
