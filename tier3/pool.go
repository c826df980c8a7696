// Package tier3 implements the LLM-backed label/extract operators (spec
// §4.5), grounded on extractors.runConcurrent's semaphore+WaitGroup worker
// pool, generalized to a per-unit failure policy (§4.5's "a failed unit
// produces no labels; the operator still succeeds") rather than
// runConcurrent's first-error-aborts-all behavior.
package tier3

import (
	"context"
	"sync"
)

// unitResult pairs a per-unit outcome with its error, if any, so callers
// can apply the "no labels for that unit" policy without aborting the
// whole fan-out.
type unitResult[T any] struct {
	value T
	err   error
}

// runConcurrent invokes fn once per item with a bounded worker pool,
// returning one result per item in input order. Unlike
// extractors.runConcurrent, a per-item error is recorded rather than
// propagated — every item still gets a result slot, per §4.5's call
// failure policy.
func runConcurrent[I any, T any](ctx context.Context, items []I, numWorkers int, fn func(ctx context.Context, item I, index int) (T, error)) []unitResult[T] {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	results := make([]unitResult[T], len(items))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, numWorkers)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it I) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			v, err := fn(ctx, it, idx)
			results[idx] = unitResult[T]{value: v, err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
