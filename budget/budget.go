// Package budget implements the running cost accumulator with a hard upper
// bound that the executor enforces across one plan execution (spec §3, §7).
package budget

import "fmt"

// Budget is the only mutable per-execution resource (§5 "Shared-resource
// policy"). All increments happen on the orchestrator thread between
// operator returns, so it is deliberately not internally synchronized.
type Budget struct {
	LimitUSD float64
	SpentUSD float64
}

// New creates a Budget with the given limit and zero spend.
func New(limitUSD float64) *Budget {
	return &Budget{LimitUSD: limitUSD}
}

// ExceededError is returned by TryAdd when a charge would push spend above
// the limit. The offending amount is never committed (§7, invariant 7).
type ExceededError struct {
	LimitUSD   float64
	SpentUSD   float64
	Attempted  float64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: spent=%.6f attempted=%.6f limit=%.6f", e.SpentUSD, e.Attempted, e.LimitUSD)
}

// TryAdd attempts to add cost to the running spend. If doing so would push
// SpentUSD above LimitUSD, the addition is rejected and spend is left
// unchanged; the caller (the executor) treats this as a fatal budget error.
func (b *Budget) TryAdd(cost float64) error {
	if b.SpentUSD+cost > b.LimitUSD {
		return &ExceededError{LimitUSD: b.LimitUSD, SpentUSD: b.SpentUSD, Attempted: cost}
	}
	b.SpentUSD += cost
	return nil
}

// Remaining returns the unspent portion of the budget.
func (b *Budget) Remaining() float64 {
	r := b.LimitUSD - b.SpentUSD
	if r < 0 {
		return 0
	}
	return r
}
