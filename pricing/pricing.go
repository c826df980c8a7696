// Package pricing implements the static price table (spec §6): a model ->
// per-token rate mapping. Absent entries yield zero cost ("dev mode").
// Grounded on llm.GPT4oMetadata/llm.GPT4TurboMetadata's per-model
// named-constructor idiom, applied to price-per-token instead of
// context-window metadata.
package pricing

// Rates holds per-token USD pricing for one model.
type Rates struct {
	InputUSDPerToken  float64
	OutputUSDPerToken float64
}

// Table maps model name to its Rates.
type Table map[string]Rates

// DefaultTable returns the built-in price table for the models this
// engine's provider adapters and planner/tier-3 policy route calls to.
// Prices are illustrative per-token USD figures in the same ballpark as
// published provider pricing at time of writing.
func DefaultTable() Table {
	return Table{
		"gpt-4o-mini": {InputUSDPerToken: 0.15 / 1_000_000, OutputUSDPerToken: 0.60 / 1_000_000},
		"gpt-4o":      {InputUSDPerToken: 2.50 / 1_000_000, OutputUSDPerToken: 10.00 / 1_000_000},
		"gpt-4-turbo": {InputUSDPerToken: 10.00 / 1_000_000, OutputUSDPerToken: 30.00 / 1_000_000},
		"anthropic.claude-3-5-haiku-20241022-v1:0":  {InputUSDPerToken: 0.80 / 1_000_000, OutputUSDPerToken: 4.00 / 1_000_000},
		"anthropic.claude-3-5-sonnet-20241022-v2:0": {InputUSDPerToken: 3.00 / 1_000_000, OutputUSDPerToken: 15.00 / 1_000_000},
	}
}

// Cost computes the USD cost of a call to model with the given input/output
// token counts. An absent model yields zero cost (dev mode, per §6).
func (t Table) Cost(model string, inputTokens, outputTokens int) float64 {
	rates, ok := t[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)*rates.InputUSDPerToken + float64(outputTokens)*rates.OutputUSDPerToken
}
