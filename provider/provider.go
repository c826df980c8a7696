// Package provider defines the abstract text-generation collaborator the
// core depends on (spec §6). The LLM provider SDK itself is out of core
// scope; concrete adapters (provider/openai, provider/bedrock) implement
// this interface but the planner, executor, tier3 operators, and
// synthesizer import only this package.
package provider

import (
	"context"
	"time"
)

// Usage reports token counts from a provider response, when known.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the result of one generate_structured call.
type Response struct {
	OutputText string
	Usage      *Usage
}

// Provider is the minimal collaborator the core requires: structured JSON
// generation against a caller-supplied schema (§6).
//
//	generate_structured(model, instructions, input, reasoning_effort, json_schema)
//	   → {output_text, usage?}
type Provider interface {
	GenerateStructured(ctx context.Context, req Request) (Response, error)
}

// Request bundles one generate_structured call's arguments.
type Request struct {
	Model           string
	Instructions    string
	Input           string
	ReasoningEffort string // e.g. "low", "medium", "high" — policy, not enforced by the core
	JSONSchema      map[string]interface{}
	Timeout         time.Duration
}
