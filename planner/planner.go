// Package planner turns a natural-language query and a corpus summary into
// a typed plan.Plan via a single generate_structured call (spec §4.6),
// grounded on program.LLMProgram's "format prompt, call LLM, parse JSON
// into a typed struct" shape and rag/queryengine/sub_question.go's
// question-decomposition instructions.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/plan"
	"github.com/aqua777/coquery/provider"
)

// SenderCount is one entry of a CorpusSummary's per-sender breakdown.
type SenderCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CorpusSummary is the planner's only view of the corpus beyond the query
// string (§4.6).
type CorpusSummary struct {
	TotalDocuments  int           `json:"total_documents"`
	Senders         []SenderCount `json:"senders"`
	DateRange       [2]string     `json:"date_range"`
	ThreadCount     int           `json:"thread_count"`
	HasToneAnalysis bool          `json:"has_tone_analysis"`
}

// Summarize builds a CorpusSummary from a corpus. hasToneAnalysis is
// supplied by the caller since a bare Corpus carries no labels of its own.
func Summarize(c *document.Corpus, hasToneAnalysis bool) CorpusSummary {
	docs := c.Documents()
	counts := make(map[string]int)
	threads := make(map[string]bool)
	var minT, maxT time.Time
	for i, d := range docs {
		counts[d.Metadata.Sender]++
		if d.HasThread() {
			threads[d.Metadata.ThreadID] = true
		}
		if i == 0 || d.Timestamp.Before(minT) {
			minT = d.Timestamp
		}
		if i == 0 || d.Timestamp.After(maxT) {
			maxT = d.Timestamp
		}
	}

	senders := make([]SenderCount, 0, len(counts))
	for name, n := range counts {
		senders = append(senders, SenderCount{Name: name, Count: n})
	}
	sort.Slice(senders, func(i, j int) bool {
		if senders[i].Count != senders[j].Count {
			return senders[i].Count > senders[j].Count
		}
		return senders[i].Name < senders[j].Name
	})

	var dateRange [2]string
	if len(docs) > 0 {
		dateRange = [2]string{minT.UTC().Format("2006-01-02"), maxT.UTC().Format("2006-01-02")}
	}

	return CorpusSummary{
		TotalDocuments:  len(docs),
		Senders:         senders,
		DateRange:       dateRange,
		ThreadCount:     len(threads),
		HasToneAnalysis: hasToneAnalysis,
	}
}

// instructions encodes the planner rules of §4.6 as a system prompt.
const instructions = `You are a query planner for a deterministic-first document query engine over a bounded corpus of co-parenting conversation messages.

Rules:
1. Prefer deterministic (Tier-1) narrowing first, but only when a deterministic filter has high recall for the target concept. Fuzzy, conversational, or indirect concepts must skip Tier 1 and go straight to thread-level Tier 3 classification.
2. Default to unit: "thread" for conversational corpora.
3. Prefer a single compound thread-level classification (one label call) over a multi-step chain of regex, then semantic search, then label.
4. Label before filter: classify first with the label operator, then reduce with filter_by_label. Do not conflate classification and filtering into one step.
5. Produce a linear plan unless branching is genuinely required. Only set a step's id and another step's input when a step must reference a non-previous step's output.

Respond with JSON: {"query_interpretation": string, "steps": [{"id"?: string, "op": string, "args_json": string (JSON-encoded), "input"?: "" | "corpus" | string | "id1,id2,..."}...], "total_estimated_cost": number, "reasoning_summary": string}.
The allowed operator names are: filter_metadata, search_lex, search_regex, top_k, sample, get_context, count, trend, filter_by_label, union, intersect, label, extract.`

var responseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"query_interpretation": map[string]interface{}{"type": "string"},
		"steps": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":        map[string]interface{}{"type": "string"},
					"op":        map[string]interface{}{"type": "string"},
					"args_json": map[string]interface{}{"type": "string"},
					"input":     map[string]interface{}{"type": "string"},
				},
				"required": []string{"op", "args_json"},
			},
		},
		"total_estimated_cost": map[string]interface{}{"type": "number"},
		"reasoning_summary":    map[string]interface{}{"type": "string"},
	},
	"required": []string{"query_interpretation", "steps"},
}

// Plan calls the provider once to turn query + summary into a plan.Plan.
func Plan(ctx context.Context, p provider.Provider, query string, summary CorpusSummary) (plan.Plan, error) {
	if p == nil {
		return plan.Plan{}, fmt.Errorf("planner: no provider configured")
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("planner: marshal summary: %w", err)
	}

	input := fmt.Sprintf("Query: %s\nCorpus summary: %s", query, summaryJSON)

	resp, err := p.GenerateStructured(ctx, provider.Request{
		Model:           "gpt-4o",
		Instructions:    instructions,
		Input:           input,
		ReasoningEffort: "medium",
		JSONSchema:      responseSchema,
		Timeout:         60 * time.Second,
	})
	if err != nil {
		return plan.Plan{}, fmt.Errorf("planner: generate: %w", err)
	}

	var out plan.Plan
	if err := json.Unmarshal([]byte(resp.OutputText), &out); err != nil {
		return plan.Plan{}, fmt.Errorf("planner: unparseable plan: %w", err)
	}
	return out, nil
}
