package tier3

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/internal/engineconfig"
	"github.com/aqua777/coquery/internal/tokencount"
	"github.com/aqua777/coquery/label"
	"github.com/aqua777/coquery/operator"
	"github.com/aqua777/coquery/provider"
	"github.com/aqua777/coquery/threadgroup"
)

// defaultOutputTokenEstimate is the output-token count used to cost a call
// when the provider response carries no usage: always for extract, and for
// label when the returned label and rationale text are empty (§4.5).
const defaultOutputTokenEstimate = 150

var labelResponseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"label":          map[string]interface{}{"type": "string"},
		"matches":        map[string]interface{}{"type": "boolean"},
		"details":        map[string]interface{}{"type": "object"},
		"confidence":     map[string]interface{}{"type": "number"},
		"rationale":      map[string]interface{}{"type": "string"},
		"cited_messages": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
	},
	"required": []string{"label", "confidence"},
}

type labelResponse struct {
	Label         string                 `json:"label"`
	Matches       *bool                  `json:"matches,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	Confidence    float64                `json:"confidence"`
	Rationale     string                 `json:"rationale"`
	CitedMessages []string               `json:"cited_messages"`
}

// buildLabel turns a parsed response into the Label variant §3 specifies
// for the schema's kind: a well-known tag always yields a plain string
// classification, while a custom natural-language (yes/no) schema yields a
// boolean+details compound label when the model answered the matches
// field, falling back to a simple string label otherwise.
func buildLabel(schema string, parsed *labelResponse) label.Label {
	if wellKnownTags[strings.ToLower(schema)] || parsed.Matches == nil {
		return label.NewSimple(parsed.Label, parsed.Confidence, parsed.Rationale)
	}
	details := parsed.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	if parsed.Label != "" {
		details["label"] = parsed.Label
	}
	return label.NewCompound(*parsed.Matches, details, parsed.Confidence, parsed.Rationale)
}

// labelCall bundles a parsed response with whatever usage the provider
// reported, so cost accounting can prefer real counts over estimates.
type labelCall struct {
	parsed *labelResponse
	usage  *provider.Usage
}

// Label implements the label operator (§4.5): classifies each unit (thread
// or message) with the provider, merging the result back into the DocSet's
// label map. A thread-unit label is propagated to every document of that
// thread that also belongs to the input DocSet, carrying a ThreadMeta.
func Label(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	schema, ok := args["schema"].(string)
	if !ok || schema == "" {
		return operator.Result{}, fmt.Errorf("label: schema is required")
	}
	unit, _ := args["unit"].(string)
	if unit == "" {
		unit = "message"
	}
	if ec.Provider == nil {
		return operator.Result{}, fmt.Errorf("label: no provider configured")
	}

	key := labelKeyFor(schema)
	model, effort := modelFor(schema)
	instructions := labelInstructions(schema)

	labels := make(map[string]label.Map, input.Len())
	for id, m := range input.LabelMap() {
		labels[id] = m
	}

	var totalCost float64
	var failedUnits int
	concurrency := engineconfig.Tier3Concurrency()

	if unit == "thread" {
		groups := threadgroup.Group(input, ec.Corpus)
		results := runConcurrent(ctx, groups, concurrency, func(ctx context.Context, g threadgroup.ThreadGroup, idx int) (labelCall, error) {
			return callLabel(ctx, ec.Provider, model, effort, instructions, g.Rendered)
		})

		for i, r := range results {
			if r.err != nil || r.value.parsed == nil {
				failedUnits++
				continue
			}
			g := groups[i]
			totalCost += costFor(model, g.TokenEstimate, r.value)
			parsed := r.value.parsed
			l := buildLabel(schema, parsed)
			l.ThreadMeta = &label.ThreadMeta{Unit: "thread", ThreadID: g.ThreadID, CitedMessages: parsed.CitedMessages}
			for docID := range g.ActiveIDs {
				cur := labels[docID].Clone()
				cur.Set(key, l)
				labels[docID] = cur
			}
		}
	} else {
		docs := input.Documents()
		results := runConcurrent(ctx, docs, concurrency, func(ctx context.Context, d document.Document, idx int) (labelCall, error) {
			return callLabel(ctx, ec.Provider, model, effort, instructions, renderMessage(d))
		})

		for i, r := range results {
			if r.err != nil || r.value.parsed == nil {
				failedUnits++
				continue
			}
			d := docs[i]
			totalCost += costFor(model, tokencount.Estimate(model, d.Text), r.value)
			parsed := r.value.parsed
			l := buildLabel(schema, parsed)
			cur := labels[d.ID].Clone()
			cur.Set(key, l)
			labels[d.ID] = cur
		}
	}

	out := input.WithLabels(labels)
	out = out.WithAudit(docset.AuditEntry{
		Op:          "label",
		Args:        args,
		Timestamp:   start,
		InputCount:  input.Len(),
		OutputCount: out.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
		CostUSD:     totalCost,
	})

	return operator.Result{
		DocSet: out,
		Meta: operator.OpMeta{
			DurationMs:  time.Since(start).Milliseconds(),
			CostUSD:     totalCost,
			ResultCount: out.Len(),
			Detail:      map[string]interface{}{"failed_units": failedUnits},
		},
	}, nil
}

func labelInstructions(schema string) string {
	if wellKnownTags[strings.ToLower(schema)] {
		switch strings.ToLower(schema) {
		case "tone":
			return "Classify the emotional tone of this conversation as it would read to a neutral third party (e.g. \"hostile\", \"neutral\", \"cooperative\"). Respond with the JSON fields label, confidence, rationale, cited_messages."
		case "topic":
			return "Identify the primary topic of this conversation (e.g. \"scheduling\", \"finances\", \"health\"). Respond with the JSON fields label, confidence, rationale, cited_messages."
		}
	}
	return fmt.Sprintf("Answer this yes/no classification question about the following content: %s. Respond with the JSON fields matches (boolean), label (a short restatement), confidence, rationale, cited_messages, and an optional details object with supporting specifics.", schema)
}

func renderMessage(d document.Document) string {
	return fmt.Sprintf("[%s] %s — %s\n%s", d.ID, d.Metadata.Sender, d.Timestamp.UTC().Format(time.RFC3339), d.Text)
}

func callLabel(ctx context.Context, p provider.Provider, model, effort, instructions, input string) (labelCall, error) {
	resp, err := p.GenerateStructured(ctx, provider.Request{
		Model:           model,
		Instructions:    instructions,
		Input:           input,
		ReasoningEffort: effort,
		JSONSchema:      labelResponseSchema,
		Timeout:         30 * time.Second,
	})
	if err != nil {
		return labelCall{}, err
	}
	var parsed labelResponse
	if err := json.Unmarshal([]byte(resp.OutputText), &parsed); err != nil {
		return labelCall{}, fmt.Errorf("label: unparseable response: %w", err)
	}
	return labelCall{parsed: &parsed, usage: resp.Usage}, nil
}

// costFor prices a call's tokens: real usage when the provider reported
// it, else the input estimate plus an output estimate taken from the
// returned label and rationale text, or defaultOutputTokenEstimate when
// that text is empty (§4.5).
func costFor(model string, inputTokenEstimate int, call labelCall) float64 {
	table := engineconfig.PriceTable()
	if call.usage != nil {
		return table.Cost(model, call.usage.InputTokens, call.usage.OutputTokens)
	}
	outputTokens := tokencount.Estimate(model, call.parsed.Label+call.parsed.Rationale)
	if outputTokens == 0 {
		outputTokens = defaultOutputTokenEstimate
	}
	return table.Cost(model, inputTokenEstimate, outputTokens)
}
