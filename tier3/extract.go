package tier3

import (
	"context"
	"encoding/json"
	"fmt"
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

var extractResponseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"items": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"message_id": map[string]interface{}{"type": "string"},
					"field":      map[string]interface{}{"type": "string"},
					"value":      map[string]interface{}{"type": "string"},
					"span": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"start": map[string]interface{}{"type": "integer"},
							"end":   map[string]interface{}{"type": "integer"},
						},
					},
					"confidence": map[string]interface{}{"type": "number"},
					"context":    map[string]interface{}{"type": "string"},
				},
				"required": []string{"message_id", "field", "value"},
			},
		},
	},
	"required": []string{"items"},
}

type extractItemWire struct {
	MessageID string `json:"message_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Span      *struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"span"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

type extractResponse struct {
	Items []extractItemWire `json:"items"`
}

// Extract implements the extract operator (§4.5): requests a list of
// extraction items per unit and attaches them, grouped by the document each
// item's message_id names, under the key extract:<schema>.
func Extract(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
	start := time.Now()

	schema, ok := args["schema"].(string)
	if !ok || schema == "" {
		return operator.Result{}, fmt.Errorf("extract: schema is required")
	}
	unit, _ := args["unit"].(string)
	if unit == "" {
		unit = "message"
	}
	if ec.Provider == nil {
		return operator.Result{}, fmt.Errorf("extract: no provider configured")
	}

	key := "extract:" + schema
	model, effort := strongModel, strongEffort
	instructions := fmt.Sprintf(
		"Extract every occurrence of this field from the conversation: %s. For each occurrence, report the message_id containing the exact quoted span, the field name, the value, its character span within that message's text, a 0..1 confidence, and surrounding context. Respond with the JSON field items.",
		schema,
	)

	itemsByDoc := make(map[string][]label.ExtractionItem)
	var failedUnits int

	if unit == "thread" {
		groups := threadgroup.Group(input, ec.Corpus)
		results := runConcurrent(ctx, groups, engineconfig.Tier3Concurrency(), func(ctx context.Context, g threadgroup.ThreadGroup, idx int) (extractCall, error) {
			return callExtract(ctx, ec.Provider, model, effort, instructions, g.Rendered)
		})
		var totalCost float64
		for i, r := range results {
			if r.err != nil {
				failedUnits++
				continue
			}
			g := groups[i]
			totalCost += extractCost(model, g.TokenEstimate, r.value)
			for _, it := range r.value.parsed.Items {
				appendExtractionItem(itemsByDoc, it, g.ActiveIDs)
			}
		}
		return finishExtract(input, key, itemsByDoc, args, start, totalCost, failedUnits)
	}

	docs := input.Documents()
	results := runConcurrent(ctx, docs, engineconfig.Tier3Concurrency(), func(ctx context.Context, d document.Document, idx int) (extractCall, error) {
		return callExtract(ctx, ec.Provider, model, effort, instructions, renderMessage(d))
	})
	var totalCost float64
	for i, r := range results {
		if r.err != nil {
			failedUnits++
			continue
		}
		d := docs[i]
		totalCost += extractCost(model, tokencount.Estimate(model, d.Text), r.value)
		allowed := map[string]bool{d.ID: true}
		for _, it := range r.value.parsed.Items {
			appendExtractionItem(itemsByDoc, it, allowed)
		}
	}
	return finishExtract(input, key, itemsByDoc, args, start, totalCost, failedUnits)
}

// appendExtractionItem drops items with invalid spans (§4.5) and items
// whose message_id does not belong to the unit's allowed document set,
// then files the rest under their message_id.
func appendExtractionItem(itemsByDoc map[string][]label.ExtractionItem, it extractItemWire, allowed map[string]bool) {
	if !allowed[it.MessageID] {
		return
	}
	var span *label.Span
	if it.Span != nil {
		s := label.Span{Start: it.Span.Start, End: it.Span.End}
		if !s.Valid() {
			return
		}
		span = &s
	}
	itemsByDoc[it.MessageID] = append(itemsByDoc[it.MessageID], label.ExtractionItem{
		MessageID:  it.MessageID,
		Field:      it.Field,
		Value:      it.Value,
		Span:       span,
		Confidence: it.Confidence,
		Context:    it.Context,
	})
}

func finishExtract(input docset.DocSet, key string, itemsByDoc map[string][]label.ExtractionItem, args map[string]interface{}, start time.Time, totalCost float64, failedUnits int) (operator.Result, error) {
	labels := make(map[string]label.Map, input.Len())
	for id, m := range input.LabelMap() {
		labels[id] = m
	}
	for docID, items := range itemsByDoc {
		cur := labels[docID].Clone()
		cur.Set(key, label.NewExtraction(items))
		labels[docID] = cur
	}

	out := input.WithLabels(labels)
	out = out.WithAudit(docset.AuditEntry{
		Op:          "extract",
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

type extractCall struct {
	parsed *extractResponse
	usage  *provider.Usage
}

func callExtract(ctx context.Context, p provider.Provider, model, effort, instructions, input string) (extractCall, error) {
	resp, err := p.GenerateStructured(ctx, provider.Request{
		Model:           model,
		Instructions:    instructions,
		Input:           input,
		ReasoningEffort: effort,
		JSONSchema:      extractResponseSchema,
		Timeout:         30 * time.Second,
	})
	if err != nil {
		return extractCall{}, err
	}
	var parsed extractResponse
	if err := json.Unmarshal([]byte(resp.OutputText), &parsed); err != nil {
		return extractCall{}, fmt.Errorf("extract: unparseable response: %w", err)
	}
	return extractCall{parsed: &parsed, usage: resp.Usage}, nil
}

func extractCost(model string, inputTokenEstimate int, call extractCall) float64 {
	table := engineconfig.PriceTable()
	if call.usage != nil {
		return table.Cost(model, call.usage.InputTokens, call.usage.OutputTokens)
	}
	return table.Cost(model, inputTokenEstimate, defaultOutputTokenEstimate)
}
