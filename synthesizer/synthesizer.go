// Package synthesizer produces the final Markdown answer and citation list
// for a finished plan execution (spec §4.8), grounded on
// rag/synthesizer.CompactAndRefineSynthesizer's "render sources, call the
// LLM once, prepare a typed response" shape and Response.GetFormattedSources's
// citation rendering.
package synthesizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/executor"
	"github.com/aqua777/coquery/internal/engineconfig"
	"github.com/aqua777/coquery/internal/preview"
	"github.com/aqua777/coquery/provider"
	"github.com/aqua777/coquery/threadgroup"
)

// previewLength bounds each citation's text preview (characters).
const previewLength = 240

// Citation is one cited document in the synthesized answer (§4.8).
type Citation struct {
	DocID         string `json:"doc_id"`
	MessageNumber *int   `json:"message_number,omitempty"`
	Preview       string `json:"preview"`
	ThreadID      string `json:"thread_id,omitempty"`
}

// Result is the synthesizer's output (§4.8).
type Result struct {
	Answer        string            `json:"answer"`
	Citations     []Citation        `json:"citations"`
	ThreadGrouped bool              `json:"thread_grouped"`
	Usage         *provider.Usage   `json:"usage,omitempty"`
}

var responseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"answer": map[string]interface{}{"type": "string"},
		"citations": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"doc_id":     map[string]interface{}{"type": "string"},
					"thread_id":  map[string]interface{}{"type": "string"},
					"cited_note": map[string]interface{}{"type": "string"},
				},
				"required": []string{"doc_id"},
			},
		},
		"thread_grouped": map[string]interface{}{"type": "boolean"},
	},
	"required": []string{"answer"},
}

type wireCitation struct {
	DocID    string `json:"doc_id"`
	ThreadID string `json:"thread_id"`
}

type wireResponse struct {
	Answer        string         `json:"answer"`
	Citations     []wireCitation `json:"citations"`
	ThreadGrouped bool           `json:"thread_grouped"`
}

// Synthesize turns a finished executor.Result into a final answer, calling
// the provider once with the (capped) final DocSet rendered as prompt
// context. thread_grouped presentation is used whenever any step in the
// trace ran a thread-unit Tier-3 label/extract operator.
func Synthesize(ctx context.Context, p provider.Provider, query string, execRes executor.Result, corpus *document.Corpus) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("synthesizer: no provider configured")
	}

	threadGrouped := tracedThreadUnit(execRes.Trace)
	docs := execRes.FinalDocSet.Documents()
	capped := docs
	docCap := engineconfig.SynthesisDocCap()
	if len(capped) > docCap {
		capped = capped[:docCap]
	}

	var renderedContext string
	if threadGrouped {
		groups := threadgroup.Group(docset.New(capped, execRes.FinalDocSet.LabelMap(), nil), corpus)
		renderedContext = renderGroups(groups)
	} else {
		renderedContext = renderFlat(capped)
	}

	input := fmt.Sprintf("Query: %s\n\nDocuments:\n%s", query, renderedContext)

	resp, err := p.GenerateStructured(ctx, provider.Request{
		Model:           "gpt-4o",
		Instructions:    synthInstructions,
		Input:           input,
		ReasoningEffort: "medium",
		JSONSchema:      responseSchema,
		Timeout:         60 * time.Second,
	})
	if err != nil {
		return Result{}, fmt.Errorf("synthesizer: generate: %w", err)
	}

	var parsed wireResponse
	if jsonErr := json.Unmarshal([]byte(resp.OutputText), &parsed); jsonErr != nil {
		// Fallback (§4.8): unparseable model output becomes the raw answer
		// with no citations, preserving usage.
		return Result{Answer: resp.OutputText, Citations: nil, ThreadGrouped: threadGrouped, Usage: resp.Usage}, nil
	}

	citations := make([]Citation, 0, len(parsed.Citations))
	for _, c := range parsed.Citations {
		d, ok := corpus.Get(c.DocID)
		if !ok {
			continue
		}
		var msgNum *int
		if d.Metadata.MessageNumber != 0 {
			n := d.Metadata.MessageNumber
			msgNum = &n
		}
		citations = append(citations, Citation{
			DocID:         d.ID,
			MessageNumber: msgNum,
			Preview:       preview.Truncate(d.Text, previewLength),
			ThreadID:      d.Metadata.ThreadID,
		})
	}

	return Result{
		Answer:        parsed.Answer,
		Citations:     citations,
		ThreadGrouped: threadGrouped,
		Usage:         resp.Usage,
	}, nil
}

const synthInstructions = `You are answering a question about a bounded corpus of co-parenting conversation documents. Rules:
- Every factual claim must carry at least one [doc-id] citation.
- Qualify low-confidence classifications rather than asserting them as fact.
- If the evidence was classified at thread level, present it thread-by-thread, citing only the messages the classifier identified.
- If the evidence was classified at message level, present it as a flat list.
Respond with JSON: {"answer": string (Markdown), "citations": [{"doc_id": string, "thread_id"?: string}...], "thread_grouped": bool}.`

func tracedThreadUnit(trace []executor.StepTrace) bool {
	for _, t := range trace {
		if t.Op != "label" && t.Op != "extract" {
			continue
		}
		if unit, ok := t.Args["unit"]; ok {
			if s, ok := unit.(string); ok && s == "thread" {
				return true
			}
		}
	}
	return false
}

func renderGroups(groups []threadgroup.ThreadGroup) string {
	out := ""
	for _, g := range groups {
		out += g.Rendered + "\n\n"
	}
	return out
}

func renderFlat(docs []document.Document) string {
	sorted := make([]document.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	out := ""
	for _, d := range sorted {
		out += fmt.Sprintf("[%s] %s — %s\n%s\n\n", d.ID, d.Metadata.Sender, d.Timestamp.UTC().Format(time.RFC3339), d.Text)
	}
	return out
}
