// Package plan defines the typed Plan/PlanStep the planner emits and the
// executor consumes (spec §4.6, §4.7), grounded on
// program.LLMTextCompletionProgram's "parse model JSON into a typed Go
// struct" pattern and schema.QueryBundle's flat input/output value type.
package plan

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Step is one operation in a Plan: an operator name, its JSON-encoded
// arguments, an optional stable id, and an optional input reference.
//
// Args is kept as a raw JSON string per §6 ("each step's arguments are
// emitted as a JSON-encoded string to survive schema validation, then
// parsed by the caller") and decoded lazily by DecodeArgs. The wire field
// is named args_json, matching the Plan DSL interface exactly.
//
// Input is either the empty string (previous step), "corpus", a single id,
// or a comma-separated list of ids (§6); InputIDs normalizes it.
type Step struct {
	ID    string `json:"id,omitempty"`
	Op    string `json:"op"`
	Args  string `json:"args_json"`
	Input string `json:"input,omitempty"`
}

// DecodeArgs parses Step.Args into a generic map for operator dispatch. An
// empty Args string decodes to an empty map rather than an error.
func (s Step) DecodeArgs() (map[string]interface{}, error) {
	if s.Args == "" {
		return map[string]interface{}{}, nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(s.Args), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InputIDs normalizes the Input field into a list of referenced step ids.
// An empty Input yields (nil, false, false); the literal "corpus" yields
// nil with isCorpus set; a single id yields a one-element list; a
// comma-separated list splits into its members with isList set (§6).
func (s Step) InputIDs() (ids []string, isCorpus bool, isList bool) {
	v := strings.TrimSpace(s.Input)
	switch {
	case v == "":
		return nil, false, false
	case v == "corpus":
		return nil, true, false
	case strings.Contains(v, ","):
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, false, true
	default:
		return []string{v}, false, false
	}
}

// Plan is the planner's output: an interpretation of the query plus an
// ordered list of steps (§4.6).
type Plan struct {
	QueryInterpretation string  `json:"query_interpretation"`
	Steps               []Step  `json:"steps"`
	TotalEstimatedCost  float64 `json:"total_estimated_cost"`
	ReasoningSummary    string  `json:"reasoning_summary"`
}

// Error is a fatal plan-resolution error (§4.7's fatal classes: unknown
// operator, missing/forward input reference, duplicate step key, budget
// exceeded).
type Error struct {
	StepIndex int
	StepID    string
	Reason    string
}

func (e *Error) Error() string {
	if e.StepID != "" {
		return "plan: step " + e.StepID + ": " + e.Reason
	}
	return "plan: step " + strconv.Itoa(e.StepIndex) + ": " + e.Reason
}
