// Package label implements the Label sum type attached to documents by
// classification and extraction operators (spec §3, Design Notes "Label
// polymorphism").
package label

import (
	"encoding/json"
	"fmt"
)

// Kind tags which variant of Label.Value is populated.
type Kind string

const (
	// KindSimple is a plain string classification (e.g. tone, topic).
	KindSimple Kind = "simple"
	// KindCompound is a boolean verdict plus a free-form details object,
	// used by custom natural-language schemas.
	KindCompound Kind = "compound"
	// KindExtraction is a list of extraction items.
	KindExtraction Kind = "extraction"
)

// ExtractionItem is one item returned by the extract operator (§4.5).
type ExtractionItem struct {
	MessageID  string  `json:"message_id"`
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Span       *Span   `json:"span,omitempty"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

// Span is a character range into a document's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the span is a well-formed, non-empty range.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End > s.Start
}

// ThreadMeta is attached to a label that originated from a thread-level
// Tier-3 operation (§3).
type ThreadMeta struct {
	Unit           string   `json:"unit"` // always "thread"
	ThreadID       string   `json:"thread_id"`
	CitedMessages  []string `json:"cited_messages"`
}

// Label is a classification or extraction result attached to a document.
// It carries exactly one of the three variants, selected by Kind.
type Label struct {
	Kind Kind

	// populated when Kind == KindSimple
	stringValue string

	// populated when Kind == KindCompound
	boolValue bool
	details   map[string]interface{}

	// populated when Kind == KindExtraction
	items []ExtractionItem

	Confidence float64
	Rationale  string
	Spans      []Span
	ThreadMeta *ThreadMeta
}

// NewSimple builds a string-valued label.
func NewSimple(value string, confidence float64, rationale string) Label {
	return Label{Kind: KindSimple, stringValue: value, Confidence: confidence, Rationale: rationale}
}

// NewCompound builds a boolean+details label (custom schemas).
func NewCompound(matches bool, details map[string]interface{}, confidence float64, rationale string) Label {
	return Label{Kind: KindCompound, boolValue: matches, details: details, Confidence: confidence, Rationale: rationale}
}

// NewExtraction builds an extraction-items label. Confidence is the
// arithmetic mean of the item confidences per §4.5.
func NewExtraction(items []ExtractionItem) Label {
	var sum float64
	for _, it := range items {
		sum += it.Confidence
	}
	conf := 0.0
	if len(items) > 0 {
		conf = sum / float64(len(items))
	}
	return Label{Kind: KindExtraction, items: items, Confidence: conf}
}

// AsString returns the string value. For non-simple labels it falls back to
// a JSON rendering of the underlying value, mirroring
// program.ProgramOutput.GetParsedAs's "try direct, else marshal" fallback.
func (l Label) AsString() string {
	switch l.Kind {
	case KindSimple:
		return l.stringValue
	case KindCompound:
		data, _ := json.Marshal(map[string]interface{}{"matches": l.boolValue, "details": l.details})
		return string(data)
	case KindExtraction:
		data, _ := json.Marshal(l.items)
		return string(data)
	default:
		return ""
	}
}

// AsBool returns the compound boolean value, and whether Kind is compound.
func (l Label) AsBool() (bool, bool) {
	if l.Kind != KindCompound {
		return false, false
	}
	return l.boolValue, true
}

// Details returns the compound details map, if any.
func (l Label) Details() map[string]interface{} {
	return l.details
}

// AsItems returns the extraction items, if any.
func (l Label) AsItems() []ExtractionItem {
	return l.items
}

// String implements fmt.Stringer for debugging/logging.
func (l Label) String() string {
	return fmt.Sprintf("Label{kind=%s value=%q confidence=%.2f}", l.Kind, l.AsString(), l.Confidence)
}

// Map is the per-document label map keyed by schema name ("tone", "topic",
// "label" for generic custom schemas, "extract:<schema>" for extractions).
// Insertion order is preserved so that filter_by_label's "first label
// entry" field resolution (§4.3) is well defined rather than depending on
// Go's unordered map iteration.
type Map struct {
	keys   []string
	values map[string]Label
}

// NewMap returns an empty, ready-to-use label Map.
func NewMap() Map {
	return Map{values: make(map[string]Label)}
}

// Set attaches or replaces the label stored under key, appending key to the
// insertion order the first time it is used.
func (m *Map) Set(key string, l Label) {
	if m.values == nil {
		m.values = make(map[string]Label)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = l
}

// Get returns the label stored under key.
func (m Map) Get(key string) (Label, bool) {
	if m.values == nil {
		return Label{}, false
	}
	l, ok := m.values[key]
	return l, ok
}

// Keys returns the label keys in insertion order.
func (m Map) Keys() []string {
	return m.keys
}

// Len returns the number of labels in the map.
func (m Map) Len() int {
	return len(m.keys)
}

// First returns the first-inserted label key/value pair, and whether the
// map has any labels at all.
func (m Map) First() (string, Label, bool) {
	if len(m.keys) == 0 {
		return "", Label{}, false
	}
	k := m.keys[0]
	return k, m.values[k], true
}

// Clone returns a shallow copy of the map (labels themselves are immutable
// values, so a shallow copy satisfies DocSet.withLabels's "shallow
// snapshot" contract from §4.1).
func (m Map) Clone() Map {
	if m.values == nil {
		return Map{}
	}
	out := Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Label, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}
