package tier3

import "strings"

// wellKnownTags are the schema names with a dedicated, pre-agreed label key
// and a routed-to-cheap-model policy (§4.5).
var wellKnownTags = map[string]bool{"tone": true, "topic": true}

// labelKeyFor derives the label-map key a given schema writes under: a
// well-known tag uses itself; every custom/free-form schema collapses to
// the fixed key "label" (§4.5).
func labelKeyFor(schema string) string {
	if wellKnownTags[strings.ToLower(schema)] {
		return strings.ToLower(schema)
	}
	return "label"
}

// Model/effort routing policy: well-known schemas are cheap classification
// tasks and route to the cheaper model at low effort; custom natural
// language schemas may require more reasoning and route to the stronger
// model at medium effort.
const (
	cheapModel    = "gpt-4o-mini"
	strongModel   = "gpt-4o"
	cheapEffort   = "low"
	strongEffort  = "medium"
)

func modelFor(schema string) (model, effort string) {
	if wellKnownTags[strings.ToLower(schema)] {
		return cheapModel, cheapEffort
	}
	return strongModel, strongEffort
}
