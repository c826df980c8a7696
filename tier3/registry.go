package tier3

import "github.com/aqua777/coquery/operator"

// Register installs the Tier-3 LLM-backed operators (§4.5) into reg.
func Register(reg *operator.Registry) {
	reg.Register("label", operator.Tier3, Label)
	reg.Register("extract", operator.Tier3, Extract)
}
