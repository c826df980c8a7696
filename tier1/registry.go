package tier1

import "github.com/aqua777/coquery/operator"

// Register installs every Tier-1 operator (§4.3) into reg under its spec
// name. union/intersect are registered too (both tier 1, zero cost): the
// executor merges their multiple inputs during input resolution and then
// dispatches them through operator.Func like any other step, where they
// pass the merged DocSet through (see structural.go; §4.2, §4.7).
func Register(reg *operator.Registry) {
	reg.Register("filter_metadata", operator.Tier1, FilterMetadata)
	reg.Register("search_lex", operator.Tier1, SearchLex)
	reg.Register("search_regex", operator.Tier1, SearchRegex)
	reg.Register("top_k", operator.Tier1, TopK)
	reg.Register("sample", operator.Tier1, Sample)
	reg.Register("get_context", operator.Tier1, GetContext)
	reg.Register("count", operator.Tier1, Count)
	reg.Register("trend", operator.Tier1, Trend)
	reg.Register("filter_by_label", operator.Tier1, FilterByLabel)
	reg.Register("union", operator.Tier1, Union)
	reg.Register("intersect", operator.Tier1, Intersect)
}
