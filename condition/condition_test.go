package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/coquery/label"
)

func TestParseBareFieldSugar(t *testing.T) {
	cond, err := Parse("matches")
	require.NoError(t, err)
	require.Len(t, cond.Clauses, 1)
	assert.Equal(t, "matches", cond.Clauses[0].Field)
	assert.Equal(t, Eq, cond.Clauses[0].Cmp)
	assert.Equal(t, "true", cond.Clauses[0].Value)
}

func TestParseAndConjunction(t *testing.T) {
	cond, err := Parse("matches == true AND confidence > 0.6")
	require.NoError(t, err)
	require.Len(t, cond.Clauses, 2)
	assert.Equal(t, "matches", cond.Clauses[0].Field)
	assert.Equal(t, "confidence", cond.Clauses[1].Field)
	assert.Equal(t, Gt, cond.Clauses[1].Cmp)
	assert.Equal(t, "0.6", cond.Clauses[1].Value)
}

func TestBareFieldEquivalentToExplicitTrue(t *testing.T) {
	bare, err := Parse("matches")
	require.NoError(t, err)
	explicit, err := Parse("matches == true")
	require.NoError(t, err)

	m := label.NewMap()
	m.Set("matches", label.NewCompound(true, nil, 0.9, ""))

	assert.Equal(t, Eval(bare, m), Eval(explicit, m))
	assert.True(t, Eval(bare, m))
}

func TestConditionEvalMissingLabelExcludes(t *testing.T) {
	cond, err := Parse("tone == hostile")
	require.NoError(t, err)
	assert.False(t, Eval(cond, label.NewMap()))
}

func TestConditionEvalStringCaseInsensitive(t *testing.T) {
	cond, err := Parse("tone == Hostile")
	require.NoError(t, err)
	m := label.NewMap()
	m.Set("tone", label.NewSimple("hostile", 0.8, ""))
	assert.True(t, Eval(cond, m))
}

func TestConditionEvalNumericOrdering(t *testing.T) {
	cond, err := Parse("confidence >= 0.5")
	require.NoError(t, err)
	m := label.NewMap()
	m.Set("tone", label.NewSimple("hostile", 0.75, ""))
	assert.True(t, Eval(cond, m))

	low := label.NewMap()
	low.Set("tone", label.NewSimple("hostile", 0.2, ""))
	assert.False(t, Eval(cond, low))
}

func TestConditionEvalMatchesFallsBackToFirstEntryForCustomSchemaKey(t *testing.T) {
	// Custom schemas collapse to the fixed "label" key (§4.5), not "matches";
	// a bare "matches" clause must still resolve against that entry's
	// boolean verdict.
	cond, err := Parse(`matches == true AND confidence > 0.6`)
	require.NoError(t, err)

	m := label.NewMap()
	m.Set("label", label.NewCompound(true, map[string]interface{}{"label": "expense disagreement"}, 0.82, "dispute over daycare cost"))
	assert.True(t, Eval(cond, m))

	low := label.NewMap()
	low.Set("label", label.NewCompound(true, nil, 0.4, ""))
	assert.False(t, Eval(cond, low))

	notMatching := label.NewMap()
	notMatching.Set("label", label.NewCompound(false, nil, 0.9, ""))
	assert.False(t, Eval(cond, notMatching))
}

func TestConditionEvalLabelAndValueTokensResolveFirstEntry(t *testing.T) {
	cond, err := Parse("label == urgent")
	require.NoError(t, err)
	m := label.NewMap()
	m.Set("label", label.NewSimple("urgent", 0.9, ""))
	assert.True(t, Eval(cond, m))
}
