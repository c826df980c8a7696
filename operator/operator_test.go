package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/coquery/docset"
)

func noop(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec ExecContext) (Result, error) {
	return Result{DocSet: input}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("top_k", Tier1, noop)

	fn, tier, ok := r.Lookup("top_k")
	require.True(t, ok)
	assert.Equal(t, Tier1, tier)
	assert.NotNil(t, fn)

	_, _, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegisterOverwritesExistingName(t *testing.T) {
	r := NewRegistry()
	r.Register("label", Tier1, noop)
	r.Register("label", Tier3, noop)

	_, tier, ok := r.Lookup("label")
	require.True(t, ok)
	assert.Equal(t, Tier3, tier)
}

func TestNamesListsEveryRegisteredOperator(t *testing.T) {
	r := NewRegistry()
	r.Register("a", Tier1, noop)
	r.Register("b", Tier3, noop)
	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}

func TestErrUnknownOperatorMessage(t *testing.T) {
	err := &ErrUnknownOperator{Op: "not_real"}
	assert.Contains(t, err.Error(), "not_real")
}
