package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostKnownModel(t *testing.T) {
	tbl := DefaultTable()
	cost := tbl.Cost("gpt-4o-mini", 1_000_000, 1_000_000)
	assert.InDelta(t, 0.75, cost, 1e-9)
}

func TestCostUnknownModelIsZero(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, 0.0, tbl.Cost("unlisted-model", 1000, 1000))
}
