package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetBudgetLimitRoundTrips(t *testing.T) {
	orig := BudgetLimitUSD()
	defer SetBudgetLimitUSD(orig)

	SetBudgetLimitUSD(9.5)
	assert.Equal(t, 9.5, BudgetLimitUSD())
}

func TestSetGetTier3Concurrency(t *testing.T) {
	orig := Tier3Concurrency()
	defer SetTier3Concurrency(orig)

	SetTier3Concurrency(4)
	assert.Equal(t, 4, Tier3Concurrency())
}

func TestLoadPriceTableFileInstallsTable(t *testing.T) {
	orig := PriceTable()
	defer SetPriceTable(orig)

	dir := t.TempDir()
	path := filepath.Join(dir, "prices.yaml")
	yamlContent := "custom-model:\n  inputusdpertoken: 0.001\n  outputusdpertoken: 0.002\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	require.NoError(t, LoadPriceTableFile(path))

	tbl := PriceTable()
	rates, ok := tbl["custom-model"]
	require.True(t, ok)
	assert.InDelta(t, 0.001, rates.InputUSDPerToken, 1e-9)
}

func TestLoadPriceTableFileMissingPathErrors(t *testing.T) {
	err := LoadPriceTableFile("/nonexistent/path/prices.yaml")
	assert.Error(t, err)
}
