// Package engineconfig holds process-wide defaults for the query engine:
// the default budget ceiling, the Tier-3 fan-out concurrency cap, and the
// price table. Grounded on settings.settings (package-level global guarded
// by sync.RWMutex, Set*/Get* pairs) and cli/config.go's plain-const key
// naming. The HTTP/CLI layer that would populate these from flags or env
// vars is out of core scope (spec §1); this package is what that layer
// would write into.
package engineconfig

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aqua777/coquery/pricing"
)

// Default configuration values.
const (
	DefaultBudgetLimitUSD  = 5.00
	DefaultTier3Concurrency = 10
	DefaultSynthesisDocCap  = 40
)

// Config keys, named the way cli/config.go names its krait keys.
const (
	KeyBudgetLimitUSD     = "budget.limit-usd"
	KeyTier3Concurrency   = "tier3.concurrency"
	KeySynthesisDocCap    = "synthesis.doc-cap"
	KeyPriceTablePath     = "pricing.table-path"
)

var (
	mu                sync.RWMutex
	budgetLimitUSD    = DefaultBudgetLimitUSD
	tier3Concurrency  = DefaultTier3Concurrency
	synthesisDocCap   = DefaultSynthesisDocCap
	priceTable        = pricing.DefaultTable()
)

// SetBudgetLimitUSD sets the process-wide default budget ceiling.
func SetBudgetLimitUSD(v float64) {
	mu.Lock()
	defer mu.Unlock()
	budgetLimitUSD = v
}

// BudgetLimitUSD returns the process-wide default budget ceiling.
func BudgetLimitUSD() float64 {
	mu.RLock()
	defer mu.RUnlock()
	return budgetLimitUSD
}

// SetTier3Concurrency sets the Tier-3 fan-out concurrency cap.
func SetTier3Concurrency(v int) {
	mu.Lock()
	defer mu.Unlock()
	tier3Concurrency = v
}

// Tier3Concurrency returns the Tier-3 fan-out concurrency cap (default 10
// per §5).
func Tier3Concurrency() int {
	mu.RLock()
	defer mu.RUnlock()
	return tier3Concurrency
}

// SetSynthesisDocCap sets the synthesizer's prompt document cap.
func SetSynthesisDocCap(v int) {
	mu.Lock()
	defer mu.Unlock()
	synthesisDocCap = v
}

// SynthesisDocCap returns the synthesizer's prompt document cap (§4.8).
func SynthesisDocCap() int {
	mu.RLock()
	defer mu.RUnlock()
	return synthesisDocCap
}

// SetPriceTable replaces the process-wide price table.
func SetPriceTable(t pricing.Table) {
	mu.Lock()
	defer mu.Unlock()
	priceTable = t
}

// PriceTable returns the process-wide price table.
func PriceTable() pricing.Table {
	mu.RLock()
	defer mu.RUnlock()
	return priceTable
}

// LoadPriceTableFile loads a YAML-encoded price table (model -> rates) from
// path and installs it as the process-wide table.
func LoadPriceTableFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var t pricing.Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return err
	}
	SetPriceTable(t)
	return nil
}
