// Command queryengine runs a single natural-language query against a
// corpus file (JSON array of documents): plan, execute, and synthesize an
// answer in one shot. It is a thin harness over the library packages; the
// HTTP/interactive surface is out of scope (spec §1).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/coquery/budget"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/executor"
	"github.com/aqua777/coquery/internal/engineconfig"
	"github.com/aqua777/coquery/operator"
	"github.com/aqua777/coquery/planner"
	"github.com/aqua777/coquery/provider"
	"github.com/aqua777/coquery/synthesizer"
	"github.com/aqua777/coquery/tier1"
	"github.com/aqua777/coquery/tier3"
)

func main() {
	var (
		corpusPath   = flag.String("corpus", "", "path to a JSON array of documents")
		queryText    = flag.String("query", "", "natural language query")
		budgetLimit  = flag.Float64("budget", engineconfig.DefaultBudgetLimitUSD, "per-query budget ceiling in USD")
		priceTable   = flag.String("price-table", "", "optional YAML price table path, overrides the built-in default")
		providerName = flag.String("provider", "openai", "LLM provider: openai | bedrock")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if *corpusPath == "" || *queryText == "" {
		fmt.Fprintln(os.Stderr, "usage: queryengine -corpus docs.json -query \"...\"")
		os.Exit(2)
	}

	if *priceTable != "" {
		if err := engineconfig.LoadPriceTableFile(*priceTable); err != nil {
			logger.Error("failed to load price table", "error", err)
			os.Exit(1)
		}
	}

	corpus, err := loadCorpus(*corpusPath)
	if err != nil {
		logger.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}

	p, err := newProvider(*providerName, logger)
	if err != nil {
		logger.Error("failed to configure provider", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	summary := planner.Summarize(corpus, hasToneAnalysis(corpus))
	plannedPlan, err := planner.Plan(ctx, p, *queryText, summary)
	if err != nil {
		logger.Error("planning failed", "error", err)
		os.Exit(1)
	}
	logger.Info("plan produced", "interpretation", plannedPlan.QueryInterpretation, "steps", len(plannedPlan.Steps))

	reg := operator.NewRegistry()
	tier1.Register(reg)
	tier3.Register(reg)

	ex := executor.New(reg, corpus, executor.WithProvider(p), executor.WithLogger(logger))
	bgt := budget.New(*budgetLimit)
	execRes := ex.Run(ctx, plannedPlan, bgt)
	if execRes.Error != nil {
		logger.Warn("plan stopped early", "error", execRes.Error)
	}
	logger.Info("execution complete", "result_count", execRes.FinalDocSet.Len(), "total_cost_usd", execRes.TotalCost)

	synthRes, err := synthesizer.Synthesize(ctx, p, *queryText, execRes, corpus)
	if err != nil {
		logger.Error("synthesis failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(synthRes, "", "  ")
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func hasToneAnalysis(_ *document.Corpus) bool {
	return false
}

func loadCorpus(path string) (*document.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []document.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return document.NewCorpus(docs), nil
}

func newProvider(name string, logger *slog.Logger) (provider.Provider, error) {
	switch name {
	case "bedrock":
		return provider.NewBedrock(), nil
	case "openai":
		return provider.NewOpenAI(os.Getenv("OPENAI_API_KEY"), provider.WithOpenAILogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
