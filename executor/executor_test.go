package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/coquery/budget"
	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/operator"
	"github.com/aqua777/coquery/plan"
	"github.com/aqua777/coquery/provider"
	"github.com/aqua777/coquery/tier1"
	"github.com/aqua777/coquery/tier3"
)

func mkCorpus(t *testing.T) *document.Corpus {
	t.Helper()
	ts := func(s string) time.Time {
		tm, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return tm
	}
	docs := []document.Document{
		{ID: "d1", Timestamp: ts("2024-01-01T10:00:00Z"), Text: "hello", Metadata: document.Metadata{Sender: "Alice", ThreadID: "t1", WordCount: 1}},
		{ID: "d2", Timestamp: ts("2024-01-01T11:00:00Z"), Text: "world", Metadata: document.Metadata{Sender: "Bob", ThreadID: "t1", WordCount: 1}},
	}
	return document.NewCorpus(docs)
}

func newRegistry() *operator.Registry {
	reg := operator.NewRegistry()
	tier1.Register(reg)
	return reg
}

func TestRunLinearPlanNoInputFieldsChainsPreviousOutput(t *testing.T) {
	corpus := mkCorpus(t)
	ex := New(newRegistry(), corpus)
	p := plan.Plan{Steps: []plan.Step{
		{Op: "filter_metadata", Args: `{"sender":"alice"}`},
		{Op: "top_k", Args: `{"k":1,"by":"relevance"}`},
	}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.NoError(t, res.Error)
	assert.False(t, res.StoppedEarly)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, 1, res.FinalDocSet.Len())
	assert.Equal(t, "d1", res.FinalDocSet.Documents()[0].ID)
}

func TestRunUnknownOperatorIsFatal(t *testing.T) {
	corpus := mkCorpus(t)
	ex := New(newRegistry(), corpus)
	p := plan.Plan{Steps: []plan.Step{{Op: "not_a_real_op", Args: "{}"}}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.Error(t, res.Error)
	assert.True(t, res.StoppedEarly)
	assert.Equal(t, corpus.Len(), res.FinalDocSet.Len())
}

func TestRunNonFatalStepPassesThroughAndContinues(t *testing.T) {
	corpus := mkCorpus(t)
	ex := New(newRegistry(), corpus)
	p := plan.Plan{Steps: []plan.Step{
		{Op: "search_regex", Args: `{"pattern":"("}`},
		{Op: "top_k", Args: `{"k":1,"by":"relevance"}`},
	}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.NoError(t, res.Error)
	assert.False(t, res.StoppedEarly)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, "error", res.Trace[0].Status)
	assert.Equal(t, "ok", res.Trace[1].Status)
	assert.Equal(t, 1, res.FinalDocSet.Len())
}

func TestRunForwardReferenceIsFatal(t *testing.T) {
	corpus := mkCorpus(t)
	ex := New(newRegistry(), corpus)
	p := plan.Plan{Steps: []plan.Step{
		{ID: "a", Op: "filter_metadata", Args: "{}", Input: "b"},
		{ID: "b", Op: "filter_metadata", Args: "{}"},
	}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.Error(t, res.Error)
	assert.True(t, res.StoppedEarly)
}

func TestRunInputCorpusBypassesNarrowing(t *testing.T) {
	corpus := mkCorpus(t)
	ex := New(newRegistry(), corpus)
	p := plan.Plan{Steps: []plan.Step{
		{ID: "narrow", Op: "filter_metadata", Args: `{"sender":"alice"}`},
		{Op: "filter_metadata", Args: "{}", Input: "corpus"},
	}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.NoError(t, res.Error)
	assert.Equal(t, corpus.Len(), res.FinalDocSet.Len())
}

func TestRunIntersectInputList(t *testing.T) {
	corpus := mkCorpus(t)
	ex := New(newRegistry(), corpus)
	p := plan.Plan{Steps: []plan.Step{
		{ID: "alice", Op: "filter_metadata", Args: `{"sender":"alice"}`, Input: "corpus"},
		{ID: "bob", Op: "filter_metadata", Args: `{"sender":"bob"}`, Input: "corpus"},
		{Op: "intersect", Args: "{}", Input: "alice,bob"},
	}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.NoError(t, res.Error)
	assert.Equal(t, 0, res.FinalDocSet.Len())
}

func TestRunLabelThreadThenFilterByLabelMatches(t *testing.T) {
	ts := func(s string) time.Time {
		tm, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return tm
	}
	docs := []document.Document{
		{ID: "d1", Timestamp: ts("2024-01-01T10:00:00Z"), Text: "you owe me $200 for daycare", Metadata: document.Metadata{Sender: "Alice", ThreadID: "t1", WordCount: 6}},
		{ID: "d2", Timestamp: ts("2024-01-01T11:00:00Z"), Text: "I already paid half", Metadata: document.Metadata{Sender: "Bob", ThreadID: "t1", WordCount: 4}},
	}
	corpus := document.NewCorpus(docs)

	reg := operator.NewRegistry()
	tier1.Register(reg)
	tier3.Register(reg)

	mock := provider.NewMock(`{"label":"expense disagreement","matches":true,"confidence":0.82,"rationale":"dispute over daycare cost","cited_messages":["d1"]}`)
	ex := New(reg, corpus, WithProvider(mock))

	p := plan.Plan{Steps: []plan.Step{
		{ID: "labeled", Op: "label", Args: `{"schema":"Does this thread contain an expense disagreement over $200?","unit":"thread"}`},
		{Op: "filter_by_label", Args: `{"condition":"matches == true AND confidence > 0.6"}`},
	}}
	res := ex.Run(context.Background(), p, budget.New(5.0))
	require.NoError(t, res.Error)
	assert.False(t, res.StoppedEarly)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, 2, res.FinalDocSet.Len())
}

func TestRunBudgetExceededStopsEarly(t *testing.T) {
	corpus := mkCorpus(t)
	reg := operator.NewRegistry()
	reg.Register("expensive", operator.Tier3, func(ctx context.Context, input docset.DocSet, args map[string]interface{}, ec operator.ExecContext) (operator.Result, error) {
		return operator.Result{DocSet: input, Meta: operator.OpMeta{CostUSD: 100}}, nil
	})
	ex := New(reg, corpus)
	p := plan.Plan{Steps: []plan.Step{{Op: "expensive", Args: "{}"}}}
	res := ex.Run(context.Background(), p, budget.New(1.0))
	require.Error(t, res.Error)
	assert.True(t, res.StoppedEarly)
}
