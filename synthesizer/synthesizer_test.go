package synthesizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
	"github.com/aqua777/coquery/executor"
	"github.com/aqua777/coquery/provider"
)

func mkCorpus(t *testing.T) *document.Corpus {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2024-01-01T10:00:00Z")
	require.NoError(t, err)
	docs := []document.Document{
		{ID: "d1", Timestamp: ts, Text: "you never help with pickup", Metadata: document.Metadata{Sender: "Alice", ThreadID: "t1", MessageNumber: 1}},
	}
	return document.NewCorpus(docs)
}

func TestSynthesizeParsesStructuredResponse(t *testing.T) {
	corpus := mkCorpus(t)
	ds := docset.FromCorpus(corpus)
	execRes := executor.Result{FinalDocSet: ds, Trace: []executor.StepTrace{{Op: "label", Args: map[string]interface{}{"unit": "message"}}}}

	mock := provider.NewMock(`{"answer":"Alice raised pickup concerns in [d1].","citations":[{"doc_id":"d1"}],"thread_grouped":false}`)

	res, err := Synthesize(context.Background(), mock, "what concerns did Alice raise?", execRes, corpus)
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "[d1]")
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "d1", res.Citations[0].DocID)
	require.NotNil(t, res.Citations[0].MessageNumber)
	assert.Equal(t, 1, *res.Citations[0].MessageNumber)
	assert.False(t, res.ThreadGrouped)
}

func TestSynthesizeFallsBackOnUnparseableOutput(t *testing.T) {
	corpus := mkCorpus(t)
	ds := docset.FromCorpus(corpus)
	execRes := executor.Result{FinalDocSet: ds}

	mock := provider.NewMock("not json at all")

	res, err := Synthesize(context.Background(), mock, "query", execRes, corpus)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", res.Answer)
	assert.Empty(t, res.Citations)
}

func TestSynthesizeDetectsThreadUnitFromTrace(t *testing.T) {
	corpus := mkCorpus(t)
	ds := docset.FromCorpus(corpus)
	execRes := executor.Result{FinalDocSet: ds, Trace: []executor.StepTrace{{Op: "label", Args: map[string]interface{}{"unit": "thread"}}}}

	mock := provider.NewMock(`{"answer":"ok [d1]","citations":[{"doc_id":"d1"}],"thread_grouped":true}`)

	res, err := Synthesize(context.Background(), mock, "query", execRes, corpus)
	require.NoError(t, err)
	assert.True(t, res.ThreadGrouped)
}
