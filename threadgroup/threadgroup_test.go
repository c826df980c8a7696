package threadgroup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/coquery/docset"
	"github.com/aqua777/coquery/document"
)

func TestGroupHydratesFullThreadFromCorpus(t *testing.T) {
	ts := func(s string) time.Time {
		tm, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return tm
	}
	docs := []document.Document{
		{ID: "d1", Timestamp: ts("2024-01-01T10:00:00Z"), Text: "hi", Metadata: document.Metadata{Sender: "Alice", ThreadID: "t1"}},
		{ID: "d2", Timestamp: ts("2024-01-01T11:00:00Z"), Text: "hey back", Metadata: document.Metadata{Sender: "Bob", ThreadID: "t1"}},
		{ID: "d3", Timestamp: ts("2024-01-01T12:00:00Z"), Text: "unrelated", Metadata: document.Metadata{Sender: "Carl", ThreadID: "t2"}},
	}
	corpus := document.NewCorpus(docs)
	narrowed := docset.FromCorpus(corpus).Filter(func(d document.Document) bool { return d.ID == "d1" })

	groups := Group(narrowed, corpus)
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "t1", g.ThreadID)
	require.Len(t, g.Messages, 2)
	assert.Equal(t, "d1", g.Messages[0].ID)
	assert.Equal(t, "d2", g.Messages[1].ID)
	assert.True(t, g.ActiveIDs["d1"])
	assert.False(t, g.ActiveIDs["d2"])
	assert.Greater(t, g.TokenEstimate, 0)
	assert.Contains(t, g.Rendered, "[d1] Alice")
	assert.Contains(t, g.Rendered, "[d2] Bob")
	assert.Contains(t, g.Rendered, "THREAD: t1 (2 messages)")
	assert.Contains(t, g.Rendered, "────")
}
