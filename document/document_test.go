package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkDoc(id, threadID string) Document {
	return Document{ID: id, Timestamp: time.Now(), Text: "hi", Metadata: Metadata{ThreadID: threadID}}
}

func TestNewCorpusIgnoresDuplicateIDs(t *testing.T) {
	docs := []Document{mkDoc("d1", "t1"), mkDoc("d1", "t1"), mkDoc("d2", "t1")}
	c := NewCorpus(docs)
	assert.Equal(t, 2, c.Len())
}

func TestCorpusGetAndThreadOf(t *testing.T) {
	c := NewCorpus([]Document{mkDoc("d1", "t1"), mkDoc("d2", "t1"), mkDoc("d3", "")})

	d, ok := c.Get("d1")
	require.True(t, ok)
	assert.Equal(t, "d1", d.ID)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	tid, ok := c.ThreadOf("d1")
	require.True(t, ok)
	assert.Equal(t, "t1", tid)

	_, ok = c.ThreadOf("missing")
	assert.False(t, ok)
}

func TestCorpusThreadReturnsAllMembersInCorpusOrder(t *testing.T) {
	c := NewCorpus([]Document{mkDoc("d1", "t1"), mkDoc("d2", "t2"), mkDoc("d3", "t1")})
	members := c.Thread("t1")
	require.Len(t, members, 2)
	assert.Equal(t, "d1", members[0].ID)
	assert.Equal(t, "d3", members[1].ID)
}

func TestCorpusThreadUnknownIDReturnsNil(t *testing.T) {
	c := NewCorpus([]Document{mkDoc("d1", "t1")})
	assert.Nil(t, c.Thread("nope"))
}

func TestHasThread(t *testing.T) {
	assert.True(t, mkDoc("d1", "t1").HasThread())
	assert.False(t, mkDoc("d1", "").HasThread())
}
