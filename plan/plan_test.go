package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgsEmptyStringYieldsEmptyMap(t *testing.T) {
	s := Step{Args: ""}
	args, err := s.DecodeArgs()
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestDecodeArgsParsesJSON(t *testing.T) {
	s := Step{Args: `{"sender":"alice","k":3}`}
	args, err := s.DecodeArgs()
	require.NoError(t, err)
	assert.Equal(t, "alice", args["sender"])
	assert.Equal(t, 3.0, args["k"])
}

func TestDecodeArgsInvalidJSONErrors(t *testing.T) {
	s := Step{Args: `not json`}
	_, err := s.DecodeArgs()
	assert.Error(t, err)
}

func TestInputIDsVariants(t *testing.T) {
	ids, isCorpus, isList := Step{Input: ""}.InputIDs()
	assert.Nil(t, ids)
	assert.False(t, isCorpus)
	assert.False(t, isList)

	ids, isCorpus, isList = Step{Input: "corpus"}.InputIDs()
	assert.Nil(t, ids)
	assert.True(t, isCorpus)
	assert.False(t, isList)

	ids, isCorpus, isList = Step{Input: "step_a"}.InputIDs()
	assert.Equal(t, []string{"step_a"}, ids)
	assert.False(t, isCorpus)
	assert.False(t, isList)

	ids, isCorpus, isList = Step{Input: "a, b"}.InputIDs()
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.False(t, isCorpus)
	assert.True(t, isList)
}

func TestErrorFormatsStepIDOverIndex(t *testing.T) {
	e := &Error{StepIndex: 2, StepID: "narrow", Reason: "unknown operator"}
	assert.Equal(t, "plan: step narrow: unknown operator", e.Error())

	e2 := &Error{StepIndex: 2, Reason: "unknown operator"}
	assert.Equal(t, "plan: step 2: unknown operator", e2.Error())
}
