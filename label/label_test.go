package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtractionConfidenceIsMean(t *testing.T) {
	l := NewExtraction([]ExtractionItem{{Confidence: 1.0}, {Confidence: 0.5}})
	assert.Equal(t, Kind(KindExtraction), l.Kind)
	assert.InDelta(t, 0.75, l.Confidence, 1e-9)
}

func TestNewExtractionEmptyItemsZeroConfidence(t *testing.T) {
	l := NewExtraction(nil)
	assert.Equal(t, 0.0, l.Confidence)
}

func TestSpanValid(t *testing.T) {
	assert.True(t, Span{Start: 0, End: 1}.Valid())
	assert.False(t, Span{Start: 0, End: 0}.Valid())
	assert.False(t, Span{Start: -1, End: 5}.Valid())
}

func TestLabelAsStringVariants(t *testing.T) {
	simple := NewSimple("hostile", 0.9, "")
	assert.Equal(t, "hostile", simple.AsString())

	compound := NewCompound(true, map[string]interface{}{"foo": "bar"}, 0.8, "")
	assert.Contains(t, compound.AsString(), "matches")
	b, ok := compound.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	_, ok = simple.AsBool()
	assert.False(t, ok)
}

func TestMapPreservesInsertionOrderAndFirst(t *testing.T) {
	m := NewMap()
	m.Set("topic", NewSimple("custody", 0.7, ""))
	m.Set("tone", NewSimple("hostile", 0.9, ""))

	assert.Equal(t, []string{"topic", "tone"}, m.Keys())

	k, l, ok := m.First()
	require.True(t, ok)
	assert.Equal(t, "topic", k)
	assert.Equal(t, "custody", l.AsString())
}

func TestMapSetReplaceDoesNotDuplicateKey(t *testing.T) {
	m := NewMap()
	m.Set("tone", NewSimple("hostile", 0.9, ""))
	m.Set("tone", NewSimple("neutral", 0.4, ""))

	assert.Equal(t, 1, m.Len())
	l, ok := m.Get("tone")
	require.True(t, ok)
	assert.Equal(t, "neutral", l.AsString())
}

func TestMapCloneIsIndependent(t *testing.T) {
	m := NewMap()
	m.Set("tone", NewSimple("hostile", 0.9, ""))

	clone := m.Clone()
	clone.Set("topic", NewSimple("custody", 0.5, ""))

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestEmptyMapFirstReportsFalse(t *testing.T) {
	m := NewMap()
	_, _, ok := m.First()
	assert.False(t, ok)
}
