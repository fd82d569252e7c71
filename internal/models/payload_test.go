package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadKeepsOrder(t *testing.T) {
	p, err := ParsePayload([]byte(`{"zeta":1,"alpha":"a","mid":{"x":true}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, p.Keys())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":{"x":true}}`, string(out))
}

func TestParsePayloadRejectsNonObject(t *testing.T) {
	_, err := ParsePayload([]byte(`["a"]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParsePayload([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestParsePayloadNull(t *testing.T) {
	p, err := ParsePayload([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestWithDoesNotAlias(t *testing.T) {
	orig, err := ParsePayload([]byte(`{"message":"hi"}`))
	require.NoError(t, err)

	tagged := orig.Tagged(true)

	_, ok := orig.Get(ClickedKey)
	assert.False(t, ok, "original must not gain the clicked flag")
	assert.True(t, tagged.Clicked())
	assert.Equal(t, []string{"message", ClickedKey}, tagged.Keys())
}

func TestWithOverwriteKeepsPosition(t *testing.T) {
	p := PayloadFromMap(map[string]any{"b": 2, "a": 1})
	assert.Equal(t, []string{"a", "b"}, p.Keys())

	q := p.With("a", 10)
	assert.Equal(t, []string{"a", "b"}, q.Keys())
	v, _ := q.Get("a")
	assert.Equal(t, 10, v)
}

func TestMarshalUnsupportedValue(t *testing.T) {
	p := NewPayload().With("bad", math.Inf(1))
	_, err := json.Marshal(p)
	assert.Error(t, err)
}

func TestZeroPayload(t *testing.T) {
	var p Payload
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Clicked())
	assert.Empty(t, p.Keys())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}
