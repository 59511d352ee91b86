package hal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Shapes(t *testing.T) {
	type point struct{ X, Y int }
	in := Map{
		{Key: "plain", Value: map[string]any{"b": 2, "a": 1}},
		{Key: "ints", Value: []int{1, 2}},
		{Key: "labels", Value: map[string]string{"z": "last", "k": "first"}},
		{Key: "bytes", Value: []byte("raw")},
		{Key: "nilptr", Value: (*point)(nil)},
		{Key: "struct", Value: point{X: 1}},
		{Key: "when", Value: time.Duration(5)},
	}

	got, err := NormalizeMap(in, 0)
	require.NoError(t, err)

	v, _ := got.Get("plain")
	assert.Equal(t, Map{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, v)
	v, _ = got.Get("ints")
	assert.Equal(t, []any{1, 2}, v)
	v, _ = got.Get("labels")
	assert.Equal(t, Map{{Key: "k", Value: "first"}, {Key: "z", Value: "last"}}, v)
	v, _ = got.Get("bytes")
	assert.Equal(t, []byte("raw"), v)
	v, _ = got.Get("nilptr")
	assert.Nil(t, v)
	v, _ = got.Get("struct")
	assert.Equal(t, point{X: 1}, v)
	v, _ = got.Get("when")
	assert.Equal(t, time.Duration(5), v)
}

func TestNormalize_DepthLimitStopsCycles(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	_, err := Normalize(cyclic, 16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDepthExceeded))
	assert.Equal(t, CodeDepthExceeded, Code(err))

	list := []any{nil}
	list[0] = list
	_, err = Normalize(list, 0)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestNormalize_ExactDepth(t *testing.T) {
	nested := Map{{Key: "a", Value: Map{{Key: "b", Value: 1}}}}
	_, err := Normalize(nested, 2)
	assert.NoError(t, err)
	_, err = Normalize(nested, 1)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestNormalizeMap_Nil(t *testing.T) {
	got, err := NormalizeMap(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, Map{}, got)
}
