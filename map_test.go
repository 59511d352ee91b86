package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SetReplacesInPlace(t *testing.T) {
	m := Map{{Key: "a", Value: 1}, {Key: "b", Value: 2}}
	m.Set("a", 10)
	m.Set("c", 3)

	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 3, m.Len())
}

func TestMap_Delete(t *testing.T) {
	m := Map{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 3}}
	orig := m

	assert.True(t, m.Delete("b"))
	assert.False(t, m.Delete("missing"))
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	// the backing array of the original is left alone
	assert.Equal(t, "b", orig[1].Key)
}

func TestMap_CloneIsDeep(t *testing.T) {
	inner := Map{{Key: "x", Value: 1}}
	list := []any{Map{{Key: "y", Value: 2}}}
	m := Map{{Key: "inner", Value: inner}, {Key: "list", Value: list}}

	c := m.Clone()
	inner.Set("x", 99)
	list[0].(Map)[0].Value = 99

	got, _ := c.Get("inner")
	assert.Equal(t, Map{{Key: "x", Value: 1}}, got)
	gotList, _ := c.Get("list")
	assert.Equal(t, []any{Map{{Key: "y", Value: 2}}}, gotList)

	assert.Nil(t, Map(nil).Clone())
}

func TestMap_GetOnNil(t *testing.T) {
	var m Map
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.False(t, m.Has("a"))
	m.Set("a", true)
	assert.True(t, m.Has("a"))
}
