package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Operations(t *testing.T) {
	l := NewList("a", "b")
	var types []ChangeType
	l.Subscribe(func(c Change) { types = append(types, c.Type) })

	l.Append("c")
	l.Set(0, "z")
	l.RemoveAt(1)
	l.Append()

	assert.Equal(t, []string{"z", "c"}, l.Items())
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "c", l.At(1))
	assert.Equal(t, []ChangeType{ChangeAdd, ChangeSet, ChangeRemove}, types)

	l.Clear()
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Len(t, types, 4)
}

func TestList_ItemsIsACopy(t *testing.T) {
	l := NewList(1, 2)
	items := l.Items()
	items[0] = 100
	assert.Equal(t, 1, l.At(0))
}

func TestList_SyncFromKeepsIdentity(t *testing.T) {
	var dst List[string]
	dst.Append("old")
	src := NewList("x", "y")

	resets := 0
	dst.Subscribe(func(c Change) {
		if c.Type == ChangeReset {
			resets++
		}
	})

	before := &dst
	dst.SyncFrom(src)

	assert.Same(t, before, &dst)
	assert.Equal(t, []string{"x", "y"}, dst.Items())
	assert.Equal(t, 1, resets)

	src.Append("z")
	assert.Equal(t, 2, dst.Len(), "destination must not alias the source backing array")

	dst.SyncFrom(nil)
	assert.Equal(t, 0, dst.Len())

	dst.SyncFrom(&dst)
	assert.Equal(t, 2, resets)
}

func TestList_JSON(t *testing.T) {
	var empty List[int]
	data, err := json.Marshal(&empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	l := NewList(3, 4)
	data, err = json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `[3,4]`, string(data))

	var decoded List[int]
	require.NoError(t, json.Unmarshal([]byte(`[7,8,9]`), &decoded))
	assert.Equal(t, []int{7, 8, 9}, decoded.Items())

	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &decoded))
}
