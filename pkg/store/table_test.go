package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTable_InsertIfAbsent(t *testing.T) {
	tbl := NewTable[string]()

	assert.True(t, tbl.InsertIfAbsent("a", "first"))
	assert.False(t, tbl.InsertIfAbsent("a", "second"))

	v, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestTable_Update(t *testing.T) {
	tbl := NewTable[int]()
	tbl.Upsert("a", 1)

	assert.True(t, tbl.Update("a", func(v *int) { *v = 2 }))
	v, _ := tbl.Get("a")
	assert.Equal(t, 2, v)

	assert.False(t, tbl.Update("missing", func(v *int) { *v = 99 }))
	_, ok := tbl.Get("missing")
	assert.False(t, ok)
}

func TestTable_Remove(t *testing.T) {
	tbl := NewTable[int]()
	tbl.Upsert("a", 1)

	assert.True(t, tbl.Remove("a"))
	assert.False(t, tbl.Remove("a"))
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_AllIsSnapshot(t *testing.T) {
	tbl := NewTable[int]()
	tbl.Upsert("a", 1)

	snap := tbl.All()
	snap["b"] = 2

	assert.Equal(t, 1, tbl.Len())
	_, ok := tbl.Get("b")
	assert.False(t, ok)
}

// TestTable_MatchesModel drives a random op sequence against the table
// and a plain map, checking they never diverge.
func TestTable_MatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tbl := NewTable[int]()
		model := make(map[string]int)
		ids := rapid.SampledFrom([]string{"a", "b", "c", "d"})

		t.Repeat(map[string]func(*rapid.T){
			"insert": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				v := rapid.Int().Draw(t, "v")
				_, exists := model[id]
				inserted := tbl.InsertIfAbsent(id, v)
				if exists {
					assert.False(t, inserted)
				} else {
					assert.True(t, inserted)
					model[id] = v
				}
			},
			"upsert": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				v := rapid.Int().Draw(t, "v")
				tbl.Upsert(id, v)
				model[id] = v
			},
			"remove": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				_, exists := model[id]
				assert.Equal(t, exists, tbl.Remove(id))
				delete(model, id)
			},
			"": func(t *rapid.T) {
				assert.Equal(t, model, tbl.All())
			},
		})
	})
}
