package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Add(t *testing.T) {
	agg := NewAggregate()
	agg.Add("Dice", "Catan")
	agg.Add("Trading", "Catan")
	agg.Add("Dice", "Yahtzee")

	assert.Equal(t, 2, agg.Count("Dice"))
	assert.Equal(t, 1, agg.Count("Trading"))
	assert.Equal(t, 0, agg.Count("Worker Placement"))
	assert.Equal(t, []string{"Catan", "Yahtzee"}, agg.Members("Dice"))
	assert.Nil(t, agg.Members("Worker Placement"))
	assert.Equal(t, []string{"Dice", "Trading"}, agg.Keys())
	assert.Equal(t, 2, agg.Len())
	assert.Equal(t, 3, agg.Total())
}

func TestAggregate_CountMatchesMembers(t *testing.T) {
	agg := NewAggregate()
	for i, key := range []string{"a", "b", "a", "c", "a", "b"} {
		agg.Add(key, string(rune('A'+i)))
	}

	for _, key := range agg.Keys() {
		count := agg.Count(key)
		require.Positive(t, count)
		assert.Len(t, agg.Members(key), count, "key %q", key)
	}
}

func TestAggregate_AccessorsCopy(t *testing.T) {
	agg := NewAggregate()
	agg.Add("x", "one")

	members := agg.Members("x")
	members[0] = "changed"
	keys := agg.Keys()
	keys[0] = "changed"
	entries := agg.Entries()
	entries[0].Members[0] = "changed"

	assert.Equal(t, []string{"one"}, agg.Members("x"))
	assert.Equal(t, []string{"x"}, agg.Keys())
}

func TestAggregate_Entries(t *testing.T) {
	agg := NewAggregate()
	agg.Add("b", "1")
	agg.Add("a", "2")
	agg.Add("b", "3")

	assert.Equal(t, []Entry{
		{Key: "b", Count: 2, Members: []string{"1", "3"}},
		{Key: "a", Count: 1, Members: []string{"2"}},
	}, agg.Entries())
}

func TestAggregate_Empty(t *testing.T) {
	agg := NewAggregate()
	assert.Equal(t, 0, agg.Len())
	assert.Empty(t, agg.Keys())
	assert.Empty(t, agg.Entries())
	assert.NotNil(t, agg.Entries())
}
