package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 3, "a": 1, "b": 2}))
	assert.Empty(t, SortedKeys(map[string]int{}))
}

func TestMapFilter(t *testing.T) {
	evens := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	assert.Equal(t, []int{2, 4}, evens)
	assert.Equal(t, []string{"2", "4"}, Map(evens, strconv.Itoa))
	assert.Nil(t, Filter([]int{1}, func(int) bool { return false }))
}
