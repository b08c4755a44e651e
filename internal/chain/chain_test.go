package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalk(t *testing.T) {
	parents := []int{None, 0, 1, 1, 3}
	parent := func(i int) int { return parents[i] }

	assert.Equal(t, []int{0, 1, 3, 4}, Walk(4, parent, len(parents)))
	assert.Equal(t, []int{0}, Walk(0, parent, len(parents)))
	assert.Empty(t, Walk(None, parent, len(parents)))
}

func TestWalkStopsAtLimit(t *testing.T) {
	loop := func(i int) int { return (i + 1) % 3 }
	assert.Len(t, Walk(0, loop, 3), 3)
}

func TestReverse(t *testing.T) {
	s := []string{"a", "b", "c"}
	Reverse(s)
	assert.Equal(t, []string{"c", "b", "a"}, s)
	Reverse([]int(nil))
}
