package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBracketFixtureIsConsistent(t *testing.T) {
	ids := make(map[string]bool)
	for _, n := range BracketNodes() {
		assert.False(t, ids[n.ID], "duplicate id %s", n.ID)
		ids[n.ID] = true
		assert.True(t, n.Kind.Valid())
	}
	for _, e := range BracketEdges() {
		assert.True(t, ids[e.Src], "dangling src %s", e.Src)
		assert.True(t, ids[e.Dst], "dangling dst %s", e.Dst)
	}
}

func TestShuffledIsDeterministicPermutation(t *testing.T) {
	n1, e1 := Shuffled(BracketNodes(), BracketEdges(), 7)
	n2, e2 := Shuffled(BracketNodes(), BracketEdges(), 7)

	assert.Equal(t, n1, n2)
	assert.Equal(t, e1, e2)
	assert.ElementsMatch(t, BracketNodes(), n1)
	assert.ElementsMatch(t, BracketEdges(), e1)
}
