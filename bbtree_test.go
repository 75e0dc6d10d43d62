package pacs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBBTree_Query(t *testing.T) {
	tree := NewBBTree()
	var walls []*Wall
	for i := 0; i < 100; i++ {
		x := float64(i)
		w := &Wall{A: Vector{x, 0}, B: Vector{x + 0.5, 1}, Surface: int32(i)}
		walls = append(walls, w)
		tree.Insert(w)
	}
	assert.Equal(t, 100, tree.Count())

	var found []int32
	tree.Query(NewBB(10.2, 0.5, 12.1, 0.6), func(w *Wall) {
		found = append(found, w.Surface)
	})
	assert.ElementsMatch(t, []int32{10, 11, 12}, found)

	found = found[:0]
	tree.Query(NewBB(-10, 5, 200, 6), func(w *Wall) {
		found = append(found, w.Surface)
	})
	assert.Empty(t, found)

	seen := 0
	tree.Each(func(*Wall) { seen++ })
	assert.Equal(t, 100, seen)
}

func TestBBTree_Empty(t *testing.T) {
	tree := NewBBTree()
	tree.Query(NewBB(0, 0, 1, 1), func(*Wall) {
		t.Fatal("empty tree")
	})
	assert.Zero(t, tree.Count())
}
