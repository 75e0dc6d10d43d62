package pacs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveCell_SortOrder(t *testing.T) {
	var c moveCell
	c.insert(cellEntry{handle: 0, xmin: 5, id: 1})
	c.insert(cellEntry{handle: 1, xmin: 2, id: 2})
	c.insert(cellEntry{handle: 2, xmin: 5, id: 0})
	c.insert(cellEntry{handle: 3, xmin: -1, id: 3})
	require.True(t, c.sorted())

	var ids []PrimitiveID
	for _, e := range c.entries {
		ids = append(ids, e.id)
	}
	assert.Equal(t, []PrimitiveID{3, 2, 0, 1}, ids)

	c.resort(3, 10)
	assert.True(t, c.sorted())
	assert.Equal(t, imageHandle(3), c.entries[3].handle)

	c.resort(3, -10)
	assert.True(t, c.sorted())
	assert.Equal(t, imageHandle(3), c.entries[0].handle)

	c.remove(1)
	assert.Len(t, c.entries, 3)
	assert.True(t, c.sorted())
}

func gridImage(id PrimitiveID, h imageHandle, bb BB) *WorldImage {
	return &WorldImage{prim: &Primitive{id: id}, handle: h, bb: bb}
}

func TestMoveGrid_Link(t *testing.T) {
	g := NewMoveGrid(NewBB(0, 0, 100, 100), 10, 10)

	a := gridImage(1, 0, NewBB(12, 12, 14, 14))
	assert.False(t, g.link(a))
	assert.Equal(t, 1, a.numCells)
	assert.Equal(t, []PrimitiveID{1}, g.CellPrimitives(1, 1))

	b := gridImage(2, 1, NewBB(18, 18, 22, 22))
	assert.False(t, g.link(b))
	assert.Equal(t, 4, b.numCells)
	assert.Equal(t, []PrimitiveID{1, 2}, g.CellPrimitives(1, 1))
	assert.Equal(t, []PrimitiveID{2}, g.CellPrimitives(2, 2))

	big := gridImage(3, 2, NewBB(5, 5, 35, 15))
	assert.True(t, g.link(big))
	assert.Equal(t, 1, g.NumOversized())

	// outside the bounds clamps to the border cells
	out := gridImage(4, 3, NewBB(-20, 50, -10, 52))
	assert.False(t, g.link(out))
	assert.Equal(t, []PrimitiveID{4}, g.CellPrimitives(0, 5))

	g.unlink(big)
	assert.Equal(t, 0, g.NumOversized())
	g.unlink(b)
	assert.Equal(t, []PrimitiveID{1}, g.CellPrimitives(1, 1))
	assert.Empty(t, g.CellPrimitives(2, 2))
}

func TestMoveGrid_Relink(t *testing.T) {
	g := NewMoveGrid(NewBB(0, 0, 100, 100), 10, 10)
	a := gridImage(1, 0, NewBB(11, 11, 12, 12))
	b := gridImage(2, 1, NewBB(15, 11, 16, 12))
	g.link(a)
	g.link(b)
	assert.Equal(t, []PrimitiveID{1, 2}, g.CellPrimitives(1, 1))

	// same cell, new order
	a.bb = NewBB(17, 11, 18, 12)
	g.relink(a)
	assert.Equal(t, []PrimitiveID{2, 1}, g.CellPrimitives(1, 1))

	// new cell
	a.bb = NewBB(51, 51, 52, 52)
	g.relink(a)
	assert.Equal(t, []PrimitiveID{2}, g.CellPrimitives(1, 1))
	assert.Equal(t, []PrimitiveID{1}, g.CellPrimitives(5, 5))
}

func TestMoveGrid_Query(t *testing.T) {
	g := NewMoveGrid(NewBB(0, 0, 100, 100), 10, 10)
	g.link(gridImage(1, 0, NewBB(11, 11, 12, 12)))
	g.link(gridImage(2, 1, NewBB(18, 18, 22, 22)))
	g.link(gridImage(3, 2, NewBB(80, 80, 81, 81)))
	g.link(gridImage(4, 3, NewBB(5, 5, 45, 15)))

	seen := map[imageHandle]int{}
	g.query(NewBB(10, 10, 13, 13), func(h imageHandle) {
		seen[h]++
	})
	assert.Equal(t, 1, seen[0])
	assert.Equal(t, 1, seen[3], "oversized images are always visited")
	assert.Zero(t, seen[2])
	// in the cell but starting right of the query
	assert.Zero(t, seen[1])
}
