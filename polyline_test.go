package pacs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyLine_SimplifyOpen(t *testing.T) {
	line := &PolyLine{Verts: []Vector{{0, 0}, {1, 0.01}, {2, 0}, {3, 0.01}, {4, 0}}}
	assert.Equal(t, []Vector{{0, 0}, {4, 0}}, line.SimplifyCurves(0.1).Verts)

	corner := &PolyLine{Verts: []Vector{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}}
	assert.Equal(t, []Vector{{0, 0}, {2, 0}, {2, 2}}, corner.SimplifyCurves(0.1).Verts)

	short := &PolyLine{Verts: []Vector{{0, 0}, {1, 1}}}
	assert.Equal(t, short.Verts, short.SimplifyCurves(0.1).Verts)
}

func TestPolyLine_SimplifyClosed(t *testing.T) {
	square := &PolyLine{Verts: []Vector{{0, 0}, {1, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	require.True(t, square.IsClosed())

	reduced := square.SimplifyCurves(0.1)
	assert.True(t, reduced.IsClosed())
	assert.Equal(t, []Vector{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, reduced.Verts)
}

func TestPolyLineCollectSegment(t *testing.T) {
	set := &PolyLineSet{}
	PolyLineCollectSegment(Vector{0, 0}, Vector{1, 0}, set)
	PolyLineCollectSegment(Vector{2, 0}, Vector{3, 0}, set)
	require.Len(t, set.Lines, 2)

	PolyLineCollectSegment(Vector{1, 0}, Vector{2, 0}, set)
	require.Len(t, set.Lines, 1)
	assert.Equal(t, []Vector{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, set.Lines[0].Verts)

	PolyLineCollectSegment(Vector{-1, 0}, Vector{0, 0}, set)
	assert.Equal(t, Vector{-1, 0}, set.Lines[0].Verts[0])

	tri := &PolyLineSet{}
	PolyLineCollectSegment(Vector{0, 0}, Vector{1, 0}, tri)
	PolyLineCollectSegment(Vector{1, 0}, Vector{0, 1}, tri)
	PolyLineCollectSegment(Vector{0, 1}, Vector{0, 0}, tri)
	require.Len(t, tri.Lines, 1)
	assert.True(t, tri.Lines[0].IsClosed())
	assert.Len(t, tri.Lines[0].Verts, 4)
}
