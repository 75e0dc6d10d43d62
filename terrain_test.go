package pacs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxFootprint(lx, ly, yaw float64) Footprint {
	var s sweptShape
	s.setBox(lx, ly, yaw)
	return Footprint{
		Kind:    Box,
		Height:  1,
		Corners: s.corners,
		Dirs:    s.dirs,
		Normals: s.normals,
		Lengths: s.lengths,
	}
}

func TestTerrain_Height(t *testing.T) {
	terrain, err := NewTerrain(NewBB(0, 0, 10, 10), 2, 2, []float64{0, 10, 0, 10})
	require.NoError(t, err)

	assert.InDelta(t, 0, terrain.Height(Vector{0, 3}), 1e-12)
	assert.InDelta(t, 5, terrain.Height(Vector{5, 7}), 1e-12)
	assert.InDelta(t, 10, terrain.Height(Vector{10, 0}), 1e-12)
	assert.InDelta(t, 10, terrain.Height(Vector{20, 5}), 1e-12, "clamped to the bounds")
	assert.InDelta(t, 1, terrain.Slope(Vector{5, 5}), 1e-12)

	end := terrain.DoMove(mgl64.Vec3{1, 1, 0}, Vector{4, 0}, &SurfaceTemp{})
	assert.InDelta(t, 5, end.X(), 1e-12)
	assert.InDelta(t, 1, end.Y(), 1e-12)
	assert.InDelta(t, 5, end.Z(), 1e-12)

	_, err = NewTerrain(NewBB(0, 0, 10, 10), 2, 2, []float64{0})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewTerrain(NewBB(0, 0, 0, 10), 2, 2, make([]float64, 4))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTerrain_TestMove(t *testing.T) {
	terrain := NewFlatTerrain(NewBB(0, 0, 100, 100))
	wall := terrain.AddWall(Vector{5, 40}, Vector{5, 60}, 3)
	terrain.AddWall(Vector{80, 0}, Vector{80, 100}, 4)
	assert.Equal(t, 2, terrain.NumWalls())

	var cst SurfaceTemp
	cyl := Footprint{Kind: Cylinder, Radius: 0.5, Height: 1}
	surfaces := terrain.TestMove(mgl64.Vec3{2, 50, 0}, Vector{5, 0}, &cyl, &cst)
	require.Len(t, surfaces, 1)
	assert.InDelta(t, 0.5, surfaces[0].ContactTime, 1e-9)
	assertVector(t, Vector{-1, 0}, surfaces[0].ContactNormal)
	assert.Equal(t, wall.Surface, surfaces[0].Surface)
	assert.Equal(t, uint32(3), surfaces[0].Material)

	// walls block from both sides
	surfaces = terrain.TestMove(mgl64.Vec3{8, 50, 0}, Vector{-5, 0}, &cyl, &cst)
	require.Len(t, surfaces, 1)
	assertVector(t, Vector{1, 0}, surfaces[0].ContactNormal)

	box := boxFootprint(1, 1, 0)
	surfaces = terrain.TestMove(mgl64.Vec3{2, 50, 0}, Vector{5, 0}, &box, &cst)
	require.Len(t, surfaces, 1)
	assert.InDelta(t, 0.5, surfaces[0].ContactTime, 1e-9)

	// the end of the wall hits the top edge of the box
	surfaces = terrain.TestMove(mgl64.Vec3{5, 38, 0}, Vector{0, 5}, &box, &cst)
	require.Len(t, surfaces, 1)
	assert.InDelta(t, 0.3, surfaces[0].ContactTime, 1e-9)
	assertVector(t, Vector{0, -1}, surfaces[0].ContactNormal)

	assert.Empty(t, terrain.TestMove(mgl64.Vec3{4, 50, 0}, Vector{0, 5}, &cyl, &cst))
	assert.Empty(t, terrain.TestMove(mgl64.Vec3{2, 50, 0}, Vector{-1, 0}, &box, &cst))
}

func TestTerrain_TestMoveSorted(t *testing.T) {
	terrain := NewFlatTerrain(NewBB(0, 0, 100, 100))
	terrain.AddWall(Vector{30, 0}, Vector{30, 100}, 0)
	terrain.AddWall(Vector{10, 0}, Vector{10, 100}, 0)
	terrain.AddWall(Vector{20, 0}, Vector{20, 100}, 0)

	var cst SurfaceTemp
	cyl := Footprint{Kind: Cylinder, Radius: 1, Height: 1}
	surfaces := terrain.TestMove(mgl64.Vec3{0, 50, 0}, Vector{50, 0}, &cyl, &cst)
	require.Len(t, surfaces, 3)
	assert.Equal(t, []int32{1, 2, 0}, []int32{surfaces[0].Surface, surfaces[1].Surface, surfaces[2].Surface})
	assert.InDelta(t, 9.0/50, surfaces[0].ContactTime, 1e-9)
}

func TestTerrain_AddCliffWalls(t *testing.T) {
	heights := []float64{
		0, 0, 10, 10,
		0, 0, 10, 10,
		0, 0, 10, 10,
		0, 0, 10, 10,
	}
	for _, hard := range []bool{false, true} {
		terrain, err := NewTerrain(NewBB(0, 0, 30, 30), 4, 4, heights)
		require.NoError(t, err)

		n := terrain.AddCliffWalls(CliffOptions{MaxSlope: 0.25, Tolerance: 0.1, Material: 9, Hard: hard})
		assert.Positive(t, n, "hard %v", hard)
		assert.Equal(t, n, terrain.NumWalls())

		// the cliff stands between the low and the high ground
		var cst SurfaceTemp
		cyl := Footprint{Kind: Cylinder, Radius: 0.5, Height: 1}
		surfaces := terrain.TestMove(mgl64.Vec3{1, 15, 0}, Vector{28, 0}, &cyl, &cst)
		require.NotEmpty(t, surfaces, "hard %v", hard)
		assert.Equal(t, uint32(9), surfaces[0].Material)
	}
}
