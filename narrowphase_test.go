package pacs

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweptBox(id PrimitiveID, pos, vel Vector, lx, ly, yaw float64) *sweptShape {
	s := &sweptShape{id: id, pos: pos, vel: vel, height: 1}
	s.setBox(lx, ly, yaw)
	return s
}

func sweptCylinder(id PrimitiveID, pos, vel Vector, r float64) *sweptShape {
	return &sweptShape{id: id, kind: Cylinder, pos: pos, vel: vel, radius: r, height: 1}
}

func assertVector(t *testing.T, expected, actual Vector) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, 1e-9, "x of %v", actual)
	assert.InDelta(t, expected.Y, actual.Y, 1e-9, "y of %v", actual)
}

func TestEvalCollision_BoxBox(t *testing.T) {
	a := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	b := sweptBox(2, Vector{3, 0}, Vector{}, 1, 1, 0)

	var desc CollisionDesc
	hit, first, last := evalCollision(a, b, &desc, 0, 5, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 2.0, desc.ContactTime, 1e-9)
	assert.Equal(t, PrimitiveID(1), desc.Primitive0)
	assert.Equal(t, PrimitiveID(2), desc.Primitive1)
	assertVector(t, Vector{-1, 0}, desc.ContactNormal0)
	assertVector(t, Vector{1, 0}, desc.ContactNormal1)
	assert.Equal(t, FeatureVertex, desc.Feature0.Kind)
	assert.Equal(t, FeatureEdge, desc.Feature1.Kind)
	assert.InDelta(t, 2.5, desc.ContactPos.X(), 1e-9)
	assert.InDelta(t, 2.0, first, 1e-9)
	assert.InDelta(t, 4.0, last, 1e-9)

	hit, _, _ = evalCollision(a, b, &desc, 0, 1.9, 0, 100)
	assert.False(t, hit)
}

func TestEvalCollision_BoxBoxRotated(t *testing.T) {
	a := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	b := sweptBox(2, Vector{3, 0}, Vector{}, 1, 1, math.Pi/4)

	var desc CollisionDesc
	hit, _, _ := evalCollision(a, b, &desc, 0, 5, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 2.5-math.Sqrt(0.5), desc.ContactTime, 1e-9)
	assertVector(t, Vector{-1, 0}, desc.ContactNormal0)
	assert.Equal(t, FeatureEdge, desc.Feature0.Kind)
	assert.Equal(t, FeatureVertex, desc.Feature1.Kind)
}

func TestEvalCollision_BoxCylinder(t *testing.T) {
	box := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	cyl := sweptCylinder(2, Vector{3, 0}, Vector{}, 0.5)

	var desc CollisionDesc
	hit, _, _ := evalCollision(box, cyl, &desc, 0, 5, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 2.0, desc.ContactTime, 1e-9)
	assertVector(t, Vector{-1, 0}, desc.ContactNormal0)
	assert.Equal(t, PrimitiveID(1), desc.Primitive0)

	hit, _, _ = evalCollision(box, cyl, &desc, 0, 1.5, 0, 100)
	assert.False(t, hit)
}

func TestEvalCollision_CylinderBox(t *testing.T) {
	cyl := sweptCylinder(1, Vector{3, 0}, Vector{-1, 0}, 0.5)
	box := sweptBox(2, Vector{0, 0}, Vector{}, 1, 1, 0)

	var desc CollisionDesc
	hit, _, _ := evalCollision(cyl, box, &desc, 0, 5, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 2.0, desc.ContactTime, 1e-9)
	assert.Equal(t, PrimitiveID(1), desc.Primitive0)
	assert.Equal(t, PrimitiveID(2), desc.Primitive1)
	assertVector(t, Vector{1, 0}, desc.ContactNormal0)
	assert.Equal(t, FeatureSurface, desc.Feature0.Kind)
	assert.Equal(t, FeatureEdge, desc.Feature1.Kind)
}

func TestEvalCollision_CylinderCylinder(t *testing.T) {
	a := sweptCylinder(1, Vector{0, 0}, Vector{2, 0}, 1)
	b := sweptCylinder(2, Vector{10, 0}, Vector{-2, 0}, 1)

	var desc CollisionDesc
	hit, first, last := evalCollision(a, b, &desc, 0, 5, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 2.0, desc.ContactTime, 1e-9)
	assertVector(t, Vector{-1, 0}, desc.ContactNormal0)
	assert.InDelta(t, 2.0, first, 1e-9)
	assert.InDelta(t, 3.0, last, 1e-9)

	hit, _, _ = evalCollision(a, b, &desc, 0, 1.99, 0, 100)
	assert.False(t, hit)
}

func TestEvalCollision_Touching(t *testing.T) {
	a := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	b := sweptBox(2, Vector{1, 0}, Vector{}, 1, 1, 0)

	var desc CollisionDesc
	hit, _, _ := evalCollision(a, b, &desc, 0, 1, 0, 100)
	require.True(t, hit)
	assert.Equal(t, 0.0, desc.ContactTime)

	a.vel = Vector{-1, 0}
	hit, _, _ = evalCollision(a, b, &desc, 0, 1, 0, 100)
	assert.False(t, hit)
}

func TestEvalCollision_SlidingPastCorner(t *testing.T) {
	// flush against the wall and moving along it, past its end
	a := sweptBox(1, Vector{2, 2}, Vector{0, 1}, 1, 1, 0)
	wall := sweptBox(2, Vector{3, 0}, Vector{}, 1, 6, 0)

	var desc CollisionDesc
	hit, _, _ := evalCollision(a, wall, &desc, 0, 5, 0, 100)
	assert.False(t, hit)
}

func TestEvalCollision_AlreadyOverlapping(t *testing.T) {
	a := sweptCylinder(1, Vector{0, 0}, Vector{1, 0}, 1)
	b := sweptCylinder(2, Vector{1, 0}, Vector{}, 1)

	var desc CollisionDesc
	hit, first, last := evalCollision(a, b, &desc, 0, 5, 0, 100)
	assert.False(t, hit)
	assert.InDelta(t, -1.0, first, 1e-9)
	assert.InDelta(t, 3.0, last, 1e-9)
}

func TestEvalCollision_Vertical(t *testing.T) {
	a := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	b := sweptBox(2, Vector{3, 0}, Vector{}, 1, 1, 0)
	b.z = 1.5

	var desc CollisionDesc
	hit, first, last := evalCollision(a, b, &desc, 0, 5, 0, 100)
	assert.False(t, hit)
	assert.True(t, first > last)
}

func TestEvalCollision_VerticalMotion(t *testing.T) {
	a := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	b := sweptBox(2, Vector{3, 0}, Vector{}, 1, 1, 0)
	a.height, b.height = 2, 2
	b.z = 3

	// climbing into the height of b before reaching it
	a.zVel = 1
	var desc CollisionDesc
	hit, first, last := evalCollision(a, b, &desc, 0, 5, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 2.0, desc.ContactTime, 1e-9)
	assert.InDelta(t, 2.0, first, 1e-9)
	assert.InDelta(t, 4.0, last, 1e-9)

	// climbing over b before reaching it
	a.zVel = 3
	hit, _, _ = evalCollision(a, b, &desc, 0, 5, 0, 100)
	assert.False(t, hit)

	// leaving the height of b before reaching it
	b.z = 1
	a.zVel = -2
	hit, first, last = evalCollision(a, b, &desc, 0, 5, 0, 100)
	assert.False(t, hit)
	assert.True(t, first > last)
}

func TestEvalCollision_IterationLimit(t *testing.T) {
	a := sweptBox(1, Vector{0, 0}, Vector{1, 0}, 1, 1, 0)
	b := sweptBox(2, Vector{3, 0}, Vector{}, 1, 1, 0)

	var desc CollisionDesc
	hit, _, _ := evalCollision(a, b, &desc, 0.5, 5, 3, 3)
	require.True(t, hit)
	assert.Equal(t, 0.5, desc.ContactTime)
}

func randomShape(rng *rand.Rand, id PrimitiveID, pos, vel Vector) *sweptShape {
	if rng.Intn(2) == 0 {
		return sweptCylinder(id, pos, vel, 0.5+rng.Float64())
	}
	return sweptBox(id, pos, vel, 1+rng.Float64(), 1+rng.Float64(), rng.Float64()*2*math.Pi)
}

// Dense sampling never finds an overlap the swept test missed.
func TestEvalCollision_NoTunneling(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const samples = 64

	for i := 0; i < 500; i++ {
		a := randomShape(rng, 1, Vector{0, 0}, Vector{rng.Float64()*2 - 1, rng.Float64()*2 - 1})
		b := randomShape(rng, 2, Vector{rng.Float64()*6 - 3, rng.Float64()*6 - 3}, Vector{rng.Float64()*2 - 1, rng.Float64()*2 - 1})
		if overlapAt(a, b, 0) {
			continue
		}

		var desc CollisionDesc
		hit, _, _ := evalCollision(a, b, &desc, 0, 1, 0, 100)
		for k := 1; k <= samples; k++ {
			tk := float64(k) / samples
			if overlapAt(a, b, tk) {
				require.True(t, hit, "case %d: overlap at %v missed (%v %v)", i, tk, a.kind, b.kind)
				require.LessOrEqual(t, desc.ContactTime, tk+1e-9, "case %d", i)
				break
			}
		}
	}
}
