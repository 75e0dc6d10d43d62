package pacs

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Footprint is the horizontal shape of a primitive in its own frame, as
// handed to a Retriever.
type Footprint struct {
	Kind   ShapeKind
	Radius float64
	Height float64

	// box only, counter clockwise offsets from the center
	Corners [4]Vector
	Dirs    [4]Vector
	Normals [4]Vector
	Lengths [4]float64
}

// SurfaceDesc is a terrain surface hit by a move.
type SurfaceDesc struct {
	// ContactTime is the fraction of the tested displacement, in [0, 1].
	ContactTime float64
	// ContactNormal points out of the surface, toward the primitive.
	ContactNormal Vector
	Material      uint32
	Surface       int32
}

// SurfaceTemp holds scratch buffers reused by a Retriever across queries.
type SurfaceTemp struct {
	Surfaces []SurfaceDesc
	walls    []*Wall
}

func (cst *SurfaceTemp) reset() {
	cst.Surfaces = cst.Surfaces[:0]
	cst.walls = cst.walls[:0]
}

// sortSurfaces orders surfaces by contact time, then surface id.
func (cst *SurfaceTemp) sortSurfaces() {
	sort.Slice(cst.Surfaces, func(i, j int) bool {
		a, b := cst.Surfaces[i], cst.Surfaces[j]
		if a.ContactTime != b.ContactTime {
			return a.ContactTime < b.ContactTime
		}
		return a.Surface < b.Surface
	})
}

// Retriever is the static terrain a MoveContainer moves primitives over. It is
// only ever read.
type Retriever interface {
	// Bounds covers the terrain.
	Bounds() BB
	// TestMove returns the surfaces the footprint centered at start hits while
	// moving by delta, approaching ones only, sorted by contact time. The
	// result may alias cst.
	TestMove(start mgl64.Vec3, delta Vector, fp *Footprint, cst *SurfaceTemp) []SurfaceDesc
	// DoMove returns where a primitive at start ends after moving by delta.
	DoMove(start mgl64.Vec3, delta Vector, cst *SurfaceTemp) mgl64.Vec3
}
