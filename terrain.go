package pacs

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Wall is a vertical terrain segment. Walls block from both sides.
type Wall struct {
	A, B     Vector
	Material uint32
	Surface  int32
}

func (w *Wall) BB() BB {
	return NewBBForSegment(w.A, w.B)
}

// Terrain is a Retriever made of a height field and walls. Primitives follow
// the height field vertically and are blocked by the walls horizontally.
type Terrain struct {
	bounds       BB
	cols, rows   int
	cellW, cellH float64
	heights      []float64

	walls       *BBTree
	nextSurface int32
}

// NewTerrain builds a terrain over bounds from cols x rows height samples,
// row major from the bottom left corner.
func NewTerrain(bounds BB, cols, rows int, heights []float64) (*Terrain, error) {
	if cols < 2 || rows < 2 || len(heights) != cols*rows {
		return nil, fmt.Errorf("%w: %dx%d height samples, got %d", ErrInvalidConfig, cols, rows, len(heights))
	}
	if !(bounds.Width() > 0) || !(bounds.Height() > 0) {
		return nil, fmt.Errorf("%w: terrain bounds %v", ErrInvalidConfig, bounds)
	}
	return &Terrain{
		bounds:  bounds,
		cols:    cols,
		rows:    rows,
		cellW:   bounds.Width() / float64(cols-1),
		cellH:   bounds.Height() / float64(rows-1),
		heights: heights,
		walls:   NewBBTree(),
	}, nil
}

// NewFlatTerrain builds a terrain at height zero.
func NewFlatTerrain(bounds BB) *Terrain {
	t, err := NewTerrain(bounds, 2, 2, make([]float64, 4))
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Terrain) Bounds() BB {
	return t.bounds
}

func (t *Terrain) sample(i, j int) float64 {
	return t.heights[j*t.cols+i]
}

// Height interpolates the height field at p, clamped to the bounds.
func (t *Terrain) Height(p Vector) float64 {
	u := (p.X - t.bounds.L) / t.cellW
	v := (p.Y - t.bounds.B) / t.cellH
	i := int(Clamp(math.Floor(u), 0, float64(t.cols-2)))
	j := int(Clamp(math.Floor(v), 0, float64(t.rows-2)))
	fx := Clamp01(u - float64(i))
	fy := Clamp01(v - float64(j))

	bottom := Lerp(t.sample(i, j), t.sample(i+1, j), fx)
	top := Lerp(t.sample(i, j+1), t.sample(i+1, j+1), fx)
	return Lerp(bottom, top, fy)
}

// Slope is the magnitude of the height gradient at p.
func (t *Terrain) Slope(p Vector) float64 {
	dx, dy := t.cellW/2, t.cellH/2
	gx := (t.Height(Vector{p.X + dx, p.Y}) - t.Height(Vector{p.X - dx, p.Y})) / (2 * dx)
	gy := (t.Height(Vector{p.X, p.Y + dy}) - t.Height(Vector{p.X, p.Y - dy})) / (2 * dy)
	return math.Hypot(gx, gy)
}

func (t *Terrain) AddWall(a, b Vector, material uint32) *Wall {
	w := &Wall{A: a, B: b, Material: material, Surface: t.nextSurface}
	t.nextSurface++
	t.walls.Insert(w)
	return w
}

// AddChain adds a wall between each pair of consecutive vertices and returns
// how many were added.
func (t *Terrain) AddChain(verts []Vector, material uint32) int {
	n := 0
	for i := 1; i < len(verts); i++ {
		if verts[i-1].Equal(verts[i]) {
			continue
		}
		t.AddWall(verts[i-1], verts[i], material)
		n++
	}
	return n
}

// CliffOptions drives the extraction of walls along steep terrain.
type CliffOptions struct {
	// MaxSlope is the walkable slope; walls follow where it is exceeded.
	MaxSlope float64
	// Tolerance is the maximum error of the simplified wall chains.
	Tolerance float64
	Material  uint32
	// Hard follows sample cells instead of interpolating the contour.
	Hard bool
}

// AddCliffWalls contours the slope of the height field at opts.MaxSlope and
// turns the contours into wall chains. It returns the number of walls added.
func (t *Terrain) AddCliffWalls(opts CliffOptions) int {
	set := &PolyLineSet{}
	march := MarchSoft
	if opts.Hard {
		march = MarchHard
	}
	march(t.bounds, t.cols, t.rows, opts.MaxSlope, PolyLineCollectSegment, set, t.Slope)

	n := 0
	for _, line := range set.Lines {
		if len(line.Verts) < 2 {
			continue
		}
		n += t.AddChain(line.SimplifyCurves(opts.Tolerance).Verts, opts.Material)
	}
	return n
}

func (t *Terrain) NumWalls() int {
	return t.walls.Count()
}

// TestMove implements Retriever.
func (t *Terrain) TestMove(start mgl64.Vec3, delta Vector, fp *Footprint, cst *SurfaceTemp) []SurfaceDesc {
	cst.reset()
	c := V2(start)
	bb := footprintBounds(c, fp).Sweep(delta).Inflate(ContactEpsilon)
	t.walls.Query(bb, func(w *Wall) {
		cst.walls = append(cst.walls, w)
	})
	for _, w := range cst.walls {
		if tc, n, ok := sweepFootprintWall(c, delta, fp, w); ok {
			cst.Surfaces = append(cst.Surfaces, SurfaceDesc{
				ContactTime:   tc,
				ContactNormal: n,
				Material:      w.Material,
				Surface:       w.Surface,
			})
		}
	}
	cst.sortSurfaces()
	return cst.Surfaces
}

// DoMove implements Retriever. Primitives end on the height field.
func (t *Terrain) DoMove(start mgl64.Vec3, delta Vector, cst *SurfaceTemp) mgl64.Vec3 {
	end := V2(start).Add(delta)
	return end.Vec3(t.Height(end))
}

func footprintBounds(c Vector, fp *Footprint) BB {
	if fp.Kind == Cylinder {
		return NewBBForCircle(c, fp.Radius)
	}
	bb := NewBBForExtents(c, 0, 0)
	for _, corner := range fp.Corners {
		bb = bb.Expand(c.Add(corner))
	}
	return bb
}

// sweepFootprintWall finds when a footprint centered at c and moving by delta
// first reaches the wall, as a fraction of delta.
func sweepFootprintWall(c, delta Vector, fp *Footprint, w *Wall) (float64, Vector, bool) {
	edge := w.B.Sub(w.A)
	length := edge.Length()
	dir := edge.Normalize()
	n := dir.ReversePerp()
	if c.Sub(w.A).Dot(n) < 0 {
		n = n.Neg()
	}

	cross := emptySpan()
	best := INFINITY
	var normal Vector
	ends := [2]Vector{w.A, w.B}

	if fp.Kind == Cylinder {
		if length > 0 {
			if tc, ok := sweepPointEdge(c, delta, w.A, dir, n, length, fp.Radius, 0, 1, &cross); ok && tc < best {
				best, normal = tc, n
			}
		}
		for _, e := range ends {
			if tc, ok := sweepPointCircle(c, delta, e, fp.Radius, 0, 1, &cross); ok && tc < best {
				best = tc
				normal = c.Add(delta.Mult(tc)).Sub(e).Normalize()
			}
		}
		return best, normal, best <= 1
	}

	if length > 0 {
		for _, corner := range fp.Corners {
			if tc, ok := sweepPointEdge(c.Add(corner), delta, w.A, dir, n, length, 0, 0, 1, &cross); ok && tc < best {
				best, normal = tc, n
			}
		}
	}
	for _, e := range ends {
		for j := range fp.Corners {
			q := c.Add(fp.Corners[j])
			if tc, ok := sweepPointEdge(e, delta.Neg(), q, fp.Dirs[j], fp.Normals[j], fp.Lengths[j], 0, 0, 1, &cross); ok && tc < best {
				best, normal = tc, fp.Normals[j].Neg()
			}
		}
	}
	return best, normal, best <= 1
}
