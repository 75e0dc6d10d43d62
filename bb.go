package pacs

import (
	"fmt"
	"math"
)

// BB is an axis aligned bounding box on the horizontal plane.
type BB struct {
	L, B, R, T float64
}

func NewBB(l, b, r, t float64) BB {
	return BB{l, b, r, t}
}

func (bb BB) String() string {
	return fmt.Sprintf("[%f,%f %f,%f]", bb.L, bb.B, bb.R, bb.T)
}

func NewBBForExtents(c Vector, hw, hh float64) BB {
	return BB{
		L: c.X - hw,
		B: c.Y - hh,
		R: c.X + hw,
		T: c.Y + hh,
	}
}

func NewBBForCircle(p Vector, r float64) BB {
	return NewBBForExtents(p, r, r)
}

// NewBBForSegment bounds the segment ab.
func NewBBForSegment(a, b Vector) BB {
	return BB{
		math.Min(a.X, b.X),
		math.Min(a.Y, b.Y),
		math.Max(a.X, b.X),
		math.Max(a.Y, b.Y),
	}
}

func (a BB) Intersects(b BB) bool {
	return a.L <= b.R && b.L <= a.R && a.B <= b.T && b.B <= a.T
}

func (a BB) Merge(b BB) BB {
	return BB{
		math.Min(a.L, b.L),
		math.Min(a.B, b.B),
		math.Max(a.R, b.R),
		math.Max(a.T, b.T),
	}
}

func (bb BB) Expand(v Vector) BB {
	return BB{
		math.Min(bb.L, v.X),
		math.Min(bb.B, v.Y),
		math.Max(bb.R, v.X),
		math.Max(bb.T, v.Y),
	}
}

// Inflate grows the box by d on every side.
func (bb BB) Inflate(d float64) BB {
	return BB{bb.L - d, bb.B - d, bb.R + d, bb.T + d}
}

// Sweep returns the box covering bb and bb moved by delta.
func (bb BB) Sweep(delta Vector) BB {
	return bb.Merge(bb.Offset(delta))
}

func (bb BB) Width() float64 {
	return bb.R - bb.L
}

func (bb BB) Height() float64 {
	return bb.T - bb.B
}

func (bb BB) Area() float64 {
	return (bb.R - bb.L) * (bb.T - bb.B)
}

func (a BB) MergedArea(b BB) float64 {
	return (math.Max(a.R, b.R) - math.Min(a.L, b.L)) * (math.Max(a.T, b.T) - math.Min(a.B, b.B))
}

func (bb BB) Offset(v Vector) BB {
	return BB{
		bb.L + v.X,
		bb.B + v.Y,
		bb.R + v.X,
		bb.T + v.Y,
	}
}

func (a BB) Proximity(b BB) float64 {
	return math.Abs(a.L+a.R-b.L-b.R) + math.Abs(a.B+a.T-b.B-b.T)
}
