package pacs

import "math"

// span collects the times where a relative path crosses the boundary of the
// region where two shapes overlap.
type span struct {
	first, last float64
}

func emptySpan() span {
	return span{INFINITY, -INFINITY}
}

func fullSpan() span {
	return span{-INFINITY, INFINITY}
}

func (s *span) add(t float64) {
	if math.IsNaN(t) {
		return
	}
	s.first = math.Min(s.first, t)
	s.last = math.Max(s.last, t)
}

func (s span) empty() bool {
	return s.first > s.last
}

// sweepPointEdge moves point p with velocity w, relative to a fixed edge that
// starts at q with unit direction dir, outward unit normal n and the given
// length. The edge is pushed outward by offset. Positions are taken at tMin.
// It returns the first time in [tMin, tMax] where p reaches the edge from the
// outside. Crossings of the edge line inside the edge extent go to cross.
func sweepPointEdge(p, w, q, dir, n Vector, length, offset, tMin, tMax float64, cross *span) (float64, bool) {
	rel := p.Sub(q)
	s0 := rel.Dot(n) - offset
	ds := w.Dot(n)
	if ds == 0 {
		return 0, false
	}

	tr := tMin - s0/ds
	if u := rel.Add(w.Mult(tr - tMin)).Dot(dir); u >= -ContactEpsilon && u <= length+ContactEpsilon {
		cross.add(tr)
	}

	if ds > -approachEpsilon || s0 < -ContactEpsilon {
		return 0, false
	}
	tc := math.Max(tr, tMin)
	if tc > tMax {
		return 0, false
	}
	u := rel.Add(w.Mult(tc - tMin)).Dot(dir)
	if u < -ContactEpsilon || u > length+ContactEpsilon {
		return 0, false
	}
	return tc, true
}

// sweepPointCircle moves point p with velocity w relative to a fixed circle.
// It returns the first time in [tMin, tMax] where p reaches the circle from
// the outside. Both crossings of the circle go to cross.
func sweepPointCircle(p, w, c Vector, r, tMin, tMax float64, cross *span) (float64, bool) {
	rel := p.Sub(c)
	a := w.LengthSq()
	if a == 0 {
		return 0, false
	}
	b := 2 * rel.Dot(w)
	cc := rel.LengthSq() - r*r

	disc := b*b - 4*a*cc
	if disc < 0 || math.IsNaN(disc) {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1 := tMin + (-b-sq)/(2*a)
	t2 := tMin + (-b+sq)/(2*a)
	cross.add(t1)
	cross.add(t2)

	tc := t1
	if cc < 0 {
		// already inside: only a contact when still touching the surface
		if rel.Length() < r-ContactEpsilon {
			return 0, false
		}
		tc = tMin
	}
	if tc < tMin || tc > tMax {
		return 0, false
	}
	relc := rel.Add(w.Mult(tc - tMin))
	if relc.Normalize().Dot(w) > -approachEpsilon {
		return 0, false
	}
	return tc, true
}

// overlapBoxBox runs a separating axis test on two boxes given by their
// centers and cached offsets.
func overlapBoxBox(pa Vector, a *sweptShape, pb Vector, b *sweptShape) bool {
	axes := [...]Vector{a.normals[0], a.normals[1], b.normals[0], b.normals[1]}
	for _, n := range axes {
		minA, maxA := projectBox(pa, a, n)
		minB, maxB := projectBox(pb, b, n)
		if maxA <= minB || maxB <= minA {
			return false
		}
	}
	return true
}

func projectBox(p Vector, s *sweptShape, n Vector) (float64, float64) {
	min, max := INFINITY, -INFINITY
	for _, c := range s.corners {
		d := p.Add(c).Dot(n)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

// overlapBoxCircle tests a box against a circle of radius r centered at c.
func overlapBoxCircle(pa Vector, a *sweptShape, c Vector, r float64) bool {
	rel := c.Sub(pa)
	hx, hy := a.lengths[0]/2, a.lengths[1]/2
	lx := Clamp(rel.Dot(a.dirs[0]), -hx, hx)
	ly := Clamp(rel.Dot(a.dirs[1]), -hy, hy)
	closest := a.dirs[0].Mult(lx).Add(a.dirs[1].Mult(ly))
	return rel.DistanceSq(closest) < r*r
}
