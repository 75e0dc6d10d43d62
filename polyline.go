package pacs

import "math"

// PolyLine is an ordered run of vertices. It is closed when the last vertex
// repeats the first one.
type PolyLine struct {
	Verts []Vector
}

// PolyLineSet gathers the contour segments of a march into polylines.
type PolyLineSet struct {
	Lines []*PolyLine
}

func next(i, count int) int {
	return (i + 1) % count
}

func (pl *PolyLine) Push(v Vector) *PolyLine {
	pl.Verts = append(pl.Verts, v)
	return pl
}

func (pl *PolyLine) Enqueue(v Vector) *PolyLine {
	pl.Verts = append([]Vector{v}, pl.Verts...)
	return pl
}

func (pl *PolyLine) IsClosed() bool {
	return len(pl.Verts) > 1 && pl.Verts[0].Equal(pl.Verts[len(pl.Verts)-1])
}

func (pl *PolyLine) isShort(count, start, end int, min float64) bool {
	var length float64
	for i := start; i != end; i = next(i, count) {
		length += pl.Verts[i].Distance(pl.Verts[next(i, count)])
		if length > min {
			return false
		}
	}
	return true
}

// douglasPeucker keeps the vertices farther than tol from the chord between
// start and end, recursively.
func (pl *PolyLine) douglasPeucker(reduced *PolyLine, length, start, end int, min, tol float64) *PolyLine {
	// adjacent points
	if (end-start+length)%length < 2 {
		return reduced
	}

	a := pl.Verts[start]
	b := pl.Verts[end]
	if a.Near(b, min) && pl.isShort(length, start, end, min) {
		return reduced
	}

	var max float64
	maxi := start

	n := b.Sub(a).Perp().Normalize()
	d := n.Dot(a)
	for i := next(start, length); i != end; i = next(i, length) {
		if dist := math.Abs(n.Dot(pl.Verts[i]) - d); dist > max {
			max = dist
			maxi = i
		}
	}

	if max > tol {
		reduced = pl.douglasPeucker(reduced, length, start, maxi, min, tol)
		reduced.Push(pl.Verts[maxi])
		reduced = pl.douglasPeucker(reduced, length, maxi, end, min, tol)
	}
	return reduced
}

// SimplifyCurves reduces the vertex count. The result never strays farther
// than tol from the original line.
func (pl *PolyLine) SimplifyCurves(tol float64) *PolyLine {
	reduced := &PolyLine{}
	if len(pl.Verts) < 3 {
		reduced.Verts = append(reduced.Verts, pl.Verts...)
		return reduced
	}
	min := tol / 2.0

	if pl.IsClosed() {
		count := len(pl.Verts) - 1
		start, end := loopIndexes(pl.Verts, count)

		reduced.Push(pl.Verts[start])
		reduced = pl.douglasPeucker(reduced, count, start, end, min, tol)
		reduced.Push(pl.Verts[end])
		reduced = pl.douglasPeucker(reduced, count, end, start, min, tol)
		reduced.Push(pl.Verts[start])
	} else {
		reduced.Push(pl.Verts[0])
		reduced = pl.douglasPeucker(reduced, len(pl.Verts), 0, len(pl.Verts)-1, min, tol)
		reduced.Push(pl.Verts[len(pl.Verts)-1])
	}
	return reduced
}

// loopIndexes returns the lowest and highest vertices of a loop, which are
// always kept by the simplification.
func loopIndexes(verts []Vector, count int) (int, int) {
	start, end := 0, 0
	min, max := verts[0], verts[0]
	for i := 0; i < count; i++ {
		v := verts[i]
		if v.X < min.X || (v.X == min.X && v.Y < min.Y) {
			min = v
			start = i
		} else if v.X > max.X || (v.X == max.X && v.Y > max.Y) {
			max = v
			end = i
		}
	}
	return start, end
}

func (pls *PolyLineSet) findEnds(v Vector) int {
	for i, line := range pls.Lines {
		if len(line.Verts) > 0 && line.Verts[len(line.Verts)-1].Equal(v) {
			return i
		}
	}
	return -1
}

func (pls *PolyLineSet) findStarts(v Vector) int {
	for i, line := range pls.Lines {
		if len(line.Verts) > 0 && line.Verts[0].Equal(v) {
			return i
		}
	}
	return -1
}

func (pls *PolyLineSet) Push(v *PolyLine) {
	pls.Lines = append(pls.Lines, v)
}

// join appends line after to line before and drops it from the set.
func (pls *PolyLineSet) join(before, after int) {
	pls.Lines[before].Verts = append(pls.Lines[before].Verts, pls.Lines[after].Verts...)
	copy(pls.Lines[after:], pls.Lines[after+1:])
	pls.Lines = pls.Lines[:len(pls.Lines)-1]
}

// PolyLineCollectSegment adds the segment v0 v1 to the set. It either starts
// a new polyline, extends or closes one, or joins two of them.
func PolyLineCollectSegment(v0, v1 Vector, pls *PolyLineSet) {
	before := pls.findEnds(v0)
	after := pls.findStarts(v1)

	switch {
	case before >= 0 && after >= 0:
		if before == after {
			pls.Lines[before].Push(v1)
		} else {
			pls.join(before, after)
		}
	case before >= 0:
		pls.Lines[before].Push(v1)
	case after >= 0:
		pls.Lines[after].Enqueue(v0)
	default:
		pls.Push(&PolyLine{Verts: []Vector{v0, v1}})
	}
}
