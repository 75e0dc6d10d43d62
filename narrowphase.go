package pacs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// sweptShape is a primitive frozen on a linear path for one narrow phase test.
type sweptShape struct {
	id   PrimitiveID
	kind ShapeKind

	// center at time t0, and its horizontal velocity
	pos Vector
	t0  float64
	vel Vector

	// bottom of the shape at t0, vertical speed and height
	z, zVel, height float64

	radius float64

	// box offsets from the center, counter clockwise. Edge i goes from
	// corner i to corner i+1.
	corners [4]Vector
	dirs    [4]Vector
	normals [4]Vector
	lengths [4]float64
}

func (s *sweptShape) at(t float64) Vector {
	return s.pos.Add(s.vel.Mult(t - s.t0))
}

func (s *sweptShape) zAt(t float64) float64 {
	return s.z + s.zVel*(t-s.t0)
}

// setBox fills the box caches for full sizes lx, ly and a yaw.
func (s *sweptShape) setBox(lx, ly, yaw float64) {
	s.kind = Box
	s.corners = NewTransformRotate(yaw).boxCorners(lx/2, ly/2)
	for i := range s.corners {
		edge := s.corners[(i+1)%4].Sub(s.corners[i])
		s.lengths[i] = edge.Length()
		s.dirs[i] = edge.Normalize()
		s.normals[i] = s.dirs[i].ReversePerp()
	}
}

// verticalSpan returns the open time interval where both shapes share
// height. lo >= hi when they never do.
func verticalSpan(a, b *sweptShape) (lo, hi float64) {
	// a is above the bottom of b minus its height and below the top of b
	dz := a.zAt(0) - b.zAt(0)
	dv := a.zVel - b.zVel
	if dv == 0 {
		if -a.height < dz && dz < b.height {
			return -INFINITY, INFINITY
		}
		return INFINITY, -INFINITY
	}
	t1 := (-a.height - dz) / dv
	t2 := (b.height - dz) / dv
	return math.Min(t1, t2), math.Max(t1, t2)
}

// evalCollision finds the first contact between a and b in [timeMin, timeMax].
// Only the part of the interval where the shapes share height is tested; a
// shape coming from above or below onto an overlapping one is not a contact.
// first and last bound the time interval where the shapes overlap on their
// unbounded paths; first > last when they never do.
func evalCollision(a, b *sweptShape, desc *CollisionDesc, timeMin, timeMax float64, testTime, maxTestIteration int) (collided bool, first, last float64) {
	zLo, zHi := verticalSpan(a, b)
	lo, hi := math.Max(timeMin, zLo), math.Min(timeMax, zHi)
	if !(lo < hi || lo == hi && zLo < lo && lo < zHi) {
		return false, INFINITY, -INFINITY
	}

	var cross span
	switch {
	case a.kind == Box && b.kind == Box:
		collided, cross = evalBoxOverBox(a, b, desc, lo, hi)
	case a.kind == Box && b.kind == Cylinder:
		collided, cross = evalBoxOverCylinder(a, b, desc, lo, hi)
	case a.kind == Cylinder && b.kind == Box:
		collided, cross = evalBoxOverCylinder(b, a, desc, lo, hi)
		desc.swap()
	default:
		collided, cross = evalCylinderOverCylinder(a, b, desc, lo, hi)
	}

	if cross.empty() && overlapAt(a, b, lo) {
		cross = fullSpan()
	}
	cross.first = math.Max(cross.first, zLo)
	cross.last = math.Min(cross.last, zHi)
	if collided && testTime >= maxTestIteration {
		desc.ContactTime = timeMin
	}
	return collided, cross.first, cross.last
}

func overlapAt(a, b *sweptShape, t float64) bool {
	pa, pb := a.at(t), b.at(t)
	switch {
	case a.kind == Box && b.kind == Box:
		return overlapBoxBox(pa, a, pb, b)
	case a.kind == Box:
		return overlapBoxCircle(pa, a, pb, b.radius)
	case b.kind == Box:
		return overlapBoxCircle(pb, b, pa, a.radius)
	default:
		r := a.radius + b.radius
		return pa.DistanceSq(pb) < r*r
	}
}

// evalBoxOverBox tests the vertices of each box against the edges of the
// other.
func evalBoxOverBox(a, b *sweptShape, desc *CollisionDesc, timeMin, timeMax float64) (bool, span) {
	w := a.vel.Sub(b.vel)
	pa, pb := a.at(timeMin), b.at(timeMin)
	cross := emptySpan()
	best := INFINITY

	for i := range a.corners {
		p := pa.Add(a.corners[i])
		for j := range b.corners {
			q := pb.Add(b.corners[j])
			t, ok := sweepPointEdge(p, w, q, b.dirs[j], b.normals[j], b.lengths[j], 0, timeMin, timeMax, &cross)
			if ok && t < best && penetrates(a, b, t, w, b.normals[j]) {
				best = t
				desc.setNormal(b.normals[j])
				desc.Feature0 = Feature{FeatureVertex, i}
				desc.Feature1 = Feature{FeatureEdge, j}
				desc.ContactPos = a.at(t).Add(a.corners[i]).Vec3(a.zAt(t))
			}
		}
	}

	for i := range b.corners {
		p := pb.Add(b.corners[i])
		for j := range a.corners {
			q := pa.Add(a.corners[j])
			t, ok := sweepPointEdge(p, w.Neg(), q, a.dirs[j], a.normals[j], a.lengths[j], 0, timeMin, timeMax, &cross)
			if ok && t < best && penetrates(a, b, t, w, a.normals[j].Neg()) {
				best = t
				desc.setNormal(a.normals[j].Neg())
				desc.Feature0 = Feature{FeatureEdge, j}
				desc.Feature1 = Feature{FeatureVertex, i}
				desc.ContactPos = b.at(t).Add(b.corners[i]).Vec3(b.zAt(t))
			}
		}
	}

	return finishDesc(a, b, desc, best, timeMax), cross
}

// penetrates rejects vertex on edge contacts at the end of an edge where the
// boxes only slide past each other. n points from b toward a.
func penetrates(a, b *sweptShape, t float64, w, n Vector) bool {
	vn := -w.Dot(n)
	return overlapAt(a, b, t+ContactEpsilon/math.Max(vn, approachEpsilon))
}

// evalBoxOverCylinder tests the box vertices against the cylinder, then the
// cylinder center against the box edges pushed out by the radius.
func evalBoxOverCylinder(a, b *sweptShape, desc *CollisionDesc, timeMin, timeMax float64) (bool, span) {
	w := a.vel.Sub(b.vel)
	pa, pb := a.at(timeMin), b.at(timeMin)
	cross := emptySpan()
	best := INFINITY

	for i := range a.corners {
		p := pa.Add(a.corners[i])
		t, ok := sweepPointCircle(p, w, pb, b.radius, timeMin, timeMax, &cross)
		if ok && t < best {
			best = t
			vertex := a.at(t).Add(a.corners[i])
			desc.setNormal(vertex.Sub(b.at(t)).Normalize())
			desc.Feature0 = Feature{FeatureVertex, i}
			desc.Feature1 = Feature{FeatureSurface, 0}
			desc.ContactPos = vertex.Vec3(a.zAt(t))
		}
	}

	for j := range a.corners {
		q := pa.Add(a.corners[j])
		t, ok := sweepPointEdge(pb, w.Neg(), q, a.dirs[j], a.normals[j], a.lengths[j], b.radius, timeMin, timeMax, &cross)
		if ok && t < best {
			best = t
			desc.setNormal(a.normals[j].Neg())
			desc.Feature0 = Feature{FeatureEdge, j}
			desc.Feature1 = Feature{FeatureSurface, 0}
			desc.ContactPos = b.at(t).Add(a.normals[j].Mult(-b.radius)).Vec3(b.zAt(t))
		}
	}

	return finishDesc(a, b, desc, best, timeMax), cross
}

// evalCylinderOverCylinder solves the distance between both axes against the
// sum of the radii.
func evalCylinderOverCylinder(a, b *sweptShape, desc *CollisionDesc, timeMin, timeMax float64) (bool, span) {
	w := a.vel.Sub(b.vel)
	cross := emptySpan()

	t, ok := sweepPointCircle(a.at(timeMin), w, b.at(timeMin), a.radius+b.radius, timeMin, timeMax, &cross)
	if !ok {
		return false, cross
	}
	n := a.at(t).Sub(b.at(t)).Normalize()
	desc.setNormal(n)
	desc.Feature0 = Feature{FeatureSurface, 0}
	desc.Feature1 = Feature{FeatureSurface, 0}
	desc.ContactPos = b.at(t).Add(n.Mult(b.radius)).Vec3(b.zAt(t))
	return finishDesc(a, b, desc, t, timeMax), cross
}

func finishDesc(a, b *sweptShape, desc *CollisionDesc, best, timeMax float64) bool {
	if best > timeMax {
		return false
	}
	desc.Primitive0 = a.id
	desc.Primitive1 = b.id
	desc.ContactTime = best
	return true
}

// contactHeight is the vertical position reported for terrain contacts.
func contactHeight(s *sweptShape, t float64) mgl64.Vec3 {
	return s.at(t).Vec3(s.zAt(t))
}
