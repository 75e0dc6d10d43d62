package pacs

import "github.com/go-gl/mathgl/mgl64"

// Transform is a 2D affine transform. Primitives only ever use rigid ones:
// a yaw around the vertical axis plus a translation.
type Transform struct {
	a, b, c, d, tx, ty float64
}

func NewTransformTranspose(a, c, tx, b, d, ty float64) Transform {
	return Transform{a, b, c, d, tx, ty}
}

func NewTransformRotate(radians float64) Transform {
	rot := ForAngle(radians)
	return NewTransformTranspose(
		rot.X, -rot.Y, 0,
		rot.Y, rot.X, 0,
	)
}

func NewTransformRigid(translate Vector, radians float64) Transform {
	rot := ForAngle(radians)
	return NewTransformTranspose(
		rot.X, -rot.Y, translate.X,
		rot.Y, rot.X, translate.Y,
	)
}

func (t Transform) Point(p Vector) Vector {
	return Vector{X: t.a*p.X + t.c*p.Y + t.tx, Y: t.b*p.X + t.d*p.Y + t.ty}
}

// Angle is the yaw of a rigid transform.
func (t Transform) Angle() float64 {
	return Vector{t.a, t.b}.ToAngle()
}

// Place maps a local placement (position and yaw) through a rigid transform.
// The vertical component is offset by z.
func (t Transform) Place(pos mgl64.Vec3, yaw, z float64) (mgl64.Vec3, float64) {
	p := t.Point(V2(pos))
	return p.Vec3(pos.Z() + z), yaw + t.Angle()
}

// boxCorners lays out the four corners of a box of half extents hx, hy in
// counter clockwise order, rotated by the transform.
func (t Transform) boxCorners(hx, hy float64) [4]Vector {
	return [4]Vector{
		t.Point(Vector{-hx, -hy}),
		t.Point(Vector{hx, -hy}),
		t.Point(Vector{hx, hy}),
		t.Point(Vector{-hx, hy}),
	}
}
