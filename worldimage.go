package pacs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// imageHandle indexes a world image in the arena of its slot.
type imageHandle int32

const noImage imageHandle = -1

// WorldImage is the state of one primitive in one world image slot.
//
// Between evaluations pos is the position of the primitive. While its slot is
// evaluated a moving image follows initPos + speed * (t - initTime); reactions
// rebase that path at the contact time.
type WorldImage struct {
	prim   *Primitive
	slot   int
	handle imageHandle

	pos         mgl64.Vec3
	speed       mgl64.Vec3
	orientation float64

	// displacement requested by Move, turned into a speed by the next evaluation
	delta    mgl64.Vec3
	hasDelta bool

	initTime float64
	initPos  mgl64.Vec3
	moving   bool
	// launched is set when the path starts with a horizontal speed
	launched bool

	state dirtyState
	shape sweptShape

	// bb is valid over [bbBegin, bbEnd] for the bbMoving path
	bb             BB
	bbBegin, bbEnd float64
	bbMoving       bool

	// grid cells holding the image, unless oversized
	cells     [4]int32
	numCells  int
	oversized bool
	linked    bool

	modified   bool
	stamp      uint
	testTime   int
	gen        uint32
	frozen     bool
	moverIndex int
}

func (wi *WorldImage) init(prim *Primitive, slot int, handle imageHandle) {
	*wi = WorldImage{
		prim:       prim,
		slot:       slot,
		handle:     handle,
		state:      positionDirty,
		moverIndex: -1,
	}
}

func (wi *WorldImage) free() bool {
	return wi.prim == nil
}

func (wi *WorldImage) dirty(s dirtyState) {
	if s > wi.state {
		wi.state = s
	}
}

func (wi *WorldImage) setGlobalPosition(pos mgl64.Vec3) {
	wi.pos = pos
	wi.hasDelta = false
	wi.dirty(positionDirty)
}

func (wi *WorldImage) setSpeed(speed mgl64.Vec3) {
	wi.speed = speed
	wi.hasDelta = false
	wi.dirty(positionDirty)
}

func (wi *WorldImage) move(delta mgl64.Vec3) {
	wi.delta = delta
	wi.hasDelta = true
	wi.dirty(positionDirty)
}

func (wi *WorldImage) setOrientation(yaw float64) {
	wi.orientation = yaw
	wi.dirty(positionDirty)
}

// copyFrom takes the placement and movement of src.
func (wi *WorldImage) copyFrom(src *WorldImage) {
	wi.pos = src.pos
	wi.speed = src.speed
	wi.orientation = src.orientation
	wi.delta = src.delta
	wi.hasDelta = src.hasDelta
	wi.dirty(positionDirty)
}

// startMove puts the image on its path for an evaluation of deltaTime.
func (wi *WorldImage) startMove(deltaTime float64, index int) {
	if wi.hasDelta && deltaTime > 0 {
		wi.speed = wi.delta.Mul(1 / deltaTime)
	}
	wi.hasDelta = false
	wi.initTime = 0
	wi.initPos = wi.pos
	wi.moving = true
	wi.launched = !V2(wi.speed).IsZero()
	wi.testTime = 0
	wi.frozen = false
	wi.moverIndex = index
	wi.gen++
	wi.dirty(boundsDirty)
}

// finishMove commits the end of the path.
func (wi *WorldImage) finishMove(final mgl64.Vec3) {
	wi.pos = final
	wi.moving = false
	wi.moverIndex = -1
	wi.dirty(boundsDirty)
}

func (wi *WorldImage) velocity() mgl64.Vec3 {
	if wi.moving {
		return wi.speed
	}
	return mgl64.Vec3{}
}

func (wi *WorldImage) positionAt(t float64) mgl64.Vec3 {
	if !wi.moving {
		return wi.pos
	}
	return wi.initPos.Add(wi.speed.Mul(t - wi.initTime))
}

// rebase restarts the path at time t with a new speed.
func (wi *WorldImage) rebase(t float64, speed mgl64.Vec3) {
	wi.initPos = wi.positionAt(t)
	wi.initTime = t
	wi.speed = speed
	wi.gen++
	wi.testTime++
	wi.dirty(boundsDirty)
}

// freeze stops the image at time t for the rest of the evaluation.
func (wi *WorldImage) freeze(t float64) {
	wi.rebase(t, mgl64.Vec3{})
	wi.frozen = true
}

// update rebuilds the shape offsets when the position is dirty.
func (wi *WorldImage) update() {
	if wi.state != positionDirty {
		return
	}
	d := &wi.prim.desc
	if d.Kind == Box {
		wi.shape.setBox(d.Length[0], d.Length[1], wi.orientation)
	} else {
		wi.shape.kind = Cylinder
		wi.shape.radius = d.Radius
	}
	wi.shape.id = wi.prim.id
	wi.shape.height = d.Height
	wi.state = boundsDirty
}

// swept returns the current path of the image for the narrow phase.
func (wi *WorldImage) swept() *sweptShape {
	wi.update()
	s := &wi.shape
	if wi.moving {
		s.pos, s.t0, s.vel = V2(wi.initPos), wi.initTime, V2(wi.speed)
		s.z, s.zVel = wi.initPos.Z(), wi.speed.Z()
	} else {
		s.pos, s.t0, s.vel = V2(wi.pos), 0, Vector{}
		s.z, s.zVel = wi.pos.Z(), 0
	}
	return s
}

// footprintBB bounds the shape centered at c.
func (wi *WorldImage) footprintBB(c Vector) BB {
	if wi.shape.kind == Cylinder {
		return NewBBForCircle(c, wi.shape.radius)
	}
	var hx, hy float64
	for _, corner := range wi.shape.corners {
		hx = math.Max(hx, math.Abs(corner.X))
		hy = math.Max(hy, math.Abs(corner.Y))
	}
	return NewBBForExtents(c, hx, hy)
}

// boundingBox returns the box covering the image over [begin, end].
func (wi *WorldImage) boundingBox(begin, end float64) BB {
	wi.update()
	if wi.state == clean && wi.bbBegin == begin && wi.bbEnd == end && wi.bbMoving == wi.moving {
		return wi.bb
	}
	bb := wi.footprintBB(V2(wi.positionAt(begin)))
	if wi.moving {
		bb = bb.Merge(wi.footprintBB(V2(wi.positionAt(end))))
	}
	wi.bb, wi.bbBegin, wi.bbEnd, wi.bbMoving = bb, begin, end, wi.moving
	wi.state = clean
	return bb
}

// widen adds the path over [begin, end] to the cached box, keeping the area
// the image already covers in the grid.
func (wi *WorldImage) widen(begin, end float64) {
	prev := wi.bb
	wi.boundingBox(begin, end)
	wi.bb = wi.bb.Merge(prev)
}

// footprint returns the local footprint handed to terrain retrievers.
func (wi *WorldImage) footprint() Footprint {
	wi.update()
	s := &wi.shape
	return Footprint{
		Kind:    s.kind,
		Radius:  s.radius,
		Height:  s.height,
		Corners: s.corners,
		Dirs:    s.dirs,
		Normals: s.normals,
		Lengths: s.lengths,
	}
}

func (wi *WorldImage) FinalPosition() mgl64.Vec3 {
	return wi.pos
}

func (wi *WorldImage) Speed() mgl64.Vec3 {
	return wi.speed
}

func (wi *WorldImage) Orientation() float64 {
	return wi.orientation
}

func (wi *WorldImage) Primitive() *Primitive {
	return wi.prim
}
