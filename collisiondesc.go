package pacs

import "github.com/go-gl/mathgl/mgl64"

// CollisionDesc is what a positive narrow phase test produces.
type CollisionDesc struct {
	Primitive0, Primitive1 PrimitiveID

	// ContactTime is relative to the start of the evaluation.
	ContactTime float64
	ContactPos  mgl64.Vec3
	// ContactNormal0 is the unit normal primitive 0 reacts on. It points
	// from primitive 1 toward primitive 0. ContactNormal1 is its opposite.
	ContactNormal0, ContactNormal1 Vector

	// Feature0 and Feature1 are the vertex, edge or surface of each
	// primitive that made the contact.
	Feature0, Feature1 Feature
}

func (d *CollisionDesc) setNormal(n0 Vector) {
	d.ContactNormal0 = n0
	d.ContactNormal1 = n0.Neg()
}

// swap exchanges the roles of both primitives.
func (d *CollisionDesc) swap() {
	d.Primitive0, d.Primitive1 = d.Primitive1, d.Primitive0
	d.ContactNormal0, d.ContactNormal1 = d.ContactNormal1, d.ContactNormal0
	d.Feature0, d.Feature1 = d.Feature1, d.Feature0
}

// CollisionInfo is one contact processed during the last evaluation.
type CollisionInfo struct {
	CollisionDesc
	// Static is set when the other side belongs to a static slot or the terrain.
	Static bool
	// Terrain is set for contacts against the retriever; Surface is then valid.
	Terrain bool
	Surface SurfaceDesc
}

// TriggerInfo is a trigger overlap event of the last evaluation.
type TriggerInfo struct {
	// Object0 and Object1 carry the UserData of both primitives.
	Object0, Object1       uint64
	Primitive0, Primitive1 PrimitiveID
	Type                   TriggerEvent
}
