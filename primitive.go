package pacs

import (
	"fmt"
	"math"
	"math/bits"
)

// PrimitiveID identifies a primitive for the lifetime of its container.
type PrimitiveID uint32

// SlotSet is the set of world image slots a primitive may be inserted in.
type SlotSet uint64

// SlotRange returns the set of count slots starting at first.
func SlotRange(first, count int) SlotSet {
	var s SlotSet
	for i := first; i < first+count && i < MaxWorldImages; i++ {
		if i >= 0 {
			s |= 1 << uint(i)
		}
	}
	return s
}

// Slots returns the set holding the given slots.
func Slots(slots ...int) SlotSet {
	var s SlotSet
	for _, i := range slots {
		if i >= 0 && i < MaxWorldImages {
			s |= 1 << uint(i)
		}
	}
	return s
}

func (s SlotSet) Has(slot int) bool {
	return slot >= 0 && slot < MaxWorldImages && s&(1<<uint(slot)) != 0
}

func (s SlotSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Each calls f for every slot in ascending order.
func (s SlotSet) Each(f func(slot int)) {
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		f(bits.TrailingZeros64(rest))
	}
}

// PrimitiveDesc describes the immutable part of a primitive.
type PrimitiveDesc struct {
	Kind ShapeKind `yaml:"kind" msgpack:"kind"`
	// Length holds the full sizes of a box along its local X and Y axes.
	Length [2]float64 `yaml:"length,flow" msgpack:"length"`
	Radius float64    `yaml:"radius" msgpack:"radius"`
	Height float64    `yaml:"height" msgpack:"height"`

	Reaction ReactionType `yaml:"reaction" msgpack:"reaction"`
	Trigger  TriggerType  `yaml:"trigger" msgpack:"trigger"`

	// A primitive hits another when its CollisionMask shares a bit with the
	// other's OcclusionMask and the other is an obstacle.
	CollisionMask uint32 `yaml:"collision_mask" msgpack:"collision_mask"`
	OcclusionMask uint32 `yaml:"occlusion_mask" msgpack:"occlusion_mask"`
	Obstacle      bool   `yaml:"obstacle" msgpack:"obstacle"`

	// Absorption is the share of normal speed lost on a Reflexion.
	Absorption float64 `yaml:"absorption" msgpack:"absorption"`
	Mass       float64 `yaml:"mass" msgpack:"mass"`
	UserData   uint64  `yaml:"user_data" msgpack:"user_data"`
}

// NewBoxDesc describes an obstacle box of the given full sizes.
func NewBoxDesc(lengthX, lengthY, height float64) PrimitiveDesc {
	return PrimitiveDesc{
		Kind:          Box,
		Length:        [2]float64{lengthX, lengthY},
		Height:        height,
		Reaction:      Slide,
		CollisionMask: math.MaxUint32,
		OcclusionMask: math.MaxUint32,
		Obstacle:      true,
		Mass:          1,
	}
}

// NewCylinderDesc describes an obstacle cylinder.
func NewCylinderDesc(radius, height float64) PrimitiveDesc {
	return PrimitiveDesc{
		Kind:          Cylinder,
		Radius:        radius,
		Height:        height,
		Reaction:      Slide,
		CollisionMask: math.MaxUint32,
		OcclusionMask: math.MaxUint32,
		Obstacle:      true,
		Mass:          1,
	}
}

// Size is the diameter of the primitive footprint whatever its orientation.
func (d *PrimitiveDesc) Size() float64 {
	if d.Kind == Box {
		return math.Hypot(d.Length[0], d.Length[1])
	}
	return 2 * d.Radius
}

// validate rejects what the narrow phase cannot test.
func (d *PrimitiveDesc) validate(maxSize float64) error {
	switch d.Kind {
	case Box:
		if !(d.Length[0] > 0) || !(d.Length[1] > 0) {
			return fmt.Errorf("%w: box length %v", ErrDegenerateShape, d.Length)
		}
	case Cylinder:
		if !(d.Radius > 0) {
			return fmt.Errorf("%w: cylinder radius %v", ErrDegenerateShape, d.Radius)
		}
	default:
		return fmt.Errorf("%w: shape kind %d", ErrInvalidPrimitive, d.Kind)
	}
	if !(d.Height > 0) {
		return fmt.Errorf("%w: height %v", ErrDegenerateShape, d.Height)
	}
	if d.Reaction > DoNothing {
		return fmt.Errorf("%w: reaction %d", ErrInvalidPrimitive, d.Reaction)
	}
	if d.Absorption < 0 || d.Absorption > 1 {
		return fmt.Errorf("%w: absorption %v", ErrInvalidPrimitive, d.Absorption)
	}
	if !(d.Mass > 0) {
		return fmt.Errorf("%w: mass %v", ErrInvalidPrimitive, d.Mass)
	}
	if size := d.Size(); size > maxSize {
		return fmt.Errorf("%w: %v > %v", ErrPrimitiveTooLarge, size, maxSize)
	}
	return nil
}

// Primitive is a shape owned by a MoveContainer, plus the handles of its world
// images.
type Primitive struct {
	id    PrimitiveID
	desc  PrimitiveDesc
	slots SlotSet

	// handle of the world image in each slot, noImage when absent
	images []imageHandle
	// only set on non collisionable primitives
	private *WorldImage
}

func (p *Primitive) ID() PrimitiveID {
	return p.id
}

func (p *Primitive) Desc() PrimitiveDesc {
	return p.desc
}

func (p *Primitive) Slots() SlotSet {
	return p.slots
}

func (p *Primitive) IsCollisionable() bool {
	return p.private == nil
}

// InsertedIn reports whether the primitive has a world image in slot.
func (p *Primitive) InsertedIn(slot int) bool {
	return slot >= 0 && slot < len(p.images) && p.images[slot] != noImage
}

func (p *Primitive) isTrigger() bool {
	return p.desc.Trigger.IsTrigger()
}

// blockedBy reports whether other is an obstacle for p.
func (p *Primitive) blockedBy(other *Primitive) bool {
	return !p.isTrigger() && !other.isTrigger() &&
		other.desc.Obstacle && p.desc.CollisionMask&other.desc.OcclusionMask != 0
}

// reactsTo reports whether hitting other changes the movement of p.
func (p *Primitive) reactsTo(other *Primitive) bool {
	return p.desc.Reaction != DoNothing && p.blockedBy(other)
}

// collidesWith reports whether a contact between p and other is reported.
func (p *Primitive) collidesWith(other *Primitive) bool {
	return p.blockedBy(other) || other.blockedBy(p)
}

// triggeredBy reports whether p is a trigger that reports overlaps with other.
func (p *Primitive) triggeredBy(other *Primitive) bool {
	return p.isTrigger() && p.desc.CollisionMask&other.desc.OcclusionMask != 0
}
