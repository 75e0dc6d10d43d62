package pacs

import (
	"fmt"
	"math"
	"strings"
)

const INFINITY = math.MaxFloat64

const (
	// MaxWorldImages is the number of slots a SlotSet can address.
	MaxWorldImages = 64

	// ContactEpsilon is the distance under which two features touch.
	ContactEpsilon = 1e-6
	// approachEpsilon is the normal speed under which features are not approaching.
	approachEpsilon = 1e-9
)

// ShapeKind is the closed set of primitive shapes.
type ShapeKind uint8

const (
	Box ShapeKind = iota
	Cylinder
)

var shapeKindNames = [...]string{"box", "cylinder"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

func (k ShapeKind) MarshalText() ([]byte, error) {
	if int(k) >= len(shapeKindNames) {
		return nil, fmt.Errorf("%w: shape kind %d", ErrInvalidPrimitive, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *ShapeKind) UnmarshalText(text []byte) error {
	for i, name := range shapeKindNames {
		if strings.EqualFold(name, string(text)) {
			*k = ShapeKind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: shape kind %q", ErrInvalidPrimitive, text)
}

// ReactionType is what a primitive does to its own speed when it hits an obstacle.
type ReactionType uint8

const (
	// Slide removes the speed component going into the obstacle.
	Slide ReactionType = iota
	// Reflexion bounces off the obstacle, scaled by 1 - Absorption.
	Reflexion
	// Stop zeroes the speed.
	Stop
	// DoNothing keeps going. The contact is still reported.
	DoNothing
)

var reactionNames = [...]string{"slide", "reflexion", "stop", "nothing"}

func (r ReactionType) String() string {
	if int(r) < len(reactionNames) {
		return reactionNames[r]
	}
	return fmt.Sprintf("ReactionType(%d)", uint8(r))
}

func (r ReactionType) MarshalText() ([]byte, error) {
	if int(r) >= len(reactionNames) {
		return nil, fmt.Errorf("%w: reaction %d", ErrInvalidPrimitive, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *ReactionType) UnmarshalText(text []byte) error {
	for i, name := range reactionNames {
		if strings.EqualFold(name, string(text)) {
			*r = ReactionType(i)
			return nil
		}
	}
	return fmt.Errorf("%w: reaction %q", ErrInvalidPrimitive, text)
}

// TriggerType selects which overlap events a trigger primitive reports.
// The zero value is a regular, physical primitive.
type TriggerType uint8

const (
	NotATrigger    TriggerType = 0
	EnterTrigger   TriggerType = 1 << 0
	ExitTrigger    TriggerType = 1 << 1
	OverlapTrigger TriggerType = 1 << 2
)

var triggerNames = [...]string{"enter", "exit", "overlap"}

func (t TriggerType) IsTrigger() bool {
	return t != NotATrigger
}

func (t TriggerType) String() string {
	if t == NotATrigger {
		return ""
	}
	var names []string
	for i, name := range triggerNames {
		if t&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

func (t TriggerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TriggerType) UnmarshalText(text []byte) error {
	*t = NotATrigger
	for _, field := range strings.Split(string(text), ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		found := false
		for i, name := range triggerNames {
			if strings.EqualFold(name, field) {
				*t |= 1 << i
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: trigger %q", ErrInvalidPrimitive, field)
		}
	}
	return nil
}

// TriggerEvent is the kind of a reported trigger overlap.
type TriggerEvent uint8

const (
	TriggerEnter TriggerEvent = iota
	TriggerExit
	TriggerInside
)

func (e TriggerEvent) String() string {
	switch e {
	case TriggerEnter:
		return "enter"
	case TriggerExit:
		return "exit"
	default:
		return "inside"
	}
}

// SlotKind is fixed per world image slot. Static slots never move during the
// evaluation of another slot and always win ties.
type SlotKind uint8

const (
	Dynamic SlotKind = iota
	Static
)

func (k SlotKind) String() string {
	if k == Static {
		return "static"
	}
	return "dynamic"
}

// dirtyState tracks which cached data of a world image is stale.
type dirtyState uint8

const (
	clean dirtyState = iota
	// boundsDirty: the bounding box needs a rebuild, box offsets are valid.
	boundsDirty
	// positionDirty: everything needs a rebuild.
	positionDirty
)

// FeatureKind identifies the part of a shape that made a contact.
type FeatureKind uint8

const (
	FeatureVertex FeatureKind = iota
	FeatureEdge
	FeatureSurface
)

type Feature struct {
	Kind  FeatureKind
	Index int
}

func (f Feature) String() string {
	switch f.Kind {
	case FeatureVertex:
		return fmt.Sprintf("vertex %d", f.Index)
	case FeatureEdge:
		return fmt.Sprintf("edge %d", f.Index)
	default:
		return "surface"
	}
}
