package pacs

// reactionSide is one participant of a contact as the reaction sees it.
type reactionSide struct {
	reaction   ReactionType
	reacts     bool
	mass       float64
	absorption float64
}

func sideOf(wi *WorldImage, reacts bool) reactionSide {
	d := &wi.prim.desc
	return reactionSide{
		reaction:   d.Reaction,
		reacts:     reacts && d.Reaction != DoNothing,
		mass:       d.Mass,
		absorption: d.Absorption,
	}
}

// bounce is how much of the approaching normal speed is removed.
func (s reactionSide) bounce() float64 {
	if s.reaction == Reflexion {
		return 2 - s.absorption
	}
	return 1
}

func (s reactionSide) elastic() bool {
	return s.reacts && (s.reaction == Slide || s.reaction == Reflexion)
}

// reactPair returns the horizontal velocities of both sides after a contact.
// n0 points from side b toward side a. Stopping sides stop, sides that do not
// react keep their velocity. An elastic side facing a fixed one reacts alone
// against its final velocity; two elastic sides share the correction by mass.
func reactPair(va, vb, n0 Vector, a, b reactionSide) (Vector, Vector) {
	ra, rb := va, vb
	if a.reacts && a.reaction == Stop {
		ra = Vector{}
	}
	if b.reacts && b.reaction == Stop {
		rb = Vector{}
	}

	switch {
	case a.elastic() && b.elastic():
		vn := va.Sub(vb).Dot(n0)
		if vn >= 0 {
			return va, vb
		}
		total := a.mass + b.mass
		ra = va.Sub(n0.Mult(a.bounce() * vn * b.mass / total))
		rb = vb.Add(n0.Mult(b.bounce() * vn * a.mass / total))
	case a.elastic():
		ra = reactSolo(va, rb, n0, a)
	case b.elastic():
		rb = reactSolo(vb, ra, n0.Neg(), b)
	}
	return ra, rb
}

// reactSolo corrects v against an obstacle moving at other, n pointing from
// the obstacle toward the reacting side.
func reactSolo(v, other, n Vector, s reactionSide) Vector {
	vn := v.Sub(other).Dot(n)
	if vn >= 0 {
		return v
	}
	return v.Sub(n.Mult(s.bounce() * vn))
}

// reactSurface corrects v against a fixed terrain surface of normal n.
func reactSurface(v, n Vector, s reactionSide) Vector {
	if !s.reacts {
		return v
	}
	if s.reaction == Stop {
		return Vector{}
	}
	return reactSolo(v, Vector{}, n, s)
}
