package pacs

import "testing"

func side(r ReactionType) reactionSide {
	return reactionSide{reaction: r, reacts: r != DoNothing, mass: 1}
}

var still = reactionSide{reaction: Slide, mass: 1}

func TestReactPair_SlideAlone(t *testing.T) {
	n0 := Vector{-1, 0}

	va, vb := reactPair(Vector{1, 0}, Vector{}, n0, side(Slide), still)
	assertVector(t, Vector{}, va)
	assertVector(t, Vector{}, vb)

	va, _ = reactPair(Vector{1, 1}, Vector{}, n0, side(Slide), still)
	assertVector(t, Vector{0, 1}, va)
}

func TestReactPair_Reflexion(t *testing.T) {
	n0 := Vector{-1, 0}

	va, _ := reactPair(Vector{1, 0}, Vector{}, n0, side(Reflexion), still)
	assertVector(t, Vector{-1, 0}, va)

	s := side(Reflexion)
	s.absorption = 0.5
	va, _ = reactPair(Vector{1, 0}, Vector{}, n0, s, still)
	assertVector(t, Vector{-0.5, 0}, va)
}

func TestReactPair_Stop(t *testing.T) {
	va, vb := reactPair(Vector{1, 1}, Vector{-1, 0}, Vector{-1, 0}, side(Stop), side(Stop))
	assertVector(t, Vector{}, va)
	assertVector(t, Vector{}, vb)

	// the slider reacts against the final speed of the stopped side
	va, vb = reactPair(Vector{1, 0}, Vector{-1, 0}, Vector{-1, 0}, side(Stop), side(Slide))
	assertVector(t, Vector{}, va)
	assertVector(t, Vector{}, vb)
}

func TestReactPair_DoNothing(t *testing.T) {
	va, vb := reactPair(Vector{1, 0}, Vector{}, Vector{-1, 0}, side(DoNothing), still)
	assertVector(t, Vector{1, 0}, va)
	assertVector(t, Vector{}, vb)
}

func TestReactPair_SharedByMass(t *testing.T) {
	a, b := side(Slide), side(Slide)
	va, vb := reactPair(Vector{1, 0}, Vector{}, Vector{-1, 0}, a, b)
	assertVector(t, Vector{0.5, 0}, va)
	assertVector(t, Vector{0.5, 0}, vb)

	b.mass = 3
	va, vb = reactPair(Vector{1, 0}, Vector{}, Vector{-1, 0}, a, b)
	assertVector(t, Vector{0.25, 0}, va)
	assertVector(t, Vector{0.25, 0}, vb)
}

func TestReactPair_Separating(t *testing.T) {
	va, vb := reactPair(Vector{-1, 0}, Vector{}, Vector{-1, 0}, side(Slide), side(Slide))
	assertVector(t, Vector{-1, 0}, va)
	assertVector(t, Vector{}, vb)
}

func TestReactSurface(t *testing.T) {
	n := Vector{-1, 0}
	assertVector(t, Vector{0, 2}, reactSurface(Vector{3, 2}, n, side(Slide)))
	assertVector(t, Vector{-3, 2}, reactSurface(Vector{3, 2}, n, side(Reflexion)))
	assertVector(t, Vector{}, reactSurface(Vector{3, 2}, n, side(Stop)))
	assertVector(t, Vector{3, 2}, reactSurface(Vector{3, 2}, n, side(DoNothing)))
}
