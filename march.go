package pacs

// MarchSegmentFunc receives each contour segment found by a march.
type MarchSegmentFunc func(v0, v1 Vector, set *PolyLineSet)

// MarchSampleFunc samples the scalar field being contoured.
type MarchSampleFunc func(point Vector) float64

type marchCellFunc func(threshold, a, b, c, d, x0, x1, y0, y1 float64, segment MarchSegmentFunc, set *PolyLineSet)

// marchCells walks a grid of samples over bb, caching one row of samples.
func marchCells(bb BB, xSamples, ySamples int, threshold float64, segment MarchSegmentFunc, set *PolyLineSet, sample MarchSampleFunc, cell marchCellFunc) {
	xDenom := 1.0 / float64(xSamples-1)
	yDenom := 1.0 / float64(ySamples-1)

	buffer := make([]float64, xSamples)
	for i := 0; i < xSamples; i++ {
		buffer[i] = sample(Vector{Lerp(bb.L, bb.R, float64(i)*xDenom), bb.B})
	}

	for j := 0; j < ySamples-1; j++ {
		y0 := Lerp(bb.B, bb.T, float64(j)*yDenom)
		y1 := Lerp(bb.B, bb.T, float64(j+1)*yDenom)

		b := buffer[0]
		d := sample(Vector{bb.L, y1})
		buffer[0] = d

		for i := 0; i < xSamples-1; i++ {
			x0 := Lerp(bb.L, bb.R, float64(i)*xDenom)
			x1 := Lerp(bb.L, bb.R, float64(i+1)*xDenom)

			a := b
			b = buffer[i+1]
			c := d
			d = sample(Vector{x1, y1})
			buffer[i+1] = d

			cell(threshold, a, b, c, d, x0, x1, y0, y1, segment, set)
		}
	}
}

func seg(v0, v1 Vector, segment MarchSegmentFunc, set *PolyLineSet) {
	if !v0.Equal(v1) {
		segment(v1, v0, set)
	}
}

func midlerp(x0, x1, s0, s1, t float64) float64 {
	return Lerp(x0, x1, (t-s0)/(s1-s0))
}

// cellCase packs which corners are above the threshold.
func cellCase(t, a, b, c, d float64) int {
	n := 0
	for i, s := range [4]float64{a, b, c, d} {
		if s > t {
			n |= 1 << i
		}
	}
	return n
}

func marchCellSoft(t, a, b, c, d, x0, x1, y0, y1 float64, segment MarchSegmentFunc, set *PolyLineSet) {
	left := Vector{x0, midlerp(y0, y1, a, c, t)}
	right := Vector{x1, midlerp(y0, y1, b, d, t)}
	bottom := Vector{midlerp(x0, x1, a, b, t), y0}
	top := Vector{midlerp(x0, x1, c, d, t), y1}

	switch cellCase(t, a, b, c, d) {
	case 0x1:
		seg(left, bottom, segment, set)
	case 0x2:
		seg(bottom, right, segment, set)
	case 0x3:
		seg(left, right, segment, set)
	case 0x4:
		seg(top, left, segment, set)
	case 0x5:
		seg(top, bottom, segment, set)
	case 0x6:
		seg(bottom, right, segment, set)
		seg(top, left, segment, set)
	case 0x7:
		seg(top, right, segment, set)
	case 0x8:
		seg(right, top, segment, set)
	case 0x9:
		seg(left, bottom, segment, set)
		seg(right, top, segment, set)
	case 0xA:
		seg(bottom, top, segment, set)
	case 0xB:
		seg(left, top, segment, set)
	case 0xC:
		seg(right, left, segment, set)
	case 0xD:
		seg(right, bottom, segment, set)
	case 0xE:
		seg(bottom, left, segment, set)
	}
}

// MarchSoft traces an interpolated contour of the sampled field along the
// threshold, with xSamples by ySamples samples spread over bb.
func MarchSoft(bb BB, xSamples, ySamples int, threshold float64, segment MarchSegmentFunc, set *PolyLineSet, sample MarchSampleFunc) {
	marchCells(bb, xSamples, ySamples, threshold, segment, set, sample, marchCellSoft)
}

func segs(a, b, c Vector, segment MarchSegmentFunc, set *PolyLineSet) {
	seg(b, c, segment, set)
	seg(a, b, segment, set)
}

func marchCellHard(t, a, b, c, d, x0, x1, y0, y1 float64, segment MarchSegmentFunc, set *PolyLineSet) {
	xm := Lerp(x0, x1, 0.5)
	ym := Lerp(y0, y1, 0.5)
	mid := Vector{xm, ym}

	switch cellCase(t, a, b, c, d) {
	case 0x1:
		segs(Vector{x0, ym}, mid, Vector{xm, y0}, segment, set)
	case 0x2:
		segs(Vector{xm, y0}, mid, Vector{x1, ym}, segment, set)
	case 0x3:
		seg(Vector{x0, ym}, Vector{x1, ym}, segment, set)
	case 0x4:
		segs(Vector{xm, y1}, mid, Vector{x0, ym}, segment, set)
	case 0x5:
		seg(Vector{xm, y1}, Vector{xm, y0}, segment, set)
	case 0x6:
		segs(Vector{xm, y0}, mid, Vector{x0, ym}, segment, set)
		segs(Vector{xm, y1}, mid, Vector{x1, ym}, segment, set)
	case 0x7:
		segs(Vector{xm, y1}, mid, Vector{x1, ym}, segment, set)
	case 0x8:
		segs(Vector{x1, ym}, mid, Vector{xm, y1}, segment, set)
	case 0x9:
		segs(Vector{x1, ym}, mid, Vector{xm, y0}, segment, set)
		segs(Vector{x0, ym}, mid, Vector{xm, y1}, segment, set)
	case 0xA:
		seg(Vector{xm, y0}, Vector{xm, y1}, segment, set)
	case 0xB:
		segs(Vector{x0, ym}, mid, Vector{xm, y1}, segment, set)
	case 0xC:
		seg(Vector{x1, ym}, Vector{x0, ym}, segment, set)
	case 0xD:
		segs(Vector{x1, ym}, mid, Vector{xm, y0}, segment, set)
	case 0xE:
		segs(Vector{xm, y0}, mid, Vector{x0, ym}, segment, set)
	}
}

// MarchHard traces an axis aligned contour of the sampled field, following
// cell centers.
func MarchHard(bb BB, xSamples, ySamples int, threshold float64, segment MarchSegmentFunc, set *PolyLineSet, sample MarchSampleFunc) {
	marchCells(bb, xSamples, ySamples, threshold, segment, set, sample, marchCellHard)
}
