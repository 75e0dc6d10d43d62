package pacs

import (
	"math"
	"sort"
)

type cellEntry struct {
	handle imageHandle
	xmin   float64
	id     PrimitiveID
}

// before orders cell entries by bounding box left edge, then primitive id.
func (e cellEntry) before(o cellEntry) bool {
	if e.xmin != o.xmin {
		return e.xmin < o.xmin
	}
	return e.id < o.id
}

type moveCell struct {
	entries []cellEntry
}

func (c *moveCell) insert(e cellEntry) {
	i := sort.Search(len(c.entries), func(i int) bool {
		return e.before(c.entries[i])
	})
	c.entries = append(c.entries, cellEntry{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = e
}

func (c *moveCell) remove(h imageHandle) {
	for i := range c.entries {
		if c.entries[i].handle == h {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// resort moves the entry of h to its new place by local bubbling.
func (c *moveCell) resort(h imageHandle, xmin float64) {
	i := 0
	for ; i < len(c.entries); i++ {
		if c.entries[i].handle == h {
			break
		}
	}
	if i == len(c.entries) {
		return
	}
	c.entries[i].xmin = xmin
	for i > 0 && c.entries[i].before(c.entries[i-1]) {
		c.entries[i], c.entries[i-1] = c.entries[i-1], c.entries[i]
		i--
	}
	for i < len(c.entries)-1 && c.entries[i+1].before(c.entries[i]) {
		c.entries[i], c.entries[i+1] = c.entries[i+1], c.entries[i]
		i++
	}
}

func (c *moveCell) sorted() bool {
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].before(c.entries[i-1]) {
			return false
		}
	}
	return true
}

// MoveGrid is the uniform grid of one world image slot. A world image lives in
// the cells its bounding box overlaps, at most 2x2 of them. Larger boxes go to
// the oversized list that every query visits.
type MoveGrid struct {
	bb            BB
	width, height int
	cellW, cellH  float64

	cells     []moveCell // index = y*width + x
	oversized []imageHandle
}

func NewMoveGrid(bb BB, width, height int) *MoveGrid {
	return &MoveGrid{
		bb:     bb,
		width:  width,
		height: height,
		cellW:  bb.Width() / float64(width),
		cellH:  bb.Height() / float64(height),
		cells:  make([]moveCell, width*height),
	}
}

func (g *MoveGrid) cellX(x float64) int {
	return int(Clamp(math.Floor((x-g.bb.L)/g.cellW), 0, float64(g.width-1)))
}

func (g *MoveGrid) cellY(y float64) int {
	return int(Clamp(math.Floor((y-g.bb.B)/g.cellH), 0, float64(g.height-1)))
}

// cellRange returns the inclusive cell rectangle overlapped by bb.
func (g *MoveGrid) cellRange(bb BB) (x0, y0, x1, y1 int) {
	return g.cellX(bb.L), g.cellY(bb.B), g.cellX(bb.R), g.cellY(bb.T)
}

// link inserts the image using its cached bounding box. It reports whether the
// box went to the oversized list.
func (g *MoveGrid) link(wi *WorldImage) bool {
	debugAssert(!wi.linked, "world image already linked")
	x0, y0, x1, y1 := g.cellRange(wi.bb)
	wi.linked = true
	wi.numCells = 0
	if x1-x0 > 1 || y1-y0 > 1 {
		wi.oversized = true
		g.oversized = append(g.oversized, wi.handle)
		return true
	}
	wi.oversized = false
	e := cellEntry{wi.handle, wi.bb.L, wi.prim.id}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			idx := int32(y*g.width + x)
			g.cells[idx].insert(e)
			wi.cells[wi.numCells] = idx
			wi.numCells++
		}
	}
	return false
}

func (g *MoveGrid) unlink(wi *WorldImage) {
	if !wi.linked {
		return
	}
	if wi.oversized {
		for i, h := range g.oversized {
			if h == wi.handle {
				g.oversized = append(g.oversized[:i], g.oversized[i+1:]...)
				break
			}
		}
	}
	for _, idx := range wi.cells[:wi.numCells] {
		g.cells[idx].remove(wi.handle)
	}
	wi.numCells = 0
	wi.oversized = false
	wi.linked = false
}

// relink follows a change of the cached bounding box. When the image stays in
// the same cells they are only re-sorted.
func (g *MoveGrid) relink(wi *WorldImage) bool {
	if wi.linked && !wi.oversized {
		x0, y0, x1, y1 := g.cellRange(wi.bb)
		if x1-x0 <= 1 && y1-y0 <= 1 && (x1-x0+1)*(y1-y0+1) == wi.numCells &&
			wi.cells[0] == int32(y0*g.width+x0) && wi.cells[wi.numCells-1] == int32(y1*g.width+x1) {
			for _, idx := range wi.cells[:wi.numCells] {
				g.cells[idx].resort(wi.handle, wi.bb.L)
				debugAssert(g.cells[idx].sorted(), "cell out of order")
			}
			return false
		}
	}
	g.unlink(wi)
	return g.link(wi)
}

// query calls f for every image whose cell overlaps bb, including the oversized
// ones. An image spanning several cells is reported once per cell; callers
// dedupe with stamps.
func (g *MoveGrid) query(bb BB, f func(h imageHandle)) {
	for _, h := range g.oversized {
		f(h)
	}
	x0, y0, x1, y1 := g.cellRange(bb)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, e := range g.cells[y*g.width+x].entries {
				if e.xmin > bb.R {
					break
				}
				f(e.handle)
			}
		}
	}
}

// CellPrimitives lists the primitives of a cell in sweep order.
func (g *MoveGrid) CellPrimitives(x, y int) []PrimitiveID {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return nil
	}
	entries := g.cells[y*g.width+x].entries
	ids := make([]PrimitiveID, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// NumOversized is the number of images that did not fit in 2x2 cells.
func (g *MoveGrid) NumOversized() int {
	return len(g.oversized)
}
