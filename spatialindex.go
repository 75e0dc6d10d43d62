package pacs

// worldSlot holds the world images of one slot: an arena addressed by stable
// handles, the grid indexing them and the list of images modified since the
// last evaluation, in modification order.
type worldSlot struct {
	index int
	kind  SlotKind
	grid  *MoveGrid

	images   []WorldImage
	free     []imageHandle
	modified []imageHandle
	count    int
}

func newWorldSlot(index int, bb BB, width, height int) *worldSlot {
	return &worldSlot{
		index: index,
		grid:  NewMoveGrid(bb, width, height),
	}
}

func (s *worldSlot) image(h imageHandle) *WorldImage {
	return &s.images[h]
}

// alloc returns a fresh image. It may move the arena: pointers to images of
// this slot must not be held across calls.
func (s *worldSlot) alloc(prim *Primitive) *WorldImage {
	var h imageHandle
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		h = imageHandle(len(s.images))
		s.images = append(s.images, WorldImage{})
	}
	wi := &s.images[h]
	wi.init(prim, s.index, h)
	s.count++
	return wi
}

func (s *worldSlot) release(wi *WorldImage) {
	s.grid.unlink(wi)
	if wi.modified {
		s.unmark(wi)
	}
	h := wi.handle
	wi.prim = nil
	s.free = append(s.free, h)
	s.count--
}

func (s *worldSlot) markModified(wi *WorldImage) {
	if !wi.modified {
		wi.modified = true
		s.modified = append(s.modified, wi.handle)
	}
}

func (s *worldSlot) unmark(wi *WorldImage) {
	wi.modified = false
	for i, h := range s.modified {
		if h == wi.handle {
			s.modified = append(s.modified[:i], s.modified[i+1:]...)
			return
		}
	}
}

// takeModified empties the modified list and returns its images.
func (s *worldSlot) takeModified(dst []*WorldImage) []*WorldImage {
	for _, h := range s.modified {
		wi := s.image(h)
		wi.modified = false
		dst = append(dst, wi)
	}
	s.modified = s.modified[:0]
	return dst
}

// refresh rebuilds the resting bounding box of dirty modified images and
// re-sorts their cells. Static slots drop their modified list: their images
// never move by themselves. It returns the images that went oversized.
func (s *worldSlot) refresh() []*WorldImage {
	var oversized []*WorldImage
	for _, h := range s.modified {
		wi := s.image(h)
		if wi.state == clean && wi.linked {
			continue
		}
		wi.boundingBox(0, 0)
		if s.grid.relink(wi) {
			oversized = append(oversized, wi)
		}
	}
	if s.kind == Static {
		for _, h := range s.modified {
			s.image(h).modified = false
		}
		s.modified = s.modified[:0]
	}
	return oversized
}

// query calls f once per image whose cells overlap bb. Images already stamped
// with stamp are skipped.
func (s *worldSlot) query(bb BB, stamp uint, f func(other *WorldImage)) {
	s.grid.query(bb, func(h imageHandle) {
		wi := s.image(h)
		if wi.stamp == stamp {
			return
		}
		wi.stamp = stamp
		f(wi)
	})
}

// each visits the live images in handle order.
func (s *worldSlot) each(f func(wi *WorldImage)) {
	for i := range s.images {
		if !s.images[i].free() {
			f(&s.images[i])
		}
	}
}

// clear releases every image of the slot.
func (s *worldSlot) clear() {
	s.each(func(wi *WorldImage) {
		wi.prim.images[s.index] = noImage
		s.release(wi)
	})
}
