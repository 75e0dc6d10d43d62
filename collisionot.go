package pacs

import (
	"math"
	"sort"
)

// otEntry is a pending contact of the current evaluation. b is nil for terrain
// contacts.
type otEntry struct {
	time   float64
	static bool
	seq    uint64

	a, b       *WorldImage
	genA, genB uint32

	desc    CollisionDesc
	surface SurfaceDesc
}

// before orders contacts by time, static ones first, then by insertion.
func (e *otEntry) before(o *otEntry) bool {
	if e.time != o.time {
		return e.time < o.time
	}
	if e.static != o.static {
		return e.static
	}
	return e.seq < o.seq
}

// valid reports whether neither image changed its path since the test.
func (e *otEntry) valid() bool {
	return e.a.gen == e.genA && (e.b == nil || e.b.gen == e.genB)
}

// collisionOT is the ordered table of pending contacts: a fixed number of time
// buckets over the evaluated interval, each one kept sorted. Entries made
// stale by a reaction are dropped when reached.
type collisionOT struct {
	buckets   [][]otEntry
	deltaTime float64
	cursor    int
	seq       uint64
	count     int
}

func newCollisionOT(size int) *collisionOT {
	return &collisionOT{buckets: make([][]otEntry, size)}
}

func (ot *collisionOT) reset(deltaTime float64) {
	for i := range ot.buckets {
		ot.buckets[i] = ot.buckets[i][:0]
	}
	ot.deltaTime = deltaTime
	ot.cursor = 0
	ot.seq = 0
	ot.count = 0
}

func (ot *collisionOT) bucket(t float64) int {
	if ot.deltaTime <= 0 {
		return 0
	}
	i := int(math.Floor(t / ot.deltaTime * float64(len(ot.buckets))))
	if i < 0 {
		return 0
	}
	if i >= len(ot.buckets) {
		return len(ot.buckets) - 1
	}
	return i
}

func (ot *collisionOT) add(e otEntry) {
	e.seq = ot.seq
	ot.seq++
	e.genA = e.a.gen
	if e.b != nil {
		e.genB = e.b.gen
	}

	i := ot.bucket(e.time)
	b := ot.buckets[i]
	j := sort.Search(len(b), func(j int) bool {
		return e.before(&b[j])
	})
	b = append(b, otEntry{})
	copy(b[j+1:], b[j:])
	b[j] = e
	ot.buckets[i] = b

	if i < ot.cursor {
		ot.cursor = i
	}
	ot.count++
}

// pop removes the earliest valid contact.
func (ot *collisionOT) pop() (otEntry, bool) {
	for ot.cursor < len(ot.buckets) {
		b := ot.buckets[ot.cursor]
		if len(b) == 0 {
			ot.cursor++
			continue
		}
		e := b[0]
		ot.buckets[ot.cursor] = b[:copy(b, b[1:])]
		ot.count--
		if e.valid() {
			return e, true
		}
	}
	return otEntry{}, false
}

func (ot *collisionOT) Len() int {
	return ot.count
}
