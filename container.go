package pacs

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EvalStats counts the work of the last evaluation.
type EvalStats struct {
	Moved            int
	NarrowPhaseTests int
	TerrainTests     int
	Reactions        int
	Collisions       int
	Triggers         int
	Oversized        int
	Frozen           int
}

func (s EvalStats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("moved", s.Moved)
	enc.AddInt("narrow_phase_tests", s.NarrowPhaseTests)
	enc.AddInt("terrain_tests", s.TerrainTests)
	enc.AddInt("reactions", s.Reactions)
	enc.AddInt("collisions", s.Collisions)
	enc.AddInt("triggers", s.Triggers)
	if s.Oversized > 0 {
		enc.AddInt("oversized", s.Oversized)
	}
	if s.Frozen > 0 {
		enc.AddInt("frozen", s.Frozen)
	}
	return nil
}

type Option func(c *MoveContainer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *MoveContainer) {
		c.log = log
	}
}

// WithRetriever sets the terrain primitives collide with and move over.
func WithRetriever(r Retriever) Option {
	return func(c *MoveContainer) {
		c.retriever = r
	}
}

// MoveContainer owns primitives and their world images, and moves them.
//
// It is not safe for concurrent use.
type MoveContainer struct {
	id        uuid.UUID
	log       *zap.Logger
	cfg       Config
	bb        BB
	retriever Retriever

	surfaceTemp SurfaceTemp

	prims  map[PrimitiveID]*Primitive
	nextID PrimitiveID
	slots  []*worldSlot

	// evaluation state
	ot         *collisionOT
	dt         float64
	evalSlot   *worldSlot
	movers     []*WorldImage
	triggers   []TriggerInfo
	collisions []CollisionInfo
	stats      EvalStats
	stamp      uint
}

func NewMoveContainer(cfg Config, opts ...Option) (*MoveContainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &MoveContainer{
		id:     uuid.New(),
		log:    zap.NewNop(),
		cfg:    cfg,
		bb:     cfg.Bounds.BB(),
		prims:  map[PrimitiveID]*Primitive{},
		nextID: 1,
		ot:     newCollisionOT(cfg.OTSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.Stringer("container", c.id))

	c.slots = make([]*worldSlot, cfg.WorldImages)
	for i := range c.slots {
		c.slots[i] = newWorldSlot(i, c.bb, cfg.Cells.Width, cfg.Cells.Height)
	}
	for _, slot := range cfg.StaticWorldImages {
		c.slots[slot].kind = Static
	}
	return c, nil
}

// NewMoveContainerForRetriever covers the bounds of r and collides with it.
func NewMoveContainerForRetriever(r Retriever, cfg Config, opts ...Option) (*MoveContainer, error) {
	bb := r.Bounds()
	cfg.Bounds = BoundsConfig{XMin: bb.L, YMin: bb.B, XMax: bb.R, YMax: bb.T}
	return NewMoveContainer(cfg, append(opts, WithRetriever(r))...)
}

func (c *MoveContainer) ID() uuid.UUID {
	return c.id
}

func (c *MoveContainer) Bounds() BB {
	return c.bb
}

func (c *MoveContainer) NumWorldImages() int {
	return len(c.slots)
}

// Grid returns the broad phase grid of a slot, nil when out of range.
func (c *MoveContainer) Grid(slot int) *MoveGrid {
	if slot < 0 || slot >= len(c.slots) {
		return nil
	}
	return c.slots[slot].grid
}

func (c *MoveContainer) checkSlot(slot int) error {
	if slot < 0 || slot >= len(c.slots) {
		return fmt.Errorf("%w: %d of %d", ErrSlotOutOfRange, slot, len(c.slots))
	}
	return nil
}

func (c *MoveContainer) newPrimitive(desc PrimitiveDesc, slots SlotSet) (*Primitive, error) {
	if err := desc.validate(c.cfg.PrimitiveMaxSize); err != nil {
		return nil, err
	}
	if slots&^SlotRange(0, len(c.slots)) != 0 {
		return nil, fmt.Errorf("%w: eligible slots %b", ErrSlotOutOfRange, uint64(slots))
	}
	p := &Primitive{
		id:     c.nextID,
		desc:   desc,
		slots:  slots,
		images: make([]imageHandle, len(c.slots)),
	}
	for i := range p.images {
		p.images[i] = noImage
	}
	return p, nil
}

// AddPrimitive creates a primitive that may be inserted in the given slots.
func (c *MoveContainer) AddPrimitive(desc PrimitiveDesc, slots SlotSet) (PrimitiveID, error) {
	p, err := c.newPrimitive(desc, slots)
	if err != nil {
		return 0, err
	}
	c.nextID++
	c.prims[p.id] = p
	return p.id, nil
}

// AddNonCollisionablePrimitive creates a primitive that other primitives never
// see. It owns a private world image moved with EvalNCPrimitive.
func (c *MoveContainer) AddNonCollisionablePrimitive(desc PrimitiveDesc) (PrimitiveID, error) {
	p, err := c.newPrimitive(desc, 0)
	if err != nil {
		return 0, err
	}
	p.private = &WorldImage{}
	p.private.init(p, -1, noImage)
	c.nextID++
	c.prims[p.id] = p
	return p.id, nil
}

// RemovePrimitive removes the primitive from every slot. Unknown ids are
// ignored.
func (c *MoveContainer) RemovePrimitive(id PrimitiveID) {
	p, ok := c.prims[id]
	if !ok {
		return
	}
	for slot, h := range p.images {
		if h != noImage {
			c.slots[slot].release(c.slots[slot].image(h))
			p.images[slot] = noImage
		}
	}
	delete(c.prims, id)
}

// Primitive returns nil for unknown ids.
func (c *MoveContainer) Primitive(id PrimitiveID) *Primitive {
	return c.prims[id]
}

func (c *MoveContainer) NumPrimitives() int {
	return len(c.prims)
}

func (c *MoveContainer) primitive(id PrimitiveID) (*Primitive, error) {
	p, ok := c.prims[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPrimitive, id)
	}
	return p, nil
}

// InsertInWorldImage places the primitive in slot.
func (c *MoveContainer) InsertInWorldImage(id PrimitiveID, slot int, pos mgl64.Vec3, orientation float64) error {
	p, err := c.primitive(id)
	if err != nil {
		return err
	}
	if !p.IsCollisionable() {
		return fmt.Errorf("%w: insert %d", ErrNonCollisionable, id)
	}
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	if !p.slots.Has(slot) {
		return fmt.Errorf("%w: primitive %d, slot %d", ErrSlotNotEligible, id, slot)
	}
	if p.InsertedIn(slot) {
		return fmt.Errorf("%w: primitive %d, slot %d", ErrAlreadyInserted, id, slot)
	}
	s := c.slots[slot]
	wi := s.alloc(p)
	wi.pos = pos
	wi.orientation = orientation
	p.images[slot] = wi.handle
	s.markModified(wi)
	return nil
}

func (c *MoveContainer) RemoveFromWorldImage(id PrimitiveID, slot int) error {
	wi, s, err := c.image(id, slot)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: remove %d", ErrNonCollisionable, id)
	}
	wi.prim.images[slot] = noImage
	s.release(wi)
	return nil
}

// image finds the world image of a primitive in a slot. Non collisionable
// primitives return their private image and a nil slot, whatever slot is.
func (c *MoveContainer) image(id PrimitiveID, slot int) (*WorldImage, *worldSlot, error) {
	p, err := c.primitive(id)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsCollisionable() {
		return p.private, nil, nil
	}
	if err := c.checkSlot(slot); err != nil {
		return nil, nil, err
	}
	if !p.InsertedIn(slot) {
		return nil, nil, fmt.Errorf("%w: primitive %d, slot %d", ErrNotInserted, id, slot)
	}
	s := c.slots[slot]
	return s.image(p.images[slot]), s, nil
}

func (c *MoveContainer) mutate(id PrimitiveID, slot int, f func(wi *WorldImage)) error {
	wi, s, err := c.image(id, slot)
	if err != nil {
		return err
	}
	f(wi)
	if s != nil {
		s.markModified(wi)
	}
	return nil
}

func (c *MoveContainer) SetGlobalPosition(id PrimitiveID, slot int, pos mgl64.Vec3) error {
	return c.mutate(id, slot, func(wi *WorldImage) { wi.setGlobalPosition(pos) })
}

func (c *MoveContainer) SetSpeed(id PrimitiveID, slot int, speed mgl64.Vec3) error {
	return c.mutate(id, slot, func(wi *WorldImage) { wi.setSpeed(speed) })
}

// Move asks for a displacement spread over the next evaluation.
func (c *MoveContainer) Move(id PrimitiveID, slot int, delta mgl64.Vec3) error {
	return c.mutate(id, slot, func(wi *WorldImage) { wi.move(delta) })
}

func (c *MoveContainer) SetOrientation(id PrimitiveID, slot int, orientation float64) error {
	return c.mutate(id, slot, func(wi *WorldImage) { wi.setOrientation(orientation) })
}

func (c *MoveContainer) FinalPosition(id PrimitiveID, slot int) (mgl64.Vec3, error) {
	wi, _, err := c.image(id, slot)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return wi.FinalPosition(), nil
}

func (c *MoveContainer) Speed(id PrimitiveID, slot int) (mgl64.Vec3, error) {
	wi, _, err := c.image(id, slot)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return wi.Speed(), nil
}

func (c *MoveContainer) Orientation(id PrimitiveID, slot int) (float64, error) {
	wi, _, err := c.image(id, slot)
	if err != nil {
		return 0, err
	}
	return wi.Orientation(), nil
}

// SetAsStatic makes the images of slot obstacles for every evaluation. They
// are not moved anymore.
func (c *MoveContainer) SetAsStatic(slot int) error {
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	c.slots[slot].kind = Static
	return nil
}

func (c *MoveContainer) SlotKind(slot int) (SlotKind, error) {
	if err := c.checkSlot(slot); err != nil {
		return Dynamic, err
	}
	return c.slots[slot].kind, nil
}

// DuplicateWorldImage clears dst, then copies into it the images of src whose
// primitive is eligible for dst.
func (c *MoveContainer) DuplicateWorldImage(src, dst int) error {
	if err := c.checkSlot(src); err != nil {
		return err
	}
	if err := c.checkSlot(dst); err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	from, to := c.slots[src], c.slots[dst]
	to.clear()
	copied := 0
	from.each(func(wi *WorldImage) {
		if !wi.prim.slots.Has(dst) {
			return
		}
		cp := to.alloc(wi.prim)
		cp.copyFrom(wi)
		wi.prim.images[dst] = cp.handle
		to.markModified(cp)
		copied++
	})
	c.log.Debug("duplicated world image",
		zap.Int("src", src), zap.Int("dst", dst), zap.Int("images", copied))
	return nil
}

func (c *MoveContainer) NumTriggerInfo() int {
	return len(c.triggers)
}

func (c *MoveContainer) TriggerInfo(i int) TriggerInfo {
	return c.triggers[i]
}

func (c *MoveContainer) NumCollisionInfo() int {
	return len(c.collisions)
}

func (c *MoveContainer) CollisionInfo(i int) CollisionInfo {
	return c.collisions[i]
}

func (c *MoveContainer) Stats() EvalStats {
	return c.stats
}

func checkDeltaTime(deltaTime float64) error {
	if !(deltaTime >= 0) || math.IsInf(deltaTime, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDeltaTime, deltaTime)
	}
	return nil
}

func (c *MoveContainer) beginEval(deltaTime float64) {
	c.dt = deltaTime
	c.triggers = c.triggers[:0]
	c.collisions = c.collisions[:0]
	c.movers = c.movers[:0]
	c.stats = EvalStats{}
	c.ot.reset(deltaTime)
}

// refreshStatic brings the cells of every static slot up to date.
func (c *MoveContainer) refreshStatic() {
	for _, s := range c.slots {
		if s.kind == Static {
			c.refresh(s)
		}
	}
}

func (c *MoveContainer) refresh(s *worldSlot) {
	for _, wi := range s.refresh() {
		c.warnOversized(wi)
	}
}

func (c *MoveContainer) warnOversized(wi *WorldImage) {
	c.stats.Oversized++
	c.log.Warn("world image spans more than 2x2 cells",
		zap.Uint32("primitive", uint32(wi.prim.id)),
		zap.Int("slot", wi.slot),
		zap.Stringer("bb", wi.bb))
}

func (c *MoveContainer) relink(wi *WorldImage) {
	if wi.slot < 0 {
		return
	}
	if c.slots[wi.slot].grid.relink(wi) {
		c.warnOversized(wi)
	}
}

// EvalCollision moves the modified images of slot over deltaTime. Static slots
// are refreshed first and always win ties. Evaluating a static slot only
// refreshes it.
func (c *MoveContainer) EvalCollision(deltaTime float64, slot int) error {
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	if err := checkDeltaTime(deltaTime); err != nil {
		return err
	}
	c.beginEval(deltaTime)
	c.refreshStatic()

	s := c.slots[slot]
	if s.kind == Static {
		return nil
	}
	c.movers = s.takeModified(c.movers)
	c.evalMovers(s)

	c.log.Debug("evaluated world image",
		zap.Int("slot", slot),
		zap.Float64("dt", deltaTime),
		zap.Object("stats", c.stats))
	return nil
}

// EvalNCPrimitive moves a non collisionable primitive over deltaTime against
// the static slots, slot and the terrain. Nothing else moves.
func (c *MoveContainer) EvalNCPrimitive(deltaTime float64, id PrimitiveID, slot int) error {
	p, err := c.primitive(id)
	if err != nil {
		return err
	}
	if p.IsCollisionable() {
		return fmt.Errorf("%w: primitive %d", ErrCollisionable, id)
	}
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	if err := checkDeltaTime(deltaTime); err != nil {
		return err
	}
	c.beginEval(deltaTime)
	c.refreshStatic()

	s := c.slots[slot]
	if s.kind == Dynamic {
		c.refresh(s)
	}
	c.movers = append(c.movers, p.private)
	c.evalMovers(s)
	return nil
}

func (c *MoveContainer) evalMovers(s *worldSlot) {
	c.evalSlot = s
	for i, wi := range c.movers {
		wi.startMove(c.dt, i)
		wi.boundingBox(0, c.dt)
		c.relink(wi)
	}
	for _, wi := range c.movers {
		c.testMover(s, wi, 0, true, nil)
	}
	for {
		e, ok := c.ot.pop()
		if !ok {
			break
		}
		c.processEntry(&e)
	}
	for _, wi := range c.movers {
		c.doMove(wi)
	}
	c.stats.Moved = len(c.movers)
	c.stats.Collisions = len(c.collisions)
	c.stats.Triggers = len(c.triggers)
}

// testMover queues every contact of wi after time t. On the initial pass pairs
// of movers are tested once, by the first of them, and triggers are recorded.
func (c *MoveContainer) testMover(s *worldSlot, wi *WorldImage, t float64, initial bool, skip *WorldImage) {
	c.stamp++
	wi.stamp = c.stamp
	if skip != nil {
		skip.stamp = c.stamp
	}
	bb := wi.boundingBox(t, c.dt)

	if c.retriever != nil && !wi.prim.isTrigger() {
		c.evalTerrain(wi, t)
	}
	for _, other := range c.slots {
		if other.kind == Static && other != s {
			other.query(bb, c.stamp, func(o *WorldImage) {
				c.testPair(wi, o, bb, t, initial, true)
			})
		}
	}
	s.query(bb, c.stamp, func(o *WorldImage) {
		if initial && o.moverIndex >= 0 && o.moverIndex < wi.moverIndex {
			return
		}
		c.testPair(wi, o, bb, t, initial, s.kind == Static)
	})
}

func (c *MoveContainer) testPair(wi, o *WorldImage, bb BB, t float64, initial, static bool) {
	if o.prim == wi.prim || !o.bb.Intersects(bb) {
		return
	}
	collide := wi.prim.collidesWith(o.prim)
	trigger := initial && (wi.prim.triggeredBy(o.prim) || o.prim.triggeredBy(wi.prim))
	if !collide && !trigger {
		return
	}

	c.stats.NarrowPhaseTests++
	var desc CollisionDesc
	hit, first, last := evalCollision(wi.swept(), o.swept(), &desc, t, c.dt, wi.testTime, c.cfg.MaxIteration)
	if trigger {
		c.addTriggers(wi, o, first, last)
		c.addTriggers(o, wi, first, last)
	}
	if hit && collide {
		c.ot.add(otEntry{time: desc.ContactTime, static: static, a: wi, b: o, desc: desc})
	}
}

// addTriggers records the events trigger sees with other, given the interval
// where they overlap.
func (c *MoveContainer) addTriggers(trigger, other *WorldImage, first, last float64) {
	if !trigger.prim.triggeredBy(other.prim) || first > last {
		return
	}
	types := trigger.prim.desc.Trigger
	add := func(ev TriggerEvent) {
		c.triggers = append(c.triggers, TriggerInfo{
			Object0:    trigger.prim.desc.UserData,
			Object1:    other.prim.desc.UserData,
			Primitive0: trigger.prim.id,
			Primitive1: other.prim.id,
			Type:       ev,
		})
	}
	if types&EnterTrigger != 0 && first > 0 && first <= c.dt {
		add(TriggerEnter)
	}
	if types&ExitTrigger != 0 && last >= 0 && last < c.dt {
		add(TriggerExit)
	}
	if types&OverlapTrigger != 0 && first <= c.dt && last >= 0 {
		add(TriggerInside)
	}
}

// evalTerrain queues the first terrain surface hit by wi after time t.
func (c *MoveContainer) evalTerrain(wi *WorldImage, t float64) {
	delta := V2(wi.speed).Mult(c.dt - t)
	if !wi.moving || delta.IsZero() {
		return
	}
	c.stats.TerrainTests++
	fp := wi.footprint()
	surfaces := c.retriever.TestMove(wi.positionAt(t), delta, &fp, &c.surfaceTemp)
	if len(surfaces) == 0 {
		return
	}
	sd := surfaces[0]
	tc := t + sd.ContactTime*(c.dt-t)
	if wi.testTime >= c.cfg.MaxIteration {
		tc = t
	}
	c.ot.add(otEntry{time: tc, static: true, a: wi, surface: sd})
}

// canReact reports whether wi may change its path in this evaluation. Images
// at rest when the evaluation starts hold their place.
func (c *MoveContainer) canReact(wi *WorldImage) bool {
	return wi.moving && wi.launched && !wi.frozen && (wi.slot < 0 || c.slots[wi.slot].kind != Static)
}

func (c *MoveContainer) processEntry(e *otEntry) {
	a, t := e.a, e.time

	if e.b == nil {
		info := CollisionInfo{Static: true, Terrain: true, Surface: e.surface}
		info.Primitive0 = a.prim.id
		info.ContactTime = t
		info.ContactPos = contactHeight(a.swept(), t)
		info.setNormal(e.surface.ContactNormal)
		c.collisions = append(c.collisions, info)

		v := reactSurface(V2(a.velocity()), e.surface.ContactNormal, sideOf(a, c.canReact(a)))
		if c.applyReaction(a, t, v) {
			c.testMover(c.evalSlot, a, t, false, nil)
		}
		return
	}

	b := e.b
	c.collisions = append(c.collisions, CollisionInfo{CollisionDesc: e.desc, Static: e.static})

	sa := sideOf(a, c.canReact(a) && a.prim.reactsTo(b.prim))
	sb := sideOf(b, c.canReact(b) && b.prim.reactsTo(a.prim))
	va, vb := reactPair(V2(a.velocity()), V2(b.velocity()), e.desc.ContactNormal0, sa, sb)

	changedA := c.applyReaction(a, t, va)
	changedB := c.applyReaction(b, t, vb)
	if changedA {
		c.testMover(c.evalSlot, a, t, false, nil)
	}
	if changedB {
		var skip *WorldImage
		if changedA {
			skip = a
		}
		c.testMover(c.evalSlot, b, t, false, skip)
	}
}

// applyReaction rebases wi at t with the horizontal speed v. It reports
// whether the path changed.
func (c *MoveContainer) applyReaction(wi *WorldImage, t float64, v Vector) bool {
	if !wi.moving || v.Equal(V2(wi.speed)) {
		return false
	}
	c.stats.Reactions++
	if wi.testTime >= c.cfg.MaxIteration {
		c.stats.Frozen++
		c.log.Warn("iteration limit reached, world image frozen",
			zap.Uint32("primitive", uint32(wi.prim.id)),
			zap.Int("slot", wi.slot),
			zap.Float64("time", t),
			zap.Int("iterations", wi.testTime))
		wi.freeze(t)
	} else {
		z := wi.speed.Z()
		if wi.prim.desc.Reaction == Stop {
			z = 0
		}
		wi.rebase(t, v.Vec3(z))
	}
	wi.widen(t, c.dt)
	c.relink(wi)
	return true
}

// doMove commits the end of the path, through the terrain when there is one.
func (c *MoveContainer) doMove(wi *WorldImage) {
	var final mgl64.Vec3
	if c.retriever != nil {
		delta := V2(wi.speed).Mult(c.dt - wi.initTime)
		final = c.retriever.DoMove(wi.initPos, delta, &c.surfaceTemp)
	} else {
		final = wi.positionAt(c.dt)
	}
	wi.finishMove(final)
	wi.boundingBox(0, 0)
	c.relink(wi)
}

// TestMove reports whether the primitive could move at speed for deltaTime in
// slot without hitting an obstacle or the terrain. No primitive moves, but the
// grids of slot and of the static slots are refreshed first, as EvalCollision
// does: the static slots drop their modified lists.
func (c *MoveContainer) TestMove(id PrimitiveID, speed mgl64.Vec3, deltaTime float64, slot int) (bool, error) {
	if err := c.checkSlot(slot); err != nil {
		return false, err
	}
	if err := checkDeltaTime(deltaTime); err != nil {
		return false, err
	}
	wi, _, err := c.image(id, slot)
	if err != nil {
		return false, err
	}
	c.refreshStatic()
	s := c.slots[slot]
	if s.kind == Dynamic {
		c.refresh(s)
	}

	trial := *wi
	trial.linked = false
	trial.speed = speed
	trial.hasDelta = false
	trial.startMove(deltaTime, 0)
	bb := trial.boundingBox(0, deltaTime)

	if c.retriever != nil && !trial.prim.isTrigger() {
		delta := V2(speed).Mult(deltaTime)
		if !delta.IsZero() {
			fp := trial.footprint()
			if len(c.retriever.TestMove(trial.pos, delta, &fp, &c.surfaceTemp)) > 0 {
				return false, nil
			}
		}
	}

	c.stamp++
	wi.stamp = c.stamp
	free := true
	test := func(o *WorldImage) {
		if !free || o.prim == trial.prim || !o.bb.Intersects(bb) || !trial.prim.blockedBy(o.prim) {
			return
		}
		var desc CollisionDesc
		if hit, _, _ := evalCollision(trial.swept(), o.swept(), &desc, 0, deltaTime, 0, c.cfg.MaxIteration); hit {
			free = false
		}
	}
	for _, other := range c.slots {
		if other.kind == Static && other != s {
			other.query(bb, c.stamp, test)
		}
	}
	s.query(bb, c.stamp, test)
	return free, nil
}
