package ecs

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/james-salafatinos/mmo4/internal/core/event"
)

// World owns the entity and system registries, the id/tag/component-type
// indices, an optional spatial grid, and the per-tick scheduling loop.
// Single-threaded cooperative model: exactly one logical goroutine drives
// Update; index and cache updates triggered by a mutation complete before
// the mutating call returns.
type World struct {
	name     string
	ids      *IDSource
	registry *Registry
	events   *event.Bus
	log      *zap.Logger

	entities []*Entity // insertion order, deterministic iteration
	systems  []*System // descending priority, stable ties

	byID        map[uint64]*Entity
	byTag       map[string]map[uint64]*Entity
	byComponent map[TypeID]map[uint64]*Entity
	grid        *spatialGrid

	sweepQueue []*Entity // deactivated entities awaiting end-of-tick removal

	running    bool
	ticked     bool // lastUpdate holds a real timestamp
	lastUpdate time.Time
	nextSeq    int
}

// NewWorld constructs a world with its own id space. A nil registry or
// logger gets a usable default.
func NewWorld(name string, registry *Registry, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry(log)
	}
	return &World{
		name:        name,
		ids:         NewIDSource(),
		registry:    registry,
		events:      event.NewBus(),
		log:         log,
		byID:        make(map[uint64]*Entity, 256),
		byTag:       make(map[string]map[uint64]*Entity, 32),
		byComponent: make(map[TypeID]map[uint64]*Entity, 32),
	}
}

func (w *World) Name() string         { return w.name }
func (w *World) Registry() *Registry  { return w.registry }
func (w *World) Events() *event.Bus   { return w.events }
func (w *World) Running() bool        { return w.running }
func (w *World) LastUpdate() time.Time { return w.lastUpdate }

// Entities returns a copy of the entity list in insertion order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Systems returns a copy of the system list in scheduling order.
func (w *World) Systems() []*System {
	out := make([]*System, len(w.systems))
	copy(out, w.systems)
	return out
}

// EnableSpatialIndex attaches a cell grid over entities with positioned
// components. Cell size is in world units.
func (w *World) EnableSpatialIndex(cellSize float64) {
	w.grid = newSpatialGrid(cellSize)
	for _, e := range w.entities {
		w.grid.insert(e)
	}
}

// ── Entity lifecycle ───────────────────────────────────────────────

// NewEntity allocates an identifier from this world's id source and returns
// a standalone entity. The entity is not indexed until AddEntity.
func (w *World) NewEntity(name string) *Entity {
	return newEntity(w.ids.Next(), name)
}

// SpawnEntity creates an entity and immediately attaches it.
func (w *World) SpawnEntity(name string) *Entity {
	e := w.NewEntity(name)
	w.AddEntity(e)
	return e
}

// AddEntity attaches an entity: appended to the entity list, indexed from
// its current state, announced to every system, then the entityAdded event
// fires. Adding an entity already attached here is a silent no-op; an entity
// attached elsewhere is detached from that world first.
func (w *World) AddEntity(e *Entity) {
	if e == nil || e.world == w {
		return
	}
	if e.world != nil {
		e.world.RemoveEntity(e)
	}
	e.world = w
	w.entities = append(w.entities, e)
	w.byID[e.id] = e
	for tag := range e.tags {
		w.indexTag(tag, e)
	}
	for t := range e.components {
		w.indexComponent(t, e)
	}
	if w.grid != nil {
		w.grid.insert(e)
	}
	if !e.active {
		w.sweepQueue = append(w.sweepQueue, e)
	}
	for _, s := range w.systems {
		s.onEntityAdded(e)
	}
	w.events.Emit(event.EntityAdded, e)
}

// RemoveEntity detaches an entity immediately. The entityRemoved event fires
// before any physical removal so listeners can still read the departing
// entity's final state. Most callers should Deactivate instead and let the
// sweep remove at tick end.
func (w *World) RemoveEntity(e *Entity) {
	if e == nil || e.world != w {
		return
	}
	w.events.Emit(event.EntityRemoved, e)
	for _, s := range w.systems {
		s.onEntityRemoved(e)
	}
	for tag := range e.tags {
		w.unindexTag(tag, e)
	}
	for t := range e.components {
		w.unindexComponent(t, e)
	}
	if w.grid != nil {
		w.grid.remove(e)
	}
	delete(w.byID, e.id)
	for i, cur := range w.entities {
		if cur == e {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			break
		}
	}
	e.world = nil
}

// EntityByID resolves an identifier to an attached entity.
func (w *World) EntityByID(id uint64) (*Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// ── System registration ────────────────────────────────────────────

// RegisterSystem appends a system and re-sorts the list by descending
// priority, stable for equal priorities. The cache seeds from the current
// entity list; the Init hook runs now if the world is already running,
// otherwise at Start.
func (w *World) RegisterSystem(s *System) {
	if s == nil {
		return
	}
	s.seq = w.nextSeq
	w.nextSeq++
	w.systems = append(w.systems, s)
	sort.SliceStable(w.systems, func(i, j int) bool {
		if w.systems[i].priority != w.systems[j].priority {
			return w.systems[i].priority > w.systems[j].priority
		}
		return w.systems[i].seq < w.systems[j].seq
	})
	for _, e := range w.entities {
		s.onEntityAdded(e)
	}
	if w.running {
		w.initSystem(s)
	}
	w.log.Debug("system registered",
		zap.String("system", s.name),
		zap.Int("priority", s.priority))
	w.events.Emit(event.SystemRegistered, s)
}

// UnregisterSystem removes a system by identity.
func (w *World) UnregisterSystem(s *System) {
	for i, cur := range w.systems {
		if cur == s {
			w.systems = append(w.systems[:i], w.systems[i+1:]...)
			w.events.Emit(event.SystemUnregistered, s)
			return
		}
	}
}

func (w *World) initSystem(s *System) {
	if s.initialized {
		return
	}
	s.initialized = true
	if init, ok := s.handler.(Initializer); ok {
		init.Init(w)
	}
}

// ── Change propagation (called by entities) ────────────────────────

func (w *World) onComponentAdded(e *Entity, t TypeID) {
	w.indexComponent(t, e)
	if w.grid != nil {
		w.grid.refresh(e)
	}
	for _, s := range w.systems {
		s.onEntityChanged(e)
	}
}

func (w *World) onComponentRemoved(e *Entity, t TypeID) {
	w.unindexComponent(t, e)
	if w.grid != nil {
		w.grid.refresh(e)
	}
	for _, s := range w.systems {
		s.onEntityChanged(e)
	}
}

func (w *World) onTagAdded(e *Entity, tag string) {
	w.indexTag(tag, e)
	for _, s := range w.systems {
		s.onEntityChanged(e)
	}
}

func (w *World) onTagRemoved(e *Entity, tag string) {
	w.unindexTag(tag, e)
	for _, s := range w.systems {
		s.onEntityChanged(e)
	}
}

func (w *World) onEntityDeactivated(e *Entity) {
	w.sweepQueue = append(w.sweepQueue, e)
	for _, s := range w.systems {
		s.onEntityChanged(e)
	}
}

func (w *World) onEntityActivated(e *Entity) {
	for _, s := range w.systems {
		s.onEntityChanged(e)
	}
}

func (w *World) indexComponent(t TypeID, e *Entity) {
	set := w.byComponent[t]
	if set == nil {
		set = make(map[uint64]*Entity, 16)
		w.byComponent[t] = set
	}
	set[e.id] = e
}

func (w *World) unindexComponent(t TypeID, e *Entity) {
	if set := w.byComponent[t]; set != nil {
		delete(set, e.id)
		if len(set) == 0 {
			delete(w.byComponent, t)
		}
	}
}

func (w *World) indexTag(tag string, e *Entity) {
	set := w.byTag[tag]
	if set == nil {
		set = make(map[uint64]*Entity, 16)
		w.byTag[tag] = set
	}
	set[e.id] = e
}

func (w *World) unindexTag(tag string, e *Entity) {
	if set := w.byTag[tag]; set != nil {
		delete(set, e.id)
		if len(set) == 0 {
			delete(w.byTag, tag)
		}
	}
}

// ── Tick loop ──────────────────────────────────────────────────────

// Start flips the running flag, initializes registered systems, and emits
// worldStarted.
func (w *World) Start() {
	if w.running {
		return
	}
	w.running = true
	for _, s := range w.systems {
		w.initSystem(s)
	}
	w.events.Emit(event.WorldStarted)
}

// Stop suppresses future ticks, leaving state intact for inspection or
// resumption.
func (w *World) Stop() {
	if !w.running {
		return
	}
	w.running = false
	w.ticked = false
	w.events.Emit(event.WorldStopped)
}

// Update runs one tick: delta computation (zero on the very first tick),
// preUpdate event, every enabled system in priority order, the sweep of
// deactivated entities, then postUpdate. No-op when not running.
func (w *World) Update(now time.Time) {
	if !w.running {
		return
	}
	var dt float64
	if w.ticked {
		dt = now.Sub(w.lastUpdate).Seconds()
	}
	w.events.Emit(event.PreUpdate, dt)
	for _, s := range w.systems {
		s.Update(w, dt, now)
	}
	w.sweep()
	w.events.Emit(event.PostUpdate, dt)
	w.lastUpdate = now
	w.ticked = true
}

// sweep physically removes entities deactivated during the tick. This is
// the sole purge point; removal is deferred here so no system's in-progress
// iteration over the live entity list is ever invalidated.
func (w *World) sweep() {
	if len(w.sweepQueue) == 0 {
		return
	}
	queue := w.sweepQueue
	w.sweepQueue = nil
	for _, e := range queue {
		if e.active || e.world != w {
			continue // reactivated or already gone
		}
		w.RemoveEntity(e)
	}
}

// ── Queries ────────────────────────────────────────────────────────

// FindEntitiesWith returns active entities holding a component type.
func (w *World) FindEntitiesWith(t TypeID) []*Entity {
	set := w.byComponent[t]
	out := make([]*Entity, 0, len(set))
	for _, e := range set {
		if e.active {
			out = append(out, e)
		}
	}
	return out
}

// FindEntityWith returns one active entity holding the component type.
func (w *World) FindEntityWith(t TypeID) (*Entity, bool) {
	for _, e := range w.byComponent[t] {
		if e.active {
			return e, true
		}
	}
	return nil, false
}

// FindEntitiesWithTag returns active entities carrying a tag.
func (w *World) FindEntitiesWithTag(tag string) []*Entity {
	set := w.byTag[tag]
	out := make([]*Entity, 0, len(set))
	for _, e := range set {
		if e.active {
			out = append(out, e)
		}
	}
	return out
}

// QueryEntities returns active entities holding every requested type. The
// smallest indexed set is scanned first to minimize comparisons when one
// type is rare.
func (w *World) QueryEntities(types ...TypeID) []*Entity {
	if len(types) == 0 {
		return nil
	}
	smallest := w.byComponent[types[0]]
	for _, t := range types[1:] {
		set := w.byComponent[t]
		if len(set) < len(smallest) {
			smallest = set
		}
	}
	out := make([]*Entity, 0, len(smallest))
	for _, e := range smallest {
		if e.active && e.HasAllComponents(types...) {
			out = append(out, e)
		}
	}
	return out
}

// Nearby returns attached entities whose positioned component falls in the
// 3×3 cell neighbourhood of the given point. Nil without a spatial index.
func (w *World) Nearby(x, y float64) []*Entity {
	if w.grid == nil {
		return nil
	}
	return w.grid.nearby(x, y)
}

// RefreshPosition re-files an entity in the spatial grid after its
// positioned component moved. Cheap when the cell did not change.
func (w *World) RefreshPosition(e *Entity) {
	if w.grid != nil && e != nil && e.world == w {
		w.grid.refresh(e)
	}
}

// ── Serialization ──────────────────────────────────────────────────

// Serialize produces the wire records of every attached entity in insertion
// order. This is the payload the persistence and network collaborators
// consume.
func (w *World) Serialize() []map[string]any {
	out := make([]map[string]any, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e.Serialize(true))
	}
	return out
}

// LoadEntities reconstructs entities from serialized records and attaches
// them. Identifiers are reassigned from this world's id source; the
// serialized id, when present, is kept as the entity name fallback only by
// the caller's convention. Unregistered component types are skipped.
func (w *World) LoadEntities(records []map[string]any) []*Entity {
	out := make([]*Entity, 0, len(records))
	for _, rec := range records {
		e := w.NewEntity("")
		e.Deserialize(rec, true, w.registry)
		w.AddEntity(e)
		out = append(out, e)
	}
	return out
}
