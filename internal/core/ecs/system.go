package ecs

import "time"

// Query declares the component types and tags a system matches on.
type Query struct {
	All      []TypeID // required component types
	Tags     []string // required tags
	None     []TypeID // excluded component types
	NoneTags []string // excluded tags
}

// Matches reports whether an entity satisfies the query. Pure function of
// the entity's current state.
func (q Query) Matches(e *Entity) bool {
	for _, t := range q.All {
		if !e.HasComponent(t) {
			return false
		}
	}
	for _, tag := range q.Tags {
		if !e.HasTag(tag) {
			return false
		}
	}
	for _, t := range q.None {
		if e.HasComponent(t) {
			return false
		}
	}
	for _, tag := range q.NoneTags {
		if e.HasTag(tag) {
			return false
		}
	}
	return true
}

// Handler carries a system's per-entity logic. Pre/post pass and
// initialization hooks are optional capabilities checked by interface
// assertion, not structural inspection.
type Handler interface {
	Process(w *World, e *Entity, dt float64)
}

// PreUpdater runs once before each per-entity pass.
type PreUpdater interface {
	PreUpdate(w *World, dt float64)
}

// PostUpdater runs once after each per-entity pass.
type PostUpdater interface {
	PostUpdate(w *World, dt float64)
}

// Initializer runs once when the system's world starts, or immediately when
// the system is registered on an already-running world.
type Initializer interface {
	Init(w *World)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(w *World, e *Entity, dt float64)

func (f HandlerFunc) Process(w *World, e *Entity, dt float64) { f(w, e, dt) }

// System pairs a declarative query with an update contract. It maintains its
// own cached set of matching active entities incrementally: membership is
// recomputed exactly once per structural change to a tracked entity, never
// by rescanning the entity population.
type System struct {
	name     string
	query    Query
	handler  Handler
	priority int
	enabled  bool

	// fixed-timestep sub-stepping; zero means variable step
	fixedStep   float64
	accumulator float64

	entities []*Entity
	members  map[uint64]struct{}

	seq         int // registration order, breaks priority ties
	initialized bool
}

func NewSystem(name string, query Query, handler Handler) *System {
	return &System{
		name:    name,
		query:   query,
		handler: handler,
		enabled: true,
		members: make(map[uint64]struct{}, 32),
	}
}

func (s *System) Name() string  { return s.name }
func (s *System) Query() Query  { return s.query }
func (s *System) Priority() int { return s.priority }
func (s *System) Enabled() bool { return s.enabled }

// SetPriority must be called before the system is registered; the world
// sorts its system list at registration time.
func (s *System) SetPriority(p int) *System {
	s.priority = p
	return s
}

func (s *System) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// SetFixedStep configures fixed-timestep sub-stepping in seconds. Zero
// restores variable stepping.
func (s *System) SetFixedStep(step float64) *System {
	s.fixedStep = step
	return s
}

// Accumulator reports unconsumed real time carried between updates.
func (s *System) Accumulator() float64 {
	return s.accumulator
}

// Entities returns a copy of the cached matching-entity set.
func (s *System) Entities() []*Entity {
	out := make([]*Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Contains reports whether an entity is currently in the cached set.
func (s *System) Contains(e *Entity) bool {
	_, ok := s.members[e.id]
	return ok
}

// Matches reports whether an entity satisfies this system's query.
func (s *System) Matches(e *Entity) bool {
	return s.query.Matches(e)
}

// ── Cache maintenance (called by the world) ────────────────────────

func (s *System) onEntityAdded(e *Entity) {
	if e.active && s.query.Matches(e) {
		s.add(e)
	}
}

func (s *System) onEntityRemoved(e *Entity) {
	s.remove(e)
}

// onEntityChanged recomputes membership after a component, tag, or
// activation change and transitions the entity into or out of the cache.
func (s *System) onEntityChanged(e *Entity) {
	if e.active && s.query.Matches(e) {
		s.add(e)
	} else {
		s.remove(e)
	}
}

func (s *System) add(e *Entity) {
	if _, ok := s.members[e.id]; ok {
		return
	}
	s.members[e.id] = struct{}{}
	s.entities = append(s.entities, e)
}

func (s *System) remove(e *Entity) {
	if _, ok := s.members[e.id]; !ok {
		return
	}
	delete(s.members, e.id)
	for i, cur := range s.entities {
		if cur == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			return
		}
	}
}

// ── Update contract ────────────────────────────────────────────────

// Update runs the system for one tick. No-op when disabled. With a fixed
// timestep configured, delta time accumulates and drains in whole
// fixed-size passes; leftover time carries to the next call. now is the
// tick timestamp the world was driven with.
func (s *System) Update(w *World, dt float64, now time.Time) {
	if !s.enabled {
		return
	}
	if s.fixedStep > 0 {
		s.accumulator += dt
		for s.accumulator >= s.fixedStep {
			s.accumulator -= s.fixedStep
			s.pass(w, s.fixedStep)
		}
		return
	}
	s.pass(w, dt)
}

// pass iterates a snapshot of the cached set taken at pass start, so
// membership changes caused by processing one entity do not invalidate the
// iteration. Entities that were deactivated or stopped matching earlier in
// the same pass are skipped, so handlers only ever see entities that still
// satisfy their query.
func (s *System) pass(w *World, dt float64) {
	if pre, ok := s.handler.(PreUpdater); ok {
		pre.PreUpdate(w, dt)
	}
	if s.handler != nil {
		snapshot := make([]*Entity, len(s.entities))
		copy(snapshot, s.entities)
		for _, e := range snapshot {
			if !e.active {
				continue
			}
			if _, ok := s.members[e.id]; !ok {
				continue
			}
			s.handler.Process(w, e, dt)
		}
	}
	if post, ok := s.handler.(PostUpdater); ok {
		post.PostUpdate(w, dt)
	}
}
