package ecs

import "sort"

// Entity is a container of at most one component per TypeID, a tag set, a
// parent/children relation, and an activation flag. It is the unit the rest
// of the engine indexes and iterates.
//
// Mutations on an attached entity propagate synchronously to the owning
// world's indices and to every registered system. Mutations on a detached
// entity apply locally with no world to notify — never an error.
type Entity struct {
	id         uint64
	Name       string
	NetworkID  string
	active     bool
	tags       map[string]struct{}
	components map[TypeID]Component
	parent     *Entity
	children   []*Entity
	world      *World
}

func newEntity(id uint64, name string) *Entity {
	return &Entity{
		id:         id,
		Name:       name,
		active:     true,
		tags:       make(map[string]struct{}),
		components: make(map[TypeID]Component, 8),
	}
}

func (e *Entity) ID() uint64     { return e.id }
func (e *Entity) Active() bool   { return e.active }
func (e *Entity) World() *World  { return e.world }
func (e *Entity) Parent() *Entity { return e.parent }

// Children returns a copy of the child list.
func (e *Entity) Children() []*Entity {
	out := make([]*Entity, len(e.children))
	copy(out, e.children)
	return out
}

// ── Components ─────────────────────────────────────────────────────

// AddComponent installs a component, replacing any existing component of the
// same type (the old instance's removal hook runs first). Returns the entity
// for chained configuration.
func (e *Entity) AddComponent(c Component) *Entity {
	if c == nil {
		return e
	}
	t := c.Type()
	if old, ok := e.components[t]; ok {
		if h, ok := old.(RemoveHook); ok {
			h.OnRemove(e)
		}
	}
	e.components[t] = c
	if h, ok := c.(AddHook); ok {
		h.OnAdd(e)
	}
	if e.world != nil {
		e.world.onComponentAdded(e, t)
	}
	return e
}

// RemoveComponent deletes the component of the given type. Removing an
// absent type is a silent no-op.
func (e *Entity) RemoveComponent(t TypeID) {
	c, ok := e.components[t]
	if !ok {
		return
	}
	if h, ok := c.(RemoveHook); ok {
		h.OnRemove(e)
	}
	delete(e.components, t)
	if e.world != nil {
		e.world.onComponentRemoved(e, t)
	}
}

func (e *Entity) HasComponent(t TypeID) bool {
	_, ok := e.components[t]
	return ok
}

func (e *Entity) GetComponent(t TypeID) (Component, bool) {
	c, ok := e.components[t]
	return c, ok
}

func (e *Entity) HasAllComponents(types ...TypeID) bool {
	for _, t := range types {
		if _, ok := e.components[t]; !ok {
			return false
		}
	}
	return true
}

// ComponentTypes returns the TypeIDs currently held, sorted for determinism.
func (e *Entity) ComponentTypes() []TypeID {
	out := make([]TypeID, 0, len(e.components))
	for t := range e.components {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// position returns the coordinates of the first positioned component, if any.
func (e *Entity) position() (float64, float64, bool) {
	for _, c := range e.components {
		if p, ok := c.(Positioned); ok {
			x, y := p.Position()
			return x, y, true
		}
	}
	return 0, 0, false
}

// ── Tags ───────────────────────────────────────────────────────────

func (e *Entity) AddTag(tag string) *Entity {
	if _, ok := e.tags[tag]; ok {
		return e
	}
	e.tags[tag] = struct{}{}
	if e.world != nil {
		e.world.onTagAdded(e, tag)
	}
	return e
}

func (e *Entity) RemoveTag(tag string) {
	if _, ok := e.tags[tag]; !ok {
		return
	}
	delete(e.tags, tag)
	if e.world != nil {
		e.world.onTagRemoved(e, tag)
	}
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns the tag set as a sorted slice.
func (e *Entity) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for tag := range e.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ── Hierarchy ──────────────────────────────────────────────────────

// AddChild attaches a child, detaching it from any previous parent first.
// The parent/children relation is kept bidirectionally consistent.
func (e *Entity) AddChild(child *Entity) *Entity {
	if child == nil || child == e || child.parent == e {
		return e
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	return e
}

// RemoveChild detaches a child. Removing a non-child is a silent no-op.
func (e *Entity) RemoveChild(child *Entity) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// ── Lifecycle ──────────────────────────────────────────────────────

// Deactivate flips the entity inactive. Idempotent. Cascades depth-first to
// all children, optionally releases component-owned external resources, runs
// every component's deactivation hook, and notifies the owning world last.
// Physical removal from the world happens at the end-of-tick sweep, never here.
func (e *Entity) Deactivate(cleanup bool) {
	if !e.active {
		return
	}
	for _, child := range e.children {
		child.Deactivate(cleanup)
	}
	if cleanup {
		for _, c := range e.components {
			if rh, ok := c.(ResourceHolder); ok {
				rh.ReleaseResources()
			}
		}
	}
	e.active = false
	for _, c := range e.components {
		if h, ok := c.(DeactivateHook); ok {
			h.OnDeactivate(e)
		}
	}
	if e.world != nil {
		e.world.onEntityDeactivated(e)
	}
}

// Activate flips the entity active again. An entity reactivated before the
// end-of-tick sweep stays in the world.
func (e *Entity) Activate() {
	if e.active {
		return
	}
	e.active = true
	if e.world != nil {
		e.world.onEntityActivated(e)
	}
}

// ── Serialization ──────────────────────────────────────────────────

// Serialize produces the wire/storage record. Components that do not
// implement Serializable omit themselves.
func (e *Entity) Serialize(includeComponents bool) map[string]any {
	out := map[string]any{
		"id":        e.id,
		"name":      e.Name,
		"active":    e.active,
		"tags":      e.Tags(),
		"networkId": e.NetworkID,
	}
	if includeComponents {
		comps := make(map[string]any, len(e.components))
		for t, c := range e.components {
			if s, ok := c.(Serializable); ok {
				comps[string(t)] = s.Serialize()
			}
		}
		out["components"] = comps
	}
	return out
}

// Deserialize applies a serialized record. Component payloads update the
// existing component of that type when present, otherwise construct one
// through the registry; unregistered types in the payload are skipped
// silently to tolerate schema drift. A nil payload is a no-op.
//
// When reg is nil the owning world's registry is used; a detached entity
// with no registry skips component payloads entirely.
func (e *Entity) Deserialize(data map[string]any, includeComponents bool, reg *Registry) {
	if data == nil {
		return
	}
	if v, ok := data["name"].(string); ok {
		e.Name = v
	}
	if v, ok := data["active"].(bool); ok && v != e.active {
		// route through the lifecycle methods so an attached entity's
		// indices, caches, and sweep queue stay consistent
		if v {
			e.Activate()
		} else {
			e.Deactivate(false)
		}
	}
	if v, ok := data["networkId"].(string); ok {
		e.NetworkID = v
	}
	if raw, ok := data["tags"]; ok {
		for _, tag := range anyStrings(raw) {
			e.AddTag(tag)
		}
	}
	if !includeComponents {
		return
	}
	if reg == nil && e.world != nil {
		reg = e.world.registry
	}
	comps, ok := data["components"].(map[string]any)
	if !ok {
		return
	}
	for name, raw := range comps {
		payload, _ := raw.(map[string]any)
		t := TypeID(name)
		if existing, ok := e.components[t]; ok {
			if s, ok := existing.(Serializable); ok {
				s.Deserialize(payload)
			}
			continue
		}
		if reg == nil || !reg.Registered(t) {
			continue
		}
		c, err := reg.Create(t, payload)
		if err != nil {
			continue
		}
		e.AddComponent(c)
	}
}

// anyStrings coerces a decoded JSON/YAML list into strings.
func anyStrings(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
