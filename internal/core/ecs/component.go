package ecs

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TypeID identifies a component type. IDs are assigned at registration and
// used for all dispatch, indexing, and the wire format — never Go type names.
type TypeID string

// Component is typed data attached to an entity. Components carry no update
// logic; systems do.
type Component interface {
	Type() TypeID
}

// Serializable is implemented by components that participate in the wire and
// storage format. Serialize must emit exactly the component's schema fields;
// Deserialize applies known fields and drops unknown ones silently so
// payloads from other schema versions are tolerated. A nil payload is a no-op.
type Serializable interface {
	Component
	Serialize() map[string]any
	Deserialize(data map[string]any)
}

// Resettable restores a component to its default field values without
// changing identity. Required for pooled reuse.
type Resettable interface {
	Reset()
}

// AddHook runs after the component is installed on an entity.
type AddHook interface {
	OnAdd(e *Entity)
}

// RemoveHook runs before the component is removed or replaced.
type RemoveHook interface {
	OnRemove(e *Entity)
}

// DeactivateHook runs when the owning entity is deactivated.
type DeactivateHook interface {
	OnDeactivate(e *Entity)
}

// ResourceHolder is implemented by components that own external resources
// (render handles, geometry). Entity.Deactivate releases them directly
// instead of relying on a collaborator to notice the deactivation.
type ResourceHolder interface {
	ReleaseResources()
}

// Positioned feeds the world's spatial grid. The first positioned component
// found on an entity determines its cell.
type Positioned interface {
	Position() (x, y float64)
}

// ErrUnknownComponentType is returned when constructing a component whose
// TypeID was never registered.
var ErrUnknownComponentType = errors.New("unknown component type")

// Registry maps component TypeIDs to constructors for data-driven creation.
// It is an owned object, not process-global state, so tests and multiple
// worlds can run isolated registries.
type Registry struct {
	ctors map[TypeID]func() Component
	log   *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		ctors: make(map[TypeID]func() Component, 16),
		log:   log,
	}
}

// Register binds a constructor to a TypeID. Re-registering replaces the
// previous constructor.
func (r *Registry) Register(id TypeID, ctor func() Component) {
	if _, dup := r.ctors[id]; dup {
		r.log.Warn("component type re-registered", zap.String("type", string(id)))
	}
	r.ctors[id] = ctor
}

// Registered reports whether a TypeID has a constructor.
func (r *Registry) Registered(id TypeID) bool {
	_, ok := r.ctors[id]
	return ok
}

// Create constructs a component from its TypeID with default field values,
// then applies the optional payload through Deserialize. Explicit
// construction of an unregistered type fails loudly.
func (r *Registry) Create(id TypeID, data map[string]any) (Component, error) {
	ctor, ok := r.ctors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponentType, id)
	}
	c := ctor()
	if data != nil {
		if s, ok := c.(Serializable); ok {
			s.Deserialize(data)
		}
	}
	return c, nil
}

// Clone produces an independent instance carrying the same serialized data.
func (r *Registry) Clone(c Serializable) (Component, error) {
	return r.Create(c.Type(), c.Serialize())
}
