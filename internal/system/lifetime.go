package system

import (
	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

// lifetime counts down transient entities and deactivates them when
// expired. Physical removal happens at the world's end-of-tick sweep.
type lifetime struct{}

func (lifetime) Process(_ *ecs.World, e *ecs.Entity, dt float64) {
	lc, _ := e.GetComponent(component.LifetimeType)
	l := lc.(*component.Lifetime)
	l.Remaining -= dt
	if l.Remaining <= 0 {
		e.Deactivate(true)
	}
}

func NewLifetimeSystem() *ecs.System {
	s := ecs.NewSystem("lifetime", ecs.Query{
		All: []ecs.TypeID{component.LifetimeType},
	}, lifetime{})
	s.SetPriority(50)
	return s
}
