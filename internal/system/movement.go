package system

import (
	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

// movement integrates Velocity into Transform on a fixed physics cadence,
// decoupled from the driver's variable tick interval.
type movement struct{}

func (movement) Process(w *ecs.World, e *ecs.Entity, dt float64) {
	tc, _ := e.GetComponent(component.TransformType)
	vc, _ := e.GetComponent(component.VelocityType)
	t := tc.(*component.Transform)
	v := vc.(*component.Velocity)
	t.X += v.DX * dt
	t.Y += v.DY * dt
}

// NewMovementSystem builds the movement system with the given fixed step in
// seconds (zero runs on the driver's cadence).
func NewMovementSystem(fixedStep float64) *ecs.System {
	s := ecs.NewSystem("movement", ecs.Query{
		All: []ecs.TypeID{component.TransformType, component.VelocityType},
	}, movement{})
	s.SetPriority(100)
	if fixedStep > 0 {
		s.SetFixedStep(fixedStep)
	}
	return s
}
