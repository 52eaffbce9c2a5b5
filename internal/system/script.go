package system

import (
	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
	"github.com/james-salafatinos/mmo4/internal/scripting"
)

// script dispatches entities with a Script component to their Lua behavior
// and applies the returned commands.
type script struct {
	engine *scripting.Engine
}

func (s *script) Process(w *ecs.World, e *ecs.Entity, dt float64) {
	sc, _ := e.GetComponent(component.ScriptType)
	behavior := sc.(*component.Script).Behavior
	if behavior == "" {
		return
	}

	ctx := scripting.BehaviorContext{
		EntityID: e.ID(),
		Name:     e.Name,
		DT:       dt,
		Tags:     e.Tags(),
	}
	if tc, ok := e.GetComponent(component.TransformType); ok {
		t := tc.(*component.Transform)
		ctx.X, ctx.Y = t.X, t.Y
	}
	if vc, ok := e.GetComponent(component.VelocityType); ok {
		v := vc.(*component.Velocity)
		ctx.DX, ctx.DY = v.DX, v.DY
	}
	if hc, ok := e.GetComponent(component.HealthType); ok {
		h := hc.(*component.Health)
		ctx.HP, ctx.MaxHP = h.Current, h.Max
	}

	for _, cmd := range s.engine.RunBehavior(behavior, ctx) {
		s.apply(e, cmd)
	}
}

func (s *script) apply(e *ecs.Entity, cmd scripting.Command) {
	switch cmd.Type {
	case "set_velocity":
		if vc, ok := e.GetComponent(component.VelocityType); ok {
			v := vc.(*component.Velocity)
			v.DX, v.DY = cmd.DX, cmd.DY
		} else {
			e.AddComponent(component.NewVelocity(cmd.DX, cmd.DY))
		}
	case "add_tag":
		if cmd.Tag != "" {
			e.AddTag(cmd.Tag)
		}
	case "remove_tag":
		if cmd.Tag != "" {
			e.RemoveTag(cmd.Tag)
		}
	case "deactivate":
		e.Deactivate(true)
	}
}

func NewScriptSystem(engine *scripting.Engine) *ecs.System {
	s := ecs.NewSystem("script", ecs.Query{
		All: []ecs.TypeID{component.ScriptType},
	}, &script{engine: engine})
	s.SetPriority(80)
	return s
}
