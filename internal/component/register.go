package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

// RegisterAll binds every component type to a registry so prefabs, entity
// payloads, and snapshots can construct them data-driven.
func RegisterAll(reg *ecs.Registry) {
	reg.Register(TransformType, func() ecs.Component { return &Transform{} })
	reg.Register(VelocityType, func() ecs.Component { return &Velocity{} })
	reg.Register(HealthType, func() ecs.Component { return &Health{} })
	reg.Register(RenderableType, func() ecs.Component { return &Renderable{Visible: true} })
	reg.Register(NetworkSyncType, func() ecs.Component { return &NetworkSync{} })
	reg.Register(LifetimeType, func() ecs.Component { return &Lifetime{} })
	reg.Register(ScriptType, func() ecs.Component { return &Script{} })
}
