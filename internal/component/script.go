package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

const ScriptType ecs.TypeID = "script"

// Script binds an entity to a Lua behavior function by name. The script
// system builds a context table from the entity's components each tick and
// applies the commands the behavior returns.
type Script struct {
	Behavior string
}

func NewScript(behavior string) *Script {
	return &Script{Behavior: behavior}
}

func (s *Script) Type() ecs.TypeID { return ScriptType }

func (s *Script) Reset() { *s = Script{} }

func (s *Script) Serialize() map[string]any {
	return map[string]any{
		"behavior": s.Behavior,
	}
}

func (s *Script) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := str(data, "behavior"); ok {
		s.Behavior = v
	}
}
