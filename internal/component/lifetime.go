package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

const LifetimeType ecs.TypeID = "lifetime"

// Lifetime deactivates its entity when Remaining reaches zero. Used for
// projectiles, ground drops, and other transient spawns.
type Lifetime struct {
	Remaining float64 // seconds
}

func NewLifetime(seconds float64) *Lifetime {
	return &Lifetime{Remaining: seconds}
}

func (l *Lifetime) Type() ecs.TypeID { return LifetimeType }

func (l *Lifetime) Reset() { *l = Lifetime{} }

func (l *Lifetime) Serialize() map[string]any {
	return map[string]any{
		"remaining": l.Remaining,
	}
}

func (l *Lifetime) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := num(data, "remaining"); ok {
		l.Remaining = v
	}
}
