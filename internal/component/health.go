package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

const HealthType ecs.TypeID = "health"

type Health struct {
	Current int
	Max     int
}

func NewHealth(max int) *Health {
	return &Health{Current: max, Max: max}
}

func (h *Health) Type() ecs.TypeID { return HealthType }

func (h *Health) Reset() { *h = Health{} }

func (h *Health) Depleted() bool { return h.Current <= 0 }

func (h *Health) Serialize() map[string]any {
	return map[string]any{
		"current": h.Current,
		"max":     h.Max,
	}
}

func (h *Health) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := num(data, "current"); ok {
		h.Current = int(v)
	}
	if v, ok := num(data, "max"); ok {
		h.Max = int(v)
	}
}
