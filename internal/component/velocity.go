package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

const VelocityType ecs.TypeID = "velocity"

// Velocity is linear movement in world units per second, integrated into
// Transform by the movement system.
type Velocity struct {
	DX float64
	DY float64
}

func NewVelocity(dx, dy float64) *Velocity {
	return &Velocity{DX: dx, DY: dy}
}

func (v *Velocity) Type() ecs.TypeID { return VelocityType }

func (v *Velocity) Reset() { *v = Velocity{} }

func (v *Velocity) Serialize() map[string]any {
	return map[string]any{
		"dx": v.DX,
		"dy": v.DY,
	}
}

func (v *Velocity) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if val, ok := num(data, "dx"); ok {
		v.DX = val
	}
	if val, ok := num(data, "dy"); ok {
		v.DY = val
	}
}
