package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

const TransformType ecs.TypeID = "transform"

// Transform is an entity's spatial state. Feeds the world's spatial grid.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

func NewTransform(x, y float64) *Transform {
	return &Transform{X: x, Y: y}
}

func (t *Transform) Type() ecs.TypeID { return TransformType }

func (t *Transform) Position() (float64, float64) { return t.X, t.Y }

func (t *Transform) Reset() { *t = Transform{} }

func (t *Transform) Serialize() map[string]any {
	return map[string]any{
		"x":        t.X,
		"y":        t.Y,
		"rotation": t.Rotation,
	}
}

func (t *Transform) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := num(data, "x"); ok {
		t.X = v
	}
	if v, ok := num(data, "y"); ok {
		t.Y = v
	}
	if v, ok := num(data, "rotation"); ok {
		t.Rotation = v
	}
}
