package system

import (
	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

// spatial re-files moved entities in the world's cell grid. Runs after
// movement so queries later in the tick see current cells.
type spatial struct{}

func (spatial) Process(w *ecs.World, e *ecs.Entity, _ float64) {
	w.RefreshPosition(e)
}

func NewSpatialSystem() *ecs.System {
	s := ecs.NewSystem("spatial", ecs.Query{
		All: []ecs.TypeID{component.TransformType},
	}, spatial{})
	s.SetPriority(90)
	return s
}
