package ecs

import "math"

// spatialGrid is a cell-based index over entities with positioned
// components. Cell size is chosen by the caller so a 3x3 neighbourhood of
// cells covers its interest radius. Accessed only from the game loop
// goroutine — no locks.
type spatialGrid struct {
	cellSize float64
	cells    map[cellKey]map[uint64]*Entity
	where    map[uint64]cellKey // current cell per entity
}

type cellKey struct {
	cx int32
	cy int32
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[uint64]*Entity),
		where:    make(map[uint64]cellKey),
	}
}

func (g *spatialGrid) key(x, y float64) cellKey {
	return cellKey{
		cx: int32(math.Floor(x / g.cellSize)),
		cy: int32(math.Floor(y / g.cellSize)),
	}
}

// insert files an entity by its positioned component. Entities without one
// stay out of the grid.
func (g *spatialGrid) insert(e *Entity) {
	x, y, ok := e.position()
	if !ok {
		return
	}
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[uint64]*Entity)
		g.cells[k] = cell
	}
	cell[e.id] = e
	g.where[e.id] = k
}

func (g *spatialGrid) remove(e *Entity) {
	k, ok := g.where[e.id]
	if !ok {
		return
	}
	delete(g.where, e.id)
	if cell := g.cells[k]; cell != nil {
		delete(cell, e.id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// refresh re-files an entity after its position (or positioned component
// set) changed. No map churn when the cell is unchanged.
func (g *spatialGrid) refresh(e *Entity) {
	x, y, ok := e.position()
	if !ok {
		g.remove(e)
		return
	}
	newK := g.key(x, y)
	if oldK, filed := g.where[e.id]; filed && oldK == newK {
		return
	}
	g.remove(e)
	cell := g.cells[newK]
	if cell == nil {
		cell = make(map[uint64]*Entity)
		g.cells[newK] = cell
	}
	cell[e.id] = e
	g.where[e.id] = newK
}

// nearby returns all entities in the 3x3 cell neighbourhood around a point.
// Callers do fine-grained distance filtering.
func (g *spatialGrid) nearby(x, y float64) []*Entity {
	center := g.key(x, y)
	var out []*Entity
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			k := cellKey{cx: center.cx + dx, cy: center.cy + dy}
			for _, e := range g.cells[k] {
				out = append(out, e)
			}
		}
	}
	return out
}
