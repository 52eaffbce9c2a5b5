package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldNearby(t *testing.T) {
	w := NewWorld("test", nil, nil)
	w.EnableSpatialIndex(10)

	near := w.SpawnEntity("near")
	near.AddComponent(&testPos{X: 5, Y: 5})
	edge := w.SpawnEntity("edge")
	edge.AddComponent(&testPos{X: 19, Y: 0}) // one cell over, inside the 3x3 window
	far := w.SpawnEntity("far")
	far.AddComponent(&testPos{X: 200, Y: 200})
	nowhere := w.SpawnEntity("nowhere") // no positioned component
	_ = nowhere

	found := w.Nearby(0, 0)
	require.Len(t, found, 2)
	assert.Contains(t, found, near)
	assert.Contains(t, found, edge)
}

func TestWorldNearbyNegativeCoordinates(t *testing.T) {
	w := NewWorld("test", nil, nil)
	w.EnableSpatialIndex(10)

	e := w.SpawnEntity("sw")
	e.AddComponent(&testPos{X: -5, Y: -5})

	assert.Len(t, w.Nearby(-1, -1), 1)
	assert.Empty(t, w.Nearby(50, 50))
}

func TestWorldRefreshPositionMovesCells(t *testing.T) {
	w := NewWorld("test", nil, nil)
	w.EnableSpatialIndex(10)

	e := w.SpawnEntity("walker")
	pos := &testPos{X: 0, Y: 0}
	e.AddComponent(pos)
	require.Len(t, w.Nearby(0, 0), 1)

	pos.X, pos.Y = 100, 100
	w.RefreshPosition(e)

	assert.Empty(t, w.Nearby(0, 0))
	assert.Len(t, w.Nearby(100, 100), 1)
}

func TestWorldSpatialIndexTracksComponentRemoval(t *testing.T) {
	w := NewWorld("test", nil, nil)
	w.EnableSpatialIndex(10)

	e := w.SpawnEntity("ghost")
	e.AddComponent(&testPos{X: 1, Y: 1})
	require.Len(t, w.Nearby(0, 0), 1)

	e.RemoveComponent("pos")
	assert.Empty(t, w.Nearby(0, 0))
}

func TestWorldSpatialIndexEnabledLate(t *testing.T) {
	w := NewWorld("test", nil, nil)
	e := w.SpawnEntity("early")
	e.AddComponent(&testPos{X: 2, Y: 2})

	assert.Nil(t, w.Nearby(0, 0), "no grid, no results")

	w.EnableSpatialIndex(10)
	assert.Len(t, w.Nearby(0, 0), 1)

	w.RemoveEntity(e)
	assert.Empty(t, w.Nearby(0, 0))
}
