package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-salafatinos/mmo4/internal/core/event"
)

func TestWorldEntityLifecycleAndIndices(t *testing.T) {
	w := NewWorld("test", nil, nil)

	e := w.NewEntity("crate")
	require.NotZero(t, e.ID())
	_, attached := w.EntityByID(e.ID())
	assert.False(t, attached, "NewEntity must not attach")

	e.AddTag("loot")
	e.AddComponent(&testPos{X: 1})
	w.AddEntity(e)

	got, ok := w.EntityByID(e.ID())
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Len(t, w.FindEntitiesWithTag("loot"), 1)
	assert.Len(t, w.FindEntitiesWith("pos"), 1)

	// duplicate add is a no-op
	w.AddEntity(e)
	assert.Len(t, w.Entities(), 1)

	w.RemoveEntity(e)
	_, ok = w.EntityByID(e.ID())
	assert.False(t, ok)
	assert.Empty(t, w.FindEntitiesWithTag("loot"))
	assert.Empty(t, w.FindEntitiesWith("pos"))
	assert.Nil(t, e.World())
}

func TestWorldIDsAreUniqueAndNonZero(t *testing.T) {
	w := NewWorld("test", nil, nil)
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		e := w.SpawnEntity("")
		require.NotZero(t, e.ID())
		require.False(t, seen[e.ID()])
		seen[e.ID()] = true
	}
}

func TestWorldMoveEntityBetweenWorlds(t *testing.T) {
	w1 := NewWorld("one", nil, nil)
	w2 := NewWorld("two", nil, nil)

	e := w1.SpawnEntity("migrant")
	e.AddTag("npc")

	w2.AddEntity(e)
	assert.Same(t, w2, e.World())
	_, inOld := w1.EntityByID(e.ID())
	assert.False(t, inOld)
	assert.Len(t, w2.FindEntitiesWithTag("npc"), 1)
}

func TestWorldIndexTracksComponentChanges(t *testing.T) {
	w := NewWorld("test", nil, nil)

	e1 := w.SpawnEntity("first")
	e1.AddComponent(&testPos{})
	e2 := w.SpawnEntity("second")

	found := w.FindEntitiesWith("pos")
	require.Len(t, found, 1)
	assert.Same(t, e1, found[0])

	e2.AddComponent(&testPos{})
	assert.Len(t, w.FindEntitiesWith("pos"), 2)

	e1.RemoveComponent("pos")
	found = w.FindEntitiesWith("pos")
	require.Len(t, found, 1)
	assert.Same(t, e2, found[0])
}

func TestWorldFindSkipsInactive(t *testing.T) {
	w := NewWorld("test", nil, nil)
	e := w.SpawnEntity("ghost")
	e.AddComponent(&testPos{})
	e.AddTag("npc")

	e.Deactivate(false)
	assert.Empty(t, w.FindEntitiesWith("pos"))
	assert.Empty(t, w.FindEntitiesWithTag("npc"))
	_, ok := w.FindEntityWith("pos")
	assert.False(t, ok)

	e.Activate()
	assert.Len(t, w.FindEntitiesWith("pos"), 1)
}

func TestWorldQueryEntities(t *testing.T) {
	w := NewWorld("test", nil, nil)

	both := w.SpawnEntity("both")
	both.AddComponent(&testPos{}).AddComponent(&testVel{})
	posOnly := w.SpawnEntity("pos-only")
	posOnly.AddComponent(&testPos{})

	found := w.QueryEntities("pos", "vel")
	require.Len(t, found, 1)
	assert.Same(t, both, found[0])

	assert.Nil(t, w.QueryEntities())
	assert.Empty(t, w.QueryEntities("pos", "hook"))
}

func TestWorldSystemPriorityOrder(t *testing.T) {
	w := NewWorld("test", nil, nil)
	var order []int

	mk := func(priority int) *System {
		s := NewSystem("p", Query{}, HandlerFunc(func(_ *World, _ *Entity, _ float64) {
			order = append(order, priority)
		}))
		s.SetPriority(priority)
		return s
	}
	w.RegisterSystem(mk(5))
	w.RegisterSystem(mk(1))
	w.RegisterSystem(mk(10))
	w.SpawnEntity("e")

	w.Start()
	w.Update(time.Now())

	assert.Equal(t, []int{10, 5, 1}, order)
}

func TestWorldEqualPrioritiesKeepRegistrationOrder(t *testing.T) {
	w := NewWorld("test", nil, nil)
	var order []string

	mk := func(name string) *System {
		return NewSystem(name, Query{}, HandlerFunc(func(_ *World, _ *Entity, _ float64) {
			order = append(order, name)
		}))
	}
	w.RegisterSystem(mk("a"))
	w.RegisterSystem(mk("b"))
	w.RegisterSystem(mk("c"))
	w.SpawnEntity("e")

	w.Start()
	w.Update(time.Now())

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestWorldUpdateDeltaTime(t *testing.T) {
	w := NewWorld("test", nil, nil)
	var dts []float64
	w.RegisterSystem(NewSystem("probe", Query{}, HandlerFunc(func(_ *World, _ *Entity, dt float64) {
		dts = append(dts, dt)
	})))
	w.SpawnEntity("e")
	w.Start()

	t0 := time.Now()
	w.Update(t0)
	w.Update(t0.Add(50 * time.Millisecond))
	w.Update(t0.Add(150 * time.Millisecond))

	require.Len(t, dts, 3)
	assert.Zero(t, dts[0], "first tick has no previous timestamp")
	assert.InDelta(t, 0.05, dts[1], 1e-9)
	assert.InDelta(t, 0.1, dts[2], 1e-9)
}

func TestWorldUpdateRequiresRunning(t *testing.T) {
	w := NewWorld("test", nil, nil)
	ran := false
	w.RegisterSystem(NewSystem("probe", Query{}, HandlerFunc(func(_ *World, _ *Entity, _ float64) {
		ran = true
	})))
	w.SpawnEntity("e")

	w.Update(time.Now())
	assert.False(t, ran)

	w.Start()
	w.Update(time.Now())
	assert.True(t, ran)

	ran = false
	w.Stop()
	w.Update(time.Now())
	assert.False(t, ran)
}

func TestWorldSweepDefersRemovalUntilTickEnd(t *testing.T) {
	w := NewWorld("test", nil, nil)

	victim := w.SpawnEntity("victim")
	victim.AddTag("doomed")
	witness := w.SpawnEntity("witness")
	witness.AddComponent(&testPos{})

	reaper := NewSystem("reaper", Query{Tags: []string{"doomed"}}, HandlerFunc(func(_ *World, e *Entity, _ float64) {
		e.Deactivate(false)
	}))
	reaper.SetPriority(100)
	w.RegisterSystem(reaper)

	var stillAttached bool
	observer := NewSystem("observer", Query{All: []TypeID{"pos"}}, HandlerFunc(func(w *World, _ *Entity, _ float64) {
		_, stillAttached = w.EntityByID(victim.ID())
	}))
	observer.SetPriority(1)
	w.RegisterSystem(observer)

	w.Start()
	w.Update(time.Now())

	// a later system in the same tick still sees the deactivated entity
	assert.True(t, stillAttached)
	// after the tick the sweep has removed it
	_, ok := w.EntityByID(victim.ID())
	assert.False(t, ok)
	assert.Nil(t, victim.World())
}

func TestWorldReactivationBeforeSweepKeepsEntity(t *testing.T) {
	w := NewWorld("test", nil, nil)

	e := w.SpawnEntity("phoenix")
	e.AddTag("reviving")

	w.RegisterSystem(NewSystem("cycle", Query{Tags: []string{"reviving"}}, HandlerFunc(func(_ *World, e *Entity, _ float64) {
		e.Deactivate(false)
		e.Activate()
	})))

	w.Start()
	w.Update(time.Now())

	_, ok := w.EntityByID(e.ID())
	assert.True(t, ok)
	assert.True(t, e.Active())
}

func TestWorldAddInactiveEntityGetsSwept(t *testing.T) {
	w := NewWorld("test", nil, nil)

	e := w.NewEntity("stillborn")
	e.Deactivate(false)
	w.AddEntity(e)
	_, ok := w.EntityByID(e.ID())
	require.True(t, ok)

	w.Start()
	w.Update(time.Now())

	_, ok = w.EntityByID(e.ID())
	assert.False(t, ok)
}

func TestWorldEvents(t *testing.T) {
	w := NewWorld("test", nil, nil)

	var added, removed []*Entity
	w.Events().On(event.EntityAdded, func(args ...any) {
		added = append(added, args[0].(*Entity))
	})
	w.Events().On(event.EntityRemoved, func(args ...any) {
		e := args[0].(*Entity)
		removed = append(removed, e)
		// the entity is still attached and queryable during the event
		_, ok := w.EntityByID(e.ID())
		assert.True(t, ok)
	})

	e := w.SpawnEntity("crate")
	require.Len(t, added, 1)
	assert.Same(t, e, added[0])

	w.RemoveEntity(e)
	require.Len(t, removed, 1)
}

func TestWorldPreAndPostUpdateEvents(t *testing.T) {
	w := NewWorld("test", nil, nil)

	var phases []string
	w.Events().On(event.PreUpdate, func(...any) { phases = append(phases, "pre") })
	w.Events().On(event.PostUpdate, func(...any) { phases = append(phases, "post") })
	w.RegisterSystem(NewSystem("mid", Query{}, HandlerFunc(func(_ *World, _ *Entity, _ float64) {
		phases = append(phases, "system")
	})))
	w.SpawnEntity("e")

	w.Start()
	w.Update(time.Now())

	assert.Equal(t, []string{"pre", "system", "post"}, phases)
}

func TestWorldUnregisterSystem(t *testing.T) {
	w := NewWorld("test", nil, nil)
	s := NewSystem("gone", Query{}, nil)
	w.RegisterSystem(s)
	require.Len(t, w.Systems(), 1)

	w.UnregisterSystem(s)
	assert.Empty(t, w.Systems())
	w.UnregisterSystem(s) // no-op
}

func TestWorldSerializeAndLoadEntities(t *testing.T) {
	reg := newTestRegistry()
	src := NewWorld("src", reg, nil)

	e := src.SpawnEntity("guard")
	e.AddTag("npc")
	e.AddComponent(&testPos{X: 5, Y: 6})

	records := src.Serialize()
	require.Len(t, records, 1)

	dst := NewWorld("dst", newTestRegistry(), nil)
	loaded := dst.LoadEntities(records)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "guard", got.Name)
	assert.True(t, got.HasTag("npc"))
	pc, ok := got.GetComponent("pos")
	require.True(t, ok)
	assert.Equal(t, 5.0, pc.(*testPos).X)
}
