package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

func TestRegisterAll(t *testing.T) {
	reg := ecs.NewRegistry(nil)
	RegisterAll(reg)

	for _, id := range []ecs.TypeID{
		TransformType, VelocityType, HealthType, RenderableType,
		NetworkSyncType, LifetimeType, ScriptType,
	} {
		assert.True(t, reg.Registered(id), "%s", id)
	}
}

func TestTransformDeserializeToleratesNumericTypes(t *testing.T) {
	// payloads cross JSON, YAML, and Lua boundaries with mixed numeric types
	tr := &Transform{}
	tr.Deserialize(map[string]any{
		"x":        int(3),
		"y":        float32(4.5),
		"rotation": int64(90),
	})
	assert.Equal(t, 3.0, tr.X)
	assert.Equal(t, 4.5, tr.Y)
	assert.Equal(t, 90.0, tr.Rotation)

	// unknown and missing fields leave state untouched
	tr.Deserialize(map[string]any{"z": 1.0})
	assert.Equal(t, 3.0, tr.X)
	tr.Deserialize(nil)
	assert.Equal(t, 3.0, tr.X)
}

func TestTransformFeedsSpatialGrid(t *testing.T) {
	w := ecs.NewWorld("test", nil, nil)
	w.EnableSpatialIndex(16)

	e := w.SpawnEntity("marker")
	e.AddComponent(NewTransform(8, 8))

	assert.Len(t, w.Nearby(0, 0), 1)
}

func TestHealthDepleted(t *testing.T) {
	h := NewHealth(50)
	assert.Equal(t, 50, h.Current)
	assert.False(t, h.Depleted())

	h.Current = 0
	assert.True(t, h.Depleted())
	h.Current = -3
	assert.True(t, h.Depleted())
}

func TestRenderableReleaseResources(t *testing.T) {
	handle := &fakeHandle{}
	r := NewRenderable("tree")
	r.Handle = handle
	r.Attached = true

	r.ReleaseResources()
	assert.True(t, handle.disposed)
	assert.Nil(t, r.Handle)
	assert.False(t, r.Attached)

	r.ReleaseResources() // nil handle is a no-op
}

func TestRenderableSerializeOmitsLocalState(t *testing.T) {
	r := NewRenderable("tree")
	r.Handle = &fakeHandle{}
	r.Attached = true

	data := r.Serialize()
	assert.Equal(t, map[string]any{"model": "tree", "visible": true}, data)
}

func TestRenderableResetKeepsVisibleDefault(t *testing.T) {
	r := NewRenderable("tree")
	r.Visible = false
	r.Reset()
	assert.True(t, r.Visible)
	assert.Empty(t, r.Model)
}

func TestNetworkSyncMirrorsEntityNetworkID(t *testing.T) {
	w := ecs.NewWorld("test", nil, nil)
	e := w.SpawnEntity("player")

	ns := NewNetworkSync()
	require.NotEmpty(t, ns.ID)
	assert.True(t, ns.Dirty, "fresh sync components broadcast at least once")

	e.AddComponent(ns)
	assert.Equal(t, ns.ID, e.NetworkID)
}

func TestNetworkSyncAssignsMissingID(t *testing.T) {
	w := ecs.NewWorld("test", nil, nil)
	e := w.SpawnEntity("restored")

	ns := &NetworkSync{}
	e.AddComponent(ns)
	assert.NotEmpty(t, ns.ID)
	assert.Equal(t, ns.ID, e.NetworkID)
}

func TestLifetimeRoundTrip(t *testing.T) {
	l := NewLifetime(12.5)
	data := l.Serialize()

	restored := &Lifetime{}
	restored.Deserialize(data)
	assert.Equal(t, 12.5, restored.Remaining)
}

func TestScriptBehaviorBinding(t *testing.T) {
	s := NewScript("wander")

	restored := &Script{}
	restored.Deserialize(s.Serialize())
	assert.Equal(t, "wander", restored.Behavior)

	restored.Reset()
	assert.Empty(t, restored.Behavior)
}

type fakeHandle struct {
	disposed bool
}

func (f *fakeHandle) Dispose() { f.disposed = true }
