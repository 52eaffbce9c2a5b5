package system

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"

	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

// sync digests each replicated entity's serialized form and marks its
// NetworkSync dirty when the content changed since the last broadcast.
// Runs late in the tick so it sees the frame's final state; the broadcaster
// drains dirty flags on postUpdate.
type sync struct{}

func (sync) Process(_ *ecs.World, e *ecs.Entity, _ float64) {
	nc, _ := e.GetComponent(component.NetworkSyncType)
	ns := nc.(*component.NetworkSync)

	// encoding/json sorts map keys, so equal state yields equal bytes.
	payload, err := json.Marshal(e.Serialize(true))
	if err != nil {
		return
	}
	digest := xxhash.Sum64(payload)
	if digest != ns.Digest {
		ns.Digest = digest
		ns.Dirty = true
	}
}

func NewSyncSystem() *ecs.System {
	s := ecs.NewSystem("sync", ecs.Query{
		All: []ecs.TypeID{component.NetworkSyncType},
	}, sync{})
	s.SetPriority(10)
	return s
}
