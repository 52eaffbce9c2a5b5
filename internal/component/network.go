package component

import (
	"github.com/google/uuid"

	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

const NetworkSyncType ecs.TypeID = "networkSync"

// NetworkSync marks an entity for replication. The sync system digests the
// entity's serialized form each tick and flips Dirty when it changed; the
// broadcaster consumes and clears Dirty on postUpdate.
type NetworkSync struct {
	ID     string
	Dirty  bool
	Digest uint64 // last broadcast content hash, not serialized
}

func NewNetworkSync() *NetworkSync {
	return &NetworkSync{ID: uuid.NewString(), Dirty: true}
}

func (n *NetworkSync) Type() ecs.TypeID { return NetworkSyncType }

func (n *NetworkSync) Reset() { *n = NetworkSync{} }

// OnAdd mirrors the sync id onto the entity's network identifier.
func (n *NetworkSync) OnAdd(e *ecs.Entity) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	e.NetworkID = n.ID
}

func (n *NetworkSync) Serialize() map[string]any {
	return map[string]any{
		"id": n.ID,
	}
}

func (n *NetworkSync) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := str(data, "id"); ok {
		n.ID = v
	}
}
