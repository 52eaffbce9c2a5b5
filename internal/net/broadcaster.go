package net

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
	"github.com/james-salafatinos/mmo4/internal/core/event"
)

// syncFrame is the wire envelope for one tick's entity updates.
type syncFrame struct {
	Type     string           `json:"type"`
	World    string           `json:"world"`
	Time     int64            `json:"time"` // unix millis
	Entities []map[string]any `json:"entities"`
	Removed  []string         `json:"removed,omitempty"` // network ids
}

// Broadcaster is the network collaborator: it subscribes to the world's
// postUpdate event and flushes dirty replicated entities to every client.
// It consumes the entity wire format only.
type Broadcaster struct {
	server *Server
	world  *ecs.World
	log    *zap.Logger

	removed []string
	subs    []event.Subscription
}

func NewBroadcaster(server *Server, world *ecs.World, log *zap.Logger) *Broadcaster {
	b := &Broadcaster{server: server, world: world, log: log}
	b.subs = append(b.subs,
		world.Events().On(event.EntityRemoved, b.onEntityRemoved),
		world.Events().On(event.PostUpdate, b.onPostUpdate),
	)
	return b
}

// Detach unsubscribes from the world's events.
func (b *Broadcaster) Detach() {
	for _, sub := range b.subs {
		b.world.Events().Off(sub)
	}
	b.subs = nil
}

// onEntityRemoved fires before physical removal, so the departing entity's
// network id is still readable.
func (b *Broadcaster) onEntityRemoved(args ...any) {
	e, ok := args[0].(*ecs.Entity)
	if !ok || e.NetworkID == "" {
		return
	}
	b.removed = append(b.removed, e.NetworkID)
}

func (b *Broadcaster) onPostUpdate(...any) {
	frame := syncFrame{
		Type:  "sync",
		World: b.world.Name(),
		Time:  time.Now().UnixMilli(),
	}

	var flushed []*component.NetworkSync
	for _, e := range b.world.FindEntitiesWith(component.NetworkSyncType) {
		nc, _ := e.GetComponent(component.NetworkSyncType)
		ns := nc.(*component.NetworkSync)
		if !ns.Dirty {
			continue
		}
		flushed = append(flushed, ns)
		frame.Entities = append(frame.Entities, e.Serialize(true))
	}
	frame.Removed = b.removed

	if len(frame.Entities) == 0 && len(frame.Removed) == 0 {
		return
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		// flags and removals stay queued for the next tick
		b.log.Error("sync frame marshal failed", zap.Error(err))
		return
	}
	b.server.Broadcast(payload)
	for _, ns := range flushed {
		ns.Dirty = false
	}
	b.removed = nil
}
