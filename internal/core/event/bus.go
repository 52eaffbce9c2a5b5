package event

// Bus is a synchronous, world-local publish/subscribe mechanism. Subscribers
// run inline during Emit, in registration order; emission is never deferred
// or batched. Accessed only from the game loop goroutine — no locks.
type Bus struct {
	nextID   uint64
	handlers map[string][]entry
}

// Handler receives the arguments passed to Emit.
type Handler func(args ...any)

// Subscription identifies a registered handler for later removal. Handles
// are used because Go functions are not comparable.
type Subscription struct {
	event string
	id    uint64
}

type entry struct {
	id uint64
	fn Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]entry, 16),
	}
}

// On registers a handler for an event name and returns its subscription.
func (b *Bus) On(event string, fn Handler) Subscription {
	b.nextID++
	sub := Subscription{event: event, id: b.nextID}
	b.handlers[event] = append(b.handlers[event], entry{id: sub.id, fn: fn})
	return sub
}

// Off removes a subscription. Removing an unknown subscription is a no-op.
func (b *Bus) Off(sub Subscription) {
	entries := b.handlers[sub.event]
	for i, en := range entries {
		if en.id == sub.id {
			b.handlers[sub.event] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Emit delivers args to every subscriber of the event, in registration
// order. The subscriber list is snapshotted so handlers may subscribe or
// unsubscribe during delivery.
func (b *Bus) Emit(event string, args ...any) {
	entries := b.handlers[event]
	if len(entries) == 0 {
		return
	}
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	for _, en := range snapshot {
		en.fn(args...)
	}
}

// SubscriberCount reports how many handlers an event currently has.
func (b *Bus) SubscriberCount(event string) int {
	return len(b.handlers[event])
}
