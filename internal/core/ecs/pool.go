package ecs

// Pool recycles component instances of a single type to cut allocation churn
// under high entity turnover. An instance lives in exactly one place at any
// time: in use by an entity, or on the free list.
type Pool struct {
	typeID TypeID
	ctor   func() Component
	free   []Component
}

func NewPool(typeID TypeID, ctor func() Component) *Pool {
	return &Pool{
		typeID: typeID,
		ctor:   ctor,
		free:   make([]Component, 0, 32),
	}
}

// Acquire returns a released instance when one is available, otherwise
// constructs a new one, then applies the optional payload. Released
// instances were reset on the way in, so prior data never leaks into the
// next acquisition.
func (p *Pool) Acquire(data map[string]any) Component {
	var c Component
	if n := len(p.free); n > 0 {
		c = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		c = p.ctor()
	}
	if data != nil {
		if s, ok := c.(Serializable); ok {
			s.Deserialize(data)
		}
	}
	return c
}

// Release resets an instance and returns it to the free list. Instances of
// the wrong type are not admitted; they simply fall to the garbage collector.
func (p *Pool) Release(c Component) {
	if c == nil || c.Type() != p.typeID {
		return
	}
	if r, ok := c.(Resettable); ok {
		r.Reset()
	}
	p.free = append(p.free, c)
}

// FreeCount reports the current free-list size.
func (p *Pool) FreeCount() int {
	return len(p.free)
}
