package ecs

// IDSource hands out monotonically increasing entity identifiers.
// Identifiers are never reused. Each World owns its own source so tests can
// construct isolated worlds with independent id spaces.
type IDSource struct {
	next uint64
}

func NewIDSource() *IDSource {
	return &IDSource{}
}

// Next returns the next identifier. The zero id is never issued.
func (s *IDSource) Next() uint64 {
	s.next++
	return s.next
}
