package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRecyclesInstances(t *testing.T) {
	p := NewPool("pos", func() Component { return &testPos{} })

	first := p.Acquire(map[string]any{"x": 3.0})
	require.Equal(t, 3.0, first.(*testPos).X)
	assert.Zero(t, p.FreeCount())

	p.Release(first)
	assert.Equal(t, 1, p.FreeCount())

	second := p.Acquire(nil)
	assert.Same(t, first, second)
	assert.Zero(t, p.FreeCount())
}

func TestPoolResetsOnRelease(t *testing.T) {
	p := NewPool("pos", func() Component { return &testPos{} })

	c := p.Acquire(map[string]any{"x": 9.0, "y": 9.0})
	p.Release(c)

	reused := p.Acquire(nil).(*testPos)
	assert.Zero(t, reused.X, "pooled data must not leak into the next acquisition")
	assert.Zero(t, reused.Y)
}

func TestPoolRejectsWrongType(t *testing.T) {
	p := NewPool("pos", func() Component { return &testPos{} })

	p.Release(&testVel{})
	assert.Zero(t, p.FreeCount())
	p.Release(nil)
	assert.Zero(t, p.FreeCount())
}
