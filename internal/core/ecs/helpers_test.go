package ecs

// Test component types. Kept local so the core package tests carry no
// dependency on the game component set.

type testPos struct {
	X, Y float64
}

func (p *testPos) Type() TypeID                 { return "pos" }
func (p *testPos) Position() (float64, float64) { return p.X, p.Y }
func (p *testPos) Reset()                       { *p = testPos{} }

func (p *testPos) Serialize() map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

func (p *testPos) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := data["x"].(float64); ok {
		p.X = v
	}
	if v, ok := data["y"].(float64); ok {
		p.Y = v
	}
}

type testVel struct {
	DX, DY float64
}

func (v *testVel) Type() TypeID { return "vel" }
func (v *testVel) Reset()       { *v = testVel{} }

func (v *testVel) Serialize() map[string]any {
	return map[string]any{"dx": v.DX, "dy": v.DY}
}

func (v *testVel) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if val, ok := data["dx"].(float64); ok {
		v.DX = val
	}
	if val, ok := data["dy"].(float64); ok {
		v.DY = val
	}
}

// hookComp counts every lifecycle hook invocation.
type hookComp struct {
	adds, removes, deacts int
}

func (h *hookComp) Type() TypeID        { return "hook" }
func (h *hookComp) OnAdd(*Entity)       { h.adds++ }
func (h *hookComp) OnRemove(*Entity)    { h.removes++ }
func (h *hookComp) OnDeactivate(*Entity) { h.deacts++ }

// resComp records external resource release.
type resComp struct {
	released bool
}

func (r *resComp) Type() TypeID      { return "res" }
func (r *resComp) ReleaseResources() { r.released = true }

func newTestRegistry() *Registry {
	reg := NewRegistry(nil)
	reg.Register("pos", func() Component { return &testPos{} })
	reg.Register("vel", func() Component { return &testVel{} })
	return reg
}
