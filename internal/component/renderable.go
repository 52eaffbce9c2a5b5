package component

import "github.com/james-salafatinos/mmo4/internal/core/ecs"

const RenderableType ecs.TypeID = "renderable"

// RenderHandle is the mutable resource owned by the render collaborator.
// The core never calls into rendering beyond this handle/flag convention.
type RenderHandle interface {
	Dispose()
}

// Renderable marks an entity for visual representation. The render
// collaborator attaches/detaches Handle to its scene graph and copies the
// entity's transform into it each frame. Entity deactivation with cleanup
// disposes the handle directly rather than waiting for the collaborator to
// notice.
type Renderable struct {
	Handle   RenderHandle
	Attached bool
	Model    string
	Visible  bool
}

func NewRenderable(model string) *Renderable {
	return &Renderable{Model: model, Visible: true}
}

func (r *Renderable) Type() ecs.TypeID { return RenderableType }

func (r *Renderable) Reset() { *r = Renderable{Visible: true} }

// ReleaseResources disposes the handle and clears the attached flag.
func (r *Renderable) ReleaseResources() {
	if r.Handle != nil {
		r.Handle.Dispose()
		r.Handle = nil
	}
	r.Attached = false
}

// Serialize omits the handle and attached flag: both are local render state,
// not world state.
func (r *Renderable) Serialize() map[string]any {
	return map[string]any{
		"model":   r.Model,
		"visible": r.Visible,
	}
}

func (r *Renderable) Deserialize(data map[string]any) {
	if data == nil {
		return
	}
	if v, ok := str(data, "model"); ok {
		r.Model = v
	}
	if v, ok := boolean(data, "visible"); ok {
		r.Visible = v
	}
}
