package viewer

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/scene"
)

// motionSystem samples every mobile entity's track at the frame's sim
// time. Entities whose source reports no position keep their last known
// transform and are flagged untracked.
func (v *Viewer) motionSystem(fs *scene.FrameState) {
	query := v.motionFilter.Query()
	for query.Next() {
		tr, mob := query.Get()
		p, ok := mob.Source.PositionAt(fs.Time)
		tr.Tracked = ok
		if ok {
			tr.Pos = p
		}
	}
}

// shapePrimitive adapts one shaped entity into the scene's primitive
// list, so it occludes both the main view and the sensor's depth passes.
type shapePrimitive struct {
	entity    ecs.Entity
	transform *ecs.Map1[components.Transform]
	shape     *ecs.Map1[components.Shape]
}

// Update implements scene.Primitive; the motion system already ran as a
// pre-render hook, so the transform is current.
func (p *shapePrimitive) Update(*scene.FrameState) {}

// Object implements scene.Primitive.
func (p *shapePrimitive) Object() (render.Object, bool) {
	tr := p.transform.Get(p.entity)
	if tr == nil || !tr.Tracked {
		return nil, false
	}
	sh := p.shape.Get(p.entity)
	if sh == nil {
		return nil, false
	}
	return sh.Object(tr.Pos), true
}
