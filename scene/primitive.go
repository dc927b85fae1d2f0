package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/track"
)

// Primitive is scene content that moves with the simulation clock.
// Update runs once per frame before the main render; Object reports the
// current renderable, or ok=false while the primitive has no position.
type Primitive interface {
	Update(fs *FrameState)
	Object() (o render.Object, ok bool)
}

// MovingSphere is a sphere that follows a track source.
type MovingSphere struct {
	Source track.Source
	Radius float64
	Color  render.RGBA

	pos mgl64.Vec3
	ok  bool
}

func (p *MovingSphere) Update(fs *FrameState) {
	p.pos, p.ok = p.Source.PositionAt(fs.Time)
}

func (p *MovingSphere) Object() (render.Object, bool) {
	return render.Sphere{Center: p.pos, Radius: p.Radius, Color: p.Color}, p.ok
}

// MovingBox is an axis-aligned box that follows a track source.
type MovingBox struct {
	Source track.Source
	Size   mgl64.Vec3
	Color  render.RGBA

	pos mgl64.Vec3
	ok  bool
}

func (p *MovingBox) Update(fs *FrameState) {
	p.pos, p.ok = p.Source.PositionAt(fs.Time)
}

func (p *MovingBox) Object() (render.Object, bool) {
	return render.BoxAt(p.pos, p.Size, p.Color), p.ok
}
