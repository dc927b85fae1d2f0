// Package components defines the ECS components for viewer scene entities.
package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/track"
)

// Transform is an entity's current position in ECEF meters. Tracked is
// false while the entity's source reports no position; untracked entities
// are skipped by the render and overlay systems.
type Transform struct {
	Pos     mgl64.Vec3
	Tracked bool
}

// Mobile attaches a track source to an entity. The motion system samples
// it at the simulation clock every frame and writes the result into the
// entity's Transform.
type Mobile struct {
	Source track.Source
}

// ShapeKind selects the analytic geometry used for an entity.
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

// Shape is an entity's renderable geometry. Shaped entities take part in
// the main render and in every sensor depth pass, so they occlude the
// sensor's line of sight.
type Shape struct {
	Kind   ShapeKind
	Radius float64    // sphere radius, meters
	Size   mgl64.Vec3 // box extent per axis, meters
	Color  render.RGBA
}

// Object returns the render object for the shape centered at p.
func (s *Shape) Object(p mgl64.Vec3) render.Object {
	if s.Kind == ShapeBox {
		return render.BoxAt(p, s.Size, s.Color)
	}
	return render.Sphere{Center: p, Radius: s.Radius, Color: s.Color}
}

// Kind classifies a platform's end of the sight line.
type Kind uint8

const (
	KindObserver Kind = iota
	KindTarget
)

// Platform bundles identity for a moving scenario entity. Platforms are
// drawn as screen-space markers rather than scene geometry: a body around
// the observer would fill the sensor's own depth map.
type Platform struct {
	ID   uint32
	Kind Kind
	Name string
}

// Terrain tags a static occluder feature for efficient querying.
type Terrain struct{}
