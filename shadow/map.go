// Package shadow implements depth-only visibility maps rendered from a
// sensor's point of view. A Map owns the depth storage and the light-space
// transform; the host renders into it once per frame.
package shadow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

// Map is a square spot-light style depth target. The depth allocation is
// made once at creation; per-frame camera refreshes reuse it in place.
type Map struct {
	cam        geom.Camera
	resolution int
	depth      []float32

	depthBias float64
	darkness  float64

	// Receiver-side biasing: normal offset stays on, terrain bias stays
	// zero for the lifetime of the map.
	normalOffset bool
	terrainBias  float64

	ready     bool
	destroyed bool
}

// NewMap allocates a resolution by resolution depth target viewing the
// scene through cam. cam.Far bounds the sensor range.
func NewMap(cam geom.Camera, resolution int, depthBias float64) (*Map, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("shadow: resolution must be positive, got %d", resolution)
	}
	if cam.Far <= cam.Near {
		return nil, fmt.Errorf("shadow: camera far %v must exceed near %v", cam.Far, cam.Near)
	}
	if depthBias < 0 {
		return nil, fmt.Errorf("shadow: depth bias must not be negative, got %v", depthBias)
	}

	m := &Map{
		cam:          cam,
		resolution:   resolution,
		depth:        make([]float32, resolution*resolution),
		depthBias:    depthBias,
		darkness:     0.3,
		normalOffset: true,
		terrainBias:  0,
	}
	for i := range m.depth {
		m.depth[i] = 1
	}
	return m, nil
}

// UpdateView refreshes the light camera in place: position, orientation
// and range all follow cam. The depth contents keep their previous pass
// until the host renders again.
func (m *Map) UpdateView(cam geom.Camera) {
	m.cam = cam
	m.terrainBias = 0
}

// Camera returns the current light camera.
func (m *Map) Camera() geom.Camera {
	return m.cam
}

// Position returns the light camera position.
func (m *Map) Position() mgl64.Vec3 {
	return m.cam.Position
}

// MaxDistance returns the sensor range bound (the light camera far plane).
func (m *Map) MaxDistance() float64 {
	return m.cam.Far
}

// Resolution returns the depth target edge length in texels.
func (m *Map) Resolution() int {
	return m.resolution
}

// TexelSize returns the width of one texel in [0,1] map coordinates.
func (m *Map) TexelSize() float64 {
	return 1.0 / float64(m.resolution)
}

// Depth exposes the raw depth buffer (row-major, resolution² texels) for
// the host's depth pass to fill.
func (m *Map) Depth() []float32 {
	return m.depth
}

// CompleteDepthPass marks the buffer contents valid. Until the first call
// the map is not ready and consumers must not sample it.
func (m *Map) CompleteDepthPass() {
	m.ready = true
}

// Ready reports whether at least one depth pass has completed.
func (m *Map) Ready() bool {
	return m.ready && !m.destroyed
}

// DepthAt reads texel (ix, iy), clamping indices to the map edges.
func (m *Map) DepthAt(ix, iy int) float32 {
	if ix < 0 {
		ix = 0
	} else if ix >= m.resolution {
		ix = m.resolution - 1
	}
	if iy < 0 {
		iy = 0
	} else if iy >= m.resolution {
		iy = m.resolution - 1
	}
	return m.depth[iy*m.resolution+ix]
}

// TexelOf maps [0,1]² map coordinates to texel indices. v runs bottom-up
// while texel rows run top-down, so the row index flips.
func (m *Map) TexelOf(u, v float64) (ix, iy int) {
	r := float64(m.resolution)
	return int(u * r), int((1 - v) * r)
}

// Sample reads the depth at map coordinates (u, v) in [0,1], nearest texel.
func (m *Map) Sample(u, v float64) float32 {
	ix, iy := m.TexelOf(u, v)
	return m.DepthAt(ix, iy)
}

// LightMatrix returns the world-to-map transform: points inside the sensor
// frustum land in the unit cube [0,1]³, with z the compare depth.
func (m *Map) LightMatrix() mgl64.Mat4 {
	scaleBias := mgl64.Translate3D(0.5, 0.5, 0.5).Mul4(mgl64.Scale3D(0.5, 0.5, 0.5))
	return scaleBias.Mul4(m.cam.ViewProj())
}

// DepthBias returns the base comparison bias.
func (m *Map) DepthBias() float64 {
	return m.depthBias
}

// SetDepthBias replaces the base comparison bias.
func (m *Map) SetDepthBias(b float64) {
	if b < 0 {
		b = 0
	}
	m.depthBias = b
}

// Darkness returns the visibility floor applied to occluded samples.
func (m *Map) Darkness() float64 {
	return m.darkness
}

// SetDarkness sets the visibility floor, clamped to [0, 1].
func (m *Map) SetDarkness(d float64) {
	if d < 0 {
		d = 0
	} else if d > 1 {
		d = 1
	}
	m.darkness = d
}

// NormalOffset reports whether receiver normal offsetting is enabled.
func (m *Map) NormalOffset() bool {
	return m.normalOffset
}

// Destroy releases the depth storage. Further Destroy calls are no-ops;
// a destroyed map is never ready.
func (m *Map) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.ready = false
	m.depth = nil
}

// Destroyed reports whether Destroy has run.
func (m *Map) Destroyed() bool {
	return m.destroyed
}
