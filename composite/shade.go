// Package composite blends sensor visibility over a rendered frame. Every
// covered pixel is classified against one visibility map and tinted with
// the sensor's visible or shadow color; everything else passes through.
package composite

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/shadow"
)

// nearPlaneEpsilon exempts samples whose light-space depth is almost zero:
// geometry grazing the sensor near plane would otherwise flicker into
// shadow.
const nearPlaneEpsilon = 0.01

// normalOffsetScale sizes the receiver offset along the surface normal,
// in units of one texel's world footprint.
const normalOffsetScale = 0.1

// Outcome says which branch of the shading sequence a pixel took.
type Outcome uint8

const (
	OutcomeBackground Outcome = iota
	OutcomeTerrainExcluded
	OutcomeOutsideFrustum
	OutcomeOutOfRange
	OutcomeVisible
	OutcomeNearPlane
	OutcomeShadowed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeBackground:
		return "background"
	case OutcomeTerrainExcluded:
		return "terrain_excluded"
	case OutcomeOutsideFrustum:
		return "outside_frustum"
	case OutcomeOutOfRange:
		return "out_of_range"
	case OutcomeVisible:
		return "visible"
	case OutcomeNearPlane:
		return "near_plane"
	case OutcomeShadowed:
		return "shadowed"
	}
	return "unknown"
}

// Uniforms is the per-frame state shared by every pixel of one pass.
// LightMatrix and the eye-space light basis are refreshed by Pass.Execute;
// tests may fill them directly.
type Uniforms struct {
	Map *shadow.Map

	VisibleColor render.RGBA
	ShadowColor  render.RGBA
	Alpha        float32

	ExcludeTerrain bool
	Ellipsoid      geom.Ellipsoid

	// NormalShadingSmooth shapes visibility by incident angle; the pass
	// carries no normal buffer, so the light-facing term is 1 and the
	// smoothing only matters when it exceeds 1.
	NormalShadingSmooth float64

	// LightMatrix maps world positions into [0,1]³ map coordinates.
	LightMatrix mgl64.Mat4

	// Sensor light camera basis in the main camera's eye space.
	LightPosEC   mgl64.Vec3
	LightDirEC   mgl64.Vec3
	LightUpEC    mgl64.Vec3
	LightRightEC mgl64.Vec3
}

// Pixel is one fragment's input to Shade. WorldPos and EyePos are only
// meaningful when Depth is not the background sentinel.
type Pixel struct {
	Color    render.RGBA
	Depth    render.PackedDepth
	WorldPos mgl64.Vec3
	EyePos   mgl64.Vec3
}

// Shade classifies one pixel against the sensor and returns its output
// color. The decision order is fixed: background, terrain exclusion,
// frustum containment, range, then the occlusion test with its near-plane
// exemption.
func Shade(px Pixel, u *Uniforms) (render.RGBA, Outcome) {
	if px.Depth.IsBackground() {
		return px.Color, OutcomeBackground
	}

	if u.ExcludeTerrain && u.Ellipsoid.A > 0 && u.Ellipsoid.Inside(px.WorldPos) {
		return px.Color, OutcomeTerrainExcluded
	}

	dist := px.EyePos.Sub(u.LightPosEC).Len()

	// Receiver position used for all light-space tests; nudged off the
	// surface along its normal to keep slope texels from self-shadowing.
	receiver := px.WorldPos
	if u.Map.NormalOffset() && u.Ellipsoid.A > 0 {
		lcam := u.Map.Camera()
		texelWorld := 2 * math.Tan(lcam.FOVY/2) * dist / float64(u.Map.Resolution())
		n := u.Ellipsoid.GeodeticSurfaceNormal(px.WorldPos)
		receiver = receiver.Add(n.Mul(texelWorld * normalOffsetScale))
	}

	smap, w := projectUnitCube(u.LightMatrix, receiver)
	if w <= 0 || outsideUnitCube(smap) {
		return px.Color, OutcomeOutsideFrustum
	}

	if dist > u.Map.MaxDistance() {
		return px.Color, OutcomeOutOfRange
	}

	eyeDepth := -px.EyePos.Z()
	bias := u.Map.DepthBias() * math.Max(eyeDepth*0.01, 1.0)
	vis := pcfVisibility(u.Map, smap.X(), smap.Y(), smap.Z(), bias)
	vis = shapeVisibility(vis, 1.0, u.NormalShadingSmooth, u.Map.Darkness())

	if vis >= 1 {
		return px.Color.Mix(u.VisibleColor, u.Alpha), OutcomeVisible
	}

	if smap.Z() < nearPlaneEpsilon {
		return px.Color, OutcomeNearPlane
	}

	return px.Color.Mix(u.ShadowColor, u.Alpha), OutcomeShadowed
}

// projectUnitCube applies the light matrix with perspective divide,
// returning the homogeneous w so callers can reject points behind the
// light.
func projectUnitCube(m mgl64.Mat4, p mgl64.Vec3) (mgl64.Vec3, float64) {
	h := m.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
	w := h.W()
	if w == 0 {
		return mgl64.Vec3{}, 0
	}
	return mgl64.Vec3{h.X() / w, h.Y() / w, h.Z() / w}, w
}

func outsideUnitCube(p mgl64.Vec3) bool {
	return p.X() < 0 || p.X() > 1 ||
		p.Y() < 0 || p.Y() > 1 ||
		p.Z() < 0 || p.Z() > 1
}

// shapeVisibility applies incident-angle shading and the darkness floor,
// mirroring spotlight shadow filtering conventions.
func shapeVisibility(vis, nDotL, smooth, darkness float64) float64 {
	var strength float64
	if smooth > 0 {
		strength = clamp01(nDotL / smooth)
	} else if nDotL > 0 {
		strength = 1
	}
	vis *= strength
	return math.Max(vis, darkness)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
