package viewer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/config"
	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/track"
)

// Platform entity IDs. The scenario has exactly one of each.
const (
	observerID uint32 = 1
	targetID   uint32 = 2
)

// buildScenario turns the scenario config into track sources, platform
// entities and terrain occluders.
func (v *Viewer) buildScenario() error {
	obs, err := buildSource(v.cfg.Scenario.Observer, v.ell)
	if err != nil {
		return fmt.Errorf("viewer: observer track: %w", err)
	}
	tgt, err := buildSource(v.cfg.Scenario.Target, v.ell)
	if err != nil {
		return fmt.Errorf("viewer: target track: %w", err)
	}
	v.observer = obs
	v.target = tgt

	v.platformMapper.NewEntity(
		&components.Transform{},
		&components.Mobile{Source: obs},
		&components.Platform{ID: observerID, Kind: components.KindObserver, Name: "observer"},
	)
	v.platformMapper.NewEntity(
		&components.Transform{},
		&components.Mobile{Source: tgt},
		&components.Platform{ID: targetID, Kind: components.KindTarget, Name: "target"},
	)

	anchor, ok := anchorOf(v.cfg.Scenario.Target)
	if !ok {
		anchor, _ = anchorOf(v.cfg.Scenario.Observer)
	}
	v.spawnTerrain(v.cfg.Scenario.Terrain, anchor)
	return nil
}

// buildSource converts one track config block into a track source.
// Exactly one of static, waypoints or orbit must be set.
func buildSource(tc config.TrackConfig, ell geom.Ellipsoid) (track.Source, error) {
	set := 0
	if tc.Static != nil {
		set++
	}
	if len(tc.Waypoints) > 0 {
		set++
	}
	if tc.Orbit != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("track needs exactly one of static, waypoints or orbit (got %d)", set)
	}

	var src track.Source
	switch {
	case tc.Static != nil:
		src = track.Static{P: ell.GeodeticToECEF(tc.Static.Lat, tc.Static.Lon, tc.Static.Alt)}

	case len(tc.Waypoints) > 0:
		times := make([]float64, len(tc.Waypoints))
		wps := make([][3]float64, len(tc.Waypoints))
		for i, w := range tc.Waypoints {
			times[i] = w.Time
			wps[i] = [3]float64{w.Lat, w.Lon, w.Alt}
		}
		s, err := track.NewSampledGeodetic(ell, times, wps)
		if err != nil {
			return nil, err
		}
		src = s

	case tc.Orbit != nil:
		o := track.NewOrbit(ell, tc.Orbit.Lat, tc.Orbit.Lon, tc.Orbit.Radius, tc.Orbit.Alt, tc.Orbit.Period)
		o.Phase = tc.Orbit.Phase
		src = o
	}

	if tc.Window != nil {
		src = track.Windowed{Inner: src, Start: tc.Window.Start, End: tc.Window.End}
	}
	return src, nil
}

// anchorOf returns the geodetic reference point of a track config, used
// to place terrain. Waypoint tracks anchor at their first keyframe.
func anchorOf(tc config.TrackConfig) (config.GeodeticPoint, bool) {
	switch {
	case tc.Static != nil:
		return *tc.Static, true
	case tc.Orbit != nil:
		return config.GeodeticPoint{Lat: tc.Orbit.Lat, Lon: tc.Orbit.Lon}, true
	case len(tc.Waypoints) > 0:
		w := tc.Waypoints[0]
		return config.GeodeticPoint{Lat: w.Lat, Lon: w.Lon, Alt: w.Alt}, true
	}
	return config.GeodeticPoint{}, false
}

// spawnTerrain scatters hills around the anchor. Centers sit on the
// ellipsoid surface so roughly half of each sphere pokes above ground;
// the occasional box stands in for a building-sized slab.
func (v *Viewer) spawnTerrain(tc config.TerrainConfig, anchor config.GeodeticPoint) {
	if tc.Features <= 0 {
		return
	}
	seed := tc.Seed
	if seed == 0 {
		seed = v.opts.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	center := v.ell.GeodeticToECEF(anchor.Lat, anchor.Lon, 0)
	up := v.ell.GeodeticSurfaceNormal(center)
	east := mgl64.Vec3{0, 0, 1}.Cross(up)
	if east.LenSqr() < 1e-12 {
		east = mgl64.Vec3{0, 1, 0}
	}
	east = east.Normalize()
	north := up.Cross(east)

	for i := 0; i < tc.Features; i++ {
		ang := rng.Float64() * 2 * math.Pi
		// sqrt for uniform density over the disc
		dist := math.Sqrt(rng.Float64()) * tc.Radius
		size := tc.HeightMin + rng.Float64()*(tc.HeightMax-tc.HeightMin)

		p := center.
			Add(east.Mul(dist * math.Cos(ang))).
			Add(north.Mul(dist * math.Sin(ang)))

		shape := components.Shape{
			Kind:   components.ShapeSphere,
			Radius: size,
			Color:  hillColor(rng),
		}
		if rng.Float64() < 0.2 {
			shape = components.Shape{
				Kind:  components.ShapeBox,
				Size:  mgl64.Vec3{size, size, size * (1.5 + rng.Float64())},
				Color: slabColor(rng),
			}
			// Lift boxes so they clear the surface along the local up.
			p = p.Add(up.Mul(size * 0.5))
		}

		entity := v.terrainMapper.NewEntity(
			&components.Transform{Pos: p, Tracked: true},
			&shape,
			&components.Terrain{},
		)
		v.sc.AddPrimitive(&shapePrimitive{
			entity:    entity,
			transform: v.transformMap,
			shape:     v.shapeMap,
		})
		v.terrainCount++
	}
}

func hillColor(rng *rand.Rand) render.RGBA {
	g := 0.35 + rng.Float64()*0.2
	return render.RGBA{
		R: float32(g * 0.8),
		G: float32(g),
		B: float32(g * 0.5),
		A: 1,
	}
}

func slabColor(rng *rand.Rand) render.RGBA {
	g := 0.45 + rng.Float64()*0.15
	return render.RGBA{R: float32(g), G: float32(g), B: float32(g * 1.1), A: 1}
}
