package composite

import "github.com/kestrelops/sightline/shadow"

// pcfVisibility compares the fragment's light-space depth against a 3x3
// texel neighborhood and returns the unoccluded fraction. A texel passes
// when the stored occluder is at or beyond the biased fragment depth.
func pcfVisibility(m *shadow.Map, u, v, fragDepth, bias float64) float64 {
	ix, iy := m.TexelOf(u, v)
	ref := float32(fragDepth - bias)

	pass := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if ref <= m.DepthAt(ix+dx, iy+dy) {
				pass++
			}
		}
	}
	return float64(pass) / 9.0
}
