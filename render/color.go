package render

import "image/color"

// RGBA is a linear floating-point color with straight (non-premultiplied)
// alpha. Components are nominally in [0, 1]; To8 clamps.
type RGBA struct {
	R, G, B, A float32
}

// Mix blends c toward o by t, component-wise (GLSL mix semantics).
func (c RGBA) Mix(o RGBA, t float32) RGBA {
	return RGBA{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// Scale multiplies the color channels by s, leaving alpha unchanged.
func (c RGBA) Scale(s float32) RGBA {
	return RGBA{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}

// To8 converts to 8-bit color, clamping each channel.
func (c RGBA) To8() color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// From8 converts an 8-bit color to linear float.
func From8(c color.RGBA) RGBA {
	return RGBA{
		R: float32(c.R) / 255.0,
		G: float32(c.G) / 255.0,
		B: float32(c.B) / 255.0,
		A: float32(c.A) / 255.0,
	}
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
