package render

import (
	"image"
	"image/color"
)

// Framebuffer is a CPU render target holding linear color and packed
// depth per pixel. (0, 0) is the top-left corner.
type Framebuffer struct {
	W, H  int
	color []RGBA
	depth []PackedDepth

	// Reused 8-bit conversion buffer for texture upload.
	pixels8 []color.RGBA
}

// NewFramebuffer allocates a w by h framebuffer cleared to black with
// background depth.
func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{
		W:     w,
		H:     h,
		color: make([]RGBA, w*h),
		depth: make([]PackedDepth, w*h),
	}
	fb.Clear(RGBA{A: 1})
	return fb
}

// Clear fills the color plane with c and the depth plane with Background.
func (f *Framebuffer) Clear(c RGBA) {
	for i := range f.color {
		f.color[i] = c
		f.depth[i] = Background
	}
}

func (f *Framebuffer) idx(x, y int) int {
	return y*f.W + x
}

// ColorAt returns the color of pixel (x, y).
func (f *Framebuffer) ColorAt(x, y int) RGBA {
	return f.color[f.idx(x, y)]
}

// SetColor writes the color of pixel (x, y).
func (f *Framebuffer) SetColor(x, y int, c RGBA) {
	f.color[f.idx(x, y)] = c
}

// DepthAt returns the packed depth of pixel (x, y).
func (f *Framebuffer) DepthAt(x, y int) PackedDepth {
	return f.depth[f.idx(x, y)]
}

// SetDepth writes the packed depth of pixel (x, y).
func (f *Framebuffer) SetDepth(x, y int, d PackedDepth) {
	f.depth[f.idx(x, y)] = d
}

// Pixels8 converts the color plane to 8-bit RGBA, reusing an internal
// buffer. The returned slice is valid until the next call.
func (f *Framebuffer) Pixels8() []color.RGBA {
	if len(f.pixels8) != len(f.color) {
		f.pixels8 = make([]color.RGBA, len(f.color))
	}
	for i, c := range f.color {
		f.pixels8[i] = c.To8()
	}
	return f.pixels8
}

// Image copies the color plane into a standard image for encoding.
func (f *Framebuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			img.SetNRGBA(x, y, toNRGBA(f.ColorAt(x, y)))
		}
	}
	return img
}

func toNRGBA(c RGBA) color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}
