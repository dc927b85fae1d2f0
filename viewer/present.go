package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/shadow"
)

// presenter owns the window-sized texture that carries the software
// framebuffer to the screen each frame.
type presenter struct {
	tex    rl.Texture2D
	w, h   int
	loaded bool
}

func (p *presenter) ensure(w, h int) {
	if p.loaded && p.w == w && p.h == h {
		return
	}
	if p.loaded {
		rl.UnloadTexture(p.tex)
	}
	img := rl.GenImageColor(w, h, rl.Black)
	p.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(p.tex, rl.FilterBilinear)
	p.w, p.h = w, h
	p.loaded = true
}

// Present uploads the framebuffer and stretches it over the whole window.
func (p *presenter) Present(fb *render.Framebuffer) {
	p.ensure(fb.W, fb.H)
	rl.UpdateTexture(p.tex, fb.Pixels8())
	rl.DrawTexturePro(p.tex,
		rl.Rectangle{Width: float32(p.w), Height: float32(p.h)},
		rl.Rectangle{Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())},
		rl.Vector2{}, 0, rl.White)
}

func (p *presenter) Unload() {
	if p.loaded {
		rl.UnloadTexture(p.tex)
		p.loaded = false
	}
}

// pipSize is the edge length of the depth inset in the corner of the window.
const pipSize = 160

// depthPreview shows the sensor's depth texture as a grayscale inset so the
// occluder pass can be inspected directly.
type depthPreview struct {
	tex    rl.Texture2D
	raw    []float32
	pixels []color.RGBA
	loaded bool
}

func (d *depthPreview) ensure() {
	if d.loaded {
		return
	}
	img := rl.GenImageColor(pipSize, pipSize, rl.Black)
	d.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	d.raw = make([]float32, pipSize*pipSize)
	d.pixels = make([]color.RGBA, pipSize*pipSize)
	d.loaded = true
}

// Draw samples the visibility map into the inset texture and blits it to the
// bottom-right corner. Projected depth bunches up near the far plane, so the
// hit range is stretched to full contrast before display.
func (d *depthPreview) Draw(m *shadow.Map) {
	if m == nil || !m.Ready() {
		return
	}
	d.ensure()

	res := m.Resolution()
	depth := m.Depth()
	stride := res / pipSize
	if stride < 1 {
		stride = 1
	}

	minZ, maxZ := float32(1), float32(0)
	for y := 0; y < pipSize; y++ {
		sy := y * stride
		if sy >= res {
			sy = res - 1
		}
		for x := 0; x < pipSize; x++ {
			sx := x * stride
			if sx >= res {
				sx = res - 1
			}
			z := depth[sy*res+sx]
			d.raw[y*pipSize+x] = z
			if z < 1 {
				if z < minZ {
					minZ = z
				}
				if z > maxZ {
					maxZ = z
				}
			}
		}
	}
	span := maxZ - minZ
	if span <= 0 {
		span = 1
	}
	for i, z := range d.raw {
		v := uint8(0)
		if z < 1 {
			v = uint8((1 - (z-minZ)/span) * 255)
		}
		d.pixels[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}

	rl.UpdateTexture(d.tex, d.pixels)

	x := int32(rl.GetScreenWidth()) - pipSize - 10
	y := int32(rl.GetScreenHeight()) - pipSize - 10
	rl.DrawTexturePro(d.tex,
		rl.Rectangle{Width: pipSize, Height: pipSize},
		rl.Rectangle{X: float32(x), Y: float32(y), Width: pipSize, Height: pipSize},
		rl.Vector2{}, 0, rl.White)
	rl.DrawRectangleLines(x, y, pipSize, pipSize, rl.Gray)
	rl.DrawText("sensor depth", x, y-14, 10, rl.Gray)
}

func (d *depthPreview) Unload() {
	if d.loaded {
		rl.UnloadTexture(d.tex)
		d.loaded = false
	}
}
