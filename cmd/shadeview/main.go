// Sensor shading preview tool - interactive visualization with sliders.
//
// Renders a fixed synthetic scene through the real depth-map and
// composition pipeline so the shading parameters can be tuned live.
//
// Usage: go run ./cmd/shadeview
package main

import (
	"fmt"
	"math"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/composite"
	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/shadow"
	"github.com/kestrelops/sightline/viewshed"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	orbitRadius = 2500.0
	orbitAlt    = 900.0
	orbitRate   = 2 * math.Pi / 60 // one revolution per minute
	hillCount   = 24
)

// ShadeParams holds the sensor shading parameters
type ShadeParams struct {
	Alpha   float32
	Dark    float32
	Smooth  float32
	BiasExp float32 // depth bias = 10^BiasExp
	FOVDeg  float32
	ResExp  int // depth map resolution = 1<<ResExp
	Terrain bool
	Seed    int64
}

func defaultParams() ShadeParams {
	return ShadeParams{
		Alpha:   0.5,
		Dark:    0.3,
		Smooth:  0.3,
		BiasExp: -5.4,
		FOVDeg:  120,
		ResExp:  8,
		Terrain: false,
		Seed:    12345,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Sensor Shading Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	ell := geom.WGS84
	target := ell.GeodeticToECEF(46.41, 6.17, 12)
	up := ell.GeodeticSurfaceNormal(target)
	east := mgl64.Vec3{0, 0, 1}.Cross(up).Normalize()
	north := up.Cross(east)

	// Fixed vantage looking down at the target area
	viewPos := target.Add(up.Mul(2200)).Add(north.Mul(-3200))
	viewCam := geom.Camera{
		Position:  viewPos,
		Direction: target.Sub(viewPos).Normalize(),
		Up:        up,
		FOVY:      50 * math.Pi / 180,
		Aspect:    1,
		Near:      1,
		Far:       20000,
	}

	renderer := render.NewRenderer()
	defer renderer.Close()
	renderer.Sun = mgl64.Vec3{0.5, 0.3, 0.8}.Normalize()

	fb := render.NewFramebuffer(previewSize, previewSize)

	pass := composite.NewPass(composite.Uniforms{
		VisibleColor:   viewshed.DefaultVisibleColor,
		ShadowColor:    viewshed.DefaultShadowColor,
		Ellipsoid:      ell,
		ExcludeTerrain: params.Terrain,
	})
	defer pass.Close()

	// The preview texture receives the framebuffer after each regenerate.
	img := rl.GenImageColor(previewSize, previewSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	// Time for the observer orbit
	var time float32 = 0
	animating := false

	var stats composite.PassStats
	var sightRange float64

	regenerate := func() {
		renderer.Objects = buildObjects(ell, target, up, east, north, params.Seed)

		// Observer circles the target; the sensor camera follows
		// the sight line exactly like the live pipeline does.
		ang := float64(time) * orbitRate
		observer := target.
			Add(east.Mul(math.Cos(ang) * orbitRadius)).
			Add(north.Mul(math.Sin(ang) * orbitRadius)).
			Add(up.Mul(orbitAlt))

		g := viewshed.ResolvePositions(observer, target)
		sightRange = g.Distance
		cam := viewshed.BuildCamera(g, float64(params.FOVDeg)*math.Pi/180, 1, nil)

		m, err := shadow.NewMap(cam, 1<<params.ResExp, math.Pow(10, float64(params.BiasExp)))
		if err != nil {
			return
		}
		m.SetDarkness(float64(params.Dark))
		renderer.RenderDepth(&cam, m.Resolution(), m.Depth())
		m.CompleteDepthPass()

		renderer.Render(fb, &viewCam)

		u := pass.Uniforms()
		u.Map = m
		u.Alpha = params.Alpha
		u.NormalShadingSmooth = float64(params.Smooth)
		u.ExcludeTerrain = params.Terrain
		stats = pass.Execute(fb, &viewCam)

		rl.UpdateTexture(texture, fb.Pixels8())
	}
	regenerate()

	needsRegen := false

	for !rl.WindowShouldClose() {
		if animating {
			time += rl.GetFrameTime()
			needsRegen = true
		}
		if needsRegen {
			regenerate()
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: previewSize, Height: previewSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Visible: %.1f%%  Shadowed: %d px  Out of range: %d px",
			stats.VisibleFraction()*100, stats.Shadowed, stats.OutOfRange), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Sight range: %.0f m  Depth map: %d px  Time: %.1f",
			sightRange, 1<<params.ResExp, time), 15, statsY+20, 16, rl.DarkGray)

		// Sliders down the right side; any change queues a regenerate.
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Sensor Shading Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Alpha slider
		rl.DrawText("Alpha (tint opacity)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newAlpha := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			params.Alpha, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Alpha), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newAlpha != params.Alpha {
			params.Alpha = newAlpha
			needsRegen = true
		}
		panelY += 35

		// Darkness slider
		rl.DrawText("Shadow darkness (occluded dimming)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDark := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			params.Dark, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Dark), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newDark != params.Dark {
			params.Dark = newDark
			needsRegen = true
		}
		panelY += 35

		// Grazing smooth slider
		rl.DrawText("Grazing smooth (visibility shaping)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSmooth := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			params.Smooth, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Smooth), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSmooth != params.Smooth {
			params.Smooth = newSmooth
			needsRegen = true
		}
		panelY += 35

		// Depth bias slider
		rl.DrawText("Depth bias exponent (acne vs light leak)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newBias := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1e-9", "1e-3",
			params.BiasExp, -9, -3,
		)
		rl.DrawText(fmt.Sprintf("1e%.1f", params.BiasExp), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newBias != params.BiasExp {
			params.BiasExp = newBias
			needsRegen = true
		}
		panelY += 35

		// Field of view slider
		rl.DrawText("Field of view (degrees)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFOV := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"20", "170",
			params.FOVDeg, 20, 170,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.FOVDeg), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newFOV != params.FOVDeg {
			params.FOVDeg = newFOV
			needsRegen = true
		}
		panelY += 35

		// Resolution slider (powers of two)
		rl.DrawText("Depth map resolution", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newResExp := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"64", "2048",
			float32(params.ResExp), 6, 11,
		)
		rl.DrawText(fmt.Sprintf("%d", 1<<params.ResExp), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newResExp) != params.ResExp {
			params.ResExp = int(newResExp)
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Orbit")) {
			animating = !animating
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			time = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(params.Terrain, "Terrain: SKIP", "Terrain: TINT")) {
			params.Terrain = !params.Terrain
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			time = 0
			needsRegen = true
		}
		panelY += 55

		// Tuned sensor block, ready to paste into a scenario file.
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(params) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			yaml := ""
			for _, line := range yamlLines(params) {
				yaml += line + "\n"
			}
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// yamlLines renders the current parameters as a config sensor block.
func yamlLines(p ShadeParams) []string {
	return []string{
		"sensor:",
		fmt.Sprintf("  alpha: %.2f", p.Alpha),
		fmt.Sprintf("  darkness: %.2f", p.Dark),
		fmt.Sprintf("  normal_shading_smooth: %.2f", p.Smooth),
		fmt.Sprintf("  depth_bias: %.2e", math.Pow(10, float64(p.BiasExp))),
		fmt.Sprintf("  fov_degrees: %.0f", p.FOVDeg),
		fmt.Sprintf("  resolution: %d", 1<<p.ResExp),
		fmt.Sprintf("  exclude_terrain: %t", p.Terrain),
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// buildObjects scatters occluder hills around the target over the ground
// shell, plus a marker sphere at the target itself.
func buildObjects(ell geom.Ellipsoid, target, up, east, north mgl64.Vec3, seed int64) []render.Object {
	rng := rand.New(rand.NewSource(seed))

	objs := []render.Object{
		render.Ground{
			Ell:        ell,
			Light:      render.RGBA{R: 0.42, G: 0.40, B: 0.33, A: 1},
			Dark:       render.RGBA{R: 0.30, G: 0.33, B: 0.26, A: 1},
			CheckerDeg: 0.005,
		},
		render.Sphere{Center: target, Radius: 25, Color: render.RGBA{R: 0.9, G: 0.55, B: 0.1, A: 1}},
	}

	hill := render.RGBA{R: 0.35, G: 0.42, B: 0.3, A: 1}
	for i := 0; i < hillCount; i++ {
		ang := rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(rng.Float64()) * 1800 // uniform over the disc
		r := 60 + rng.Float64()*240
		center := target.
			Add(east.Mul(math.Cos(ang) * dist)).
			Add(north.Mul(math.Sin(ang) * dist))
		objs = append(objs, render.Sphere{Center: center, Radius: r, Color: hill})
	}
	return objs
}
