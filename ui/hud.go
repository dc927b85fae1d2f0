package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/composite"
)

// HUDData is one frame's worth of HUD state.
type HUDData struct {
	Title           string
	SimTime         float64
	Frame           uint64
	FPS             int32
	Paused          bool
	Distance        float64 // observer to target, meters
	Resolution      int
	Stats           composite.PassStats
	TerrainCount    int
	ObserverTracked bool
	TargetTracked   bool
	Acquired        bool
	ScreenWidth     int32
	ScreenHeight    int32
}

// HUD renders the status readout in the top-left corner.
type HUD struct{}

// NewHUD creates the HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the readout: title, clock, sight line, coverage, status.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	y := int32(35)
	line := func(text string, c rl.Color) {
		rl.DrawText(text, 10, y, 16, c)
		y += 20
	}

	line(fmt.Sprintf("t=%.1fs | frame %d | fps %d",
		data.SimTime, data.Frame, data.FPS), rl.LightGray)
	line(fmt.Sprintf("range %.0f m | depth %dpx | terrain %d",
		data.Distance, data.Resolution, data.TerrainCount), rl.LightGray)

	if data.Stats.Total() > 0 {
		line(fmt.Sprintf("visible %.1f%% (%d of %d px) | shadowed %d | out of range %d",
			data.Stats.VisibleFraction()*100, data.Stats.Visible,
			data.Stats.Covered(), data.Stats.OutOfRange), rl.LightGray)
	} else {
		line("no coverage yet", rl.Gray)
	}

	line(hudStatus(data))
}

// hudStatus picks the most urgent state for the status line.
func hudStatus(data HUDData) (string, rl.Color) {
	switch {
	case data.Paused:
		return "PAUSED", rl.Yellow
	case !data.ObserverTracked || !data.TargetTracked:
		return "FEED LOST", rl.Red
	case data.Acquired:
		return "TARGET ACQUIRED", rl.Green
	default:
		return "SEARCHING", rl.Gray
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
