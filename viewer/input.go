package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard and mouse input for one frame.
func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.paused {
		v.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.sc.SetTime(v.cfg.Clock.Start)
		v.lastDistance = 0
		v.closingSpeed = 0
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyI) {
		v.inspector.Toggle()
	}

	v.handleOverlayKeys()
	v.handleCameraInput()
	v.handleSelection()
}

// handleOverlayKeys checks every registered overlay's toggle key.
func (v *Viewer) handleOverlayKeys() {
	for _, desc := range v.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			v.overlays.Toggle(desc.ID)
		}
	}
}

// handleCameraInput processes orbit rotate/zoom/pan controls.
func (v *Viewer) handleCameraInput() {
	dt := float64(rl.GetFrameTime())
	mouse := rl.GetMousePosition()
	overUI := v.controls.Contains(mouse) || v.inspector.Contains(mouse)

	// Mouse drag rotates the orbit.
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !overUI {
		delta := rl.GetMouseDelta()
		v.orbit.Rotate(float64(delta.X)*0.005, float64(delta.Y)*0.005)
	}

	// Arrow keys rotate too, for drag-free navigation.
	rotSpeed := 1.2 * dt
	if rl.IsKeyDown(rl.KeyRight) {
		v.orbit.Rotate(rotSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.orbit.Rotate(-rotSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.orbit.Rotate(0, rotSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.orbit.Rotate(0, -rotSpeed)
	}

	// Wheel zooms toward the focus.
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overUI {
		v.orbit.ZoomBy(1 + float64(wheel)*0.1)
	}

	// WASD pans the focus in the horizon plane, scaled by range so the
	// feel stays constant across zoom levels.
	panSpeed := v.orbit.Range * 0.4 * dt
	if rl.IsKeyDown(rl.KeyW) {
		v.orbit.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyS) {
		v.orbit.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyD) {
		v.orbit.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyA) {
		v.orbit.Pan(-panSpeed, 0)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.orbit.Reset()
	}
}

// handleSelection forwards clean clicks (no drag) to the inspector's
// platform selection.
func (v *Viewer) handleSelection() {
	if !rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.controls.Contains(mouse) || v.inspector.Contains(mouse) {
		return
	}
	delta := rl.GetMouseDelta()
	if delta.X*delta.X+delta.Y*delta.Y > 25 {
		return
	}

	cam := v.sc.Camera
	v.inspector.HandleClick(mouse, v.platformMarkers(&cam))
}
