// Package scene runs the frame loop: pre-render hooks, primitive updates,
// the main render, depth passes for every visibility map pushed this
// frame, and finally the enabled composition passes.
package scene

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrelops/sightline/composite"
	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/shadow"
)

// Timings records how long each section of RenderFrame took.
type Timings struct {
	Geometry  time.Duration // hooks and primitive updates
	Render    time.Duration
	DepthPass time.Duration // all visibility maps combined
	Composite time.Duration
}

// FrameState carries per-frame context to hooks and primitives. Hooks
// push the visibility maps that need a depth pass this frame.
type FrameState struct {
	Time        float64
	FrameNumber uint64
	Width       int
	Height      int
	Timings     Timings

	maps []*shadow.Map
}

// AspectRatio returns the viewport width over height.
func (fs *FrameState) AspectRatio() float64 {
	if fs.Height == 0 {
		return 1
	}
	return float64(fs.Width) / float64(fs.Height)
}

// PushVisibilityMap schedules a depth pass for m at the end of this frame.
func (fs *FrameState) PushVisibilityMap(m *shadow.Map) {
	fs.maps = append(fs.maps, m)
}

// VisibilityMaps returns the maps pushed so far this frame.
func (fs *FrameState) VisibilityMaps() []*shadow.Map {
	return fs.maps
}

// PreRenderHook runs before the main render of every frame.
type PreRenderHook func(*FrameState)

type hookEntry struct {
	id uuid.UUID
	fn PreRenderHook
}

type primEntry struct {
	id   uuid.UUID
	prim Primitive
}

// Scene owns the framebuffer, the renderer and everything that takes
// part in a frame. Not safe for concurrent use.
type Scene struct {
	Camera geom.Camera

	renderer *render.Renderer
	fb       *render.Framebuffer

	time  float64
	frame uint64

	statics []render.Object
	objBuf  []render.Object

	hooks  []hookEntry
	prims  []primEntry
	passes []*composite.Pass
}

// NewScene builds a scene with a w by h framebuffer.
func NewScene(w, h int) *Scene {
	return &Scene{
		renderer: render.NewRenderer(),
		fb:       render.NewFramebuffer(w, h),
	}
}

// Close stops the renderer's workers. Passes are owned by whoever added
// them and are closed there.
func (s *Scene) Close() {
	s.renderer.Close()
}

// Renderer exposes the scene's renderer for lighting setup.
func (s *Scene) Renderer() *render.Renderer {
	return s.renderer
}

// Framebuffer returns the target of the last RenderFrame.
func (s *Scene) Framebuffer() *render.Framebuffer {
	return s.fb
}

// Time returns the simulation clock in seconds.
func (s *Scene) Time() float64 {
	return s.time
}

// SetTime jumps the simulation clock.
func (s *Scene) SetTime(t float64) {
	s.time = t
}

// Advance moves the simulation clock forward by dt seconds.
func (s *Scene) Advance(dt float64) {
	s.time += dt
}

// FrameNumber returns the number of frames rendered so far.
func (s *Scene) FrameNumber() uint64 {
	return s.frame
}

// AddObject appends a static render object to the scene.
func (s *Scene) AddObject(o render.Object) {
	s.statics = append(s.statics, o)
}

// AddPreRenderHook registers fn to run at the start of every frame and
// returns a handle for removal.
func (s *Scene) AddPreRenderHook(fn PreRenderHook) uuid.UUID {
	id := uuid.New()
	s.hooks = append(s.hooks, hookEntry{id: id, fn: fn})
	return id
}

// RemovePreRenderHook unregisters the hook with the given handle.
func (s *Scene) RemovePreRenderHook(id uuid.UUID) bool {
	for i, h := range s.hooks {
		if h.id == id {
			s.hooks = append(s.hooks[:i], s.hooks[i+1:]...)
			return true
		}
	}
	return false
}

// PreRenderHookCount returns the number of registered hooks.
func (s *Scene) PreRenderHookCount() int {
	return len(s.hooks)
}

// AddPrimitive registers a primitive and returns a handle for removal.
func (s *Scene) AddPrimitive(p Primitive) uuid.UUID {
	id := uuid.New()
	s.prims = append(s.prims, primEntry{id: id, prim: p})
	return id
}

// RemovePrimitive unregisters the primitive with the given handle.
func (s *Scene) RemovePrimitive(id uuid.UUID) bool {
	for i, e := range s.prims {
		if e.id == id {
			s.prims = append(s.prims[:i], s.prims[i+1:]...)
			return true
		}
	}
	return false
}

// PrimitiveCount returns the number of registered primitives.
func (s *Scene) PrimitiveCount() int {
	return len(s.prims)
}

// AddPass appends a composition pass; passes execute in insertion order.
func (s *Scene) AddPass(p *composite.Pass) {
	s.passes = append(s.passes, p)
}

// RemovePass unregisters a pass by identity.
func (s *Scene) RemovePass(p *composite.Pass) bool {
	for i, q := range s.passes {
		if q == p {
			s.passes = append(s.passes[:i], s.passes[i+1:]...)
			return true
		}
	}
	return false
}

// PassCount returns the number of registered composition passes.
func (s *Scene) PassCount() int {
	return len(s.passes)
}

// RenderFrame runs one full frame against the current clock and returns
// its frame state. Hooks run first, then primitive updates, the main
// render, one depth pass per pushed visibility map, and the enabled
// composition passes.
func (s *Scene) RenderFrame() *FrameState {
	s.frame++
	fs := &FrameState{
		Time:        s.time,
		FrameNumber: s.frame,
		Width:       s.fb.W,
		Height:      s.fb.H,
	}

	start := time.Now()

	// Hooks may unregister themselves; iterate a snapshot.
	hooks := append([]hookEntry(nil), s.hooks...)
	for _, h := range hooks {
		h.fn(fs)
	}

	for _, e := range s.prims {
		e.prim.Update(fs)
	}

	s.objBuf = s.objBuf[:0]
	s.objBuf = append(s.objBuf, s.statics...)
	for _, e := range s.prims {
		if o, ok := e.prim.Object(); ok {
			s.objBuf = append(s.objBuf, o)
		}
	}
	s.renderer.Objects = s.objBuf
	fs.Timings.Geometry = time.Since(start)

	start = time.Now()
	s.renderer.Render(s.fb, &s.Camera)
	fs.Timings.Render = time.Since(start)

	start = time.Now()
	for _, m := range fs.maps {
		if m.Destroyed() {
			continue
		}
		lcam := m.Camera()
		s.renderer.RenderDepth(&lcam, m.Resolution(), m.Depth())
		m.CompleteDepthPass()
	}
	fs.Timings.DepthPass = time.Since(start)

	start = time.Now()
	for _, p := range s.passes {
		if p.Enabled() {
			p.Execute(s.fb, &s.Camera)
		}
	}
	fs.Timings.Composite = time.Since(start)

	return fs
}
