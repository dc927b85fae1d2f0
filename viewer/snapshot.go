package viewer

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/telemetry"
)

// SaveFramePNG writes the framebuffer to dir/name as a PNG. The directory
// is created on first use.
func SaveFramePNG(fb *render.Framebuffer, dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("viewer: snapshot dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viewer: snapshot: %w", err)
	}
	if err := png.Encode(f, fb.Image()); err != nil {
		f.Close()
		return fmt.Errorf("viewer: snapshot encode: %w", err)
	}
	return f.Close()
}

// maybeSnapshot saves periodic frames in headless runs so long captures
// leave a visual record alongside the CSV telemetry.
func (v *Viewer) maybeSnapshot() {
	if v.opts.SnapshotDir == "" || v.opts.SnapshotEvery <= 0 {
		return
	}
	frame := v.sc.FrameNumber()
	if frame%uint64(v.opts.SnapshotEvery) != 0 {
		return
	}
	name := fmt.Sprintf("frame_%06d.png", frame)
	if err := SaveFramePNG(v.sc.Framebuffer(), v.opts.SnapshotDir, name); err != nil {
		slog.Error("failed to write snapshot", "error", err)
	}
}

// saveEventSnapshot captures the frame that triggered a coverage event.
func (v *Viewer) saveEventSnapshot(e telemetry.Event) {
	name := fmt.Sprintf("frame_%06d_%s.png", e.Frame, e.Type)
	if err := SaveFramePNG(v.sc.Framebuffer(), v.opts.SnapshotDir, name); err != nil {
		slog.Error("failed to write event snapshot", "error", err, "event", string(e.Type))
	}
}
