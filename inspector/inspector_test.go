package inspector

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/ui"
)

func testMarkers() []Marker {
	return []Marker{
		{ID: 1, Name: "observer", Pos: rl.Vector2{X: 100, Y: 100}},
		{ID: 2, Name: "target", Pos: rl.Vector2{X: 300, Y: 200}},
	}
}

func TestHandleClickSelectsNearestMarker(t *testing.T) {
	ins := New(1280, 800)

	ins.HandleClick(rl.Vector2{X: 105, Y: 103}, testMarkers())

	id, ok := ins.Selected()
	if !ok {
		t.Fatal("click near a marker should select it")
	}
	if id != 1 {
		t.Errorf("expected platform 1, got %d", id)
	}
	if !ins.IsVisible() {
		t.Error("selection should open the panel")
	}
}

func TestHandleClickPrefersCloserMarker(t *testing.T) {
	ins := New(1280, 800)
	markers := []Marker{
		{ID: 1, Pos: rl.Vector2{X: 100, Y: 100}},
		{ID: 2, Pos: rl.Vector2{X: 110, Y: 100}},
	}

	ins.HandleClick(rl.Vector2{X: 108, Y: 100}, markers)

	id, ok := ins.Selected()
	if !ok || id != 2 {
		t.Errorf("expected closer platform 2, got %d (selected=%v)", id, ok)
	}
}

func TestHandleClickEmptySpaceDeselects(t *testing.T) {
	ins := New(1280, 800)

	ins.HandleClick(rl.Vector2{X: 100, Y: 100}, testMarkers())
	if _, ok := ins.Selected(); !ok {
		t.Fatal("setup: marker should be selected")
	}

	ins.HandleClick(rl.Vector2{X: 600, Y: 600}, testMarkers())
	if _, ok := ins.Selected(); ok {
		t.Error("clicking empty space should deselect")
	}
}

func TestHandleClickOutsidePickRadius(t *testing.T) {
	ins := New(1280, 800)

	ins.HandleClick(rl.Vector2{X: 100 + pickRadius + 5, Y: 100}, testMarkers())

	if _, ok := ins.Selected(); ok {
		t.Error("click outside the pick radius should not select")
	}
}

func TestHandleClickInsidePanelIgnored(t *testing.T) {
	ins := New(1280, 800)
	ins.SetVisible(true)

	// A marker sitting under the open panel must not be selectable
	// through it.
	inside := rl.Vector2{X: float32(ins.panelX + 40), Y: float32(ins.panelY + 60)}
	markers := []Marker{{ID: 9, Pos: inside}}

	ins.HandleClick(inside, markers)
	if _, ok := ins.Selected(); ok {
		t.Error("clicks inside the panel should not reach markers")
	}
}

func TestCloseBoxHidesPanel(t *testing.T) {
	ins := New(1280, 800)
	ins.SetVisible(true)

	closePoint := rl.Vector2{X: float32(ins.panelX + PanelWidth - 15), Y: float32(ins.panelY + 15)}
	ins.HandleClick(closePoint, nil)

	if ins.IsVisible() {
		t.Error("clicking the close box should hide the panel")
	}
}

func TestContainsOnlyWhenVisible(t *testing.T) {
	ins := New(1280, 800)
	point := rl.Vector2{X: float32(ins.panelX + 10), Y: float32(ins.panelY + 10)}

	if ins.Contains(point) {
		t.Error("hidden panel should not claim points")
	}
	ins.SetVisible(true)
	if !ins.Contains(point) {
		t.Error("visible panel should contain points inside its bounds")
	}
}

func TestResizeReanchorsPanel(t *testing.T) {
	ins := New(1280, 800)
	before := ins.panelX

	ins.Resize(1920, 1080)
	if ins.panelX <= before {
		t.Error("wider screen should push the panel right")
	}
	if ins.panelX != 1920-PanelWidth-10 {
		t.Errorf("unexpected panel X after resize: %d", ins.panelX)
	}
}

func TestSectionsPlatformVisibility(t *testing.T) {
	sections := Sections()
	var platform *ui.SectionDescriptor
	for i := range sections {
		if sections[i].ID == "platform" {
			platform = &sections[i]
		}
	}
	if platform == nil {
		t.Fatal("platform section missing")
	}
	if platform.Visible == nil {
		t.Fatal("platform section needs a visibility gate")
	}

	if platform.Visible(&Data{}) {
		t.Error("platform section should hide without a selection")
	}
	if !platform.Visible(&Data{HasPlatform: true}) {
		t.Error("platform section should show with a selection")
	}
}

func TestSectionGetters(t *testing.T) {
	data := &Data{
		Alpha:           0.5,
		Darkness:        0.25,
		FOVDegrees:      120,
		Resolution:      512,
		Distance:        2500,
		RangeRate:       -12,
		VisibleFraction: 0.75,
		HasPlatform:     true,
		Platform:        components.Platform{ID: 2, Kind: components.KindTarget, Name: "target"},
		Lat:             46.41,
		Lon:             6.17,
		Alt:             12,
	}

	for _, sd := range Sections() {
		for _, fd := range sd.Fields {
			if fd.Getter != nil {
				fd.Getter(data) // must not panic
			}
			if fd.TextGetter != nil {
				if got := fd.TextGetter(data); got == "" && fd.ID != "name" {
					t.Errorf("field %s.%s returned empty text", sd.ID, fd.ID)
				}
			}
		}
	}

	// Spot checks
	sensor := sensorSection()
	if got := sensor.Fields[0].Getter(data); got != 0.5 {
		t.Errorf("alpha getter: got %v, want 0.5", got)
	}

	platform := platformSection()
	var kindText string
	for _, fd := range platform.Fields {
		if fd.ID == "kind" {
			kindText = fd.TextGetter(data)
		}
	}
	if kindText != "Target" {
		t.Errorf("kind text: got %q, want Target", kindText)
	}
}

func TestDataOfToleratesWrongType(t *testing.T) {
	// Descriptor getters receive any; a stray value must not panic.
	for _, sd := range Sections() {
		if sd.Visible != nil {
			sd.Visible(42)
		}
		for _, fd := range sd.Fields {
			if fd.Getter != nil {
				fd.Getter(nil)
			}
			if fd.TextGetter != nil {
				fd.TextGetter("bogus")
			}
		}
	}
}
