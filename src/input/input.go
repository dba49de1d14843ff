package input

import (
	"screen-region-select/src/fsm"
	"screen-region-select/src/geometry"
)

// PointerSource is the host's view of the primary pointer button for the current frame.
type PointerSource interface {
	Pressed() bool
	JustPressed() bool
	JustReleased() bool
	Position() (x, y int)
}

// Tracker turns raw per-frame pointer state into fsm.Input. It remembers the
// press origin from the press until the release.
type Tracker struct {
	origin    geometry.Point
	hasOrigin bool
	dragging  bool
}

// Sample reads src once and builds the tick input.
func (t *Tracker) Sample(src PointerSource, activated bool) fsm.Input {
	x, y := src.Position()
	cur := geometry.Point{X: float64(x), Y: float64(y)}

	if src.JustPressed() {
		t.origin = cur
		t.hasOrigin = true
		t.dragging = true
	}
	down := src.Pressed()
	released := src.JustReleased()

	in := fsm.Input{
		PrimaryDown:    down,
		Dragging:       t.dragging && down,
		Released:       released,
		PressOrigin:    t.origin,
		HasPressOrigin: t.hasOrigin,
		Pointer:        cur,
		HasPointer:     true,
		Activated:      activated,
	}

	if released || !down {
		t.dragging = false
	}
	if released {
		t.hasOrigin = false
		t.origin = geometry.Point{}
	}
	return in
}

// Reset forgets any press in flight. Called when the window is reconfigured.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Button is a clickable area on the launcher.
type Button struct {
	Label string
	Area  geometry.Rect
}

// Clicked reports whether the primary button was released over the button this frame.
func (b Button) Clicked(src PointerSource) bool {
	if !src.JustReleased() {
		return false
	}
	x, y := src.Position()
	return b.Area.Contains(geometry.Point{X: float64(x), Y: float64(y)})
}

// CenteredButton lays out a w×h button centred in a screenW×screenH surface.
func CenteredButton(label string, screenW, screenH, w, h int) Button {
	x := float64(screenW-w) / 2
	y := float64(screenH-h) / 2
	return Button{
		Label: label,
		Area: geometry.FromPoints(
			geometry.Point{X: x, Y: y},
			geometry.Point{X: x + float64(w), Y: y + float64(h)},
		),
	}
}
