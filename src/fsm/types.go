package fsm

import "screen-region-select/src/geometry"

// State identifies which view is active. StateNone only exists before the first tick.
type State int

const (
	StateNone State = iota
	StateDefault
	StateSelectRegion
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateDefault:
		return "Default"
	case StateSelectRegion:
		return "SelectRegion"
	default:
		return "Unknown"
	}
}

// States returns the closed set of states.
func States() []State {
	return []State{StateNone, StateDefault, StateSelectRegion}
}

// Event is the single signal produced by the active state on each tick.
type Event int

const (
	EventNothing Event = iota
	EventSelectRegionButtonClicked
	EventRegionSelectionUpdated
	EventRegionSelectionFinished
)

func (e Event) String() string {
	switch e {
	case EventNothing:
		return "Nothing"
	case EventSelectRegionButtonClicked:
		return "SelectRegionButtonClicked"
	case EventRegionSelectionUpdated:
		return "RegionSelectionUpdated"
	case EventRegionSelectionFinished:
		return "RegionSelectionFinished"
	default:
		return "Unknown"
	}
}

// Events returns the closed set of events.
func Events() []Event {
	return []Event{
		EventNothing,
		EventSelectRegionButtonClicked,
		EventRegionSelectionUpdated,
		EventRegionSelectionFinished,
	}
}

// Input is the per-tick snapshot of host input.
type Input struct {
	// PrimaryDown is true while the primary pointer button is held.
	PrimaryDown bool
	// Dragging is true while a press that started on the surface is still held.
	Dragging bool
	// Released is true on the tick the primary button goes up.
	Released bool

	// PressOrigin is valid once per press, when HasPressOrigin is set.
	PressOrigin    geometry.Point
	HasPressOrigin bool

	Pointer    geometry.Point
	HasPointer bool

	// Activated is the launcher trigger (button click, hotkey, tray, run-once request).
	Activated bool
}

// pressOrigin returns the recorded press origin, or (0,0) when there is none.
func (in Input) pressOrigin() geometry.Point {
	if !in.HasPressOrigin {
		return geometry.Point{}
	}
	return in.PressOrigin
}

// pointer returns the current interact position, or (0,0) when there is none.
func (in Input) pointer() geometry.Point {
	if !in.HasPointer {
		return geometry.Point{}
	}
	return in.Pointer
}

// AppContext is the machine-owned application state.
type AppContext struct {
	PrevState State
	CurState  State
	PrevEvent Event
	CurEvent  Event

	// Committed is the last finished selection; only meaningful when HasCommitted is set.
	Committed    geometry.Rect
	HasCommitted bool
}

// WindowChrome is the window configuration requested from the host on state entry.
type WindowChrome struct {
	Decorated   bool
	Fullscreen  bool
	Transparent bool
	Centered    bool
	AlwaysOnTop bool
	// Width and Height are ignored when Fullscreen is set.
	Width  int
	Height int
}

// Chrome applies window configuration. Implemented by the host runtime.
type Chrome interface {
	Apply(WindowChrome)
}
