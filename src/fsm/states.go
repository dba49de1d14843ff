package fsm

import (
	"screen-region-select/src/geometry"
	"screen-region-select/src/logutil"
)

// defaultState is the launcher view.
type defaultState struct{}

func (defaultState) run(in Input) Event {
	if in.Activated {
		return EventSelectRegionButtonClicked
	}
	return EventNothing
}

// selectionState is the fullscreen overlay that tracks a drag.
type selectionState struct {
	strictOrigin bool

	current geometry.Rect
	active  bool
}

func (s *selectionState) reset() {
	s.current = geometry.Rect{}
	s.active = false
}

// run turns pointer samples into a normalized rect. On release the last
// computed rect is written to ctx.Committed.
func (s *selectionState) run(ctx *AppContext, in Input) Event {
	if in.Released {
		if !s.active {
			// Release without a tracked drag: a missing press origin reads as (0,0).
			if s.strictOrigin && !in.HasPressOrigin {
				logutil.Debugf("selection: release without press origin ignored")
				return EventNothing
			}
			s.current = geometry.FromPoints(in.pressOrigin(), in.pointer())
		}
		ctx.Committed = s.current
		ctx.HasCommitted = true
		s.reset()
		return EventRegionSelectionFinished
	}

	if in.Dragging && in.PrimaryDown {
		if s.strictOrigin && !in.HasPressOrigin {
			return EventNothing
		}
		s.current = geometry.FromPoints(in.pressOrigin(), in.pointer())
		s.active = true
		return EventRegionSelectionUpdated
	}

	return EventNothing
}
