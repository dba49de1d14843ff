package fsm

// Transition returns the next state for (s, e). It is total: any pair not
// listed keeps the current state.
func Transition(s State, e Event) State {
	switch {
	case s == StateSelectRegion && e == EventRegionSelectionFinished:
		return StateDefault
	case s == StateDefault && e == EventSelectRegionButtonClicked:
		return StateSelectRegion
	case s == StateNone:
		return StateDefault
	default:
		return s
	}
}
