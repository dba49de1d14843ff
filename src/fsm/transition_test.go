package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		state State
		event Event
		want  State
	}{
		{StateSelectRegion, EventRegionSelectionFinished, StateDefault},
		{StateDefault, EventSelectRegionButtonClicked, StateSelectRegion},
		{StateNone, EventNothing, StateDefault},
		{StateNone, EventSelectRegionButtonClicked, StateDefault},
		{StateNone, EventRegionSelectionUpdated, StateDefault},
		{StateNone, EventRegionSelectionFinished, StateDefault},
		{StateDefault, EventNothing, StateDefault},
		{StateDefault, EventRegionSelectionUpdated, StateDefault},
		{StateDefault, EventRegionSelectionFinished, StateDefault},
		{StateSelectRegion, EventNothing, StateSelectRegion},
		{StateSelectRegion, EventSelectRegionButtonClicked, StateSelectRegion},
		{StateSelectRegion, EventRegionSelectionUpdated, StateSelectRegion},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+tt.event.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Transition(tt.state, tt.event))
		})
	}
}

func TestTransitionIsTotalAndDeterministic(t *testing.T) {
	for _, s := range States() {
		for _, e := range Events() {
			first := Transition(s, e)
			assert.Contains(t, States(), first, "Transition(%s,%s) left the state set", s, e)
			for i := 0; i < 3; i++ {
				assert.Equal(t, first, Transition(s, e))
			}
		}
	}
}

func TestTransitionNothingKeepsInitializedStates(t *testing.T) {
	for _, s := range []State{StateDefault, StateSelectRegion} {
		cur := s
		for i := 0; i < 50; i++ {
			cur = Transition(cur, EventNothing)
		}
		assert.Equal(t, s, cur)
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "SelectRegion", StateSelectRegion.String())
	assert.Equal(t, "Unknown", State(42).String())
	assert.Equal(t, "RegionSelectionFinished", EventRegionSelectionFinished.String())
	assert.Equal(t, "Unknown", Event(-1).String())
}
