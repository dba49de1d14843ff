package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-region-select/src/fsm"
	"screen-region-select/src/geometry"
)

type frame struct {
	pressed, justPressed, justReleased bool
	x, y                               int
}

func (f frame) Pressed() bool        { return f.pressed }
func (f frame) JustPressed() bool    { return f.justPressed }
func (f frame) JustReleased() bool   { return f.justReleased }
func (f frame) Position() (int, int) { return f.x, f.y }

func TestTrackerRecordsOriginUntilRelease(t *testing.T) {
	var tr Tracker

	in := tr.Sample(frame{pressed: true, justPressed: true, x: 100, y: 50}, false)
	assert.True(t, in.HasPressOrigin)
	assert.Equal(t, geometry.Point{X: 100, Y: 50}, in.PressOrigin)
	assert.True(t, in.Dragging)

	in = tr.Sample(frame{pressed: true, x: 10, y: 10}, false)
	assert.Equal(t, geometry.Point{X: 100, Y: 50}, in.PressOrigin)
	assert.Equal(t, geometry.Point{X: 10, Y: 10}, in.Pointer)
	assert.True(t, in.Dragging)
	assert.True(t, in.PrimaryDown)

	in = tr.Sample(frame{justReleased: true, x: 10, y: 10}, false)
	assert.True(t, in.Released)
	assert.True(t, in.HasPressOrigin)
	assert.False(t, in.Dragging)

	in = tr.Sample(frame{x: 10, y: 10}, false)
	assert.False(t, in.HasPressOrigin)
	assert.False(t, in.Released)
}

func TestTrackerReleaseWithoutPress(t *testing.T) {
	var tr Tracker
	in := tr.Sample(frame{justReleased: true, x: 7, y: 9}, false)
	assert.True(t, in.Released)
	assert.False(t, in.HasPressOrigin)
	assert.Equal(t, geometry.Point{X: 7, Y: 9}, in.Pointer)
}

func TestTrackerDrivesMachine(t *testing.T) {
	var tr Tracker
	m := fsm.New(fsm.Options{})
	m.Tick(tr.Sample(frame{}, false))
	m.Tick(tr.Sample(frame{}, true))
	require.Equal(t, fsm.StateSelectRegion, m.State())

	frames := []frame{
		{pressed: true, justPressed: true, x: 100, y: 50},
		{pressed: true, x: 60, y: 20},
		{pressed: true, x: 10, y: 10},
		{justReleased: true, x: 10, y: 10},
	}
	for _, f := range frames {
		m.Tick(tr.Sample(f, false))
	}

	got, ok := m.Committed()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{Min: geometry.Point{X: 10, Y: 10}, Max: geometry.Point{X: 100, Y: 50}}, got)
	assert.Equal(t, fsm.StateDefault, m.State())
}

func TestButtonClicked(t *testing.T) {
	b := CenteredButton("Select region", 320, 160, 200, 40)
	assert.Equal(t, geometry.Point{X: 60, Y: 60}, b.Area.Min)
	assert.Equal(t, geometry.Point{X: 260, Y: 100}, b.Area.Max)

	assert.True(t, b.Clicked(frame{justReleased: true, x: 160, y: 80}))
	assert.False(t, b.Clicked(frame{justReleased: true, x: 10, y: 10}))
	assert.False(t, b.Clicked(frame{pressed: true, justPressed: true, x: 160, y: 80}))
}
