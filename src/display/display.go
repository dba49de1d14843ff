package display

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Primary returns the bounds of the primary display (display 0).
func Primary() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// Virtual returns the union of all active display bounds.
func Virtual() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// CenterIn returns the top-left corner that centres a w×h window in bounds.
func CenterIn(bounds image.Rectangle, w, h int) image.Point {
	return image.Point{
		X: bounds.Min.X + (bounds.Dx()-w)/2,
		Y: bounds.Min.Y + (bounds.Dy()-h)/2,
	}
}
