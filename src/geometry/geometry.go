package geometry

import (
	"fmt"
	"image"
	"math"
)

// Point is a position in screen pixels, origin at the top-left of the primary display.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Min returns the componentwise minimum of a and b.
func Min(a, b Point) Point {
	return Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// Max returns the componentwise maximum of a and b.
func Max(a, b Point) Point {
	return Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Rect is an axis-aligned box with Min.X <= Max.X and Min.Y <= Max.Y.
type Rect struct {
	Min Point
	Max Point
}

// FromPoints normalizes two arbitrary points (typically drag origin and current
// pointer) into a Rect. Argument order does not matter.
func FromPoints(a, b Point) Rect {
	return Rect{Min: Min(a, b), Max: Max(a, b)}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// IsZeroArea reports whether the rect collapses to a line or a point.
// Zero-area rects are still valid selections.
func (r Rect) IsZeroArea() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Bounds rounds r outward to integer pixel bounds.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Min.X)),
		int(math.Floor(r.Min.Y)),
		int(math.Ceil(r.Max.X)),
		int(math.Ceil(r.Max.Y)),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("{min:%s max:%s}", r.Min, r.Max)
}
