// Package geometry provides the rectangle and point value types shared by the
// tiling core and the platform layer.
package geometry

import "fmt"

// Point is a screen position in pixels.
type Point struct {
	X int
	Y int
}

// Bounds is a window or container rectangle in screen coordinates.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewBounds builds a Bounds from position and size.
func NewBounds(x, y, width, height int) Bounds {
	return Bounds{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x coordinate one past the right edge.
func (b Bounds) Right() int {
	return b.X + b.Width
}

// Bottom returns the y coordinate one past the bottom edge.
func (b Bounds) Bottom() int {
	return b.Y + b.Height
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains reports whether p falls inside the rectangle. The right and bottom
// edges are exclusive so adjacent tiles never both claim a shared edge.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.Right() && p.Y >= b.Y && p.Y < b.Bottom()
}

// Intersects reports whether the two rectangles overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return b.X < other.Right() && b.Right() > other.X &&
		b.Y < other.Bottom() && b.Bottom() > other.Y
}

// Inset shrinks the rectangle by gap pixels on every side. Width and height
// never go below zero.
func (b Bounds) Inset(gap int) Bounds {
	out := Bounds{
		X:      b.X + gap,
		Y:      b.Y + gap,
		Width:  b.Width - 2*gap,
		Height: b.Height - 2*gap,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

func (b Bounds) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", b.X, b.Y, b.Width, b.Height)
}
