package tiling

import "fmt"

// Direction is the axis along which a container lays out its children.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

// Opposite returns the perpendicular direction.
func (d Direction) Opposite() Direction {
	if d == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// MarshalYAML encodes the direction as its lowercase name.
func (d Direction) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML decodes "horizontal" or "vertical".
func (d *Direction) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "horizontal":
		*d = Horizontal
	case "vertical":
		*d = Vertical
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}

// Side identifies one edge of a window or container. It encodes both the
// insertion axis and whether the insertion lands before or after the target.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

// Direction returns the layout axis a drop on this side implies.
func (s Side) Direction() Direction {
	if s == SideLeft || s == SideRight {
		return Horizontal
	}
	return Vertical
}

// Order maps the side to an insert order: left/top insert before the target,
// right/bottom after it.
func (s Side) Order() InsertOrder {
	if s == SideLeft || s == SideTop {
		return Before
	}
	return After
}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	default:
		return "bottom"
	}
}

// InsertOrder says whether a new node lands before or after its anchor.
type InsertOrder int

const (
	Before InsertOrder = iota
	After
)

// ResizeDirection is the 8-way handle a user grabbed when resizing a window.
type ResizeDirection int

const (
	ResizeLeft ResizeDirection = iota
	ResizeTopLeft
	ResizeTop
	ResizeTopRight
	ResizeRight
	ResizeBottomRight
	ResizeBottom
	ResizeBottomLeft
)

// HasLeft reports whether the left edge is live during the resize.
func (r ResizeDirection) HasLeft() bool {
	return r == ResizeLeft || r == ResizeTopLeft || r == ResizeBottomLeft
}

// HasRight reports whether the right edge is live during the resize.
func (r ResizeDirection) HasRight() bool {
	return r == ResizeRight || r == ResizeTopRight || r == ResizeBottomRight
}

// HasTop reports whether the top edge is live during the resize.
func (r ResizeDirection) HasTop() bool {
	return r == ResizeTop || r == ResizeTopLeft || r == ResizeTopRight
}

// HasBottom reports whether the bottom edge is live during the resize.
func (r ResizeDirection) HasBottom() bool {
	return r == ResizeBottom || r == ResizeBottomLeft || r == ResizeBottomRight
}
