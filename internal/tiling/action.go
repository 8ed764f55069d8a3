package tiling

import (
	"fmt"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// ActionKind classifies what a drop position means structurally.
type ActionKind int

const (
	// ActionFillRoot places the first window across the whole tree region.
	ActionFillRoot ActionKind = iota
	// ActionSwap exchanges the dragged window with the node under the pointer.
	ActionSwap
	// ActionAddToParent inserts the dragged window as a new sibling of the
	// reference node, extending that node's row or column.
	ActionAddToParent
	// ActionSplit wraps the reference node in a new perpendicular container
	// holding it and the dragged window.
	ActionSplit
)

func (k ActionKind) String() string {
	switch k {
	case ActionFillRoot:
		return "fill-root"
	case ActionSwap:
		return "swap"
	case ActionAddToParent:
		return "add-to-parent"
	case ActionSplit:
		return "split"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// TileAction is the structural operation implied by dropping a window at a
// position. Node is the window or container the action is relative to; Side
// is meaningless for FillRoot and Swap.
type TileAction struct {
	Kind ActionKind
	Node Node
	Side Side
}

func (a TileAction) String() string {
	switch a.Kind {
	case ActionFillRoot:
		return "fill-root"
	case ActionSwap:
		return fmt.Sprintf("swap with %s", nodeLabel(a.Node))
	default:
		return fmt.Sprintf("%s of %s on %s", a.Kind, nodeLabel(a.Node), a.Side)
	}
}

func nodeLabel(n Node) string {
	switch v := n.(type) {
	case *Window:
		return fmt.Sprintf("window %d", v.ID())
	case *Container:
		return fmt.Sprintf("container %d", v.ID())
	}
	return "?"
}

// InsertResult reports what InsertWindow did: the action that was applied and
// the leaf that now holds the window (existing leaf on relocation, fresh leaf
// otherwise).
type InsertResult struct {
	Action TileAction
	Window *Window
}

// previewSlice returns the portion of b a ghost rectangle should cover for an
// insertion on side taking ratio of the node's space.
func previewSlice(b geometry.Bounds, side Side, ratio float64) geometry.Bounds {
	switch side {
	case SideLeft:
		return geometry.NewBounds(b.X, b.Y, int(float64(b.Width)*ratio), b.Height)
	case SideRight:
		w := int(float64(b.Width) * ratio)
		return geometry.NewBounds(b.Right()-w, b.Y, w, b.Height)
	case SideTop:
		return geometry.NewBounds(b.X, b.Y, b.Width, int(float64(b.Height)*ratio))
	case SideBottom:
		h := int(float64(b.Height) * ratio)
		return geometry.NewBounds(b.X, b.Bottom()-h, b.Width, h)
	}
	return b
}
