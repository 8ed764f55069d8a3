package tiling

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// ContainerTree tiles one screen region. It owns a root container plus an id
// index over the tracked windows; the index is a cache, the tree itself is
// authoritative for structure.
//
// All methods must be called from a single goroutine. The manager serializes
// access by funneling every mutation through its op loop.
type ContainerTree struct {
	opts    Options
	ids     idGen
	bounds  geometry.Bounds
	root    *Container
	windows map[WindowID]*Window
}

// NewContainerTree builds a tree over region holding the given windows side
// by side, sorted by their current horizontal position so a restart preserves
// the user's left-to-right ordering.
func NewContainerTree(region geometry.Bounds, handles []WindowHandle, opts Options) *ContainerTree {
	t := &ContainerTree{
		opts:    opts,
		bounds:  region,
		windows: make(map[WindowID]*Window),
	}
	inner := region.Inset(opts.PartitionGap)
	t.root = newContainer(&t.opts, &t.ids, inner, Horizontal, nil)

	sorted := make([]WindowHandle, len(handles))
	copy(sorted, handles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bounds().X < sorted[j].Bounds().X
	})
	for _, h := range sorted {
		w := NewWindow(h)
		t.root.AddChild(w)
		t.windows[h.ID()] = w
	}
	t.root.Recalculate()
	return t
}

// Root returns the root container.
func (t *ContainerTree) Root() *Container {
	return t.root
}

// Bounds returns the screen region this tree tiles, gaps included.
func (t *ContainerTree) Bounds() geometry.Bounds {
	return t.bounds
}

// Empty reports whether the tree tracks no windows.
func (t *ContainerTree) Empty() bool {
	return len(t.root.children) == 0
}

// Len returns the number of tracked windows.
func (t *ContainerTree) Len() int {
	return len(t.windows)
}

// SetBounds moves the tree to a new screen region, e.g. after an output mode
// change, and relays every window out.
func (t *ContainerTree) SetBounds(region geometry.Bounds) {
	t.bounds = region
	t.root.setBounds(region.Inset(t.opts.PartitionGap))
	t.root.Recalculate()
}

// Window returns the tracked leaf for id, or nil.
func (t *ContainerTree) Window(id WindowID) *Window {
	return t.windows[id]
}

// Windows returns the tracked leaves in ascending id order.
func (t *ContainerTree) Windows() []*Window {
	out := make([]*Window, 0, len(t.windows))
	for _, w := range t.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Walk visits every node depth-first, parents before children.
func (t *ContainerTree) Walk(visit func(n Node, depth int)) {
	var rec func(n Node, depth int)
	rec = func(n Node, depth int) {
		visit(n, depth)
		if c, ok := n.(*Container); ok {
			for _, child := range c.children {
				rec(child, depth+1)
			}
		}
	}
	rec(t.root, 0)
}

// windowAt descends from the root picking, at each level, the child whose
// bounds contain p. Returns nil when the pointer is over a gap or outside the
// region.
func (t *ContainerTree) windowAt(p geometry.Point) *Window {
	var node Node = t.root
	for {
		c, ok := node.(*Container)
		if !ok {
			return node.(*Window)
		}
		var next Node
		for _, child := range c.children {
			if child.Bounds().Contains(p) {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
}

// closestSide returns the side of b nearest to p and the pixel distance to it.
func closestSide(p geometry.Point, b geometry.Bounds) (Side, int) {
	side := SideLeft
	dist := p.X - b.X
	if d := b.Right() - p.X; d < dist {
		side, dist = SideRight, d
	}
	if d := p.Y - b.Y; d < dist {
		side, dist = SideTop, d
	}
	if d := b.Bottom() - p.Y; d < dist {
		side, dist = SideBottom, d
	}
	return side, dist
}

// onMatchingEdge reports whether child sits at the extreme of parent on the
// edge side points at: first child for Left/Top, last child for Right/Bottom.
func onMatchingEdge(parent *Container, child Node, side Side) bool {
	idx := parent.IndexOf(child)
	if idx < 0 {
		return false
	}
	if side.Order() == Before {
		return idx == 0
	}
	return idx == len(parent.children)-1
}

// GetTileAction derives the structural action implied by dropping the window
// with id dragged at p. Nil means the position is not a valid drop.
//
// The zones are concentric: nearest a window's edge the drop restructures the
// enclosing group, a bit further in it splits or extends the row, and around
// the center it swaps. Thresholds scale with half the target's shorter
// dimension so the zones feel the same on panes of any size.
func (t *ContainerTree) GetTileAction(dragged WindowID, p geometry.Point) *TileAction {
	if t.Empty() {
		return &TileAction{Kind: ActionFillRoot}
	}
	target := t.windowAt(p)
	if target == nil {
		return nil
	}
	if target.ID() == dragged {
		// A window cannot be tiled onto itself, in any zone.
		return nil
	}

	tb := target.Bounds()
	side, dist := closestSide(p, tb)
	short := tb.Width
	if tb.Height < short {
		short = tb.Height
	}
	scale := float64(short) / 2.0
	if scale <= 0 {
		return nil
	}
	d := float64(dist)

	switch {
	case d < t.opts.AddToParentThreshold*scale:
		return t.splitParentAction(target, side)
	case d < t.opts.SplitThreshold*scale:
		return splitZoneAction(target, side)
	case d < t.opts.SwapThreshold*scale:
		return &TileAction{Kind: ActionSwap, Node: target}
	}
	return nil
}

// splitZoneAction distinguishes "extend the row" from "start a new row inside
// this cell": extending applies when the drop side runs along the parent's
// own axis.
func splitZoneAction(pivot Node, side Side) *TileAction {
	parent := pivot.Parent()
	if parent == nil {
		return &TileAction{Kind: ActionAddToParent, Node: pivot, Side: side}
	}
	if side.Direction() == parent.Direction() {
		return &TileAction{Kind: ActionAddToParent, Node: pivot, Side: side}
	}
	return &TileAction{Kind: ActionSplit, Node: pivot, Side: side}
}

// splitParentAction handles the outermost zone. When the drop side crosses
// the row's axis the whole row is the pivot, so the new window lands beside
// it in the enclosing group. Along the row's axis a drop at the extreme edge
// escalates the same way, but only when an enclosing group exists; everywhere
// else it degrades to inserting beside the target itself.
func (t *ContainerTree) splitParentAction(target *Window, side Side) *TileAction {
	parent := target.Parent()
	if parent == nil {
		return nil
	}
	if side.Direction() != parent.Direction() {
		return &TileAction{Kind: ActionAddToParent, Node: parent, Side: side}
	}
	if onMatchingEdge(parent, target, side) && parent.Parent() != nil {
		return &TileAction{Kind: ActionAddToParent, Node: parent, Side: side}
	}
	return &TileAction{Kind: ActionAddToParent, Node: target, Side: side}
}

// GetPreviewBounds mirrors GetTileAction without mutating the tree, returning
// the rectangle a drop ghost should cover, or false for an invalid position.
func (t *ContainerTree) GetPreviewBounds(dragged WindowID, p geometry.Point) (geometry.Bounds, bool) {
	action := t.GetTileAction(dragged, p)
	if action == nil {
		return geometry.Bounds{}, false
	}
	switch action.Kind {
	case ActionFillRoot:
		return t.root.Bounds(), true
	case ActionSwap:
		return action.Node.Bounds(), true
	case ActionSplit:
		return previewSlice(action.Node.Bounds(), action.Side, t.opts.SplitPreviewRatio), true
	case ActionAddToParent:
		return previewSlice(action.Node.Bounds(), action.Side, t.opts.AddToParentPreviewRatio), true
	}
	return geometry.Bounds{}, false
}

// InsertWindow re-derives the tile action for p and applies it. A window
// already in the tree is relocated in place, keeping its leaf identity; a new
// handle gets a fresh leaf. Fails with ErrInvalidInsertPosition when the
// position implies no action.
func (t *ContainerTree) InsertWindow(handle WindowHandle, p geometry.Point) (*InsertResult, error) {
	action := t.GetTileAction(handle.ID(), p)
	if action == nil {
		return nil, fmt.Errorf("drop at %v: %w", p, ErrInvalidInsertPosition)
	}

	win, tracked := t.windows[handle.ID()]
	if !tracked {
		win = NewWindow(handle)
	}

	switch action.Kind {
	case ActionFillRoot:
		t.root.AddChild(win)
	case ActionSwap:
		if win.Parent() == nil {
			return nil, fmt.Errorf("swap with untracked window %d: %w", handle.ID(), ErrInvalidInsertPosition)
		}
		Swap(win, action.Node)
	case ActionAddToParent:
		t.applyAddToParent(action.Node, win, action.Side)
	case ActionSplit:
		parent := action.Node.Parent()
		if parent == nil {
			// Splitting the root is expressed as the root splitting itself.
			action.Node.(*Container).SplitSelf(win, action.Side.Order())
		} else {
			parent.SplitWindow(action.Node, win, action.Side.Order())
		}
	}

	t.windows[handle.ID()] = win
	t.root.Recalculate()
	return &InsertResult{Action: *action, Window: win}, nil
}

// applyAddToParent inserts win next to pivot inside pivot's parent. The root
// has no parent to extend, so it splits itself instead.
func (t *ContainerTree) applyAddToParent(pivot Node, win *Window, side Side) {
	parent := pivot.Parent()
	if parent == nil {
		pivot.(*Container).SplitSelf(win, side.Order())
		return
	}
	idx := parent.IndexOf(pivot)
	if side.Order() == After {
		idx++
	}
	parent.InsertChild(idx, win)
}

// AddWindow appends a new window at the end of the root row, the fallback
// used for windows that appear without a drop position (map notifications).
func (t *ContainerTree) AddWindow(handle WindowHandle) *Window {
	if w, ok := t.windows[handle.ID()]; ok {
		return w
	}
	w := NewWindow(handle)
	t.root.AddChild(w)
	t.windows[handle.ID()] = w
	t.root.Recalculate()
	return w
}

// RemoveWindow detaches the window from the tree, collapsing any container
// left with one child.
func (t *ContainerTree) RemoveWindow(id WindowID) error {
	win, ok := t.windows[id]
	if !ok {
		return fmt.Errorf("remove window %d: %w", id, ErrWindowNotFound)
	}
	if parent := win.Parent(); parent != nil {
		parent.RemoveChild(win)
	}
	delete(t.windows, id)
	t.root.Recalculate()
	return nil
}

// ReplaceWindow substitutes a fresh handle into the tree slot of an existing
// window, preserving the position across an application relaunch.
func (t *ContainerTree) ReplaceWindow(oldID WindowID, handle WindowHandle) error {
	win, ok := t.windows[oldID]
	if !ok {
		return fmt.Errorf("replace window %d: %w", oldID, ErrWindowNotFound)
	}
	parent := win.Parent()
	if parent == nil {
		return fmt.Errorf("replace window %d: %w", oldID, ErrWindowNotFound)
	}
	repl := NewWindow(handle)
	parent.ReplaceChild(win, repl)
	delete(t.windows, oldID)
	t.windows[handle.ID()] = repl
	t.root.Recalculate()
	return nil
}

// ResizeWindow grows or shrinks a window by (dx, dy) pixels on the edges dir
// selects, redistributing space among its siblings and ancestors.
func (t *ContainerTree) ResizeWindow(id WindowID, dir ResizeDirection, dx, dy int) error {
	win, ok := t.windows[id]
	if !ok {
		return fmt.Errorf("resize window %d: %w", id, ErrWindowNotFound)
	}
	parent := win.Parent()
	if parent == nil {
		return nil
	}

	nb := win.Bounds()
	if dir.HasLeft() {
		nb.X -= dx
		nb.Width += dx
	}
	if dir.HasRight() {
		nb.Width += dx
	}
	if dir.HasTop() {
		nb.Y -= dy
		nb.Height += dy
	}
	if dir.HasBottom() {
		nb.Height += dy
	}
	parent.ResizeBounds(win, nb)
	return nil
}

// Equalize resets every container's ratios to equal shares and relays out.
func (t *ContainerTree) Equalize() {
	t.Walk(func(n Node, _ int) {
		if c, ok := n.(*Container); ok {
			c.EqualizeRatios()
		}
	})
	t.root.Recalculate()
}

// Flush commits every pending window geometry to the platform.
func (t *ContainerTree) Flush() error {
	var errs []error
	for _, w := range t.Windows() {
		if !w.Handle().Dirty() {
			continue
		}
		if err := w.Handle().Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush window %d: %w", w.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// DebugLayout renders the tree as an indented diagnostic dump.
func (t *ContainerTree) DebugLayout() string {
	var b strings.Builder
	t.Walk(func(n Node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch v := n.(type) {
		case *Container:
			fmt.Fprintf(&b, "%scontainer %d %s %s ratios=%s\n",
				indent, v.ID(), v.Direction(), v.Bounds(), formatRatios(v.Ratios()))
		case *Window:
			fmt.Fprintf(&b, "%swindow %d %s\n", indent, v.ID(), v.Bounds())
		}
	})
	return b.String()
}

func formatRatios(ratios []float64) string {
	parts := make([]string, len(ratios))
	for i, r := range ratios {
		parts[i] = fmt.Sprintf("%.2f", r)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
