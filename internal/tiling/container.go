package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// ratioEpsilon is the tolerance for the ratios-sum-to-one invariant.
const ratioEpsilon = 1e-6

// idGen hands out container ids for debug output. It is owned by the tree,
// never process-global.
type idGen struct {
	next int
}

func (g *idGen) nextID() int {
	g.next++
	return g.next
}

// Container is an internal tree node: an ordered, ratio-weighted list of
// children laid out side by side along one axis. The ratios slice always has
// one entry per child and sums to 1.0 after every public mutation.
//
// Ownership is exclusive downward (children slice) with a plain back-pointer
// upward; the tree is single-threaded so the pointer cycle is harmless.
type Container struct {
	id        int
	opts      *Options
	ids       *idGen
	bounds    geometry.Bounds
	direction Direction
	parent    *Container
	children  []Node
	ratios    []float64
}

func newContainer(opts *Options, ids *idGen, bounds geometry.Bounds, direction Direction, parent *Container) *Container {
	return &Container{
		id:        ids.nextID(),
		opts:      opts,
		ids:       ids,
		bounds:    bounds,
		direction: direction,
		parent:    parent,
	}
}

// ID returns the container's debug id.
func (c *Container) ID() int {
	return c.id
}

// Bounds returns the container's rectangle.
func (c *Container) Bounds() geometry.Bounds {
	return c.bounds
}

// Direction returns the layout axis.
func (c *Container) Direction() Direction {
	return c.direction
}

// Parent returns the owning container, nil for the root.
func (c *Container) Parent() *Container {
	return c.parent
}

// Children returns the ordered child list. Callers must not mutate it.
func (c *Container) Children() []Node {
	return c.children
}

// Ratios returns the per-child proportion weights. Callers must not mutate it.
func (c *Container) Ratios() []float64 {
	return c.ratios
}

func (c *Container) setBounds(b geometry.Bounds) {
	c.bounds = b
}

func (c *Container) setParent(p *Container) {
	c.parent = p
}

// IndexOf returns the slot of child in this container, or -1.
func (c *Container) IndexOf(child Node) int {
	for i, n := range c.children {
		if n == child {
			return i
		}
	}
	return -1
}

// axisSize is the container's extent along its layout axis.
func (c *Container) axisSize() int {
	if c.direction == Horizontal {
		return c.bounds.Width
	}
	return c.bounds.Height
}

// axisOrigin is the container's leading coordinate along its layout axis.
func (c *Container) axisOrigin() int {
	if c.direction == Horizontal {
		return c.bounds.X
	}
	return c.bounds.Y
}

// AddChild appends child, detaching it from any previous parent first.
func (c *Container) AddChild(child Node) Node {
	return c.InsertChild(len(c.children), child)
}

// InsertChild splices child in at index. If the child is already somewhere in
// a tree it is detached from its current location first. The index is
// adjusted when the detachment happens earlier in this same container, and a
// different old parent goes through the usual remove-and-collapse path. The
// old parent is unlinked last because its collapse can restructure ancestors.
func (c *Container) InsertChild(index int, child Node) Node {
	old := child.Parent()

	if old == c {
		if cur := c.IndexOf(child); cur >= 0 {
			if cur < index {
				index--
			}
			c.children = append(c.children[:cur], c.children[cur+1:]...)
			c.ratios = append(c.ratios[:cur], c.ratios[cur+1:]...)
		}
		c.spliceChild(index, child)
		return child
	}

	c.spliceChild(index, child)
	child.setParent(c)
	if old != nil {
		old.RemoveChild(child)
	}
	return child
}

// spliceChild inserts child into the slot at index and assigns its ratio.
func (c *Container) spliceChild(index int, child Node) {
	if index < 0 {
		index = 0
	}
	if index > len(c.children) {
		index = len(c.children)
	}
	c.children = append(c.children, nil)
	copy(c.children[index+1:], c.children[index:])
	c.children[index] = child
	child.setParent(c)
	c.insertRatioAt(index)
}

// insertRatioAt assigns the slot at index its initial weight: 1.0 for the
// first child, otherwise an equal share relative to the pre-existing count so
// a new sibling never starts out near zero.
func (c *Container) insertRatioAt(index int) {
	n := len(c.children)
	ratio := 1.0
	if n > 1 {
		ratio = 1.0 / float64(n-1)
	}
	c.ratios = append(c.ratios, 0)
	copy(c.ratios[index+1:], c.ratios[index:])
	c.ratios[index] = ratio
	c.normalizeRatios()
}

// normalizeRatios rescales the weights so they sum to 1.0.
func (c *Container) normalizeRatios() {
	if len(c.ratios) == 0 {
		return
	}
	var sum float64
	for _, r := range c.ratios {
		sum += r
	}
	if sum <= 0 {
		eq := 1.0 / float64(len(c.ratios))
		for i := range c.ratios {
			c.ratios[i] = eq
		}
		return
	}
	if math.Abs(sum-1.0) <= ratioEpsilon {
		return
	}
	for i := range c.ratios {
		c.ratios[i] /= sum
	}
}

// EqualizeRatios resets every child to an equal share.
func (c *Container) EqualizeRatios() {
	if len(c.ratios) == 0 {
		return
	}
	eq := 1.0 / float64(len(c.ratios))
	for i := range c.ratios {
		c.ratios[i] = eq
	}
}

// SplitWindow replaces target with a new container running perpendicular to
// this one, holding target and newChild in the order implied by order. This
// is how a leaf grows a second window beside it.
func (c *Container) SplitWindow(target Node, newChild Node, order InsertOrder) *Container {
	idx := c.IndexOf(target)
	if idx < 0 {
		return nil
	}

	split := newContainer(c.opts, c.ids, target.Bounds(), c.direction.Opposite(), c)
	c.children[idx] = split

	target.setParent(nil)
	if order == Before {
		split.AddChild(newChild)
		split.AddChild(target)
	} else {
		split.AddChild(target)
		split.AddChild(newChild)
	}
	return split
}

// SplitSelf wraps all current children into a single new container that keeps
// this container's direction and ratios, then flips this container to the
// opposite direction holding the wrapper and newChild in the order implied by
// order. Used when a drop lands on the outer edge of a whole group.
func (c *Container) SplitSelf(newChild Node, order InsertOrder) *Container {
	wrapper := newContainer(c.opts, c.ids, c.bounds, c.direction, c)
	wrapper.children = c.children
	wrapper.ratios = c.ratios
	for _, child := range wrapper.children {
		child.setParent(wrapper)
	}

	c.direction = c.direction.Opposite()
	c.children = nil
	c.ratios = nil

	if order == Before {
		c.AddChild(newChild)
		c.AddChild(wrapper)
	} else {
		c.AddChild(wrapper)
		c.AddChild(newChild)
	}
	return wrapper
}

// Swap exchanges the tree positions of a and b in one atomic step. Ratios stay
// attached to slots, not to the nodes, so no weights change.
func Swap(a, b Node) {
	pa, pb := a.Parent(), b.Parent()
	if pa == nil || pb == nil {
		return
	}
	ia, ib := pa.IndexOf(a), pb.IndexOf(b)
	if ia < 0 || ib < 0 {
		return
	}
	pa.children[ia] = b
	pb.children[ib] = a
	a.setParent(pb)
	b.setParent(pa)
}

// RemoveChild detaches child and its ratio, renormalizes, and enforces the
// collapse invariant: a non-root container left with a single child removes
// itself and promotes that child into the grandparent.
func (c *Container) RemoveChild(child Node) {
	idx := c.IndexOf(child)
	if idx < 0 {
		return
	}
	c.children = append(c.children[:idx], c.children[idx+1:]...)
	c.ratios = append(c.ratios[:idx], c.ratios[idx+1:]...)
	c.normalizeRatios()
	c.collapse()
}

// collapse removes this container if it holds exactly one child and has a
// parent. A promoted window takes over the vacated slot; a promoted container
// has its children spliced into the grandparent at the vacated index so no
// pass-through node survives.
func (c *Container) collapse() {
	if len(c.children) != 1 || c.parent == nil {
		return
	}

	parent := c.parent
	only := c.children[0]
	idx := parent.IndexOf(c)
	if idx < 0 {
		return
	}

	inner, isContainer := only.(*Container)
	if !isContainer {
		parent.children[idx] = only
		only.setParent(parent)
		c.children = nil
		c.ratios = nil
		return
	}

	// Splice the grandchildren into the vacated slot, dividing its weight
	// among them in proportion to their weights inside inner.
	share := 1.0 / float64(len(parent.ratios))
	if idx < len(parent.ratios) {
		share = parent.ratios[idx]
	}
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	parent.ratios = append(parent.ratios[:idx], parent.ratios[idx+1:]...)
	for j, gc := range inner.children {
		parent.children = append(parent.children, nil)
		copy(parent.children[idx+j+1:], parent.children[idx+j:])
		parent.children[idx+j] = gc

		parent.ratios = append(parent.ratios, 0)
		copy(parent.ratios[idx+j+1:], parent.ratios[idx+j:])
		parent.ratios[idx+j] = share * inner.ratios[j]

		gc.setParent(parent)
	}
	parent.normalizeRatios()
	c.children = nil
	c.ratios = nil
	parent.collapse()
}

// ReplaceChild swaps replacement into old's slot. The old node is left
// untouched for the caller to dispose of. Used when a window's handle is
// substituted in place (e.g. an application relaunch).
func (c *Container) ReplaceChild(old, replacement Node) bool {
	idx := c.IndexOf(old)
	if idx < 0 {
		return false
	}
	c.children[idx] = replacement
	replacement.setParent(c)
	return true
}

// Recalculate slices this container's bounds among its children according to
// the ratios, recursing into child containers. The last child absorbs the
// integer rounding remainder so pixel bounds always sum exactly to the
// container size.
func (c *Container) Recalculate() {
	n := len(c.children)
	if n != len(c.ratios) {
		panic(fmt.Sprintf("container %d: %d children but %d ratios", c.id, n, len(c.ratios)))
	}
	if n == 0 {
		return
	}

	gap := c.opts.WindowGap
	content := c.axisSize() - gap*(n-1)
	if content < 0 {
		content = 0
	}

	pos := c.axisOrigin()
	remaining := content
	for i, child := range c.children {
		size := remaining
		if i < n-1 {
			size = int(float64(content) * c.ratios[i])
			if size > remaining {
				size = remaining
			}
		}
		remaining -= size

		var cb geometry.Bounds
		if c.direction == Horizontal {
			cb = geometry.NewBounds(pos, c.bounds.Y, size, c.bounds.Height)
		} else {
			cb = geometry.NewBounds(c.bounds.X, pos, c.bounds.Width, size)
		}
		child.setBounds(cb)
		pos += size + gap

		if cc, ok := child.(*Container); ok {
			cc.Recalculate()
		}
	}
}

// ResizeBounds applies a live drag of child's edges. Pixel deltas on the
// leading and trailing edges along this container's axis are redistributed as
// ratio offsets across the preceding and following sibling groups; the child's
// own weight becomes whatever remains, floored at MinChildWeight. A delta that
// implicates this container's own edges (cross-axis movement, or the first or
// last child's outer edge) propagates upward through the parent.
func (c *Container) ResizeBounds(child Node, newBounds geometry.Bounds) {
	idx := c.IndexOf(child)
	if idx < 0 {
		return
	}

	old := child.Bounds()
	dLeft := newBounds.X - old.X
	dRight := newBounds.Right() - old.Right()
	dTop := newBounds.Y - old.Y
	dBottom := newBounds.Bottom() - old.Bottom()

	var lead, trail, crossLead, crossTrail int
	if c.direction == Horizontal {
		lead, trail = dLeft, dRight
		crossLead, crossTrail = dTop, dBottom
	} else {
		lead, trail = dTop, dBottom
		crossLead, crossTrail = dLeft, dRight
	}

	axis := c.axisSize()
	if axis <= 0 {
		return
	}

	n := len(c.children)
	if lead != 0 && idx > 0 {
		c.offsetRatios(0, idx, float64(lead)/float64(axis))
	}
	if trail != 0 && idx < n-1 {
		c.offsetRatios(idx+1, n, -float64(trail)/float64(axis))
	}

	var before, after float64
	for j := 0; j < idx; j++ {
		before += c.ratios[j]
	}
	for j := idx + 1; j < n; j++ {
		after += c.ratios[j]
	}
	own := 1.0 - before - after
	if own < c.opts.MinChildWeight {
		own = c.opts.MinChildWeight
	}
	c.ratios[idx] = own
	c.normalizeRatios()

	// Work out whether our own rectangle moved as a side effect.
	nb := c.bounds
	if c.direction == Horizontal {
		if idx == 0 {
			nb.X += lead
			nb.Width -= lead
		}
		if idx == n-1 {
			nb.Width += trail
		}
		nb.Y += crossLead
		nb.Height += crossTrail - crossLead
	} else {
		if idx == 0 {
			nb.Y += lead
			nb.Height -= lead
		}
		if idx == n-1 {
			nb.Height += trail
		}
		nb.X += crossLead
		nb.Width += crossTrail - crossLead
	}

	if nb != c.bounds && c.parent != nil {
		c.parent.ResizeBounds(c, nb)
		return
	}
	c.Recalculate()
}

// offsetRatios changes the combined weight of children [from,to) by offset
// while preserving their relative proportions. The group total is floored so
// no member of the group is scaled below the minimum child weight on average.
func (c *Container) offsetRatios(from, to int, offset float64) {
	if from >= to {
		return
	}
	var sum float64
	for j := from; j < to; j++ {
		sum += c.ratios[j]
	}
	if sum <= 0 {
		return
	}
	target := sum + offset
	floor := c.opts.MinChildWeight * float64(to-from)
	if target < floor {
		target = floor
	}
	scale := target / sum
	for j := from; j < to; j++ {
		c.ratios[j] *= scale
	}
}

// ResizeEdge converts a single-edge drag to a full rectangle for child and
// delegates to ResizeBounds. When symmetric, the opposite edge moves by the
// same amount so the child grows or shrinks around its center.
func (c *Container) ResizeEdge(child Node, edgePosition int, side Side, symmetric bool) {
	old := child.Bounds()
	nb := old

	switch side {
	case SideLeft:
		grow := old.X - edgePosition
		nb.X = edgePosition
		nb.Width = old.Width + grow
		if symmetric {
			nb.Width += grow
		}
	case SideRight:
		grow := edgePosition - old.Right()
		nb.Width = old.Width + grow
		if symmetric {
			nb.X -= grow
			nb.Width += grow
		}
	case SideTop:
		grow := old.Y - edgePosition
		nb.Y = edgePosition
		nb.Height = old.Height + grow
		if symmetric {
			nb.Height += grow
		}
	case SideBottom:
		grow := edgePosition - old.Bottom()
		nb.Height = old.Height + grow
		if symmetric {
			nb.Y -= grow
			nb.Height += grow
		}
	}

	c.ResizeBounds(child, nb)
}

// ResizeBetween drags the splitter between children[splitIndex-1] and
// children[splitIndex] to a new coordinate on the layout axis. Both sides keep
// their internal proportions and are clamped to MinSplitRatio. Returns false
// when the index is out of range or there is nothing to split.
func (c *Container) ResizeBetween(splitIndex int, newPosition int) bool {
	n := len(c.children)
	if splitIndex <= 0 || splitIndex >= n || n < 2 {
		return false
	}
	axis := c.axisSize()
	if axis <= 0 {
		return false
	}

	t := float64(newPosition-c.axisOrigin()) / float64(axis)
	if t < c.opts.MinSplitRatio {
		t = c.opts.MinSplitRatio
	}
	if t > 1.0-c.opts.MinSplitRatio {
		t = 1.0 - c.opts.MinSplitRatio
	}

	var leftSum, rightSum float64
	for j := 0; j < splitIndex; j++ {
		leftSum += c.ratios[j]
	}
	for j := splitIndex; j < n; j++ {
		rightSum += c.ratios[j]
	}
	if leftSum <= 0 || rightSum <= 0 {
		return false
	}

	leftScale := t / leftSum
	rightScale := (1.0 - t) / rightSum
	for j := 0; j < splitIndex; j++ {
		c.ratios[j] *= leftScale
	}
	for j := splitIndex; j < n; j++ {
		c.ratios[j] *= rightScale
	}
	c.normalizeRatios()
	c.Recalculate()
	return true
}
