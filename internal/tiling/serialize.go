package tiling

import (
	"sort"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// SerializedNode is the persisted form of one tree node. Containers carry
// direction, ratios, and children; windows carry only their id. Bounds are
// never persisted, they are recomputed from ratios on load.
type SerializedNode struct {
	Type      string            `yaml:"type"`
	Direction Direction         `yaml:"direction,omitempty"`
	Ratios    []float64         `yaml:"ratios,omitempty,flow"`
	Children  []*SerializedNode `yaml:"children,omitempty"`
	Window    WindowID          `yaml:"window,omitempty"`
}

const (
	nodeTypeContainer = "container"
	nodeTypeWindow    = "window"
)

// Serialize walks the tree depth-first into its persisted form.
func (t *ContainerTree) Serialize() *SerializedNode {
	return serializeNode(t.root)
}

func serializeNode(n Node) *SerializedNode {
	switch v := n.(type) {
	case *Window:
		return &SerializedNode{Type: nodeTypeWindow, Window: v.ID()}
	case *Container:
		sn := &SerializedNode{
			Type:      nodeTypeContainer,
			Direction: v.direction,
			Ratios:    append([]float64(nil), v.ratios...),
			Children:  make([]*SerializedNode, 0, len(v.children)),
		}
		for _, child := range v.children {
			sn.Children = append(sn.Children, serializeNode(child))
		}
		return sn
	}
	return nil
}

// DeserializeTree rebuilds a tree from a snapshot, reconciled against the
// windows that actually exist right now: leaves whose window is gone are
// pruned (their ratio entries removed with them), containers pruned down to
// one child are elided, and live windows the snapshot never saw are appended
// at the root level sorted by screen position. Returns nil when nothing of
// the snapshot survives pruning; callers fall back to a fresh layout.
func DeserializeTree(sn *SerializedNode, region geometry.Bounds, handles []WindowHandle, opts Options) *ContainerTree {
	if sn == nil {
		return nil
	}
	available := make(map[WindowID]WindowHandle, len(handles))
	for _, h := range handles {
		available[h.ID()] = h
	}

	t := &ContainerTree{
		opts:    opts,
		bounds:  region,
		windows: make(map[WindowID]*Window),
	}
	inner := region.Inset(opts.PartitionGap)

	node := t.deserializeNode(sn, available)
	if node == nil {
		return nil
	}

	if root, ok := node.(*Container); ok {
		t.root = root
	} else {
		// The whole snapshot collapsed to a single window.
		t.root = newContainer(&t.opts, &t.ids, inner, Horizontal, nil)
		t.root.AddChild(node)
	}
	t.root.setBounds(inner)

	var leftovers []WindowHandle
	for id, h := range available {
		if _, tracked := t.windows[id]; !tracked {
			leftovers = append(leftovers, h)
		}
	}
	sort.SliceStable(leftovers, func(i, j int) bool {
		return leftovers[i].Bounds().X < leftovers[j].Bounds().X
	})
	for _, h := range leftovers {
		w := NewWindow(h)
		t.root.AddChild(w)
		t.windows[h.ID()] = w
	}

	t.root.Recalculate()
	return t
}

// deserializeNode reconstructs one subtree, or nil when pruning empties it.
// Dropped children have their ratio indices removed in reverse so earlier
// removals do not shift later ones.
func (t *ContainerTree) deserializeNode(sn *SerializedNode, available map[WindowID]WindowHandle) Node {
	if sn.Type == nodeTypeWindow {
		h, ok := available[sn.Window]
		if !ok {
			return nil
		}
		w := NewWindow(h)
		t.windows[sn.Window] = w
		return w
	}

	ratios := append([]float64(nil), sn.Ratios...)
	children := make([]Node, 0, len(sn.Children))
	var dropped []int
	for i, csn := range sn.Children {
		child := t.deserializeNode(csn, available)
		if child == nil {
			dropped = append(dropped, i)
			continue
		}
		children = append(children, child)
	}
	for j := len(dropped) - 1; j >= 0; j-- {
		if idx := dropped[j]; idx < len(ratios) {
			ratios = append(ratios[:idx], ratios[idx+1:]...)
		}
	}

	switch len(children) {
	case 0:
		return nil
	case 1:
		// Elide the pass-through container, same rule the live tree keeps.
		return children[0]
	}

	c := newContainer(&t.opts, &t.ids, geometry.Bounds{}, sn.Direction, nil)
	c.children = children
	if len(ratios) != len(children) {
		// Corrupt or hand-edited snapshot; fall back to equal shares.
		ratios = make([]float64, len(children))
		for i := range ratios {
			ratios[i] = 1.0 / float64(len(children))
		}
	}
	c.ratios = ratios
	for _, child := range children {
		child.setParent(c)
	}
	c.normalizeRatios()
	return c
}
