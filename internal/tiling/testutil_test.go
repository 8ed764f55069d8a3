package tiling

import (
	"math"
	"testing"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// fakeHandle is an in-memory stand-in for a platform window.
type fakeHandle struct {
	id       WindowID
	bounds   geometry.Bounds
	dirty    bool
	flushed  int
	flushErr error
}

func newHandle(id WindowID, b geometry.Bounds) *fakeHandle {
	return &fakeHandle{id: id, bounds: b}
}

func (h *fakeHandle) ID() WindowID            { return h.id }
func (h *fakeHandle) Bounds() geometry.Bounds { return h.bounds }
func (h *fakeHandle) SetBounds(b geometry.Bounds) {
	if b != h.bounds {
		h.bounds = b
		h.dirty = true
	}
}
func (h *fakeHandle) Dirty() bool { return h.dirty }
func (h *fakeHandle) Flush() error {
	if h.flushErr != nil {
		return h.flushErr
	}
	h.dirty = false
	h.flushed++
	return nil
}

// testOptions zeroes the gaps so pixel math in assertions stays exact.
func testOptions() Options {
	opts := DefaultOptions()
	opts.WindowGap = 0
	opts.PartitionGap = 0
	return opts
}

func region1000() geometry.Bounds {
	return geometry.NewBounds(0, 0, 1000, 1000)
}

// newTestTree builds a tree over a 1000x1000 region with n windows in the
// root row, ids 1..n.
func newTestTree(t *testing.T, n int) (*ContainerTree, []*fakeHandle) {
	t.Helper()
	handles := make([]*fakeHandle, n)
	wh := make([]WindowHandle, n)
	for i := range handles {
		handles[i] = newHandle(WindowID(i+1), geometry.NewBounds(i*10, 0, 10, 10))
		wh[i] = handles[i]
	}
	tree := NewContainerTree(region1000(), wh, testOptions())
	return tree, handles
}

// checkInvariants walks the tree verifying the structural rules every public
// mutation must leave intact.
func checkInvariants(t *testing.T, tree *ContainerTree) {
	t.Helper()
	tree.Walk(func(n Node, _ int) {
		c, ok := n.(*Container)
		if !ok {
			return
		}
		if len(c.Children()) != len(c.Ratios()) {
			t.Fatalf("container %d: %d children, %d ratios", c.ID(), len(c.Children()), len(c.Ratios()))
		}
		if len(c.Children()) > 0 {
			var sum float64
			for _, r := range c.Ratios() {
				if r < 0 {
					t.Fatalf("container %d: negative ratio %v", c.ID(), r)
				}
				sum += r
			}
			if math.Abs(sum-1.0) > 1e-6 {
				t.Fatalf("container %d: ratios sum to %v", c.ID(), sum)
			}
		}
		if c != tree.Root() && len(c.Children()) == 1 {
			t.Fatalf("container %d: single child survived collapse", c.ID())
		}
		for _, child := range c.Children() {
			if child.Parent() != c {
				t.Fatalf("container %d: child has parent %v", c.ID(), child.Parent())
			}
		}
	})
}

func ratiosEqual(got, want []float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			return false
		}
	}
	return true
}
