package tiling

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/tiletree/internal/geometry"
)

func TestNewTreeSortsWindowsByPosition(t *testing.T) {
	handles := []WindowHandle{
		newHandle(1, geometry.NewBounds(800, 0, 100, 100)),
		newHandle(2, geometry.NewBounds(10, 0, 100, 100)),
		newHandle(3, geometry.NewBounds(400, 0, 100, 100)),
	}
	tree := NewContainerTree(region1000(), handles, testOptions())
	checkInvariants(t, tree)

	root := tree.Root()
	wantOrder := []WindowID{2, 3, 1}
	for i, id := range wantOrder {
		w, ok := root.Children()[i].(*Window)
		if !ok || w.ID() != id {
			t.Fatalf("slot %d holds %v, want window %d", i, root.Children()[i], id)
		}
	}
}

func TestTreeInsetsByPartitionGap(t *testing.T) {
	opts := testOptions()
	opts.PartitionGap = 40
	tree := NewContainerTree(region1000(), []WindowHandle{
		newHandle(1, geometry.NewBounds(0, 0, 10, 10)),
	}, opts)
	want := geometry.NewBounds(40, 40, 920, 920)
	if got := tree.Root().Bounds(); got != want {
		t.Fatalf("root bounds = %v, want %v", got, want)
	}
	if got := tree.Window(1).Bounds(); got != want {
		t.Fatalf("sole window bounds = %v, want %v", got, want)
	}
}

// The zones around window 2 of a two-window tree: window 2 spans x 500..1000
// over the full height, so its shorter dimension is 500 and the thresholds
// land at 50 (restructure), 150 (split), and 250 (swap) pixels from an edge.
func TestGetTileActionZones(t *testing.T) {
	tests := []struct {
		name     string
		dragged  WindowID
		point    geometry.Point
		wantNil  bool
		wantKind ActionKind
		wantSide Side
		wantRoot bool // action node is the root container
	}{
		{name: "near center swaps", dragged: 1, point: geometry.Point{X: 740, Y: 500}, wantKind: ActionSwap},
		{name: "swap with self is invalid", dragged: 2, point: geometry.Point{X: 740, Y: 500}, wantNil: true},
		{name: "self drop near own edge is invalid", dragged: 2, point: geometry.Point{X: 880, Y: 500}, wantNil: true},
		{name: "self drop at own outer edge is invalid", dragged: 2, point: geometry.Point{X: 995, Y: 500}, wantNil: true},
		{name: "dead center is invalid", dragged: 1, point: geometry.Point{X: 750, Y: 500}, wantNil: true},
		{name: "matching axis extends the row", dragged: 1, point: geometry.Point{X: 880, Y: 500}, wantKind: ActionAddToParent, wantSide: SideRight},
		{name: "crossing axis splits the cell", dragged: 1, point: geometry.Point{X: 750, Y: 900}, wantKind: ActionSplit, wantSide: SideBottom},
		{name: "outer edge of the root row extends it", dragged: 1, point: geometry.Point{X: 995, Y: 500}, wantKind: ActionAddToParent, wantSide: SideRight},
		{name: "inner edge inserts beside the target", dragged: 1, point: geometry.Point{X: 530, Y: 500}, wantKind: ActionAddToParent, wantSide: SideLeft},
		{name: "outer cross edge restructures the root", dragged: 1, point: geometry.Point{X: 750, Y: 960}, wantKind: ActionAddToParent, wantSide: SideBottom, wantRoot: true},
		{name: "outside the region", dragged: 1, point: geometry.Point{X: 1500, Y: 500}, wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := newTestTree(t, 2)
			got := tree.GetTileAction(tt.dragged, tt.point)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("action = %v, want none", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("no action, want %v", tt.wantKind)
			}
			if got.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Kind != ActionSwap && got.Side != tt.wantSide {
				t.Fatalf("side = %v, want %v", got.Side, tt.wantSide)
			}
			if isRoot := got.Node == Node(tree.Root()); isRoot != tt.wantRoot {
				t.Fatalf("node = %v, wantRoot = %v", got.Node, tt.wantRoot)
			}
		})
	}
}

func TestGetTileActionEmptyTree(t *testing.T) {
	tree, _ := newTestTree(t, 0)
	got := tree.GetTileAction(1, geometry.Point{X: 1, Y: 1})
	if got == nil || got.Kind != ActionFillRoot {
		t.Fatalf("action = %v, want fill-root", got)
	}
}

func TestInsertWindowFillRoot(t *testing.T) {
	tree, _ := newTestTree(t, 0)
	h := newHandle(1, geometry.NewBounds(0, 0, 10, 10))
	res, err := tree.InsertWindow(h, geometry.Point{X: 123, Y: 456})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Action.Kind != ActionFillRoot {
		t.Fatalf("action = %v, want fill-root", res.Action.Kind)
	}
	if got := h.Bounds(); got != region1000() {
		t.Fatalf("first window bounds = %v, want whole region", got)
	}
	checkInvariants(t, tree)
}

func TestInsertWindowInvalidPosition(t *testing.T) {
	tree, _ := newTestTree(t, 1)
	_, err := tree.InsertWindow(newHandle(9, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 2000, Y: 2000})
	if !errors.Is(err, ErrInvalidInsertPosition) {
		t.Fatalf("err = %v, want ErrInvalidInsertPosition", err)
	}
	if tree.Window(9) != nil {
		t.Fatalf("failed insert left the window tracked")
	}
}

func TestInsertWindowRelocatesExisting(t *testing.T) {
	tree, _ := newTestTree(t, 3)
	w1 := tree.Window(1)

	// Drag window 1 onto window 3's center: a swap, keeping leaf identity.
	target := tree.Window(3).Bounds()
	res, err := tree.InsertWindow(w1.Handle(), geometry.Point{X: target.X + 120, Y: target.Y + 500})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Window != w1 {
		t.Fatalf("relocation created a fresh leaf")
	}
	if res.Action.Kind != ActionSwap {
		t.Fatalf("action = %v, want swap", res.Action.Kind)
	}
	if tree.Root().IndexOf(w1) != 2 {
		t.Fatalf("window 1 not moved to slot 2")
	}
	if tree.Len() != 3 {
		t.Fatalf("tracked %d windows, want 3", tree.Len())
	}
	checkInvariants(t, tree)
}

func TestInsertWindowOuterEdgeExtendsRootRow(t *testing.T) {
	tree, _ := newTestTree(t, 2)
	res, err := tree.InsertWindow(newHandle(3, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 995, Y: 500})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Action.Kind != ActionAddToParent {
		t.Fatalf("action = %v, want add-to-parent", res.Action.Kind)
	}
	checkInvariants(t, tree)

	// The root row has no enclosing group to escalate to, so the drop
	// degrades to extending the row beside the target: the root stays
	// horizontal and simply grows a third column.
	root := tree.Root()
	if root.Direction() != Horizontal {
		t.Fatalf("root direction = %v, want horizontal", root.Direction())
	}
	if len(root.Children()) != 3 {
		t.Fatalf("root has %d children, want 3", len(root.Children()))
	}
	w3 := tree.Window(3)
	if got := root.IndexOf(w3); got != 2 {
		t.Fatalf("window 3 at slot %d, want 2 (right of window 2)", got)
	}
}

// nestedTree builds root -> H[w1, V[w2, w3]] by splitting window 2's cell.
func nestedTree(t *testing.T) *ContainerTree {
	t.Helper()
	tree, _ := newTestTree(t, 2)
	if _, err := tree.InsertWindow(newHandle(3, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 750, Y: 900}); err != nil {
		t.Fatalf("insert w3: %v", err)
	}
	inner := tree.Window(3).Parent()
	if inner == tree.Root() || inner.Direction() != Vertical {
		t.Fatalf("setup did not nest a vertical column")
	}
	return tree
}

func TestTileActionEscalatesToEnclosingGroup(t *testing.T) {
	tree := nestedTree(t)

	// Window 3 sits at the bottom of the nested column, so a drop hard
	// against that edge pivots on the whole column: the new window joins
	// the root beside it.
	got := tree.GetTileAction(4, geometry.Point{X: 750, Y: 960})
	if got == nil || got.Kind != ActionAddToParent {
		t.Fatalf("action = %v, want add-to-parent", got)
	}
	if got.Node != Node(tree.Window(3).Parent()) {
		t.Fatalf("pivot = %v, want the nested column", got.Node)
	}
	if got.Side != SideBottom {
		t.Fatalf("side = %v, want bottom", got.Side)
	}

	res, err := tree.InsertWindow(newHandle(4, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 750, Y: 960})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	checkInvariants(t, tree)
	if res.Action.Kind != ActionAddToParent {
		t.Fatalf("applied action = %v, want add-to-parent", res.Action.Kind)
	}
	root := tree.Root()
	if tree.Window(4).Parent() != root {
		t.Fatalf("new window not beside the column in the root")
	}
	if len(root.Children()) != 3 || root.Direction() != Horizontal {
		t.Fatalf("root = %d children %v, want 3 horizontal", len(root.Children()), root.Direction())
	}
}

func TestTileActionMiddleChildInsertsBesideTarget(t *testing.T) {
	tree, _ := newTestTree(t, 3)

	// Window 2 is a middle child, so even hard against its right edge the
	// drop cannot escalate; it inserts beside window 2 inside the same row.
	got := tree.GetTileAction(4, geometry.Point{X: 650, Y: 500})
	if got == nil || got.Kind != ActionAddToParent {
		t.Fatalf("action = %v, want add-to-parent", got)
	}
	if got.Node != Node(tree.Window(2)) {
		t.Fatalf("pivot = %v, want window 2", got.Node)
	}

	if _, err := tree.InsertWindow(newHandle(4, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 650, Y: 500}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	checkInvariants(t, tree)
	if got := tree.Root().IndexOf(tree.Window(4)); got != 2 {
		t.Fatalf("window 4 at slot %d, want 2 (between windows 2 and 3)", got)
	}
}

func TestTileActionCrossEdgePivotsOnColumn(t *testing.T) {
	tree := nestedTree(t)

	// A drop against window 3's left edge runs across the column's axis, so
	// the column itself is the pivot and the new window lands before it in
	// the root row.
	got := tree.GetTileAction(4, geometry.Point{X: 510, Y: 750})
	if got == nil || got.Kind != ActionAddToParent {
		t.Fatalf("action = %v, want add-to-parent", got)
	}
	if got.Node != Node(tree.Window(3).Parent()) {
		t.Fatalf("pivot = %v, want the nested column", got.Node)
	}
	if got.Side != SideLeft {
		t.Fatalf("side = %v, want left", got.Side)
	}

	if _, err := tree.InsertWindow(newHandle(4, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 510, Y: 750}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	checkInvariants(t, tree)
	if got := tree.Root().IndexOf(tree.Window(4)); got != 1 {
		t.Fatalf("window 4 at slot %d, want 1 (between window 1 and the column)", got)
	}
}

func TestInsertWindowSelfDropIsRejected(t *testing.T) {
	tree, _ := newTestTree(t, 2)
	before := append([]float64(nil), tree.Root().Ratios()...)

	// Dropping window 2 in its own extend zone must leave the tree alone.
	_, err := tree.InsertWindow(tree.Window(2).Handle(), geometry.Point{X: 880, Y: 500})
	if !errors.Is(err, ErrInvalidInsertPosition) {
		t.Fatalf("err = %v, want ErrInvalidInsertPosition", err)
	}
	if got := tree.Root().Ratios(); !ratiosEqual(got, before) {
		t.Fatalf("self drop perturbed ratios: %v -> %v", before, got)
	}
	if len(tree.Root().Children()) != 2 {
		t.Fatalf("self drop restructured the tree")
	}
	checkInvariants(t, tree)
}

func TestInsertWindowAddToParentOrder(t *testing.T) {
	tree, _ := newTestTree(t, 2)
	res, err := tree.InsertWindow(newHandle(3, geometry.NewBounds(0, 0, 10, 10)),
		geometry.Point{X: 880, Y: 500})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Action.Kind != ActionAddToParent {
		t.Fatalf("action = %v, want add-to-parent", res.Action.Kind)
	}
	w3 := tree.Window(3)
	if got := tree.Root().IndexOf(w3); got != 2 {
		t.Fatalf("window 3 at slot %d, want 2 (right of its target)", got)
	}
	checkInvariants(t, tree)
}

func TestGetPreviewBounds(t *testing.T) {
	tests := []struct {
		name  string
		point geometry.Point
		want  geometry.Bounds
		ok    bool
	}{
		{"swap covers the target", geometry.Point{X: 740, Y: 500}, geometry.NewBounds(500, 0, 500, 1000), true},
		{"split covers half the cell", geometry.Point{X: 750, Y: 900}, geometry.NewBounds(500, 500, 500, 500), true},
		{"extend covers a quarter slice", geometry.Point{X: 880, Y: 500}, geometry.NewBounds(875, 0, 125, 1000), true},
		{"invalid position", geometry.Point{X: 1500, Y: 500}, geometry.Bounds{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := newTestTree(t, 2)
			got, ok := tree.GetPreviewBounds(1, tt.point)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("preview = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreviewDoesNotMutate(t *testing.T) {
	tree, _ := newTestTree(t, 2)
	before := tree.DebugLayout()
	tree.GetPreviewBounds(1, geometry.Point{X: 880, Y: 500})
	tree.GetPreviewBounds(1, geometry.Point{X: 995, Y: 500})
	if after := tree.DebugLayout(); after != before {
		t.Fatalf("preview mutated the tree:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestRemoveWindowErrors(t *testing.T) {
	tree, _ := newTestTree(t, 1)
	if err := tree.RemoveWindow(99); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
	if err := tree.RemoveWindow(1); err != nil {
		t.Fatalf("remove tracked: %v", err)
	}
	if !tree.Empty() {
		t.Fatalf("tree not empty after last removal")
	}
	// Removing twice must report not-found, not crash.
	if err := tree.RemoveWindow(1); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("second remove err = %v, want ErrWindowNotFound", err)
	}
}

func TestReplaceWindowUntracked(t *testing.T) {
	tree, _ := newTestTree(t, 1)
	err := tree.ReplaceWindow(42, newHandle(43, geometry.NewBounds(0, 0, 10, 10)))
	if !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
}

func TestResizeWindowEdgeMask(t *testing.T) {
	tree, handles := newTestTree(t, 2)
	if err := tree.ResizeWindow(1, ResizeRight, 100, 50); err != nil {
		t.Fatalf("resize: %v", err)
	}
	checkInvariants(t, tree)
	// Only the right edge is live, so the vertical delta is ignored.
	if got := handles[0].Bounds(); got.Width != 600 || got.Height != 1000 {
		t.Fatalf("bounds = %v, want width 600 height 1000", got)
	}
	if err := tree.ResizeWindow(99, ResizeLeft, 10, 0); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
}

func TestFlushCommitsDirtyWindows(t *testing.T) {
	tree, handles := newTestTree(t, 2)
	tree.Root().ResizeBetween(1, 300)
	if err := tree.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	for i, h := range handles {
		if h.dirty {
			t.Fatalf("window %d still dirty after flush", i+1)
		}
		if h.flushed == 0 {
			t.Fatalf("window %d never flushed", i+1)
		}
	}
}

func TestFlushReportsErrors(t *testing.T) {
	tree, handles := newTestTree(t, 2)
	handles[0].flushErr = errors.New("window gone")
	tree.Root().ResizeBetween(1, 300)
	if err := tree.Flush(); err == nil {
		t.Fatalf("flush swallowed the handle error")
	}
	// The healthy window must still have been committed.
	if handles[1].flushed == 0 {
		t.Fatalf("flush stopped at the first failure")
	}
}

func TestSetBoundsRelaysOut(t *testing.T) {
	tree, handles := newTestTree(t, 2)
	tree.SetBounds(geometry.NewBounds(0, 0, 600, 400))
	if got := handles[0].Bounds(); got.Width != 300 || got.Height != 400 {
		t.Fatalf("bounds = %v, want 300x400", got)
	}
}

func TestDebugLayout(t *testing.T) {
	tree, _ := newTestTree(t, 2)
	dump := tree.DebugLayout()
	for _, want := range []string{"container", "horizontal", "window 1", "window 2", "0.50"} {
		if !strings.Contains(dump, want) {
			t.Fatalf("dump missing %q:\n%s", want, dump)
		}
	}
}
