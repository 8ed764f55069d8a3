package wm

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/tiletree/internal/geometry"
	"github.com/1broseidon/tiletree/internal/layoutstore"
	"github.com/1broseidon/tiletree/internal/tiling"
)

type fakeHandle struct {
	mu     sync.Mutex
	id     tiling.WindowID
	bounds geometry.Bounds
	dirty  bool
}

func (h *fakeHandle) ID() tiling.WindowID { return h.id }
func (h *fakeHandle) Bounds() geometry.Bounds {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bounds
}
func (h *fakeHandle) SetBounds(b geometry.Bounds) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b != h.bounds {
		h.bounds = b
		h.dirty = true
	}
}
func (h *fakeHandle) Dirty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirty
}
func (h *fakeHandle) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dirty = false
	return nil
}

type fakePlatform struct {
	mu      sync.Mutex
	area    geometry.Bounds
	windows map[tiling.WindowID]*fakeHandle
}

func newFakePlatform(ids ...tiling.WindowID) *fakePlatform {
	p := &fakePlatform{
		area:    geometry.NewBounds(0, 0, 1000, 1000),
		windows: make(map[tiling.WindowID]*fakeHandle),
	}
	for i, id := range ids {
		p.windows[id] = &fakeHandle{id: id, bounds: geometry.NewBounds(i*100, 0, 50, 50)}
	}
	return p
}

func (p *fakePlatform) addWindow(id tiling.WindowID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.windows[id] = &fakeHandle{id: id, bounds: geometry.NewBounds(0, 0, 50, 50)}
}

func (p *fakePlatform) removeWindow(id tiling.WindowID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.windows, id)
}

func (p *fakePlatform) WorkArea() (geometry.Bounds, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.area, nil
}

func (p *fakePlatform) ListWindows() ([]tiling.WindowHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]tiling.WindowHandle, 0, len(p.windows))
	for _, h := range p.windows {
		out = append(out, h)
	}
	return out, nil
}

func (p *fakePlatform) Window(id tiling.WindowID) (tiling.WindowHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.windows[id]
	if !ok {
		return nil, errors.New("no such window")
	}
	return h, nil
}

func (p *fakePlatform) Pointer() (geometry.Point, error) {
	return geometry.Point{X: 0, Y: 0}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testManagerOptions(autosave string) Options {
	opts := tiling.DefaultOptions()
	opts.WindowGap = 0
	opts.PartitionGap = 0
	return Options{
		Tiling: opts,
		// Long enough that reconciliation only runs when tests ask for it.
		PollInterval: time.Hour,
		AutosavePath: autosave,
		Logger:       quietLogger(),
	}
}

func startManager(t *testing.T, platform Platform, opts Options) *Manager {
	t.Helper()
	store, err := layoutstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return startManagerWithStore(t, platform, store, opts)
}

func startManagerWithStore(t *testing.T, platform Platform, store *layoutstore.Store, opts Options) *Manager {
	t.Helper()
	m := NewManager(platform, store, opts)
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-finished; err != nil {
			t.Errorf("manager run: %v", err)
		}
	})
	return m
}

func TestManagerInitialTiling(t *testing.T) {
	platform := newFakePlatform(1, 2)
	m := startManager(t, platform, testManagerOptions(""))

	st, err := m.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Windows != 2 {
		t.Fatalf("windows = %d, want 2", st.Windows)
	}
	// Both handles were laid out and flushed.
	for id, h := range platform.windows {
		if h.Dirty() {
			t.Errorf("window %d left dirty after startup", id)
		}
		if h.Bounds().Width != 500 {
			t.Errorf("window %d width = %d, want 500", id, h.Bounds().Width)
		}
	}
}

func TestManagerWindowEvents(t *testing.T) {
	platform := newFakePlatform(1)
	m := startManager(t, platform, testManagerOptions(""))

	platform.addWindow(2)
	m.WindowMapped(2)
	st, _ := m.Status()
	if st.Windows != 2 {
		t.Fatalf("windows after map = %d, want 2", st.Windows)
	}
	// Duplicate map events must not double-track.
	m.WindowMapped(2)
	st, _ = m.Status()
	if st.Windows != 2 {
		t.Fatalf("windows after duplicate map = %d, want 2", st.Windows)
	}

	m.WindowDestroyed(2)
	st, _ = m.Status()
	if st.Windows != 1 {
		t.Fatalf("windows after destroy = %d, want 1", st.Windows)
	}
	// A destroy racing the reconciler is tolerated.
	m.WindowDestroyed(2)
}

func TestManagerReconcileDrift(t *testing.T) {
	platform := newFakePlatform(1, 2)
	m := startManager(t, platform, testManagerOptions(""))

	platform.removeWindow(2)
	platform.addWindow(3)
	if err := m.Reconcile(); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	st, _ := m.Status()
	if st.Windows != 2 {
		t.Fatalf("windows = %d, want 2", st.Windows)
	}
	dump, _ := m.DebugLayout()
	if !strings.Contains(dump, "window 3") || strings.Contains(dump, "window 2") {
		t.Fatalf("drift not absorbed:\n%s", dump)
	}
}

func TestManagerSaveAndLoadLayout(t *testing.T) {
	platform := newFakePlatform(1, 2)
	store, err := layoutstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	m := startManagerWithStore(t, platform, store, testManagerOptions(""))

	if err := m.Equalize(); err != nil {
		t.Fatalf("equalize: %v", err)
	}
	if err := m.SaveLayout("pair"); err != nil {
		t.Fatalf("save: %v", err)
	}
	names, err := m.ListLayouts()
	if err != nil || len(names) != 1 || names[0] != "pair" {
		t.Fatalf("layouts = %v (%v), want [pair]", names, err)
	}

	if err := m.LoadLayout("pair"); err != nil {
		t.Fatalf("load: %v", err)
	}
	st, _ := m.Status()
	if st.Windows != 2 {
		t.Fatalf("windows after load = %d, want 2", st.Windows)
	}

	if err := m.LoadLayout("missing"); err == nil {
		t.Fatalf("loading an unknown layout succeeded")
	}
	if err := m.DeleteLayout("pair"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestManagerAutosaveRestore(t *testing.T) {
	autosave := filepath.Join(t.TempDir(), "autosave.yaml")
	platform := newFakePlatform(1, 2)

	{
		m := startManager(t, platform, testManagerOptions(autosave))
		// Make the layout distinctive, then save it through any mutation.
		if err := m.Resize(1, tiling.ResizeRight, 100, 0); err != nil {
			t.Fatalf("resize: %v", err)
		}
	}

	// Give window 1 some other geometry so a fresh layout would differ.
	snap, err := layoutstore.LoadFile(autosave)
	if err != nil || snap == nil {
		t.Fatalf("autosave not written: %v", err)
	}

	m2 := startManager(t, platform, testManagerOptions(autosave))
	dump, _ := m2.DebugLayout()
	if !strings.Contains(dump, "0.60") {
		t.Fatalf("restored tree lost the resized ratios:\n%s", dump)
	}
}

func TestManagerInsert(t *testing.T) {
	platform := newFakePlatform(1, 2)
	m := startManager(t, platform, testManagerOptions(""))

	// Wait for the initial tree before the platform grows a third window,
	// otherwise startup tiles it and the drop below lands in a swap zone.
	st, err := m.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Windows != 2 {
		t.Fatalf("initial windows = %d, want 2", st.Windows)
	}

	platform.addWindow(3)
	res, err := m.Insert(3, geometry.Point{X: 880, Y: 500})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.Action.Kind != tiling.ActionAddToParent {
		t.Fatalf("action = %v, want add-to-parent", res.Action.Kind)
	}
	st, _ = m.Status()
	if st.Windows != 3 {
		t.Fatalf("windows = %d, want 3", st.Windows)
	}

	if _, err := m.Insert(99, geometry.Point{X: 1, Y: 1}); !errors.Is(err, tiling.ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
	if _, err := m.Insert(1, geometry.Point{X: 5000, Y: 5000}); !errors.Is(err, tiling.ErrInvalidInsertPosition) {
		t.Fatalf("err = %v, want ErrInvalidInsertPosition", err)
	}
}

func TestManagerPreview(t *testing.T) {
	platform := newFakePlatform(1, 2)
	m := startManager(t, platform, testManagerOptions(""))

	b, ok, err := m.Preview(1, geometry.Point{X: 750, Y: 900})
	if err != nil || !ok {
		t.Fatalf("preview: ok=%v err=%v", ok, err)
	}
	if b.Width != 500 || b.Height != 500 {
		t.Fatalf("preview bounds = %v, want 500x500", b)
	}

	if _, ok, _ := m.Preview(1, geometry.Point{X: 5000, Y: 5000}); ok {
		t.Fatalf("preview accepted an invalid position")
	}
}
