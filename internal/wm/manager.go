package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/tiletree/internal/geometry"
	"github.com/1broseidon/tiletree/internal/layoutstore"
	"github.com/1broseidon/tiletree/internal/tiling"
)

// ErrStopped is returned when a request reaches the manager after its loop
// has exited.
var ErrStopped = errors.New("manager stopped")

// Options configures a Manager.
type Options struct {
	Tiling       tiling.Options
	PollInterval time.Duration
	// AutosavePath is where the live tree is snapshotted between runs.
	// Empty disables autosave.
	AutosavePath string
	Logger       *slog.Logger
}

// Manager owns the container tree for the active desktop. The tree is
// single-threaded: every mutation and query runs as a closure on the Run
// goroutine, queued through the ops channel. Platform events and IPC requests
// arrive from other goroutines and block until their op completes.
type Manager struct {
	platform Platform
	store    *layoutstore.Store
	opts     Options
	logger   *slog.Logger

	ops  chan func()
	done chan struct{}

	// Owned by the Run goroutine.
	tree    *tiling.ContainerTree
	started time.Time
}

// NewManager wires a manager; call Run to start it.
func NewManager(platform Platform, store *layoutstore.Store, opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		platform: platform,
		store:    store,
		opts:     opts,
		logger:   opts.Logger,
		ops:      make(chan func()),
		done:     make(chan struct{}),
	}
}

// Run builds the initial tree and processes operations until ctx is
// cancelled. Blocks.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)

	if err := m.buildInitialTree(); err != nil {
		return err
	}
	m.started = time.Now()
	if err := m.tree.Flush(); err != nil {
		m.logger.Warn("initial flush", "error", err)
	}

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()
	m.logger.Info("manager started",
		"windows", m.tree.Len(), "poll", m.opts.PollInterval)

	for {
		select {
		case <-ctx.Done():
			m.autosave()
			m.logger.Info("manager stopped")
			return nil
		case op := <-m.ops:
			op()
		case <-ticker.C:
			m.reconcile()
		}
	}
}

// buildInitialTree restores the autosaved layout when one exists, otherwise
// lays the current windows out fresh.
func (m *Manager) buildInitialTree() error {
	area, err := m.platform.WorkArea()
	if err != nil {
		return fmt.Errorf("query work area: %w", err)
	}
	handles, err := m.platform.ListWindows()
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}

	if m.opts.AutosavePath != "" {
		snap, err := layoutstore.LoadFile(m.opts.AutosavePath)
		if err != nil {
			m.logger.Warn("autosave unreadable, starting fresh", "error", err)
		} else if snap != nil {
			if tree := tiling.DeserializeTree(snap.Tree, area, handles, m.opts.Tiling); tree != nil {
				m.tree = tree
				m.logger.Info("restored autosaved layout", "windows", tree.Len())
				return nil
			}
			m.logger.Info("autosave had no surviving windows, starting fresh")
		}
	}

	m.tree = tiling.NewContainerTree(area, handles, m.opts.Tiling)
	return nil
}

// do runs fn on the manager goroutine and waits for it.
func (m *Manager) do(fn func()) error {
	completed := make(chan struct{})
	op := func() {
		defer close(completed)
		fn()
	}
	select {
	case m.ops <- op:
		<-completed
		return nil
	case <-m.done:
		return ErrStopped
	}
}

// reconcile diffs the tree against the live window set and the work area,
// absorbing drift the event stream missed.
func (m *Manager) reconcile() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("reconcile panic recovered", "error", r)
		}
	}()

	handles, err := m.platform.ListWindows()
	if err != nil {
		m.logger.Error("reconcile: list windows", "error", err)
		return
	}

	live := make(map[tiling.WindowID]tiling.WindowHandle, len(handles))
	for _, h := range handles {
		live[h.ID()] = h
	}

	changed := false
	for _, w := range m.tree.Windows() {
		if _, ok := live[w.ID()]; ok {
			continue
		}
		m.logger.Info("window vanished, removing", "window", w.ID())
		if err := m.tree.RemoveWindow(w.ID()); err != nil {
			m.logger.Warn("remove vanished window", "window", w.ID(), "error", err)
		}
		changed = true
	}
	for id, h := range live {
		if m.tree.Window(id) == nil {
			m.logger.Info("window appeared, appending", "window", id)
			m.tree.AddWindow(h)
			changed = true
		}
	}

	if area, err := m.platform.WorkArea(); err == nil && area != m.tree.Bounds() {
		m.logger.Info("work area changed", "area", area)
		m.tree.SetBounds(area)
		changed = true
	}

	if changed {
		m.flushAndSave()
	}
}

func (m *Manager) flushAndSave() {
	if err := m.tree.Flush(); err != nil {
		m.logger.Warn("flush", "error", err)
	}
	m.autosave()
}

func (m *Manager) autosave() {
	if m.opts.AutosavePath == "" || m.tree == nil || m.tree.Empty() {
		return
	}
	if err := layoutstore.SaveFile(m.opts.AutosavePath, m.tree.Serialize(), m.tree.Len()); err != nil {
		m.logger.Warn("autosave", "error", err)
	}
}

// Reconcile forces an immediate reconciliation pass.
func (m *Manager) Reconcile() error {
	return m.do(m.reconcile)
}

// WindowMapped is the event entry point for a newly mapped window.
func (m *Manager) WindowMapped(id tiling.WindowID) {
	err := m.do(func() {
		if m.tree.Window(id) != nil {
			return
		}
		h, err := m.platform.Window(id)
		if err != nil {
			m.logger.Debug("mapped window not tileable", "window", id, "error", err)
			return
		}
		m.tree.AddWindow(h)
		m.flushAndSave()
	})
	if err != nil {
		m.logger.Debug("mapped event after stop", "window", id)
	}
}

// WindowDestroyed is the event entry point for a destroyed window. Unknown
// windows are ignored; the destroy may race the reconciler.
func (m *Manager) WindowDestroyed(id tiling.WindowID) {
	err := m.do(func() {
		if err := m.tree.RemoveWindow(id); err != nil {
			if !errors.Is(err, tiling.ErrWindowNotFound) {
				m.logger.Warn("remove window", "window", id, "error", err)
			}
			return
		}
		m.flushAndSave()
	})
	if err != nil {
		m.logger.Debug("destroy event after stop", "window", id)
	}
}

// Status is a point-in-time summary for the status command.
type Status struct {
	Windows    int           `json:"windows"`
	Containers int           `json:"containers"`
	WorkArea   string        `json:"work_area"`
	Uptime     time.Duration `json:"uptime"`
}

// Status reports the manager's current state.
func (m *Manager) Status() (Status, error) {
	var st Status
	err := m.do(func() {
		st.Windows = m.tree.Len()
		m.tree.Walk(func(n tiling.Node, _ int) {
			if _, ok := n.(*tiling.Container); ok {
				st.Containers++
			}
		})
		st.WorkArea = m.tree.Bounds().String()
		st.Uptime = time.Since(m.started)
	})
	return st, err
}

// DebugLayout returns the tree dump.
func (m *Manager) DebugLayout() (string, error) {
	var out string
	err := m.do(func() {
		out = m.tree.DebugLayout()
	})
	return out, err
}

// Snapshot serializes the live tree.
func (m *Manager) Snapshot() (*tiling.SerializedNode, error) {
	var snap *tiling.SerializedNode
	err := m.do(func() {
		snap = m.tree.Serialize()
	})
	return snap, err
}

// SaveLayout persists the live tree under a name.
func (m *Manager) SaveLayout(name string) error {
	var saveErr error
	if err := m.do(func() {
		saveErr = m.store.Save(name, m.tree.Serialize(), m.tree.Len())
	}); err != nil {
		return err
	}
	return saveErr
}

// LoadLayout replaces the live tree with a stored snapshot, reconciled
// against the windows that exist now.
func (m *Manager) LoadLayout(name string) error {
	snap, err := m.store.Load(name)
	if err != nil {
		return err
	}
	var loadErr error
	if err := m.do(func() {
		handles, err := m.platform.ListWindows()
		if err != nil {
			loadErr = fmt.Errorf("list windows: %w", err)
			return
		}
		tree := tiling.DeserializeTree(snap.Tree, m.tree.Bounds(), handles, m.opts.Tiling)
		if tree == nil {
			loadErr = fmt.Errorf("layout %q: no window from the snapshot is open", name)
			return
		}
		m.tree = tree
		m.flushAndSave()
	}); err != nil {
		return err
	}
	return loadErr
}

// ListLayouts returns the stored layout names.
func (m *Manager) ListLayouts() ([]string, error) {
	return m.store.List()
}

// DeleteLayout removes a stored layout.
func (m *Manager) DeleteLayout(name string) error {
	return m.store.Delete(name)
}

// Equalize resets every container's ratios to equal shares.
func (m *Manager) Equalize() error {
	return m.do(func() {
		m.tree.Equalize()
		m.flushAndSave()
	})
}

// Preview returns the drop ghost rectangle for dragging a window to a point.
func (m *Manager) Preview(dragged tiling.WindowID, p geometry.Point) (geometry.Bounds, bool, error) {
	var (
		b  geometry.Bounds
		ok bool
	)
	err := m.do(func() {
		b, ok = m.tree.GetPreviewBounds(dragged, p)
	})
	return b, ok, err
}

// Insert drops a window at a position, deriving and applying the implied
// tile action.
func (m *Manager) Insert(id tiling.WindowID, p geometry.Point) (*tiling.InsertResult, error) {
	var (
		res       *tiling.InsertResult
		insertErr error
	)
	if err := m.do(func() {
		var handle tiling.WindowHandle
		if w := m.tree.Window(id); w != nil {
			handle = w.Handle()
		} else {
			h, err := m.platform.Window(id)
			if err != nil {
				insertErr = fmt.Errorf("window %d: %w", id, tiling.ErrWindowNotFound)
				return
			}
			handle = h
		}
		res, insertErr = m.tree.InsertWindow(handle, p)
		if insertErr == nil {
			m.flushAndSave()
		}
	}); err != nil {
		return nil, err
	}
	return res, insertErr
}

// Resize grows or shrinks a window on the edges dir selects.
func (m *Manager) Resize(id tiling.WindowID, dir tiling.ResizeDirection, dx, dy int) error {
	var resizeErr error
	if err := m.do(func() {
		resizeErr = m.tree.ResizeWindow(id, dir, dx, dy)
		if resizeErr == nil {
			m.flushAndSave()
		}
	}); err != nil {
		return err
	}
	return resizeErr
}
