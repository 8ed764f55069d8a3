package tiling

import "github.com/1broseidon/tiletree/internal/geometry"

// WindowID identifies a platform window. On X11 this is the xproto window id.
type WindowID uint32

// WindowHandle is the capability set the tree needs from a platform window.
// SetBounds only records the desired geometry and marks the handle dirty;
// Flush commits it to the OS.
type WindowHandle interface {
	ID() WindowID
	Bounds() geometry.Bounds
	SetBounds(geometry.Bounds)
	Dirty() bool
	Flush() error
}

// Node is a member of a container tree: either a *Container or a *Window.
type Node interface {
	Bounds() geometry.Bounds
	Parent() *Container

	setBounds(geometry.Bounds)
	setParent(*Container)
}

// Window is a leaf node wrapping one managed platform window. Identity is
// pointer identity: two leaves wrapping the same handle are still distinct
// tree positions.
type Window struct {
	parent *Container
	handle WindowHandle
}

// NewWindow wraps a platform window handle in a detached leaf.
func NewWindow(handle WindowHandle) *Window {
	return &Window{handle: handle}
}

// ID returns the platform window id.
func (w *Window) ID() WindowID {
	return w.handle.ID()
}

// Bounds returns the last geometry pushed to the handle.
func (w *Window) Bounds() geometry.Bounds {
	return w.handle.Bounds()
}

// Parent returns the owning container, or nil for a detached leaf.
func (w *Window) Parent() *Container {
	return w.parent
}

// Handle returns the wrapped platform window.
func (w *Window) Handle() WindowHandle {
	return w.handle
}

func (w *Window) setBounds(b geometry.Bounds) {
	w.handle.SetBounds(b)
}

func (w *Window) setParent(p *Container) {
	w.parent = p
}
