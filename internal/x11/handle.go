package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tiletree/internal/geometry"
	"github.com/1broseidon/tiletree/internal/tiling"
)

// Handle wraps one X11 client window behind the capability set the layout
// tree works against. SetBounds only records the desired geometry; Flush
// pushes it to the server, so a layout pass issues one request per window
// that actually moved.
type Handle struct {
	conn   *Connection
	id     xproto.Window
	bounds geometry.Bounds
	dirty  bool
}

// NewHandle wraps an X window with its current geometry.
func NewHandle(conn *Connection, id xproto.Window, bounds geometry.Bounds) *Handle {
	return &Handle{conn: conn, id: id, bounds: bounds}
}

// ID returns the X window id.
func (h *Handle) ID() tiling.WindowID {
	return tiling.WindowID(h.id)
}

// Bounds returns the last committed or pending geometry.
func (h *Handle) Bounds() geometry.Bounds {
	return h.bounds
}

// SetBounds records the desired geometry and marks the handle dirty.
func (h *Handle) SetBounds(b geometry.Bounds) {
	if b == h.bounds {
		return
	}
	h.bounds = b
	h.dirty = true
}

// Dirty reports whether a SetBounds is waiting to be flushed.
func (h *Handle) Dirty() bool {
	return h.dirty
}

// Flush commits the pending geometry to the X server. Maximized windows are
// restored first or the move request would be ignored by most WMs.
func (h *Handle) Flush() error {
	if !h.dirty {
		return nil
	}
	// A window without _NET_WM_STATE support still moves fine.
	_ = h.unmaximize()

	b := h.bounds
	err := ewmh.MoveresizeWindow(h.conn.XUtil, h.id, b.X, b.Y, b.Width, b.Height)
	if err != nil {
		// Fall back to direct configuration for WMs without EWMH moveresize.
		xwindow.New(h.conn.XUtil, h.id).MoveResize(b.X, b.Y, b.Width, b.Height)
	}
	h.dirty = false
	return nil
}

// unmaximize removes maximized state so geometry requests take effect.
func (h *Handle) unmaximize() error {
	states, err := ewmh.WmStateGet(h.conn.XUtil, h.id)
	if err != nil {
		return fmt.Errorf("get window state: %w", err)
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(h.conn.XUtil, h.id, 0, state); err != nil {
				return fmt.Errorf("clear %s: %w", state, err)
			}
		}
	}
	return nil
}
