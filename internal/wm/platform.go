package wm

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/tiletree/internal/geometry"
	"github.com/1broseidon/tiletree/internal/tiling"
	"github.com/1broseidon/tiletree/internal/x11"
)

// Platform is what the manager needs from the windowing system. The X11
// implementation is the only real one; tests substitute a fake.
type Platform interface {
	// WorkArea returns the tileable screen region.
	WorkArea() (geometry.Bounds, error)
	// ListWindows enumerates the currently tileable windows.
	ListWindows() ([]tiling.WindowHandle, error)
	// Window returns a handle for one window, or an error if it is gone or
	// not tileable.
	Window(id tiling.WindowID) (tiling.WindowHandle, error)
	// Pointer returns the cursor position in root coordinates.
	Pointer() (geometry.Point, error)
}

// X11Platform adapts an X connection to the Platform interface.
type X11Platform struct {
	Conn *x11.Connection
}

func (p *X11Platform) WorkArea() (geometry.Bounds, error) {
	return p.Conn.WorkArea()
}

func (p *X11Platform) ListWindows() ([]tiling.WindowHandle, error) {
	handles, err := p.Conn.ListWindows()
	if err != nil {
		return nil, err
	}
	out := make([]tiling.WindowHandle, len(handles))
	for i, h := range handles {
		out[i] = h
	}
	return out, nil
}

func (p *X11Platform) Window(id tiling.WindowID) (tiling.WindowHandle, error) {
	b, err := p.Conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return nil, fmt.Errorf("window %d: %w", id, err)
	}
	return x11.NewHandle(p.Conn, xproto.Window(id), b), nil
}

func (p *X11Platform) Pointer() (geometry.Point, error) {
	return p.Conn.Pointer()
}
