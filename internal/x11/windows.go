package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// ListWindows returns a handle for every tileable client on the current
// desktop, in EWMH client-list order.
func (c *Connection) ListWindows() ([]*Handle, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("get client list: %w", err)
	}
	desktop, _ := ewmh.CurrentDesktopGet(c.XUtil)

	var handles []*Handle
	for _, win := range clients {
		if !c.isTileable(win) {
			continue
		}
		if d, err := ewmh.WmDesktopGet(c.XUtil, win); err == nil {
			// 0xFFFFFFFF marks a sticky window, present on every desktop.
			if d != 0xFFFFFFFF && d != desktop {
				continue
			}
		}
		b, err := c.WindowGeometry(win)
		if err != nil {
			continue
		}
		handles = append(handles, NewHandle(c, win, b))
	}
	return handles, nil
}

// WindowGeometry returns a window's frame geometry in root coordinates.
func (c *Connection) WindowGeometry(win xproto.Window) (geometry.Bounds, error) {
	g, err := xwindow.New(c.XUtil, win).DecorGeometry()
	if err != nil {
		return geometry.Bounds{}, fmt.Errorf("window %d geometry: %w", win, err)
	}
	return geometry.NewBounds(g.X(), g.Y(), g.Width(), g.Height()), nil
}

// isTileable reports whether a window is a normal application window rather
// than a dock, splash, or other decoration the layout must leave alone.
func (c *Connection) isTileable(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil || len(types) == 0 {
		// Windows without a type hint are treated as normal.
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return false
}

// ActiveWindow returns the currently focused window.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
