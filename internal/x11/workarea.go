package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/tiletree/internal/geometry"
)

// WorkArea returns the tileable region of the current desktop: the screen
// minus panels and docks, per _NET_WORKAREA. Falls back to the full root
// window geometry when the property is absent.
func (c *Connection) WorkArea() (geometry.Bounds, error) {
	workareas, err := ewmh.WorkareaGet(c.XUtil)
	if err == nil && len(workareas) > 0 {
		idx := 0
		if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workareas) {
			idx = int(desktop)
		}
		wa := workareas[idx]
		if wa.Width > 0 && wa.Height > 0 {
			return geometry.NewBounds(int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height)), nil
		}
	}

	screen := c.XUtil.Screen()
	if screen == nil {
		return geometry.Bounds{}, fmt.Errorf("no work area and no screen geometry")
	}
	return geometry.NewBounds(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels)), nil
}
