package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EventKind is a window lifecycle notification relevant to tiling.
type EventKind int

const (
	WindowMapped EventKind = iota
	WindowUnmapped
	WindowDestroyed
)

func (k EventKind) String() string {
	switch k {
	case WindowMapped:
		return "mapped"
	case WindowUnmapped:
		return "unmapped"
	case WindowDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one decoded window lifecycle notification.
type Event struct {
	Kind   EventKind
	Window xproto.Window
}

// Watch subscribes to child-window lifecycle events on the root window and
// invokes fn for each, from the event loop goroutine. Call before EventLoop.
func (c *Connection) Watch(fn func(Event)) error {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskSubstructureNotify); err != nil {
		return fmt.Errorf("listen on root window: %w", err)
	}

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		fn(Event{Kind: WindowMapped, Window: ev.Window})
	}).Connect(c.XUtil, c.Root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		fn(Event{Kind: WindowUnmapped, Window: ev.Window})
	}).Connect(c.XUtil, c.Root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		fn(Event{Kind: WindowDestroyed, Window: ev.Window})
	}).Connect(c.XUtil, c.Root)

	return nil
}
