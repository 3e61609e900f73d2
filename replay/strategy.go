package replay

import (
	"context"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/viewtree"
)

// positional extracts the (x, y[, dx, dy]) fields common to tap and swipe
// events so the strategies don't need a type switch of their own for every
// geometric operation.
type positional struct {
	x, y   int
	dx, dy int
	isTap  bool
	isKey  bool
	k      string
}

func extractPositional(e event.Event) positional {
	switch ev := e.(type) {
	case *event.TapEvent:
		return positional{x: ev.X, y: ev.Y, isTap: true}
	case *event.SwipeEvent:
		return positional{x: ev.X, y: ev.Y, dx: ev.DX, dy: ev.DY}
	case *event.KeyEvent:
		return positional{isKey: true, k: ev.K}
	}
	return positional{}
}

// viewInputKindOf maps an event's Kind to the ViewInputKind the device
// interface's View/Select calls expect.
func viewInputKindOf(k event.Kind) device.ViewInputKind {
	switch k {
	case event.Tap:
		return device.ViewTap
	case event.LongTap:
		return device.ViewLongTap
	case event.DoubleTap:
		return device.ViewDoubleTap
	case event.Swipe:
		return device.ViewSwipe
	}
	return device.ViewTap
}

// findRecordedView locates the innermost visible view at (x, y) on the
// event's recorded activity tree — the view Wdg and Res build their
// selectors from.
func findRecordedView(e event.Event, x, y int) *viewtree.View {
	act := e.Activity()
	if act == nil || act.Decor == nil {
		return nil
	}
	return act.Decor.FindViewByXY(x, y, true, false)
}

// buildSelector renders the contains-ignore-case predicate set §4.G
// specifies: resEntry, text, and desc, whichever are non-empty on v. The
// selector also carries v's class name.
func buildSelector(v *viewtree.View) device.ViewSelector {
	if v == nil {
		return device.ViewSelector{}
	}
	return device.ViewSelector{
		Class:         v.Class,
		ResIDContains: v.ResEntry,
		TextContains:  v.Text,
		DescContains:  v.Desc,
	}
}

// clampSwipeDelta clamps dx, dy so that (cx+dx, cy+dy) stays within the
// replay device's bounds, per Wdg's swipe clamping rule.
func clampSwipeDelta(cx, cy, dx, dy int, rdev device.Info) (int, int) {
	tx, ty := cx+dx, cy+dy
	if tx < 0 {
		dx = -cx
	} else if tx >= rdev.Width {
		dx = rdev.Width - 1 - cx
	}
	if ty < 0 {
		dy = -cy
	} else if ty >= rdev.Height {
		dy = rdev.Height - 1 - cy
	}
	return dx, dy
}

// dispatchKey fires a key event; shared by every strategy since keys are
// never scaled, selector-matched, or clamped.
func dispatchKey(ctx context.Context, in device.Input, p positional) error {
	return in.Key(ctx, p.k)
}
