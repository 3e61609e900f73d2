package replay

import (
	"context"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxerr"
	"github.com/connglli/dxpk/event"
)

// Wdg replays by locating the recorded view under the event's coordinates
// and dispatching a selector-based input, so the gesture lands on the
// matching live widget even if layout shifted. Swipe additionally clamps
// dx/dy to the replay device's bounds. Keys pass straight through, and a
// positional event whose recorded view can't be found is a fatal logic
// error (§4.G: "If no view is found at (x,y) on the recorded tree, that is
// a fatal logic error").
type Wdg struct {
	Input  device.Input
	Replay device.Info
}

func NewWdg(in device.Input, replay device.Info) *Wdg {
	return &Wdg{Input: in, Replay: replay}
}

func (w *Wdg) Name() string { return "wdg" }

func (w *Wdg) Dispatch(ctx context.Context, _ *event.Sequence, e event.Event) error {
	pos := extractPositional(e)
	if pos.isKey {
		return dispatchKey(ctx, w.Input, pos)
	}

	v := findRecordedView(e, pos.x, pos.y)
	if v == nil {
		return dxerr.NewIllegalStateError("wdg: no recorded view at the event's coordinates")
	}
	sel := buildSelector(v)

	if e.Kind() == event.Swipe {
		cx, cy := (v.Left+v.Right)/2, (v.Top+v.Bottom)/2
		dx, dy := clampSwipeDelta(cx, cy, pos.dx, pos.dy, w.Replay)
		sel.DX, sel.DY = dx, dy
		return device.RetryView(ctx, w.Input, device.ViewSwipe, sel)
	}

	return device.RetryView(ctx, w.Input, viewInputKindOf(e.Kind()), sel)
}
