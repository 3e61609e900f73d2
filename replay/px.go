package replay

import (
	"context"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxerr"
	"github.com/connglli/dxpk/event"
)

// Px replays at the recorded pixel coordinates unmodified, warning once if
// the replay device's extents differ from the recording device's.
type Px struct {
	Input    device.Input
	Recorded device.Info
	Replay   device.Info

	warned bool
}

func NewPx(in device.Input, recorded, replay device.Info) *Px {
	return &Px{Input: in, Recorded: recorded, Replay: replay}
}

func (p *Px) Name() string { return "px" }

func (p *Px) Dispatch(ctx context.Context, _ *event.Sequence, e event.Event) error {
	if !p.warned {
		warnIfDeviceMismatch(p.Recorded, p.Replay)
		p.warned = true
	}

	pos := extractPositional(e)
	switch {
	case pos.isKey:
		return dispatchKey(ctx, p.Input, pos)
	case e.Kind() == event.Swipe:
		return p.Input.Swipe(ctx, pos.x, pos.y, pos.dx, pos.dy)
	default:
		return dispatchTap(ctx, p.Input, e.Kind(), pos.x, pos.y)
	}
}

// dispatchTap routes to the matching Tap/LongTap/DoubleTap input call.
func dispatchTap(ctx context.Context, in device.Input, kind event.Kind, x, y int) error {
	switch kind {
	case event.Tap:
		return in.Tap(ctx, x, y)
	case event.LongTap:
		return in.LongTap(ctx, x, y)
	case event.DoubleTap:
		return in.DoubleTap(ctx, x, y)
	}
	return dxerr.NewCannotReachHereError("replay: px: unknown tap-family kind")
}
