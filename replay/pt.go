package replay

import (
	"context"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/event"
)

// Pt scales recorded coordinates by the recording/replay device extent
// ratio before dispatching: x' = x * replay.w/recorded.w, analogously for y.
// Keys are never scaled.
type Pt struct {
	Input    device.Input
	Recorded device.Info
	Replay   device.Info
}

func NewPt(in device.Input, recorded, replay device.Info) *Pt {
	return &Pt{Input: in, Recorded: recorded, Replay: replay}
}

func (p *Pt) Name() string { return "pt" }

func (p *Pt) scale(x, y int) (int, int) {
	sx := float64(x) * float64(p.Replay.Width) / float64(p.Recorded.Width)
	sy := float64(y) * float64(p.Replay.Height) / float64(p.Recorded.Height)
	return int(sx), int(sy)
}

func (p *Pt) Dispatch(ctx context.Context, _ *event.Sequence, e event.Event) error {
	pos := extractPositional(e)
	if pos.isKey {
		return dispatchKey(ctx, p.Input, pos)
	}

	x, y := p.scale(pos.x, pos.y)
	if e.Kind() == event.Swipe {
		dx, dy := p.scale(pos.dx, pos.dy)
		return p.Input.Swipe(ctx, x, y, dx, dy)
	}
	return dispatchTap(ctx, p.Input, e.Kind(), x, y)
}
