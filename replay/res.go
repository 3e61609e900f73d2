package replay

import (
	"context"
	"log"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxerr"
	"github.com/connglli/dxpk/event"
)

// Res replays responsively: it asks the device to enumerate live widgets
// matching the recorded view's selector and fires on the first match's
// center. If the recorded view for the current event has vanished, it peeks
// up to K subsequent events and fires on the first one that still matches,
// discarding the skipped prefix and logging the skip (§8 S5).
type Res struct {
	Input  device.Input
	Replay device.Info
	K      int
}

func NewRes(in device.Input, replay device.Info, k int) *Res {
	return &Res{Input: in, Replay: replay, K: k}
}

func (r *Res) Name() string { return "res" }

func (r *Res) Dispatch(ctx context.Context, seq *event.Sequence, e event.Event) error {
	pos := extractPositional(e)
	if pos.isKey {
		return dispatchKey(ctx, r.Input, pos)
	}
	if e.Kind() == event.Swipe {
		return dxerr.NewNotImplementedError("res: swipe replay")
	}

	err := r.tryMatch(ctx, e, pos)
	if err == nil {
		return nil
	}
	if _, notFound := err.(*dxerr.NoSuchViewError); !notFound {
		return err
	}

	lookahead := seq.TopN(r.K)
	for i, cand := range lookahead {
		cpos := extractPositional(cand)
		if cpos.isKey || cand.Kind() == event.Swipe {
			continue
		}
		if lerr := r.tryMatch(ctx, cand, cpos); lerr == nil {
			seq.PopN(i + 1)
			log.Printf("res: skipped %d event(s), matched on lookahead: %s", i+1, cand.String())
			return nil
		}
	}

	return dxerr.NewNotImplementedError("res: UI segmentation -> segment matching -> synthesis fallback")
}

// noUsableSelector marks a recorded view with no usable identifiers
// (resEntry, text, desc all empty) — distinct from a plain "not found on
// device" miss, per §4.G's selector-validity rule.
type noUsableSelector struct{ where string }

func (e *noUsableSelector) Error() string { return "res: no usable identifiers: " + e.where }

// tryMatch builds a selector from cand's recorded view and asks the device
// to enumerate one matching widget, firing on its center on success.
func (r *Res) tryMatch(ctx context.Context, cand event.Event, pos positional) error {
	v := findRecordedView(cand, pos.x, pos.y)
	sel := buildSelector(v)
	if !sel.Usable() {
		return &noUsableSelector{where: cand.String()}
	}

	views, err := device.RetrySelect(ctx, r.Input, sel, 1)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return dxerr.NewNoSuchViewError("res: no live match for " + cand.String())
	}

	hit := views[0]
	return dispatchTap(ctx, r.Input, cand.Kind(), hit.CenterX, hit.CenterY)
}
