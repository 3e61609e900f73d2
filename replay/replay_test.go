package replay_test

import (
	"context"
	"strings"
	"testing"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/replay"
	"github.com/connglli/dxpk/viewtree"
)

// fakeInput is a scriptable device.Input for exercising the strategies
// without a real device bridge. lastX/lastY record the last Tap dispatched;
// selectFunc/viewFunc let each test script View/Select behavior.
type fakeInput struct {
	lastX, lastY int
	selectFunc   func(opts device.ViewSelector) (views []device.ViewMap, code int)
	viewFunc     func(kind device.ViewInputKind, opts device.ViewSelector) int
}

func (f *fakeInput) Tap(_ context.Context, x, y int) error {
	f.lastX, f.lastY = x, y
	return nil
}
func (f *fakeInput) LongTap(_ context.Context, x, y int) error {
	f.lastX, f.lastY = x, y
	return nil
}
func (f *fakeInput) DoubleTap(_ context.Context, x, y int) error {
	f.lastX, f.lastY = x, y
	return nil
}
func (f *fakeInput) Swipe(context.Context, int, int, int, int) error { return nil }
func (f *fakeInput) Key(context.Context, string) error               { return nil }

func (f *fakeInput) View(_ context.Context, kind device.ViewInputKind, opts device.ViewSelector) (int, error) {
	if f.viewFunc != nil {
		return f.viewFunc(kind, opts), nil
	}
	return 0, nil
}

func (f *fakeInput) Select(_ context.Context, opts device.ViewSelector, n int) ([]device.ViewMap, int, error) {
	views, code := f.selectFunc(opts)
	return views, code, nil
}

func mkActivity(text string) *viewtree.Activity {
	decor := viewtree.NewView(viewtree.Decor)
	decor.Left, decor.Top, decor.Right, decor.Bottom = 0, 0, 200, 200
	decor.Visibility = viewtree.Visible
	decor.Enabled = true

	btn := viewtree.NewView(viewtree.Other)
	btn.Left, btn.Top, btn.Right, btn.Bottom = 10, 10, 50, 30
	btn.Visibility = viewtree.Visible
	btn.Enabled = true
	btn.Clickable = true
	btn.Text = text
	decor.AddChild(btn)

	return &viewtree.Activity{App: "com.x", Name: ".Main", Decor: decor}
}

func TestPtScalesCoordinates(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	recorded := device.Info{Width: 100, Height: 100}
	replayDev := device.Info{Width: 200, Height: 400}
	strat := replay.NewPt(in, recorded, replayDev)

	act := mkActivity("")
	e := event.NewTap(event.Tap, act, 10, 20, 1000)
	seq := event.NewSequence()

	if err := strat.Dispatch(context.Background(), seq, e); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if in.lastX != 20 || in.lastY != 80 {
		t.Fatalf("scaled tap = (%d,%d), want (20,80)", in.lastX, in.lastY)
	}
}

func TestPxPassesCoordinatesThrough(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	dev := device.Info{Width: 100, Height: 100}
	strat := replay.NewPx(in, dev, dev)

	act := mkActivity("")
	e := event.NewTap(event.Tap, act, 10, 20, 1000)
	seq := event.NewSequence()

	if err := strat.Dispatch(context.Background(), seq, e); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if in.lastX != 10 || in.lastY != 20 {
		t.Fatalf("tap = (%d,%d), want (10,20) unmodified", in.lastX, in.lastY)
	}
}

func TestWdgFailsWhenNoRecordedViewAtPoint(t *testing.T) {
	t.Parallel()
	in := &fakeInput{viewFunc: func(device.ViewInputKind, device.ViewSelector) int { return 0 }}
	strat := replay.NewWdg(in, device.Info{Width: 200, Height: 200})

	act := mkActivity("LOGIN")
	// (500, 500) is outside the decor's own bounds (0,0)-(200,200), so not
	// even the decor itself is found there.
	e := event.NewTap(event.Tap, act, 500, 500, 1000)
	seq := event.NewSequence()

	if err := strat.Dispatch(context.Background(), seq, e); err == nil {
		t.Fatal("expected a fatal error when no recorded view is at the point")
	}
}

func TestWdgDispatchesOnMatchedView(t *testing.T) {
	t.Parallel()
	var gotSelector device.ViewSelector
	in := &fakeInput{viewFunc: func(kind device.ViewInputKind, opts device.ViewSelector) int {
		gotSelector = opts
		return 0
	}}
	strat := replay.NewWdg(in, device.Info{Width: 200, Height: 200})

	act := mkActivity("LOGIN")
	e := event.NewTap(event.Tap, act, 20, 20, 1000)
	seq := event.NewSequence()

	if err := strat.Dispatch(context.Background(), seq, e); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if gotSelector.TextContains != "LOGIN" {
		t.Fatalf("selector text = %q, want LOGIN", gotSelector.TextContains)
	}
}

func TestWdgDispatchesOnVisibleButDisabledRecordedView(t *testing.T) {
	t.Parallel()
	var gotSelector device.ViewSelector
	in := &fakeInput{viewFunc: func(kind device.ViewInputKind, opts device.ViewSelector) int {
		gotSelector = opts
		return 0
	}}
	strat := replay.NewWdg(in, device.Info{Width: 200, Height: 200})

	act := mkActivity("LOGIN")
	act.Decor.Children[0].Enabled = false
	e := event.NewTap(event.Tap, act, 20, 20, 1000)
	seq := event.NewSequence()

	if err := strat.Dispatch(context.Background(), seq, e); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if gotSelector.TextContains != "LOGIN" {
		t.Fatalf("selector text = %q, want LOGIN (disabled should not exclude the recorded view)", gotSelector.TextContains)
	}
}

// TestResKLookaheadSkip is S5: e1 taps "LOGIN" (absent on the replay
// device), e2 taps "SIGN IN" (present). Expect e1 to produce no match, the
// lookahead to find e2 at peek depth 1, the prefix through e2 discarded,
// and dispatch to fire on e2's matched center.
func TestResKLookaheadSkip(t *testing.T) {
	t.Parallel()

	in := &fakeInput{selectFunc: func(opts device.ViewSelector) ([]device.ViewMap, int) {
		if strings.Contains(opts.TextContains, "SIGN IN") {
			return []device.ViewMap{{CenterX: 77, CenterY: 88}}, 0
		}
		return nil, 0 // empty match for LOGIN
	}}
	strat := replay.NewRes(in, device.Info{Width: 200, Height: 200}, 3)

	actLogin := mkActivity("LOGIN")
	actSignIn := mkActivity("SIGN IN")

	e1 := event.NewTap(event.Tap, actLogin, 20, 20, 1000)
	e2 := event.NewTap(event.Tap, actSignIn, 20, 20, 1100)
	e3 := event.NewTap(event.Tap, actSignIn, 20, 20, 1200)

	seq := event.NewSequence(e2, e3)

	if err := strat.Dispatch(context.Background(), seq, e1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if in.lastX != 77 || in.lastY != 88 {
		t.Fatalf("fired at (%d,%d), want (77,88)", in.lastX, in.lastY)
	}
	if seq.Len() != 1 {
		t.Fatalf("sequence len = %d after skip, want 1 (e2 consumed by the match, e3 left untouched)", seq.Len())
	}
}

func TestResNoUsableSelectorFailsWithoutLookahead(t *testing.T) {
	t.Parallel()
	calls := 0
	in := &fakeInput{selectFunc: func(device.ViewSelector) ([]device.ViewMap, int) {
		calls++
		return nil, 0
	}}
	strat := replay.NewRes(in, device.Info{Width: 200, Height: 200}, 3)

	act := mkActivity("") // no text, no desc, no resEntry -> unusable selector
	e := event.NewTap(event.Tap, act, 20, 20, 1000)
	seq := event.NewSequence()

	if err := strat.Dispatch(context.Background(), seq, e); err == nil {
		t.Fatal("expected an unusable-selector error")
	}
	if calls != 0 {
		t.Fatalf("Select called %d times, want 0 (selector was never usable)", calls)
	}
}

// countingStrategy records every event it's asked to dispatch, in order.
type countingStrategy struct {
	dispatched []event.Event
}

func (c *countingStrategy) Name() string { return "counting" }

func (c *countingStrategy) Dispatch(_ context.Context, _ *event.Sequence, e event.Event) error {
	c.dispatched = append(c.dispatched, e)
	return nil
}

func TestSchedulerRunsSequenceInOrderWithoutTimeSensitivity(t *testing.T) {
	t.Parallel()
	act := mkActivity("")
	e1 := event.NewTap(event.Tap, act, 1, 1, 1000)
	e2 := event.NewTap(event.Tap, act, 2, 2, 5000)
	seq := event.NewSequence(e1, e2)

	sched := &replay.Scheduler{TimeSensitive: false}
	strat := &countingStrategy{}

	if err := sched.Run(context.Background(), seq, strat); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(strat.dispatched) != 2 {
		t.Fatalf("dispatched %d events, want 2", len(strat.dispatched))
	}
	if strat.dispatched[0] != e1 || strat.dispatched[1] != e2 {
		t.Fatal("events dispatched out of order")
	}
	if !seq.Empty() {
		t.Fatal("sequence should be fully drained")
	}
}

func TestSchedulerAbortsOnStrategyError(t *testing.T) {
	t.Parallel()
	act := mkActivity("")
	e := event.NewTap(event.Tap, act, 1, 1, 1000)
	seq := event.NewSequence(e)

	sched := &replay.Scheduler{TimeSensitive: false}
	strat := &erroringStrategy{}

	if err := sched.Run(context.Background(), seq, strat); err == nil {
		t.Fatal("expected Run to propagate the strategy's error")
	}
}

type erroringStrategy struct{}

func (erroringStrategy) Name() string { return "erroring" }
func (erroringStrategy) Dispatch(context.Context, *event.Sequence, event.Event) error {
	return errStub
}

var errStub = &stubError{"strategy failed"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }
