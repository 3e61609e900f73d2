package trace_test

import (
	"testing"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/trace"
)

// recordingSink collects whatever the parser hands it, standing in for a
// dxpk.Packer in tests that don't need packing/dedup behavior.
type recordingSink struct {
	events []event.Event
}

func (s *recordingSink) Append(e event.Event) error {
	s.events = append(s.events, e)
	return nil
}

func testDevice() device.Info {
	return device.Info{
		Brand: "b", Model: "m", ABI: "arm64-v8a", Board: "brd",
		Width: 200, Height: 200, DPI: 160, SDKLevel: 30, ReleaseVersion: "11",
	}
}

func feedAll(t *testing.T, p *trace.Parser, lines []string) {
	t.Helper()
	for i, l := range lines {
		if err := p.Feed(l); err != nil {
			t.Fatalf("Feed(%d, %q): %v", i, l, err)
		}
	}
}

// TestDepthTransitions exercises S3: sibling, child and climb-then-sibling
// transitions, verifying both tree shape and absolute geometry composition.
func TestDepthTransitions(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := trace.NewParser(testDevice(), sink, nil)

	lines := []string{
		`com.x ACTIVITY_BEGIN .Main`,
		`DecorView{0 V........ ........ 0,0-200,200 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		` Root{a1 V........ ........ 0,0-100,100 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		`  A{a2 V........ ........ 10,10-90,90 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		`   B{a3 V........ ........ 10,10-30,30 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		`  C{a4 V........ ........ 10,40-80,70 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		`com.x ACTIVITY_END .Main`,
		`com.x TAP 1000 25 25`,
	}
	feedAll(t, p, lines)

	if len(sink.events) != 1 {
		t.Fatalf("got %d events, want 1", len(sink.events))
	}
	tap, ok := sink.events[0].(*event.TapEvent)
	if !ok {
		t.Fatalf("event type = %T, want *event.TapEvent", sink.events[0])
	}
	if tap.X != 25 || tap.Y != 25 || tap.T != 1000 {
		t.Fatalf("tap = %+v, want x=25 y=25 t=1000", tap)
	}
	if tap.Activity().Name != ".Main" {
		t.Fatalf("activity name = %q, want .Main", tap.Activity().Name)
	}

	decor := tap.Activity().Decor
	if len(decor.Children) != 1 {
		t.Fatalf("decor has %d children, want 1 (Root)", len(decor.Children))
	}
	root := decor.Children[0]
	if root.Class != "Root" {
		t.Fatalf("root class = %q, want Root", root.Class)
	}
	if root.Left != 0 || root.Top != 0 || root.Right != 100 || root.Bottom != 100 {
		t.Fatalf("root rect = (%d,%d,%d,%d), want (0,0,100,100)", root.Left, root.Top, root.Right, root.Bottom)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2 (A, C)", len(root.Children))
	}

	a, c := root.Children[0], root.Children[1]
	if a.Class != "A" || c.Class != "C" {
		t.Fatalf("root children = [%s, %s], want [A, C]", a.Class, c.Class)
	}
	if a.Left != 10 || a.Top != 10 || a.Right != 90 || a.Bottom != 90 {
		t.Fatalf("A rect = (%d,%d,%d,%d), want (10,10,90,90)", a.Left, a.Top, a.Right, a.Bottom)
	}
	if c.Left != 10 || c.Top != 40 || c.Right != 80 || c.Bottom != 70 {
		t.Fatalf("C rect = (%d,%d,%d,%d), want (10,40,80,70)", c.Left, c.Top, c.Right, c.Bottom)
	}
	if c.Parent != root {
		t.Fatal("C's parent is not Root (expected sibling of A via Δ=-1 climb)")
	}

	if len(a.Children) != 1 {
		t.Fatalf("A has %d children, want 1 (B)", len(a.Children))
	}
	b := a.Children[0]
	if b.Class != "B" {
		t.Fatalf("A's child class = %q, want B", b.Class)
	}
	if b.Left != 20 || b.Top != 20 || b.Right != 40 || b.Bottom != 40 {
		t.Fatalf("B rect = (%d,%d,%d,%d), want (20,20,40,40)", b.Left, b.Top, b.Right, b.Bottom)
	}
}

func TestDepthJumpGreaterThanOneIsFatal(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := trace.NewParser(testDevice(), sink, nil)

	lines := []string{
		`com.x ACTIVITY_BEGIN .Main`,
		`DecorView{0 V........ ........ 0,0-200,200 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
	}
	feedAll(t, p, lines)

	// Jumping straight to depth 2 with nothing at depth 1 is a +2 jump.
	err := p.Feed(`  A{a2 V........ ........ 10,10-90,90 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`)
	if err == nil {
		t.Fatal("expected an error on a depth jump > 1, got nil")
	}
}

func TestActivityEndMismatchIsFatal(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := trace.NewParser(testDevice(), sink, nil)

	lines := []string{
		`com.x ACTIVITY_BEGIN .Main`,
		`DecorView{0 V........ ........ 0,0-200,200 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
	}
	feedAll(t, p, lines)

	if err := p.Feed(`com.x ACTIVITY_END .Other`); err == nil {
		t.Fatal("expected an error on mismatched ACTIVITY_END, got nil")
	}
}

func TestCrashLineIsFatal(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := trace.NewParser(testDevice(), sink, nil)

	if err := p.Feed(`--------- beginning of crash`); err == nil {
		t.Fatal("expected an error on a crash log-buffer line, got nil")
	}
}

func TestOtherBeginningLineIsIgnored(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := trace.NewParser(testDevice(), sink, nil)

	if err := p.Feed(`--------- beginning of main`); err != nil {
		t.Fatalf("expected beginning-of-main to be ignored, got %v", err)
	}
	// Parser should still be awaiting an activity afterward.
	if err := p.Feed(`com.x ACTIVITY_BEGIN .Main`); err != nil {
		t.Fatalf("Feed ACTIVITY_BEGIN after ignored line: %v", err)
	}
}

func TestSwipeAndKeyEvents(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := trace.NewParser(testDevice(), sink, nil)

	lines := []string{
		`com.x ACTIVITY_BEGIN .Main`,
		`DecorView{0 V........ ........ 0,0-200,200 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		`com.x ACTIVITY_END .Main`,
		`com.x SWIPE 1000 10 20 30 40 1200`,
	}
	feedAll(t, p, lines)

	lines2 := []string{
		`com.x ACTIVITY_BEGIN .Main`,
		`DecorView{0 V........ ........ 0,0-200,200 dx-tx=0 dx-ty=0 dx-tz=0 dx-sx=0 dx-sy=0 dx-desc="" dx-text=""}`,
		`com.x ACTIVITY_END .Main`,
		`com.x KEY 1500 4 BACK`,
	}
	feedAll(t, p, lines2)

	if len(sink.events) != 2 {
		t.Fatalf("got %d events, want 2", len(sink.events))
	}

	sw, ok := sink.events[0].(*event.SwipeEvent)
	if !ok {
		t.Fatalf("event 0 type = %T, want *event.SwipeEvent", sink.events[0])
	}
	if sw.X != 10 || sw.Y != 20 || sw.DX != 30 || sw.DY != 40 || sw.T0 != 1000 || sw.T1 != 1200 {
		t.Fatalf("swipe = %+v, want x=10 y=20 dx=30 dy=40 t0=1000 t1=1200", sw)
	}

	key, ok := sink.events[1].(*event.KeyEvent)
	if !ok {
		t.Fatalf("event 1 type = %T, want *event.KeyEvent", sink.events[1])
	}
	if key.K != "BACK" || key.C != 4 || key.T != 1500 {
		t.Fatalf("key = %+v, want k=BACK c=4 t=1500", key)
	}
}
