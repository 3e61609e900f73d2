package main

import (
	"context"
	"os"
	"testing"

	"github.com/connglli/dxpk/device"
)

func TestLoadFixtureDecodesDevice(t *testing.T) {
	t.Parallel()
	f, err := os.Open("testdata/device.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	fix, err := loadFixture(f)
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	info := fix.Device.toInfo()
	if info.Width != 1080 || info.Height != 2280 || info.DPI != 420 {
		t.Fatalf("device info = %+v, want 1080x2280@420", info)
	}
}

func TestFixtureMatchRequiresEveryNonEmptyPredicate(t *testing.T) {
	t.Parallel()
	m := fixtureMatch{TextContains: "LOGIN", ResIDContains: "btn_login"}

	if m.matches(device.ViewSelector{TextContains: "LOGIN"}) {
		t.Fatal("expected no match: res_id_contains predicate unsatisfied")
	}
	if !m.matches(device.ViewSelector{TextContains: "please LOGIN now", ResIDContains: "com.x:id/btn_login"}) {
		t.Fatal("expected match: both predicates satisfied as substrings")
	}
}

func TestFixtureInputViewFallsBackToDefaultCode(t *testing.T) {
	t.Parallel()
	f, err := os.Open("testdata/driver_wdg.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	fix, err := loadFixture(f)
	if err != nil {
		t.Fatal(err)
	}

	in := newFixtureInput(fix)
	ctx := context.Background()

	code, err := in.View(ctx, device.ViewTap, device.ViewSelector{TextContains: "LOGIN"})
	if err != nil || code != 0 {
		t.Fatalf("View(LOGIN) = (%d, %v), want (0, nil)", code, err)
	}

	code, err = in.View(ctx, device.ViewTap, device.ViewSelector{TextContains: "NOPE"})
	if err != nil || code != 5 {
		t.Fatalf("View(NOPE) = (%d, %v), want (5, nil) from default_code", code, err)
	}
}

func TestFixtureInputSelectReturnsCannedViews(t *testing.T) {
	t.Parallel()
	f, err := os.Open("testdata/driver_res.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	fix, err := loadFixture(f)
	if err != nil {
		t.Fatal(err)
	}

	in := newFixtureInput(fix)
	views, code, err := in.Select(context.Background(), device.ViewSelector{TextContains: "SIGN IN"}, 3)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if code != 0 || len(views) != 1 || views[0].CenterX != 77 || views[0].CenterY != 88 {
		t.Fatalf("Select = (%+v, %d), want one view at (77,88) code 0", views, code)
	}
}

func TestBuildStrategyRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	in := newFixtureInput(&fixture{})
	if _, err := buildStrategy("bogus", in, device.Info{}, device.Info{}, 3); err == nil {
		t.Fatal("expected an error for an unknown driver name")
	}
}

func TestBuildStrategyNamesEachDriver(t *testing.T) {
	t.Parallel()
	in := newFixtureInput(&fixture{})
	dev := device.Info{Width: 100, Height: 100}

	for _, want := range []string{"px", "pt", "wdg", "res"} {
		strat, err := buildStrategy(want, in, dev, dev, 3)
		if err != nil {
			t.Fatalf("buildStrategy(%q): %v", want, err)
		}
		if strat.Name() != want {
			t.Fatalf("strategy name = %q, want %q", strat.Name(), want)
		}
	}
}
