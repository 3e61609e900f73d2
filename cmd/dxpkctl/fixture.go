package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/connglli/dxpk/device"
)

// fixture is the JSON shape loaded via -device-file/-driver-file: a
// stand-in for the real device bridge and on-device input helper (out of
// scope per §1), just enough to size a device.Info and, for replay, drive
// every strategy end-to-end against canned View/Select responses.
type fixture struct {
	Device      fixtureDevice     `json:"device"`
	Responses   []fixtureResponse `json:"responses"`
	DefaultCode int               `json:"default_code"`
}

type fixtureDevice struct {
	Board   string `json:"board"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	ABI     string `json:"abi"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	DPI     int    `json:"dpi"`
	SDK     int    `json:"sdk"`
	Release string `json:"release"`
}

func (d fixtureDevice) toInfo() device.Info {
	return device.Info{
		Board:          d.Board,
		Brand:          d.Brand,
		Model:          d.Model,
		ABI:            d.ABI,
		Width:          d.Width,
		Height:         d.Height,
		DPI:            d.DPI,
		SDKLevel:       d.SDK,
		ReleaseVersion: d.Release,
	}
}

// fixtureResponse pairs a match predicate against a ViewSelector with the
// canned result to return when it matches.
type fixtureResponse struct {
	Match      fixtureMatch  `json:"match"`
	ViewCode   int           `json:"view_code"`
	SelectCode int           `json:"select_code"`
	Views      []fixtureView `json:"views"`
}

type fixtureMatch struct {
	ResIDContains string `json:"res_id_contains"`
	TextContains  string `json:"text_contains"`
	DescContains  string `json:"desc_contains"`
}

type fixtureView struct {
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
	Left    int `json:"left"`
	Top     int `json:"top"`
	Right   int `json:"right"`
	Bottom  int `json:"bottom"`
}

func loadFixture(r io.Reader) (*fixture, error) {
	var f fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("dxpkctl: decode driver-file: %w", err)
	}
	return &f, nil
}

// matches reports whether sel satisfies every non-empty predicate in m.
func (m fixtureMatch) matches(sel device.ViewSelector) bool {
	if m.ResIDContains != "" && !strings.Contains(sel.ResIDContains, m.ResIDContains) {
		return false
	}
	if m.TextContains != "" && !strings.Contains(sel.TextContains, m.TextContains) {
		return false
	}
	if m.DescContains != "" && !strings.Contains(sel.DescContains, m.DescContains) {
		return false
	}
	return true
}

// fixtureInput is a device.Input backed by fixture responses: Tap/LongTap/
// DoubleTap/Swipe/Key just record the call and succeed; View/Select walk the response
// list for the first predicate match.
type fixtureInput struct {
	f      *fixture
	taps   []point
	swipes []swipe
	keys   []string
}

type point struct{ X, Y int }
type swipe struct{ X, Y, DX, DY int }

func newFixtureInput(f *fixture) *fixtureInput {
	return &fixtureInput{f: f}
}

func (fi *fixtureInput) Tap(_ context.Context, x, y int) error {
	fi.taps = append(fi.taps, point{x, y})
	return nil
}

func (fi *fixtureInput) LongTap(ctx context.Context, x, y int) error { return fi.Tap(ctx, x, y) }
func (fi *fixtureInput) DoubleTap(ctx context.Context, x, y int) error { return fi.Tap(ctx, x, y) }

func (fi *fixtureInput) Swipe(_ context.Context, x, y, dx, dy int) error {
	fi.swipes = append(fi.swipes, swipe{x, y, dx, dy})
	return nil
}

func (fi *fixtureInput) Key(_ context.Context, k string) error {
	fi.keys = append(fi.keys, k)
	return nil
}

func (fi *fixtureInput) find(opts device.ViewSelector) *fixtureResponse {
	for i := range fi.f.Responses {
		if fi.f.Responses[i].Match.matches(opts) {
			return &fi.f.Responses[i]
		}
	}
	return nil
}

func (fi *fixtureInput) View(_ context.Context, _ device.ViewInputKind, opts device.ViewSelector) (int, error) {
	if r := fi.find(opts); r != nil {
		return r.ViewCode, nil
	}
	return fi.f.DefaultCode, nil
}

func (fi *fixtureInput) Select(_ context.Context, opts device.ViewSelector, n int) ([]device.ViewMap, int, error) {
	r := fi.find(opts)
	if r == nil {
		return nil, fi.f.DefaultCode, nil
	}
	views := make([]device.ViewMap, 0, len(r.Views))
	for i, v := range r.Views {
		if i >= n {
			break
		}
		views = append(views, device.ViewMap{
			CenterX: v.CenterX, CenterY: v.CenterY,
			Left: v.Left, Top: v.Top, Right: v.Right, Bottom: v.Bottom,
		})
	}
	return views, r.SelectCode, nil
}

var _ device.Input = (*fixtureInput)(nil)
