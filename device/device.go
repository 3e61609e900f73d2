// Package device declares the contract the replay strategies and
// scheduler need from the device bridge, the on-device input helper and
// the log-tail subprocess. None of those are implemented here (§1): this
// package is interface-only, plus the small retry helpers the replay
// strategies call.
package device

import "context"

// Info mirrors the recording or replay device's identity and extents.
type Info struct {
	Board          string
	Brand          string
	Model          string
	ABI            string
	Width          int
	Height         int
	DPI            int
	SDKLevel       int
	ReleaseVersion string
}

// Density returns dpi/160, the device pixel density scalar.
func (i Info) Density() float64 {
	return float64(i.DPI) / 160.0
}

// ViewInputKind selects which gesture input.View dispatches.
type ViewInputKind int

const (
	ViewTap ViewInputKind = iota
	ViewLongTap
	ViewDoubleTap
	ViewSwipe
)

// ViewSelector is the set of contains-ignore-case predicates and flag
// constraints issued to the device to find a live widget matching a
// recorded view.
type ViewSelector struct {
	Class           string
	Pkg             string
	ResIDContains   string
	TextContains    string
	DescContains    string
	Clickable       *bool
	LongClickable   *bool
	Scrollable      *bool
	Checkable       *bool
	Checked         *bool
	Focusable       *bool
	Focused         *bool
	Selected        *bool
	DX, DY          int // swipe only
}

// Usable reports whether the selector carries at least one usable
// identifier (resEntry, text or desc contains-predicate).
func (s ViewSelector) Usable() bool {
	return s.ResIDContains != "" || s.TextContains != "" || s.DescContains != ""
}

// ViewMap is one widget returned by Select: its resolved geometric center
// and raw bounds, enough for a strategy to dispatch on.
type ViewMap struct {
	CenterX, CenterY int
	Left, Top, Right, Bottom int
}

// Input is what the core calls to fire synthesized gestures and key events
// against a device, either at fixed pixel coordinates or by live widget
// selector.
type Input interface {
	Tap(ctx context.Context, x, y int) error
	LongTap(ctx context.Context, x, y int) error
	DoubleTap(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x, y, dx, dy int) error
	Key(ctx context.Context, k string) error

	// View dispatches an input on the live widget matching opts. Code 0 is
	// success; code 5 is NoSuchViewError; code 6 is a transient "root null"
	// condition; RetryView makes up to three calls in all while it persists.
	View(ctx context.Context, kind ViewInputKind, opts ViewSelector) (code int, err error)

	// Select enumerates up to n live widgets matching opts. Code 2 is the
	// transient "root null" condition, retried the same way as View's code 6.
	Select(ctx context.Context, opts ViewSelector, n int) (views []ViewMap, code int, err error)
}

// LogcatOptions configures a Logcat stream.
type LogcatOptions struct {
	Tag     string
	Clear   bool
	Silent  bool
	Prio    string
	Formats []string
}

// Device is the external collaborator boundary: fetching device identity,
// firing input, and tailing the instrumented application's log.
type Device interface {
	FetchInfo(ctx context.Context) (Info, error)
	Input() Input
	Logcat(ctx context.Context, opts LogcatOptions) (<-chan string, error)
}
