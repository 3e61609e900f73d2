// Package event defines the tagged event variants the trace parser emits
// and the replay scheduler consumes: tap, long-tap, double-tap, swipe and
// key, each bound to the activity snapshot observed when it fired.
package event

import (
	"fmt"

	"github.com/connglli/dxpk/viewtree"
)

// Kind tags the concrete Event variant, letting the DXPK codec and the
// replay strategies dispatch without a type switch on every call site.
type Kind int

const (
	Tap Kind = iota
	LongTap
	DoubleTap
	Swipe
	Key
)

func (k Kind) String() string {
	switch k {
	case Tap:
		return "tap"
	case LongTap:
		return "long-tap"
	case DoubleTap:
		return "double-tap"
	case Swipe:
		return "swipe"
	case Key:
		return "key"
	}
	return "unknown"
}

// Event is the common interface implemented by every variant: the
// activity it was observed against, its timestamp, a log-friendly
// rendering, and a rebind to a different activity snapshot (needed when
// unpacking clones a fresh activity from the view pool).
type Event interface {
	Kind() Kind
	Activity() *viewtree.Activity
	Timestamp() int64
	String() string
	WithActivity(a *viewtree.Activity) Event
}

// TapEvent covers tap, long-tap and double-tap: they share the same
// positional shape (x, y, t) and differ only in Kind.
type TapEvent struct {
	kind     Kind
	activity *viewtree.Activity
	X, Y     int
	T        int64
}

// NewTap builds a tap/long-tap/double-tap event. kind must be one of Tap,
// LongTap or DoubleTap.
func NewTap(kind Kind, a *viewtree.Activity, x, y int, t int64) *TapEvent {
	return &TapEvent{kind: kind, activity: a, X: x, Y: y, T: t}
}

func (e *TapEvent) Kind() Kind                   { return e.kind }
func (e *TapEvent) Activity() *viewtree.Activity { return e.activity }
func (e *TapEvent) Timestamp() int64             { return e.T }

func (e *TapEvent) String() string {
	return fmt.Sprintf("%s(x=%d, y=%d, t=%d)", e.kind, e.X, e.Y, e.T)
}

func (e *TapEvent) WithActivity(a *viewtree.Activity) Event {
	return &TapEvent{kind: e.kind, activity: a, X: e.X, Y: e.Y, T: e.T}
}

// SwipeEvent is a swipe gesture bracketed by t0/t1.
type SwipeEvent struct {
	activity *viewtree.Activity
	X, Y     int
	DX, DY   int
	T0, T1   int64
}

func NewSwipe(a *viewtree.Activity, x, y, dx, dy int, t0, t1 int64) *SwipeEvent {
	return &SwipeEvent{activity: a, X: x, Y: y, DX: dx, DY: dy, T0: t0, T1: t1}
}

func (e *SwipeEvent) Kind() Kind                   { return Swipe }
func (e *SwipeEvent) Activity() *viewtree.Activity { return e.activity }

// Timestamp returns t0: the scheduler orders and delays by gesture start.
func (e *SwipeEvent) Timestamp() int64 { return e.T0 }

func (e *SwipeEvent) String() string {
	return fmt.Sprintf("swipe(x=%d, y=%d, dx=%d, dy=%d, t0=%d, t1=%d)", e.X, e.Y, e.DX, e.DY, e.T0, e.T1)
}

func (e *SwipeEvent) WithActivity(a *viewtree.Activity) Event {
	return &SwipeEvent{activity: a, X: e.X, Y: e.Y, DX: e.DX, DY: e.DY, T0: e.T0, T1: e.T1}
}

// KeyEvent is a device key press: its name (k) and key code (c).
type KeyEvent struct {
	activity *viewtree.Activity
	K        string
	C        int
	T        int64
}

func NewKey(a *viewtree.Activity, k string, c int, t int64) *KeyEvent {
	return &KeyEvent{activity: a, K: k, C: c, T: t}
}

func (e *KeyEvent) Kind() Kind                   { return Key }
func (e *KeyEvent) Activity() *viewtree.Activity { return e.activity }
func (e *KeyEvent) Timestamp() int64             { return e.T }

func (e *KeyEvent) String() string {
	return fmt.Sprintf("key(k=%s, c=%d, t=%d)", e.K, e.C, e.T)
}

func (e *KeyEvent) WithActivity(a *viewtree.Activity) Event {
	return &KeyEvent{activity: a, K: e.K, C: e.C, T: e.T}
}
