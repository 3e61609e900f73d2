// Package dxpk implements the view-pool dedup packer and the DXPK wire
// codec: appending recorded events into a deduplicated archive and
// reconstructing events and activities back out of one.
package dxpk

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxerr"
	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/ktree"
	"github.com/connglli/dxpk/viewtree"
)

// activityPack is the encoded form of an activity snapshot: the app
// package, the activity name, and a k-ary tree of pool indices mirroring
// the decor-rooted view tree. The DXPK wire format carries no slot for the
// activity name (§4.D lists only the index tree, event type and
// positional fields per event line) or a per-event app field (the app line
// is written once, globally). After Dump/Load the activity name comes back
// empty and every entry's app is the archive's single app line; only
// entries appended in this session keep their own name and app.
type activityPack struct {
	app  string
	name string
	tree *ktree.Tree
}

// packedEvent is one (event, activityPack) entry in the packer's sequence.
type packedEvent struct {
	kind event.Kind

	x, y, dx, dy int
	t, t0, t1    int64
	k            string
	c            int

	pack activityPack
}

// Packer maintains the view pool and the packed event sequence for one
// recording (or loaded) session.
type Packer struct {
	sessionID string
	device    device.Info
	app       string
	pool      *pool
	cache     *cache
	entries   []packedEvent
}

// NewPacker starts a new packing session against the given recording
// device. Each session is tagged with a random session ID for log
// correlation; the ID is metadata on the in-memory Packer only and never
// appears on the wire (it does not affect round-trip byte-exactness).
func NewPacker(dev device.Info) *Packer {
	return &Packer{
		sessionID: uuid.New().String(),
		device:    dev,
		pool:      newPool(),
		cache:     newCache(),
	}
}

// SessionID returns the packer's log-correlation identifier.
func (p *Packer) SessionID() string { return p.sessionID }

// Device returns the recording device's info.
func (p *Packer) Device() device.Info { return p.device }

// App returns the app package name observed so far.
func (p *Packer) App() string { return p.app }

// PoolSize returns the number of distinct views currently pooled.
func (p *Packer) PoolSize() int { return p.pool.len() }

// Len returns the number of packed events.
func (p *Packer) Len() int { return len(p.entries) }

// NewView requests a view of kind from the packer's free-list cache,
// falling back to a fresh allocation. The trace parser calls this instead
// of viewtree.NewView so that evicted pool duplicates are recycled across
// activities within one session.
func (p *Packer) NewView(kind viewtree.Kind) *viewtree.View {
	return p.cache.newView(kind)
}

// Snapshot returns the packer's current device, app, pool and a freshly
// unpacked event sequence, without mutating any of it. Used by the
// interrupt-driven flush (§5) and the inspector to read in-progress state.
func (p *Packer) Snapshot() (device.Info, string, []*viewtree.View, *event.Sequence, error) {
	seq, err := p.Sequence()
	if err != nil {
		return device.Info{}, "", nil, nil, err
	}
	return p.device, p.app, p.pool.all(), seq, nil
}

// Append packs e's bound activity into the view pool and records e in the
// event sequence. e must have a non-nil Activity with a Decor root.
func (p *Packer) Append(e event.Event) error {
	act := e.Activity()
	if act == nil || act.Decor == nil {
		return dxerr.NewIllegalStateError("append: event has no bound activity")
	}
	if p.app == "" {
		p.app = act.App
	}

	tree := p.packView(act.Decor)
	pe := packedEvent{kind: e.Kind(), pack: activityPack{app: act.App, name: act.Name, tree: tree}}

	switch ev := e.(type) {
	case *event.TapEvent:
		pe.x, pe.y, pe.t = ev.X, ev.Y, ev.T
	case *event.SwipeEvent:
		pe.x, pe.y, pe.dx, pe.dy, pe.t0, pe.t1 = ev.X, ev.Y, ev.DX, ev.DY, ev.T0, ev.T1
	case *event.KeyEvent:
		pe.k, pe.c, pe.t = ev.K, ev.C, ev.T
	default:
		return dxerr.NewCannotReachHereError("dxpk: append: unknown event type")
	}

	p.entries = append(p.entries, pe)
	return nil
}

// packView recursively dedups v's subtree into the pool, detaching each
// node from its parent, recycling redundant instances into the free-list
// cache, and returning a k-ary tree of pool indices with the same shape.
func (p *Packer) packView(v *viewtree.View) *ktree.Tree {
	children := v.Children
	v.Detach()
	v.Children = nil

	idx, found := p.pool.indexOf(v)
	if found {
		p.cache.put(v)
	} else {
		idx = p.pool.add(v)
	}

	node := ktree.New(idx)
	for _, c := range children {
		node.AddChildTree(p.packView(c))
	}
	return node
}

// unpackView rebuilds one node (and its subtree) from an index tree,
// cloning pool entries and attaching them under parent.
func (p *Packer) unpackView(t *ktree.Tree, parent *viewtree.View) (*viewtree.View, error) {
	if t == nil {
		return nil, dxerr.NewIllegalStateError("unpack: nil index tree node")
	}
	src := p.pool.get(t.Value)
	if src == nil {
		return nil, dxerr.NewIllegalStateError(fmt.Sprintf("unpack: pool index %d out of range", t.Value))
	}

	v := src.Clone()
	if parent != nil {
		parent.AddChild(v)
	}
	for _, c := range t.Children() {
		if _, err := p.unpackView(c, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// unpackActivity rebuilds a full activity snapshot from a packed
// activityPack, installing the decor-rooted tree into a fresh Activity.
func (p *Packer) unpackActivity(pack activityPack) (*viewtree.Activity, error) {
	decor, err := p.unpackView(pack.tree, nil)
	if err != nil {
		return nil, err
	}
	if decor.Kind != viewtree.Decor {
		return nil, dxerr.NewIllegalStateError("unpack: expected decor root")
	}
	return &viewtree.Activity{App: pack.app, Name: pack.name, Decor: decor}, nil
}

// Unpack rebuilds the i-th packed entry into a live Event bound to a
// freshly cloned Activity, per invariant 3.
func (p *Packer) Unpack(i int) (event.Event, error) {
	if i < 0 || i >= len(p.entries) {
		return nil, dxerr.NewIllegalStateError("unpack: index out of range")
	}
	pe := p.entries[i]

	act, err := p.unpackActivity(pe.pack)
	if err != nil {
		return nil, err
	}

	switch pe.kind {
	case event.Tap, event.LongTap, event.DoubleTap:
		return event.NewTap(pe.kind, act, pe.x, pe.y, pe.t), nil
	case event.Swipe:
		return event.NewSwipe(act, pe.x, pe.y, pe.dx, pe.dy, pe.t0, pe.t1), nil
	case event.Key:
		return event.NewKey(act, pe.k, pe.c, pe.t), nil
	}
	return nil, dxerr.NewCannotReachHereError("dxpk: unpack: unknown event kind")
}

// Sequence rebuilds the full event sequence, each entry independently
// unpacked (and so independently mutable, per §9's event-activity binding
// note).
func (p *Packer) Sequence() (*event.Sequence, error) {
	seq := event.NewSequence()
	for i := range p.entries {
		e, err := p.Unpack(i)
		if err != nil {
			return nil, err
		}
		seq.Append(e)
	}
	return seq, nil
}
