package dxpk

import "github.com/connglli/dxpk/viewtree"

// pool is the view-pool dedup set: distinct views (by §4.D structural
// equality), in stable insertion order.
type pool struct {
	views []*viewtree.View
}

func newPool() *pool {
	return &pool{}
}

// indexOf returns the index of an existing structurally-equal entry.
func (p *pool) indexOf(v *viewtree.View) (int, bool) {
	for i, e := range p.views {
		if e.StructurallyEqual(v) {
			return i, true
		}
	}
	return -1, false
}

// add appends v as a new pool entry and returns its index.
func (p *pool) add(v *viewtree.View) int {
	p.views = append(p.views, v)
	return len(p.views) - 1
}

// get returns the entry at i, or nil if out of range.
func (p *pool) get(i int) *viewtree.View {
	if i < 0 || i >= len(p.views) {
		return nil
	}
	return p.views[i]
}

func (p *pool) len() int { return len(p.views) }

func (p *pool) all() []*viewtree.View { return p.views }
