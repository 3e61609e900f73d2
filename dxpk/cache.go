package dxpk

import "github.com/connglli/dxpk/viewtree"

// cache is the packer's typed free-list: when packView finds a redundant
// view already represented in the pool, the discarded instance is pushed
// here instead of left for the garbage collector, keyed by its Kind so a
// later allocation of the same kind can reuse it. Purely a performance
// optimization — nothing in the contract observes cached identity.
type cache struct {
	buckets map[viewtree.Kind][]*viewtree.View
}

func newCache() *cache {
	return &cache{buckets: make(map[viewtree.Kind][]*viewtree.View)}
}

// put recycles a detached, childless view instance.
func (c *cache) put(v *viewtree.View) {
	c.buckets[v.Kind] = append(c.buckets[v.Kind], v)
}

// newView pops a recycled instance of kind if one is available, otherwise
// allocates fresh.
func (c *cache) newView(kind viewtree.Kind) *viewtree.View {
	bucket := c.buckets[kind]
	if len(bucket) == 0 {
		return viewtree.NewView(kind)
	}
	v := bucket[len(bucket)-1]
	c.buckets[kind] = bucket[:len(bucket)-1]
	*v = viewtree.View{Kind: kind}
	return v
}
