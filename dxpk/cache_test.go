package dxpk

import (
	"testing"

	"github.com/connglli/dxpk/viewtree"
)

func TestCacheNewViewResetsRecycledResID(t *testing.T) {
	t.Parallel()

	c := newCache()
	v := viewtree.NewView(viewtree.Other)
	v.ResPkg, v.ResType, v.ResEntry = "com.x", "id", "login"
	v.Text = "LOGIN"
	c.put(v)

	got := c.newView(viewtree.Other)
	if got != v {
		t.Fatalf("expected newView to return the recycled instance")
	}
	if got.ResID() != "" {
		t.Fatalf("ResID() = %q, want empty after recycling", got.ResID())
	}
	if got.Text != "" {
		t.Fatalf("Text = %q, want empty after recycling", got.Text)
	}
	if got.Kind != viewtree.Other {
		t.Fatalf("Kind = %v, want Other", got.Kind)
	}
}

func TestCacheNewViewAllocatesFreshWhenEmpty(t *testing.T) {
	t.Parallel()

	c := newCache()
	got := c.newView(viewtree.Pager)
	if got == nil || got.Kind != viewtree.Pager {
		t.Fatalf("newView(Pager) = %+v, want fresh Pager view", got)
	}
}
