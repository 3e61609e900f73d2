// Package viewtree models one activity's on-screen view hierarchy: the
// geometry, visibility and flag state the replay strategies and the DXPK
// codec reason about.
package viewtree

import "strings"

// Kind tags the specialized behavior a View carries. It doubles as the
// vocabulary for the DXPK "kind" byte and the packer's free-list cache.
type Kind int

const (
	Other Kind = iota
	Decor
	Pager
	TabHost
)

func (k Kind) String() string {
	switch k {
	case Decor:
		return "Decor"
	case Pager:
		return "Pager"
	case TabHost:
		return "TabHost"
	case Other:
		return "Other"
	}
	return "Other"
}

// Visibility is the view's own (non-inherited) visibility flag.
type Visibility int

const (
	Visible Visibility = iota
	Invisible
	Gone
)

func (vis Visibility) String() string {
	switch vis {
	case Visible:
		return "VISIBLE"
	case Invisible:
		return "INVISIBLE"
	case Gone:
		return "GONE"
	}
	return "VISIBLE"
}

// View represents one node in an activity's view hierarchy: either a leaf
// widget or a container. Parent is a non-owning back-reference; Children is
// the owning, ordered edge.
type View struct {
	Kind    Kind
	Class   string
	Package string

	Visibility Visibility

	Focusable        bool
	Focused          bool
	Selected         bool
	Enabled          bool
	Drawable         bool
	HScrollable      bool
	VScrollable      bool
	Clickable        bool
	LongClickable    bool
	ContextClickable bool

	Left, Top, Right, Bottom int
	TX, TY, TZ               float64
	SX, SY                   float64

	ResPkg, ResType, ResEntry string

	Desc string
	Text string

	BgClass string
	BgColor string // "." when absent

	// CurrItem is meaningful only when Kind == Pager.
	CurrItem int
	// CurrTab is meaningful only when Kind == TabHost.
	CurrTab int

	Parent   *View
	Children []*View
}

// NewView allocates a zero-value View of the given kind.
func NewView(kind Kind) *View {
	return &View{Kind: kind}
}

// ResID returns "pkg:type/entry", or the empty string if any part is empty.
func (v *View) ResID() string {
	if v.ResPkg == "" || v.ResType == "" || v.ResEntry == "" {
		return ""
	}
	return v.ResPkg + ":" + v.ResType + "/" + v.ResEntry
}

// AddChild appends child to v's children, detaching it from any previous
// parent first. A view is the child of at most one parent (invariant 1).
func (v *View) AddChild(child *View) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = v
	v.Children = append(v.Children, child)
}

// RemoveChild detaches child from v, if present.
func (v *View) RemoveChild(child *View) {
	for i, c := range v.Children {
		if c == child {
			v.Children = append(v.Children[:i], v.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Detach removes v from its parent, if any.
func (v *View) Detach() {
	if v.Parent != nil {
		v.Parent.RemoveChild(v)
	}
}

// Clone returns a shallow copy of v's own attributes with no parent and no
// children. Used by the DXPK unpacker.
func (v *View) Clone() *View {
	c := *v
	c.Parent = nil
	c.Children = nil
	return &c
}

// scrollOf returns the scroll offset a view imposes on its children's
// drawing coordinates, or (0, 0) for a nil view (the root has no parent to
// scroll it).
func scrollOf(v *View) (float64, float64) {
	if v == nil {
		return 0, 0
	}
	return v.SX, v.SY
}

// DrawX is the drawing-coordinate left edge: (left + tx) - parent.scrollX.
func (v *View) DrawX() float64 {
	sx, _ := scrollOf(v.Parent)
	return float64(v.Left) + v.TX - sx
}

// DrawY is the drawing-coordinate top edge: (top + ty) - parent.scrollY.
func (v *View) DrawY() float64 {
	_, sy := scrollOf(v.Parent)
	return float64(v.Top) + v.TY - sy
}

// DrawRect returns the drawing rectangle (left, top, right, bottom) used by
// geometric hit-testing.
func (v *View) DrawRect() (left, top, right, bottom float64) {
	left = v.DrawX()
	top = v.DrawY()
	right = left + float64(v.Right-v.Left)
	bottom = top + float64(v.Bottom-v.Top)
	return
}

// Contains reports whether the drawing rectangle contains device point
// (x, y). The right/bottom edges are exclusive.
func (v *View) Contains(x, y int) bool {
	l, t, r, b := v.DrawRect()
	fx, fy := float64(x), float64(y)
	return fx >= l && fx < r && fy >= t && fy < b
}

// EffectiveVisibility applies invariant 3: a GONE ancestor makes the whole
// subtree GONE; an INVISIBLE ancestor demotes a VISIBLE descendant to
// INVISIBLE; otherwise a view keeps its own flag.
func (v *View) EffectiveVisibility() Visibility {
	if v.Parent == nil {
		return v.Visibility
	}
	switch pv := v.Parent.EffectiveVisibility(); pv {
	case Gone:
		return Gone
	case Invisible:
		if v.Visibility == Visible {
			return Invisible
		}
		return v.Visibility
	default:
		return v.Visibility
	}
}

// descendChildren returns the children to recurse into for geometric
// queries. A Pager restricts descent to children[CurrItem].
func (v *View) descendChildren() []*View {
	if v.Kind == Pager {
		if v.CurrItem >= 0 && v.CurrItem < len(v.Children) {
			return v.Children[v.CurrItem : v.CurrItem+1]
		}
		return nil
	}
	return v.Children
}

// FindViewsByXY returns every view whose drawing rectangle contains (x, y),
// innermost-first: children are visited (and appended) before the current
// view is appended on the way out.
func (v *View) FindViewsByXY(x, y int, visibleOnly, enabledOnly bool) []*View {
	var hits []*View
	for _, c := range v.descendChildren() {
		hits = append(hits, c.FindViewsByXY(x, y, visibleOnly, enabledOnly)...)
	}
	if v.Contains(x, y) {
		if visibleOnly && v.EffectiveVisibility() != Visible {
			return hits
		}
		if enabledOnly && !v.Enabled {
			return hits
		}
		hits = append(hits, v)
	}
	return hits
}

// FindViewByXY returns the innermost view at (x, y), or nil.
func (v *View) FindViewByXY(x, y int, visibleOnly, enabledOnly bool) *View {
	hits := v.FindViewsByXY(x, y, visibleOnly, enabledOnly)
	if len(hits) == 0 {
		return nil
	}
	return hits[0]
}

// FindHScrollableParent returns the nearest strict ancestor with
// HScrollable set, or nil.
func (v *View) FindHScrollableParent() *View {
	for p := v.Parent; p != nil; p = p.Parent {
		if p.HScrollable {
			return p
		}
	}
	return nil
}

// FindVScrollableParent returns the nearest strict ancestor with
// VScrollable set, or nil.
func (v *View) FindVScrollableParent() *View {
	for p := v.Parent; p != nil; p = p.Parent {
		if p.VScrollable {
			return p
		}
	}
	return nil
}

// StructurallyEqual implements the §4.D view-pool equality relation:
// class name, absolute rect, translations, scrolls, resId, desc, text, and
// every flag field must match. Kind, Package, BgClass/BgColor and the
// pager/tabhost index are deliberately excluded, per the literal criteria.
func (v *View) StructurallyEqual(o *View) bool {
	if v == o {
		return true
	}
	if v == nil || o == nil {
		return false
	}
	return v.Class == o.Class &&
		v.Left == o.Left && v.Top == o.Top && v.Right == o.Right && v.Bottom == o.Bottom &&
		v.TX == o.TX && v.TY == o.TY && v.TZ == o.TZ &&
		v.SX == o.SX && v.SY == o.SY &&
		v.ResID() == o.ResID() &&
		v.Visibility == o.Visibility &&
		v.Desc == o.Desc && v.Text == o.Text &&
		v.Focusable == o.Focusable && v.Focused == o.Focused && v.Selected == o.Selected &&
		v.Enabled == o.Enabled && v.Drawable == o.Drawable &&
		v.HScrollable == o.HScrollable && v.VScrollable == o.VScrollable &&
		v.Clickable == o.Clickable && v.LongClickable == o.LongClickable &&
		v.ContextClickable == o.ContextClickable
}

// String renders a compact single-line description, mainly for logging.
func (v *View) String() string {
	var b strings.Builder
	b.WriteString(v.Class)
	if id := v.ResID(); id != "" {
		b.WriteString(" #")
		b.WriteString(id)
	}
	if v.Text != "" {
		b.WriteString(" text=")
		b.WriteString(v.Text)
	}
	return b.String()
}
