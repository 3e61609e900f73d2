package viewtree

// Activity is a snapshot of one activity's view hierarchy at the moment an
// event fired: the app package, the activity name, and exactly one decor
// root view sized to the device pixel extents. A single Activity is shared
// by every event recorded within its window; the DXPK unpacker clones one
// per event so events stay independently mutable after load.
type Activity struct {
	App   string
	Name  string
	Decor *View
}

// NewActivity creates an activity with a fresh Decor root sized to
// (width, height) device pixels.
func NewActivity(app, name string, width, height int) *Activity {
	decor := NewView(Decor)
	decor.Class = "com.android.internal.policy.DecorView"
	decor.Visibility = Visible
	decor.Enabled = true
	decor.Drawable = true
	decor.Left, decor.Top = 0, 0
	decor.Right, decor.Bottom = width, height
	return &Activity{App: app, Name: name, Decor: decor}
}
