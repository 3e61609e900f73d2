package dxpk

import (
	"fmt"

	"github.com/connglli/dxpk/viewtree"
)

// flagLen is the fixed width of the DXPK flags field: one visibility
// letter plus ten boolean-flag letters.
const flagLen = 11

// encodeFlags and parseFlags resolve Open Question 3: the parser and the codec must agree
// on one canonical 11-character layout. The literal S1/VFF..DHVC.X
// scenarios in §8 only round-trip under enabled-before-selected ordering,
// so that's the order used here — not the f,F,S,E,... prose order in §4.D,
// which the same section's Open Question flags as inconsistent with the
// dump the sources actually produce.
//
//	[0]  visibility: V | I | G
//	[1]  focusable      -> F
//	[2]  focused        -> F
//	[3]  enabled        -> E
//	[4]  selected       -> S
//	[5]  drawable       -> D
//	[6]  hScrollable    -> H
//	[7]  vScrollable    -> V
//	[8]  clickable      -> C
//	[9]  longClickable  -> L
//	[10] contextClickable -> X
func encodeFlags(v *viewtree.View) string {
	b := make([]byte, flagLen)
	b[0] = visibilityLetter(v.Visibility)
	b[1] = boolLetter(v.Focusable, 'F')
	b[2] = boolLetter(v.Focused, 'F')
	b[3] = boolLetter(v.Enabled, 'E')
	b[4] = boolLetter(v.Selected, 'S')
	b[5] = boolLetter(v.Drawable, 'D')
	b[6] = boolLetter(v.HScrollable, 'H')
	b[7] = boolLetter(v.VScrollable, 'V')
	b[8] = boolLetter(v.Clickable, 'C')
	b[9] = boolLetter(v.LongClickable, 'L')
	b[10] = boolLetter(v.ContextClickable, 'X')
	return string(b)
}

func parseFlags(s string, v *viewtree.View) error {
	if len(s) != flagLen {
		return fmt.Errorf("flags field must be %d characters, got %d (%q)", flagLen, len(s), s)
	}
	switch s[0] {
	case 'V':
		v.Visibility = viewtree.Visible
	case 'I':
		v.Visibility = viewtree.Invisible
	case 'G':
		v.Visibility = viewtree.Gone
	default:
		return fmt.Errorf("unknown visibility letter %q", s[0])
	}
	v.Focusable = s[1] != '.'
	v.Focused = s[2] != '.'
	v.Enabled = s[3] != '.'
	v.Selected = s[4] != '.'
	v.Drawable = s[5] != '.'
	v.HScrollable = s[6] != '.'
	v.VScrollable = s[7] != '.'
	v.Clickable = s[8] != '.'
	v.LongClickable = s[9] != '.'
	v.ContextClickable = s[10] != '.'
	return nil
}

func boolLetter(set bool, letter byte) byte {
	if set {
		return letter
	}
	return '.'
}

func visibilityLetter(vis viewtree.Visibility) byte {
	switch vis {
	case viewtree.Visible:
		return 'V'
	case viewtree.Invisible:
		return 'I'
	case viewtree.Gone:
		return 'G'
	}
	return 'V'
}
