// Package trace implements the incremental, line-driven parser that turns a
// recorded UI-dump trace into activity snapshots and events, handing both to
// a packer as they complete.
package trace

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxerr"
	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/viewtree"
)

// state tags where Feed is in the ACTIVITY_BEGIN / view-dump / event
// grammar (§4.E).
type state int

const (
	stateAwaitActivity state = iota
	stateInActivity
	stateAwaitEvent
)

// Sink receives completed events as the parser assembles them; Packer
// implements it (Append has the matching signature) but Feed never imports
// the dxpk package directly, keeping the parser decodable from any event
// consumer, including tests.
type Sink interface {
	Append(e event.Event) error
}

// Parser drives the AWAIT_ACTIVITY / IN_ACTIVITY / AWAIT_EVENT state machine
// described in §4.E, one line at a time, so it can be fed from a file, a
// channel of log-tail lines, or an in-memory fixture.
type Parser struct {
	dev  device.Info
	sink Sink

	// decodeText controls whether dx-desc/dx-text are base64-decoded as
	// they're parsed, mirroring the recording-time `decode=true` option.
	decodeText bool

	st state

	pkg          string
	activityName string
	decor        *viewtree.View

	// stack holds the view-dump ancestry by depth; stack[i] is the most
	// recently seen view at depth i (stack[0] is the decor itself; the first
	// indented view line, at depth 1, goes in stack[1]).
	stack []*viewtree.View
	depth int

	newView func(viewtree.Kind) *viewtree.View
}

// NewParser starts a parser bound to dev (used to size each activity's decor
// root) and sink (receives completed events). newView defaults to
// viewtree.NewView; pass packer.NewView to route freshly parsed views
// through the packer's free-list cache (§4.D).
func NewParser(dev device.Info, sink Sink, newView func(viewtree.Kind) *viewtree.View) *Parser {
	if newView == nil {
		newView = viewtree.NewView
	}
	return &Parser{dev: dev, sink: sink, newView: newView, st: stateAwaitActivity}
}

// SetDecodeText toggles base64 decoding of dx-desc/dx-text, mirroring the
// recording option of the same name.
func (p *Parser) SetDecodeText(decode bool) { p.decodeText = decode }

var (
	activityBeginRe = regexp.MustCompile(`^(\S+)\s+ACTIVITY_BEGIN\s+(\S+)$`)
	activityEndRe   = regexp.MustCompile(`^(\S+)\s+ACTIVITY_END\s+(\S+)$`)
	decorLineRe     = regexp.MustCompile(`^DecorView`)
	eventLineRe     = regexp.MustCompile(`^(\S+)\s+(TAP|LONG_TAP|DOUBLE_TAP|SWIPE|KEY)\s+(.+)$`)
	crashLineRe     = regexp.MustCompile(`^-{2,}\s*beginning of (\S+)`)

	// viewLineRe captures, in order: indent, class, 9-char flags, 8-char
	// parent-flags, relative rect, optional resId, the five required dx-
	// translate/scroll attrs, the two required dx-desc/dx-text attrs, and
	// the optional pager/tabhost index.
	viewLineRe = regexp.MustCompile(
		`^(?P<indent>\s*)` +
			`(?P<class>[\w.$]+)` +
			`\{[0-9a-fA-F]+\s+(?P<flags>[A-Z.]{9})\s+(?P<pflags>[A-Z.]{8})\s+` +
			`(?P<relL>-?\d+),(?P<relT>-?\d+)-(?P<relR>-?\d+),(?P<relB>-?\d+)` +
			`(?:\s+#(?P<resId>\S+:\S+/\S+))?` +
			`\s+dx-tx=(?P<tx>-?[\d.]+)\s+dx-ty=(?P<ty>-?[\d.]+)\s+dx-tz=(?P<tz>-?[\d.]+)` +
			`\s+dx-sx=(?P<sx>-?[\d.]+)\s+dx-sy=(?P<sy>-?[\d.]+)` +
			`\s+dx-desc="(?P<desc>[^"]*)"\s+dx-text="(?P<text>[^"]*)"` +
			`(?:\s+dx-pgr-curr=(?P<pgrCurr>\d+))?` +
			`(?:\s+dx-tab-curr=(?P<tabCurr>\d+))?` +
			`\s*\}\s*$`,
	)
)

// Feed consumes one line of trace input, advancing the state machine and, on
// completing an event, handing it to the sink.
func (p *Parser) Feed(line string) error {
	if m := crashLineRe.FindStringSubmatch(line); m != nil {
		if m[1] == "crash" {
			return dxerr.NewIllegalStateError("app crashed: " + line)
		}
		return nil
	}

	switch p.st {
	case stateAwaitActivity:
		return p.feedAwaitActivity(line)
	case stateInActivity:
		return p.feedInActivity(line)
	case stateAwaitEvent:
		return p.feedAwaitEvent(line)
	}
	return dxerr.NewCannotReachHereError("trace: unknown parser state")
}

func (p *Parser) feedAwaitActivity(line string) error {
	m := activityBeginRe.FindStringSubmatch(line)
	if m == nil {
		return dxerr.NewIllegalStateError("expected ACTIVITY_BEGIN, got: " + line)
	}
	p.pkg, p.activityName = m[1], m[2]
	p.decor = nil
	p.stack = nil
	p.depth = -1
	p.st = stateInActivity
	return nil
}

func (p *Parser) feedInActivity(line string) error {
	if m := activityEndRe.FindStringSubmatch(line); m != nil {
		if m[1] != p.pkg || m[2] != p.activityName {
			return dxerr.NewIllegalStateError(
				fmt.Sprintf("ACTIVITY_END %s %s does not match open activity %s %s", m[1], m[2], p.pkg, p.activityName))
		}
		if p.decor == nil {
			return dxerr.NewIllegalStateError("ACTIVITY_END before any DecorView line")
		}
		p.st = stateAwaitEvent
		return nil
	}

	if p.decor == nil {
		if !decorLineRe.MatchString(line) {
			return dxerr.NewIllegalStateError("expected DecorView as first line of activity, got: " + line)
		}
		p.decor = p.newView(viewtree.Decor)
		p.decor.Class = "com.android.internal.policy.DecorView"
		p.decor.Left, p.decor.Top = 0, 0
		p.decor.Right, p.decor.Bottom = p.dev.Width, p.dev.Height
		p.decor.Visibility = viewtree.Visible
		p.decor.Enabled = true
		p.decor.Drawable = true
		p.stack = []*viewtree.View{p.decor}
		p.depth = 0
		return nil
	}

	return p.feedViewLine(line)
}

func (p *Parser) feedAwaitEvent(line string) error {
	m := eventLineRe.FindStringSubmatch(line)
	if m == nil {
		return dxerr.NewIllegalStateError("expected an event line, got: " + line)
	}
	pkg, typ, args := m[1], m[2], strings.Fields(m[3])

	act := &viewtree.Activity{App: pkg, Name: p.activityName, Decor: p.decor}

	e, err := buildEvent(typ, args, act)
	if err != nil {
		return err
	}

	if err := p.sink.Append(e); err != nil {
		return err
	}

	p.decor = nil
	p.stack = nil
	p.st = stateAwaitActivity
	return nil
}

func buildEvent(typ string, args []string, act *viewtree.Activity) (event.Event, error) {
	atoi := func(s, what string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, dxerr.WrapParseError(0, "event "+what, err)
		}
		return v, nil
	}
	atoi64 := func(s, what string) (int64, error) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, dxerr.WrapParseError(0, "event "+what, err)
		}
		return v, nil
	}

	switch typ {
	case "TAP", "LONG_TAP", "DOUBLE_TAP":
		if len(args) != 3 {
			return nil, dxerr.NewIllegalStateError(typ + ": expected 3 args (t x y)")
		}
		t, err := atoi64(args[0], "t")
		if err != nil {
			return nil, err
		}
		x, err := atoi(args[1], "x")
		if err != nil {
			return nil, err
		}
		y, err := atoi(args[2], "y")
		if err != nil {
			return nil, err
		}
		kind := event.Tap
		switch typ {
		case "LONG_TAP":
			kind = event.LongTap
		case "DOUBLE_TAP":
			kind = event.DoubleTap
		}
		return event.NewTap(kind, act, x, y, t), nil

	case "SWIPE":
		if len(args) != 6 {
			return nil, dxerr.NewIllegalStateError("SWIPE: expected 6 args (t0 x y dx dy t1)")
		}
		t0, err := atoi64(args[0], "t0")
		if err != nil {
			return nil, err
		}
		x, err := atoi(args[1], "x")
		if err != nil {
			return nil, err
		}
		y, err := atoi(args[2], "y")
		if err != nil {
			return nil, err
		}
		dx, err := atoi(args[3], "dx")
		if err != nil {
			return nil, err
		}
		dy, err := atoi(args[4], "dy")
		if err != nil {
			return nil, err
		}
		t1, err := atoi64(args[5], "t1")
		if err != nil {
			return nil, err
		}
		return event.NewSwipe(act, x, y, dx, dy, t0, t1), nil

	case "KEY":
		if len(args) != 3 {
			return nil, dxerr.NewIllegalStateError("KEY: expected 3 args (t c k)")
		}
		t, err := atoi64(args[0], "t")
		if err != nil {
			return nil, err
		}
		c, err := atoi(args[1], "c")
		if err != nil {
			return nil, err
		}
		return event.NewKey(act, args[2], c, t), nil
	}

	return nil, dxerr.NewIllegalStateError("unknown event type: " + typ)
}

func (p *Parser) feedViewLine(line string) error {
	m := viewLineRe.FindStringSubmatch(line)
	if m == nil {
		return dxerr.NewIllegalStateError("malformed view line: " + line)
	}
	names := viewLineRe.SubexpNames()
	g := make(map[string]string, len(names))
	for i, n := range names {
		if n != "" {
			g[n] = m[i]
		}
	}

	depth := len(g["indent"])
	if depth < 1 {
		return dxerr.NewIllegalStateError("view line must be indented under the decor: " + line)
	}
	if depth > p.depth+1 {
		return dxerr.NewIllegalStateError(fmt.Sprintf("view depth jumped from %d to %d", p.depth, depth))
	}

	// Climb to the new depth's parent: depth d's parent sits at stack[d-1].
	p.stack = p.stack[:depth] // keep indices [0, depth), i.e. drop anything at or below this depth
	parent := p.stack[len(p.stack)-1]

	kind := viewtree.Other
	if g["pgrCurr"] != "" {
		kind = viewtree.Pager
	} else if g["tabCurr"] != "" {
		kind = viewtree.TabHost
	}

	v := p.newView(kind)
	v.Class = g["class"]

	relL, err := strconv.Atoi(g["relL"])
	if err != nil {
		return dxerr.WrapParseError(0, "view relL", err)
	}
	relT, err := strconv.Atoi(g["relT"])
	if err != nil {
		return dxerr.WrapParseError(0, "view relT", err)
	}
	relR, err := strconv.Atoi(g["relR"])
	if err != nil {
		return dxerr.WrapParseError(0, "view relR", err)
	}
	relB, err := strconv.Atoi(g["relB"])
	if err != nil {
		return dxerr.WrapParseError(0, "view relB", err)
	}
	v.Left = parent.Left + relL
	v.Top = parent.Top + relT
	v.Right = parent.Left + relR
	v.Bottom = parent.Top + relB

	tx, err := strconv.ParseFloat(g["tx"], 64)
	if err != nil {
		return dxerr.WrapParseError(0, "view tx", err)
	}
	ty, err := strconv.ParseFloat(g["ty"], 64)
	if err != nil {
		return dxerr.WrapParseError(0, "view ty", err)
	}
	tz, err := strconv.ParseFloat(g["tz"], 64)
	if err != nil {
		return dxerr.WrapParseError(0, "view tz", err)
	}
	sx, err := strconv.ParseFloat(g["sx"], 64)
	if err != nil {
		return dxerr.WrapParseError(0, "view sx", err)
	}
	sy, err := strconv.ParseFloat(g["sy"], 64)
	if err != nil {
		return dxerr.WrapParseError(0, "view sy", err)
	}
	v.TX = parent.TX + tx
	v.TY = parent.TY + ty
	v.TZ = parent.TZ + tz
	v.SX = parent.SX + sx
	v.SY = parent.SY + sy

	if resID := g["resId"]; resID != "" {
		parts := strings.SplitN(resID, ":", 2)
		if len(parts) == 2 {
			v.ResPkg = parts[0]
			tp := strings.SplitN(parts[1], "/", 2)
			if len(tp) == 2 {
				v.ResType, v.ResEntry = tp[0], tp[1]
			}
		}
	}

	v.Desc = decodeMaybe(g["desc"], p.decodeText)
	v.Text = decodeMaybe(g["text"], p.decodeText)

	applyFlags(v, g["flags"], g["pflags"])

	if kind == viewtree.Pager {
		n, err := strconv.Atoi(g["pgrCurr"])
		if err != nil {
			return dxerr.WrapParseError(0, "dx-pgr-curr", err)
		}
		v.CurrItem = n
	}
	if kind == viewtree.TabHost {
		n, err := strconv.Atoi(g["tabCurr"])
		if err != nil {
			return dxerr.WrapParseError(0, "dx-tab-curr", err)
		}
		v.CurrTab = n
	}

	parent.AddChild(v)
	p.stack = append(p.stack, v)
	p.depth = depth
	return nil
}

func decodeMaybe(s string, decode bool) string {
	if !decode || s == "" {
		return s
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return string(raw)
}

// applyFlags resolves the view's own visibility/boolean flags from the
// 9-character flags token (visibility letter followed by eight boolean
// letters) and the scroll axes from the first two characters of the
// 8-character parent-flags token. The remaining six parent-flags
// characters describe ancestor-inherited state the model already derives
// live via EffectiveVisibility, so they're read but not stored.
func applyFlags(v *viewtree.View, flags, pflags string) {
	if len(flags) == 9 {
		switch flags[0] {
		case 'V':
			v.Visibility = viewtree.Visible
		case 'I':
			v.Visibility = viewtree.Invisible
		case 'G':
			v.Visibility = viewtree.Gone
		}
		v.Focusable = flags[1] != '.'
		v.Focused = flags[2] != '.'
		v.Enabled = flags[3] != '.'
		v.Selected = flags[4] != '.'
		v.Drawable = flags[5] != '.'
		v.Clickable = flags[6] != '.'
		v.LongClickable = flags[7] != '.'
		v.ContextClickable = flags[8] != '.'
	}
	if len(pflags) == 8 {
		v.HScrollable = pflags[0] != '.'
		v.VScrollable = pflags[1] != '.'
	}
}
