package dxpk

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxerr"
	"github.com/connglli/dxpk/event"
	"github.com/connglli/dxpk/ktree"
	"github.com/connglli/dxpk/viewtree"
)

// Dump writes the packer's current state as a DXPK archive: the device
// line, the app line, the view pool, and the packed event sequence, in
// that order. Dump is bit-exact for round-trip (invariant 4): dumping a
// loaded archive reproduces the original bytes modulo trailing newline.
func (p *Packer) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	d := p.device
	if _, err := fmt.Fprintf(bw, "%s;%s;%s;%s;%d;%d;%d;%d;%s\n",
		d.Brand, d.Model, d.ABI, d.Board, d.Width, d.Height, d.DPI, d.SDKLevel, d.ReleaseVersion); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(bw, "%s\n", p.app); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(bw, "%d\n", p.pool.len()); err != nil {
		return err
	}
	for _, v := range p.pool.all() {
		if _, err := fmt.Fprintf(bw, "%s\n", encodeView(v)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(bw, "%d\n", len(p.entries)); err != nil {
		return err
	}
	for _, pe := range p.entries {
		if _, err := fmt.Fprintf(bw, "%s\n", encodeEventLine(pe)); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// DumpFile writes the archive to path atomically: a temp file in the same
// directory is written in full, then renamed over path, per §5's
// "written atomically in one write after buffer assembly" resource policy.
func (p *Packer) DumpFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("dxpk: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op once renamed

	var buf strings.Builder
	if err := p.Dump(&buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("dxpk: assemble dump: %w", err)
	}
	if _, err := tmp.WriteString(buf.String()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("dxpk: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("dxpk: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("dxpk: rename temp file: %w", err)
	}
	return nil
}

// Load parses a DXPK archive into a new Packer. Any malformed section
// order, truncated event, unknown kind letter, or unknown event type is a
// fatal *dxerr.ParseError that aborts loading.
func Load(r io.Reader) (*Packer, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	nextLine := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", dxerr.WrapParseError(lineNo+1, "read "+what, err)
			}
			return "", dxerr.NewParseError(lineNo+1, "unexpected EOF reading "+what)
		}
		lineNo++
		return sc.Text(), nil
	}

	devLine, err := nextLine("device line")
	if err != nil {
		return nil, err
	}
	dev, err := decodeDevice(devLine)
	if err != nil {
		return nil, dxerr.WrapParseError(lineNo, "device line", err)
	}

	appLine, err := nextLine("app line")
	if err != nil {
		return nil, err
	}

	p := NewPacker(dev)
	p.app = appLine

	poolSizeLine, err := nextLine("pool size")
	if err != nil {
		return nil, err
	}
	m, err := strconv.Atoi(poolSizeLine)
	if err != nil || m < 0 {
		return nil, dxerr.NewParseError(lineNo, "pool size: not a non-negative integer")
	}
	for i := 0; i < m; i++ {
		viewLine, err := nextLine("view line")
		if err != nil {
			return nil, err
		}
		v, err := decodeView(viewLine)
		if err != nil {
			return nil, dxerr.WrapParseError(lineNo, "view line", err)
		}
		p.pool.add(v)
	}

	seqSizeLine, err := nextLine("sequence size")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(seqSizeLine)
	if err != nil || n < 0 {
		return nil, dxerr.NewParseError(lineNo, "sequence size: not a non-negative integer")
	}
	for i := 0; i < n; i++ {
		eventLine, err := nextLine("event line")
		if err != nil {
			return nil, err
		}
		pe, err := decodeEventLine(eventLine, p.app)
		if err != nil {
			return nil, dxerr.WrapParseError(lineNo, "event line", err)
		}
		p.entries = append(p.entries, pe)
	}

	return p, nil
}

// LoadFile opens and parses a DXPK archive from path.
func LoadFile(path string) (*Packer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dxpk: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only, error would surface on parse

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("dxpk: load %s: %w", path, err)
	}
	return p, nil
}

func decodeDevice(line string) (device.Info, error) {
	parts := strings.Split(line, ";")
	if len(parts) != 9 {
		return device.Info{}, fmt.Errorf("expected 9 fields, got %d", len(parts))
	}
	width, err := strconv.Atoi(parts[4])
	if err != nil {
		return device.Info{}, fmt.Errorf("width: %w", err)
	}
	height, err := strconv.Atoi(parts[5])
	if err != nil {
		return device.Info{}, fmt.Errorf("height: %w", err)
	}
	dpi, err := strconv.Atoi(parts[6])
	if err != nil {
		return device.Info{}, fmt.Errorf("dpi: %w", err)
	}
	sdk, err := strconv.Atoi(parts[7])
	if err != nil {
		return device.Info{}, fmt.Errorf("sdk: %w", err)
	}
	return device.Info{
		Brand:          parts[0],
		Model:          parts[1],
		ABI:            parts[2],
		Board:          parts[3],
		Width:          width,
		Height:         height,
		DPI:            dpi,
		SDKLevel:       sdk,
		ReleaseVersion: parts[8],
	}, nil
}

func kindToLetter(k viewtree.Kind) string {
	switch k {
	case viewtree.Decor:
		return "d"
	case viewtree.Pager:
		return "p"
	case viewtree.TabHost:
		return "t"
	case viewtree.Other:
		return "."
	}
	return "."
}

func letterToKind(s string) (viewtree.Kind, error) {
	switch s {
	case "d":
		return viewtree.Decor, nil
	case "p":
		return viewtree.Pager, nil
	case "t":
		return viewtree.TabHost, nil
	case ".":
		return viewtree.Other, nil
	}
	return 0, fmt.Errorf("unknown kind letter %q", s)
}

func bgColorField(bgColor string) string {
	if bgColor == "" {
		return "."
	}
	return bgColor
}

func parseBgColor(field string) string {
	if field == "." {
		return ""
	}
	return field
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloatField(field, what string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

// encodeView renders one pool entry as its DXPK view line.
func encodeView(v *viewtree.View) string {
	fields := []string{
		kindToLetter(v.Kind),
		v.Class,
		v.ResPkg, v.ResType, v.ResEntry,
		strconv.Itoa(v.Left), strconv.Itoa(v.Top), strconv.Itoa(v.Right), strconv.Itoa(v.Bottom),
		formatFloat(v.TX), formatFloat(v.TY), formatFloat(v.TZ),
		formatFloat(v.SX), formatFloat(v.SY),
		base64.StdEncoding.EncodeToString([]byte(v.Desc)),
		base64.StdEncoding.EncodeToString([]byte(v.Text)),
		v.BgClass,
		bgColorField(v.BgColor),
		encodeFlags(v),
	}
	line := strings.Join(fields, ";")
	switch v.Kind {
	case viewtree.Pager:
		line += ";" + strconv.Itoa(v.CurrItem)
	case viewtree.TabHost:
		line += ";" + strconv.Itoa(v.CurrTab)
	}
	return line
}

// decodeView parses one DXPK view line into a fresh, detached View.
func decodeView(line string) (*viewtree.View, error) {
	parts := strings.Split(line, ";")
	if len(parts) < 19 {
		return nil, fmt.Errorf("truncated view line: expected at least 19 fields, got %d", len(parts))
	}

	kind, err := letterToKind(parts[0])
	if err != nil {
		return nil, err
	}

	v := viewtree.NewView(kind)
	v.Class = parts[1]
	v.ResPkg, v.ResType, v.ResEntry = parts[2], parts[3], parts[4]

	left, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	top, err := strconv.Atoi(parts[6])
	if err != nil {
		return nil, fmt.Errorf("top: %w", err)
	}
	right, err := strconv.Atoi(parts[7])
	if err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}
	bottom, err := strconv.Atoi(parts[8])
	if err != nil {
		return nil, fmt.Errorf("bottom: %w", err)
	}
	v.Left, v.Top, v.Right, v.Bottom = left, top, right, bottom

	if v.TX, err = parseFloatField(parts[9], "tx"); err != nil {
		return nil, err
	}
	if v.TY, err = parseFloatField(parts[10], "ty"); err != nil {
		return nil, err
	}
	if v.TZ, err = parseFloatField(parts[11], "tz"); err != nil {
		return nil, err
	}
	if v.SX, err = parseFloatField(parts[12], "sx"); err != nil {
		return nil, err
	}
	if v.SY, err = parseFloatField(parts[13], "sy"); err != nil {
		return nil, err
	}

	descBytes, err := base64.StdEncoding.DecodeString(parts[14])
	if err != nil {
		return nil, fmt.Errorf("desc: %w", err)
	}
	v.Desc = string(descBytes)

	textBytes, err := base64.StdEncoding.DecodeString(parts[15])
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	v.Text = string(textBytes)

	v.BgClass = parts[16]
	v.BgColor = parseBgColor(parts[17])

	if err := parseFlags(parts[18], v); err != nil {
		return nil, err
	}

	switch kind {
	case viewtree.Pager:
		if len(parts) != 20 {
			return nil, fmt.Errorf("pager view missing currItem field")
		}
		currItem, err := strconv.Atoi(parts[19])
		if err != nil {
			return nil, fmt.Errorf("currItem: %w", err)
		}
		v.CurrItem = currItem
	case viewtree.TabHost:
		if len(parts) != 20 {
			return nil, fmt.Errorf("tabhost view missing currTab field")
		}
		currTab, err := strconv.Atoi(parts[19])
		if err != nil {
			return nil, fmt.Errorf("currTab: %w", err)
		}
		v.CurrTab = currTab
	default:
		if len(parts) != 19 {
			return nil, fmt.Errorf("unexpected extra field on a %s view", kind)
		}
	}

	return v, nil
}

// encodeEventLine renders one packed entry: its index tree, followed by
// the event type and positional fields.
func encodeEventLine(pe packedEvent) string {
	var b strings.Builder
	b.WriteString(ktree.Encode(pe.pack.tree))
	switch pe.kind {
	case event.Tap, event.LongTap, event.DoubleTap:
		fmt.Fprintf(&b, "%s;%d;%d;%d", pe.kind, pe.x, pe.y, pe.t)
	case event.Swipe:
		fmt.Fprintf(&b, "%s;%d;%d;%d;%d;%d;%d", pe.kind, pe.x, pe.y, pe.dx, pe.dy, pe.t0, pe.t1)
	case event.Key:
		fmt.Fprintf(&b, "%s;%s;%d;%d", pe.kind, pe.k, pe.c, pe.t)
	}
	return b.String()
}

// eventKindFromString maps the wire type token back to event.Kind.
func eventKindFromString(s string) (event.Kind, error) {
	switch s {
	case "tap":
		return event.Tap, nil
	case "long-tap":
		return event.LongTap, nil
	case "double-tap":
		return event.DoubleTap, nil
	case "swipe":
		return event.Swipe, nil
	case "key":
		return event.Key, nil
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// decodeEventLine parses one event line: a pre-order "idx,childCount;"
// stream, consumed token by token until a field fails to parse as such —
// that field is the event type — followed by the type-specific fields.
func decodeEventLine(line, app string) (packedEvent, error) {
	parts := strings.Split(line, ";")

	var tokens [][2]int
	i := 0
	for i < len(parts) {
		a, b, ok := splitTreeToken(parts[i])
		if !ok {
			break
		}
		tokens = append(tokens, [2]int{a, b})
		i++
	}
	if len(tokens) == 0 {
		return packedEvent{}, fmt.Errorf("event line carries no index tree")
	}
	if i >= len(parts) {
		return packedEvent{}, fmt.Errorf("event line missing type field")
	}

	kind, err := eventKindFromString(parts[i])
	if err != nil {
		return packedEvent{}, err
	}
	i++
	rest := parts[i:]

	pe := packedEvent{kind: kind, pack: activityPack{app: app, tree: ktree.DecodeTokens(tokens)}}

	switch kind {
	case event.Tap, event.LongTap, event.DoubleTap:
		if len(rest) != 3 {
			return packedEvent{}, fmt.Errorf("%s event: expected 3 fields (x;y;t), got %d", kind, len(rest))
		}
		if pe.x, err = atoi(rest[0], "x"); err != nil {
			return packedEvent{}, err
		}
		if pe.y, err = atoi(rest[1], "y"); err != nil {
			return packedEvent{}, err
		}
		t, err := atoi64(rest[2], "t")
		if err != nil {
			return packedEvent{}, err
		}
		pe.t = t

	case event.Swipe:
		if len(rest) != 6 {
			return packedEvent{}, fmt.Errorf("swipe event: expected 6 fields (x;y;dx;dy;t0;t1), got %d", len(rest))
		}
		if pe.x, err = atoi(rest[0], "x"); err != nil {
			return packedEvent{}, err
		}
		if pe.y, err = atoi(rest[1], "y"); err != nil {
			return packedEvent{}, err
		}
		if pe.dx, err = atoi(rest[2], "dx"); err != nil {
			return packedEvent{}, err
		}
		if pe.dy, err = atoi(rest[3], "dy"); err != nil {
			return packedEvent{}, err
		}
		if pe.t0, err = atoi64(rest[4], "t0"); err != nil {
			return packedEvent{}, err
		}
		if pe.t1, err = atoi64(rest[5], "t1"); err != nil {
			return packedEvent{}, err
		}

	case event.Key:
		if len(rest) != 3 {
			return packedEvent{}, fmt.Errorf("key event: expected 3 fields (k;c;t), got %d", len(rest))
		}
		pe.k = rest[0]
		c, err := atoi(rest[1], "c")
		if err != nil {
			return packedEvent{}, err
		}
		pe.c = c
		if pe.t, err = atoi64(rest[2], "t"); err != nil {
			return packedEvent{}, err
		}
	}

	return pe, nil
}

func splitTreeToken(field string) (value, childCount int, ok bool) {
	idx := strings.IndexByte(field, ',')
	if idx < 0 {
		return 0, 0, false
	}
	value, errA := strconv.Atoi(field[:idx])
	childCount, errB := strconv.Atoi(field[idx+1:])
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return value, childCount, true
}

func atoi(field, what string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

func atoi64(field, what string) (int64, error) {
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}
