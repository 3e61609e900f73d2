package device

import (
	"context"

	"github.com/connglli/dxpk/dxerr"
)

// transientViewCode is the "root null" code input.View returns while the
// on-device window hierarchy hasn't settled yet.
const transientViewCode = 6

// transientSelectCode is the analogous code for Select.
const transientSelectCode = 2

// maxRetries bounds the silent retry loop for transient conditions (§7:
// "retries transient root==null ... up to three times silently").
const maxRetries = 3

// RetryView calls in.View up to maxRetries times total while it reports the
// transient "root null" code (§8 S4: 6,6,0 succeeds on the third call;
// 6,6,6 fails after exactly three), translating code 5 into NoSuchViewError
// and any other nonzero code into DeviceCommandError.
func RetryView(ctx context.Context, in Input, kind ViewInputKind, opts ViewSelector) error {
	var lastCode int
	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := in.View(ctx, kind, opts)
		if err != nil {
			return err
		}
		switch code {
		case 0:
			return nil
		case 5:
			return dxerr.NewNoSuchViewError(describeSelector(opts))
		case transientViewCode:
			lastCode = code
			continue
		default:
			return dxerr.NewDeviceCommandError("input.view", code)
		}
	}
	return dxerr.NewDeviceCommandError("input.view", lastCode)
}

// RetrySelect calls in.Select up to maxRetries times total while it reports
// the transient "root null" code, the Select counterpart of RetryView.
func RetrySelect(ctx context.Context, in Input, opts ViewSelector, n int) ([]ViewMap, error) {
	var lastCode int
	for attempt := 0; attempt < maxRetries; attempt++ {
		views, code, err := in.Select(ctx, opts, n)
		if err != nil {
			return nil, err
		}
		if code == 0 {
			return views, nil
		}
		if code != transientSelectCode {
			return nil, dxerr.NewDeviceCommandError("input.select", code)
		}
		lastCode = code
	}
	return nil, dxerr.NewDeviceCommandError("input.select", lastCode)
}

func describeSelector(opts ViewSelector) string {
	s := opts.ResIDContains
	if s == "" {
		s = opts.TextContains
	}
	if s == "" {
		s = opts.DescContains
	}
	if s == "" {
		s = "<no identifiers>"
	}
	return s
}
