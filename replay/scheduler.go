// Package replay drives a recorded event sequence back against a device,
// honoring inter-event timing and delegating actual input dispatch to one
// of the Px/Pt/Wdg/Res strategies.
package replay

import (
	"context"
	"log"
	"time"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/event"
)

// Strategy dispatches one event against the replay device. seq is the
// remainder of the sequence (the current event already popped); Res uses it
// for K-lookahead, popping extra events on a skip. Other strategies ignore
// it.
type Strategy interface {
	Name() string
	Dispatch(ctx context.Context, seq *event.Sequence, e event.Event) error
}

// Scheduler pops events from a sequence one at a time, sleeping between them
// when TimeSensitive is set, and hands each to a Strategy.
type Scheduler struct {
	// TimeSensitive replays at the recorded pace (sleeping
	// max(0, e.t-prev.t) milliseconds between events). NewScheduler sets
	// it to true; the zero value of Scheduler has it false.
	TimeSensitive bool
}

// NewScheduler returns a time-sensitive Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{TimeSensitive: true}
}

// Run drives seq to exhaustion against strategy, honoring ctx cancellation
// during the inter-event sleep. A strategy's NotImplementedError (or any
// other error) aborts the remaining sequence.
func (s *Scheduler) Run(ctx context.Context, seq *event.Sequence, strategy Strategy) error {
	var prevT int64
	first := true

	for !seq.Empty() {
		e, ok := seq.Pop()
		if !ok {
			break
		}

		if s.TimeSensitive && !first {
			delay := time.Duration(e.Timestamp()-prevT) * time.Millisecond
			if delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
		}
		first = false
		prevT = e.Timestamp()

		log.Printf("replay[%s]: %s", strategy.Name(), e.String())

		if err := strategy.Dispatch(ctx, seq, e); err != nil {
			return err
		}
	}
	return nil
}

// warnIfDeviceMismatch logs a one-line warning when the recorded and replay
// devices differ in a way a strategy should account for.
func warnIfDeviceMismatch(recorded, replay device.Info) {
	if recorded.Width != replay.Width || recorded.Height != replay.Height || recorded.DPI != replay.DPI {
		log.Printf("replay: device mismatch: recorded %dx%d@%d, replay %dx%d@%d",
			recorded.Width, recorded.Height, recorded.DPI, replay.Width, replay.Height, replay.DPI)
	}
}
