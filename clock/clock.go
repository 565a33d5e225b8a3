// Package clock provides the cycle bus the CPU drives: a single
// scheduling point that fans T-cycle counts out to subscribers (the
// timer, the graphics controller) in registration order and paces wall
// clock time to match real hardware.
package clock

import "time"

// CyclesPerSecond is the DMG system clock frequency.
const CyclesPerSecond = 4194304

const cyclePeriod = time.Second / CyclesPerSecond

// Subscriber receives every cycle count the bus is given, in the order
// Subscribe registered them.
type Subscriber interface {
	Tick(cycles uint8)
}

// Bus is the CPU's cycle sink. Add fans out to subscribers and then
// busy-waits until the corresponding wall-clock duration has elapsed,
// unless pacing has been disabled (tests, headless frame-count runs).
type Bus struct {
	subscribers  []Subscriber
	pacing       bool
	nextDeadline time.Time
}

// NewBus returns a Bus with wall-clock pacing enabled.
func NewBus() *Bus {
	return &Bus{pacing: true, nextDeadline: time.Now()}
}

// DisablePacing turns off the busy-wait, letting Add return as soon as
// subscribers have processed the cycles. Used by tests and the CLI's
// headless/frame-count mode.
func (b *Bus) DisablePacing() {
	b.pacing = false
}

func (b *Bus) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

// Add fans cycles out to every subscriber, then paces wall-clock time to
// match, if pacing is enabled.
func (b *Bus) Add(cycles uint8) {
	for _, s := range b.subscribers {
		s.Tick(cycles)
	}
	if !b.pacing {
		return
	}
	b.nextDeadline = b.nextDeadline.Add(time.Duration(cycles) * cyclePeriod)
	for time.Now().Before(b.nextDeadline) {
	}
}

// Reset realigns the pacing deadline to now, so a long pause (a debugger
// breakpoint, a paused UI) doesn't make Add spin trying to catch up.
func (b *Bus) Reset() {
	b.nextDeadline = time.Now()
}
