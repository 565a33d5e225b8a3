// Package timer implements the DIV/TIMA/TMA/TAC timer: a free-running
// 16-bit counter (DIV is its high byte) driving TIMA on the falling edge
// of a TAC-selected bit, reloading TIMA from TMA and raising the timer
// interrupt as soon as TIMA overflows.
package timer

import (
	"github.com/kestrel-emu/dmgcore/addr"
	"github.com/kestrel-emu/dmgcore/bit"
)

// tacSelectBit maps TAC's low two bits to the counter bit whose falling
// edge clocks TIMA (periods of 1024/16/64/256 T-cycles respectively).
var tacSelectBit = [4]uint8{9, 3, 5, 7}

type Timer struct {
	counter uint16
	tima    uint8
	tma     uint8
	tac     uint8

	lastBit bool

	requestInterrupt func()
}

func New(requestInterrupt func()) *Timer {
	return &Timer{requestInterrupt: requestInterrupt}
}

func (t *Timer) enabled() bool      { return t.tac&0x04 != 0 }
func (t *Timer) selectedBit() uint8 { return tacSelectBit[t.tac&0x03] }

func (t *Timer) currentBit() bool {
	return t.enabled() && bit.IsSet16(t.selectedBit(), t.counter)
}

// Tick advances the timer by cycles T-cycles, one at a time so the
// falling-edge detector sees every intermediate counter value.
func (t *Timer) Tick(cycles uint8) {
	for i := uint8(0); i < cycles; i++ {
		t.step()
	}
}

func (t *Timer) step() {
	t.counter++
	nowBit := t.currentBit()
	if t.lastBit && !nowBit {
		t.incrementTIMA()
	}
	t.lastBit = nowBit
}

// incrementTIMA increments TIMA and, on overflow to 0, reloads it from
// TMA and raises the timer interrupt immediately.
func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima == 0 {
		t.tima = t.tma
		if t.requestInterrupt != nil {
			t.requestInterrupt()
		}
	}
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return bit.High(t.counter)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		// Any write resets the whole counter. If the TAC-selected bit was
		// high beforehand, the reset is itself a falling edge and ticks
		// TIMA once, the same glitch real hardware exhibits.
		wasHigh := t.currentBit()
		t.counter = 0
		if wasHigh {
			t.incrementTIMA()
		}
		t.lastBit = t.currentBit()
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}

// Callback is installed on each of DIV/TIMA/TMA/TAC via
// memory.AddressSpace.RegisterCallback.
func (t *Timer) Callback(address uint16, value uint8, isWrite bool) uint8 {
	if isWrite {
		t.Write(address, value)
		return 0
	}
	return t.Read(address)
}
