package memory

import "github.com/kestrel-emu/dmgcore/bit"

// Button identifies one of the eight joypad matrix lines.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// Joypad models the active-low button matrix behind the P1 register: bits
// 5 and 4 select which of the two four-line groups is readable, bits 3-0
// report the selected group's state (0 = pressed).
type Joypad struct {
	pressed    [8]bool
	selectBits uint8
	onPress    func()
}

// NewJoypad returns a Joypad with both groups deselected, the power-on
// state, calling onPress on every newly-pressed button (the matrix's
// rising-edge-to-low transition that fires the joypad interrupt).
func NewJoypad(onPress func()) *Joypad {
	return &Joypad{selectBits: 0x30, onPress: onPress}
}

func (j *Joypad) Press(b Button) {
	if !j.pressed[b] {
		j.pressed[b] = true
		if j.onPress != nil {
			j.onPress()
		}
	}
}

func (j *Joypad) Release(b Button) {
	j.pressed[b] = false
}

func (j *Joypad) nibble(buttons bool) uint8 {
	n := uint8(0x0F)
	offset := 4
	if buttons {
		offset = 0
	}
	for i := uint8(0); i < 4; i++ {
		if j.pressed[int(offset)+int(i)] {
			n = bit.Clear(i, n)
		}
	}
	return n
}

// Callback is installed on addr.P1 via AddressSpace.RegisterCallback.
func (j *Joypad) Callback(address uint16, value uint8, isWrite bool) uint8 {
	if isWrite {
		j.selectBits = value & 0x30
		return 0
	}
	low := uint8(0x0F)
	if j.selectBits&0x20 == 0 {
		low &= j.nibble(true)
	}
	if j.selectBits&0x10 == 0 {
		low &= j.nibble(false)
	}
	return 0xC0 | j.selectBits | low
}
