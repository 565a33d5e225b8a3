package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-emu/dmgcore/addr"
)

// fakeBus is a flat 64KiB byte array standing in for the address space in
// unit tests; it counts ticked cycles but performs no pacing or side
// effects.
type fakeBus struct {
	mem    [0x10000]uint8
	ticked uint32
}

func (b *fakeBus) Read(a uint16) uint8        { return b.mem[a] }
func (b *fakeBus) Write(a uint16, v uint8)    { b.mem[a] = v }
func (b *fakeBus) Tick(cycles uint8)          { b.ticked += uint32(cycles) }

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	return New(bus), bus
}

func TestInitialRegisterState(t *testing.T) {
	c, _ := newTestCPU()
	assert.Equal(t, uint16(0x01B0), c.AF())
	assert.Equal(t, uint16(0x0013), c.BC())
	assert.Equal(t, uint16(0x00D8), c.DE())
	assert.Equal(t, uint16(0x014D), c.HL())
	assert.Equal(t, uint16(0xFFFE), c.SP())
	assert.Equal(t, uint16(0x0100), c.PC())
	assert.True(t, c.r.GuardIntact())
}

func TestNOP(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0x00
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), cycles)
	assert.Equal(t, uint16(0x0101), c.PC())
}

func TestIllegalInstruction(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0xD3
	_, err := c.Step()
	require.Error(t, err)
}

func TestMVRegToReg(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setByte(RegB, 0x42)
	bus.mem[0x0100] = 0x78 // MV A,B
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), cycles)
	assert.Equal(t, uint8(0x42), c.r.getByte(RegA))
}

func TestMVThroughHL(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setWord(RegHL, 0xC000)
	bus.mem[0xC000] = 0x99
	bus.mem[0x0100] = 0x7E // MV A,(HL)
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(8), cycles)
	assert.Equal(t, uint8(0x99), c.r.getByte(RegA))
}

func TestADDSetsFlags(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setByte(RegA, 0x0F)
	c.r.setByte(RegB, 0x01)
	bus.mem[0x0100] = 0x80 // ADD A,B
	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x10), c.r.getByte(RegA))
	assert.True(t, c.r.flag(FlagH))
	assert.False(t, c.r.flag(FlagZ))
	assert.False(t, c.r.flag(FlagC))
}

func TestADDCarry(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setByte(RegA, 0xFF)
	c.r.setByte(RegB, 0x01)
	bus.mem[0x0100] = 0x80 // ADD A,B
	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), c.r.getByte(RegA))
	assert.True(t, c.r.flag(FlagZ))
	assert.True(t, c.r.flag(FlagH))
	assert.True(t, c.r.flag(FlagC))
}

func TestSUBUnderflow(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setByte(RegA, 0x00)
	c.r.setByte(RegB, 0x01)
	bus.mem[0x0100] = 0x90 // SUB B
	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), c.r.getByte(RegA))
	assert.True(t, c.r.flag(FlagC))
	assert.True(t, c.r.flag(FlagH))
	assert.True(t, c.r.flag(FlagN))
}

func TestINCDoesNotTouchCarry(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setByte(RegA, 0xFF)
	c.r.setFlag(FlagC, true)
	bus.mem[0x0100] = 0x3C // INC A
	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), c.r.getByte(RegA))
	assert.True(t, c.r.flag(FlagZ))
	assert.True(t, c.r.flag(FlagH))
	assert.True(t, c.r.flag(FlagC), "INC must not touch the carry flag")
}

func TestJumpNotTakenCycleCost(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setFlag(FlagZ, false)
	bus.mem[0x0100] = 0xCA // JP Z,nn
	bus.mem[0x0101] = 0x00
	bus.mem[0x0102] = 0xC0
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(12), cycles)
	assert.Equal(t, uint16(0x0103), c.PC())
}

func TestJumpTaken(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setFlag(FlagZ, true)
	bus.mem[0x0100] = 0xCA // JP Z,nn
	bus.mem[0x0101] = 0x00
	bus.mem[0x0102] = 0xC0
	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(16), cycles)
	assert.Equal(t, uint16(0xC000), c.PC())
}

func TestCallAndReturn(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0xCD // CALL nn
	bus.mem[0x0101] = 0x00
	bus.mem[0x0102] = 0xC0
	bus.mem[0xC000] = 0xC9 // RET
	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xC000), c.PC())
	assert.Equal(t, uint16(0xFFFE-2), c.SP())

	_, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0103), c.PC())
	assert.Equal(t, uint16(0xFFFE), c.SP())
}

func TestPushPopMasksFlagsNibble(t *testing.T) {
	c, _ := newTestCPU()
	c.r.setWord(RegAF, 0x1234)
	c.push(c.r.getWord(RegAF))
	c.r.setWord(RegAF, 0)
	got := c.pop()
	assert.Equal(t, uint8(0x12), bitHigh(got))
	assert.Equal(t, uint8(0x30), bitLow(got), "low nibble of F must read back zero")
}

func bitHigh(v uint16) uint8 { return uint8(v >> 8) }
func bitLow(v uint16) uint8  { return uint8(v) }

func TestEIDelaysEnableByOneInstruction(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0xFB // EI
	bus.mem[0x0101] = 0x00 // NOP
	bus.mem[0x0102] = 0x00 // NOP

	_, err := c.Step()
	require.NoError(t, err)
	assert.False(t, c.IME(), "IME must not be active during the instruction right after EI")

	_, err = c.Step()
	require.NoError(t, err)
	assert.False(t, c.IME(), "IME activates only once the instruction after EI has completed")

	_, err = c.Step()
	require.NoError(t, err)
	assert.True(t, c.IME())
}

func TestInterruptDispatch(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setWord(RegPC, 0x0150)
	c.ime = true
	bus.Write(addr.IE, 0x01)
	bus.Write(addr.IF, 0x01)
	bus.mem[0x0150] = 0x00 // NOP, never reached: interrupt wins the race

	cycles, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(20), cycles)
	assert.Equal(t, uint16(0x40), c.PC())
	assert.False(t, c.IME())
	assert.Equal(t, uint8(0x00), bus.Read(addr.IF))
}

func TestHaltWakesOnPendingInterruptEvenWithIMEOff(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x0100] = 0x76 // HALT
	c.ime = false
	_, err := c.Step()
	require.NoError(t, err)
	assert.True(t, c.halted)

	bus.Write(addr.IE, 0x01)
	bus.Write(addr.IF, 0x01)
	_, err = c.Step()
	require.NoError(t, err)
	assert.False(t, c.halted, "a pending enabled interrupt wakes the CPU even with IME disabled")
}
