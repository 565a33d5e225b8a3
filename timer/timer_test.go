package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel-emu/dmgcore/addr"
)

func TestTIMAIncrementsOnFallingEdge(t *testing.T) {
	fired := 0
	tm := New(func() { fired++ })
	tm.Write(addr.TAC, 0x05) // enabled, select bit 3 (period 16)
	tm.Tick(16)
	assert.Equal(t, uint8(1), tm.Read(addr.TIMA))
	assert.Equal(t, 0, fired)
}

func TestTIMAOverflowReloadsAndInterruptsImmediately(t *testing.T) {
	fired := 0
	tm := New(func() { fired++ })
	tm.Write(addr.TMA, 0xAB)
	tm.Write(addr.TAC, 0x05) // period 16
	tm.Write(addr.TIMA, 0xFF)
	tm.Tick(16) // one falling edge: TIMA wraps to 0 and reloads from TMA right away
	assert.Equal(t, uint8(0xAB), tm.Read(addr.TIMA))
	assert.Equal(t, 1, fired)
}

func TestDisabledTimerDoesNotTick(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x01) // disabled (bit 2 clear), select bit 3
	for i := 0; i < 4; i++ {
		tm.Tick(250) // 1000 T-cycles in total
	}
	assert.Equal(t, uint8(0), tm.Read(addr.TIMA))
}

func TestDIVWriteResetsCounter(t *testing.T) {
	tm := New(nil)
	tm.Tick(150)
	tm.Tick(150) // 300 T-cycles in total
	before := tm.Read(addr.DIV)
	assert.NotEqual(t, uint8(0), before)
	tm.Write(addr.DIV, 0xFF)
	assert.Equal(t, uint8(0), tm.Read(addr.DIV))
}

func TestDIVWriteGlitchIncrementsTIMA(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x05) // enabled, selected bit 3
	tm.Tick(8)               // counter=8, bit3 (value 8) is set
	require := tm.Read(addr.TIMA)
	assert.Equal(t, uint8(0), require)
	tm.Write(addr.DIV, 0x00) // resetting while the selected bit was high is a falling edge
	assert.Equal(t, uint8(1), tm.Read(addr.TIMA))
}
