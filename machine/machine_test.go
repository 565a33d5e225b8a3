package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x00 // NoMBC
	rom[0x0149] = 0x00 // no external RAM
	// 0x0100: NOP; NOP; JR -4 (loop back to 0x0100)
	rom[0x0100] = 0x00
	rom[0x0101] = 0x00
	rom[0x0102] = 0x18
	rom[0x0103] = 0xFC
	return rom
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m := New(nil)
	m.DisablePacing()
	require.NoError(t, m.LoadCartridge(minimalROM()))
	return m
}

func TestStepExecutesNOPAndAdvancesPC(t *testing.T) {
	m := newTestMachine(t)
	assert.Equal(t, uint16(0x0100), m.cpu.PC())
	require.NoError(t, m.Step())
	assert.Equal(t, uint16(0x0101), m.cpu.PC())
}

func TestRunUntilFrameCompletesOneVBlank(t *testing.T) {
	m := newTestMachine(t)
	require.NoError(t, m.RunUntilFrame())
	assert.Equal(t, ModeVBlankMode(m), true)
}

// ModeVBlankMode is a tiny helper kept local to the test so it doesn't leak
// an exported accessor just for this assertion.
func ModeVBlankMode(m *Machine) bool {
	return m.ppu.Mode() == 1 // video.ModeVBlank
}

func TestDMATransfersIntoOAMOverOneSixtyMachineCycles(t *testing.T) {
	m := newTestMachine(t)
	m.mem.Write(0xC000, 0x42)
	m.mem.Write(0xFF46, 0xC0)

	assert.True(t, m.dma.Active())
	assert.NotEqual(t, uint8(0x42), m.mem.Read(0xFE00), "byte 0 shouldn't land before its machine cycle elapses")

	m.clock.Add(4) // one machine cycle: copies byte 0
	assert.Equal(t, uint8(0x42), m.mem.Read(0xFE00))
	assert.True(t, m.dma.Active())

	for i := 0; i < 159; i++ {
		m.clock.Add(4) // the remaining 159 bytes, one per machine cycle
	}
	assert.False(t, m.dma.Active())
}

func TestJoypadPressSetsInterruptFlag(t *testing.T) {
	m := newTestMachine(t)
	m.HandleKeyPress(ButtonA)
	assert.NotEqual(t, uint8(0), m.ifReg&0x10)
}

func TestBootROMUnmapOnWrite(t *testing.T) {
	m := newTestMachine(t)
	boot := make([]byte, 0x100)
	m.LoadBootROM(boot)
	assert.True(t, m.mem.BootMapped())
	m.mem.Write(0xFF50, 0x01)
	assert.False(t, m.mem.BootMapped())
}

func TestCopyLogoFromBootROMOverwritesHeader(t *testing.T) {
	m := newTestMachine(t)
	boot := make([]byte, 0x100)
	boot[0xA8] = 0xCE
	m.LoadBootROM(boot)
	m.CopyLogoFromBootROM(boot)
	assert.Equal(t, uint8(0xCE), m.mem.Read(0x0104))
}
