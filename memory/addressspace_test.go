package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-emu/dmgcore/dmgerr"
)

func TestIllegalRomWriteWithNoCartridge(t *testing.T) {
	a := New()
	var caught error
	func() {
		defer dmgerr.Recover(&caught)
		a.Write(0x1000, 0x42)
	}()
	require.Error(t, caught)
	assert.True(t, errors.Is(caught, dmgerr.IllegalRomWrite))
}

func TestRawROMWriteAllowedInDebugMode(t *testing.T) {
	a := New()
	a.AllowRawROMWrites = true
	rom := make([]byte, 0x8000)
	a.LoadRawROM(rom)
	a.Write(0x1000, 0x42)
	assert.Equal(t, uint8(0x42), a.Read(0x1000))
}

func TestVRAMWRAMOAMHRAMRoundTrip(t *testing.T) {
	a := New()
	a.Write(0x8100, 0x11)
	assert.Equal(t, uint8(0x11), a.Read(0x8100))
	a.Write(0xC100, 0x22)
	assert.Equal(t, uint8(0x22), a.Read(0xC100))
	assert.Equal(t, uint8(0x22), a.Read(0xE100), "echo ram mirrors wram")
	a.Write(0xFE10, 0x33)
	assert.Equal(t, uint8(0x33), a.Read(0xFE10))
	a.Write(0xFF90, 0x44)
	assert.Equal(t, uint8(0x44), a.Read(0xFF90))
}

func TestUninitializedRegisterReadsFF(t *testing.T) {
	a := New()
	assert.Equal(t, uint8(0xFF), a.Read(0xFF10))
}

func TestDirectRegister(t *testing.T) {
	a := New()
	var backing uint8 = 0x07
	a.RegisterDirect(0xFF47, &backing)
	assert.Equal(t, uint8(0x07), a.Read(0xFF47))
	a.Write(0xFF47, 0x09)
	assert.Equal(t, uint8(0x09), backing)
}

func TestCallbackRegister(t *testing.T) {
	a := New()
	var seen uint8
	a.RegisterCallback(0xFF01, func(address uint16, value uint8, isWrite bool) uint8 {
		if isWrite {
			seen = value
			return 0
		}
		return seen + 1
	})
	a.Write(0xFF01, 0x05)
	assert.Equal(t, uint8(0x05), seen)
	assert.Equal(t, uint8(0x06), a.Read(0xFF01))
}

func TestWordAccessOnRegisterIsIllegal(t *testing.T) {
	a := New()
	var caught error
	func() {
		defer dmgerr.Recover(&caught)
		a.ReadWord(0xFF40)
	}()
	require.Error(t, caught)
	assert.True(t, errors.Is(caught, dmgerr.WordOnIoRegister))
}

func TestCopyOAMDMA(t *testing.T) {
	a := New()
	for i := 0; i < 0xA0; i++ {
		a.Write(0xC000+uint16(i), uint8(i))
	}
	a.Copy(0xFE00, 0xC000, 0xA0)
	for i := 0; i < 0xA0; i++ {
		assert.Equal(t, uint8(i), a.Read(0xFE00+uint16(i)))
	}
}

func TestBootROMOverlayAndUnmap(t *testing.T) {
	a := New()
	boot := make([]byte, 0x100)
	boot[0] = 0xAA
	a.LoadBootROM(boot)

	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x00
	rom[0] = 0xBB
	cart, err := LoadCartridge(rom)
	require.NoError(t, err)
	a.LoadCartridge(cart)

	assert.Equal(t, uint8(0xAA), a.Read(0x0000))
	a.UnmapBootROM()
	assert.Equal(t, uint8(0xBB), a.Read(0x0000))
}

func TestJoypadMatrix(t *testing.T) {
	pressCount := 0
	j := NewJoypad(func() { pressCount++ })
	a := New()
	a.RegisterCallback(0xFF00, j.Callback)

	a.Write(0xFF00, 0xDF) // select buttons (bit5=0)
	j.Press(ButtonA)
	assert.Equal(t, 1, pressCount)
	got := a.Read(0xFF00)
	assert.Equal(t, uint8(0), got&0x01, "A pressed reads as 0")

	a.Write(0xFF00, 0xEF) // select dpad (bit4=0)
	got = a.Read(0xFF00)
	assert.Equal(t, uint8(0x0F), got&0x0F, "no direction pressed")
}

func TestMBC1Banking(t *testing.T) {
	rom := make([]byte, 0x20000) // 128KiB, 8 banks of 0x4000
	rom[cartTypeOffset] = 0x01
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	cart, err := LoadCartridge(rom)
	require.NoError(t, err)
	a := New()
	a.LoadCartridge(cart)

	assert.Equal(t, uint8(0), a.Read(0x0000), "bank 0 fixed window")
	a.Write(0x2000, 0x03) // select bank 3
	assert.Equal(t, uint8(3), a.Read(0x4000))
	a.Write(0x2000, 0x00) // bank 0 in the switchable window maps to bank 1
	assert.Equal(t, uint8(1), a.Read(0x4000))
}
