package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestController(vram map[uint16]uint8, oam [0xA0]uint8) *Controller {
	readVRAM := func(address uint16) uint8 { return vram[address] }
	readOAM := func(offset uint8) uint8 { return oam[offset] }
	return New(readVRAM, readOAM, nil, nil, nil)
}

func tickLines(c *Controller, lines int) {
	for i := 0; i < lines*cyclesPerLine; i++ {
		c.Tick(1)
	}
}

func TestModeMachineTimingForOneVisibleLine(t *testing.T) {
	c := newTestController(nil, [0xA0]uint8{})
	assert.Equal(t, ModeOAM, c.Mode())

	c.Tick(cyclesOAM)
	assert.Equal(t, ModeDraw, c.Mode())

	c.Tick(cyclesDraw)
	assert.Equal(t, ModeHBlank, c.Mode())

	c.Tick(cyclesHBlank)
	assert.Equal(t, ModeOAM, c.Mode())
	assert.Equal(t, uint8(1), c.LY)
}

func TestVBlankEntersAfterVisibleLines(t *testing.T) {
	var vblanks int
	c := New(func(uint16) uint8 { return 0 }, func(uint8) uint8 { return 0 }, func() { vblanks++ }, nil, nil)

	tickLines(c, visibleLines)
	assert.Equal(t, ModeVBlank, c.Mode())
	assert.Equal(t, 1, vblanks)
	assert.Equal(t, uint8(visibleLines), c.LY)

	tickLines(c, totalLines-visibleLines)
	assert.Equal(t, ModeOAM, c.Mode())
	assert.Equal(t, uint8(0), c.LY)
}

func TestFrameReadyCallbackFiresOncePerFrame(t *testing.T) {
	frames := 0
	c := New(func(uint16) uint8 { return 0 }, func(uint8) uint8 { return 0 }, nil, nil, func(*Framebuffer) { frames++ })
	tickLines(c, totalLines)
	assert.Equal(t, 1, frames)
}

func TestBackgroundTileRendersThroughPalette(t *testing.T) {
	vram := map[uint16]uint8{
		0x9800: 0x01, // tile map entry 0 -> tile 1
		// tile 1 data at 0x8000 + 16: a solid color-3 row (lo=hi=0xFF)
		0x8010: 0xFF,
		0x8011: 0xFF,
	}
	c := newTestController(vram, [0xA0]uint8{})
	c.LCDC = 0x91 // LCD+BG on, unsigned tile data, 9800 tile map
	c.BGP = 0xE4  // identity-ish: color 3 -> shade 3

	tickLines(c, 1)
	assert.Equal(t, uint8(3), c.Frame().At(0, 0))
}

func TestWindowDisabledLeavesBackgroundVisible(t *testing.T) {
	c := newTestController(nil, [0xA0]uint8{})
	c.LCDC = 0x91
	c.WX, c.WY = 7, 0
	tickLines(c, 1)
	assert.False(t, c.bg.windowActive)
}

func TestSpritePriorityHigherOAMIndexLosesOnOverlap(t *testing.T) {
	var oam [0xA0]uint8
	// Sprite 0: Y=16 (screen row 0), X=8 (screen col 0), tile 0, no flags.
	oam[0], oam[1], oam[2], oam[3] = 16, 8, 0, 0
	// Sprite 1 overlaps the same column with a different tile.
	oam[4], oam[5], oam[6], oam[7] = 16, 8, 1, 0

	vram := map[uint16]uint8{
		0x8000: 0x80, 0x8001: 0x80, // tile 0: leftmost pixel color 3
		0x8010: 0x00, 0x8011: 0x00, // tile 1: blank
	}
	c := newTestController(vram, oam)
	c.LCDC = 0x82 // LCD on, OBJ enabled, background disabled
	c.OBP0 = 0xFF

	tickLines(c, 1)
	assert.Equal(t, uint8(3), c.Frame().At(0, 0))
}

func TestSpriteFetchStallsBackgroundFetcherThenResumes(t *testing.T) {
	var oam [0xA0]uint8
	oam[0], oam[1], oam[2], oam[3] = 16, 8, 0, 0 // sprite at screen column 0

	vram := map[uint16]uint8{
		0x8010: 0xFF,
		0x8011: 0xFF, // background tile 1: solid color 3
		0x8000: 0x00,
		0x8001: 0x00, // sprite tile 0: blank, so the background shows through
	}
	for i := uint16(0); i < Width/8; i++ {
		vram[0x9800+i] = 0x01 // tile 1 across the whole first map row
	}
	c := newTestController(vram, oam)
	c.LCDC = 0x93 // LCD on, BG on, OBJ on
	c.BGP = 0xE4

	tickLines(c, 1)
	assert.Equal(t, uint8(3), c.Frame().At(0, 0), "background pixel should still render once the (transparent) sprite fetch finishes")
	assert.Equal(t, uint8(3), c.Frame().At(159, 0), "background fetch must have caught up to fill the whole line despite the stall")
}
