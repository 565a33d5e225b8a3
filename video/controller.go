package video

import "github.com/kestrel-emu/dmgcore/bit"

// Mode is one of the four PPU states, packed into STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAM
	ModeDraw
)

const (
	cyclesOAM     = 80
	cyclesDraw    = 172
	cyclesHBlank  = 204
	cyclesPerLine = cyclesOAM + cyclesDraw + cyclesHBlank // 456
	visibleLines  = 144
	totalLines    = 154
)

// Controller is the graphics controller: the LCDC/STAT/SCY/SCX/LY/LYC and
// palette register bank, the OAM/Draw/HBlank/VBlank mode machine, and the
// background/sprite fetchers it drives. OAM DMA is a separate clock-bus
// subscriber the machine package owns; this package only reads OAM through
// readOAM.
type Controller struct {
	LCDC, STAT      uint8
	SCY, SCX        uint8
	LY, LYC         uint8
	BGP, OBP0, OBP1 uint8
	WY, WX          uint8

	mode       Mode
	lineCycles int

	cursorX                 uint8
	windowLineCounter       uint8
	windowTriggeredThisLine bool

	bgFIFO FIFO
	bg     BackgroundFetcher

	spriteFIFO FIFO
	sp         SpriteFetcher

	oamEntries []OAMEntry

	frame Framebuffer

	readVRAM       func(address uint16) uint8
	readOAM        func(offset uint8) uint8
	requestVBlank  func()
	requestLCDSTAT func()
	frameReady     func(*Framebuffer)
}

func New(readVRAM func(uint16) uint8, readOAM func(uint8) uint8, requestVBlank, requestLCDSTAT func(), frameReady func(*Framebuffer)) *Controller {
	return &Controller{
		LCDC:           0x91,
		STAT:           0x85,
		BGP:            0xFC,
		OBP0:           0xFF,
		OBP1:           0xFF,
		mode:           ModeOAM,
		readVRAM:       readVRAM,
		readOAM:        readOAM,
		requestVBlank:  requestVBlank,
		requestLCDSTAT: requestLCDSTAT,
		frameReady:     frameReady,
	}
}

func (c *Controller) Mode() Mode          { return c.mode }
func (c *Controller) Frame() *Framebuffer { return &c.frame }
func (c *Controller) lcdEnabled() bool    { return bit.IsSet(7, c.LCDC) }

// Tick advances the mode machine one T-cycle at a time so the background
// fetcher's two-dot stages and the pixel cursor stay in lockstep.
func (c *Controller) Tick(cycles uint8) {
	if !c.lcdEnabled() {
		return
	}
	for i := uint8(0); i < cycles; i++ {
		c.step()
	}
}

func (c *Controller) step() {
	c.lineCycles++
	switch c.mode {
	case ModeOAM:
		if c.lineCycles == 1 {
			c.oamEntries = ScanLine(c.readOAM, c.LY, bit.IsSet(2, c.LCDC))
		}
		if c.lineCycles >= cyclesOAM {
			c.enterDraw()
		}
	case ModeDraw:
		c.stepDraw()
	case ModeHBlank:
		if c.lineCycles >= cyclesPerLine {
			c.enterNextLineOrVBlank()
		}
	case ModeVBlank:
		if c.lineCycles >= cyclesPerLine {
			c.lineCycles = 0
			c.LY++
			if c.LY >= totalLines {
				c.LY = 0
				c.enterOAM()
			}
			c.checkLYC()
		}
	}
}

func (c *Controller) enterDraw() {
	c.setMode(ModeDraw)
	c.bgFIFO.Clear()
	c.bg = BackgroundFetcher{}
	c.bg.ResetForLine(c)
	c.spriteFIFO.Clear()
	c.sp = SpriteFetcher{}
	c.sp.ResetForLine(c.oamEntries, c.LY, bit.IsSet(2, c.LCDC), bit.IsSet(1, c.LCDC))
	c.cursorX = 0
	c.windowTriggeredThisLine = false
}

func (c *Controller) stepDraw() {
	c.checkWindowTrigger()
	c.sp.Step(c)
	if c.sp.Active() {
		return
	}
	c.bg.Step(c)
	if c.bgFIFO.Size() == 0 {
		return
	}

	bgPixel := c.bgFIFO.Pop()
	if !bit.IsSet(0, c.LCDC) {
		bgPixel.Color = 0
	}

	var spritePixel Pixel
	spritePresent := bit.IsSet(1, c.LCDC) && c.spriteFIFO.Size() > 0
	if spritePresent {
		spritePixel = c.spriteFIFO.Pop()
	}
	final := Mix(bgPixel, spritePixel, spritePresent)

	var shade uint8
	if final.IsSprite {
		pal := Palette(c.OBP0)
		if final.PaletteSlot == 1 {
			pal = Palette(c.OBP1)
		}
		shade = pal.Shade(final.Color)
	} else {
		shade = Palette(c.BGP).Shade(final.Color)
	}
	c.frame.Set(int(c.cursorX), int(c.LY), shade)

	c.cursorX++
	if c.cursorX >= Width {
		c.enterHBlank()
	}
}

func (c *Controller) checkWindowTrigger() {
	if c.windowTriggeredThisLine || c.bg.windowActive {
		return
	}
	if !bit.IsSet(5, c.LCDC) {
		return
	}
	if c.LY < c.WY {
		return
	}
	if int(c.cursorX)+7 < int(c.WX) {
		return
	}

	c.bg.windowActive = true
	c.bg.column = 0
	c.bg.stage = StageTileNo
	c.bg.dots = 0
	c.bgFIFO.Clear()
	c.windowTriggeredThisLine = true
}

func (c *Controller) enterHBlank() {
	c.setMode(ModeHBlank)
	if c.bg.windowActive {
		c.windowLineCounter++
	}
}

func (c *Controller) enterNextLineOrVBlank() {
	c.lineCycles = 0
	c.LY++
	c.checkLYC()
	if c.LY >= visibleLines {
		c.setMode(ModeVBlank)
		if c.requestVBlank != nil {
			c.requestVBlank()
		}
		if c.frameReady != nil {
			c.frameReady(&c.frame)
		}
		return
	}
	c.enterOAM()
}

func (c *Controller) enterOAM() {
	c.lineCycles = 0
	c.setMode(ModeOAM)
}

func (c *Controller) setMode(m Mode) {
	c.mode = m
	c.STAT = (c.STAT &^ 0x03) | modeBits(m)
	switch m {
	case ModeHBlank:
		c.maybeRaiseSTAT(3)
	case ModeVBlank:
		c.maybeRaiseSTAT(4)
	case ModeOAM:
		c.maybeRaiseSTAT(5)
	}
}

func (c *Controller) maybeRaiseSTAT(enableBit uint8) {
	if bit.IsSet(enableBit, c.STAT) && c.requestLCDSTAT != nil {
		c.requestLCDSTAT()
	}
}

func modeBits(m Mode) uint8 {
	switch m {
	case ModeHBlank:
		return 0
	case ModeVBlank:
		return 1
	case ModeOAM:
		return 2
	case ModeDraw:
		return 3
	}
	return 0
}

func (c *Controller) checkLYC() {
	match := c.LY == c.LYC
	c.STAT = bit.SetToCondition(2, c.STAT, match)
	if match {
		c.maybeRaiseSTAT(6)
	}
}

// STATCallback backs address 0xFF41. Bits 2-0 reflect live mode/LYC state
// and reject writes; bits 7-3 hold the interrupt-enable mask software sets.
func (c *Controller) STATCallback(address uint16, value uint8, isWrite bool) uint8 {
	if isWrite {
		c.STAT = (c.STAT & 0x07) | (value & 0xF8)
		return 0
	}
	return c.STAT | 0x80
}

// LYCallback backs address 0xFF44, read-only from software's perspective.
func (c *Controller) LYCallback(address uint16, value uint8, isWrite bool) uint8 {
	if isWrite {
		return 0
	}
	return c.LY
}
