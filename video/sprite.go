package video

// SpriteFetcher drives the sprite half of the pixel pipeline: the same
// four-state TileNo/DataLo/DataHi/Push machine as BackgroundFetcher, but
// triggered per OAM entry rather than running continuously, and merged
// into spriteFIFO by priority at the entry's screen column rather than
// simply appended at the tail.
//
// While a fetch is in flight, both the background fetcher and the pixel
// cursor are paused (the same stall real hardware imposes for the
// duration of a sprite fetch), modeled here as a fixed one-trigger-dot
// plus six-fetch-dot stall rather than hardware's variable 6-11 dot
// penalty. Pausing the cursor keeps the fetch's absolute screen column
// aligned with the FIFO offset it merges into at Push.
type SpriteFetcher struct {
	stage FetchStage
	dots  uint8

	rowLo uint8
	rowHi uint8

	entries []OAMEntry
	nextIdx int
	active  bool
	current OAMEntry

	ly          uint8
	tallSprites bool
	enabled     bool
}

// ResetForLine arms the fetcher with this line's x-sorted OAM scan
// results (already produced by ScanLine).
func (f *SpriteFetcher) ResetForLine(entries []OAMEntry, ly uint8, tallSprites, enabled bool) {
	f.entries = entries
	f.nextIdx = 0
	f.active = false
	f.ly = ly
	f.tallSprites = tallSprites
	f.enabled = enabled
}

// Active reports whether a fetch is in flight. The background fetcher and
// the pixel cursor both pause while this is true.
func (f *SpriteFetcher) Active() bool { return f.active }

// Step advances the fetcher by one dot. If no fetch is in progress, it
// checks whether the next unfetched entry has come into range (the
// has_pixels(x) lower bound, entry.x-8) and starts one; otherwise it
// advances whatever fetch is already running. LCDC bit 1 (sprite/OBJ
// enable) gates whether new fetches start at all, matching real hardware
// skipping sprite fetches entirely while OBJ display is off.
func (f *SpriteFetcher) Step(c *Controller) {
	if !f.active {
		if !f.enabled || f.nextIdx >= len(f.entries) {
			return
		}
		e := f.entries[f.nextIdx]
		if int(c.cursorX) < int(e.X)-8 {
			return
		}
		f.active = true
		f.current = e
		f.stage = StageTileNo
		f.dots = 0
		return
	}

	switch f.stage {
	case StageTileNo:
		f.dots++
		if f.dots >= 2 {
			f.stage = StageDataLo
			f.dots = 0
		}
	case StageDataLo:
		f.dots++
		if f.dots >= 2 {
			base, row := f.tileAddr()
			f.rowLo = c.readVRAM(base + row*2)
			f.stage = StageDataHi
			f.dots = 0
		}
	case StageDataHi:
		f.dots++
		if f.dots >= 2 {
			base, row := f.tileAddr()
			f.rowHi = c.readVRAM(base + row*2 + 1)
			f.stage = StagePush
			f.dots = 0
		}
	case StagePush:
		f.push(c)
		f.active = false
		f.nextIdx++
	}
}

// tileAddr resolves the tile data address and row for the current entry,
// handling y-flip and the 8x16 tile-stitching LCDC bit 2 enables.
func (f *SpriteFetcher) tileAddr() (base uint16, row uint16) {
	height := 8
	tile := f.current.Tile
	if f.tallSprites {
		height = 16
		tile &^= 0x01
	}

	r := int(f.ly) - (int(f.current.Y) - 16)
	if f.current.YFlip() {
		r = height - 1 - r
	}
	if f.tallSprites && r >= 8 {
		tile++
		r -= 8
	}

	return 0x8000 + uint16(tile)*16, uint16(r)
}

func (f *SpriteFetcher) push(c *Controller) {
	discard := uint8(0)
	if f.current.X < 8 {
		discard = 8 - f.current.X
	}

	entryScreenX := int(f.current.X) - 8
	for col := 0; col < 8; col++ {
		bitPos := col
		if !f.current.XFlip() {
			bitPos = 7 - col
		}
		loBit := (f.rowLo >> uint(bitPos)) & 1
		hiBit := (f.rowHi >> uint(bitPos)) & 1
		color := (hiBit << 1) | loBit

		if discard > 0 {
			discard--
			continue
		}
		if color == 0 {
			continue
		}

		screenX := entryScreenX + col
		offset := screenX - int(c.cursorX)
		c.spriteFIFO.MergeAt(offset, Pixel{
			Color:       color,
			PaletteSlot: f.current.PaletteSlot(),
			BGPriority:  f.current.BGPriority(),
			IsSprite:    true,
		})
	}
}
