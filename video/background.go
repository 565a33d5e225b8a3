package video

import "github.com/kestrel-emu/dmgcore/bit"

// FetchStage is one step of the 4-stage tile fetch: read the tile number
// from the tile map, read the low bit-plane byte, read the high
// bit-plane byte, then push the decoded row into the FIFO.
type FetchStage uint8

const (
	StageTileNo FetchStage = iota
	StageDataLo
	StageDataHi
	StagePush
)

// BackgroundFetcher drives the background/window half of the pipeline.
// Each of the first three stages takes two dots, matching the real
// fetcher; the push stage is instantaneous once the FIFO has room.
type BackgroundFetcher struct {
	stage FetchStage
	dots  uint8

	tileIndex uint8
	rowLo     uint8
	rowHi     uint8

	column       uint8
	discard      uint8
	windowActive bool
}

func (f *BackgroundFetcher) ResetForLine(c *Controller) {
	f.stage = StageTileNo
	f.dots = 0
	f.column = 0
	f.discard = c.SCX % 8
	f.windowActive = false
}

func (f *BackgroundFetcher) mapBase(c *Controller) uint16 {
	selectBit := uint8(3)
	if f.windowActive {
		selectBit = 6
	}
	if bit.IsSet(selectBit, c.LCDC) {
		return 0x9C00
	}
	return 0x9800
}

func (f *BackgroundFetcher) tileRow(c *Controller) uint16 {
	if f.windowActive {
		return uint16(c.windowLineCounter % 8)
	}
	return uint16((uint16(c.LY) + uint16(c.SCY)) % 8)
}

func (f *BackgroundFetcher) mapIndex(c *Controller) uint16 {
	if f.windowActive {
		row := uint16(c.windowLineCounter/8) * 32
		return row + uint16(f.column/8)
	}
	row := uint16((uint16(c.LY)+uint16(c.SCY))/8%32) * 32
	col := uint16((uint16(c.SCX)/8 + uint16(f.column)/8) % 32)
	return row + col
}

func tileDataBase(lcdc uint8, tileIndex uint8) uint16 {
	if bit.IsSet(4, lcdc) {
		return 0x8000 + uint16(tileIndex)*16
	}
	return uint16(int32(0x9000) + int32(int8(tileIndex))*16)
}

func (f *BackgroundFetcher) Step(c *Controller) {
	switch f.stage {
	case StageTileNo:
		f.dots++
		if f.dots >= 2 {
			f.tileIndex = c.readVRAM(f.mapBase(c) + f.mapIndex(c))
			f.stage = StageDataLo
			f.dots = 0
		}
	case StageDataLo:
		f.dots++
		if f.dots >= 2 {
			base := tileDataBase(c.LCDC, f.tileIndex)
			f.rowLo = c.readVRAM(base + f.tileRow(c)*2)
			f.stage = StageDataHi
			f.dots = 0
		}
	case StageDataHi:
		f.dots++
		if f.dots >= 2 {
			base := tileDataBase(c.LCDC, f.tileIndex)
			f.rowHi = c.readVRAM(base + f.tileRow(c)*2 + 1)
			f.stage = StagePush
			f.dots = 0
		}
	case StagePush:
		if c.bgFIFO.Size() > 8 {
			return
		}
		for col := 7; col >= 0; col-- {
			lo := (f.rowLo >> uint(col)) & 1
			hi := (f.rowHi >> uint(col)) & 1
			color := (hi << 1) | lo
			if f.discard > 0 {
				f.discard--
				continue
			}
			c.bgFIFO.Push(Pixel{Color: color})
		}
		f.column += 8
		f.stage = StageTileNo
	}
}
