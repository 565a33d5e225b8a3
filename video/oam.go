package video

import "github.com/kestrel-emu/dmgcore/bit"

// OAMEntry is one sprite attribute table entry as scanned for the
// current line: raw Y/X/tile/attribute bytes, plus the OAM slot index
// used to break X ties in the fetch order.
type OAMEntry struct {
	Y, X, Tile, Attr uint8
	Index            uint8
}

func (e OAMEntry) PaletteSlot() uint8 {
	if bit.IsSet(4, e.Attr) {
		return 1
	}
	return 0
}

func (e OAMEntry) BGPriority() bool { return bit.IsSet(7, e.Attr) }
func (e OAMEntry) XFlip() bool      { return bit.IsSet(5, e.Attr) }
func (e OAMEntry) YFlip() bool      { return bit.IsSet(6, e.Attr) }

const maxSpritesPerLine = 10

// ScanLine walks the 40 OAM entries and returns up to 10 whose vertical
// range covers ly, X-ascending (ties keep OAM order), matching sprites
// with Y==0, Y>=160, X==0 or X>=168 rejected outright rather than merely
// clipped off-screen.
func ScanLine(readOAM func(index uint8) uint8, ly uint8, tallSprites bool) []OAMEntry {
	height := uint8(8)
	if tallSprites {
		height = 16
	}

	var entries []OAMEntry
	for i := uint8(0); i < 40 && len(entries) < maxSpritesPerLine; i++ {
		base := i * 4
		y := readOAM(base)
		x := readOAM(base + 1)
		if y == 0 || y >= 160 || x == 0 || x >= 168 {
			continue
		}
		screenY := int(y) - 16
		if int(ly) < screenY || int(ly) >= screenY+int(height) {
			continue
		}
		entry := OAMEntry{
			Y:     y,
			X:     x,
			Tile:  readOAM(base + 2),
			Attr:  readOAM(base + 3),
			Index: i,
		}

		insertAt := len(entries)
		for j, existing := range entries {
			if x < existing.X {
				insertAt = j
				break
			}
		}
		entries = append(entries, OAMEntry{})
		copy(entries[insertAt+1:], entries[insertAt:])
		entries[insertAt] = entry
	}
	return entries
}
