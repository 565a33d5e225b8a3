// Package video implements the pixel pipeline: a 16-slot circular FIFO
// fed by 4-stage background and sprite fetchers, and the graphics
// controller's OAM/Draw/HBlank/VBlank mode machine driving them into a
// 160x144 framebuffer.
package video

import (
	"fmt"

	"github.com/kestrel-emu/dmgcore/dmgerr"
)

const fifoCapacity = 16

// Pixel is one FIFO entry: a 2-bit color index plus the metadata needed
// to resolve background/sprite priority when the two FIFOs are merged.
type Pixel struct {
	Color       uint8
	PaletteSlot uint8 // which of OBP0/OBP1 a sprite pixel uses; unused for bg/window
	BGPriority  bool  // sprite attribute bit 7: draw behind non-zero bg colors
	IsSprite    bool
}

// FIFO is the 16-slot circular pixel buffer shared by the structure of
// both the background and sprite fetchers.
type FIFO struct {
	pixels [fifoCapacity]Pixel
	size   int
	head   int
}

func (f *FIFO) Clear() {
	f.size = 0
	f.head = 0
}

func (f *FIFO) Size() int { return f.size }

// HasPixels reports whether the FIFO holds more than a full tile's worth,
// the threshold the fetchers use to decide whether to keep fetching.
func (f *FIFO) HasPixels() bool { return f.size > 8 }

// Push appends a pixel, silently dropping it if the buffer is already at
// capacity (the fetchers never let this happen in normal operation).
func (f *FIFO) Push(p Pixel) bool {
	if f.size >= fifoCapacity {
		return false
	}
	f.pixels[(f.head+f.size)%fifoCapacity] = p
	f.size++
	return true
}

// Pop removes and returns the front pixel. An empty pop is a bug in the
// mode machine driving the fetchers, not a recoverable runtime state.
func (f *FIFO) Pop() Pixel {
	if f.size == 0 {
		dmgerr.Raise(fmt.Errorf("%w", dmgerr.PixelFifoEmpty))
	}
	p := f.pixels[f.head]
	f.head = (f.head + 1) % fifoCapacity
	f.size--
	return p
}

// MergeAt writes p into the slot offset positions from the front, padding
// with transparent placeholders if the FIFO isn't that long yet, but never
// overwriting a slot that already holds a non-transparent pixel: the
// sprite fetcher calls this in x-ascending order, so whatever got there
// first is the higher-priority (lower X, or lower OAM index) sprite and
// wins the overlap.
func (f *FIFO) MergeAt(offset int, p Pixel) {
	if offset < 0 {
		return
	}
	for f.size <= offset {
		f.Push(Pixel{})
	}
	idx := (f.head + offset) % fifoCapacity
	if f.pixels[idx].Color == 0 {
		f.pixels[idx] = p
	}
}

func (f *FIFO) Top() Pixel {
	if f.size == 0 {
		dmgerr.Raise(fmt.Errorf("%w", dmgerr.PixelFifoEmpty))
	}
	return f.pixels[f.head]
}

// Mix overwrites a background pixel with a sprite pixel sitting at the
// same screen column according to the standard DMG priority rule: sprite
// color 0 is transparent, and a sprite's own BG-priority attribute can
// defer to a non-zero background color.
func Mix(bg, sprite Pixel, spritePresent bool) Pixel {
	if !spritePresent || sprite.Color == 0 {
		return bg
	}
	if sprite.BGPriority && bg.Color != 0 {
		return bg
	}
	return sprite
}
