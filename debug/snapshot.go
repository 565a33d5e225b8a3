// Package debug defines a read-only snapshot of machine state (CPU
// registers and interrupt state, PPU registers and scanned sprites) and its
// text formatting, for tooling and tests. Nothing in this package captures
// a snapshot from a machine; the caller fills in the structs. Nothing here
// steps the machine or participates in its timing.
package debug

import "fmt"

// CPUState is a snapshot of the register file and interrupt state.
type CPUState struct {
	AF, BC, DE, HL, SP, PC uint16
	IME                    bool
	Halted                 bool
}

// SpriteInfo mirrors one OAM entry as scanned for the current line.
type SpriteInfo struct {
	Index      int
	Y, X       int
	TileIndex  uint8
	Attributes uint8
}

func (s SpriteInfo) String() string {
	return fmt.Sprintf("Sprite %2d: Y=%3d X=%3d Tile=0x%02X Attr=0x%02X",
		s.Index, s.Y, s.X, s.TileIndex, s.Attributes)
}

// PPUState is a snapshot of the graphics controller.
type PPUState struct {
	Mode          string
	LY, LYC       uint8
	LCDC, STAT    uint8
	ActiveSprites []SpriteInfo
}

// Snapshot is the full picture exposed at a point in time.
type Snapshot struct {
	CPU CPUState
	PPU PPUState
}

func (snap Snapshot) String() string {
	return fmt.Sprintf(
		"PC=%04X SP=%04X AF=%04X BC=%04X DE=%04X HL=%04X IME=%v HALT=%v | mode=%s LY=%d LYC=%d sprites=%d",
		snap.CPU.PC, snap.CPU.SP, snap.CPU.AF, snap.CPU.BC, snap.CPU.DE, snap.CPU.HL,
		snap.CPU.IME, snap.CPU.Halted,
		snap.PPU.Mode, snap.PPU.LY, snap.PPU.LYC, len(snap.PPU.ActiveSprites))
}
