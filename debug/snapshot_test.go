package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotStringIncludesCoreFields(t *testing.T) {
	snap := Snapshot{
		CPU: CPUState{PC: 0x0150, SP: 0xFFFE, IME: true},
		PPU: PPUState{Mode: "Draw", LY: 42, LYC: 42},
	}
	s := snap.String()
	assert.Contains(t, s, "PC=0150")
	assert.Contains(t, s, "mode=Draw")
	assert.Contains(t, s, "LY=42")
}

func TestSpriteInfoString(t *testing.T) {
	s := SpriteInfo{Index: 3, Y: 16, X: 8, TileIndex: 0x05, Attributes: 0x80}
	assert.Contains(t, s.String(), "Sprite  3")
}
