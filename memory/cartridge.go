package memory

import (
	"fmt"

	"github.com/kestrel-emu/dmgcore/dmgerr"
)

// Cartridge wraps a loaded ROM image and the bank controller its header
// selects. The controller is what the address space's 0x0000-0x7FFF and
// 0xA000-0xBFFF windows actually dispatch to.
type Cartridge struct {
	rom        []byte
	Controller BankController
}

const (
	cartTypeOffset    = 0x0147
	ramSizeOffset     = 0x0149
	logoOffset        = 0x0104
	logoLength        = 0x30
	headerMinimumSize = 0x0150
)

// LoadCartridge parses a ROM image's header to choose a bank controller,
// returning dmgerr.RomReadFailure if the image is too short to carry a
// header at all.
func LoadCartridge(rom []byte) (*Cartridge, error) {
	if len(rom) < headerMinimumSize {
		return nil, fmt.Errorf("%w: rom image shorter than header (%d bytes)", dmgerr.RomReadFailure, len(rom))
	}
	ramSize := ramSizeBytes(rom[ramSizeOffset])
	return &Cartridge{rom: rom, Controller: newBankController(rom, ramSize)}, nil
}

func ramSizeBytes(code uint8) int {
	switch code {
	case 0x01:
		return 2 * 1024
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func newBankController(rom []byte, ramSize int) BankController {
	switch rom[cartTypeOffset] {
	case 0x05, 0x06:
		return NewMBC2(rom)
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, ramSize)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, ramSize)
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, ramSize)
	default:
		nomb := &NoMBC{ROM: rom}
		return nomb
	}
}

// Logo returns the 48-byte Nintendo logo bitmap a cartridge header must
// carry, the bytes the boot ROM scrolls onto the screen and checksums
// before handing off.
func (c *Cartridge) Logo() []byte {
	end := logoOffset + logoLength
	if end > len(c.rom) {
		end = len(c.rom)
	}
	return c.rom[logoOffset:end]
}

// HeaderBytes returns the cartridge's first 0x100 bytes, the range the
// boot ROM overlay shadows until 0xFF50 is written.
func (c *Cartridge) HeaderBytes() []byte {
	n := 0x100
	if n > len(c.rom) {
		n = len(c.rom)
	}
	return c.rom[:n]
}

// bootLogoOffset is where the boot ROM carries its own copy of the
// Nintendo logo bitmap, checksummed against the cartridge's copy at
// logoOffset before the boot ROM hands off control.
const bootLogoOffset = 0xA8

// CopyLogoFrom overwrites this cartridge's logo bytes with the boot ROM's
// copy, the -l testing aid: it lets a hand-built test ROM with no valid
// logo of its own still pass whatever check gates on it, by poking the
// header directly rather than going through the write-protected ROM path.
func (c *Cartridge) CopyLogoFrom(bootROM []byte) {
	if len(bootROM) < bootLogoOffset+logoLength || len(c.rom) < logoOffset+logoLength {
		return
	}
	copy(c.rom[logoOffset:logoOffset+logoLength], bootROM[bootLogoOffset:bootLogoOffset+logoLength])
}
