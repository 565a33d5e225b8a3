// Package memory implements the 64KiB address space: ROM/RAM banking
// through a cartridge, VRAM/WRAM/OAM/HRAM storage, and the I/O register
// bank as a small table of direct or callback-backed slots.
package memory

import (
	"fmt"

	"github.com/kestrel-emu/dmgcore/addr"
	"github.com/kestrel-emu/dmgcore/dmgerr"
)

const ioSlotCount = 0x81

type slotKind uint8

const (
	slotUninitialized slotKind = iota
	slotDirect
	slotCallback
)

// RegisterCallback is invoked for every access to a callback-backed I/O
// slot. isWrite distinguishes a read (value is ignored, the returned byte
// is what the CPU sees) from a write (the returned byte is discarded).
type RegisterCallback func(address uint16, value uint8, isWrite bool) uint8

type ioSlot struct {
	kind     slotKind
	ptr      *uint8
	callback RegisterCallback
}

// AddressSpace is the CPU-facing Bus implementation and the backing store
// for everything below the cartridge and the PPU/timer register windows.
type AddressSpace struct {
	cart       *Cartridge
	bootROM    []byte
	bootMapped bool

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0xA0]byte
	hram [0x7F]byte

	io [ioSlotCount]ioSlot

	// AllowRawROMWrites lets a test harness poke bytes directly into a
	// cartridge-less ROM image instead of raising IllegalRomWrite, for
	// synthetic test programs that aren't a full cartridge image.
	AllowRawROMWrites bool
	rawROM            []byte
}

// New returns an address space with no cartridge installed; LoadCartridge
// must be called (or AllowRawROMWrites set with a scratch ROM handed to
// LoadRawROM) before ROM reads return anything but 0xFF.
func New() *AddressSpace {
	return &AddressSpace{}
}

// LoadCartridge installs a parsed cartridge as the ROM/external-RAM bank
// controller.
func (a *AddressSpace) LoadCartridge(c *Cartridge) {
	a.cart = c
}

// LoadRawROM installs a flat byte slice as ROM with no bank controller,
// for synthetic test programs; writes to it require AllowRawROMWrites.
func (a *AddressSpace) LoadRawROM(rom []byte) {
	a.rawROM = rom
}

// LoadBootROM maps boot[0:0x100] over the cartridge's first page until a
// non-zero write to addr.BOOT unmaps it.
func (a *AddressSpace) LoadBootROM(boot []byte) {
	a.bootROM = boot
	a.bootMapped = true
}

func (a *AddressSpace) slotIndex(address uint16) int {
	if address == addr.IE {
		return 0x80
	}
	return int(address - 0xFF00)
}

// RegisterDirect binds an I/O register address to a backing byte: reads
// and writes go straight through to *ptr.
func (a *AddressSpace) RegisterDirect(address uint16, ptr *uint8) {
	a.io[a.slotIndex(address)] = ioSlot{kind: slotDirect, ptr: ptr}
}

// RegisterCallback binds an I/O register address to a callback invoked on
// every read and write.
func (a *AddressSpace) RegisterCallback(address uint16, fn RegisterCallback) {
	a.io[a.slotIndex(address)] = ioSlot{kind: slotCallback, callback: fn}
}

func (a *AddressSpace) readRegister(address uint16) uint8 {
	idx := a.slotIndex(address)
	if idx < 0 || idx >= ioSlotCount {
		dmgerr.Raise(fmt.Errorf("%w: %#04x", dmgerr.InvalidRegisterIndex, address))
	}
	slot := &a.io[idx]
	switch slot.kind {
	case slotDirect:
		return *slot.ptr
	case slotCallback:
		return slot.callback(address, 0, false)
	default:
		return 0xFF
	}
}

func (a *AddressSpace) writeRegister(address uint16, value uint8) {
	idx := a.slotIndex(address)
	if idx < 0 || idx >= ioSlotCount {
		dmgerr.Raise(fmt.Errorf("%w: %#04x", dmgerr.InvalidRegisterIndex, address))
	}
	slot := &a.io[idx]
	switch slot.kind {
	case slotDirect:
		*slot.ptr = value
	case slotCallback:
		slot.callback(address, value, true)
	default:
		// Uninitialized register: writes are dropped.
	}
}

func (a *AddressSpace) isRegisterAddress(address uint16) bool {
	return address&0xFF80 == 0xFF00 || address == addr.IE
}

// Read implements cpu.Bus.
func (a *AddressSpace) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		if a.bootMapped && address < 0x100 {
			return a.bootROM[address]
		}
		if a.cart != nil {
			return a.cart.Controller.ReadROM(address)
		}
		return romByte(a.rawROM, int(address))
	case address < 0xA000:
		return a.vram[address-0x8000]
	case address < 0xC000:
		if a.cart != nil {
			return a.cart.Controller.ReadRAM(address)
		}
		return 0xFF
	case address < 0xE000:
		return a.wram[address-0xC000]
	case address < 0xFE00:
		return a.wram[address-0xE000]
	case address < 0xFEA0:
		return a.oam[address-0xFE00]
	case address < 0xFF00:
		return 0xFF
	case a.isRegisterAddress(address):
		return a.readRegister(address)
	default:
		return a.hram[address-0xFF80]
	}
}

// Write implements cpu.Bus.
func (a *AddressSpace) Write(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		if a.AllowRawROMWrites && a.cart == nil {
			if int(address) < len(a.rawROM) {
				a.rawROM[address] = value
			}
			return
		}
		if a.cart == nil {
			dmgerr.Raise(fmt.Errorf("%w: write to %#04x with no cartridge installed", dmgerr.IllegalRomWrite, address))
		}
		a.cart.Controller.WriteROM(address, value)
	case address < 0xA000:
		a.vram[address-0x8000] = value
	case address < 0xC000:
		if a.cart != nil {
			a.cart.Controller.WriteRAM(address, value)
		}
	case address < 0xE000:
		a.wram[address-0xC000] = value
	case address < 0xFE00:
		a.wram[address-0xE000] = value
	case address < 0xFEA0:
		a.oam[address-0xFE00] = value
	case address < 0xFF00:
		// Unusable range: writes are dropped.
	case a.isRegisterAddress(address):
		a.writeRegister(address, value)
	default:
		a.hram[address-0xFF80] = value
	}
}

// ReadWord and WriteWord reject the I/O register bank outright: the
// original hardware and the teacher's memory map agree that registers
// are byte-addressed only.
func (a *AddressSpace) ReadWord(address uint16) uint16 {
	if a.isRegisterAddress(address) || a.isRegisterAddress(address+1) {
		dmgerr.Raise(fmt.Errorf("%w: word read at %#04x", dmgerr.WordOnIoRegister, address))
	}
	return uint16(a.Read(address)) | uint16(a.Read(address+1))<<8
}

func (a *AddressSpace) WriteWord(address uint16, value uint16) {
	if a.isRegisterAddress(address) || a.isRegisterAddress(address+1) {
		dmgerr.Raise(fmt.Errorf("%w: word write at %#04x", dmgerr.WordOnIoRegister, address))
	}
	a.Write(address, uint8(value))
	a.Write(address+1, uint8(value>>8))
}

// Copy raises CopyOverlapsIo if the destination range would reach into
// the I/O register bank. OAM DMA does not use it (the machine's DMA unit
// copies one byte per machine cycle); a 160-byte copy into OAM never
// trips the check.
func (a *AddressSpace) Copy(dst, src uint16, length int) {
	if int(dst)+length > 0xFF00 {
		dmgerr.Raise(fmt.Errorf("%w: copy to %#04x length %d", dmgerr.CopyOverlapsIo, dst, length))
	}
	for i := 0; i < length; i++ {
		a.Write(dst+uint16(i), a.Read(src+uint16(i)))
	}
}

// UnmapBootROM stops serving the boot overlay; the cartridge's own first
// page becomes visible on the next read below 0x100.
func (a *AddressSpace) UnmapBootROM() {
	a.bootMapped = false
}

// BootMapped reports whether reads below 0x100 are still seeing the boot
// ROM overlay rather than the cartridge.
func (a *AddressSpace) BootMapped() bool { return a.bootMapped }
