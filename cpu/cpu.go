// Package cpu implements the instruction decode/execute core: an
// operand-descriptor dispatch table driving a small set of handler
// families, and the interrupt-servicing run loop around it.
package cpu

import (
	"fmt"

	"github.com/kestrel-emu/dmgcore/addr"
	"github.com/kestrel-emu/dmgcore/bit"
	"github.com/kestrel-emu/dmgcore/dmgerr"
)

// Bus is everything the CPU needs from the rest of the machine: byte
// access to the 64KiB address space, and a cycle sink to fan out timing
// to the other subscribers (timer, PPU, DMA).
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles uint8)
}

// CPU is the instruction core. It owns the register file and interrupt
// master enable; everything else (memory, video, timer) lives behind Bus.
type CPU struct {
	r   *Registers
	bus Bus

	ime      bool
	imeDelay uint8
	halted   bool
	haltBug  bool
	stopped  bool
}

// New returns a CPU with the post-boot-ROM register state (spec.md
// scenario 1): AF=0x01B0, BC=0x0013, DE=0x00D8, HL=0x014D, SP=0xFFFE,
// PC=0x0100.
func New(bus Bus) *CPU {
	c := &CPU{r: newRegisters(), bus: bus}
	c.r.setWord(RegAF, 0x01B0)
	c.r.setWord(RegBC, 0x0013)
	c.r.setWord(RegDE, 0x00D8)
	c.r.setWord(RegHL, 0x014D)
	c.r.setWord(RegSP, 0xFFFE)
	c.r.setWord(RegPC, 0x0100)
	return c
}

// ResetProgramCounter overrides PC without touching any other register.
// The machine calls this when a boot ROM is mapped, to start execution
// at 0x0000 instead of the post-boot state New installs.
func (c *CPU) ResetProgramCounter(pc uint16) {
	c.r.setWord(RegPC, pc)
}

// Stopped reports whether the CPU executed STOP and has not been woken.
func (c *CPU) Stopped() bool { return c.stopped }

// IME reports the interrupt master enable flag.
func (c *CPU) IME() bool { return c.ime }

// PC, SP and the 16-bit register pairs, exposed read-only for debugging
// and tests.
func (c *CPU) PC() uint16 { return c.r.getWord(RegPC) }
func (c *CPU) SP() uint16 { return c.r.getWord(RegSP) }
func (c *CPU) AF() uint16 { return c.r.getWord(RegAF) }
func (c *CPU) BC() uint16 { return c.r.getWord(RegBC) }
func (c *CPU) DE() uint16 { return c.r.getWord(RegDE) }
func (c *CPU) HL() uint16 { return c.r.getWord(RegHL) }

// Step executes exactly one instruction-boundary worth of work: apply
// any pending EI-delay enable, service a pending interrupt if one is
// ready, otherwise decode and execute the next instruction. It returns
// the number of T-cycles consumed.
func (c *CPU) Step() (uint8, error) {
	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.ime = true
		}
	}

	if cycles := c.handleInterrupts(); cycles > 0 {
		c.bus.Tick(cycles)
		return cycles, nil
	}

	if c.halted {
		c.bus.Tick(4)
		return 4, nil
	}

	pc := c.r.getWord(RegPC)
	opcode := c.bus.Read(pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.r.setWord(RegPC, pc+1)
	}

	table := &primaryTable
	if opcode == 0xCB {
		pc2 := c.r.getWord(RegPC)
		opcode = c.bus.Read(pc2)
		c.r.setWord(RegPC, pc2+1)
		table = &cbTable
	}

	instr := table[opcode]
	if instr.Fn == nil {
		return 0, fmt.Errorf("%w: opcode %#02x", dmgerr.IllegalInstruction, opcode)
	}

	cycles := instr.Fn(c, instr.Args)

	if !c.r.GuardIntact() {
		panic("cpu: guard register corrupted, operand descriptor bug")
	}

	c.bus.Tick(cycles)
	return cycles, nil
}

// handleInterrupts wakes a halted CPU as soon as any enabled interrupt is
// pending, and services the lowest-numbered pending interrupt if IME is
// set. It returns the cycle cost of dispatch, or 0 if nothing happened.
func (c *CPU) handleInterrupts() uint8 {
	pending := c.bus.Read(addr.IF) & c.bus.Read(addr.IE) & 0x1F

	if pending != 0 {
		c.halted = false
	}

	if !c.ime || pending == 0 {
		return 0
	}

	for i := uint8(0); i < 5; i++ {
		if !bit.IsSet(i, pending) {
			continue
		}
		c.ime = false
		c.bus.Write(addr.IF, bit.Clear(i, c.bus.Read(addr.IF)))
		c.push(c.r.getWord(RegPC))
		c.r.setWord(RegPC, 0x40+uint16(i)*8)
		return 20
	}
	return 0
}

func (c *CPU) push(v uint16) {
	sp := c.r.getWord(RegSP) - 2
	c.r.setWord(RegSP, sp)
	c.bus.Write(sp, bit.Low(v))
	c.bus.Write(sp+1, bit.High(v))
}

func (c *CPU) pop() uint16 {
	sp := c.r.getWord(RegSP)
	lo := c.bus.Read(sp)
	hi := c.bus.Read(sp + 1)
	c.r.setWord(RegSP, sp+2)
	return bit.Combine(hi, lo)
}

func (c *CPU) fetchByte() uint8 {
	pc := c.r.getWord(RegPC)
	v := c.bus.Read(pc)
	c.r.setWord(RegPC, pc+1)
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return bit.Combine(hi, lo)
}

func (c *CPU) readByte(reg ByteReg) uint8 {
	if reg == RegHLInd {
		return c.bus.Read(c.r.getWord(RegHL))
	}
	return c.r.getByte(reg)
}

func (c *CPU) writeByte(reg ByteReg, v uint8) {
	if reg == RegHLInd {
		c.bus.Write(c.r.getWord(RegHL), v)
		return
	}
	c.r.setByte(reg, v)
}

func (c *CPU) testCond(f FlagCond) bool {
	switch f {
	case CondNone:
		return true
	case CondZ:
		return c.r.flag(FlagZ)
	case CondNZ:
		return !c.r.flag(FlagZ)
	case CondC:
		return c.r.flag(FlagC)
	case CondNC:
		return !c.r.flag(FlagC)
	default:
		return true
	}
}
