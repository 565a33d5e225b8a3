package cpu

import (
	"github.com/kestrel-emu/dmgcore/addr"
	"github.com/kestrel-emu/dmgcore/bit"
)

// Control family: NOP, HALT, STOP, EI, DI. The CB prefix itself is decoded
// directly in CPU.Step rather than through a table entry.

func opNOP(c *CPU, d Descriptor) uint8 { return d.Cycles }

func opHALT(c *CPU, d Descriptor) uint8 {
	pending := c.bus.Read(addr.IF) & c.bus.Read(addr.IE) & 0x1F
	if !c.ime && pending != 0 {
		c.haltBug = true
	} else {
		c.halted = true
	}
	return d.Cycles
}

func opSTOP(c *CPU, d Descriptor) uint8 {
	c.fetchByte() // discard the mandatory padding byte
	c.stopped = true
	return d.Cycles
}

func opEI(c *CPU, d Descriptor) uint8 {
	c.imeDelay = 2
	return d.Cycles
}

func opDI(c *CPU, d Descriptor) uint8 {
	c.ime = false
	c.imeDelay = 0
	return d.Cycles
}

// Branch family: JP, JR, CALL, RST, RET, RETI.

func opJPImmediate(c *CPU, d Descriptor) uint8 {
	target := c.fetchWord()
	if c.testCond(d.Flag) {
		c.r.setWord(RegPC, target)
		return 16
	}
	return 12
}

func opJPHL(c *CPU, d Descriptor) uint8 {
	c.r.setWord(RegPC, c.r.getWord(RegHL))
	return 4
}

func opJR(c *CPU, d Descriptor) uint8 {
	offset := int8(c.fetchByte())
	if c.testCond(d.Flag) {
		pc := c.r.getWord(RegPC)
		c.r.setWord(RegPC, uint16(int32(pc)+int32(offset)))
		return 12
	}
	return 8
}

func opCALL(c *CPU, d Descriptor) uint8 {
	target := c.fetchWord()
	if c.testCond(d.Flag) {
		c.push(c.r.getWord(RegPC))
		c.r.setWord(RegPC, target)
		return 24
	}
	return 12
}

func opRST(c *CPU, d Descriptor) uint8 {
	c.push(c.r.getWord(RegPC))
	c.r.setWord(RegPC, uint16(d.Data))
	return 16
}

func opRET(c *CPU, d Descriptor) uint8 {
	if d.Flag == CondNone {
		c.r.setWord(RegPC, c.pop())
		return 16
	}
	if c.testCond(d.Flag) {
		c.r.setWord(RegPC, c.pop())
		return 20
	}
	return 8
}

func opRETI(c *CPU, d Descriptor) uint8 {
	c.r.setWord(RegPC, c.pop())
	c.ime = true
	c.imeDelay = 0
	return 16
}

// Load family: MV, LD, ST, LDH, STH, LET, MV16, LET16, MVSP, STSP, POP,
// PUSH.

func opMV(c *CPU, d Descriptor) uint8 {
	c.writeByte(d.Dst, c.readByte(d.Src))
	return d.Cycles
}

func opMVImmediate(c *CPU, d Descriptor) uint8 {
	c.writeByte(d.Dst, c.fetchByte())
	return d.Cycles
}

func opLD(c *CPU, d Descriptor) uint8 {
	address := c.r.getWord(d.Src16)
	c.r.setByte(d.Dst, c.bus.Read(address))
	if d.HLStep != 0 {
		c.r.setWord(RegHL, uint16(int32(address)+int32(d.HLStep)))
	}
	return d.Cycles
}

func opST(c *CPU, d Descriptor) uint8 {
	address := c.r.getWord(d.Dst16)
	c.bus.Write(address, c.r.getByte(d.Src))
	if d.HLStep != 0 {
		c.r.setWord(RegHL, uint16(int32(address)+int32(d.HLStep)))
	}
	return d.Cycles
}

func opLDH(c *CPU, d Descriptor) uint8 {
	n := c.fetchByte()
	c.r.setByte(RegA, c.bus.Read(0xFF00+uint16(n)))
	return d.Cycles
}

func opSTH(c *CPU, d Descriptor) uint8 {
	n := c.fetchByte()
	c.bus.Write(0xFF00+uint16(n), c.r.getByte(RegA))
	return d.Cycles
}

func opLDHC(c *CPU, d Descriptor) uint8 {
	c.r.setByte(RegA, c.bus.Read(0xFF00+uint16(c.r.getByte(RegC))))
	return d.Cycles
}

func opSTHC(c *CPU, d Descriptor) uint8 {
	c.bus.Write(0xFF00+uint16(c.r.getByte(RegC)), c.r.getByte(RegA))
	return d.Cycles
}

func opLET(c *CPU, d Descriptor) uint8 {
	address := c.fetchWord()
	c.r.setByte(RegA, c.bus.Read(address))
	return d.Cycles
}

func opLETStore(c *CPU, d Descriptor) uint8 {
	address := c.fetchWord()
	c.bus.Write(address, c.r.getByte(RegA))
	return d.Cycles
}

func opMV16(c *CPU, d Descriptor) uint8 {
	c.r.setWord(d.Dst16, c.fetchWord())
	return d.Cycles
}

func opSTSP(c *CPU, d Descriptor) uint8 {
	address := c.fetchWord()
	sp := c.r.getWord(RegSP)
	c.bus.Write(address, bit.Low(sp))
	c.bus.Write(address+1, bit.High(sp))
	return d.Cycles
}

func opMVSP(c *CPU, d Descriptor) uint8 {
	c.r.setWord(RegSP, c.r.getWord(RegHL))
	return d.Cycles
}

func opPOP(c *CPU, d Descriptor) uint8 {
	c.r.setWord(d.Dst16, c.pop())
	return d.Cycles
}

func opPUSH(c *CPU, d Descriptor) uint8 {
	c.push(c.r.getWord(d.Src16))
	return d.Cycles
}

// addSPSigned computes SP plus a fetched signed immediate, with the flag
// inputs defined over the unsigned low byte/nibble of SP and the raw
// immediate byte regardless of its sign, per the ADDS/LET16 shared rule.
func addSPSigned(c *CPU, imm uint8) (result uint16, halfCarry, carry bool) {
	sp := c.r.getWord(RegSP)
	result = uint16(int32(sp) + int32(int8(imm)))
	halfCarry = (sp&0xF)+uint16(imm&0xF) > 0xF
	carry = (sp&0xFF)+uint16(imm) > 0xFF
	return result, halfCarry, carry
}

func opADDS(c *CPU, d Descriptor) uint8 {
	result, h, cy := addSPSigned(c, c.fetchByte())
	c.r.setWord(RegSP, result)
	c.r.setFlag(FlagZ, false)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, h)
	c.r.setFlag(FlagC, cy)
	return d.Cycles
}

func opLET16(c *CPU, d Descriptor) uint8 {
	result, h, cy := addSPSigned(c, c.fetchByte())
	c.r.setWord(RegHL, result)
	c.r.setFlag(FlagZ, false)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, h)
	c.r.setFlag(FlagC, cy)
	return d.Cycles
}

// 8-bit arithmetic family: ADD, ADC, SUB, SBC, CP, INC, DEC, AND, OR, XOR,
// CPL, DAA.

func aluAdd(c *CPU, operand, carryIn uint8) {
	a := c.r.getByte(RegA)
	sum := uint16(a) + uint16(operand) + uint16(carryIn)
	result := uint8(sum)
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, (a&0xF)+(operand&0xF)+carryIn > 0xF)
	c.r.setFlag(FlagC, sum > 0xFF)
}

func aluSub(c *CPU, operand, carryIn uint8, storeResult bool) {
	a := c.r.getByte(RegA)
	diff := int16(a) - int16(operand) - int16(carryIn)
	result := uint8(diff)
	if storeResult {
		c.r.setByte(RegA, result)
	}
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, true)
	c.r.setFlag(FlagH, int16(a&0xF)-int16(operand&0xF)-int16(carryIn) < 0)
	c.r.setFlag(FlagC, diff < 0)
}

func opADD(c *CPU, d Descriptor) uint8     { aluAdd(c, c.readByte(d.Src), 0); return d.Cycles }
func opADDImm(c *CPU, d Descriptor) uint8  { aluAdd(c, c.fetchByte(), 0); return d.Cycles }
func opADC(c *CPU, d Descriptor) uint8     { aluAdd(c, c.readByte(d.Src), c.r.flagBit(FlagC)); return d.Cycles }
func opADCImm(c *CPU, d Descriptor) uint8  { aluAdd(c, c.fetchByte(), c.r.flagBit(FlagC)); return d.Cycles }
func opSUB(c *CPU, d Descriptor) uint8     { aluSub(c, c.readByte(d.Src), 0, true); return d.Cycles }
func opSUBImm(c *CPU, d Descriptor) uint8  { aluSub(c, c.fetchByte(), 0, true); return d.Cycles }
func opSBC(c *CPU, d Descriptor) uint8     { aluSub(c, c.readByte(d.Src), c.r.flagBit(FlagC), true); return d.Cycles }
func opSBCImm(c *CPU, d Descriptor) uint8  { aluSub(c, c.fetchByte(), c.r.flagBit(FlagC), true); return d.Cycles }
func opCP(c *CPU, d Descriptor) uint8      { aluSub(c, c.readByte(d.Src), 0, false); return d.Cycles }
func opCPImm(c *CPU, d Descriptor) uint8   { aluSub(c, c.fetchByte(), 0, false); return d.Cycles }

func opAND(c *CPU, d Descriptor) uint8 {
	result := c.r.getByte(RegA) & c.readByte(d.Src)
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, true)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

func opANDImm(c *CPU, d Descriptor) uint8 {
	result := c.r.getByte(RegA) & c.fetchByte()
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, true)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

func opOR(c *CPU, d Descriptor) uint8 {
	result := c.r.getByte(RegA) | c.readByte(d.Src)
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

func opORImm(c *CPU, d Descriptor) uint8 {
	result := c.r.getByte(RegA) | c.fetchByte()
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

func opXOR(c *CPU, d Descriptor) uint8 {
	result := c.r.getByte(RegA) ^ c.readByte(d.Src)
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

func opXORImm(c *CPU, d Descriptor) uint8 {
	result := c.r.getByte(RegA) ^ c.fetchByte()
	c.r.setByte(RegA, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

func opCPL(c *CPU, d Descriptor) uint8 {
	c.r.setByte(RegA, ^c.r.getByte(RegA))
	c.r.setFlag(FlagN, true)
	c.r.setFlag(FlagH, true)
	return d.Cycles
}

func opSCF(c *CPU, d Descriptor) uint8 {
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, true)
	return d.Cycles
}

func opCCF(c *CPU, d Descriptor) uint8 {
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, !c.r.flag(FlagC))
	return d.Cycles
}

func opDAA(c *CPU, d Descriptor) uint8 {
	a := c.r.getByte(RegA)
	var adjust uint8
	carry := false
	if c.r.flag(FlagN) {
		if c.r.flag(FlagH) {
			adjust += 0x06
		}
		if c.r.flag(FlagC) {
			adjust += 0x60
		}
		a -= adjust
		carry = c.r.flag(FlagC)
	} else {
		if c.r.flag(FlagH) || a&0xF > 0x9 {
			adjust += 0x06
		}
		if c.r.flag(FlagC) || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		a += adjust
	}
	c.r.setByte(RegA, a)
	c.r.setFlag(FlagZ, a == 0)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, carry)
	return d.Cycles
}

func opINC(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	result := v + 1
	c.writeByte(d.Dst, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, v&0xF == 0xF)
	return d.Cycles
}

func opDEC(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	result := v - 1
	c.writeByte(d.Dst, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, true)
	c.r.setFlag(FlagH, v&0xF == 0x0)
	return d.Cycles
}

// 16-bit arithmetic family: ADD16, INC16, DEC16 (ADDS/LET16 live above,
// next to the load family they share flag logic with).

func opADD16(c *CPU, d Descriptor) uint8 {
	hl := c.r.getWord(RegHL)
	operand := c.r.getWord(d.Src16)
	sum := uint32(hl) + uint32(operand)
	c.r.setWord(RegHL, uint16(sum))
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, (hl&0xFFF)+(operand&0xFFF) > 0xFFF)
	c.r.setFlag(FlagC, sum > 0xFFFF)
	return d.Cycles
}

func opINC16(c *CPU, d Descriptor) uint8 {
	c.r.setWord(d.Dst16, c.r.getWord(d.Dst16)+1)
	return d.Cycles
}

func opDEC16(c *CPU, d Descriptor) uint8 {
	c.r.setWord(d.Dst16, c.r.getWord(d.Dst16)-1)
	return d.Cycles
}

// Rotate/shift family. The accumulator forms (RLCA/RRCA/RLA/RRA) always
// clear Z; the CB-prefixed register forms set it from the result.

func opRLCA(c *CPU, d Descriptor) uint8 {
	a := c.r.getByte(RegA)
	carry := a >> 7
	c.r.setByte(RegA, (a<<1)|carry)
	c.r.setFlag(FlagZ, false)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, carry == 1)
	return d.Cycles
}

func opRRCA(c *CPU, d Descriptor) uint8 {
	a := c.r.getByte(RegA)
	carry := a & 1
	c.r.setByte(RegA, (a>>1)|(carry<<7))
	c.r.setFlag(FlagZ, false)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, carry == 1)
	return d.Cycles
}

func opRLA(c *CPU, d Descriptor) uint8 {
	a := c.r.getByte(RegA)
	oldCarry := c.r.flagBit(FlagC)
	newCarry := a >> 7
	c.r.setByte(RegA, (a<<1)|oldCarry)
	c.r.setFlag(FlagZ, false)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, newCarry == 1)
	return d.Cycles
}

func opRRA(c *CPU, d Descriptor) uint8 {
	a := c.r.getByte(RegA)
	oldCarry := c.r.flagBit(FlagC)
	newCarry := a & 1
	c.r.setByte(RegA, (a>>1)|(oldCarry<<7))
	c.r.setFlag(FlagZ, false)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, newCarry == 1)
	return d.Cycles
}

func setRotateFlags(c *CPU, result uint8, carry bool) {
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, carry)
}

func opRLC(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	carry := v >> 7
	result := (v << 1) | carry
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, carry == 1)
	return d.Cycles
}

func opRRC(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	carry := v & 1
	result := (v >> 1) | (carry << 7)
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, carry == 1)
	return d.Cycles
}

func opRL(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	oldCarry := c.r.flagBit(FlagC)
	newCarry := v >> 7
	result := (v << 1) | oldCarry
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, newCarry == 1)
	return d.Cycles
}

func opRR(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	oldCarry := c.r.flagBit(FlagC)
	newCarry := v & 1
	result := (v >> 1) | (oldCarry << 7)
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, newCarry == 1)
	return d.Cycles
}

func opSLA(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	carry := v >> 7
	result := v << 1
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, carry == 1)
	return d.Cycles
}

func opSRA(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	carry := v & 1
	result := (v >> 1) | (v & 0x80)
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, carry == 1)
	return d.Cycles
}

func opSRL(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	carry := v & 1
	result := v >> 1
	c.writeByte(d.Dst, result)
	setRotateFlags(c, result, carry == 1)
	return d.Cycles
}

func opSWAP(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	result := (v << 4) | (v >> 4)
	c.writeByte(d.Dst, result)
	c.r.setFlag(FlagZ, result == 0)
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, false)
	c.r.setFlag(FlagC, false)
	return d.Cycles
}

// CB-only bit family: BIT, SET, RES.

func opBIT(c *CPU, d Descriptor) uint8 {
	v := c.readByte(d.Dst)
	c.r.setFlag(FlagZ, !bit.IsSet(d.Data, v))
	c.r.setFlag(FlagN, false)
	c.r.setFlag(FlagH, true)
	return d.Cycles
}

func opSET(c *CPU, d Descriptor) uint8 {
	c.writeByte(d.Dst, bit.Set(d.Data, c.readByte(d.Dst)))
	return d.Cycles
}

func opRES(c *CPU, d Descriptor) uint8 {
	c.writeByte(d.Dst, bit.Clear(d.Data, c.readByte(d.Dst)))
	return d.Cycles
}
