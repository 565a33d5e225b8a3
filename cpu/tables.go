package cpu

// The two opcode grids below mirror the Game Boy's canonical 8x8 register
// layout, the same grouping the original instruction table builds row by
// row rather than as 256 hand-written entries.
var gridRegs = [8]ByteReg{RegB, RegC, RegD, RegE, RegH, RegL, RegHLInd, RegA}

var primaryTable [256]Instruction
var cbTable [256]Instruction

func init() {
	buildRegisterGrid()
	buildALUGrid()
	buildRowPairs()
	buildSixteenBit()
	buildIndirectLoads()
	buildMisc()
	buildCBGrid()
}

func cyclesFor(reg ByteReg, plain, indirect uint8) uint8 {
	if reg == RegHLInd {
		return indirect
	}
	return plain
}

// buildRegisterGrid fills the 0x40-0x7F "MV r,r'" block, with 0x76 (what
// would be MV (HL),(HL)) overridden as HALT.
func buildRegisterGrid() {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			opcode := 0x40 + row*8 + col
			if opcode == 0x76 {
				primaryTable[opcode] = Instruction{Name: "HALT", Fn: opHALT, Args: Descriptor{Cycles: 4}}
				continue
			}
			dst, src := gridRegs[row], gridRegs[col]
			cycles := uint8(4)
			if dst == RegHLInd || src == RegHLInd {
				cycles = 8
			}
			primaryTable[opcode] = Instruction{Name: "MV", Fn: opMV, Args: Descriptor{Dst: dst, Src: src, Cycles: cycles}}
		}
	}
}

// buildALUGrid fills the 0x80-0xBF 8-bit ALU block: eight operations over
// the same eight-register column order used by the MV grid.
func buildALUGrid() {
	ops := []struct {
		name string
		fn   Handler
	}{
		{"ADD", opADD}, {"ADC", opADC}, {"SUB", opSUB}, {"SBC", opSBC},
		{"AND", opAND}, {"XOR", opXOR}, {"OR", opOR}, {"CP", opCP},
	}
	for row, op := range ops {
		for col := 0; col < 8; col++ {
			opcode := 0x80 + row*8 + col
			src := gridRegs[col]
			primaryTable[opcode] = Instruction{
				Name: op.name,
				Fn:   op.fn,
				Args: Descriptor{Src: src, Cycles: cyclesFor(src, 4, 8)},
			}
		}
	}
}

// buildRowPairs fills the four 0x10-wide rows of the 0x00-0x3F block that
// each hold two registers' worth of INC/DEC/MV-immediate (B,C / D,E / H,L
// / (HL),A).
func buildRowPairs() {
	pairs := [4][2]ByteReg{
		{RegB, RegC},
		{RegD, RegE},
		{RegH, RegL},
		{RegHLInd, RegA},
	}
	for row, pair := range pairs {
		base := row * 0x10
		for slot, reg := range pair {
			offset := 0x04 + slot*0x08
			incOp, decOp, mvOp := base+offset, base+offset+1, base+offset+2
			primaryTable[incOp] = Instruction{Name: "INC", Fn: opINC, Args: Descriptor{Dst: reg, Cycles: cyclesFor(reg, 4, 12)}}
			primaryTable[decOp] = Instruction{Name: "DEC", Fn: opDEC, Args: Descriptor{Dst: reg, Cycles: cyclesFor(reg, 4, 12)}}
			primaryTable[mvOp] = Instruction{Name: "MV", Fn: opMVImmediate, Args: Descriptor{Dst: reg, Cycles: cyclesFor(reg, 8, 12)}}
		}
	}
}

func buildSixteenBit() {
	pairs := [4]WordReg{RegBC, RegDE, RegHL, RegSP}
	for row, reg := range pairs {
		base := row * 0x10
		primaryTable[base+0x01] = Instruction{Name: "MV16", Fn: opMV16, Args: Descriptor{Dst16: reg, Cycles: 12}}
		primaryTable[base+0x03] = Instruction{Name: "INC16", Fn: opINC16, Args: Descriptor{Dst16: reg, Cycles: 8}}
		primaryTable[base+0x09] = Instruction{Name: "ADD16", Fn: opADD16, Args: Descriptor{Src16: reg, Cycles: 8}}
		primaryTable[base+0x0B] = Instruction{Name: "DEC16", Fn: opDEC16, Args: Descriptor{Dst16: reg, Cycles: 8}}
	}
}

func buildIndirectLoads() {
	// LD (rr),A / LD A,(rr), with HL's +/- forms.
	stores := []struct {
		opcode int
		reg16  WordReg
		step   int8
	}{
		{0x02, RegBC, 0}, {0x12, RegDE, 0}, {0x22, RegHL, 1}, {0x32, RegHL, -1},
	}
	for _, s := range stores {
		primaryTable[s.opcode] = Instruction{Name: "ST", Fn: opST, Args: Descriptor{Dst16: s.reg16, Src: RegA, Cycles: 8, HLStep: s.step}}
	}
	loads := []struct {
		opcode int
		reg16  WordReg
		step   int8
	}{
		{0x0A, RegBC, 0}, {0x1A, RegDE, 0}, {0x2A, RegHL, 1}, {0x3A, RegHL, -1},
	}
	for _, l := range loads {
		primaryTable[l.opcode] = Instruction{Name: "LD", Fn: opLD, Args: Descriptor{Dst: RegA, Src16: l.reg16, Cycles: 8, HLStep: l.step}}
	}
}

func buildMisc() {
	primaryTable[0x00] = Instruction{Name: "NOP", Fn: opNOP, Args: Descriptor{Cycles: 4}}
	primaryTable[0x10] = Instruction{Name: "STOP", Fn: opSTOP, Args: Descriptor{Cycles: 4}}
	primaryTable[0x07] = Instruction{Name: "RLCA", Fn: opRLCA, Args: Descriptor{Cycles: 4}}
	primaryTable[0x0F] = Instruction{Name: "RRCA", Fn: opRRCA, Args: Descriptor{Cycles: 4}}
	primaryTable[0x17] = Instruction{Name: "RLA", Fn: opRLA, Args: Descriptor{Cycles: 4}}
	primaryTable[0x1F] = Instruction{Name: "RRA", Fn: opRRA, Args: Descriptor{Cycles: 4}}
	primaryTable[0x27] = Instruction{Name: "DAA", Fn: opDAA, Args: Descriptor{Cycles: 4}}
	primaryTable[0x2F] = Instruction{Name: "CPL", Fn: opCPL, Args: Descriptor{Cycles: 4}}
	primaryTable[0x37] = Instruction{Name: "SCF", Fn: opSCF, Args: Descriptor{Cycles: 4}}
	primaryTable[0x3F] = Instruction{Name: "CCF", Fn: opCCF, Args: Descriptor{Cycles: 4}}
	primaryTable[0x08] = Instruction{Name: "STSP", Fn: opSTSP, Args: Descriptor{Cycles: 20}}

	primaryTable[0x18] = Instruction{Name: "JR", Fn: opJR, Args: Descriptor{Flag: CondNone}}
	primaryTable[0x20] = Instruction{Name: "JR", Fn: opJR, Args: Descriptor{Flag: CondNZ}}
	primaryTable[0x28] = Instruction{Name: "JR", Fn: opJR, Args: Descriptor{Flag: CondZ}}
	primaryTable[0x30] = Instruction{Name: "JR", Fn: opJR, Args: Descriptor{Flag: CondNC}}
	primaryTable[0x38] = Instruction{Name: "JR", Fn: opJR, Args: Descriptor{Flag: CondC}}

	primaryTable[0xC3] = Instruction{Name: "JP", Fn: opJPImmediate, Args: Descriptor{Flag: CondNone}}
	primaryTable[0xC2] = Instruction{Name: "JP", Fn: opJPImmediate, Args: Descriptor{Flag: CondNZ}}
	primaryTable[0xCA] = Instruction{Name: "JP", Fn: opJPImmediate, Args: Descriptor{Flag: CondZ}}
	primaryTable[0xD2] = Instruction{Name: "JP", Fn: opJPImmediate, Args: Descriptor{Flag: CondNC}}
	primaryTable[0xDA] = Instruction{Name: "JP", Fn: opJPImmediate, Args: Descriptor{Flag: CondC}}
	primaryTable[0xE9] = Instruction{Name: "JP", Fn: opJPHL, Args: Descriptor{Cycles: 4}}

	primaryTable[0xCD] = Instruction{Name: "CALL", Fn: opCALL, Args: Descriptor{Flag: CondNone}}
	primaryTable[0xC4] = Instruction{Name: "CALL", Fn: opCALL, Args: Descriptor{Flag: CondNZ}}
	primaryTable[0xCC] = Instruction{Name: "CALL", Fn: opCALL, Args: Descriptor{Flag: CondZ}}
	primaryTable[0xD4] = Instruction{Name: "CALL", Fn: opCALL, Args: Descriptor{Flag: CondNC}}
	primaryTable[0xDC] = Instruction{Name: "CALL", Fn: opCALL, Args: Descriptor{Flag: CondC}}

	primaryTable[0xC9] = Instruction{Name: "RET", Fn: opRET, Args: Descriptor{Flag: CondNone}}
	primaryTable[0xC0] = Instruction{Name: "RET", Fn: opRET, Args: Descriptor{Flag: CondNZ}}
	primaryTable[0xC8] = Instruction{Name: "RET", Fn: opRET, Args: Descriptor{Flag: CondZ}}
	primaryTable[0xD0] = Instruction{Name: "RET", Fn: opRET, Args: Descriptor{Flag: CondNC}}
	primaryTable[0xD8] = Instruction{Name: "RET", Fn: opRET, Args: Descriptor{Flag: CondC}}
	primaryTable[0xD9] = Instruction{Name: "RETI", Fn: opRETI, Args: Descriptor{Cycles: 16}}

	rst := []uint16{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38}
	rstOpcodes := []int{0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF}
	for i, vec := range rst {
		primaryTable[rstOpcodes[i]] = Instruction{Name: "RST", Fn: opRST, Args: Descriptor{Data: uint8(vec), Cycles: 16}}
	}

	pushPop := []struct {
		popOp, pushOp int
		reg           WordReg
	}{
		{0xC1, 0xC5, RegBC}, {0xD1, 0xD5, RegDE}, {0xE1, 0xE5, RegHL}, {0xF1, 0xF5, RegAF},
	}
	for _, pp := range pushPop {
		primaryTable[pp.popOp] = Instruction{Name: "POP", Fn: opPOP, Args: Descriptor{Dst16: pp.reg, Cycles: 12}}
		primaryTable[pp.pushOp] = Instruction{Name: "PUSH", Fn: opPUSH, Args: Descriptor{Src16: pp.reg, Cycles: 16}}
	}

	primaryTable[0xC6] = Instruction{Name: "ADD", Fn: opADDImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xCE] = Instruction{Name: "ADC", Fn: opADCImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xD6] = Instruction{Name: "SUB", Fn: opSUBImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xDE] = Instruction{Name: "SBC", Fn: opSBCImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xE6] = Instruction{Name: "AND", Fn: opANDImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xEE] = Instruction{Name: "XOR", Fn: opXORImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xF6] = Instruction{Name: "OR", Fn: opORImm, Args: Descriptor{Cycles: 8}}
	primaryTable[0xFE] = Instruction{Name: "CP", Fn: opCPImm, Args: Descriptor{Cycles: 8}}

	primaryTable[0xE0] = Instruction{Name: "STH", Fn: opSTH, Args: Descriptor{Cycles: 12}}
	primaryTable[0xF0] = Instruction{Name: "LDH", Fn: opLDH, Args: Descriptor{Cycles: 12}}
	primaryTable[0xE2] = Instruction{Name: "STH", Fn: opSTHC, Args: Descriptor{Cycles: 8}}
	primaryTable[0xF2] = Instruction{Name: "LDH", Fn: opLDHC, Args: Descriptor{Cycles: 8}}
	primaryTable[0xEA] = Instruction{Name: "LET", Fn: opLETStore, Args: Descriptor{Cycles: 16}}
	primaryTable[0xFA] = Instruction{Name: "LET", Fn: opLET, Args: Descriptor{Cycles: 16}}

	primaryTable[0xE8] = Instruction{Name: "ADDS", Fn: opADDS, Args: Descriptor{Cycles: 16}}
	primaryTable[0xF8] = Instruction{Name: "LET16", Fn: opLET16, Args: Descriptor{Cycles: 12}}
	primaryTable[0xF9] = Instruction{Name: "MVSP", Fn: opMVSP, Args: Descriptor{Cycles: 8}}

	primaryTable[0xF3] = Instruction{Name: "DI", Fn: opDI, Args: Descriptor{Cycles: 4}}
	primaryTable[0xFB] = Instruction{Name: "EI", Fn: opEI, Args: Descriptor{Cycles: 4}}

	// Forbidden opcodes are left as the zero Instruction (nil Fn); Step
	// raises IllegalInstruction on them.
}

// buildCBGrid fills the full CB-prefixed table: eight rotate/shift
// variants over eight registers (0x00-0x3F), then BIT/RES/SET over eight
// bit indices and eight registers (0x40-0xFF).
func buildCBGrid() {
	shifts := []struct {
		name string
		fn   Handler
	}{
		{"RLC", opRLC}, {"RRC", opRRC}, {"RL", opRL}, {"RR", opRR},
		{"SLA", opSLA}, {"SRA", opSRA}, {"SWAP", opSWAP}, {"SRL", opSRL},
	}
	for row, op := range shifts {
		for col := 0; col < 8; col++ {
			reg := gridRegs[col]
			cbTable[row*8+col] = Instruction{Name: op.name, Fn: op.fn, Args: Descriptor{Dst: reg, Cycles: cyclesFor(reg, 8, 16)}}
		}
	}

	bitFamilies := []struct {
		base int
		name string
		fn   Handler
		hl   uint8
	}{
		{0x40, "BIT", opBIT, 12},
		{0x80, "RES", opRES, 16},
		{0xC0, "SET", opSET, 16},
	}
	for _, fam := range bitFamilies {
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			for col := 0; col < 8; col++ {
				reg := gridRegs[col]
				opcode := fam.base + bitIdx*8 + col
				cbTable[opcode] = Instruction{
					Name: fam.name,
					Fn:   fam.fn,
					Args: Descriptor{Dst: reg, Data: uint8(bitIdx), Cycles: cyclesFor(reg, 8, fam.hl)},
				}
			}
		}
	}
}
