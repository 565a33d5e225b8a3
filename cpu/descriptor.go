package cpu

// FlagCond tags the branch/return condition carried by an operand
// descriptor: which flag, if any, gates a conditional JP/JR/CALL/RET.
type FlagCond uint8

const (
	// CondNone marks an unconditional branch.
	CondNone FlagCond = iota
	CondZ
	CondNZ
	CondC
	CondNC
)

// Descriptor is the data half of an instruction table entry: the operand
// identifiers a handler needs, plus the instruction's base cycle count. It
// carries tagged register identifiers rather than pointers, so the 256-entry
// tables below are built as plain struct literals.
type Descriptor struct {
	Dst    ByteReg
	Src    ByteReg
	Dst16  WordReg
	Src16  WordReg
	Data   uint8
	Flag   FlagCond
	Cycles uint8
	// HLStep carries the post-access adjustment (+1, -1, or 0) applied to
	// HL by the LD/ST family's (HL+)/(HL-) forms.
	HLStep int8
}

// Handler executes one instruction against the CPU and its descriptor,
// returning the number of cycles actually consumed. Most handlers return
// the descriptor's Cycles; the JP/JR/CALL/RET/RETI/RST handlers return
// their own fixed totals, taken or not taken, and ignore Cycles.
type Handler func(c *CPU, d Descriptor) uint8

// Instruction pairs a handler with the descriptor it should be invoked with.
// The forbidden opcode slots (0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC,
// 0xED, 0xF4, 0xFC, 0xFD) are left as the zero Instruction; CPU.Step treats
// a nil Fn as an illegal-instruction fault.
type Instruction struct {
	Name string
	Fn   Handler
	Args Descriptor
}
