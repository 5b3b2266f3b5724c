// Package riscv holds the RV32IM instruction set: register names, basic
// instruction encodings and the pseudo-instructions built from them.
package riscv

import "rvasm/internal/arch"

var abiNames = []string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

func NewRegisterFile() *arch.RegisterFile {
	return arch.NewRegisterFile(abiNames, map[string]int{"fp": 8})
}

// NewRegistry builds the full instruction set. Basic instructions are
// registered before pseudo-instructions so that an exact basic form is
// always preferred.
func NewRegistry() *arch.Registry {
	r := arch.NewRegistry(NewRegisterFile())
	addBasic(r)
	addExtended(r)
	return r
}

func addBasic(r *arch.Registry) {
	// R type
	r.AddBasic("add t1,t2,t3", "Addition: set t1 to (t2 plus t3)", false, rType(opReg, 0, 0x00))
	r.AddBasic("sub t1,t2,t3", "Subtraction: set t1 to (t2 minus t3)", false, rType(opReg, 0, 0x20))
	r.AddBasic("sll t1,t2,t3", "Shift left logical by the low 5 bits of t3", false, rType(opReg, 1, 0x00))
	r.AddBasic("slt t1,t2,t3", "Set t1 to 1 if t2 < t3 (signed), else 0", false, rType(opReg, 2, 0x00))
	r.AddBasic("sltu t1,t2,t3", "Set t1 to 1 if t2 < t3 (unsigned), else 0", false, rType(opReg, 3, 0x00))
	r.AddBasic("xor t1,t2,t3", "Bitwise XOR", false, rType(opReg, 4, 0x00))
	r.AddBasic("srl t1,t2,t3", "Shift right logical by the low 5 bits of t3", false, rType(opReg, 5, 0x00))
	r.AddBasic("sra t1,t2,t3", "Shift right arithmetic by the low 5 bits of t3", false, rType(opReg, 5, 0x20))
	r.AddBasic("or t1,t2,t3", "Bitwise OR", false, rType(opReg, 6, 0x00))
	r.AddBasic("and t1,t2,t3", "Bitwise AND", false, rType(opReg, 7, 0x00))
	r.AddBasic("mul t1,t2,t3", "Multiplication: low 32 bits of t2 * t3", false, rType(opReg, 0, 0x01))
	r.AddBasic("mulh t1,t2,t3", "High 32 bits of signed t2 * t3", false, rType(opReg, 1, 0x01))
	r.AddBasic("mulhsu t1,t2,t3", "High 32 bits of signed t2 * unsigned t3", false, rType(opReg, 2, 0x01))
	r.AddBasic("mulhu t1,t2,t3", "High 32 bits of unsigned t2 * t3", false, rType(opReg, 3, 0x01))
	r.AddBasic("div t1,t2,t3", "Signed division", false, rType(opReg, 4, 0x01))
	r.AddBasic("divu t1,t2,t3", "Unsigned division", false, rType(opReg, 5, 0x01))
	r.AddBasic("rem t1,t2,t3", "Signed remainder", false, rType(opReg, 6, 0x01))
	r.AddBasic("remu t1,t2,t3", "Unsigned remainder", false, rType(opReg, 7, 0x01))

	// I type arithmetic
	r.AddBasic("addi t1,t2,-100", "Addition immediate: set t1 to (t2 plus 12-bit immediate)", false, iType(opImm, 0))
	r.AddBasic("slti t1,t2,-100", "Set t1 to 1 if t2 < immediate (signed)", false, iType(opImm, 2))
	r.AddBasic("sltiu t1,t2,-100", "Set t1 to 1 if t2 < immediate (unsigned)", false, iType(opImm, 3))
	r.AddBasic("xori t1,t2,-100", "Bitwise XOR immediate", false, iType(opImm, 4))
	r.AddBasic("ori t1,t2,-100", "Bitwise OR immediate", false, iType(opImm, 6))
	r.AddBasic("andi t1,t2,-100", "Bitwise AND immediate", false, iType(opImm, 7))
	r.AddBasic("slli t1,t2,10", "Shift left logical by a 5-bit amount", false, shiftType(1, 0x00))
	r.AddBasic("srli t1,t2,10", "Shift right logical by a 5-bit amount", false, shiftType(5, 0x00))
	r.AddBasic("srai t1,t2,10", "Shift right arithmetic by a 5-bit amount", false, shiftType(5, 0x20))

	// loads and stores
	r.AddBasic("lb t1,-100(t2)", "Load byte, sign extended", false, loadType(0))
	r.AddBasic("lh t1,-100(t2)", "Load halfword, sign extended", false, loadType(1))
	r.AddBasic("lw t1,-100(t2)", "Load word", false, loadType(2))
	r.AddBasic("lbu t1,-100(t2)", "Load byte, zero extended", false, loadType(4))
	r.AddBasic("lhu t1,-100(t2)", "Load halfword, zero extended", false, loadType(5))
	r.AddBasic("sb t1,-100(t2)", "Store the low byte of t1", false, storeType(0))
	r.AddBasic("sh t1,-100(t2)", "Store the low halfword of t1", false, storeType(1))
	r.AddBasic("sw t1,-100(t2)", "Store word", false, storeType(2))

	// branches and jumps
	r.AddBasic("beq t1,t2,label", "Branch if equal", true, branchType(0))
	r.AddBasic("bne t1,t2,label", "Branch if not equal", true, branchType(1))
	r.AddBasic("blt t1,t2,label", "Branch if less than (signed)", true, branchType(4))
	r.AddBasic("bge t1,t2,label", "Branch if greater than or equal (signed)", true, branchType(5))
	r.AddBasic("bltu t1,t2,label", "Branch if less than (unsigned)", true, branchType(6))
	r.AddBasic("bgeu t1,t2,label", "Branch if greater than or equal (unsigned)", true, branchType(7))
	r.AddBasic("jal t1,target", "Jump and link: set t1 to PC+4 and jump to target", true, jalType())
	r.AddBasic("jalr t1,t2,-100", "Jump and link register: set t1 to PC+4, jump to t2 plus immediate", false, iType(opJalr, 0))

	// upper immediates
	r.AddBasic("lui t1,100000", "Load upper immediate", false, upperType(opLui))
	r.AddBasic("auipc t1,100000", "Add upper immediate to PC", false, upperType(opAuipc))

	// system
	r.AddBasic("ecall", "Issue a system call", false, fixed(opSystem))
	r.AddBasic("ebreak", "Pause execution", false, fixed(1<<20|opSystem))
	r.AddBasic("fence", "Order all memory accesses", false, fixed(0x0FF00000|opFence))
}

func addExtended(r *arch.Registry) {
	r.AddExtended("nop", "No operation", "addi x0, x0, 0")
	r.AddExtended("mv t1,t2", "Move: set t1 to t2", "add RG1, x0, RG2")
	r.AddExtended("not t1,t2", "Bitwise NOT", "xori RG1, RG2, -1")
	r.AddExtended("neg t1,t2", "Negate: set t1 to -t2", "sub RG1, x0, RG2")

	r.AddExtended("li t1,-100", "Load a 12-bit immediate", "addi RG1, x0, VL2")
	r.AddExtended("li t1,1048576", "Load a 32-bit immediate", "lui RG1, LH2", "addi RG1, RG1, LL2")
	r.AddExtended("la t1,label", "Load the address of label", "auipc RG1, PH2", "addi RG1, RG1, PL2")

	for _, op := range []string{"lb", "lh", "lw", "lbu", "lhu"} {
		r.AddExtended(op+" t1,label", "Load from label", "auipc RG1, PH2", op+" RG1, PL2(RG1)")
		r.AddExtended(op+" t1,(t2)", "Load with zero offset", op+" RG1, 0(RG3)")
	}
	for _, op := range []string{"sb", "sh", "sw"} {
		r.AddExtended(op+" t1,label,t2", "Store to label using t2 as scratch", "auipc RG3, PH2", op+" RG1, PL2(RG3)")
		r.AddExtended(op+" t1,(t2)", "Store with zero offset", op+" RG1, 0(RG3)")
	}

	r.AddExtended("b label", "Branch unconditionally", "jal x0, LAB1")
	r.AddExtended("j label", "Jump to label", "jal x0, LAB1")
	r.AddExtended("jal label", "Jump to label, saving the return address in ra", "jal x1, LAB1")
	r.AddExtended("jr t1", "Jump to the address in t1", "jalr x0, RG1, 0")
	r.AddExtended("jalr t1", "Jump to the address in t1, saving the return address in ra", "jalr x1, RG1, 0")
	r.AddExtended("jalr t1,-100(t2)", "Jump to t2 plus offset, linking t1", "jalr RG1, RG4, VL2")
	r.AddExtended("ret", "Return to the address in ra", "jalr x0, x1, 0")
	r.AddExtended("call label", "Call a far subroutine", "auipc x1, PH1", "jalr x1, x1, PL1")
	r.AddExtended("tail label", "Tail call a far subroutine", "auipc x6, PH1", "jalr x0, x6, PL1")

	r.AddExtended("beqz t1,label", "Branch if t1 is zero", "beq RG1, x0, LAB2")
	r.AddExtended("bnez t1,label", "Branch if t1 is not zero", "bne RG1, x0, LAB2")
	r.AddExtended("blez t1,label", "Branch if t1 <= 0", "bge x0, RG1, LAB2")
	r.AddExtended("bgez t1,label", "Branch if t1 >= 0", "bge RG1, x0, LAB2")
	r.AddExtended("bltz t1,label", "Branch if t1 < 0", "blt RG1, x0, LAB2")
	r.AddExtended("bgtz t1,label", "Branch if t1 > 0", "blt x0, RG1, LAB2")
	r.AddExtended("bgt t1,t2,label", "Branch if t1 > t2 (signed)", "blt RG2, RG1, LAB3")
	r.AddExtended("ble t1,t2,label", "Branch if t1 <= t2 (signed)", "bge RG2, RG1, LAB3")
	r.AddExtended("bgtu t1,t2,label", "Branch if t1 > t2 (unsigned)", "bltu RG2, RG1, LAB3")
	r.AddExtended("bleu t1,t2,label", "Branch if t1 <= t2 (unsigned)", "bgeu RG2, RG1, LAB3")

	r.AddExtended("seqz t1,t2", "Set t1 to 1 if t2 is zero", "sltiu RG1, RG2, 1")
	r.AddExtended("snez t1,t2", "Set t1 to 1 if t2 is not zero", "sltu RG1, x0, RG2")
	r.AddExtended("sltz t1,t2", "Set t1 to 1 if t2 < 0", "slt RG1, RG2, x0")
	r.AddExtended("sgtz t1,t2", "Set t1 to 1 if t2 > 0", "slt RG1, x0, RG2")
}
