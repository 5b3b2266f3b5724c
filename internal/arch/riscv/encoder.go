package riscv

import (
	"fmt"

	"rvasm/internal/arch"
)

const (
	opLoad   = 0x03
	opFence  = 0x0F
	opImm    = 0x13
	opAuipc  = 0x17
	opStore  = 0x23
	opReg    = 0x33
	opLui    = 0x37
	opBranch = 0x63
	opJalr   = 0x67
	opJal    = 0x6F
	opSystem = 0x73
)

func fitsSigned(v int64, bits uint) bool {
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	return v >= lo && v <= hi
}

func reg(v int64) uint32 { return uint32(v) & 0x1F }

func rType(opcode, funct3, funct7 uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		rd, rs1, rs2 := reg(ops[0]), reg(ops[1]), reg(ops[2])
		return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode, nil
	}
}

func encodeI(opcode, funct3 uint32, rd, rs1 uint32, imm int64) (uint32, error) {
	if !fitsSigned(imm, 12) {
		return 0, fmt.Errorf("immediate %d does not fit in 12 signed bits", imm)
	}
	return (uint32(imm)&0xFFF)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode, nil
}

// iType encodes "op rd, rs1, imm".
func iType(opcode, funct3 uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		return encodeI(opcode, funct3, reg(ops[0]), reg(ops[1]), ops[2])
	}
}

// loadType encodes "op rd, imm(rs1)".
func loadType(funct3 uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		return encodeI(opLoad, funct3, reg(ops[0]), reg(ops[2]), ops[1])
	}
}

// shiftType encodes "op rd, rs1, shamt".
func shiftType(funct3, funct7 uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		shamt := ops[2]
		if shamt < 0 || shamt > 31 {
			return 0, fmt.Errorf("shift amount %d out of range 0..31", shamt)
		}
		return funct7<<25 | uint32(shamt)<<20 | reg(ops[1])<<15 | funct3<<12 | reg(ops[0])<<7 | opImm, nil
	}
}

// storeType encodes "op rs2, imm(rs1)".
func storeType(funct3 uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		rs2, imm, rs1 := reg(ops[0]), ops[1], reg(ops[2])
		if !fitsSigned(imm, 12) {
			return 0, fmt.Errorf("offset %d does not fit in 12 signed bits", imm)
		}
		u := uint32(imm) & 0xFFF
		return (u>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1F)<<7 | opStore, nil
	}
}

// branchType encodes "op rs1, rs2, offset".
func branchType(funct3 uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		rs1, rs2, off := reg(ops[0]), reg(ops[1]), ops[2]
		if off&1 != 0 || !fitsSigned(off, 13) {
			return 0, fmt.Errorf("branch offset %d out of range", off)
		}
		u := uint32(off)
		return (u>>12&1)<<31 | (u>>5&0x3F)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u>>1&0xF)<<8 | (u>>11&1)<<7 | opBranch, nil
	}
}

// upperType encodes "op rd, imm20".
func upperType(opcode uint32) arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		imm := ops[1]
		if imm < -(1<<19) || imm > 0xFFFFF {
			return 0, fmt.Errorf("immediate %d does not fit in 20 bits", imm)
		}
		return (uint32(imm)&0xFFFFF)<<12 | reg(ops[0])<<7 | opcode, nil
	}
}

// jalType encodes "jal rd, offset".
func jalType() arch.EncodeFunc {
	return func(ops []int64) (uint32, error) {
		rd, off := reg(ops[0]), ops[1]
		if off&1 != 0 || !fitsSigned(off, 21) {
			return 0, fmt.Errorf("jump offset %d out of range", off)
		}
		u := uint32(off)
		return (u>>20&1)<<31 | (u>>1&0x3FF)<<21 | (u>>11&1)<<20 | (u>>12&0xFF)<<12 | rd<<7 | opJal, nil
	}
}

func fixed(word uint32) arch.EncodeFunc {
	return func([]int64) (uint32, error) { return word, nil }
}
