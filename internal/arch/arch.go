package arch

import (
	"fmt"
	"strings"
)

type Arch int

const (
	ArchUnknown Arch = iota
	ArchRV32
)

func (a Arch) String() string {
	switch a {
	case ArchRV32:
		return "rv32im"
	default:
		return "unknown"
	}
}

func ParseArch(s string) Arch {
	switch strings.ToLower(s) {
	case "rv32", "rv32i", "rv32im", "riscv", "riscv32":
		return ArchRV32
	default:
		return ArchUnknown
	}
}

// RegisterFile maps register spellings to register numbers. Names are the
// ABI spellings (t0, sp, ...); numbers are the x0..x31 spellings.
type RegisterFile struct {
	names   map[string]int
	numbers map[string]int
}

func NewRegisterFile(abi []string, aliases map[string]int) *RegisterFile {
	rf := &RegisterFile{names: map[string]int{}, numbers: map[string]int{}}
	for i, n := range abi {
		rf.names[n] = i
		rf.numbers[fmt.Sprintf("x%d", i)] = i
	}
	for n, i := range aliases {
		rf.names[n] = i
	}
	return rf
}

func (rf *RegisterFile) IsRegisterName(name string) bool {
	_, ok := rf.names[name]
	return ok
}

func (rf *RegisterFile) IsRegisterNumber(name string) bool {
	_, ok := rf.numbers[name]
	return ok
}

// Number returns the register number for either spelling.
func (rf *RegisterFile) Number(name string) (int, bool) {
	if n, ok := rf.names[name]; ok {
		return n, true
	}
	n, ok := rf.numbers[name]
	return n, ok
}

// BasicName is the spelling used in expanded basic statements.
func (rf *RegisterFile) BasicName(n int) string {
	return fmt.Sprintf("x%d", n)
}

func (rf *RegisterFile) Len() int { return len(rf.numbers) }
