package elf

import (
	"bytes"
	stdelf "debug/elf"
	"testing"

	"rvasm/internal/arch"
	"rvasm/internal/format"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

func input() *format.BuilderInput {
	return &format.BuilderInput{
		Segments: []format.Segment{
			{Name: ".text", Address: 0x00400000, Data: []byte{0x13, 0, 0, 0, 0x73, 0, 0, 0}, Exec: true},
			{Name: ".data", Address: 0x10010000, Data: []byte{1, 2, 3, 4}},
		},
		Entry: 0x00400004,
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(arch.ArchRV32)
	check(t, b.Format(), format.FormatELF)

	out, err := b.Build(input())
	check(t, err, nil)
	check(t, bytes.HasPrefix(out, []byte("\x7fELF")), true)

	f, err := stdelf.NewFile(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	check(t, f.Class, stdelf.ELFCLASS32)
	check(t, f.Data, stdelf.ELFDATA2LSB)
	check(t, f.Type, stdelf.ET_EXEC)
	check(t, f.Machine, stdelf.EM_RISCV)
	check(t, f.Entry, uint64(0x00400004))
	check(t, len(f.Progs), 2)

	for i, s := range input().Segments {
		p := f.Progs[i]
		check(t, p.Type, stdelf.PT_LOAD)
		check(t, p.Vaddr, uint64(s.Address))
		check(t, p.Filesz, uint64(len(s.Data)))
		check(t, p.Off%pageSize, p.Vaddr%pageSize)

		got := make([]byte, len(s.Data))
		if _, err := p.ReadAt(got, 0); err != nil {
			t.Fatal(err)
		}
		check(t, bytes.Equal(got, s.Data), true)
	}
	check(t, f.Progs[0].Flags, stdelf.PF_R|stdelf.PF_X)
	check(t, f.Progs[1].Flags, stdelf.PF_R|stdelf.PF_W)
}

func TestBuildEmpty(t *testing.T) {
	_, err := NewBuilder(arch.ArchRV32).Build(&format.BuilderInput{})
	check(t, err != nil, true)
}

func TestMachine(t *testing.T) {
	check(t, machineFromArch(arch.ArchRV32), uint16(emRISCV))
	check(t, machineFromArch(arch.ArchUnknown), uint16(0))
}
