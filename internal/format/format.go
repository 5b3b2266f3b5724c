package format

import (
	"rvasm/internal/arch"
	"rvasm/internal/memory"
	"rvasm/internal/symbol"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatELF
	FormatRaw
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatELF:
		return "elf"
	case FormatRaw:
		return "raw"
	case FormatHex:
		return "hex"
	default:
		return "unknown"
	}
}

func ParseFormat(s string) Format {
	switch s {
	case "elf":
		return FormatELF
	case "raw", "bin":
		return FormatRaw
	case "hex", "ihex":
		return FormatHex
	default:
		return FormatUnknown
	}
}

type Symbol struct {
	Name    string
	Address uint32
	Data    bool
}

// Segment is a contiguous run of the memory image.
type Segment struct {
	Name    string
	Address uint32
	Data    []byte
	Exec    bool
}

type BuilderInput struct {
	Segments []Segment
	Symbols  []Symbol
	Arch     arch.Arch
	Entry    uint32
}

type Builder interface {
	Format() Format
	Build(input *BuilderInput) ([]byte, error)
	Extension() string
}

// NewInput collects the written part of every segment of mem, in address
// order, and the global symbols.
func NewInput(mem *memory.Memory, global *symbol.Table, entry uint32) *BuilderInput {
	l := mem.Layout()
	ranges := []struct {
		name   string
		lo, hi uint32
		exec   bool
	}{
		{".text", l.TextBase, l.TextLimit, true},
		{".data", l.ExternBase, l.DataLimit, false},
		{".ktext", l.KernelTextBase, l.KernelTextLimit, true},
		{".kdata", l.KernelDataBase, l.KernelDataLimit, false},
	}

	in := &BuilderInput{Arch: arch.ArchRV32, Entry: entry}
	for _, r := range ranges {
		lo, hi, ok := mem.Extent(r.lo, r.hi)
		if !ok {
			continue
		}
		in.Segments = append(in.Segments, Segment{Name: r.name, Address: lo, Data: mem.Bytes(lo, hi), Exec: r.exec})
	}
	if global != nil {
		for _, s := range global.Symbols() {
			in.Symbols = append(in.Symbols, Symbol{Name: s.Name, Address: s.Address, Data: s.IsData})
		}
	}
	return in
}

// RawBuilder writes the segments back to back with no header.
type RawBuilder struct{}

func (RawBuilder) Format() Format    { return FormatRaw }
func (RawBuilder) Extension() string { return ".bin" }

func (RawBuilder) Build(input *BuilderInput) ([]byte, error) {
	var out []byte
	for _, s := range input.Segments {
		out = append(out, s.Data...)
	}
	return out, nil
}
