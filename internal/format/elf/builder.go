package elf

import (
	"encoding/binary"
	"fmt"

	"rvasm/internal/arch"
	"rvasm/internal/format"
)

const (
	ehSize   = 52
	phSize   = 32
	pageSize = 0x1000

	ptLoad = 1
	pfX    = 1
	pfW    = 2
	pfR    = 4

	emRISCV = 243
)

type Builder struct {
	arch arch.Arch
}

func NewBuilder(a arch.Arch) *Builder {
	return &Builder{arch: a}
}

func (b *Builder) Format() format.Format {
	return format.FormatELF
}

func (b *Builder) Extension() string {
	return ""
}

func (b *Builder) Build(input *format.BuilderInput) ([]byte, error) {
	if len(input.Segments) == 0 {
		return nil, fmt.Errorf("nothing to write")
	}
	return BuildELF(input.Segments, input.Entry, machineFromArch(b.arch))
}

// BuildELF lays out a little-endian ELF32 executable with one PT_LOAD
// program header per segment. Each segment starts on a page in the file
// with the same page offset as its load address.
func BuildELF(segments []format.Segment, entry uint32, machine uint16) ([]byte, error) {
	phoff := uint32(ehSize)
	off := alignUp(phoff+uint32(len(segments))*phSize, pageSize)

	offsets := make([]uint32, len(segments))
	for i, s := range segments {
		off += (s.Address - off) % pageSize
		offsets[i] = off
		off += uint32(len(s.Data))
	}
	buf := make([]byte, off)

	buf[0] = 0x7f
	copy(buf[1:], []byte("ELF"))
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EV_CURRENT

	binary.LittleEndian.PutUint16(buf[16:], 2) // ET_EXEC
	binary.LittleEndian.PutUint16(buf[18:], machine)
	binary.LittleEndian.PutUint32(buf[20:], 1)
	binary.LittleEndian.PutUint32(buf[24:], entry)
	binary.LittleEndian.PutUint32(buf[28:], phoff)
	binary.LittleEndian.PutUint32(buf[32:], 0) // no section headers
	binary.LittleEndian.PutUint32(buf[36:], 0)
	binary.LittleEndian.PutUint16(buf[40:], ehSize)
	binary.LittleEndian.PutUint16(buf[42:], phSize)
	binary.LittleEndian.PutUint16(buf[44:], uint16(len(segments)))
	binary.LittleEndian.PutUint16(buf[46:], 0)
	binary.LittleEndian.PutUint16(buf[48:], 0)
	binary.LittleEndian.PutUint16(buf[50:], 0)

	for i, s := range segments {
		ph := phoff + uint32(i)*phSize
		flags := uint32(pfR)
		if s.Exec {
			flags |= pfX
		} else {
			flags |= pfW
		}
		binary.LittleEndian.PutUint32(buf[ph+0:], ptLoad)
		binary.LittleEndian.PutUint32(buf[ph+4:], offsets[i])
		binary.LittleEndian.PutUint32(buf[ph+8:], s.Address)
		binary.LittleEndian.PutUint32(buf[ph+12:], s.Address)
		binary.LittleEndian.PutUint32(buf[ph+16:], uint32(len(s.Data)))
		binary.LittleEndian.PutUint32(buf[ph+20:], uint32(len(s.Data)))
		binary.LittleEndian.PutUint32(buf[ph+24:], flags)
		binary.LittleEndian.PutUint32(buf[ph+28:], pageSize)
		copy(buf[offsets[i]:], s.Data)
	}
	return buf, nil
}

func alignUp(v, to uint32) uint32 {
	return (v + to - 1) &^ (to - 1)
}

func machineFromArch(a arch.Arch) uint16 {
	switch a {
	case arch.ArchRV32:
		return emRISCV
	default:
		return 0 // EM_NONE
	}
}
