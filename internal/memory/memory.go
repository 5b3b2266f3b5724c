package memory

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Layout places the segments of the address space.
type Layout struct {
	TextBase        uint32
	TextLimit       uint32
	ExternBase      uint32
	DataBase        uint32
	DataLimit       uint32
	KernelTextBase  uint32
	KernelTextLimit uint32
	KernelDataBase  uint32
	KernelDataLimit uint32
}

func DefaultLayout() Layout {
	return Layout{
		TextBase:        0x00400000,
		TextLimit:       0x0FFFFFFF,
		ExternBase:      0x10000000,
		DataBase:        0x10010000,
		DataLimit:       0x7FFFFFFF,
		KernelTextBase:  0x80000000,
		KernelTextLimit: 0x8FFFFFFF,
		KernelDataBase:  0x90000000,
		KernelDataLimit: 0xFFFFFFFF,
	}
}

func (l Layout) InText(addr uint32) bool {
	return (addr >= l.TextBase && addr <= l.TextLimit) ||
		(addr >= l.KernelTextBase && addr <= l.KernelTextLimit)
}

func (l Layout) InData(addr uint32) bool {
	return (addr >= l.ExternBase && addr <= l.DataLimit) ||
		(addr >= l.KernelDataBase && addr <= l.KernelDataLimit)
}

// AddressError is returned for unmapped or misaligned accesses.
type AddressError struct {
	Address uint32
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address 0x%08x: %s", e.Address, e.Reason)
}

// Encoded is anything placed in the text segment as a machine word.
type Encoded interface {
	MachineCode() uint32
}

// Memory is a sparse little-endian byte image.
type Memory struct {
	layout Layout
	bytes  map[uint32]byte
	stmts  map[uint32]Encoded
}

func New(layout Layout) *Memory {
	m := &Memory{layout: layout}
	m.Reset()
	return m
}

func (m *Memory) Layout() Layout { return m.layout }

func (m *Memory) Reset() {
	m.bytes = map[uint32]byte{}
	m.stmts = map[uint32]Encoded{}
}

func (m *Memory) check(addr uint32, width int) error {
	switch width {
	case 1, 2, 4:
	default:
		return &AddressError{Address: addr, Reason: fmt.Sprintf("unsupported access width %d", width)}
	}
	if addr%uint32(width) != 0 {
		return &AddressError{Address: addr, Reason: fmt.Sprintf("not aligned on a %d-byte boundary", width)}
	}
	if !m.layout.InText(addr) && !m.layout.InData(addr) {
		return &AddressError{Address: addr, Reason: "out of range"}
	}
	return nil
}

// Set stores the low width bytes of value at addr.
func (m *Memory) Set(addr uint32, value int64, width int) error {
	if err := m.check(addr, width); err != nil {
		return err
	}
	for i := 0; i < width; i++ {
		m.bytes[addr+uint32(i)] = byte(value >> (8 * i))
	}
	return nil
}

// SetDouble stores v as two little-endian words.
func (m *Memory) SetDouble(addr uint32, v float64) error {
	bits := math.Float64bits(v)
	if err := m.Set(addr, int64(uint32(bits)), 4); err != nil {
		return err
	}
	return m.Set(addr+4, int64(uint32(bits>>32)), 4)
}

// SetStatement writes the machine word of s at addr, which must be a
// word-aligned text address.
func (m *Memory) SetStatement(addr uint32, s Encoded) error {
	if !m.layout.InText(addr) {
		return &AddressError{Address: addr, Reason: "not in a text segment"}
	}
	if err := m.Set(addr, int64(s.MachineCode()), 4); err != nil {
		return err
	}
	m.stmts[addr] = s
	return nil
}

func (m *Memory) Statement(addr uint32) (Encoded, bool) {
	s, ok := m.stmts[addr]
	return s, ok
}

// Get returns the width bytes at addr, zero extended. Unwritten bytes
// read as zero.
func (m *Memory) Get(addr uint32, width int) (uint64, error) {
	if err := m.check(addr, width); err != nil {
		return 0, err
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(m.bytes[addr+uint32(i)])
	}
	return v, nil
}

func (m *Memory) Word(addr uint32) (uint32, error) {
	v, err := m.Get(addr, 4)
	return uint32(v), err
}

func (m *Memory) Byte(addr uint32) byte { return m.bytes[addr] }

// FirstNull returns the address of the first zero byte in [base, limit].
func (m *Memory) FirstNull(base, limit uint32) (uint32, error) {
	for a := uint64(base); a <= uint64(limit); a++ {
		if m.bytes[uint32(a)] == 0 {
			return uint32(a), nil
		}
	}
	return 0, &AddressError{Address: base, Reason: "no null byte before limit"}
}

// Extent returns the lowest and one-past-highest written address within
// [base, limit], or ok=false when nothing was written there.
func (m *Memory) Extent(base, limit uint32) (lo, hi uint32, ok bool) {
	for a := range m.bytes {
		if a < base || a > limit {
			continue
		}
		if !ok || a < lo {
			lo = a
		}
		if !ok || a+1 > hi {
			hi = a + 1
		}
		ok = true
	}
	return lo, hi, ok
}

// Bytes copies [from, to) out of the image.
func (m *Memory) Bytes(from, to uint32) []byte {
	out := make([]byte, 0, to-from)
	for a := from; a < to; a++ {
		out = append(out, m.bytes[a])
	}
	return out
}

// Dump serialises every written byte as (address, value) pairs in address
// order, for comparing images.
func (m *Memory) Dump() []byte {
	addrs := make([]uint32, 0, len(m.bytes))
	for a := range m.bytes {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	out := make([]byte, 0, len(addrs)*5)
	var tmp [4]byte
	for _, a := range addrs {
		binary.LittleEndian.PutUint32(tmp[:], a)
		out = append(out, tmp[:]...)
		out = append(out, m.bytes[a])
	}
	return out
}
