package memory

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

type word uint32

func (w word) MachineCode() uint32 { return uint32(w) }

const data = 0x10010000

func TestLittleEndian(t *testing.T) {
	m := New(DefaultLayout())
	check(t, m.Set(data, 0x11223344, 4), nil)
	check(t, m.Byte(data), byte(0x44))
	check(t, m.Byte(data+3), byte(0x11))

	v, err := m.Get(data, 2)
	check(t, err, nil)
	check(t, v, uint64(0x3344))

	w, _ := m.Word(data)
	check(t, w, uint32(0x11223344))

	check(t, m.Set(data+4, -1, 1), nil)
	v, _ = m.Get(data+4, 4)
	check(t, v, uint64(0xFF))
}

func TestAddressErrors(t *testing.T) {
	m := New(DefaultLayout())
	tests := []struct {
		addr  uint32
		width int
	}{
		{data + 1, 4},
		{data + 1, 2},
		{data, 8},
		{0x00000100, 4},
	}
	for _, tt := range tests {
		err := m.Set(tt.addr, 0, tt.width)
		var ae *AddressError
		if !errors.As(err, &ae) {
			t.Errorf("Set(0x%x, %d): got %v, want an *AddressError", tt.addr, tt.width, err)
			continue
		}
		check(t, ae.Address, tt.addr)
	}
	check(t, m.Set(data+1, 0, 1), nil)
}

func TestSetDouble(t *testing.T) {
	m := New(DefaultLayout())
	check(t, m.SetDouble(data, 1.5), nil)
	lo, _ := m.Word(data)
	hi, _ := m.Word(data + 4)
	check(t, uint64(hi)<<32|uint64(lo), math.Float64bits(1.5))
}

func TestStatements(t *testing.T) {
	m := New(DefaultLayout())
	l := m.Layout()
	check(t, m.SetStatement(l.TextBase, word(0x00128293)), nil)

	s, ok := m.Statement(l.TextBase)
	check(t, ok, true)
	check(t, s.MachineCode(), uint32(0x00128293))
	w, _ := m.Word(l.TextBase)
	check(t, w, uint32(0x00128293))

	check(t, m.SetStatement(data, word(0)) != nil, true)
	check(t, m.SetStatement(l.KernelTextBase, word(0x73)), nil)
}

func TestFirstNull(t *testing.T) {
	m := New(DefaultLayout())
	for i, c := range []byte("abc") {
		m.Set(data+uint32(i), int64(c), 1)
	}
	a, err := m.FirstNull(data, data+10)
	check(t, err, nil)
	check(t, a, uint32(data+3))

	_, err = m.FirstNull(data, data+2)
	check(t, err != nil, true)
}

func TestExtent(t *testing.T) {
	m := New(DefaultLayout())
	_, _, ok := m.Extent(data, 0x7FFFFFFF)
	check(t, ok, false)

	m.Set(data+8, 1, 4)
	m.Set(data+2, 1, 1)
	lo, hi, ok := m.Extent(data, 0x7FFFFFFF)
	check(t, ok, true)
	check(t, lo, uint32(data+2))
	check(t, hi, uint32(data+12))

	check(t, len(m.Bytes(lo, hi)), 10)
	check(t, m.Bytes(lo, hi)[6], byte(1))
}

func TestDump(t *testing.T) {
	build := func() *Memory {
		m := New(DefaultLayout())
		for i := uint32(0); i < 64; i++ {
			m.Set(data+4*i, int64(i*7), 4)
		}
		return m
	}
	a, b := build().Dump(), build().Dump()
	check(t, len(a), 64*4*5)
	check(t, bytes.Equal(a, b), true)

	m := build()
	m.Reset()
	check(t, len(m.Dump()), 0)
}
