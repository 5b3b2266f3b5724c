package format

import (
	"bytes"
	"testing"

	"rvasm/internal/memory"
	"rvasm/internal/symbol"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]Format{
		"elf":  FormatELF,
		"raw":  FormatRaw,
		"bin":  FormatRaw,
		"hex":  FormatHex,
		"ihex": FormatHex,
		"pe":   FormatUnknown,
	} {
		check(t, ParseFormat(s), want)
	}
	check(t, FormatHex.String(), "hex")
	check(t, FormatUnknown.String(), "unknown")
}

func TestNewInput(t *testing.T) {
	l := memory.DefaultLayout()
	mem := memory.New(l)
	mem.Set(l.TextBase, 0x00000013, 4)
	mem.Set(l.TextBase+4, 0x00000073, 4)
	mem.Set(l.DataBase+1, 0x7f, 1)

	global := symbol.NewGlobal()
	global.Add("main", l.TextBase, false)
	global.Add("buf", l.ExternBase, true)

	in := NewInput(mem, global, l.TextBase)
	check(t, in.Entry, l.TextBase)
	check(t, len(in.Segments), 2)

	text, data := in.Segments[0], in.Segments[1]
	check(t, text.Name, ".text")
	check(t, text.Address, l.TextBase)
	check(t, len(text.Data), 8)
	check(t, text.Exec, true)
	check(t, data.Name, ".data")
	check(t, data.Address, l.DataBase+1)
	check(t, bytes.Equal(data.Data, []byte{0x7f}), true)
	check(t, data.Exec, false)

	check(t, len(in.Symbols), 2)
	check(t, in.Symbols[0].Name, "main")
	check(t, in.Symbols[1].Data, true)

	check(t, len(NewInput(memory.New(l), nil, 0).Segments), 0)
}

func TestRawBuilder(t *testing.T) {
	in := &BuilderInput{Segments: []Segment{
		{Address: 0x400000, Data: []byte{1, 2}},
		{Address: 0x10010000, Data: []byte{3}},
	}}
	out, err := RawBuilder{}.Build(in)
	check(t, err, nil)
	check(t, bytes.Equal(out, []byte{1, 2, 3}), true)
	check(t, RawBuilder{}.Format(), FormatRaw)
	check(t, RawBuilder{}.Extension(), ".bin")
}
