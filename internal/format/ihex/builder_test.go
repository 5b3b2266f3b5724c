package ihex

import (
	"encoding/hex"
	"strings"
	"testing"

	"rvasm/internal/format"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

func build(t *testing.T, in *format.BuilderInput) []string {
	t.Helper()
	out, err := NewBuilder().Build(in)
	check(t, err, nil)
	return strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
}

func TestRecords(t *testing.T) {
	lines := build(t, &format.BuilderInput{
		Segments: []format.Segment{{Address: 0x00400000, Data: []byte{0x13, 0, 0, 0}}},
		Entry:    0x00400000,
	})
	want := []string{
		":020000040040BA",
		":0400000013000000E9",
		":0400000500400000B7",
		":00000001FF",
	}
	check(t, len(lines), len(want))
	for i := range want {
		check(t, lines[i], want[i])
	}
}

func TestChecksums(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i * 13)
	}
	lines := build(t, &format.BuilderInput{
		Segments: []format.Segment{{Address: 0x10010000, Data: data}},
	})
	for _, l := range lines {
		raw, err := hex.DecodeString(l[1:])
		if err != nil {
			t.Fatalf("%s: %v", l, err)
		}
		var sum byte
		for _, b := range raw {
			sum += b
		}
		check(t, sum, byte(0))
		check(t, int(raw[0]), len(raw)-5)
	}
	// extended address, three data records, start, end
	check(t, len(lines), 6)
}

func TestRecordsStopAt64K(t *testing.T) {
	lines := build(t, &format.BuilderInput{
		Segments: []format.Segment{{Address: 0x1000FFF8, Data: make([]byte, 16)}},
	})
	check(t, len(lines), 6)
	check(t, lines[0], ":020000041000EA")
	check(t, strings.HasPrefix(lines[1], ":08FFF800"), true)
	check(t, lines[2], ":020000041001E9")
	check(t, strings.HasPrefix(lines[3], ":08000000"), true)
}
