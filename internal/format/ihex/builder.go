package ihex

import (
	"fmt"
	"strings"

	"rvasm/internal/format"
)

const recordLen = 16

const (
	recData          = 0x00
	recEOF           = 0x01
	recExtLinearAddr = 0x04
	recStartLinear   = 0x05
)

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Format() format.Format {
	return format.FormatHex
}

func (b *Builder) Extension() string {
	return ".hex"
}

func (b *Builder) Build(input *format.BuilderInput) ([]byte, error) {
	var sb strings.Builder
	for _, s := range input.Segments {
		writeSegment(&sb, s.Address, s.Data)
	}
	writeRecord(&sb, recStartLinear, 0, []byte{
		byte(input.Entry >> 24), byte(input.Entry >> 16), byte(input.Entry >> 8), byte(input.Entry),
	})
	writeRecord(&sb, recEOF, 0, nil)
	return []byte(sb.String()), nil
}

// writeSegment emits data records, with an extended linear address record
// whenever the upper 16 address bits change.
func writeSegment(sb *strings.Builder, addr uint32, data []byte) {
	upper := int64(-1)
	for len(data) > 0 {
		if int64(addr>>16) != upper {
			upper = int64(addr >> 16)
			writeRecord(sb, recExtLinearAddr, 0, []byte{byte(upper >> 8), byte(upper)})
		}
		n := min(recordLen, len(data))
		// records never cross a 64 KiB boundary
		if room := 0x10000 - int(addr&0xFFFF); n > room {
			n = room
		}
		writeRecord(sb, recData, uint16(addr), data[:n])
		data = data[n:]
		addr += uint32(n)
	}
}

func writeRecord(sb *strings.Builder, kind byte, offset uint16, data []byte) {
	sum := byte(len(data)) + byte(offset>>8) + byte(offset) + kind
	fmt.Fprintf(sb, ":%02X%04X%02X", len(data), offset, kind)
	for _, b := range data {
		fmt.Fprintf(sb, "%02X", b)
		sum += b
	}
	fmt.Fprintf(sb, "%02X\n", byte(-sum))
}
