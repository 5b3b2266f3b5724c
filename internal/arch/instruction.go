package arch

import "rvasm/internal/token"

const BasicLength = 4

// Instruction is one operand-format overload of a mnemonic.
type Instruction interface {
	Name() string
	// Example is a sample statement; its tokens define the operand format.
	Example() string
	Description() string
	// Format lists the operand token kinds, operator excluded.
	Format() []token.Kind
	// Length is the encoded size in bytes.
	Length() int
	Extended() bool
}

type spec struct {
	name    string
	example string
	desc    string
	format  []token.Kind
}

func (s *spec) Name() string         { return s.name }
func (s *spec) Example() string      { return s.example }
func (s *spec) Description() string  { return s.desc }
func (s *spec) Format() []token.Kind { return s.format }

// EncodeFunc packs operand values into a machine word. Register operands
// arrive as register numbers, labels as addresses (or PC-relative offsets
// for branch forms), parentheses are dropped.
type EncodeFunc func(ops []int64) (uint32, error)

// Basic has a direct one-to-one machine encoding.
type Basic struct {
	spec
	// Branch marks instructions whose label operand is encoded relative to
	// the instruction's own address.
	Branch bool
	encode EncodeFunc
}

func (b *Basic) Length() int    { return BasicLength }
func (b *Basic) Extended() bool { return false }

func (b *Basic) Encode(ops []int64) (uint32, error) {
	return b.encode(ops)
}

// Extended expands into one basic instruction per template.
type Extended struct {
	spec
	Templates []string
}

func (e *Extended) Length() int    { return BasicLength * len(e.Templates) }
func (e *Extended) Extended() bool { return true }
