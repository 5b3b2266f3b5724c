package ast

import (
	"fmt"
	"strings"

	"rvasm/internal/arch"
	"rvasm/internal/token"
)

// Statement is one instruction. The first pass fills in the source,
// tokens, address and the chosen overload; the second pass sets the basic
// form and its machine word.
type Statement struct {
	// Source is nil for every instruction of a pseudo expansion but the
	// first.
	Source *token.SourceLine
	// Unit is the index of the file whose symbol table resolves labels.
	Unit int
	// Original holds the line's tokens as written, label included.
	Original token.List
	// Tokens holds the instruction itself: label and comment stripped.
	Tokens      token.List
	Address     uint32
	Instruction arch.Instruction
	// Macro names the expansion the statement came from, if any.
	Macro string

	BasicText string
	Code      uint32
	Operands  []int64
}

func (s *Statement) MachineCode() uint32 { return s.Code }

// Operator is the instruction's mnemonic token.
func (s *Statement) Operator() token.Token { return s.Tokens.Tokens[0] }

// OperandTokens returns every token after the mnemonic.
func (s *Statement) OperandTokens() []token.Token { return s.Tokens.Tokens[1:] }

func (s *Statement) Basic() (*arch.Basic, bool) {
	b, ok := s.Instruction.(*arch.Basic)
	return b, ok
}

// Location is the file:line the statement is reported against.
func (s *Statement) Location() string {
	l := s.Tokens.Line
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// String renders one listing line: address, machine word, basic form and
// the source text when the statement carries it.
func (s *Statement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "0x%08x  0x%08x  %-24s", s.Address, s.Code, s.BasicText)
	if s.Source != nil {
		fmt.Fprintf(&sb, "  %4d: %s", s.Source.Line, strings.TrimSpace(s.Source.Text))
	}
	return strings.TrimRight(sb.String(), " ")
}
