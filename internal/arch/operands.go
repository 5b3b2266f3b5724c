package arch

import (
	"fmt"

	"rvasm/internal/token"
)

// Compat is the outcome of offering a provided token kind to an operand
// slot of a required kind.
type Compat int

const (
	Exact Compat = iota
	Widen
	Narrow
	Mismatch
)

func (c Compat) String() string {
	switch c {
	case Exact:
		return "exact"
	case Widen:
		return "widen"
	case Narrow:
		return "narrow"
	default:
		return "mismatch"
	}
}

func (c Compat) OK() bool { return c == Exact || c == Widen }

var integerRank = map[token.Kind]int{
	token.Integer5:  1,
	token.Integer6:  2,
	token.Integer12: 3,
	token.Integer20: 4,
	token.Integer32: 5,
	token.Integer64: 6,
}

// Compatible decides whether a provided kind fits a required operand slot.
// Integers widen into any wider slot and narrow into an out-of-range error;
// register names and numbers are interchangeable; a label slot accepts a
// word that lexes as a mnemonic.
func Compatible(required, provided token.Kind) Compat {
	if required == provided {
		return Exact
	}
	if rr, ok := integerRank[required]; ok {
		if pr, ok := integerRank[provided]; ok {
			if pr < rr {
				return Widen
			}
			return Narrow
		}
		return Mismatch
	}
	switch {
	case required.IsRegister() && provided.IsRegister():
		return Widen
	case required == token.Identifier && provided == token.Operator:
		return Widen
	}
	return Mismatch
}

func formatMatches(in Instruction, ops []token.Token) bool {
	format := in.Format()
	if len(format) != len(ops) {
		return false
	}
	for i, k := range format {
		if !Compatible(k, ops[i].Kind).OK() {
			return false
		}
	}
	return true
}

// BestMatch picks the overload for operand tokens ops (operator excluded).
// The first overload in registration order whose count and kinds fit wins;
// failing that the first overload is returned so that CheckOperands can say
// precisely what is wrong with it.
func BestMatch(candidates []Instruction, ops []token.Token) Instruction {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	for _, in := range candidates {
		if formatMatches(in, ops) {
			return in
		}
	}
	return candidates[0]
}

// OperandError names the offending token of a failed operand check.
type OperandError struct {
	Token token.Token
	Text  string
}

func (e *OperandError) Error() string { return e.Text }

// CheckOperands runs the strict operand check of ops against in.
func CheckOperands(in Instruction, operator token.Token, ops []token.Token) error {
	format := in.Format()
	if len(ops) < len(format) {
		return &OperandError{Token: operator, Text: fmt.Sprintf("too few or incorrectly formatted operands. Expected: %s", in.Example())}
	}
	if len(ops) > len(format) {
		return &OperandError{Token: ops[len(format)], Text: fmt.Sprintf("too many or incorrectly formatted operands. Expected: %s", in.Example())}
	}
	for i, k := range format {
		op := ops[i]
		switch Compatible(k, op.Kind) {
		case Exact, Widen:
			continue
		case Narrow:
			return &OperandError{Token: op, Text: fmt.Sprintf("operand %q is out of range for %s", op.Text, in.Name())}
		default:
			if k.IsRegister() && op.Kind == token.Identifier {
				return &OperandError{Token: op, Text: fmt.Sprintf("invalid register name %q", op.Text)}
			}
			return &OperandError{Token: op, Text: fmt.Sprintf("operand %q is of incorrect type. Expected: %s", op.Text, in.Example())}
		}
	}
	return nil
}
