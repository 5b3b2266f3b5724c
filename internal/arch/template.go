package arch

import (
	"fmt"
	"regexp"
	"strconv"

	"rvasm/internal/token"
)

// Template operand codes. The digit is the index of the source token the
// code draws from, the operator being token 0.
//
//	RG<n>   register, in x<k> spelling
//	VL<n>   value, in decimal
//	LH<n>   upper 20 bits of an absolute value, rounded for a signed low part
//	LL<n>   signed low 12 bits of an absolute value
//	PH<n>   upper 20 bits of value minus the expansion's first PC
//	PL<n>   low 12 bits of value minus the expansion's first PC
//	LAB<n>  token text verbatim
var templateCode = regexp.MustCompile(`(LAB|RG|VL|LH|LL|PH|PL)([0-9])`)

// LabelLookup resolves a symbol to its address.
type LabelLookup func(name string) (int64, bool)

func Hi20(v int64) int64 { return ((v + 0x800) >> 12) & 0xFFFFF }

func Lo12(v int64) int64 { return ((v & 0xFFF) ^ 0x800) - 0x800 }

// Substitute fills in the operand codes of template from the source tokens
// toks of an extended statement starting at pc.
func (r *Registry) Substitute(template string, toks []token.Token, pc uint32, lookup LabelLookup) (string, error) {
	var failure error
	out := templateCode.ReplaceAllStringFunc(template, func(m string) string {
		if failure != nil {
			return m
		}
		sub := templateCode.FindStringSubmatch(m)
		idx, _ := strconv.Atoi(sub[2])
		if idx >= len(toks) {
			failure = fmt.Errorf("template %q refers to missing operand %d", template, idx)
			return m
		}
		tok := toks[idx]
		if sub[1] == "LAB" {
			return tok.Text
		}
		if sub[1] == "RG" {
			n, ok := r.regs.Number(tok.Text)
			if !ok {
				failure = fmt.Errorf("%q is not a register", tok.Text)
				return m
			}
			return r.regs.BasicName(n)
		}
		v, err := r.operandValue(tok, lookup)
		if err != nil {
			failure = err
			return m
		}
		switch sub[1] {
		case "LH":
			v = Hi20(v)
		case "LL":
			v = Lo12(v)
		case "PH":
			v = Hi20(int64(int32(uint32(v) - pc)))
		case "PL":
			v = Lo12(int64(int32(uint32(v) - pc)))
		}
		return strconv.FormatInt(v, 10)
	})
	return out, failure
}

func (r *Registry) operandValue(tok token.Token, lookup LabelLookup) (int64, error) {
	switch {
	case tok.Kind.IsInteger():
		return tok.Value, nil
	case tok.Kind == token.Identifier || tok.Kind == token.Operator:
		v, ok := lookup(tok.Text)
		if !ok {
			return 0, &OperandError{Token: tok, Text: fmt.Sprintf("symbol %q not found in symbol table", tok.Text)}
		}
		return v, nil
	case tok.Kind.IsRegister():
		n, _ := r.regs.Number(tok.Text)
		return int64(n), nil
	}
	return 0, &OperandError{Token: tok, Text: fmt.Sprintf("operand %q has no value", tok.Text)}
}
