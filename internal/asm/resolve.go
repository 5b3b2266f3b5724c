package asm

import (
	"strconv"
	"strings"

	"github.com/golang/glog"

	"rvasm/internal/arch"
	"rvasm/internal/ast"
	"rvasm/internal/token"
)

func (u *unit) lookup(name string) (int64, bool) {
	sym, ok := u.local.LookupLocalOrGlobal(name)
	return int64(sym.Address), ok
}

// resolve turns a parsed statement into machine statements: basic ones
// are encoded as they are, extended ones expand into one basic statement
// per template at consecutive addresses.
func (a *Assembler) resolve(u *unit, s *ast.Statement) []*ast.Statement {
	if b, ok := s.Basic(); ok {
		if !a.encode(u, s, b) {
			return nil
		}
		return []*ast.Statement{s}
	}

	if in, ok := s.Instruction.(*arch.Extended); ok {
		out := make([]*ast.Statement, 0, len(in.Templates))
		for i, tmpl := range in.Templates {
			text, err := a.isa.Substitute(tmpl, s.Tokens.Tokens, s.Address, u.lookup)
			if err != nil {
				a.operandErrorIn(s, err)
				return nil
			}
			glog.V(2).Infof("%s: %s -> %s", s.Location(), in.Name(), text)

			line := s.Tokens.Line
			toks, msgs := a.lx.Tokenize(token.SourceLine{Text: text, File: line.File, Line: line.Line})
			if len(msgs) > 0 || toks.Empty() || toks.Tokens[0].Kind != token.Operator {
				a.errorIn(s, s.Operator(), "bad expansion %q of %s", text, in.Name())
				return nil
			}
			op := toks.Tokens[0]
			basic, ok := arch.BestMatch(a.isa.Lookup(op.Text), toks.Tokens[1:]).(*arch.Basic)
			if !ok {
				a.errorIn(s, s.Operator(), "expansion %q of %s is not a basic instruction", text, in.Name())
				return nil
			}
			if err := arch.CheckOperands(basic, op, toks.Tokens[1:]); err != nil {
				a.operandErrorIn(s, err)
				return nil
			}

			m := &ast.Statement{
				Unit:        s.Unit,
				Original:    s.Original,
				Tokens:      toks,
				Address:     s.Address + uint32(i*arch.BasicLength),
				Instruction: basic,
				Macro:       s.Macro,
			}
			if i == 0 {
				m.Source = s.Source
			}
			if !a.encode(u, m, basic) {
				return nil
			}
			out = append(out, m)
		}
		return out
	}
	a.errorIn(s, s.Operator(), "no encoding for %s", s.Operator().Text)
	return nil
}

// encode computes the operand values and machine word of a basic
// statement. Labels resolve to addresses, or to offsets from the
// statement for branches.
func (a *Assembler) encode(u *unit, s *ast.Statement, b *arch.Basic) bool {
	regs := a.isa.Registers()
	var ops []int64
	var parts []string
	paren := false
	for _, t := range s.OperandTokens() {
		var v int64
		var text string
		switch {
		case t.Kind == token.LeftParen:
			paren = true
			continue
		case t.Kind == token.RightParen:
			continue
		case t.Kind.IsRegister():
			n, _ := regs.Number(t.Text)
			v, text = int64(n), regs.BasicName(n)
		case t.Kind.IsInteger():
			v = t.Value
			text = strconv.FormatInt(v, 10)
		case isLabelName(t):
			addr, ok := u.lookup(t.Text)
			if !ok {
				a.errorIn(s, t, "symbol %q not found in symbol table", t.Text)
				return false
			}
			v = addr
			if b.Branch {
				v = int64(int32(uint32(addr) - s.Address))
			}
			text = strconv.FormatInt(v, 10)
		default:
			a.errorIn(s, t, "operand %q cannot be encoded", t.Text)
			return false
		}
		ops = append(ops, v)
		if paren && len(parts) > 0 {
			parts[len(parts)-1] += "(" + text + ")"
			paren = false
			continue
		}
		parts = append(parts, text)
	}

	code, err := b.Encode(ops)
	if err != nil {
		a.errorIn(s, s.Operator(), "%v", err)
		return false
	}
	s.Operands = ops
	s.Code = code
	s.BasicText = b.Name()
	if len(parts) > 0 {
		s.BasicText += " " + strings.Join(parts, ",")
	}
	return true
}

// errorIn reports against a statement, keeping the macro expansion it
// came from.
func (a *Assembler) errorIn(s *ast.Statement, t token.Token, format string, args ...any) {
	a.report(t, s.Macro, false, format, args...)
}

func (a *Assembler) operandErrorIn(s *ast.Statement, err error) {
	if oe, ok := err.(*arch.OperandError); ok {
		a.errorIn(s, oe.Token, "%s", oe.Text)
		return
	}
	a.errorIn(s, s.Operator(), "%v", err)
}
